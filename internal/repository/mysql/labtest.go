package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const labTestColumns = `id, company_id, plant_id, department_id, name, unit, method, price,
	is_active, created_by, updated_by, created_at, updated_at`

type labTestRow struct {
	ID           uuid.UUID       `db:"id"`
	CompanyID    uuid.UUID       `db:"company_id"`
	PlantID      uuid.UUID       `db:"plant_id"`
	DepartmentID *uuid.UUID      `db:"department_id"`
	Name         string          `db:"name"`
	Unit         *string         `db:"unit"`
	Method       *string         `db:"method"`
	Price        decimal.Decimal `db:"price"`
	IsActive     bool            `db:"is_active"`
	CreatedBy    uuid.UUID       `db:"created_by"`
	UpdatedBy    uuid.UUID       `db:"updated_by"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r labTestRow) toDomain() domain.LabTest {
	return domain.LabTest{
		ID:           r.ID,
		Scope:        domain.Scope{CompanyID: r.CompanyID, PlantID: r.PlantID},
		DepartmentID: r.DepartmentID,
		Name:         r.Name,
		Unit:         r.Unit,
		Method:       r.Method,
		Price:        r.Price,
		Audit: domain.Audit{
			IsActive:  r.IsActive,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
	}
}

type referenceRangeRow struct {
	ID        uuid.UUID `db:"id"`
	LabTestID uuid.UUID `db:"lab_test_id"`
	Type      string    `db:"reference_type"`
	Value     string    `db:"value"`
	CreatedAt time.Time `db:"created_at"`
}

type labTestRepository struct {
	q sqlx.ExtContext
}

func (r *labTestRepository) FindByName(ctx context.Context, scope domain.Scope, name string) (domain.LabTest, error) {
	var row labTestRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT `+labTestColumns+` FROM lab_tests WHERE company_id = ? AND plant_id = ? AND name_key = ?`,
		scope.CompanyID, scope.PlantID, domain.NameKey(name),
	)
	if err != nil {
		return domain.LabTest{}, fmt.Errorf("failed to find lab test %q: %w", name, notFound(err))
	}
	return row.toDomain(), nil
}

func (r *labTestRepository) Create(ctx context.Context, t domain.LabTest) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO lab_tests (id, company_id, plant_id, department_id, name, name_key, unit, method, price,
		                        is_active, created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Scope.CompanyID, t.Scope.PlantID, t.DepartmentID, t.Name, domain.NameKey(t.Name),
		t.Unit, t.Method, t.Price, t.IsActive, t.CreatedBy, t.UpdatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lab test: %w", err)
	}
	return nil
}

func (r *labTestRepository) Update(ctx context.Context, t domain.LabTest) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE lab_tests
		 SET department_id = ?, unit = ?, method = ?, price = ?, updated_by = ?, updated_at = ?
		 WHERE id = ?`,
		t.DepartmentID, t.Unit, t.Method, t.Price, t.UpdatedBy, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lab test: %w", err)
	}
	return mustAffect(res, "lab test "+t.ID.String())
}

func (r *labTestRepository) AddReferenceRanges(ctx context.Context, ranges []domain.ReferenceRange) error {
	for _, rr := range ranges {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO lab_test_reference_ranges (id, lab_test_id, reference_type, value, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			rr.ID, rr.LabTestID, string(rr.Type), rr.Value, rr.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create %s reference range: %w", rr.Type, err)
		}
	}
	return nil
}

func (r *labTestRepository) List(ctx context.Context, scope domain.Scope, limit int, offset int) ([]domain.LabTest, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var rows []labTestRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT `+labTestColumns+` FROM lab_tests
		 WHERE company_id = ? AND plant_id = ?
		 ORDER BY name
		 LIMIT ? OFFSET ?`,
		scope.CompanyID, scope.PlantID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab tests: %w", err)
	}

	tests := make([]domain.LabTest, 0, len(rows))
	for _, row := range rows {
		tests = append(tests, row.toDomain())
	}
	return tests, nil
}

func (r *labTestRepository) ReferenceRangesByTestIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.ReferenceRange, error) {
	result := make(map[uuid.UUID][]domain.ReferenceRange, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	query, args, err := sqlx.In(
		`SELECT id, lab_test_id, reference_type, value, created_at
		 FROM lab_test_reference_ranges
		 WHERE lab_test_id IN (?)
		 ORDER BY lab_test_id, reference_type`,
		keys,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build reference range query: %w", err)
	}

	var rows []referenceRangeRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, r.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load reference ranges: %w", err)
	}

	for _, row := range rows {
		result[row.LabTestID] = append(result[row.LabTestID], domain.ReferenceRange{
			ID:        row.ID,
			LabTestID: row.LabTestID,
			Type:      domain.ReferenceType(row.Type),
			Value:     row.Value,
			CreatedAt: row.CreatedAt,
		})
	}
	return result, nil
}
