package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const labTestColumns = `id, company_id, plant_id, department_id, name, unit, method, price::text,
		is_active, created_by, updated_by, created_at, updated_at`

type labTestRepository struct {
	q DBTX
}

// NewLabTestRepository creates a pgx backed lab test repository
func NewLabTestRepository(q DBTX) LabTestRepository {
	return &labTestRepository{q: q}
}

func scanLabTest(row pgx.Row) (domain.LabTest, error) {
	var (
		t            domain.LabTest
		departmentID pgtype.UUID
		price        string
	)
	if err := row.Scan(
		&t.ID,
		&t.Scope.CompanyID,
		&t.Scope.PlantID,
		&departmentID,
		&t.Name,
		&t.Unit,
		&t.Method,
		&price,
		&t.IsActive,
		&t.CreatedBy,
		&t.UpdatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return domain.LabTest{}, err
	}

	if departmentID.Valid {
		id := uuid.UUID(departmentID.Bytes)
		t.DepartmentID = &id
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return domain.LabTest{}, fmt.Errorf("invalid price %q: %w", price, err)
	}
	t.Price = parsed
	return t, nil
}

func (r *labTestRepository) FindByName(ctx context.Context, scope domain.Scope, name string) (domain.LabTest, error) {
	row := r.q.QueryRow(
		ctx,
		`SELECT `+labTestColumns+`
		 FROM lab_tests
		 WHERE company_id = $1 AND plant_id = $2 AND name_key = $3`,
		scope.CompanyID, scope.PlantID, domain.NameKey(name),
	)
	t, err := scanLabTest(row)
	if err != nil {
		return domain.LabTest{}, fmt.Errorf("failed to find lab test %q: %w", name, notFound(err))
	}
	return t, nil
}

func (r *labTestRepository) Create(ctx context.Context, t domain.LabTest) error {
	_, err := r.q.Exec(
		ctx,
		`INSERT INTO lab_tests (id, company_id, plant_id, department_id, name, name_key, unit, method, price,
		                        is_active, created_by, updated_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, $11, $12, $13, $14)`,
		t.ID, t.Scope.CompanyID, t.Scope.PlantID, t.DepartmentID, t.Name, domain.NameKey(t.Name),
		t.Unit, t.Method, t.Price.String(), t.IsActive, t.CreatedBy, t.UpdatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lab test: %w", err)
	}
	return nil
}

func (r *labTestRepository) Update(ctx context.Context, t domain.LabTest) error {
	tag, err := r.q.Exec(
		ctx,
		`UPDATE lab_tests
		 SET department_id = $2, unit = $3, method = $4, price = $5::numeric, updated_by = $6, updated_at = $7
		 WHERE id = $1`,
		t.ID, t.DepartmentID, t.Unit, t.Method, t.Price.String(), t.UpdatedBy, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update lab test: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update lab test %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (r *labTestRepository) AddReferenceRanges(ctx context.Context, ranges []domain.ReferenceRange) error {
	for _, rr := range ranges {
		_, err := r.q.Exec(
			ctx,
			`INSERT INTO lab_test_reference_ranges (id, lab_test_id, reference_type, value, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			rr.ID, rr.LabTestID, string(rr.Type), rr.Value, rr.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create %s reference range: %w", rr.Type, err)
		}
	}
	return nil
}

func (r *labTestRepository) List(ctx context.Context, scope domain.Scope, limit int, offset int) ([]domain.LabTest, error) {
	limit, offset = limitOffset(limit, offset)

	rows, err := r.q.Query(
		ctx,
		`SELECT `+labTestColumns+`
		 FROM lab_tests
		 WHERE company_id = $1 AND plant_id = $2
		 ORDER BY name
		 LIMIT $3 OFFSET $4`,
		scope.CompanyID, scope.PlantID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab tests: %w", err)
	}
	defer rows.Close()

	tests := []domain.LabTest{}
	for rows.Next() {
		t, scanErr := scanLabTest(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan lab test: %w", scanErr)
		}
		tests = append(tests, t)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate lab tests: %w", rowsErr)
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

	rows, err := r.q.Query(
		ctx,
		`SELECT id, lab_test_id, reference_type, value, created_at
		 FROM lab_test_reference_ranges
		 WHERE lab_test_id = ANY($1::uuid[])
		 ORDER BY lab_test_id, reference_type`,
		keys,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference ranges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rr  domain.ReferenceRange
			typ string
		)
		if scanErr := rows.Scan(&rr.ID, &rr.LabTestID, &typ, &rr.Value, &rr.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan reference range: %w", scanErr)
		}
		rr.Type = domain.ReferenceType(typ)
		result[rr.LabTestID] = append(result[rr.LabTestID], rr)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate reference ranges: %w", rowsErr)
	}
	return result, nil
}
