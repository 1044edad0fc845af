package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type departmentRow struct {
	ID          uuid.UUID `db:"id"`
	CompanyID   uuid.UUID `db:"company_id"`
	PlantID     uuid.UUID `db:"plant_id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedBy   uuid.UUID `db:"created_by"`
	UpdatedBy   uuid.UUID `db:"updated_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type departmentRepository struct {
	q sqlx.ExtContext
}

func (r *departmentRepository) FindByName(ctx context.Context, scope domain.Scope, name string) (domain.Department, error) {
	var row departmentRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT id, company_id, plant_id, name, description, is_active, created_by, updated_by, created_at, updated_at
		 FROM departments WHERE company_id = ? AND plant_id = ? AND name_key = ?`,
		scope.CompanyID, scope.PlantID, domain.NameKey(name),
	)
	if err != nil {
		return domain.Department{}, fmt.Errorf("failed to find department %q: %w", name, notFound(err))
	}
	return domain.Department{
		ID:          row.ID,
		Scope:       domain.Scope{CompanyID: row.CompanyID, PlantID: row.PlantID},
		Name:        row.Name,
		Description: row.Description,
		Audit: domain.Audit{
			IsActive:  row.IsActive,
			CreatedBy: row.CreatedBy,
			UpdatedBy: row.UpdatedBy,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}, nil
}

func (r *departmentRepository) Create(ctx context.Context, d domain.Department) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO departments (id, company_id, plant_id, name, name_key, description, is_active, created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Scope.CompanyID, d.Scope.PlantID, d.Name, domain.NameKey(d.Name), d.Description,
		d.IsActive, d.CreatedBy, d.UpdatedBy, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (r *departmentRepository) Update(ctx context.Context, d domain.Department) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE departments SET description = ?, updated_by = ?, updated_at = ? WHERE id = ?`,
		d.Description, d.UpdatedBy, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update department: %w", err)
	}
	return mustAffect(res, "department "+d.ID.String())
}
