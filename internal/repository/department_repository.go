package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/klinik/internal/domain"
)

type departmentRepository struct {
	q DBTX
}

// NewDepartmentRepository creates a pgx backed department repository
func NewDepartmentRepository(q DBTX) DepartmentRepository {
	return &departmentRepository{q: q}
}

func (r *departmentRepository) FindByName(ctx context.Context, scope domain.Scope, name string) (domain.Department, error) {
	var d domain.Department
	err := r.q.QueryRow(
		ctx,
		`SELECT id, company_id, plant_id, name, description, is_active, created_by, updated_by, created_at, updated_at
		 FROM departments
		 WHERE company_id = $1 AND plant_id = $2 AND name_key = $3`,
		scope.CompanyID, scope.PlantID, domain.NameKey(name),
	).Scan(
		&d.ID,
		&d.Scope.CompanyID,
		&d.Scope.PlantID,
		&d.Name,
		&d.Description,
		&d.IsActive,
		&d.CreatedBy,
		&d.UpdatedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return domain.Department{}, fmt.Errorf("failed to find department %q: %w", name, notFound(err))
	}
	return d, nil
}

func (r *departmentRepository) Create(ctx context.Context, d domain.Department) error {
	_, err := r.q.Exec(
		ctx,
		`INSERT INTO departments (id, company_id, plant_id, name, name_key, description, is_active, created_by, updated_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		d.ID, d.Scope.CompanyID, d.Scope.PlantID, d.Name, domain.NameKey(d.Name), d.Description,
		d.IsActive, d.CreatedBy, d.UpdatedBy, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (r *departmentRepository) Update(ctx context.Context, d domain.Department) error {
	tag, err := r.q.Exec(
		ctx,
		`UPDATE departments
		 SET description = $2, updated_by = $3, updated_at = $4
		 WHERE id = $1`,
		d.ID, d.Description, d.UpdatedBy, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update department %s: %w", d.ID, ErrNotFound)
	}
	return nil
}
