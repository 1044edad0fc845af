package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type diagnosisRow struct {
	ID          uuid.UUID `db:"id"`
	Code        string    `db:"code"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedBy   uuid.UUID `db:"created_by"`
	UpdatedBy   uuid.UUID `db:"updated_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r diagnosisRow) toDomain() domain.Diagnosis {
	return domain.Diagnosis{
		ID:          r.ID,
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Audit: domain.Audit{
			IsActive:  r.IsActive,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
	}
}

type diagnosisRepository struct {
	q sqlx.ExtContext
}

func (r *diagnosisRepository) FindByCode(ctx context.Context, code string) (domain.Diagnosis, error) {
	var row diagnosisRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT id, code, name, description, is_active, created_by, updated_by, created_at, updated_at
		 FROM diagnoses WHERE code = ?`,
		code,
	)
	if err != nil {
		return domain.Diagnosis{}, fmt.Errorf("failed to find diagnosis %q: %w", code, notFound(err))
	}
	return row.toDomain(), nil
}

func (r *diagnosisRepository) Create(ctx context.Context, d domain.Diagnosis) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO diagnoses (id, code, name, description, is_active, created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Code, d.Name, d.Description, d.IsActive, d.CreatedBy, d.UpdatedBy, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create diagnosis: %w", err)
	}
	return nil
}

func (r *diagnosisRepository) Update(ctx context.Context, d domain.Diagnosis) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE diagnoses SET name = ?, description = ?, updated_by = ?, updated_at = ? WHERE id = ?`,
		d.Name, d.Description, d.UpdatedBy, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update diagnosis: %w", err)
	}
	return mustAffect(res, "diagnosis "+d.ID.String())
}
