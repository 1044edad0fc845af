package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/klinik/internal/domain"
)

type diagnosisRepository struct {
	q DBTX
}

// NewDiagnosisRepository creates a pgx backed diagnosis repository
func NewDiagnosisRepository(q DBTX) DiagnosisRepository {
	return &diagnosisRepository{q: q}
}

func (r *diagnosisRepository) FindByCode(ctx context.Context, code string) (domain.Diagnosis, error) {
	var d domain.Diagnosis
	err := r.q.QueryRow(
		ctx,
		`SELECT id, code, name, description, is_active, created_by, updated_by, created_at, updated_at
		 FROM diagnoses
		 WHERE code = $1`,
		code,
	).Scan(
		&d.ID,
		&d.Code,
		&d.Name,
		&d.Description,
		&d.IsActive,
		&d.CreatedBy,
		&d.UpdatedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return domain.Diagnosis{}, fmt.Errorf("failed to find diagnosis %q: %w", code, notFound(err))
	}
	return d, nil
}

func (r *diagnosisRepository) Create(ctx context.Context, d domain.Diagnosis) error {
	_, err := r.q.Exec(
		ctx,
		`INSERT INTO diagnoses (id, code, name, description, is_active, created_by, updated_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.Code, d.Name, d.Description, d.IsActive, d.CreatedBy, d.UpdatedBy, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create diagnosis: %w", err)
	}
	return nil
}

func (r *diagnosisRepository) Update(ctx context.Context, d domain.Diagnosis) error {
	tag, err := r.q.Exec(
		ctx,
		`UPDATE diagnoses
		 SET name = $2, description = $3, updated_by = $4, updated_at = $5
		 WHERE id = $1`,
		d.ID, d.Name, d.Description, d.UpdatedBy, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update diagnosis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update diagnosis %s: %w", d.ID, ErrNotFound)
	}
	return nil
}
