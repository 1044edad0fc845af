package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type importLogRepository struct {
	q DBTX
}

// NewImportLogRepository wires a repository backed by pgx.
func NewImportLogRepository(q DBTX) ImportLogRepository {
	return &importLogRepository{q: q}
}

func (r *importLogRepository) Record(ctx context.Context, entry domain.ImportLogEntry) error {
	if r.q == nil {
		return fmt.Errorf("import log repository not initialized")
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	errs := entry.Errors
	if errs == nil {
		errs = []string{}
	}
	payload, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("failed to encode import errors: %w", err)
	}

	_, err = r.q.Exec(
		ctx,
		`INSERT INTO import_logs (id, kind, file_name, company_id, plant_id, actor_id, status,
		                          total_rows, imported, created, updated, error_count, errors)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.ID,
		entry.Kind,
		entry.FileName,
		entry.Scope.CompanyID,
		entry.Scope.PlantID,
		entry.ActorID,
		entry.Status,
		entry.TotalRows,
		entry.Imported,
		entry.Created,
		entry.Updated,
		entry.ErrorCount,
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to record import log: %w", err)
	}

	return nil
}

func (r *importLogRepository) List(ctx context.Context, scope domain.Scope, kind string, limit int, offset int) ([]domain.ImportLogEntry, error) {
	if r.q == nil {
		return nil, fmt.Errorf("import log repository not initialized")
	}

	limit, offset = limitOffset(limit, offset)

	rows, err := r.q.Query(
		ctx,
		`SELECT id, kind, file_name, company_id, plant_id, actor_id, status,
		        total_rows, imported, created, updated, error_count, errors, created_at
		 FROM import_logs
		 WHERE company_id = $1
		   AND plant_id = $2
		   AND ($3 = '' OR kind = $3)
		 ORDER BY created_at DESC
		 LIMIT $4 OFFSET $5`,
		scope.CompanyID,
		scope.PlantID,
		kind,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.ImportLogEntry{}
	for rows.Next() {
		var (
			entry     domain.ImportLogEntry
			payload   []byte
			createdAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.Kind,
			&entry.FileName,
			&entry.Scope.CompanyID,
			&entry.Scope.PlantID,
			&entry.ActorID,
			&entry.Status,
			&entry.TotalRows,
			&entry.Imported,
			&entry.Created,
			&entry.Updated,
			&entry.ErrorCount,
			&payload,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", scanErr)
		}

		if err := json.Unmarshal(payload, &entry.Errors); err != nil {
			return nil, fmt.Errorf("failed to decode import errors: %w", err)
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}

		logs = append(logs, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate import logs: %w", rowsErr)
	}

	return logs, nil
}
