package mysql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type importLogRow struct {
	ID         uuid.UUID `db:"id"`
	Kind       string    `db:"kind"`
	FileName   string    `db:"file_name"`
	CompanyID  uuid.UUID `db:"company_id"`
	PlantID    uuid.UUID `db:"plant_id"`
	ActorID    uuid.UUID `db:"actor_id"`
	Status     string    `db:"status"`
	TotalRows  int       `db:"total_rows"`
	Imported   int       `db:"imported"`
	Created    int       `db:"created"`
	Updated    int       `db:"updated"`
	ErrorCount int       `db:"error_count"`
	Errors     []byte    `db:"errors"`
	CreatedAt  time.Time `db:"created_at"`
}

type importLogRepository struct {
	q sqlx.ExtContext
}

// NewImportLogRepository wires an audit trail repository backed by sqlx.
func NewImportLogRepository(q sqlx.ExtContext) repository.ImportLogRepository {
	return &importLogRepository{q: q}
}

func (r *importLogRepository) Record(ctx context.Context, entry domain.ImportLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	errs := entry.Errors
	if errs == nil {
		errs = []string{}
	}
	payload, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("failed to encode import errors: %w", err)
	}

	_, err = r.q.ExecContext(ctx,
		`INSERT INTO import_logs (id, kind, file_name, company_id, plant_id, actor_id, status,
		                          total_rows, imported, created, updated, error_count, errors, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Kind, entry.FileName, entry.Scope.CompanyID, entry.Scope.PlantID, entry.ActorID,
		entry.Status, entry.TotalRows, entry.Imported, entry.Created, entry.Updated, entry.ErrorCount,
		string(payload), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record import log: %w", err)
	}
	return nil
}

func (r *importLogRepository) List(ctx context.Context, scope domain.Scope, kind string, limit int, offset int) ([]domain.ImportLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var rows []importLogRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT id, kind, file_name, company_id, plant_id, actor_id, status,
		        total_rows, imported, created, updated, error_count, errors, created_at
		 FROM import_logs
		 WHERE company_id = ? AND plant_id = ? AND (? = '' OR kind = ?)
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		scope.CompanyID, scope.PlantID, kind, kind, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}

	logs := make([]domain.ImportLogEntry, 0, len(rows))
	for _, row := range rows {
		entry := domain.ImportLogEntry{
			ID:         row.ID,
			Kind:       row.Kind,
			FileName:   row.FileName,
			Scope:      domain.Scope{CompanyID: row.CompanyID, PlantID: row.PlantID},
			ActorID:    row.ActorID,
			Status:     row.Status,
			TotalRows:  row.TotalRows,
			Imported:   row.Imported,
			Created:    row.Created,
			Updated:    row.Updated,
			ErrorCount: row.ErrorCount,
			CreatedAt:  row.CreatedAt,
		}
		if err := json.Unmarshal(row.Errors, &entry.Errors); err != nil {
			return nil, fmt.Errorf("failed to decode import errors: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
