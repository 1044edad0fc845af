package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportLogEntry records the outcome of one bulk import run.
type ImportLogEntry struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"kind"`
	FileName   string    `json:"file_name"`
	Scope      Scope     `json:"scope"`
	ActorID    uuid.UUID `json:"actor_id"`
	Status     string    `json:"status"`
	TotalRows  int       `json:"total_rows"`
	Imported   int       `json:"imported"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	ErrorCount int       `json:"error_count"`
	Errors     []string  `json:"errors"`
	CreatedAt  time.Time `json:"created_at"`
}
