package repository

import (
	"context"
	"errors"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// DiagnosisRepository defines the persistence operations for diagnoses
type DiagnosisRepository interface {
	FindByCode(ctx context.Context, code string) (domain.Diagnosis, error)
	Create(ctx context.Context, diagnosis domain.Diagnosis) error
	Update(ctx context.Context, diagnosis domain.Diagnosis) error
}

// DepartmentRepository defines the persistence operations for departments
type DepartmentRepository interface {
	FindByName(ctx context.Context, scope domain.Scope, name string) (domain.Department, error)
	Create(ctx context.Context, department domain.Department) error
	Update(ctx context.Context, department domain.Department) error
}

// LabTestRepository defines the persistence operations for lab tests and their reference ranges
type LabTestRepository interface {
	FindByName(ctx context.Context, scope domain.Scope, name string) (domain.LabTest, error)
	Create(ctx context.Context, test domain.LabTest) error
	Update(ctx context.Context, test domain.LabTest) error
	AddReferenceRanges(ctx context.Context, ranges []domain.ReferenceRange) error
	List(ctx context.Context, scope domain.Scope, limit int, offset int) ([]domain.LabTest, error)
	ReferenceRangesByTestIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.ReferenceRange, error)
}

// InventoryRepository defines the persistence operations for inventory items
type InventoryRepository interface {
	FindByName(ctx context.Context, scope domain.Scope, name string) (domain.InventoryItem, error)
	Create(ctx context.Context, item domain.InventoryItem) error
	Update(ctx context.Context, item domain.InventoryItem) error
}

// ImportLogRepository persists the audit trail of import runs
type ImportLogRepository interface {
	Record(ctx context.Context, entry domain.ImportLogEntry) error
	List(ctx context.Context, scope domain.Scope, kind string, limit int, offset int) ([]domain.ImportLogEntry, error)
}

// Repositories groups the master-data repositories bound to one connection or transaction.
type Repositories struct {
	Diagnoses   DiagnosisRepository
	Departments DepartmentRepository
	LabTests    LabTestRepository
	Inventory   InventoryRepository
}

// Tx is an open transaction.
type Tx interface {
	Repositories() Repositories
	// Savepoint runs fn so that a failure undoes only fn's writes and leaves
	// the transaction usable.
	Savepoint(ctx context.Context, fn func(Repositories) error) error
}

// Store opens transactions against one backend.
type Store interface {
	// InTx commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(Tx) error) error
	// Repositories returns repositories outside any transaction, for reads.
	Repositories() Repositories
	ImportLogs() ImportLogRepository
}

func limitOffset(limit, offset int) (int, int) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
