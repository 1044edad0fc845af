package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubRow struct {
	err error
}

func (r stubRow) Scan(dest ...any) error {
	return r.err
}

type stubDBTX struct {
	rowErr   error
	execTag  pgconn.CommandTag
	execErr  error
	lastSQL  string
	lastArgs []any
}

var _ DBTX = (*stubDBTX)(nil)

func (s *stubDBTX) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	s.lastSQL = sql
	s.lastArgs = args
	return s.execTag, s.execErr
}

func (s *stubDBTX) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (s *stubDBTX) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	s.lastSQL = sql
	s.lastArgs = args
	return stubRow{err: s.rowErr}
}

func TestFindMapsNoRowsToErrNotFound(t *testing.T) {
	q := &stubDBTX{rowErr: pgx.ErrNoRows}
	scope := domain.Scope{CompanyID: uuid.New(), PlantID: uuid.New()}

	if _, err := NewDiagnosisRepository(q).FindByCode(context.Background(), "A00"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("diagnosis: expected ErrNotFound, got %v", err)
	}
	if _, err := NewDepartmentRepository(q).FindByName(context.Background(), scope, "Poli"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("department: expected ErrNotFound, got %v", err)
	}
	if _, err := NewLabTestRepository(q).FindByName(context.Background(), scope, "Hb"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("lab test: expected ErrNotFound, got %v", err)
	}
	if _, err := NewInventoryRepository(q).FindByName(context.Background(), scope, "Kasa"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inventory: expected ErrNotFound, got %v", err)
	}
}

func TestFindByNameUsesNormalizedKey(t *testing.T) {
	q := &stubDBTX{rowErr: pgx.ErrNoRows}
	scope := domain.Scope{CompanyID: uuid.New(), PlantID: uuid.New()}

	_, _ = NewDepartmentRepository(q).FindByName(context.Background(), scope, "  Poli UMUM ")

	if len(q.lastArgs) != 3 || q.lastArgs[2] != "poli umum" {
		t.Fatalf("expected normalized name key, got %v", q.lastArgs)
	}
}

func TestUpdateWithoutMatchingRowIsNotFound(t *testing.T) {
	q := &stubDBTX{execTag: pgconn.NewCommandTag("UPDATE 0")}

	err := NewDiagnosisRepository(q).Update(context.Background(), domain.Diagnosis{ID: uuid.New()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordImportLogDefaultsErrors(t *testing.T) {
	q := &stubDBTX{execTag: pgconn.NewCommandTag("INSERT 0 1")}

	if err := NewImportLogRepository(q).Record(context.Background(), domain.ImportLogEntry{Kind: "diagnosa"}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	payload, ok := q.lastArgs[len(q.lastArgs)-1].([]byte)
	if !ok || string(payload) != "[]" {
		t.Fatalf("expected empty json array payload, got %v", q.lastArgs[len(q.lastArgs)-1])
	}
	if id, ok := q.lastArgs[0].(uuid.UUID); !ok || id == uuid.Nil {
		t.Fatalf("expected generated id, got %v", q.lastArgs[0])
	}
}

func TestLimitOffsetBounds(t *testing.T) {
	if l, o := limitOffset(0, -5); l != 100 || o != 0 {
		t.Fatalf("unexpected defaults %d/%d", l, o)
	}
	if l, _ := limitOffset(10000, 0); l != 100 {
		t.Fatalf("expected oversized limit to reset, got %d", l)
	}
	if l, o := limitOffset(25, 50); l != 25 || o != 50 {
		t.Fatalf("unexpected passthrough %d/%d", l, o)
	}
}
