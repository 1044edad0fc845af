package repository

import (
	"context"
	"errors"

	"github.com/rpattn/klinik/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type pgStore struct {
	conn *db.Connection
}

// NewPostgresStore wires a Store backed by the pgx pool.
func NewPostgresStore(conn *db.Connection) Store {
	return &pgStore{conn: conn}
}

func (s *pgStore) InTx(ctx context.Context, fn func(Tx) error) error {
	return s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

func (s *pgStore) Repositories() Repositories {
	return NewRepositories(s.conn.Pool)
}

func (s *pgStore) ImportLogs() ImportLogRepository {
	return NewImportLogRepository(s.conn.Pool)
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Repositories() Repositories {
	return NewRepositories(t.tx)
}

func (t *pgTx) Savepoint(ctx context.Context, fn func(Repositories) error) error {
	return db.WithSavepoint(ctx, t.tx, func(sp pgx.Tx) error {
		return fn(NewRepositories(sp))
	})
}

// NewRepositories binds every master-data repository to q.
func NewRepositories(q DBTX) Repositories {
	return Repositories{
		Diagnoses:   NewDiagnosisRepository(q),
		Departments: NewDepartmentRepository(q),
		LabTests:    NewLabTestRepository(q),
		Inventory:   NewInventoryRepository(q),
	}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
