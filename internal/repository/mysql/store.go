// Package mysql implements the repository interfaces on MySQL through sqlx.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpattn/klinik/internal/db"
	"github.com/rpattn/klinik/internal/repository"

	"github.com/jmoiron/sqlx"
)

type store struct {
	db *sqlx.DB
}

// NewStore wires a repository.Store backed by a sqlx MySQL handle.
func NewStore(conn *sqlx.DB) repository.Store {
	return &store{db: conn}
}

func (s *store) InTx(ctx context.Context, fn func(repository.Tx) error) error {
	return db.WithSQLTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(&sqlTx{tx: tx})
	})
}

func (s *store) Repositories() repository.Repositories {
	return NewRepositories(s.db)
}

func (s *store) ImportLogs() repository.ImportLogRepository {
	return NewImportLogRepository(s.db)
}

type sqlTx struct {
	tx  *sqlx.Tx
	seq int
}

func (t *sqlTx) Repositories() repository.Repositories {
	return NewRepositories(t.tx)
}

func (t *sqlTx) Savepoint(ctx context.Context, fn func(repository.Repositories) error) (err error) {
	t.seq++
	name := fmt.Sprintf("sp_%d", t.seq)

	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_, _ = t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
			panic(p)
		}
	}()

	if err := fn(NewRepositories(t.tx)); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("savepoint error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

// NewRepositories binds every master-data repository to q.
func NewRepositories(q sqlx.ExtContext) repository.Repositories {
	return repository.Repositories{
		Diagnoses:   &diagnosisRepository{q: q},
		Departments: &departmentRepository{q: q},
		LabTests:    &labTestRepository{q: q},
		Inventory:   &inventoryRepository{q: q},
	}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func mustAffect(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to update %s: %w", what, repository.ErrNotFound)
	}
	return nil
}
