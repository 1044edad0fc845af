package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// MySQLDSN renders a go-sql-driver DSN. multiStatements is only wanted by the
// migration runner.
func (c Config) MySQLDSN(multiStatements bool) string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = c.Host + ":" + strconv.Itoa(c.Port)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.MultiStatements = multiStatements
	return mc.FormatDSN()
}

// NewMySQL opens a sqlx handle for the mysql driver.
func NewMySQL(ctx context.Context, config Config) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "mysql", config.MySQLDSN(false))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	conn.SetMaxOpenConns(int(config.MaxConns))
	conn.SetMaxIdleConns(int(config.MinConns))
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	return conn, nil
}

// WithSQLTx is the sqlx counterpart of Connection.WithTx.
func WithSQLTx(ctx context.Context, conn *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if err := tx.Rollback(); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("failed to rollback transaction")
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
