package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
)

// DB wraps a *sql.DB with the dialect specific error classification.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	migrate            func(*sql.DB) error
	logger             *logger.Logger
}

// ErrorClassificator decides whether a database error is worth retrying or
// reports a key collision.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run inside or
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Migrate applies the schema of the connected dialect.
func (db *DB) Migrate() error {
	if db.migrate == nil {
		return fmt.Errorf("no migrations registered for this database")
	}
	return db.migrate(db.DB)
}

// classify wraps err with ErrRetryable or ErrEntityExists when the
// classifier says so.
func (db *DB) classify(err error) error {
	if err == nil || db.errorClassificator == nil {
		return err
	}
	switch db.errorClassificator.Classify(err) {
	case Retryable:
		return fmt.Errorf("%w: %w", ErrRetryable, err)
	case Conflict:
		return fmt.Errorf("%w: %w", ErrEntityExists, err)
	default:
		return err
	}
}

// NewDBFromSQL wraps an already opened connection. Used by tests.
func NewDBFromSQL(conn *sql.DB, classificator ErrorClassificator, log *logger.Logger) *DB {
	return &DB{DB: conn, errorClassificator: classificator, logger: log}
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
