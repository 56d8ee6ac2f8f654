package store

import (
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells the repositories how to surface a failed
// statement to the services.
type ErrorClassification int

const (
	// NonRetryable failures are reported as they are.
	NonRetryable ErrorClassification = iota

	// Retryable failures are wrapped with ErrRetryable; the sync job retries
	// them on its next attempt.
	Retryable

	// Conflict failures are wrapped with ErrEntityExists.
	Conflict
)

// PostgresErrorClassifier implements [ErrorClassificator] for the pgx driver.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator]. Lost connections surfaced by
// database/sql as driver.ErrBadConn are retryable too.
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ClassifyPgError(pgErr)
	}

	if errors.Is(err, driver.ErrBadConn) {
		return Retryable
	}

	return NonRetryable
}

// ClassifyPgError classifies by SQLSTATE class: connection exceptions (08),
// transaction rollbacks (40) and "cannot connect now" are retryable, unique
// violations are conflicts, anything else is final.
func ClassifyPgError(pgErr *pgconn.PgError) ErrorClassification {
	code := pgErr.Code

	switch {
	case pgerrcode.IsConnectionException(code),
		pgerrcode.IsTransactionRollback(code),
		code == pgerrcode.CannotConnectNow:
		return Retryable
	case code == pgerrcode.UniqueViolation:
		return Conflict
	default:
		return NonRetryable
	}
}
