package store

import "errors"

// Sentinel errors returned by stores to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrTransaction wraps every failure of a local store transaction:
	// begin, any operation inside it, commit, or persistence. Nothing from
	// the failed transaction is visible afterwards.
	ErrTransaction = errors.New("local store transaction failed")

	// ErrEntityNotFound is returned when a lookup by key matches nothing.
	ErrEntityNotFound = errors.New("entity was not found")

	// ErrEntityExists is returned when Insert targets a key that is already
	// stored.
	ErrEntityExists = errors.New("entity already exists")

	// ErrRetryable marks database failures that may succeed if attempted
	// again (connection loss, serialization failure, busy database).
	ErrRetryable = errors.New("retryable database error")
)

// Low-level database operation errors. These are returned (or wrapped) when
// a SQL-level operation fails before any domain logic can be applied.
var (
	// ErrBuildingSQLQuery is returned when squirrel cannot build a query.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the driver cannot start a
	// transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing fails. The
	// transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when an INSERT, UPDATE or DELETE
	// fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning a result row fails.
	ErrScanningRow = errors.New("failed to scan entity row")

	// ErrScanningRows is returned when row iteration fails mid-result-set.
	ErrScanningRows = errors.New("failed to scan entity rows")
)
