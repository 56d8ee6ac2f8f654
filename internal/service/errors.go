package service

import (
	"errors"

	"github.com/MKhiriev/go-kitchen-sync/internal/store"
)

// Sync failures. Every error returned by the client sync service matches at
// most one of them with errors.Is.
var (
	// ErrNetwork means the remote fetch or push did not complete. Pending
	// entities were moved to the error status and are retried next cycle.
	ErrNetwork = errors.New("network error")

	// ErrTransaction means a local store operation failed. Nothing from the
	// failed apply is visible; the next cycle starts from fresh snapshots.
	ErrTransaction = errors.New("transaction error")

	// ErrInvalidSnapshot means a snapshot broke a precondition (duplicate
	// keys, foreign collection, bad hash). It is never retried.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrUnauthorized means the remote rejected the device token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRejected means the remote refused the request as malformed.
	ErrRejected = errors.New("request rejected by remote")
)

var (
	ErrInvalidDataProvided   = errors.New("invalid data provided")
	ErrValidationNoUserID    = errors.New("no user ID was given")
	ErrEntityNotFound        = store.ErrEntityNotFound
	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)

// IsRetryable reports whether a sync error may clear on its own: network
// and local transaction failures are, everything else is not.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrInvalidSnapshot) {
		return false
	}
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrTransaction)
}
