package reconciler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSnapshot is returned when a snapshot contains the same key
	// twice. It signals a bug in the caller and must not be retried.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrInvalidOptions is returned when the supplied options cannot work
	// together, e.g. LastWriterWins without a clock.
	ErrInvalidOptions = errors.New("invalid reconcile options")

	// ErrNilKeyFunc is returned when Reconcile is called without a key
	// function.
	ErrNilKeyFunc = errors.New("nil key function")
)

// Side names the snapshot an error refers to.
type Side string

const (
	SideLocal  Side = "local"
	SideRemote Side = "remote"
)

// SnapshotError reports the first duplicate key found in a snapshot.
type SnapshotError struct {
	Side  Side
	Key   string
	Index int
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("%s: duplicate key %q in %s snapshot at index %d", ErrInvalidSnapshot, e.Key, e.Side, e.Index)
}

func (e *SnapshotError) Unwrap() error {
	return ErrInvalidSnapshot
}
