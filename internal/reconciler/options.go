package reconciler

import (
	"fmt"
	"time"
)

// Strategy decides what happens to entities whose key is present in both
// snapshots.
type Strategy int

const (
	// KeepLocal never overwrites a shared entity; it is only reported as
	// unchanged.
	KeepLocal Strategy = iota

	// RemoteWins overwrites the local entity whenever its content differs
	// from the remote one, discarding unpushed local edits.
	RemoteWins

	// LastWriterWins overwrites a local entity without pending changes
	// whenever the content differs. A local entity with pending changes is
	// overwritten only if the remote timestamp is strictly newer; otherwise
	// it stays and is pushed on the next cycle.
	LastWriterWins
)

func (s Strategy) String() string {
	switch s {
	case KeepLocal:
		return "keep_local"
	case RemoteWins:
		return "remote_wins"
	case LastWriterWins:
		return "last_writer_wins"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy converts a config value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "last_writer_wins", "lww":
		return LastWriterWins, nil
	case "remote_wins":
		return RemoteWins, nil
	case "keep_local":
		return KeepLocal, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidOptions, s)
	}
}

// KeyFunc extracts the unique key of an entity.
type KeyFunc[T any] func(T) string

// Option configures a single Reconcile call.
type Option[T any] func(*options[T])

type options[T any] struct {
	protected func(T) bool
	pending   func(T) bool
	changed   func(local, remote T) bool
	clock     func(T) time.Time
	strategy  Strategy
}

// WithProtection keeps local-only entities matching protected out of the
// deletion set. They are reported in Result.Protected instead.
func WithProtection[T any](protected func(T) bool) Option[T] {
	return func(o *options[T]) {
		o.protected = protected
	}
}

// WithMerge enables the update path for shared keys.
// changed reports whether the local and remote content differ; clock
// returns the last-modified time and is required by LastWriterWins.
func WithMerge[T any](strategy Strategy, changed func(local, remote T) bool, clock func(T) time.Time) Option[T] {
	return func(o *options[T]) {
		o.strategy = strategy
		o.changed = changed
		o.clock = clock
	}
}

// WithPending tells LastWriterWins which local entities carry unpushed
// changes. Without it every local entity is treated as pending.
func WithPending[T any](pending func(T) bool) Option[T] {
	return func(o *options[T]) {
		o.pending = pending
	}
}

func (o *options[T]) validate() error {
	switch o.strategy {
	case KeepLocal:
		return nil
	case RemoteWins:
		if o.changed == nil {
			return fmt.Errorf("%w: %s needs a change detector", ErrInvalidOptions, o.strategy)
		}
	case LastWriterWins:
		if o.changed == nil || o.clock == nil {
			return fmt.Errorf("%w: %s needs a change detector and a clock", ErrInvalidOptions, o.strategy)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOptions, o.strategy)
	}
	return nil
}
