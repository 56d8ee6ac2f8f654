package reconciler

import (
	"github.com/rs/zerolog"
)

// Result is the set of local mutations that converges the local snapshot
// toward the remote one.
type Result[T any] struct {
	// Inserted holds remote entities whose key is absent locally,
	// in remote snapshot order.
	Inserted []T

	// Deleted holds keys present only locally that must be removed,
	// in local snapshot order.
	Deleted []string

	// Unchanged holds every key present in both snapshots,
	// in remote snapshot order.
	Unchanged []string

	// Updated holds remote entities that must overwrite their local
	// counterpart. Their keys are also listed in Unchanged.
	Updated []T

	// Protected holds local-only keys kept out of Deleted by the protection
	// predicate, in local snapshot order.
	Protected []string
}

// IsEmpty reports whether applying r would not change the local store.
func (r Result[T]) IsEmpty() bool {
	return len(r.Inserted) == 0 && len(r.Deleted) == 0 && len(r.Updated) == 0
}

// Summary returns the sizes of r for logging.
func (r Result[T]) Summary() Summary {
	return Summary{
		Inserted:  len(r.Inserted),
		Deleted:   len(r.Deleted),
		Unchanged: len(r.Unchanged),
		Updated:   len(r.Updated),
		Protected: len(r.Protected),
	}
}

// Summary holds the sizes of a Result.
type Summary struct {
	Inserted  int `json:"inserted"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
	Updated   int `json:"updated"`
	Protected int `json:"protected"`
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Int("inserted", s.Inserted).
		Int("deleted", s.Deleted).
		Int("unchanged", s.Unchanged).
		Int("updated", s.Updated).
		Int("protected", s.Protected)
}

// Reconcile compares the local and remote snapshots of one collection.
//
// Both snapshots must have unique keys; a duplicate yields a *SnapshotError
// wrapping ErrInvalidSnapshot. Neither input slice is modified and the
// entities are copied into the Result by value.
//
// It builds a key index for each side, then makes two linear passes:
//   - over remote: keys missing locally are inserted; shared keys are
//     unchanged and go through the merge strategy;
//   - over local: keys missing remotely are deleted unless protected.
func Reconcile[T any](local, remote []T, key KeyFunc[T], opts ...Option[T]) (Result[T], error) {
	if key == nil {
		return Result[T]{}, ErrNilKeyFunc
	}

	o := options[T]{strategy: KeepLocal}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return Result[T]{}, err
	}

	localIndex, err := index(local, key, SideLocal)
	if err != nil {
		return Result[T]{}, err
	}
	remoteIndex, err := index(remote, key, SideRemote)
	if err != nil {
		return Result[T]{}, err
	}

	var result Result[T]

	// ── Pass 1: remote records ─────────────────────────────────────────────
	for _, r := range remote {
		k := key(r)

		pos, existsLocally := localIndex[k]
		if !existsLocally {
			result.Inserted = append(result.Inserted, r)
			continue
		}

		result.Unchanged = append(result.Unchanged, k)
		if o.overwrite(local[pos], r) {
			result.Updated = append(result.Updated, r)
		}
	}

	// ── Pass 2: local-only records ─────────────────────────────────────────
	for _, l := range local {
		k := key(l)

		if _, existsRemotely := remoteIndex[k]; existsRemotely {
			continue
		}

		if o.protected != nil && o.protected(l) {
			result.Protected = append(result.Protected, k)
			continue
		}
		result.Deleted = append(result.Deleted, k)
	}

	return result, nil
}

func (o *options[T]) overwrite(local, remote T) bool {
	switch o.strategy {
	case RemoteWins:
		return o.changed(local, remote)
	case LastWriterWins:
		if !o.changed(local, remote) {
			return false
		}
		if o.pending != nil && !o.pending(local) {
			return true
		}
		return o.clock(remote).After(o.clock(local))
	default:
		return false
	}
}

func index[T any](snapshot []T, key KeyFunc[T], side Side) (map[string]int, error) {
	idx := make(map[string]int, len(snapshot))
	for i, item := range snapshot {
		k := key(item)
		if _, dup := idx[k]; dup {
			return nil, &SnapshotError{Side: side, Key: k, Index: i}
		}
		idx[k] = i
	}
	return idx, nil
}
