package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SyncStatus records the reconciliation state of a local entity since the
// last successful sync round trip.
type SyncStatus string

const (
	// StatusSynced means local and remote agreed at the last round trip.
	StatusSynced SyncStatus = "synced"

	// StatusCreated marks an entity created locally and never pushed.
	StatusCreated SyncStatus = "created"

	// StatusUpdated marks a synced entity edited locally since the last push.
	StatusUpdated SyncStatus = "updated"

	// StatusDeleted marks a local tombstone waiting for the remote to confirm
	// the deletion.
	StatusDeleted SyncStatus = "deleted"

	// StatusError marks an entity whose last push or apply failed.
	// Entity.PendingStatus keeps the status the entity is retried with.
	StatusError SyncStatus = "error"
)

var knownStatuses = map[SyncStatus]struct{}{
	StatusSynced:  {},
	StatusCreated: {},
	StatusUpdated: {},
	StatusDeleted: {},
	StatusError:   {},
}

// ParseSyncStatus converts s into a SyncStatus.
// An empty string is treated as StatusSynced.
func ParseSyncStatus(s string) (SyncStatus, error) {
	if s == "" {
		return StatusSynced, nil
	}
	status := SyncStatus(s)
	if _, ok := knownStatuses[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSyncStatus, s)
	}
	return status, nil
}

func (s SyncStatus) String() string {
	return string(s)
}

// IsPending reports whether the entity carries a local change the remote has
// not confirmed yet.
func (s SyncStatus) IsPending() bool {
	return s != StatusSynced && s != ""
}

// MarshalJSON implements json.Marshaler.
func (s SyncStatus) MarshalJSON() ([]byte, error) {
	if s == "" {
		s = StatusSynced
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler and rejects unknown values.
func (s *SyncStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseSyncStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer.
func (s SyncStatus) Value() (driver.Value, error) {
	if s == "" {
		return string(StatusSynced), nil
	}
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *SyncStatus) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = StatusSynced
		return nil
	case string:
		parsed, err := ParseSyncStatus(v)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case []byte:
		parsed, err := ParseSyncStatus(string(v))
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrUnknownSyncStatus, src)
	}
}
