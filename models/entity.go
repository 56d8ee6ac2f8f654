package models

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Entity is the domain-opaque envelope shared by every synchronised kitchen
// record. The reconciler only looks at Key, Status, Hash and UpdatedAt; the
// typed content lives in Payload.
type Entity struct {
	// Key is the stable unique identifier of the entity within its
	// collection. It is assigned once at creation and never changes.
	Key string `json:"key"`

	// UserID is the owner of the entity.
	UserID int64 `json:"user_id"`

	// Collection the entity belongs to.
	Collection Collection `json:"collection"`

	// Payload is the JSON encoding of the typed domain struct.
	Payload json.RawMessage `json:"payload"`

	// Hash is the BLAKE2b-256 digest of Payload, hex encoded.
	Hash string `json:"hash"`

	// Status is the local reconciliation state. The remote side always
	// reports StatusSynced.
	Status SyncStatus `json:"status"`

	// PendingStatus keeps the status an errored entity is retried with
	// (created, updated or deleted). Empty unless Status is StatusError.
	PendingStatus SyncStatus `json:"pending_status,omitempty"`

	// LastError is the message of the failure that moved the entity into
	// StatusError.
	LastError string `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// SyncedAt is the time of the last confirmed round trip, nil if the
	// entity has never reached the remote.
	SyncedAt *time.Time `json:"synced_at,omitempty"`
}

// SyncKey returns the reconciliation key of e.
func (e Entity) SyncKey() string {
	return e.Key
}

// EffectiveStatus returns PendingStatus for errored entities and Status
// otherwise. It tells the push phase which operation to retry.
func (e Entity) EffectiveStatus() SyncStatus {
	if e.Status == StatusError && e.PendingStatus != "" {
		return e.PendingStatus
	}
	return e.Status
}

// NeverSynced reports whether the entity has never been confirmed by the
// remote.
func (e Entity) NeverSynced() bool {
	return e.SyncedAt == nil
}

// SameContent reports whether e and other carry the same payload.
func (e Entity) SameContent(other Entity) bool {
	return e.Hash == other.Hash
}

// AsSynced returns a copy of e marked as confirmed by the remote at t.
func (e Entity) AsSynced(t time.Time) Entity {
	e.Status = StatusSynced
	e.PendingStatus = ""
	e.LastError = ""
	synced := t
	e.SyncedAt = &synced
	return e
}

// CanonicalPayload returns payload in the form encoding/json writes it on
// the wire: compact, with <, > and & escaped. Hashes are taken over this
// form, so it must be applied before ContentHash on locally edited data.
func CanonicalPayload(payload []byte) (json.RawMessage, error) {
	out, err := json.Marshal(json.RawMessage(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}
	return out, nil
}

// IsCanonicalPayload reports whether payload survives a JSON round trip
// byte for byte.
func IsCanonicalPayload(payload []byte) bool {
	canonical, err := CanonicalPayload(payload)
	return err == nil && string(canonical) == string(payload)
}

// ContentHash returns the hex encoded BLAKE2b-256 digest of payload.
func ContentHash(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
