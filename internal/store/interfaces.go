// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store persists entities: the client local store (SQLite or
// in-memory) and the server remote store (Postgres).
package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// LocalStore is the client-side store. It exclusively owns the lifecycle of
// local entities; the sync service only requests operations.
type LocalStore interface {
	// Snapshot returns every local entity of the collection, tombstones
	// included, ordered by key.
	Snapshot(ctx context.Context, userID int64, collection models.Collection) ([]models.Entity, error)

	// Get returns one entity, tombstones included, or ErrEntityNotFound.
	Get(ctx context.Context, userID int64, collection models.Collection, key string) (models.Entity, error)

	// List returns the live (non-tombstoned) entities of the collection.
	List(ctx context.Context, userID int64, collection models.Collection) ([]models.Entity, error)

	// Put inserts or replaces one entity.
	Put(ctx context.Context, entity models.Entity) error

	// Pending returns the entities with unpushed changes.
	Pending(ctx context.Context, userID int64, collection models.Collection) ([]models.Entity, error)

	// MarkSynced records a confirmed push at time at. Created and updated
	// entities become synced; tombstones stay tombstones with SyncedAt set.
	MarkSynced(ctx context.Context, userID int64, collection models.Collection, keys []string, at time.Time) error

	// MarkFailed moves the entities into the error status, remembering the
	// operation to retry and the cause.
	MarkFailed(ctx context.Context, userID int64, collection models.Collection, keys []string, cause string) error

	// Purge removes entities permanently.
	Purge(ctx context.Context, userID int64, collection models.Collection, keys []string) error

	// WithinTx runs fn in one transaction. The transaction commits if fn
	// returns nil and rolls back if fn returns an error or panics. Any
	// failure is wrapped in ErrTransaction. fn must only use tx.
	WithinTx(ctx context.Context, fn func(tx LocalTx) error) error

	// Close releases the underlying resources.
	Close() error
}

// LocalTx is the set of mutations available inside LocalStore.WithinTx.
type LocalTx interface {
	// Insert adds an entity; ErrEntityExists if the key is taken.
	Insert(ctx context.Context, entity models.Entity) error

	// Delete removes an entity; deleting a missing key is not an error.
	Delete(ctx context.Context, userID int64, collection models.Collection, key string) error

	// Replace inserts or overwrites an entity.
	Replace(ctx context.Context, entity models.Entity) error
}

// EntityRepository is the server-side remote store.
type EntityRepository interface {
	// Snapshot returns the live entities of the collection owned by userID.
	// Soft-deleted entities are left out.
	Snapshot(ctx context.Context, userID int64, collection models.Collection) ([]models.Entity, error)

	// ApplyPush stores the changes of req in a single transaction and
	// returns the keys it processed.
	ApplyPush(ctx context.Context, userID int64, req models.PushRequest) ([]string, error)
}
