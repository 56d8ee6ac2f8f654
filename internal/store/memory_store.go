package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/models"
)

// MemoryDSN selects the in-memory store without persistence.
const MemoryDSN = ":memory:"

type entityID struct {
	userID     int64
	collection models.Collection
	key        string
}

// memoryStore is an in-memory [LocalStore]. With a file path every committed
// change is written to that JSON file; the file is loaded on start.
//
// Transactions are copy-on-write: fn works on a clone of the map which only
// replaces the live map once fn has returned nil and the state is persisted.
type memoryStore struct {
	path string

	mu    sync.RWMutex
	items map[entityID]models.Entity
}

type memoryPersistedState struct {
	Items []models.Entity `json:"items"`
}

// NewMemoryStore returns an in-memory [LocalStore]. path is either
// [MemoryDSN] or a JSON file used for persistence.
func NewMemoryStore(path string) (LocalStore, error) {
	if path == "" {
		path = MemoryDSN
	}

	s := &memoryStore{
		path:  path,
		items: make(map[entityID]models.Entity),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *memoryStore) inMemory() bool {
	return s.path == MemoryDSN
}

func (s *memoryStore) load() error {
	if s.inMemory() {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read local storage file: %w", err)
	}

	var st memoryPersistedState
	if err = json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode local storage file: %w", err)
	}

	for _, e := range st.Items {
		s.items[idOf(e)] = e
	}

	return nil
}

// persist writes items to the file. Callers hold the write lock.
func (s *memoryStore) persist(items map[entityID]models.Entity) error {
	if s.inMemory() {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create local storage dir: %w", err)
		}
	}

	state := memoryPersistedState{Items: sortedEntities(items, func(models.Entity) bool { return true })}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode local storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write local storage file: %w", err)
	}
	if err = os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace local storage file: %w", err)
	}

	return nil
}

func (s *memoryStore) Snapshot(_ context.Context, userID int64, collection models.Collection) ([]models.Entity, error) {
	return s.selectEntities(userID, collection, func(models.Entity) bool { return true }), nil
}

func (s *memoryStore) List(_ context.Context, userID int64, collection models.Collection) ([]models.Entity, error) {
	return s.selectEntities(userID, collection, func(e models.Entity) bool {
		return e.EffectiveStatus() != models.StatusDeleted
	}), nil
}

func (s *memoryStore) Pending(_ context.Context, userID int64, collection models.Collection) ([]models.Entity, error) {
	return s.selectEntities(userID, collection, func(e models.Entity) bool {
		return e.Status.IsPending()
	}), nil
}

func (s *memoryStore) Get(_ context.Context, userID int64, collection models.Collection, key string) (models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[entityID{userID: userID, collection: collection, key: key}]
	if !ok {
		return models.Entity{}, fmt.Errorf("%w: %s/%s", ErrEntityNotFound, collection, key)
	}
	return e, nil
}

func (s *memoryStore) Put(ctx context.Context, entity models.Entity) error {
	return s.mutate(func(items map[entityID]models.Entity) error {
		items[idOf(entity)] = entity
		return nil
	})
}

func (s *memoryStore) MarkSynced(_ context.Context, userID int64, collection models.Collection, keys []string, at time.Time) error {
	return s.mutate(func(items map[entityID]models.Entity) error {
		for _, key := range keys {
			id := entityID{userID: userID, collection: collection, key: key}
			if e, ok := items[id]; ok {
				items[id] = markedSynced(e, at)
			}
		}
		return nil
	})
}

func (s *memoryStore) MarkFailed(_ context.Context, userID int64, collection models.Collection, keys []string, cause string) error {
	return s.mutate(func(items map[entityID]models.Entity) error {
		for _, key := range keys {
			id := entityID{userID: userID, collection: collection, key: key}
			if e, ok := items[id]; ok && e.Status.IsPending() {
				items[id] = markedFailed(e, cause)
			}
		}
		return nil
	})
}

func (s *memoryStore) Purge(_ context.Context, userID int64, collection models.Collection, keys []string) error {
	return s.mutate(func(items map[entityID]models.Entity) error {
		for _, key := range keys {
			delete(items, entityID{userID: userID, collection: collection, key: key})
		}
		return nil
	})
}

func (s *memoryStore) WithinTx(ctx context.Context, fn func(tx LocalTx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransaction, err)
	}

	err := s.mutate(func(items map[entityID]models.Entity) error {
		return fn(&memoryTx{items: items})
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransaction, err)
	}
	return nil
}

// mutate runs fn on a clone of the items and swaps it in only if fn and
// persistence succeed.
func (s *memoryStore) mutate(fn func(items map[entityID]models.Entity) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.items)
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persist(next); err != nil {
		return err
	}

	s.items = next
	return nil
}

func (s *memoryStore) selectEntities(userID int64, collection models.Collection, keep func(models.Entity) bool) []models.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedEntities(s.items, func(e models.Entity) bool {
		return e.UserID == userID && e.Collection == collection && keep(e)
	})
}

func (s *memoryStore) Close() error {
	return nil
}

// memoryTx implements [LocalTx] on the cloned map of a transaction.
type memoryTx struct {
	items map[entityID]models.Entity
}

func (t *memoryTx) Insert(_ context.Context, entity models.Entity) error {
	id := idOf(entity)
	if _, ok := t.items[id]; ok {
		return fmt.Errorf("%w: %s/%s", ErrEntityExists, entity.Collection, entity.Key)
	}
	t.items[id] = entity
	return nil
}

func (t *memoryTx) Delete(_ context.Context, userID int64, collection models.Collection, key string) error {
	delete(t.items, entityID{userID: userID, collection: collection, key: key})
	return nil
}

func (t *memoryTx) Replace(_ context.Context, entity models.Entity) error {
	t.items[idOf(entity)] = entity
	return nil
}

// markedSynced returns e after a confirmed push. Tombstones keep the
// deleted status.
func markedSynced(e models.Entity, at time.Time) models.Entity {
	tombstone := e.EffectiveStatus() == models.StatusDeleted
	e = e.AsSynced(at)
	if tombstone {
		e.Status = models.StatusDeleted
	}
	return e
}

// markedFailed returns e in the error status, remembering the pending
// operation to retry.
func markedFailed(e models.Entity, cause string) models.Entity {
	if e.Status != models.StatusError {
		e.PendingStatus = e.Status
	}
	e.Status = models.StatusError
	e.LastError = cause
	return e
}

func idOf(e models.Entity) entityID {
	return entityID{userID: e.UserID, collection: e.Collection, key: e.Key}
}

func sortedEntities(items map[entityID]models.Entity, keep func(models.Entity) bool) []models.Entity {
	out := make([]models.Entity, 0)
	for _, e := range items {
		if keep(e) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b models.Entity) int {
		if c := strings.Compare(string(a.Collection), string(b.Collection)); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return out
}
