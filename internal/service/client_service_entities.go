package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/store"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/MKhiriev/go-kitchen-sync/internal/validators"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

// clientEntityService owns local entity lifecycles: it sets statuses and
// timestamps so the sync service knows what to push. Writes hold the
// collection lock shared with the sync service.
type clientEntityService struct {
	localStore store.LocalStore
	locks      *CollectionLocks
	keys       utils.KeyGenerator
	validator  validators.Validator
	now        func() time.Time

	logger *logger.Logger
}

func NewClientEntityService(localStore store.LocalStore, locks *CollectionLocks, keys utils.KeyGenerator, logger *logger.Logger) ClientEntityService {
	return &clientEntityService{
		localStore: localStore,
		locks:      locksOrNew(locks),
		keys:       keys,
		validator:  validators.NewEntityValidator(),
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// Create stores a new entity under a fresh key with status created.
func (s *clientEntityService) Create(ctx context.Context, userID int64, collection models.Collection, payload []byte) (models.Entity, error) {
	payload, err := canonical(payload)
	if err != nil {
		return models.Entity{}, err
	}

	unlock, err := s.lock(ctx, collection)
	if err != nil {
		return models.Entity{}, err
	}
	defer unlock()

	now := s.now()
	e := models.Entity{
		Key:        s.keys.NewKey(),
		UserID:     userID,
		Collection: collection,
		Payload:    payload,
		Hash:       models.ContentHash(payload),
		Status:     models.StatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.validate(ctx, e); err != nil {
		return models.Entity{}, err
	}
	if err := s.localStore.Put(ctx, e); err != nil {
		return models.Entity{}, fmt.Errorf("error saving entity: %w", err)
	}

	s.logger.Debug().
		Str("func", "clientEntityService.Create").
		Str("collection", collection.String()).
		Str("key", e.Key).
		Msg("entity created")

	return e, nil
}

// Update replaces the payload of a live entity. An entity the remote has
// never seen stays a creation; a failed entity keeps its retry operation.
func (s *clientEntityService) Update(ctx context.Context, userID int64, collection models.Collection, key string, payload []byte) (models.Entity, error) {
	payload, err := canonical(payload)
	if err != nil {
		return models.Entity{}, err
	}

	unlock, err := s.lock(ctx, collection)
	if err != nil {
		return models.Entity{}, err
	}
	defer unlock()

	e, err := s.live(ctx, userID, collection, key)
	if err != nil {
		return models.Entity{}, err
	}

	hash := models.ContentHash(payload)
	if hash == e.Hash {
		return e, nil
	}

	status := models.StatusUpdated
	if e.EffectiveStatus() == models.StatusCreated {
		status = models.StatusCreated
	}

	e.Payload = payload
	e.Hash = hash
	e.Status = status
	e.PendingStatus = ""
	e.LastError = ""
	e.UpdatedAt = s.now()

	if err := s.validate(ctx, e); err != nil {
		return models.Entity{}, err
	}
	if err := s.localStore.Put(ctx, e); err != nil {
		return models.Entity{}, fmt.Errorf("error saving entity: %w", err)
	}

	return e, nil
}

// Delete purges an entity the remote has never seen and tombstones any
// other one until the remote confirms the deletion.
func (s *clientEntityService) Delete(ctx context.Context, userID int64, collection models.Collection, key string) error {
	unlock, err := s.lock(ctx, collection)
	if err != nil {
		return err
	}
	defer unlock()

	e, err := s.live(ctx, userID, collection, key)
	if err != nil {
		return err
	}

	if e.NeverSynced() && e.EffectiveStatus() == models.StatusCreated {
		if err := s.localStore.Purge(ctx, userID, collection, []string{key}); err != nil {
			return fmt.Errorf("error purging entity: %w", err)
		}
		return nil
	}

	e.Status = models.StatusDeleted
	e.PendingStatus = ""
	e.LastError = ""
	e.UpdatedAt = s.now()

	if err := s.localStore.Put(ctx, e); err != nil {
		return fmt.Errorf("error saving tombstone: %w", err)
	}

	return nil
}

// Get returns a live entity.
func (s *clientEntityService) Get(ctx context.Context, userID int64, collection models.Collection, key string) (models.Entity, error) {
	return s.live(ctx, userID, collection, key)
}

// List returns the live entities of a collection, including failed ones:
// they keep their last known data until the next cycle.
func (s *clientEntityService) List(ctx context.Context, userID int64, collection models.Collection) ([]models.Entity, error) {
	if !collection.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, validators.ErrInvalidCollection)
	}

	entities, err := s.localStore.List(ctx, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("error listing entities: %w", err)
	}
	return entities, nil
}

// live returns the entity unless it is missing or tombstoned.
func (s *clientEntityService) live(ctx context.Context, userID int64, collection models.Collection, key string) (models.Entity, error) {
	if !collection.Valid() {
		return models.Entity{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, validators.ErrInvalidCollection)
	}
	if key == "" {
		return models.Entity{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, validators.ErrInvalidKey)
	}

	e, err := s.localStore.Get(ctx, userID, collection, key)
	if err != nil {
		if errors.Is(err, store.ErrEntityNotFound) {
			return models.Entity{}, ErrEntityNotFound
		}
		return models.Entity{}, fmt.Errorf("error reading entity: %w", err)
	}
	if e.EffectiveStatus() == models.StatusDeleted {
		return models.Entity{}, ErrEntityNotFound
	}

	return e, nil
}

// lock takes the collection lock, waiting for a running sync pass.
func (s *clientEntityService) lock(ctx context.Context, collection models.Collection) (func(), error) {
	if !collection.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidDataProvided, validators.ErrInvalidCollection, collection)
	}
	return s.locks.acquire(ctx, collection)
}

// canonical brings a caller supplied payload into its wire form, so the
// hash stored next to it still matches after any transport round trip.
func canonical(payload []byte) (json.RawMessage, error) {
	out, err := models.CanonicalPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrInvalidDataProvided, validators.ErrInvalidPayload, err)
	}
	return out, nil
}

func (s *clientEntityService) validate(ctx context.Context, e models.Entity) error {
	err := s.validator.Validate(ctx, e,
		validators.FieldKey,
		validators.FieldUserID,
		validators.FieldCollection,
		validators.FieldPayload,
		validators.FieldHash,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return nil
}
