package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/store"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

// syncService is the concrete implementation of SyncService backed by the
// server entity repository.
type syncService struct {
	repository store.EntityRepository
	logger     *logger.Logger
}

// NewSyncService constructs a SyncService over repository. Inputs are
// trusted; wrap the result with NewSyncValidationService to check them.
func NewSyncService(repository store.EntityRepository, logger *logger.Logger) SyncService {
	return &syncService{
		repository: repository,
		logger:     logger,
	}
}

// Snapshot implements SyncService.
func (s *syncService) Snapshot(ctx context.Context, userID int64, collection models.Collection) (models.SnapshotResponse, error) {
	entities, err := s.repository.Snapshot(ctx, userID, collection)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncService.Snapshot").
			Int64("user_id", userID).
			Str("collection", collection.String()).
			Msg("reading snapshot failed")
		return models.SnapshotResponse{}, fmt.Errorf("error reading snapshot: %w", err)
	}

	if entities == nil {
		entities = []models.Entity{}
	}

	return models.SnapshotResponse{
		Collection: collection,
		Entities:   entities,
		Length:     len(entities),
	}, nil
}

// Push implements SyncService. The whole request is applied in one
// transaction; Accepted lists every processed key.
func (s *syncService) Push(ctx context.Context, userID int64, req models.PushRequest) (models.PushResponse, error) {
	log := logger.FromContext(ctx).With().
		Str("func", "syncService.Push").
		Int64("user_id", userID).
		Str("collection", req.Collection.String()).
		Logger()

	accepted, err := s.repository.ApplyPush(ctx, userID, req)
	if err != nil {
		log.Err(err).Int("changes", req.Size()).Msg("applying push failed")
		return models.PushResponse{}, fmt.Errorf("error applying push: %w", err)
	}

	log.Info().
		Int("created", len(req.Created)).
		Int("updated", len(req.Updated)).
		Int("deleted", len(req.Deleted)).
		Int("accepted", len(accepted)).
		Msg("push applied")

	return models.PushResponse{Accepted: accepted, Length: len(accepted)}, nil
}
