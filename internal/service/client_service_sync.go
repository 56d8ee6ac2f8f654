package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/internal/adapter"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/reconciler"
	"github.com/MKhiriev/go-kitchen-sync/internal/store"
	"github.com/MKhiriev/go-kitchen-sync/internal/validators"
	"github.com/MKhiriev/go-kitchen-sync/models"
	"golang.org/x/sync/errgroup"
)

type clientSyncService struct {
	localStore store.LocalStore
	remote     adapter.RemoteSource
	validator  validators.Validator

	strategy     reconciler.Strategy
	fetchTimeout time.Duration

	locks    *CollectionLocks
	now      func() time.Time
	observer SyncObserver

	logger *logger.Logger
}

// NewClientSyncService builds the sync service of the client agent.
// locks must be the ones the entity service of localStore holds, nil is only
// safe when nothing else writes to localStore. fetchTimeout bounds each
// remote snapshot fetch; zero leaves it to ctx. observer may be nil.
func NewClientSyncService(
	localStore store.LocalStore,
	locks *CollectionLocks,
	remote adapter.RemoteSource,
	strategy reconciler.Strategy,
	fetchTimeout time.Duration,
	observer SyncObserver,
	logger *logger.Logger,
) ClientSyncService {
	return &clientSyncService{
		localStore:   localStore,
		remote:       remote,
		validator:    validators.NewEntityValidator(),
		strategy:     strategy,
		fetchTimeout: fetchTimeout,
		locks:        locksOrNew(locks),
		now:          func() time.Time { return time.Now().UTC() },
		observer:     observerOrNop(observer),
		logger:       logger,
	}
}

// SyncCollection pushes pending changes, fetches the remote snapshot,
// reconciles it against the local one and applies the result in one
// transaction. A cancelled ctx never reaches the apply step.
func (s *clientSyncService) SyncCollection(ctx context.Context, userID int64, collection models.Collection) (report SyncReport, err error) {
	log := s.logger.With().
		Str("func", "clientSyncService.SyncCollection").
		Int64("user_id", userID).
		Str("collection", collection.String()).
		Logger()

	report = SyncReport{Collection: collection}
	if !collection.Valid() {
		return report, fmt.Errorf("%w: %w: %q", ErrInvalidDataProvided, models.ErrUnknownCollection, collection)
	}

	unlock, err := s.locks.acquire(ctx, collection)
	if err != nil {
		return report, err
	}
	defer unlock()

	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		s.observer.ObserveSyncPass(report, err)
	}()

	// ── push ──────────────────────────────────────────────────────────────
	report.Pushed, report.Accepted, err = s.push(ctx, userID, collection)
	if err != nil {
		log.Err(err).Int("pushed", report.Pushed).Msg("push failed")
		return report, err
	}

	// ── fetch ─────────────────────────────────────────────────────────────
	remote, err := s.fetch(ctx, collection)
	if err != nil {
		log.Err(err).Msg("fetching remote snapshot failed")
		return report, err
	}
	if err = ctx.Err(); err != nil {
		return report, err
	}

	// ── reconcile ─────────────────────────────────────────────────────────
	local, err := s.localStore.Snapshot(ctx, userID, collection)
	if err != nil {
		return report, fmt.Errorf("%w: reading local snapshot: %w", ErrTransaction, err)
	}

	result, err := reconciler.ReconcileEntities(local, remote.Entities, s.strategy)
	if err != nil {
		if errors.Is(err, reconciler.ErrInvalidSnapshot) {
			err = fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		log.Err(err).Msg("reconcile failed")
		return report, err
	}
	report.Reconciled = result.Summary()

	// ── apply ─────────────────────────────────────────────────────────────
	if !result.IsEmpty() {
		if err = s.apply(ctx, userID, collection, result); err != nil {
			log.Err(err).Object("reconciled", report.Reconciled).Msg("applying reconcile result failed")
			return report, err
		}
	}

	log.Info().
		Int("pushed", report.Pushed).
		Int("accepted", report.Accepted).
		Object("reconciled", report.Reconciled).
		Msg("collection synced")

	return report, nil
}

// SyncAll syncs every collection concurrently. A failing collection does not
// stop the others.
func (s *clientSyncService) SyncAll(ctx context.Context, userID int64) ([]SyncReport, error) {
	reports := make([]SyncReport, len(models.AllCollections))
	errs := make([]error, len(models.AllCollections))

	var g errgroup.Group
	for i, collection := range models.AllCollections {
		g.Go(func() error {
			reports[i], errs[i] = s.SyncCollection(ctx, userID, collection)
			return nil
		})
	}
	_ = g.Wait()

	return reports, errors.Join(errs...)
}

// push sends every pending entity of collection. Accepted keys are marked
// synced; on failure all pushed keys move to the error status unless the
// caller cancelled.
func (s *clientSyncService) push(ctx context.Context, userID int64, collection models.Collection) (int, int, error) {
	pending, err := s.localStore.Pending(ctx, userID, collection)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: reading pending entities: %w", ErrTransaction, err)
	}

	req := buildPushRequest(collection, pending)
	if req.Empty() {
		return 0, 0, nil
	}
	keys := pushedKeys(req)

	resp, err := s.remote.Push(ctx, req)
	if err != nil {
		mapped := mapAdapterError(err)
		if errors.Is(mapped, context.Canceled) {
			return len(keys), 0, mapped
		}

		// the store must record the failure even when ctx has expired
		markCtx := context.WithoutCancel(ctx)
		if markErr := s.localStore.MarkFailed(markCtx, userID, collection, keys, err.Error()); markErr != nil {
			return len(keys), 0, errors.Join(mapped, fmt.Errorf("%w: marking failed entities: %w", ErrTransaction, markErr))
		}
		return len(keys), 0, mapped
	}

	accepted := filterKnown(resp.Accepted, keys)
	if len(accepted) == 0 {
		return len(keys), 0, nil
	}
	if err := s.localStore.MarkSynced(ctx, userID, collection, accepted, s.now()); err != nil {
		return len(keys), len(accepted), fmt.Errorf("%w: marking synced entities: %w", ErrTransaction, err)
	}

	return len(keys), len(accepted), nil
}

// fetch returns a validated remote snapshot of collection.
func (s *clientSyncService) fetch(ctx context.Context, collection models.Collection) (models.SnapshotResponse, error) {
	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	snapshot, err := s.remote.FetchSnapshot(fetchCtx, collection)
	if err != nil {
		if errors.Is(err, adapter.ErrInvalidResponse) {
			return models.SnapshotResponse{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		return models.SnapshotResponse{}, mapAdapterError(err)
	}

	if snapshot.Collection != collection {
		return models.SnapshotResponse{}, fmt.Errorf("%w: %w: want %s, got %s",
			ErrInvalidSnapshot, models.ErrCollectionMismatch, collection, snapshot.Collection)
	}
	if err := s.validator.Validate(ctx, snapshot); err != nil {
		return models.SnapshotResponse{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	return snapshot, nil
}

func (s *clientSyncService) apply(ctx context.Context, userID int64, collection models.Collection, result reconciler.Result[models.Entity]) error {
	at := s.now()

	err := s.localStore.WithinTx(ctx, func(tx store.LocalTx) error {
		for _, e := range result.Inserted {
			if err := tx.Insert(ctx, asLocal(userID, collection, e, at)); err != nil {
				return err
			}
		}
		for _, key := range result.Deleted {
			if err := tx.Delete(ctx, userID, collection, key); err != nil {
				return err
			}
		}
		for _, e := range result.Updated {
			if err := tx.Replace(ctx, asLocal(userID, collection, e, at)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransaction, err)
	}

	return nil
}

// buildPushRequest sorts pending entities by the operation they are retried
// with. Outbound entities carry no local bookkeeping.
func buildPushRequest(collection models.Collection, pending []models.Entity) models.PushRequest {
	req := models.PushRequest{Collection: collection}

	for _, e := range pending {
		switch e.EffectiveStatus() {
		case models.StatusCreated:
			req.Created = append(req.Created, outbound(e))
		case models.StatusUpdated:
			req.Updated = append(req.Updated, outbound(e))
		case models.StatusDeleted:
			req.Deleted = append(req.Deleted, e.Key)
		}
	}
	req.Length = req.Size()

	return req
}

func pushedKeys(req models.PushRequest) []string {
	keys := make([]string, 0, req.Size())
	for _, e := range req.Created {
		keys = append(keys, e.Key)
	}
	for _, e := range req.Updated {
		keys = append(keys, e.Key)
	}
	return append(keys, req.Deleted...)
}

// filterKnown keeps the accepted keys that were actually pushed.
func filterKnown(accepted, pushed []string) []string {
	known := make(map[string]struct{}, len(pushed))
	for _, k := range pushed {
		known[k] = struct{}{}
	}

	out := make([]string, 0, len(accepted))
	for _, k := range accepted {
		if _, ok := known[k]; ok {
			out = append(out, k)
			delete(known, k)
		}
	}
	return out
}

func outbound(e models.Entity) models.Entity {
	e.Status = models.StatusSynced
	e.PendingStatus = ""
	e.LastError = ""
	e.SyncedAt = nil
	return e
}

func asLocal(userID int64, collection models.Collection, e models.Entity, at time.Time) models.Entity {
	e.UserID = userID
	e.Collection = collection
	return e.AsSynced(at)
}
