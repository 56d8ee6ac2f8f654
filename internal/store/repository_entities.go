package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

// entityRepository implements [EntityRepository] on top of PostgreSQL.
//
// Deletions are soft: deleted_at is set and the row is left out of
// snapshots, so a late push from a device that has not seen the deletion yet
// can be resolved by last writer wins instead of resurrecting blindly.
type entityRepository struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

// NewEntityRepository returns a Postgres backed [EntityRepository].
func NewEntityRepository(db *DB, logger *logger.Logger) EntityRepository {
	return &entityRepository{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *entityRepository) Snapshot(ctx context.Context, userID int64, collection models.Collection) ([]models.Entity, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildRemoteSnapshotQuery(userID, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.Snapshot").
			Int64("user_id", userID).
			Str("collection", collection.String()).
			Msg("failed to execute snapshot query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, r.classify(err))
	}
	defer rows.Close()

	entities := make([]models.Entity, 0)
	for rows.Next() {
		var (
			entity  models.Entity
			coll    string
			payload []byte
		)

		if err = rows.Scan(&coll, &entity.Key, &entity.UserID, &payload, &entity.Hash, &entity.CreatedAt, &entity.UpdatedAt); err != nil {
			log.Err(err).
				Str("func", "entityRepository.Snapshot").
				Int64("user_id", userID).
				Msg("failed to scan entity row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		entity.Collection = models.Collection(coll)
		entity.Payload = payload
		entity.Status = models.StatusSynced
		entities = append(entities, entity)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).
			Str("func", "entityRepository.Snapshot").
			Int64("user_id", userID).
			Msg("error iterating entity rows")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return entities, nil
}

// ApplyPush implements [EntityRepository]. Created and updated entities are
// upserted with last writer wins on updated_at; an upsert losing to a newer
// stored row is still reported as processed, the device picks up the newer
// version from its next snapshot.
func (r *entityRepository) ApplyPush(ctx context.Context, userID int64, req models.PushRequest) ([]string, error) {
	log := logger.FromContext(ctx).With().
		Str("func", "entityRepository.ApplyPush").
		Int64("user_id", userID).
		Str("collection", req.Collection.String()).
		Int("count", req.Size()).
		Logger()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("%w: %w", ErrBeginningTransaction, r.classify(err))
	}
	defer tx.Rollback()

	accepted := make([]string, 0, req.Size())

	upserts := make([]models.Entity, 0, len(req.Created)+len(req.Updated))
	upserts = append(upserts, req.Created...)
	upserts = append(upserts, req.Updated...)

	for idx, entity := range upserts {
		entity.Collection = req.Collection

		query, args, buildErr := buildRemoteUpsertQuery(userID, entity)
		if buildErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, buildErr)
		}

		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).
				Int("iteration", idx+1).
				Str("key", entity.Key).
				Msg("failed to upsert entity")
			return nil, fmt.Errorf("%w: upsert %s: %w", ErrExecutingStatement, entity.Key, r.classify(err))
		}
		accepted = append(accepted, entity.Key)
	}

	if len(req.Deleted) > 0 {
		query, args, buildErr := buildRemoteSoftDeleteQuery(userID, req.Collection, req.Deleted, r.now())
		if buildErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, buildErr)
		}

		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).Msg("failed to soft delete entities")
			return nil, fmt.Errorf("%w: soft delete: %w", ErrExecutingStatement, r.classify(err))
		}
		accepted = append(accepted, req.Deleted...)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Msg("failed to commit transaction")
		return nil, fmt.Errorf("%w: %w", ErrCommitingTransaction, r.classify(commitErr))
	}

	log.Debug().Int("accepted", len(accepted)).Msg("push applied")

	return accepted, nil
}
