package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

type localEntityRepository struct {
	*DB
	logger *logger.Logger
}

// NewLocalEntityRepository returns a SQLite backed [LocalStore].
func NewLocalEntityRepository(db *DB, logger *logger.Logger) LocalStore {
	return &localEntityRepository{
		DB:     db,
		logger: logger,
	}
}

func (l *localEntityRepository) Snapshot(ctx context.Context, userID int64, collection models.Collection) ([]models.Entity, error) {
	return l.selectEntities(ctx, "localEntityRepository.Snapshot", userID, collection, localFilter{})
}

func (l *localEntityRepository) List(ctx context.Context, userID int64, collection models.Collection) ([]models.Entity, error) {
	return l.selectEntities(ctx, "localEntityRepository.List", userID, collection, localFilter{liveOnly: true})
}

func (l *localEntityRepository) Pending(ctx context.Context, userID int64, collection models.Collection) ([]models.Entity, error) {
	return l.selectEntities(ctx, "localEntityRepository.Pending", userID, collection, localFilter{pendingOnly: true})
}

func (l *localEntityRepository) Get(ctx context.Context, userID int64, collection models.Collection, key string) (models.Entity, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildLocalSelectQuery(userID, collection, localFilter{key: key})
	if err != nil {
		return models.Entity{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	entity, err := scanLocalEntity(l.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entity{}, fmt.Errorf("%w: %s/%s", ErrEntityNotFound, collection, key)
	}
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.Get").
			Str("collection", collection.String()).
			Str("key", key).
			Msg("failed to scan entity row")
		return models.Entity{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return entity, nil
}

func (l *localEntityRepository) Put(ctx context.Context, entity models.Entity) error {
	return replaceEntity(ctx, l.DB.DB, entity)
}

func (l *localEntityRepository) MarkSynced(ctx context.Context, userID int64, collection models.Collection, keys []string, at time.Time) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := buildMarkSyncedQuery(userID, collection, keys, at)
	if err != nil {
		return err
	}

	return l.exec(ctx, "localEntityRepository.MarkSynced", collection, len(keys), query, args)
}

func (l *localEntityRepository) MarkFailed(ctx context.Context, userID int64, collection models.Collection, keys []string, cause string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := buildMarkFailedQuery(userID, collection, keys, cause)
	if err != nil {
		return err
	}

	return l.exec(ctx, "localEntityRepository.MarkFailed", collection, len(keys), query, args)
}

func (l *localEntityRepository) Purge(ctx context.Context, userID int64, collection models.Collection, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := buildLocalDeleteQuery(userID, collection, keys...)
	if err != nil {
		return err
	}

	return l.exec(ctx, "localEntityRepository.Purge", collection, len(keys), query, args)
}

// WithinTx implements [LocalStore]. The deferred Rollback also runs when fn
// panics and is a no-op after a successful Commit.
func (l *localEntityRepository) WithinTx(ctx context.Context, fn func(tx LocalTx) error) error {
	log := logger.FromContext(ctx)

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.WithinTx").
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w: %w", ErrTransaction, ErrBeginningTransaction, l.classify(err))
	}
	defer tx.Rollback()

	if err = fn(&localTx{tx: tx}); err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.WithinTx").
			Msg("transaction rolled back")
		return fmt.Errorf("%w: %w", ErrTransaction, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "localEntityRepository.WithinTx").
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w: %w", ErrTransaction, ErrCommitingTransaction, l.classify(commitErr))
	}

	return nil
}

func (l *localEntityRepository) selectEntities(ctx context.Context, funcName string, userID int64, collection models.Collection, filter localFilter) ([]models.Entity, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildLocalSelectQuery(userID, collection, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := l.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", funcName).
			Int64("user_id", userID).
			Str("collection", collection.String()).
			Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, l.classify(err))
	}
	defer rows.Close()

	entities := make([]models.Entity, 0)
	for rows.Next() {
		entity, scanErr := scanLocalEntity(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", funcName).
				Str("collection", collection.String()).
				Msg("failed to scan entity row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		entities = append(entities, entity)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", funcName).
			Str("collection", collection.String()).
			Msg("error iterating entity rows")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return entities, nil
}

func (l *localEntityRepository) exec(ctx context.Context, funcName string, collection models.Collection, count int, query string, args []any) error {
	if _, err := l.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", funcName).
			Str("collection", collection.String()).
			Int("count", count).
			Msg("failed to execute statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, l.classify(err))
	}
	return nil
}

func (l *localEntityRepository) Close() error {
	return l.DB.Close()
}

// localTx implements [LocalTx] on top of a *sql.Tx.
type localTx struct {
	tx DBTX
}

func (t *localTx) Insert(ctx context.Context, entity models.Entity) error {
	query, args, err := buildLocalInsertQuery(entity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = t.tx.ExecContext(ctx, query, args...); err != nil {
		if isSQLiteConstraint(err) {
			return fmt.Errorf("%w: %s/%s", ErrEntityExists, entity.Collection, entity.Key)
		}
		return fmt.Errorf("%w: insert %s: %w", ErrExecutingStatement, entity.Key, err)
	}
	return nil
}

func (t *localTx) Delete(ctx context.Context, userID int64, collection models.Collection, key string) error {
	query, args, err := buildLocalDeleteQuery(userID, collection, key)
	if err != nil {
		return err
	}

	if _, err = t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrExecutingStatement, key, err)
	}
	return nil
}

func (t *localTx) Replace(ctx context.Context, entity models.Entity) error {
	return replaceEntity(ctx, t.tx, entity)
}

func replaceEntity(ctx context.Context, db DBTX, entity models.Entity) error {
	query, args, err := buildLocalReplaceQuery(entity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrExecutingStatement, entity.Key, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocalEntity(row rowScanner) (models.Entity, error) {
	var (
		entity        models.Entity
		collection    string
		payload       []byte
		pendingStatus string
		syncedAt      sql.NullTime
	)

	err := row.Scan(
		&collection,
		&entity.Key,
		&entity.UserID,
		&payload,
		&entity.Hash,
		&entity.Status,
		&pendingStatus,
		&entity.LastError,
		&entity.CreatedAt,
		&entity.UpdatedAt,
		&syncedAt,
	)
	if err != nil {
		return models.Entity{}, err
	}

	entity.Collection = models.Collection(collection)
	entity.Payload = payload
	entity.PendingStatus = models.SyncStatus(pendingStatus)
	if syncedAt.Valid {
		t := syncedAt.Time
		entity.SyncedAt = &t
	}

	return entity, nil
}
