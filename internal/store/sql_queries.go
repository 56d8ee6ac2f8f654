package store

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-kitchen-sync/models"
)

const entitiesTable = "entities"

var (
	sqlite   = sq.StatementBuilder.PlaceholderFormat(sq.Question)
	postgres = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	localColumns = []string{
		"collection", "key", "user_id", "payload", "hash", "status",
		"pending_status", "last_error", "created_at", "updated_at", "synced_at",
	}

	remoteColumns = []string{
		"collection", "key", "user_id", "payload", "hash", "created_at", "updated_at",
	}
)

// ── local (SQLite) ───────────────────────────────────────────────────────────

// localFilter narrows buildLocalSelectQuery.
type localFilter struct {
	key         string
	liveOnly    bool
	pendingOnly bool
}

func buildLocalSelectQuery(userID int64, collection models.Collection, filter localFilter) (string, []any, error) {
	q := sqlite.Select(localColumns...).
		From(entitiesTable).
		Where(sq.Eq{"user_id": userID, "collection": collection.String()}).
		OrderBy("key")

	if filter.key != "" {
		q = q.Where(sq.Eq{"key": filter.key})
	}
	if filter.liveOnly {
		q = q.Where(sq.NotEq{"status": models.StatusDeleted.String()}).
			Where(sq.Or{
				sq.NotEq{"status": models.StatusError.String()},
				sq.NotEq{"pending_status": models.StatusDeleted.String()},
			})
	}
	if filter.pendingOnly {
		q = q.Where(sq.NotEq{"status": models.StatusSynced.String()})
	}

	return q.ToSql()
}

func localValues(e models.Entity) []any {
	var syncedAt any
	if e.SyncedAt != nil {
		syncedAt = *e.SyncedAt
	}

	return []any{
		e.Collection.String(), e.Key, e.UserID, []byte(e.Payload), e.Hash, e.Status,
		string(e.PendingStatus), e.LastError, e.CreatedAt.UTC(), e.UpdatedAt.UTC(), syncedAt,
	}
}

func buildLocalInsertQuery(e models.Entity) (string, []any, error) {
	return sqlite.Insert(entitiesTable).
		Columns(localColumns...).
		Values(localValues(e)...).
		ToSql()
}

func buildLocalReplaceQuery(e models.Entity) (string, []any, error) {
	return sqlite.Replace(entitiesTable).
		Columns(localColumns...).
		Values(localValues(e)...).
		ToSql()
}

func buildLocalDeleteQuery(userID int64, collection models.Collection, keys ...string) (string, []any, error) {
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("%w: no keys to delete", ErrBuildingSQLQuery)
	}

	return sqlite.Delete(entitiesTable).
		Where(sq.Eq{"user_id": userID, "collection": collection.String(), "key": keys}).
		ToSql()
}

// buildMarkSyncedQuery confirms a push. Tombstones, including errored ones
// whose pending operation was a deletion, stay tombstones.
func buildMarkSyncedQuery(userID int64, collection models.Collection, keys []string, at time.Time) (string, []any, error) {
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("%w: no keys to mark", ErrBuildingSQLQuery)
	}

	deleted := models.StatusDeleted.String()

	return sqlite.Update(entitiesTable).
		Set("status", sq.Expr("CASE WHEN status = ? OR pending_status = ? THEN ? ELSE ? END",
			deleted, deleted, deleted, models.StatusSynced.String())).
		Set("pending_status", "").
		Set("last_error", "").
		Set("synced_at", at.UTC()).
		Where(sq.Eq{"user_id": userID, "collection": collection.String(), "key": keys}).
		ToSql()
}

// buildMarkFailedQuery keeps the first pending operation when an entity
// fails repeatedly.
func buildMarkFailedQuery(userID int64, collection models.Collection, keys []string, cause string) (string, []any, error) {
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("%w: no keys to mark", ErrBuildingSQLQuery)
	}

	return sqlite.Update(entitiesTable).
		Set("pending_status", sq.Expr("CASE WHEN status = ? THEN pending_status ELSE status END",
			models.StatusError.String())).
		Set("status", models.StatusError.String()).
		Set("last_error", cause).
		Where(sq.Eq{"user_id": userID, "collection": collection.String(), "key": keys}).
		Where(sq.NotEq{"status": models.StatusSynced.String()}).
		ToSql()
}

// ── remote (Postgres) ────────────────────────────────────────────────────────

func buildRemoteSnapshotQuery(userID int64, collection models.Collection) (string, []any, error) {
	return postgres.Select(remoteColumns...).
		From(entitiesTable).
		Where(sq.Eq{"user_id": userID, "collection": collection.String(), "deleted_at": nil}).
		OrderBy("key").
		ToSql()
}

// buildRemoteUpsertQuery writes e unless the stored row, live or
// soft-deleted, was modified later (last writer wins on updated_at).
func buildRemoteUpsertQuery(userID int64, e models.Entity) (string, []any, error) {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = e.UpdatedAt
	}

	return postgres.Insert(entitiesTable).
		Columns(remoteColumns...).
		Values(e.Collection.String(), e.Key, userID, []byte(e.Payload), e.Hash, createdAt.UTC(), e.UpdatedAt.UTC()).
		Suffix(`ON CONFLICT (user_id, collection, key) DO UPDATE SET
			payload = EXCLUDED.payload,
			hash = EXCLUDED.hash,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
		WHERE entities.updated_at <= EXCLUDED.updated_at
			AND (entities.deleted_at IS NULL OR entities.deleted_at <= EXCLUDED.updated_at)`).
		ToSql()
}

func buildRemoteSoftDeleteQuery(userID int64, collection models.Collection, keys []string, at time.Time) (string, []any, error) {
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("%w: no keys to delete", ErrBuildingSQLQuery)
	}

	return postgres.Update(entitiesTable).
		Set("deleted_at", at.UTC()).
		Set("updated_at", at.UTC()).
		Where(sq.Eq{"user_id": userID, "collection": collection.String(), "key": keys, "deleted_at": nil}).
		ToSql()
}
