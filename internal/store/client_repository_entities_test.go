package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestLocalRepo(t *testing.T) (LocalStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewLocalEntityRepository(NewDBFromSQL(db, NewSQLiteErrorClassifier(), logger.Nop()), logger.Nop()), mock
}

func testContext() context.Context {
	return logger.Nop().WithContext(context.Background())
}

var testTime = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func testEntity(key string, status models.SyncStatus) models.Entity {
	payload := []byte(`{"name":"` + key + `"}`)
	return models.Entity{
		Key:        key,
		UserID:     7,
		Collection: models.InventoryItems,
		Payload:    payload,
		Hash:       models.ContentHash(payload),
		Status:     status,
		CreatedAt:  testTime,
		UpdatedAt:  testTime,
	}
}

func localRows(entities ...models.Entity) *sqlmock.Rows {
	rows := sqlmock.NewRows(localColumns)
	for _, e := range entities {
		var syncedAt any
		if e.SyncedAt != nil {
			syncedAt = *e.SyncedAt
		}
		rows.AddRow(e.Collection.String(), e.Key, e.UserID, []byte(e.Payload), e.Hash,
			e.Status.String(), string(e.PendingStatus), e.LastError, e.CreatedAt, e.UpdatedAt, syncedAt)
	}
	return rows
}

// ── reads ────────────────────────────────────────────────────────────────────

func TestLocalEntityRepository_Snapshot(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	synced := testEntity("a", models.StatusSynced)
	synced.SyncedAt = &testTime
	failed := testEntity("b", models.StatusError)
	failed.PendingStatus = models.StatusUpdated
	failed.LastError = "boom"

	mock.ExpectQuery(`SELECT (.+) FROM entities WHERE`).
		WithArgs(models.InventoryItems.String(), int64(7)).
		WillReturnRows(localRows(synced, failed))

	got, err := repo.Snapshot(testContext(), 7, models.InventoryItems)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, synced, got[0])
	assert.Equal(t, models.StatusError, got[1].Status)
	assert.Equal(t, models.StatusUpdated, got[1].PendingStatus)
	assert.Equal(t, "boom", got[1].LastError)
	assert.Nil(t, got[1].SyncedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalEntityRepository_Snapshot_QueryError(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM entities`).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})

	_, err := repo.Snapshot(testContext(), 7, models.InventoryItems)
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.ErrorIs(t, err, ErrRetryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalEntityRepository_Snapshot_RowsError(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	rows := localRows(testEntity("a", models.StatusSynced)).RowError(0, errors.New("broken"))
	mock.ExpectQuery(`SELECT (.+) FROM entities`).WillReturnRows(rows)

	_, err := repo.Snapshot(testContext(), 7, models.InventoryItems)
	assert.ErrorIs(t, err, ErrScanningRows)
}

func TestLocalEntityRepository_List_FiltersTombstones(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM entities WHERE (.+) AND status <> \? AND \(status <> \? OR pending_status <> \?\)`).
		WithArgs(models.InventoryItems.String(), int64(7), "deleted", "error", "deleted").
		WillReturnRows(localRows(testEntity("a", models.StatusSynced)))

	got, err := repo.List(testContext(), 7, models.InventoryItems)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalEntityRepository_Pending(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM entities WHERE (.+) AND status <> \?`).
		WithArgs(models.InventoryItems.String(), int64(7), "synced").
		WillReturnRows(localRows(testEntity("a", models.StatusCreated)))

	got, err := repo.Pending(testContext(), 7, models.InventoryItems)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.StatusCreated, got[0].Status)
}

func TestLocalEntityRepository_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newTestLocalRepo(t)
		mock.ExpectQuery(`SELECT (.+) FROM entities WHERE (.+) AND key = \?`).
			WithArgs(models.InventoryItems.String(), int64(7), "a").
			WillReturnRows(localRows(testEntity("a", models.StatusSynced)))

		got, err := repo.Get(testContext(), 7, models.InventoryItems, "a")
		require.NoError(t, err)
		assert.Equal(t, "a", got.Key)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newTestLocalRepo(t)
		mock.ExpectQuery(`SELECT (.+) FROM entities`).WillReturnRows(localRows())

		_, err := repo.Get(testContext(), 7, models.InventoryItems, "a")
		assert.ErrorIs(t, err, ErrEntityNotFound)
	})

	t.Run("bad status", func(t *testing.T) {
		repo, mock := newTestLocalRepo(t)
		e := testEntity("a", "weird")
		mock.ExpectQuery(`SELECT (.+) FROM entities`).WillReturnRows(localRows(e))

		_, err := repo.Get(testContext(), 7, models.InventoryItems, "a")
		assert.ErrorIs(t, err, ErrScanningRow)
	})
}

// ── writes ───────────────────────────────────────────────────────────────────

func TestLocalEntityRepository_Put(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectExec(`REPLACE INTO entities`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Put(testContext(), testEntity("a", models.StatusCreated)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalEntityRepository_MarkSynced(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectExec(`UPDATE entities SET status = CASE WHEN status = \? OR pending_status = \? THEN \? ELSE \? END`).
		WithArgs("deleted", "deleted", "deleted", "synced", "", "", testTime, models.InventoryItems.String(), "a", "b", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.MarkSynced(testContext(), 7, models.InventoryItems, []string{"a", "b"}, testTime)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalEntityRepository_MarkFailed(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectExec(`UPDATE entities SET pending_status = CASE`).
		WillReturnError(errors.New("disk full"))

	err := repo.MarkFailed(testContext(), 7, models.InventoryItems, []string{"a"}, "rejected")
	assert.ErrorIs(t, err, ErrExecutingStatement)
	assert.NotErrorIs(t, err, ErrRetryable)
}

func TestLocalEntityRepository_EmptyKeysAreNoops(t *testing.T) {
	repo, mock := newTestLocalRepo(t)
	ctx := testContext()

	require.NoError(t, repo.MarkSynced(ctx, 7, models.InventoryItems, nil, testTime))
	require.NoError(t, repo.MarkFailed(ctx, 7, models.InventoryItems, nil, "x"))
	require.NoError(t, repo.Purge(ctx, 7, models.InventoryItems, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalEntityRepository_Purge(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectExec(`DELETE FROM entities WHERE`).
		WithArgs(models.InventoryItems.String(), "a", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Purge(testContext(), 7, models.InventoryItems, []string{"a"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── transactions ─────────────────────────────────────────────────────────────

func TestLocalEntityRepository_WithinTx_Commit(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO entities`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`REPLACE INTO entities`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM entities`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithinTx(testContext(), func(tx LocalTx) error {
		ctx := testContext()
		if err := tx.Insert(ctx, testEntity("a", models.StatusSynced)); err != nil {
			return err
		}
		if err := tx.Replace(ctx, testEntity("b", models.StatusSynced)); err != nil {
			return err
		}
		return tx.Delete(ctx, 7, models.InventoryItems, "c")
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalEntityRepository_WithinTx_RollbackOnFailure(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO entities`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO entities`).WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint})
	mock.ExpectRollback()

	err := repo.WithinTx(testContext(), func(tx LocalTx) error {
		ctx := testContext()
		if err := tx.Insert(ctx, testEntity("a", models.StatusSynced)); err != nil {
			return err
		}
		return tx.Insert(ctx, testEntity("a", models.StatusSynced))
	})
	assert.ErrorIs(t, err, ErrTransaction)
	assert.ErrorIs(t, err, ErrEntityExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalEntityRepository_WithinTx_BeginError(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectBegin().WillReturnError(sqlite3.Error{Code: sqlite3.ErrLocked})

	called := false
	err := repo.WithinTx(testContext(), func(LocalTx) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.ErrorIs(t, err, ErrTransaction)
	assert.ErrorIs(t, err, ErrBeginningTransaction)
	assert.ErrorIs(t, err, ErrRetryable)
}

func TestLocalEntityRepository_WithinTx_CommitError(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM entities`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	err := repo.WithinTx(testContext(), func(tx LocalTx) error {
		return tx.Delete(testContext(), 7, models.InventoryItems, "a")
	})
	assert.ErrorIs(t, err, ErrTransaction)
	assert.ErrorIs(t, err, ErrCommitingTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalEntityRepository_WithinTx_Panic(t *testing.T) {
	repo, mock := newTestLocalRepo(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = repo.WithinTx(testContext(), func(LocalTx) error {
			panic("apply exploded")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteErrorClassifier(t *testing.T) {
	c := NewSQLiteErrorClassifier()

	assert.Equal(t, Retryable, c.Classify(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.Equal(t, Retryable, c.Classify(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.Equal(t, NonRetryable, c.Classify(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.Equal(t, NonRetryable, c.Classify(errors.New("plain")))

	assert.True(t, isSQLiteConstraint(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, isSQLiteConstraint(errors.New("plain")))
}
