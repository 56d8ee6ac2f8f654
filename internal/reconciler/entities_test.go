package reconciler

import (
	"testing"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entity(key string, status models.SyncStatus, payload string, at time.Time, synced bool) models.Entity {
	e := models.Entity{
		Key:        key,
		Collection: models.InventoryItems,
		Payload:    []byte(payload),
		Hash:       models.ContentHash([]byte(payload)),
		Status:     status,
		UpdatedAt:  at,
	}
	if synced {
		s := at
		e.SyncedAt = &s
	}
	return e
}

func TestIsUnpushedCreation(t *testing.T) {
	now := time.Now()

	failedCreate := entity("a", models.StatusError, `{}`, now, false)
	failedCreate.PendingStatus = models.StatusCreated

	failedUpdate := entity("b", models.StatusError, `{}`, now, true)
	failedUpdate.PendingStatus = models.StatusUpdated

	assert.True(t, IsUnpushedCreation(entity("c", models.StatusCreated, `{}`, now, false)))
	assert.True(t, IsUnpushedCreation(failedCreate))
	assert.False(t, IsUnpushedCreation(failedUpdate))
	assert.False(t, IsUnpushedCreation(entity("d", models.StatusSynced, `{}`, now, true)))
	assert.False(t, IsUnpushedCreation(entity("e", models.StatusUpdated, `{}`, now, true)))
}

func TestReconcileEntities(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	local := []models.Entity{
		entity("synced-same", models.StatusSynced, `{"q":1}`, t0, true),
		entity("synced-stale", models.StatusSynced, `{"q":1}`, t0, true),
		entity("edited-newer", models.StatusUpdated, `{"q":9}`, t1, true),
		entity("gone-remotely", models.StatusSynced, `{"q":1}`, t0, true),
		entity("local-new", models.StatusCreated, `{"q":1}`, t0, false),
	}
	remote := []models.Entity{
		entity("synced-same", models.StatusSynced, `{"q":1}`, t0, true),
		entity("synced-stale", models.StatusSynced, `{"q":2}`, t0, true),
		entity("edited-newer", models.StatusSynced, `{"q":3}`, t0, true),
		entity("remote-new", models.StatusSynced, `{"q":1}`, t0, true),
	}

	res, err := ReconcileEntities(local, remote, LastWriterWins)
	require.NoError(t, err)

	require.Len(t, res.Inserted, 1)
	assert.Equal(t, "remote-new", res.Inserted[0].Key)
	assert.Equal(t, []string{"gone-remotely"}, res.Deleted)
	assert.Equal(t, []string{"local-new"}, res.Protected)
	assert.Equal(t, []string{"synced-same", "synced-stale", "edited-newer"}, res.Unchanged)

	require.Len(t, res.Updated, 1)
	assert.Equal(t, "synced-stale", res.Updated[0].Key)
}

func TestReconcileEntities_DuplicateKey(t *testing.T) {
	now := time.Now()
	local := []models.Entity{
		entity("a", models.StatusSynced, `{}`, now, true),
		entity("a", models.StatusUpdated, `{}`, now, true),
	}

	_, err := ReconcileEntities(local, nil, LastWriterWins)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}
