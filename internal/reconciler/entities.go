package reconciler

import (
	"time"

	"github.com/MKhiriev/go-kitchen-sync/models"
)

// ReconcileEntities reconciles two snapshots of models.Entity with the
// defaults used by the sync service:
//   - the key is Entity.Key;
//   - local creations that never reached the remote are protected, including
//     creations whose push failed (status error, never synced);
//   - content changes are detected by hash and merged with strategy.
func ReconcileEntities(local, remote []models.Entity, strategy Strategy) (Result[models.Entity], error) {
	return Reconcile(local, remote, models.Entity.SyncKey,
		WithProtection(IsUnpushedCreation),
		WithPending(func(e models.Entity) bool { return e.Status.IsPending() }),
		WithMerge(strategy, contentChanged, updatedAt),
	)
}

// IsUnpushedCreation reports whether e exists only because it was created
// locally and the remote has never confirmed it.
func IsUnpushedCreation(e models.Entity) bool {
	if e.EffectiveStatus() == models.StatusCreated {
		return true
	}
	return e.Status == models.StatusError && e.NeverSynced()
}

func contentChanged(local, remote models.Entity) bool {
	return !local.SameContent(remote)
}

func updatedAt(e models.Entity) time.Time {
	return e.UpdatedAt
}
