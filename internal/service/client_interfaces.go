package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/internal/reconciler"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

// SyncReport describes one completed sync pass over a collection.
type SyncReport struct {
	Collection models.Collection

	// Pushed is the number of pending changes sent to the remote and
	// Accepted the number it confirmed.
	Pushed   int
	Accepted int

	// Reconciled holds the sizes of the applied reconcile result.
	Reconciled reconciler.Summary

	Duration time.Duration
}

// ClientSyncService drives the push, fetch, reconcile and apply cycle of the
// client agent.
type ClientSyncService interface {
	// SyncCollection runs one full pass over collection. Passes over the
	// same collection are serialized; the returned error matches ErrNetwork,
	// ErrTransaction or ErrInvalidSnapshot when it is one of those failures.
	SyncCollection(ctx context.Context, userID int64, collection models.Collection) (SyncReport, error)

	// SyncAll runs SyncCollection for every collection concurrently and
	// joins their errors.
	SyncAll(ctx context.Context, userID int64) ([]SyncReport, error)
}

// SyncObserver is told the outcome of every collection pass and every
// sync cycle, e.g. to export metrics.
type SyncObserver interface {
	ObserveSyncPass(report SyncReport, err error)
	ObserveSyncCycle(attempts int, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveSyncPass(SyncReport, error) {}
func (nopObserver) ObserveSyncCycle(int, error)       {}

func observerOrNop(o SyncObserver) SyncObserver {
	if o == nil {
		return nopObserver{}
	}
	return o
}

// ClientSyncJob runs ClientSyncService.SyncAll in the background.
type ClientSyncJob interface {
	// Run starts the job with the configured interval; it satisfies
	// workers.Worker.
	Run(ctx context.Context)

	// Start stops any running loop, then syncs every interval until ctx is
	// cancelled or Stop is called.
	Start(ctx context.Context, interval time.Duration)

	// Stop cancels the loop and waits for it to exit.
	Stop()

	// RunOnce performs one cycle, retrying retryable failures with backoff.
	RunOnce(ctx context.Context) error
}

// ClientEntityService is the local CRUD surface of the client agent. Changes
// are written to the local store only; the sync job propagates them.
type ClientEntityService interface {
	Create(ctx context.Context, userID int64, collection models.Collection, payload []byte) (models.Entity, error)
	Update(ctx context.Context, userID int64, collection models.Collection, key string, payload []byte) (models.Entity, error)
	Delete(ctx context.Context, userID int64, collection models.Collection, key string) error
	Get(ctx context.Context, userID int64, collection models.Collection, key string) (models.Entity, error)
	List(ctx context.Context, userID int64, collection models.Collection) ([]models.Entity, error)
}

// ClientKitchenService is ClientEntityService with the kitchen types mapped
// to and from entities.
type ClientKitchenService interface {
	SaveInventoryItem(ctx context.Context, userID int64, item models.InventoryItem) (models.InventoryItem, error)
	ListInventoryItems(ctx context.Context, userID int64) ([]models.InventoryItem, error)

	SaveRecipe(ctx context.Context, userID int64, recipe models.Recipe) (models.Recipe, error)
	ListRecipes(ctx context.Context, userID int64) ([]models.Recipe, error)

	SaveMealPlanEntry(ctx context.Context, userID int64, entry models.MealPlanEntry) (models.MealPlanEntry, error)
	ListMealPlanEntries(ctx context.Context, userID int64) ([]models.MealPlanEntry, error)

	SaveShoppingItem(ctx context.Context, userID int64, item models.ShoppingItem) (models.ShoppingItem, error)
	ListShoppingItems(ctx context.Context, userID int64) ([]models.ShoppingItem, error)

	// Remove deletes an entity of any kitchen collection.
	Remove(ctx context.Context, userID int64, collection models.Collection, key string) error
}
