package service

import (
	"fmt"

	"github.com/MKhiriev/go-kitchen-sync/internal/adapter"
	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/reconciler"
	"github.com/MKhiriev/go-kitchen-sync/internal/store"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
)

type ClientServices struct {
	EntityService  ClientEntityService
	KitchenService ClientKitchenService
	SyncService    ClientSyncService
	SyncJob        ClientSyncJob
}

// NewClientServices wires the client agent services for the device owner
// userID.
func NewClientServices(
	localStore store.LocalStore,
	remote adapter.RemoteSource,
	userID int64,
	cfg *config.ClientConfig,
	observer SyncObserver,
	logger *logger.Logger,
) (*ClientServices, error) {
	strategy, err := reconciler.ParseStrategy(cfg.Sync.Strategy)
	if err != nil {
		return nil, fmt.Errorf("error parsing sync strategy: %w", err)
	}

	locks := NewCollectionLocks()
	entitySvc := NewClientEntityService(localStore, locks, utils.NewUUIDGenerator(), logger)
	syncSvc := NewClientSyncService(localStore, locks, remote, strategy, cfg.RequestTimeout(), observer, logger)

	return &ClientServices{
		EntityService:  entitySvc,
		KitchenService: NewClientKitchenService(entitySvc),
		SyncService:    syncSvc,
		SyncJob:        NewClientSyncJob(syncSvc, userID, cfg.Workers, observer, logger),
	}, nil
}
