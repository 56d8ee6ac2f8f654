package service

import (
	"context"

	"github.com/MKhiriev/go-kitchen-sync/models"
)

// SyncService serves the remote side of the sync protocol.
type SyncService interface {
	// Snapshot returns the live entities of collection owned by userID.
	Snapshot(ctx context.Context, userID int64, collection models.Collection) (models.SnapshotResponse, error)

	// Push applies the changes of req for userID atomically.
	Push(ctx context.Context, userID int64, req models.PushRequest) (models.PushResponse, error)
}

// AppInfoService describes the running server.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetAppInfo(ctx context.Context) models.AppInfo
}

// SyncServiceWrapper defines middleware composition for SyncService.
// Implementations wrap an existing SyncService to add behavior such as
// logging or validating.
type SyncServiceWrapper interface {
	Wrap(SyncService) SyncService // returns a decorated SyncService applying additional behavior
}
