package grpc

import (
	"context"

	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/metrics"
	"github.com/MKhiriev/go-kitchen-sync/internal/ratelimit"
	"github.com/MKhiriev/go-kitchen-sync/internal/rpc"
	"github.com/MKhiriev/go-kitchen-sync/internal/service"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/MKhiriev/go-kitchen-sync/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ rpc.SyncServer = (*Handler)(nil)

// Handler is the gRPC transport of the sync API. It implements
// [rpc.SyncServer] on top of the service layer; authentication happens in
// the interceptors returned by UnaryInterceptors.
type Handler struct {
	services *service.Services

	tokenSignKey string
	tokenIssuer  string

	metrics *metrics.Metrics
	limiter *ratelimit.Registry

	logger *logger.Logger
}

// NewHandler constructs a [Handler] with the provided service container, the
// token settings from cfg.App and logger. m and limiter may be nil.
func NewHandler(services *service.Services, cfg config.StructuredConfig, m *metrics.Metrics, limiter *ratelimit.Registry, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services:     services,
		tokenSignKey: cfg.App.TokenSignKey,
		tokenIssuer:  cfg.App.TokenIssuer,
		metrics:      m,
		limiter:      limiter,
		logger:       logger,
	}
}

// Snapshot implements kitchensync.Sync/Snapshot.
func (h *Handler) Snapshot(ctx context.Context, req *rpc.SnapshotRequest) (*models.SnapshotResponse, error) {
	log := logger.FromContext(ctx).With().Str("func", "*Handler.Snapshot").Logger()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no user ID provided")
	}

	collection, err := models.ParseCollection(req.Collection.String())
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}

	snapshot, err := h.services.SyncService.Snapshot(ctx, userID, collection)
	if err != nil {
		log.Err(err).Str("collection", collection.String()).Msg("snapshot failed")
		return nil, statusFromError(err)
	}

	return &snapshot, nil
}

// Push implements kitchensync.Sync/Push.
func (h *Handler) Push(ctx context.Context, req *models.PushRequest) (*models.PushResponse, error) {
	log := logger.FromContext(ctx).With().Str("func", "*Handler.Push").Logger()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no user ID provided")
	}

	pushed, err := h.services.SyncService.Push(ctx, userID, *req)
	if err != nil {
		log.Err(err).Str("collection", req.Collection.String()).Msg("push failed")
		return nil, statusFromError(err)
	}

	log.Debug().
		Str("collection", req.Collection.String()).
		Int("received", req.Size()).
		Int("accepted", pushed.Length).
		Msg("push applied")

	return &pushed, nil
}
