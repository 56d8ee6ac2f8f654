// Package handler builds the transport handlers of the sync server from the
// service layer.
package handler

import (
	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-kitchen-sync/internal/handler/http"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/metrics"
	"github.com/MKhiriev/go-kitchen-sync/internal/ratelimit"
	"github.com/MKhiriev/go-kitchen-sync/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler

	// Metrics is shared by both transports and served on GET /metrics of
	// the HTTP handler.
	Metrics *metrics.Metrics
}

// NewHandlers creates a handler for every transport with an address in
// cfg.Server. Both transports share one metrics registry and one per-user
// rate limit, so a user's HTTP and gRPC calls draw from the same bucket.
func NewHandlers(services *service.Services, cfg config.StructuredConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{Metrics: metrics.New()}
	limiter := ratelimit.New(cfg.Server.RateLimit, cfg.Server.RateBurst)
	if limiter != nil {
		logger.Info().
			Float64("rate_limit", cfg.Server.RateLimit).
			Int("rate_burst", cfg.Server.RateBurst).
			Msg("per-user rate limit enabled")
	}

	if cfg.Server.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, cfg, handlers.Metrics, limiter, logger)
	}
	if cfg.Server.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(services, cfg, handlers.Metrics, limiter, logger)
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
