package http

import (
	"time"

	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/metrics"
	"github.com/MKhiriev/go-kitchen-sync/internal/ratelimit"
	"github.com/MKhiriev/go-kitchen-sync/internal/service"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
)

type Handler struct {
	services *service.Services

	signer         *utils.Signer
	tokenSignKey   string
	tokenIssuer    string
	requestTimeout time.Duration

	metrics *metrics.Metrics
	limiter *ratelimit.Registry

	logger *logger.Logger
}

// NewHandler creates the HTTP handler. m and limiter may be nil, which turns
// off GET /metrics and rate limiting.
func NewHandler(services *service.Services, cfg config.StructuredConfig, m *metrics.Metrics, limiter *ratelimit.Registry, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:       services,
		signer:         utils.NewSigner(cfg.App.HashKey),
		tokenSignKey:   cfg.App.TokenSignKey,
		tokenIssuer:    cfg.App.TokenIssuer,
		requestTimeout: cfg.Server.RequestTimeout,
		metrics:        m,
		limiter:        limiter,
		logger:         logger,
	}
}
