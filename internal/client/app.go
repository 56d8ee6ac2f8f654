package client

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-kitchen-sync/internal/adapter"
	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/metrics"
	"github.com/MKhiriev/go-kitchen-sync/internal/service"
	"github.com/MKhiriev/go-kitchen-sync/internal/store"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/MKhiriev/go-kitchen-sync/internal/workers"
)

var _ Client = (*App)(nil)

type App struct {
	services *service.ClientServices
	metrics  *metrics.Metrics
	workers  *workers.Workers

	local  store.LocalStore
	remote adapter.RemoteSource

	userID int64
	once   bool

	logger *logger.Logger
}

// NewApp opens the local store and the remote connection described by cfg.
// The user is taken from the "sub" claim of the configured token.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	userID, err := utils.ParseUserIDFromJWT(cfg.Adapter.Token)
	if err != nil {
		return nil, fmt.Errorf("read user from token: %w", err)
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage.Local, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	remote, err := adapter.NewRemoteSource(cfg.Adapter, cfg.App, logger)
	if err != nil {
		storages.LocalStore.Close()
		return nil, fmt.Errorf("create remote source: %w", err)
	}

	app, err := newApp(storages.LocalStore, remote, userID, cfg, logger)
	if err != nil {
		remote.Close()
		storages.LocalStore.Close()
		return nil, err
	}

	return app, nil
}

func newApp(local store.LocalStore, remote adapter.RemoteSource, userID int64, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	m := metrics.New()

	services, err := service.NewClientServices(local, remote, userID, cfg, m, logger)
	if err != nil {
		return nil, fmt.Errorf("create client services: %w", err)
	}

	jobs := []workers.Worker{services.SyncJob}
	if cfg.Metrics.Address != "" {
		jobs = append(jobs, metrics.NewServer(cfg.Metrics.Address, m, logger))
	}

	return &App{
		services: services,
		metrics:  m,
		workers:  workers.NewWorkers(jobs...),
		local:    local,
		remote:   remote,
		userID:   userID,
		once:     cfg.Sync.Once,
		logger:   logger,
	}, nil
}

// Services exposes the client services, e.g. for local edits made by an
// embedding program.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// Run performs an initial sync cycle, then keeps the sync job running until
// ctx is done or SIGTERM, SIGINT or SIGQUIT arrives. A failed initial cycle
// is logged and retried by the job; in one-shot mode its error is returned.
func (a *App) Run(ctx context.Context) (err error) {
	ctx, stop := signal.NotifyContext(ctx,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()
	defer func() {
		err = errors.Join(err, a.close())
	}()

	log := a.logger.With().Str("func", "App.Run").Int64("user_id", a.userID).Logger()

	initialErr := a.services.SyncJob.RunOnce(ctx)
	if a.once {
		return initialErr
	}
	if initialErr != nil {
		log.Warn().Err(initialErr).Msg("initial sync failed, continuing offline")
	}

	a.workers.Run(ctx)
	log.Info().Msg("sync agent started")

	<-ctx.Done()

	a.workers.Stop()
	log.Info().Msg("sync agent stopped")

	return nil
}

func (a *App) close() error {
	return errors.Join(a.remote.Close(), a.local.Close())
}
