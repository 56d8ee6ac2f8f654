package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/MKhiriev/go-kitchen-sync/internal/workers"
	"github.com/sethvargo/go-retry"
)

var _ workers.Worker = (*clientSyncJob)(nil)

const (
	defaultSyncInterval   = 5 * time.Minute
	defaultRetryBaseDelay = time.Second
)

type clientSyncJob struct {
	syncService ClientSyncService
	userID      int64

	interval  time.Duration
	attempts  uint64
	baseDelay time.Duration
	maxDelay  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	observer SyncObserver
	logger   *logger.Logger
}

// NewClientSyncJob creates a clientSyncJob that calls syncService.SyncAll for
// userID on a ticker. The job is idle until Run or Start is called. observer
// may be nil.
func NewClientSyncJob(syncService ClientSyncService, userID int64, cfg config.Workers, observer SyncObserver, logger *logger.Logger) ClientSyncJob {
	return &clientSyncJob{
		syncService: syncService,
		userID:      userID,
		interval:    cfg.SyncInterval,
		attempts:    cfg.RetryAttempts,
		baseDelay:   cfg.RetryBaseDelay,
		maxDelay:    cfg.RetryMaxDelay,
		observer:    observerOrNop(observer),
		logger:      logger,
	}
}

// Run implements workers.Worker.
func (j *clientSyncJob) Run(ctx context.Context) {
	j.Start(ctx, j.interval)
}

// Start implements ClientSyncJob. It stops any previously running job, then
// launches a background goroutine that runs a sync cycle every interval. If
// interval is zero or negative it defaults to 5 minutes. The goroutine exits
// when ctx is cancelled or Stop is called.
func (j *clientSyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				_ = j.RunOnce(jobCtx)
			}
		}
	}()
}

// Stop implements ClientSyncJob. It cancels the background goroutine's
// context and blocks until the goroutine has fully exited. Safe to call when
// the job is not running.
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

// RunOnce implements ClientSyncJob. Network and transaction failures are
// retried with capped exponential backoff; an invalid snapshot ends the
// cycle at once. All attempts of one cycle share a trace ID that the
// adapters forward to the server.
func (j *clientSyncJob) RunOnce(ctx context.Context) error {
	traceID := utils.NewTraceID()
	log := j.logger.With().Str("func", "clientSyncJob.RunOnce").Int64("user_id", j.userID).Str("trace_id", traceID).Logger()
	ctx = utils.WithTraceID(log.WithContext(ctx), traceID)

	attempt := 0
	err := retry.Do(ctx, j.backoff(), func(ctx context.Context) error {
		attempt++
		reports, err := j.syncService.SyncAll(ctx, j.userID)
		if err == nil {
			log.Debug().Int("attempt", attempt).Int("collections", len(reports)).Msg("sync cycle finished")
			return nil
		}
		if IsRetryable(err) {
			log.Warn().Err(err).Int("attempt", attempt).Msg("sync cycle failed, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		log.Err(err).Int("attempts", attempt).Msg("sync cycle gave up")
	}
	j.observer.ObserveSyncCycle(attempt, err)

	return err
}

func (j *clientSyncJob) backoff() retry.Backoff {
	base := j.baseDelay
	if base <= 0 {
		base = defaultRetryBaseDelay
	}

	b := retry.NewExponential(base)
	if j.maxDelay > 0 {
		b = retry.WithCappedDuration(j.maxDelay, b)
	}
	return retry.WithMaxRetries(j.attempts, b)
}
