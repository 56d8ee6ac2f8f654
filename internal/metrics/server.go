package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/workers"
)

const shutdownTimeout = 5 * time.Second

var _ workers.Worker = (*Server)(nil)

// Server exposes GET /metrics on its own address. The client agent runs it
// as a background worker next to the sync job.
type Server struct {
	address string
	handler http.Handler

	mu    sync.Mutex
	srv   *http.Server
	bound string
	done  chan struct{}

	logger *logger.Logger
}

func NewServer(address string, m *Metrics, logger *logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())

	return &Server{
		address: address,
		handler: mux,
		logger:  logger,
	}
}

// Run implements workers.Worker. A listen failure is logged and leaves the
// server stopped; the agent keeps syncing without metrics.
func (s *Server) Run(ctx context.Context) {
	log := s.logger.With().Str("func", "metrics.Server.Run").Str("address", s.address).Logger()

	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		log.Err(err).Msg("metrics listener failed")
		return
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	done := make(chan struct{})

	s.mu.Lock()
	s.srv, s.bound, s.done = srv, lis.Addr().String(), done
	s.mu.Unlock()

	go func() {
		defer close(done)
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Msg("metrics server failed")
		}
	}()
	log.Info().Msg("metrics server started")
}

// Addr returns the bound listen address, or "" while the server is not
// running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// Stop implements workers.Worker.
func (s *Server) Stop() {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.srv, s.bound, s.done = nil, "", nil
	s.mu.Unlock()

	if srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Err(err).Str("func", "metrics.Server.Stop").Msg("metrics server shutdown failed")
	}
	<-done
}
