package server

import "context"

// Server runs the transport servers of the sync API.
type Server interface {
	// RunServer starts every configured transport and blocks until ctx is
	// cancelled, a stop signal arrives or a transport fails.
	RunServer(ctx context.Context) error

	// Shutdown gracefully stops all transports, waiting at most until ctx
	// is done.
	Shutdown(ctx context.Context) error
}

// transport is one listening server (HTTP or gRPC).
type transport interface {
	name() string
	serve() error
	shutdown(ctx context.Context) error
}
