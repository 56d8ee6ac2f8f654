// Package server runs the HTTP and gRPC transports of the sync API.
//
// RunServer blocks until the context is cancelled, SIGTERM, SIGINT or SIGQUIT
// arrives, or a transport fails to serve, then shuts every transport down
// within a fixed grace period.
package server
