// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client side of the sync API.
//
// The primary abstraction is [RemoteSource], which decouples the sync service
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteSource]) built on resty and a gRPC implementation
// ([NewGRPCRemoteSource]) speaking the kitchensync.Sync service.
//
// Transport failures and server-side unavailability are reported as
// [ErrNetwork] so that callers can retry with backoff; a rejected token is
// reported as [ErrUnauthorized].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-kitchen-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_source_mock.go -package=mock

// RemoteSource is the remote data source of the sync service. The user is
// identified by the bearer token the implementation was built with.
type RemoteSource interface {
	// FetchSnapshot returns the full remote state of collection.
	// It honours ctx cancellation and deadlines.
	FetchSnapshot(ctx context.Context, collection models.Collection) (models.SnapshotResponse, error)

	// Push sends pending local changes and returns the keys the remote
	// accepted.
	Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error)

	// Close releases the underlying connection.
	Close() error
}
