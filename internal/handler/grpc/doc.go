// Package grpc implements the kitchensync.Sync gRPC service.
//
// Messages are JSON encoded with the codec from package rpc, so no generated
// protobuf code is involved. Every call must carry "authorization: Bearer
// <token>" metadata.
package grpc
