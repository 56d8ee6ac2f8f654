// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the response messages shared by the HTTP and gRPC
// transports of the go-kitchen-sync server.
//
// Server-side failures are reported with one of the Msg* strings instead of
// the internal error text.
package app

const (
	// MsgInvalidDataProvided is returned when a push body cannot be decoded.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgUnknownCollection is returned when the collection in the path or the
	// request is not one of the synced collections.
	MsgUnknownCollection = "unknown collection"

	// MsgCollectionMismatch is returned when the push body names a different
	// collection than the request path.
	MsgCollectionMismatch = "collection in body does not match the path"

	// MsgIntegrityCheckFailed is returned when the HashSHA256 header does not
	// match the request body.
	MsgIntegrityCheckFailed = "integrity check failed"

	// MsgTokenIsExpiredOrInvalid is returned when the bearer token is missing,
	// expired or cannot be verified.
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgNoUserIDProvided is returned when no authenticated user is attached
	// to the request.
	MsgNoUserIDProvided = "no user ID provided"

	// MsgDataNotFound is returned when the requested entity does not exist.
	MsgDataNotFound = "data not found"

	// MsgConflict is returned when a pushed creation collides with an
	// existing entity.
	MsgConflict = "entity already exists, please sync"

	// MsgTooManyRequests is returned when a user exceeds the request rate
	// allowed by the server.
	MsgTooManyRequests = "too many requests, retry later"

	// MsgServiceUnavailable is returned for transient storage failures. The
	// client retries the push on its next cycle.
	MsgServiceUnavailable = "service temporarily unavailable"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"
)
