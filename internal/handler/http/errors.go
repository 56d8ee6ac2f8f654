// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// incoming request does not include an "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrBodyHashMismatch is returned when the HashSHA256 header does not
	// match the request body.
	ErrBodyHashMismatch = errors.New("body hash mismatch")

	// ErrCollectionMismatch is returned when a push body names a different
	// collection than the request path.
	ErrCollectionMismatch = errors.New("collection in body does not match the path")
)
