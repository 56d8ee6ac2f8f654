// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-kitchen-sync/internal/adapter"
)

// mapAdapterError translates a remote source error into a sync error.
// Caller cancellation is returned unchanged; an expired deadline counts as a
// network failure. Snapshot fetches handle ErrInvalidResponse themselves.
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, adapter.ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	case errors.Is(err, adapter.ErrUnauthorized), errors.Is(err, adapter.ErrForbidden):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case errors.Is(err, adapter.ErrBadRequest), errors.Is(err, adapter.ErrNotFound), errors.Is(err, adapter.ErrConflict):
		return fmt.Errorf("%w: %w", ErrRejected, err)
	case errors.Is(err, adapter.ErrInvalidResponse):
		// the push is replayed next cycle
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	return err
}
