package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/MKhiriev/go-kitchen-sync/internal/adapter"
	"github.com/stretchr/testify/assert"
)

func TestMapAdapterError(t *testing.T) {
	plain := errors.New("something else")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "network", in: fmt.Errorf("%w: dial", adapter.ErrNetwork), want: ErrNetwork},
		{name: "deadline", in: context.DeadlineExceeded, want: ErrNetwork},
		{name: "cancelled", in: fmt.Errorf("push: %w", context.Canceled), want: context.Canceled},
		{name: "unauthorized", in: fmt.Errorf("%w: expired", adapter.ErrUnauthorized), want: ErrUnauthorized},
		{name: "forbidden", in: adapter.ErrForbidden, want: ErrUnauthorized},
		{name: "bad request", in: fmt.Errorf("%w: empty push", adapter.ErrBadRequest), want: ErrRejected},
		{name: "not found", in: adapter.ErrNotFound, want: ErrRejected},
		{name: "conflict", in: adapter.ErrConflict, want: ErrRejected},
		{name: "unreadable answer", in: adapter.ErrInvalidResponse, want: ErrNetwork},
		{name: "unknown", in: plain, want: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapAdapterError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
			if tt.in != nil {
				assert.ErrorIs(t, got, tt.in, "the cause stays reachable")
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(fmt.Errorf("%w: reset", ErrNetwork)))
	assert.True(t, IsRetryable(fmt.Errorf("%w: locked", ErrTransaction)))
	assert.False(t, IsRetryable(ErrInvalidSnapshot))
	assert.False(t, IsRetryable(ErrUnauthorized))
	assert.False(t, IsRetryable(context.Canceled))

	mixed := errors.Join(fmt.Errorf("%w: reset", ErrNetwork), ErrInvalidSnapshot)
	assert.False(t, IsRetryable(mixed))
}
