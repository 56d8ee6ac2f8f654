// Package utils holds small helpers shared by the server and the client
// agent: typed context keys, entity key generation, request signing, bearer
// tokens and JSON responses.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
type contextKey string

func (c contextKey) String() string {
	return string(c)
}

var (
	// UserIDCtxKey holds the authenticated user ID (int64).
	UserIDCtxKey = contextKey("userID")

	// TraceIDCtxKey holds the request trace ID (string).
	TraceIDCtxKey = contextKey("traceID")
)

// GetUserIDFromContext returns the user ID stored under UserIDCtxKey.
// ok is false if the value is missing or not an int64.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDCtxKey, userID)
}

// GetTraceIDFromContext returns the trace ID, or "" if none is set.
func GetTraceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDCtxKey).(string)
	return traceID
}

// WithTraceID returns a copy of ctx carrying traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDCtxKey, traceID)
}
