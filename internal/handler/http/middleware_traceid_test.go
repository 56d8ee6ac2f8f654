package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithTraceID(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	h := &Handler{logger: logger.Nop()}

	var fromCtx string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = utils.GetTraceIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	if header != "" {
		req.Header.Set(traceIDHeader, header)
	}
	rec := httptest.NewRecorder()
	h.withTraceID(next).ServeHTTP(rec, req)

	return rec, fromCtx
}

func TestWithTraceID_ReusesRequestHeader(t *testing.T) {
	incoming := "0192f1a4-7c3e-7b6a-9f00-3c2d1e0f4a5b"
	rec, fromCtx := runWithTraceID(t, incoming)

	assert.Equal(t, incoming, rec.Header().Get(traceIDHeader))
	assert.Equal(t, incoming, fromCtx)
}

func TestWithTraceID_ReplacesNonUUIDHeader(t *testing.T) {
	rec, fromCtx := runWithTraceID(t, "client-trace-1\nlevel=error")

	traceID := rec.Header().Get(traceIDHeader)
	assert.NotContains(t, traceID, "client-trace-1")
	_, err := uuid.Parse(traceID)
	require.NoError(t, err)
	assert.Equal(t, traceID, fromCtx)
}

func TestWithTraceID_GeneratesUUID(t *testing.T) {
	rec, fromCtx := runWithTraceID(t, "")

	traceID := rec.Header().Get(traceIDHeader)
	_, err := uuid.Parse(traceID)
	require.NoError(t, err)
	assert.Equal(t, traceID, fromCtx)
}

func TestWithTraceID_UniquePerRequest(t *testing.T) {
	first, _ := runWithTraceID(t, "")
	second, _ := runWithTraceID(t, "")

	assert.NotEqual(t, first.Header().Get(traceIDHeader), second.Header().Get(traceIDHeader))
}
