package http

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(status)
		w.Write(append([]byte("echo:"), body...))
	})
}

func TestWithHashing_SignedRequestPasses(t *testing.T) {
	h := newTestHandler(t, &fakeSyncService{}, testHashKey)
	signer := utils.NewSigner(testHashKey)

	body := []byte(`{"deleted":["a"],"length":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sync/recipes", bytes.NewReader(body))
	req.Header.Set(utils.HashHeader, signer.Sign(body))
	rec := httptest.NewRecorder()

	h.withHashing(echoHandler(http.StatusCreated)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "echo:"+string(body), rec.Body.String(), "the handler sees the original body")
	assert.True(t, signer.Verify(rec.Body.Bytes(), rec.Header().Get(utils.HashHeader)))
}

func TestWithHashing_RejectsBadSignature(t *testing.T) {
	tests := []struct {
		name      string
		signature string
	}{
		{name: "missing", signature: ""},
		{name: "not hex", signature: "zz"},
		{name: "wrong key", signature: utils.NewSigner("other").Sign([]byte(`{}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &fakeSyncService{}, testHashKey)

			req := httptest.NewRequest(http.MethodPost, "/api/sync/recipes", bytes.NewReader([]byte(`{}`)))
			if tt.signature != "" {
				req.Header.Set(utils.HashHeader, tt.signature)
			}
			rec := httptest.NewRecorder()

			called := false
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
			h.withHashing(next).ServeHTTP(rec, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestWithHashing_SignsBodilessRequestsResponses(t *testing.T) {
	h := newTestHandler(t, &fakeSyncService{}, testHashKey)

	req := httptest.NewRequest(http.MethodGet, "/api/sync/recipes", nil)
	rec := httptest.NewRecorder()
	h.withHashing(echoHandler(http.StatusOK)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, utils.NewSigner(testHashKey).Verify(rec.Body.Bytes(), rec.Header().Get(utils.HashHeader)))
}

func TestWithHashing_DisabledWithoutKey(t *testing.T) {
	h := newTestHandler(t, &fakeSyncService{}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/sync/recipes", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	h.withHashing(echoHandler(http.StatusOK)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(utils.HashHeader))
}

func TestWithHashing_ThroughRouter(t *testing.T) {
	svc := &fakeSyncService{}
	h := newTestHandler(t, svc, testHashKey)
	signer := utils.NewSigner(testHashKey)

	body := []byte(`{"collection":"recipes","deleted":["a"],"length":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sync/recipes", bytes.NewReader(body))
	req.Header.Set("Authorization", bearer(t, testUserID))
	req.Header.Set(utils.HashHeader, signer.Sign(body))
	rec := httptest.NewRecorder()

	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a"}, svc.gotRequest.Deleted)
	assert.True(t, signer.Verify(rec.Body.Bytes(), rec.Header().Get(utils.HashHeader)))
}
