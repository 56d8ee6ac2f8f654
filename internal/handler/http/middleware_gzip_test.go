// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func gunzip(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer zr.Close()
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(out)
}

func TestGZip(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		gzipRequest    bool
		rawRequest     []byte
		explicitHeader bool
		wantStatus     int
		wantGzipped    bool
	}{
		{name: "compress response when client accepts gzip", acceptEncoding: "gzip", wantStatus: http.StatusOK, wantGzipped: true},
		{name: "implicit 200 is compressed too", acceptEncoding: "gzip", explicitHeader: false, wantStatus: http.StatusOK, wantGzipped: true},
		{name: "quality values", acceptEncoding: "gzip;q=1.0, identity;q=0.5", explicitHeader: true, wantStatus: http.StatusOK, wantGzipped: true},
		{name: "no compression without accept-encoding", wantStatus: http.StatusOK},
		{name: "gzipped request is decoded", gzipRequest: true, explicitHeader: true, wantStatus: http.StatusOK},
		{name: "gzipped request and response", acceptEncoding: "gzip", gzipRequest: true, wantStatus: http.StatusOK, wantGzipped: true},
		{name: "invalid gzip request body", gzipRequest: true, rawRequest: []byte("not gzipped"), wantStatus: http.StatusBadRequest},
	}

	requestBody := []byte(`{"deleted":["a"]}`)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Empty(t, r.Header.Get("Content-Encoding"))
				if tt.explicitHeader {
					w.WriteHeader(http.StatusOK)
				}
				w.Write(append([]byte("got:"), body...))
			})

			var body io.Reader = http.NoBody
			switch {
			case tt.rawRequest != nil:
				body = bytes.NewReader(tt.rawRequest)
			case tt.gzipRequest:
				body = bytes.NewReader(gzipBytes(t, requestBody))
			}

			req := httptest.NewRequest(http.MethodPost, "/api/sync/recipes", body)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			if tt.gzipRequest {
				req.Header.Set("Content-Encoding", "gzip")
			}
			rec := httptest.NewRecorder()

			withGZip(next).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			want := "got:"
			if tt.gzipRequest {
				want += string(requestBody)
			}
			if tt.wantGzipped {
				assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
				assert.Equal(t, want, gunzip(t, rec.Body.Bytes()))
			} else {
				assert.Empty(t, rec.Header().Get("Content-Encoding"))
				assert.Equal(t, want, rec.Body.String())
			}
		})
	}
}

func TestGZip_EmptyResponseIsNotEncoded(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	withGZip(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Zero(t, rec.Body.Len())
}

func TestGZip_PoolReuse(t *testing.T) {
	payload := strings.Repeat("inventory ", 500)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})
	handler := withGZip(next)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/sync/recipes", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Less(t, rec.Body.Len(), len(payload)/10, "request %d", i)
		assert.Equal(t, payload, gunzip(t, rec.Body.Bytes()), "request %d", i)
	}
}

func TestWrappedReadCloser_Close(t *testing.T) {
	closed := false
	wrapped := &wrappedReadCloser{Reader: strings.NewReader("x"), OnClose: func() { closed = true }}

	assert.NoError(t, wrapped.Close())
	assert.True(t, closed)

	assert.NoError(t, (&wrappedReadCloser{Reader: strings.NewReader("x")}).Close())
}
