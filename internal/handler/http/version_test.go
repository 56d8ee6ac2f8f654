package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/service"
	"github.com/MKhiriev/go-kitchen-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetServerVersion_PlainText(t *testing.T) {
	for _, want := range []string{"1.2.3", "v2.0.0-beta+build.42", ""} {
		h := NewHandler(&service.Services{AppInfoService: &fakeAppInfoService{version: want}}, testConfig(""), nil, nil, logger.Nop())

		req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
		rec := httptest.NewRecorder()
		h.getServerVersion(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, rec.Body.String())
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	}
}

func TestGetServerVersion_JSON(t *testing.T) {
	h := NewHandler(&service.Services{AppInfoService: &fakeAppInfoService{version: "1.2.3"}}, testConfig(""), nil, nil, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.getServerVersion(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var info models.AppInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, models.AllCollections, info.Collections)
}
