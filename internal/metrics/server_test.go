package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ServesMetrics(t *testing.T) {
	m := New()
	m.ObserveSyncCycle(2, nil)

	s := NewServer("127.0.0.1:0", m, logger.Nop())
	s.Run(context.Background())
	t.Cleanup(s.Stop)

	addr := s.Addr()
	require.NotEmpty(t, addr)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `kitchensync_sync_cycles_total{result="ok"} 1`)

	other, err := client.Get("http://" + addr + "/debug")
	require.NoError(t, err)
	other.Body.Close()
	assert.Equal(t, http.StatusNotFound, other.StatusCode)
}

func TestServer_Stop(t *testing.T) {
	s := NewServer("127.0.0.1:0", New(), logger.Nop())

	assert.NotPanics(t, s.Stop, "stop before run")

	s.Run(context.Background())
	addr := s.Addr()
	require.NotEmpty(t, addr)

	s.Stop()
	assert.Empty(t, s.Addr())

	_, err := (&http.Client{Timeout: time.Second}).Get("http://" + addr + "/metrics")
	assert.Error(t, err)
}

func TestServer_ListenFailure(t *testing.T) {
	s := NewServer("256.0.0.1:1", New(), logger.Nop())

	s.Run(context.Background())

	assert.Empty(t, s.Addr())
	assert.NotPanics(t, s.Stop)
}
