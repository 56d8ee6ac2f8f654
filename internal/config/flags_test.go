package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetAddress_String(t *testing.T) {
	tests := []struct {
		name     string
		addr     NetAddress
		expected string
	}{
		{"empty address", NetAddress{}, ""},
		{"localhost with port", NetAddress{Host: "localhost", Port: 8080}, "localhost:8080"},
		{"IP address with port", NetAddress{Host: "127.0.0.1", Port: 9090}, "127.0.0.1:9090"},
		{"only port", NetAddress{Port: 9090}, ":9090"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.addr.String())
		})
	}
}

func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    NetAddress
		wantErr bool
	}{
		{"localhost", "localhost:8080", NetAddress{Host: "localhost", Port: 8080}, false},
		{"ip", "10.0.0.1:9090", NetAddress{Host: "10.0.0.1", Port: 9090}, false},
		{"all interfaces", ":9090", NetAddress{Port: 9090}, false},
		{"no port", "localhost", NetAddress{}, true},
		{"bad port", "localhost:http", NetAddress{}, true},
		{"zero port", "localhost:0", NetAddress{}, true},
		{"hostname", "example.com:80", NetAddress{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a NetAddress
			err := a.Set(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestParseFlags(t *testing.T) {
	cfg, err := ParseFlags([]string{
		"-a", "localhost:8080",
		"-grpc-address", "127.0.0.1:9090",
		"-d", "postgres://db",
		"-l", "local.db",
		"-config", "cfg.toml",
		"-token-sign-key", "sign",
		"-token-duration", "2h",
		"-issue-token", "42",
		"-transport", "grpc",
		"-remote-grpc", "localhost:9090",
		"-remote-timeout", "3s",
		"-sync-interval", "45s",
		"-strategy", "keep_local",
		"-once",
		"-rate-limit", "2.5",
		"-rate-burst", "10",
		"-metrics-address", "127.0.0.1:9100",
	})
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.GRPCAddress)
	assert.Equal(t, "postgres://db", cfg.Storage.DB.DSN)
	assert.Equal(t, "local.db", cfg.Storage.Local.DSN)
	assert.Equal(t, "cfg.toml", cfg.FilePath)
	assert.Equal(t, "sign", cfg.App.TokenSignKey)
	assert.Equal(t, 2*time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, int64(42), cfg.App.IssueTokenFor)
	assert.Equal(t, "grpc", cfg.Adapter.Transport)
	assert.Equal(t, "localhost:9090", cfg.Adapter.GRPCAddress)
	assert.Equal(t, 3*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 45*time.Second, cfg.Workers.SyncInterval)
	assert.Equal(t, "keep_local", cfg.Sync.Strategy)
	assert.True(t, cfg.Sync.Once)
	assert.InDelta(t, 2.5, cfg.Server.RateLimit, 1e-9)
	assert.Equal(t, 10, cfg.Server.RateBurst)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Address)
}

func TestParseFlags_Invalid(t *testing.T) {
	_, err := ParseFlags([]string{"-a", "not-an-address"})
	assert.Error(t, err)

	_, err = ParseFlags([]string{"-unknown"})
	assert.Error(t, err)

	_, err = ParseFlags([]string{"-metrics-address", "metrics"})
	assert.Error(t, err)
}
