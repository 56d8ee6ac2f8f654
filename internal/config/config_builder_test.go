package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeConfigFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

// ── build ─────────────────────────────────────────────────────────────────────

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_FirstNonZeroWins verifies the source priority: earlier configs
// win, later ones only fill zero fields.
func TestBuild_FirstNonZeroWins(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{App: App{Version: "1.0.0"}},
		&StructuredConfig{App: App{Version: "2.0.0", TokenIssuer: "issuer"}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "issuer", cfg.App.TokenIssuer)
}

func TestWithDefaults_FillsGaps(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{Workers: Workers{SyncInterval: 5 * time.Second}})

	cfg, err := b.withDefaults().build()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Workers.SyncInterval)
	assert.Equal(t, uint64(3), cfg.Workers.RetryAttempts)
	assert.Equal(t, TransportHTTP, cfg.Adapter.Transport)
	assert.Equal(t, "last_writer_wins", cfg.Sync.Strategy)
}

func TestWithFile_UsesFirstPath(t *testing.T) {
	path := writeConfigFile(t, "cfg.json", `{"app": {"version": "from-file"}}`)

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{FilePath: path})

	cfg, err := b.withFile().build()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.App.Version)
}

func TestWithFile_MissingFile(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{FilePath: "/does/not/exist.json"})

	_, err := b.withFile().build()
	assert.Error(t, err)
}

// ── GetStructuredConfig ───────────────────────────────────────────────────────

func TestGetStructuredConfig_EnvBeatsFlags(t *testing.T) {
	t.Setenv("APP_VERSION", "env-version")
	t.Setenv("WORKERS_SYNC_INTERVAL", "10s")

	cfg, err := GetStructuredConfig([]string{"-sync-interval", "20s", "-token", "abc"})
	require.NoError(t, err)

	assert.Equal(t, "env-version", cfg.App.Version)
	assert.Equal(t, 10*time.Second, cfg.Workers.SyncInterval)
	assert.Equal(t, "abc", cfg.Adapter.Token)
}

func TestGetServerConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg, err := GetServerConfig([]string{
			"-d", "postgres://localhost/kitchen",
			"-token-sign-key", "secret",
			"-a", "localhost:8081",
		})
		require.NoError(t, err)
		assert.Equal(t, "localhost:8081", cfg.Server.HTTPAddress)
		assert.Equal(t, "go-kitchen-sync", cfg.App.TokenIssuer)
		assert.Zero(t, cfg.Server.RateLimit)
		assert.Equal(t, 20, cfg.Server.RateBurst)
	})

	t.Run("negative rate limit", func(t *testing.T) {
		_, err := GetServerConfig([]string{
			"-d", "postgres://localhost/kitchen",
			"-token-sign-key", "secret",
			"-rate-limit", "-1",
		})
		assert.ErrorIs(t, err, ErrInvalidServerConfigs)
	})

	t.Run("missing dsn", func(t *testing.T) {
		_, err := GetServerConfig([]string{"-token-sign-key", "secret"})
		assert.ErrorIs(t, err, ErrInvalidStorageConfigs)
	})

	t.Run("issue token needs no dsn", func(t *testing.T) {
		cfg, err := GetServerConfig([]string{"-token-sign-key", "secret", "-issue-token", "7"})
		require.NoError(t, err)
		assert.Equal(t, int64(7), cfg.App.IssueTokenFor)
	})

	t.Run("missing sign key", func(t *testing.T) {
		_, err := GetServerConfig([]string{"-d", "postgres://localhost/kitchen"})
		assert.ErrorIs(t, err, ErrInvalidAppConfigs)
	})
}

func TestGetClientConfig(t *testing.T) {
	t.Run("valid http", func(t *testing.T) {
		cfg, err := GetClientConfig([]string{"-remote", "http://localhost:8080", "-token", "t", "-l", ":memory:"})
		require.NoError(t, err)
		assert.Equal(t, ":memory:", cfg.Storage.Local.DSN)
		assert.Equal(t, 15*time.Second, cfg.RequestTimeout())
		assert.Empty(t, cfg.Metrics.Address)
	})

	t.Run("grpc without address", func(t *testing.T) {
		_, err := GetClientConfig([]string{"-transport", "grpc", "-token", "t"})
		assert.ErrorIs(t, err, ErrInvalidAdapterConfigs)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := GetClientConfig([]string{"-remote", "localhost:8080", "-token", "t", "-strategy", "merge_fields"})
		assert.ErrorIs(t, err, ErrInvalidSyncConfigs)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := GetClientConfig([]string{"-remote", "localhost:8080"})
		assert.ErrorIs(t, err, ErrInvalidAdapterConfigs)
	})
}
