package config

import (
	"fmt"
	"time"
)

// ClientConfig is the client agent view of [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter Adapter
	Storage ClientStorage
	Workers Workers
	Sync    Sync
	Metrics Metrics
}

// ClientApp holds client-side application settings.
type ClientApp struct {
	// HashKey is the HMAC key used to sign request bodies.
	HashKey string
}

// ClientStorage holds the local store settings.
type ClientStorage struct {
	Local Local
}

// RequestTimeout returns the outbound call timeout.
func (c *ClientConfig) RequestTimeout() time.Duration {
	return c.Adapter.RequestTimeout
}

// GetClientConfig builds and validates the client view of the merged
// structured configuration.
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	if err := clientCfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	return clientCfg, nil
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App:     ClientApp{HashKey: cfg.App.HashKey},
		Adapter: cfg.Adapter,
		Storage: ClientStorage{Local: cfg.Storage.Local},
		Workers: cfg.Workers,
		Sync:    cfg.Sync,
		Metrics: cfg.Metrics,
	}
}
