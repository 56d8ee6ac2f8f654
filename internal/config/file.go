package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk layout shared by JSON, TOML and YAML files.
type fileConfig struct {
	App struct {
		TokenSignKey  string   `json:"token_sign_key" toml:"token_sign_key" yaml:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer" toml:"token_issuer" yaml:"token_issuer"`
		TokenDuration Duration `json:"token_duration" toml:"token_duration" yaml:"token_duration"`
		HashKey       string   `json:"hash_key" toml:"hash_key" yaml:"hash_key"`
		Version       string   `json:"version" toml:"version" yaml:"version"`
	} `json:"app" toml:"app" yaml:"app"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" toml:"dsn" yaml:"dsn"`
		} `json:"db" toml:"db" yaml:"db"`
		Local struct {
			DSN string `json:"dsn" toml:"dsn" yaml:"dsn"`
		} `json:"local" toml:"local" yaml:"local"`
	} `json:"storage" toml:"storage" yaml:"storage"`

	Server struct {
		HTTPAddress    string   `json:"http_address" toml:"http_address" yaml:"http_address"`
		GRPCAddress    string   `json:"grpc_address" toml:"grpc_address" yaml:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout" toml:"request_timeout" yaml:"request_timeout"`
		RateLimit      float64  `json:"rate_limit" toml:"rate_limit" yaml:"rate_limit"`
		RateBurst      int      `json:"rate_burst" toml:"rate_burst" yaml:"rate_burst"`
	} `json:"server" toml:"server" yaml:"server"`

	Adapter struct {
		Transport      string   `json:"transport" toml:"transport" yaml:"transport"`
		HTTPAddress    string   `json:"http_address" toml:"http_address" yaml:"http_address"`
		GRPCAddress    string   `json:"grpc_address" toml:"grpc_address" yaml:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout" toml:"request_timeout" yaml:"request_timeout"`
		Token          string   `json:"token" toml:"token" yaml:"token"`
	} `json:"adapter" toml:"adapter" yaml:"adapter"`

	Workers struct {
		SyncInterval   Duration `json:"sync_interval" toml:"sync_interval" yaml:"sync_interval"`
		RetryAttempts  uint64   `json:"retry_attempts" toml:"retry_attempts" yaml:"retry_attempts"`
		RetryBaseDelay Duration `json:"retry_base_delay" toml:"retry_base_delay" yaml:"retry_base_delay"`
		RetryMaxDelay  Duration `json:"retry_max_delay" toml:"retry_max_delay" yaml:"retry_max_delay"`
	} `json:"workers" toml:"workers" yaml:"workers"`

	Sync struct {
		Strategy string `json:"strategy" toml:"strategy" yaml:"strategy"`
	} `json:"sync" toml:"sync" yaml:"sync"`

	Metrics struct {
		Address string `json:"address" toml:"address" yaml:"address"`
	} `json:"metrics" toml:"metrics" yaml:"metrics"`
}

// parseFile reads a config file, choosing the decoder by extension.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &fc)
	case ".toml":
		_, err = toml.Decode(string(data), &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedConfigFile, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
	}

	return fc.toStructured(), nil
}

func (fc *fileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenSignKey:  fc.App.TokenSignKey,
			TokenIssuer:   fc.App.TokenIssuer,
			TokenDuration: time.Duration(fc.App.TokenDuration),
			HashKey:       fc.App.HashKey,
			Version:       fc.App.Version,
		},
		Storage: Storage{
			DB:    DB{DSN: fc.Storage.DB.DSN},
			Local: Local{DSN: fc.Storage.Local.DSN},
		},
		Server: Server{
			HTTPAddress:    fc.Server.HTTPAddress,
			GRPCAddress:    fc.Server.GRPCAddress,
			RequestTimeout: time.Duration(fc.Server.RequestTimeout),
			RateLimit:      fc.Server.RateLimit,
			RateBurst:      fc.Server.RateBurst,
		},
		Adapter: Adapter{
			Transport:      fc.Adapter.Transport,
			HTTPAddress:    fc.Adapter.HTTPAddress,
			GRPCAddress:    fc.Adapter.GRPCAddress,
			RequestTimeout: time.Duration(fc.Adapter.RequestTimeout),
			Token:          fc.Adapter.Token,
		},
		Workers: Workers{
			SyncInterval:   time.Duration(fc.Workers.SyncInterval),
			RetryAttempts:  fc.Workers.RetryAttempts,
			RetryBaseDelay: time.Duration(fc.Workers.RetryBaseDelay),
			RetryMaxDelay:  time.Duration(fc.Workers.RetryMaxDelay),
		},
		Sync:    Sync{Strategy: fc.Sync.Strategy},
		Metrics: Metrics{Address: fc.Metrics.Address},
	}
}
