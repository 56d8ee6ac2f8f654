// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// server and the client agent. It is populated by merging environment
// variables, command-line flags, a config file and built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token and integrity settings and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds the server database and the client local store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds listen addresses and timeouts of the sync API.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds how the client agent reaches the sync API.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds background sync job settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// Sync holds reconciliation settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Metrics holds the Prometheus endpoint of the client agent.
	Metrics Metrics `envPrefix:"METRICS_"`

	// FilePath is the optional path to a .json, .toml, .yaml or .yml
	// configuration file.
	// Env: CONFIG; flags: -c / -config.
	FilePath string `env:"CONFIG"`
}

// App holds application-level settings.
type App struct {
	// TokenSignKey signs and verifies bearer tokens (HS256).
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is the lifetime of tokens issued with -issue-token.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// HashKey is the HMAC key for the HashSHA256 request integrity header.
	// Empty disables signing and checking.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Version is reported by GET /api/version.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// IssueTokenFor makes the server print a token for this user ID and exit.
	// Flag only: -issue-token.
	IssueTokenFor int64
}

// Storage groups the persistence settings.
type Storage struct {
	// DB is the server Postgres database.
	DB DB `envPrefix:"DB_"`

	// Local is the client store.
	Local Local `envPrefix:"LOCAL_"`
}

// DB holds connection settings for the server database.
type DB struct {
	// DSN is the PostgreSQL connection string.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Local holds the client store location.
type Local struct {
	// DSN is a SQLite file path. ":memory:" selects the in-memory store and
	// a path ending in ".json" selects the in-memory store persisted to that
	// file.
	// Env: STORAGE_LOCAL_DSN
	DSN string `env:"DSN"`
}

// Server holds network and timeout settings for the sync API.
type Server struct {
	// HTTPAddress is the host:port the HTTP API listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the host:port the gRPC API listens on.
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout bounds every inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// RateLimit is the sustained number of requests per second allowed for
	// one user. Zero disables rate limiting.
	// Env: SERVER_RATE_LIMIT
	RateLimit float64 `env:"RATE_LIMIT"`

	// RateBurst is the number of requests a user may send at once.
	// Env: SERVER_RATE_BURST
	RateBurst int `env:"RATE_BURST"`
}

// Adapter holds client transport settings.
type Adapter struct {
	// Transport selects the remote source: "http" or "grpc".
	// Env: ADAPTER_TRANSPORT
	Transport string `env:"TRANSPORT"`

	// HTTPAddress is the base URL or host:port of the HTTP API.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the host:port of the gRPC API.
	// Env: ADAPTER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout bounds every outbound call, including the remote
	// snapshot fetch.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Token is the bearer token issued to this device.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Workers holds background sync job settings.
type Workers struct {
	// SyncInterval is the period between two sync cycles.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// RetryAttempts caps retries of a failed cycle.
	// Env: WORKERS_RETRY_ATTEMPTS
	RetryAttempts uint64 `env:"RETRY_ATTEMPTS"`

	// RetryBaseDelay is the first backoff delay; it doubles on each retry.
	// Env: WORKERS_RETRY_BASE_DELAY
	RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY"`

	// RetryMaxDelay caps a single backoff delay.
	// Env: WORKERS_RETRY_MAX_DELAY
	RetryMaxDelay time.Duration `env:"RETRY_MAX_DELAY"`
}

// Sync holds reconciliation settings.
type Sync struct {
	// Strategy is the merge strategy for keys present on both sides:
	// "last_writer_wins", "remote_wins" or "keep_local".
	// Env: SYNC_STRATEGY
	Strategy string `env:"STRATEGY"`

	// Once makes the client run a single sync cycle and exit.
	// Flag only: -once.
	Once bool
}

// Metrics holds the client metrics endpoint. The server always serves
// GET /metrics on its HTTP address.
type Metrics struct {
	// Address is the host:port of the client agent metrics endpoint.
	// Empty disables it.
	// Env: METRICS_ADDRESS
	Address string `env:"ADDRESS"`
}

// GetStructuredConfig loads and merges the configuration from all sources
// in the following priority order (first non-zero value wins):
//  1. Environment variables
//  2. Command-line flags (args, without the program name)
//  3. Config file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withFile().
		withDefaults().
		build()
}

// GetServerConfig returns the merged configuration validated for the server.
func GetServerConfig(args []string) (*StructuredConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, err
	}

	if err := cfg.validateServer(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	return cfg, nil
}
