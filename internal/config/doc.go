// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package config loads go-kitchen-sync settings from environment variables,
// command-line flags and an optional JSON, TOML or YAML file, merges them and
// validates the view each binary needs.
package config
