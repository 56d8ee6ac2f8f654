// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the headless client agent.
//
// The agent opens the local store, connects to the sync API over HTTP or
// gRPC and runs the periodic sync job until it is stopped.
package client
