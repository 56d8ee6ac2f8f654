// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the lifecycle contract of the sync agent.
type Client interface {
	// Run syncs until ctx is cancelled or a stop signal arrives. In one-shot
	// mode it returns after a single cycle.
	Run(ctx context.Context) error
}
