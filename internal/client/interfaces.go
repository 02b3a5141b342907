// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the lifecycle contract of a runnable client.
type Client interface {
	// Run blocks until ctx is cancelled or a component fails.
	Run(ctx context.Context) error

	// Close releases the key ring and the outbox.
	Close() error
}
