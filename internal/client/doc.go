// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync client runtime.
//
// It opens the outbox, unlocks the key ring, wires the transport and the
// sync services, and runs the background daemon: connectivity monitor,
// periodic sync job and optional metrics endpoint.
package client
