// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client's transport to the ingest server.
//
// The primary abstraction is [Transport], which decouples the sync engine
// from HTTP. Non-2xx responses are mapped by mapHTTPError to the sentinel
// values in errors.go so that callers can use [errors.Is] (e.g.
// [ErrUnauthorized] for 401). Failures to reach the server at all are
// reported as [ErrUnreachable].
package adapter

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/medsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/transport_mock.go -package=mock

// Transport sends envelopes and acknowledgements to the ingest server.
type Transport interface {
	// Submit posts one sealed envelope to /submit and returns the
	// server-assigned record id.
	Submit(ctx context.Context, env models.Envelope) (models.SubmitResponse, error)

	// Acknowledge posts the coarse summary of a completed sync cycle to
	// /sync.
	Acknowledge(ctx context.Context, ack models.SyncAck) error

	// Fetch returns the JSON body of /fetch for id.
	Fetch(ctx context.Context, id string) (json.RawMessage, error)

	// Health calls GET /health.
	Health(ctx context.Context) (models.HealthResponse, error)
}
