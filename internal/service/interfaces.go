// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/medsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// IngestService is the server side of the protocol. It accepts sealed
// envelopes it cannot decrypt, verifies their signatures and persists them.
type IngestService interface {
	// Submit validates, verifies and stores env, then writes its projection
	// to the cache. Returns ErrValidation, ErrAuth or ErrStorage.
	Submit(ctx context.Context, env models.Envelope) (models.SubmitResponse, error)

	// Fetch returns the {id, timestamp, type} projection of record id, from
	// the cache or, on a miss, from the store (and then caches it). Returns
	// ErrNotFound for unknown ids.
	Fetch(ctx context.Context, id string) (json.RawMessage, error)

	// Sync records a client acknowledgement: bumps the sync counter and
	// stores payload. Returns ErrStorage on failure.
	Sync(ctx context.Context, payload json.RawMessage) error

	Stats(ctx context.Context) (models.StatsResponse, error)
}

// IDGenerator issues record ids.
type IDGenerator interface {
	Generate() string
}
