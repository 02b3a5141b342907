package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/medsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/cache_mock.go -package=mock

// Cache is a key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value under key. ok is false when the key is absent or
	// its entry has expired.
	Get(ctx context.Context, key string) (value json.RawMessage, ok bool, err error)

	// Put stores value under key until ttl elapses.
	Put(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}

// MetricsStore keeps the server's sync counter.
type MetricsStore interface {
	// IncrementSync adds one to the counter, sets LastSync to at and returns
	// the new value. Concurrent calls are never lost.
	IncrementSync(ctx context.Context, at time.Time) (models.SyncMetrics, error)

	// Load returns the current counter. A fresh store reports zero values.
	Load(ctx context.Context) (models.SyncMetrics, error)
}
