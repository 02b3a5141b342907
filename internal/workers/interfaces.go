// Package workers runs the ingest server's periodic background tasks.
package workers

import (
	"context"

	"github.com/MKhiriev/medsync/models"
)

// Worker is a background task. Run blocks until ctx is cancelled and
// returns nil on a clean stop.
type Worker interface {
	Run(ctx context.Context) error
}

// GarbageCollector reclaims storage space. cache.DB satisfies it.
type GarbageCollector interface {
	RunGC(discardRatio float64) error
}

// StatsSource reports server totals for heartbeats.
type StatsSource interface {
	Stats(ctx context.Context) (models.StatsResponse, error)
}
