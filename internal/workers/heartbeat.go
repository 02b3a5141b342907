package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/logger"
)

type heartbeatWorker struct {
	stats    StatsSource
	interval time.Duration
	logger   *logger.Logger
}

// NewHeartbeat logs a liveness line with the current totals every interval.
// A non-positive interval selects config.DefaultHeartbeatInterval.
func NewHeartbeat(stats StatsSource, interval time.Duration, log *logger.Logger) Worker {
	if interval <= 0 {
		interval = config.DefaultHeartbeatInterval
	}
	return &heartbeatWorker{stats: stats, interval: interval, logger: log}
}

func (w *heartbeatWorker) Run(ctx context.Context) error {
	return every(ctx, w.interval, w.beat)
}

func (w *heartbeatWorker) beat(ctx context.Context) {
	stats, err := w.stats.Stats(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Str("func", "heartbeatWorker.beat").Msg("heartbeat without stats")
		return
	}

	event := w.logger.Info().
		Str("func", "heartbeatWorker.beat").
		Int64("total_records", stats.TotalRecords).
		Int64("sync_count", stats.SyncCount)
	if stats.LastSync != nil {
		event = event.Time("last_sync", *stats.LastSync)
	}
	event.Msg("heartbeat")
}
