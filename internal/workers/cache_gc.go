// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/logger"
)

// gcDiscardRatio is the share of stale data a value-log file must hold
// before it is rewritten.
const gcDiscardRatio = 0.5

type cacheGCWorker struct {
	gc       GarbageCollector
	interval time.Duration
	logger   *logger.Logger
}

// NewCacheGC runs value-log garbage collection on the cache every interval.
func NewCacheGC(gc GarbageCollector, interval time.Duration, log *logger.Logger) Worker {
	if interval <= 0 {
		interval = config.DefaultCacheGCInterval
	}
	return &cacheGCWorker{gc: gc, interval: interval, logger: log}
}

func (w *cacheGCWorker) Run(ctx context.Context) error {
	return every(ctx, w.interval, func(context.Context) {
		start := time.Now()
		if err := w.gc.RunGC(gcDiscardRatio); err != nil {
			w.logger.Warn().Err(err).Str("func", "cacheGCWorker.Run").Msg("cache gc failed")
			return
		}
		w.logger.Debug().Str("func", "cacheGCWorker.Run").Dur("took", time.Since(start)).Msg("cache gc completed")
	})
}
