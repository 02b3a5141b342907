// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/models"
)

// outboxQueue is the SQLite implementation of [OutboxQueue].
type outboxQueue struct {
	db     *DB
	logger *logger.Logger
	now    func() time.Time
}

// NewOutboxQueue returns an [OutboxQueue] over the sync_queue table of db.
func NewOutboxQueue(db *DB, log *logger.Logger) OutboxQueue {
	return &outboxQueue{db: db, logger: log, now: time.Now}
}

// Append implements [OutboxQueue]. A zero item.Timestamp is replaced with the
// current time. item.ID is ignored.
func (q *outboxQueue) Append(ctx context.Context, item models.QueueItem) (int64, error) {
	log := logger.FromContext(ctx)

	ts := item.Timestamp
	if ts.IsZero() {
		ts = q.now()
	}

	res, err := q.db.ExecContext(ctx, appendQueueItem, item.Type, []byte(item.Data), ts.UnixMilli())
	if err != nil {
		log.Err(err).Str("func", "outboxQueue.Append").Str("type", item.Type).Msg("failed to append outbox item")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		log.Err(err).Str("func", "outboxQueue.Append").Msg("append reported no id")
		return 0, fmt.Errorf("%w: %w", ErrNothingAppended, err)
	}
	if id == 0 {
		return 0, ErrNothingAppended
	}

	log.Debug().Str("func", "outboxQueue.Append").Int64("id", id).Str("type", item.Type).Msg("outbox item appended")
	return id, nil
}

// DrainAll implements [OutboxQueue]. The snapshot comes from a single SELECT,
// so rows committed after it started are never part of it.
func (q *outboxQueue) DrainAll(ctx context.Context) (models.QueueSnapshot, error) {
	log := logger.FromContext(ctx)

	rows, err := q.db.QueryContext(ctx, drainQueue)
	if err != nil {
		log.Err(err).Str("func", "outboxQueue.DrainAll").Msg("failed to query outbox")
		return models.QueueSnapshot{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var snapshot models.QueueSnapshot
	for rows.Next() {
		var (
			item      models.QueueItem
			data      []byte
			createdAt int64
		)
		if err := rows.Scan(&item.ID, &item.Type, &data, &createdAt); err != nil {
			log.Err(err).Str("func", "outboxQueue.DrainAll").Msg("failed to scan outbox row")
			return models.QueueSnapshot{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		item.Data = data
		item.Timestamp = time.UnixMilli(createdAt)

		snapshot.Items = append(snapshot.Items, item)
		snapshot.HighWater = max(snapshot.HighWater, item.ID)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "outboxQueue.DrainAll").Msg("error occurred during rows iteration")
		return models.QueueSnapshot{}, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return snapshot, nil
}

// ClearUpTo implements [OutboxQueue].
func (q *outboxQueue) ClearUpTo(ctx context.Context, highWater int64) (int64, error) {
	log := logger.FromContext(ctx)

	if highWater <= 0 {
		return 0, nil
	}

	res, err := q.db.ExecContext(ctx, clearQueueUpTo, highWater)
	if err != nil {
		log.Err(err).Str("func", "outboxQueue.ClearUpTo").Int64("high_water", highWater).Msg("failed to clear outbox")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	n, _ := res.RowsAffected()
	log.Debug().Str("func", "outboxQueue.ClearUpTo").Int64("high_water", highWater).Int64("removed", n).Msg("outbox cleared")
	return n, nil
}

// Clear implements [OutboxQueue].
func (q *outboxQueue) Clear(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, clearQueue)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "outboxQueue.Clear").Msg("failed to purge outbox")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// Len implements [OutboxQueue].
func (q *outboxQueue) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, countQueue).Scan(&n); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "outboxQueue.Len").Msg("failed to count outbox")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return n, nil
}
