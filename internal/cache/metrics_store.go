package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/models"
)

var syncMetricsKey = []byte("metrics:sync")

// badgerMetricsStore implements [MetricsStore]. Increments run in a badger
// read-write transaction; a conflicting commit is retried.
type badgerMetricsStore struct {
	db      *DB
	backoff func() retry.Backoff
}

// NewMetricsStore returns a [MetricsStore] backed by db.
func NewMetricsStore(db *DB) MetricsStore {
	return &badgerMetricsStore{
		db: db,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(100, retry.WithJitter(time.Millisecond, retry.NewConstant(2*time.Millisecond)))
		},
	}
}

// IncrementSync implements [MetricsStore].
func (s *badgerMetricsStore) IncrementSync(ctx context.Context, at time.Time) (models.SyncMetrics, error) {
	var result models.SyncMetrics

	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		err := s.db.Update(func(txn *badger.Txn) error {
			current, err := readMetrics(txn)
			if err != nil {
				return err
			}

			current.SyncCount++
			current.LastSync = at.UTC()

			raw, err := json.Marshal(current)
			if err != nil {
				return err
			}
			if err := txn.Set(syncMetricsKey, raw); err != nil {
				return err
			}

			result = current
			return nil
		})
		if errors.Is(err, badger.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "badgerMetricsStore.IncrementSync").Msg("failed to increment sync counter")
		return models.SyncMetrics{}, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}

	return result, nil
}

// Load implements [MetricsStore].
func (s *badgerMetricsStore) Load(ctx context.Context) (models.SyncMetrics, error) {
	var result models.SyncMetrics
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		result, err = readMetrics(txn)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "badgerMetricsStore.Load").Msg("failed to load sync counter")
		return models.SyncMetrics{}, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}
	return result, nil
}

func readMetrics(txn *badger.Txn) (models.SyncMetrics, error) {
	var m models.SyncMetrics

	item, err := txn.Get(syncMetricsKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return m, nil
	}
	if err != nil {
		return m, err
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &m)
	})
	return m, err
}
