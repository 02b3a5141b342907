package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/models"
)

const entryKeyPrefix = "cache:"

// badgerCache implements [Cache]. Each value is stored as a JSON-encoded
// models.CacheEntry with badger's TTL set to the same expiry.
type badgerCache struct {
	db  *DB
	now func() time.Time
}

// Option configures a cache or metrics store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewCache returns a [Cache] backed by db.
func NewCache(db *DB, opts ...Option) Cache {
	o := buildOptions(opts)
	return &badgerCache{db: db, now: o.now}
}

// Get implements [Cache].
func (c *badgerCache) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(entryKeyPrefix + key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "badgerCache.Get").Str("key", key).Msg("cache read failed")
		return nil, false, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCorruptEntry, err)
	}
	if entry.Expired(c.now()) {
		return nil, false, nil
	}

	return entry.Value, true, nil
}

// Put implements [Cache].
func (c *badgerCache) Put(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptEntry, err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(entryKeyPrefix+key), raw).WithTTL(ttl))
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "badgerCache.Put").Str("key", key).Msg("cache write failed")
		return fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}

	return nil
}

// Delete implements [Cache]. Deleting an absent key is not an error.
func (c *badgerCache) Delete(ctx context.Context, key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(entryKeyPrefix + key))
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "badgerCache.Delete").Str("key", key).Msg("cache delete failed")
		return fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}
	return nil
}
