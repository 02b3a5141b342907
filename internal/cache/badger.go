// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/MKhiriev/medsync/internal/logger"
)

// Config selects where the badger database lives.
type Config struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string

	InMemory bool

	// Logger receives badger's internal warnings and errors. Nil silences
	// them.
	Logger *logger.Logger
}

// DB is an open badger database shared by the cache and the metrics store.
type DB struct {
	*badger.DB
	inMemory bool
}

// badgerLogger adapts *logger.Logger to badger.Logger.
type badgerLogger struct {
	log *logger.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error().Str("func", "badger").Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn().Str("func", "badger").Msgf(format, args...)
}

func (l badgerLogger) Infof(string, ...any)  {}
func (l badgerLogger) Debugf(string, ...any) {}

// Open opens (or creates) the badger database described by cfg.
func Open(cfg Config) (*DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, errPathRequired
		}
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}

	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{log: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %w", ErrCacheUnavailable, err)
	}

	return &DB{DB: db, inMemory: cfg.InMemory}, nil
}

// RunGC reclaims value-log space. It returns nil when there was nothing to
// rewrite or the database lives in memory.
func (d *DB) RunGC(discardRatio float64) error {
	if d.inMemory {
		return nil
	}

	err := d.RunValueLogGC(discardRatio)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return fmt.Errorf("value log gc: %w", err)
	}
	return nil
}
