package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/medsync/internal/logger"
)

// Storages groups the server-side repositories.
type Storages struct {
	RecordRepository RecordRepository

	db *DB
}

// NewStorages connects to PostgreSQL at dsn, applies migrations and wires
// the repositories.
func NewStorages(ctx context.Context, dsn string, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, dsn, log)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		RecordRepository: NewRecordRepository(db, log),
		db:               db,
	}, nil
}

// Close releases the database connection.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ClientStorages groups the client-side repositories.
type ClientStorages struct {
	Outbox OutboxQueue

	db *DB
}

// NewClientStorages opens the SQLite outbox at path (creating it if
// missing) and applies migrations.
func NewClientStorages(ctx context.Context, path string, log *logger.Logger) (*ClientStorages, error) {
	db, err := NewConnectSQLite(ctx, path, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		Outbox: NewOutboxQueue(db, log),
		db:     db,
	}, nil
}

// Close releases the database connection.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
