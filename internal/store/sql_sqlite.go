package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/migrations"
)

// NewConnectSQLite opens the client's outbox database file at path, creating
// the file and its directory if needed.
//
// The pool is limited to a single connection: SQLite serialises writers
// anyway, and a single connection makes the outbox's read and delete
// statements observe a consistent view.
func NewConnectSQLite(ctx context.Context, path string, log *logger.Logger) (*DB, error) {
	if err := createLocalDBFileIfNotExists(path); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error creating database file")
		return nil, fmt.Errorf("%w: %w", ErrConnecting, err)
	}

	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error opening database")
		return nil, fmt.Errorf("%w: %w", ErrConnecting, err)
	}
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, fmt.Errorf("%w: %w", ErrConnecting, err)
	}
	log.Debug().Str("func", "NewConnectSQLite").Str("path", path).Msg("connected to database successfully")

	return &DB{
		DB:                 conn,
		dialect:            migrations.SQLite,
		errorClassificator: sqliteErrorClassifier{},
		logger:             log,
	}, nil
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		if dir := filepath.Dir(dbFile); dir != "" {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return fmt.Errorf("error creating DB directory: %w", err)
			}
		}

		f, err := os.OpenFile(dbFile, os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		return f.Close()
	}

	return nil
}

// sqliteErrorClassifier never retries: a busy database is already handled
// by the driver's busy timeout.
type sqliteErrorClassifier struct{}

func (sqliteErrorClassifier) Classify(error) ErrorClassification {
	return NonRetryable
}
