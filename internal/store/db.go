package store

import (
	"database/sql"

	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/migrations"
)

// DB wraps a *sql.DB with its dialect, an error classifier and a logger.
type DB struct {
	*sql.DB
	dialect            migrations.Dialect
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// ErrorClassificator decides whether a failed database operation may be
// retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// Migrate applies the embedded migrations for the connection's dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}
