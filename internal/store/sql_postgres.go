package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/migrations"
)

// NewConnectPostgres opens the PostgreSQL store-of-record through the pgx
// database/sql driver.
func NewConnectPostgres(ctx context.Context, dsn string, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error occurred during database connection")
		return nil, fmt.Errorf("%w: %w", ErrConnecting, err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(4)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error connecting database (ping)")
		return nil, fmt.Errorf("%w: %w", ErrConnecting, err)
	}
	log.Info().Str("func", "NewConnectPostgres").Msg("connected to database successfully")

	return &DB{
		DB:                 conn,
		dialect:            migrations.Postgres,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             log,
	}, nil
}
