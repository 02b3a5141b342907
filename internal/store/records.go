package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/models"
)

const (
	recordsTable      = "records"
	syncPayloadsTable = "sync_payloads"
)

var recordColumns = []string{"id", "iv", "data", "signature", "type", "client_timestamp", "created_at"}

// recordRepository is the PostgreSQL implementation of [RecordRepository].
// Statements failing with a retryable SQLSTATE are retried with exponential
// backoff.
type recordRepository struct {
	db      *DB
	builder sq.StatementBuilderType
	backoff func() retry.Backoff
	logger  *logger.Logger
}

// NewRecordRepository returns a [RecordRepository] over db.
func NewRecordRepository(db *DB, log *logger.Logger) RecordRepository {
	return &recordRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
		},
		logger: log,
	}
}

// withRetry runs fn, retrying while the classifier marks its error retryable.
func (r *recordRepository) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && r.db.errorClassificator != nil && r.db.errorClassificator.Classify(err) == Retryable {
			return retry.RetryableError(err)
		}
		return err
	})
}

// SaveRecord implements [RecordRepository]. record.Timestamp (Unix ms) is
// stored as created_at.
func (r *recordRepository) SaveRecord(ctx context.Context, record models.Record) error {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Insert(recordsTable).
		Columns(recordColumns...).
		Values(
			record.ID,
			[]byte(record.Encrypted.IV),
			[]byte(record.Encrypted.Data),
			[]byte(record.Signature),
			record.Type,
			record.ClientTimestamp,
			time.UnixMilli(record.Timestamp).UTC(),
		).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "recordRepository.SaveRecord").Msg("failed to build query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = r.withRetry(ctx, func(ctx context.Context) error {
		_, execErr := r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		log.Err(err).Str("func", "recordRepository.SaveRecord").Str("record_id", record.ID).Msg("failed to insert record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// GetRecord implements [RecordRepository]. Unknown or malformed ids yield
// ErrNotFound and ErrInvalidRecordID respectively.
func (r *recordRepository) GetRecord(ctx context.Context, id string) (models.Record, error) {
	log := logger.FromContext(ctx)

	if _, err := uuid.Parse(id); err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrInvalidRecordID, err)
	}

	query, args, err := r.builder.
		Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "recordRepository.GetRecord").Msg("failed to build query")
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		record              models.Record
		iv, data, signature []byte
		createdAt           time.Time
	)
	err = r.withRetry(ctx, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx, query, args...).
			Scan(&record.ID, &iv, &data, &signature, &record.Type, &record.ClientTimestamp, &createdAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, ErrNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "recordRepository.GetRecord").Str("record_id", id).Msg("failed to read record")
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	record.Encrypted = models.EncryptedPayload{IV: iv, Data: data}
	record.Signature = signature
	record.Timestamp = createdAt.UnixMilli()

	return record, nil
}

// CountRecords implements [RecordRepository].
func (r *recordRepository) CountRecords(ctx context.Context) (int64, error) {
	query, args, err := r.builder.Select("COUNT(*)").From(recordsTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var n int64
	err = r.withRetry(ctx, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "recordRepository.CountRecords").Msg("failed to count records")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return n, nil
}

// SaveSyncPayload implements [RecordRepository]. payload must be valid JSON.
func (r *recordRepository) SaveSyncPayload(ctx context.Context, payload json.RawMessage, syncedAt time.Time) error {
	query, args, err := r.builder.
		Insert(syncPayloadsTable).
		Columns("payload", "synced_at").
		Values(string(payload), syncedAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = r.withRetry(ctx, func(ctx context.Context) error {
		_, execErr := r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "recordRepository.SaveSyncPayload").Msg("failed to store sync payload")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
