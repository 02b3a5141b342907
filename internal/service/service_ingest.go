package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/medsync/internal/cache"
	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/crypto"
	"github.com/MKhiriev/medsync/internal/envelope"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/metrics"
	"github.com/MKhiriev/medsync/internal/store"
	"github.com/MKhiriev/medsync/internal/validators"
	"github.com/MKhiriev/medsync/models"
)

type ingestService struct {
	validator validators.Validator
	verifier  crypto.Verifier
	records   store.RecordRepository
	cache     cache.Cache
	counters  cache.MetricsStore
	ids       IDGenerator
	ttl       time.Duration
	now       func() time.Time

	metrics *metrics.IngestMetrics
	logger  *logger.Logger
}

// NewIngestService wires the ingest pipeline. m may be nil.
func NewIngestService(
	validator validators.Validator,
	verifier crypto.Verifier,
	records store.RecordRepository,
	c cache.Cache,
	counters cache.MetricsStore,
	ids IDGenerator,
	cacheCfg config.Cache,
	m *metrics.IngestMetrics,
	log *logger.Logger,
) IngestService {
	ttl := cacheCfg.TTL
	if ttl <= 0 {
		ttl = config.DefaultCacheTTL
	}
	return &ingestService{
		validator: validator,
		verifier:  verifier,
		records:   records,
		cache:     c,
		counters:  counters,
		ids:       ids,
		ttl:       ttl,
		now:       time.Now,
		metrics:   m,
		logger:    log,
	}
}

// Submit implements [IngestService].
func (s *ingestService) Submit(ctx context.Context, env models.Envelope) (models.SubmitResponse, error) {
	log := logger.FromContext(ctx)

	if err := s.validator.Validate(ctx, env); err != nil {
		s.metrics.ObserveSubmission(metrics.ResultInvalid)
		return models.SubmitResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if err := envelope.Verify(env, s.verifier); err != nil {
		if errors.Is(err, envelope.ErrAuth) {
			s.metrics.ObserveSubmission(metrics.ResultRejected)
			log.Warn().Str("func", "ingestService.Submit").Str("type", env.Type).Msg("signature rejected")
			return models.SubmitResponse{}, fmt.Errorf("%w: %w", ErrAuth, err)
		}
		s.metrics.ObserveSubmission(metrics.ResultInvalid)
		return models.SubmitResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	record := models.Record{
		ID:              s.ids.Generate(),
		Encrypted:       *env.Encrypted,
		Signature:       env.Signature,
		Type:            env.Type,
		Timestamp:       s.now().UnixMilli(),
		ClientTimestamp: env.Timestamp,
	}

	if err := s.records.SaveRecord(ctx, record); err != nil {
		s.metrics.ObserveSubmission(metrics.ResultError)
		log.Err(err).Str("func", "ingestService.Submit").Msg("failed to persist record")
		return models.SubmitResponse{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.writeThrough(ctx, record.ID, record.Projection())

	s.metrics.ObserveSubmission(metrics.ResultAccepted)
	log.Info().Str("func", "ingestService.Submit").Str("record_id", record.ID).Str("type", record.Type).Msg("record stored")

	return models.SubmitResponse{Success: true, ID: record.ID}, nil
}

// Fetch implements [IngestService]. A failing cache degrades to store reads.
// Hits and misses return the same projection that Submit caches.
func (s *ingestService) Fetch(ctx context.Context, id string) (json.RawMessage, error) {
	log := logger.FromContext(ctx)

	if err := s.validator.Validate(ctx, models.FetchRequest{ID: id}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	cached, ok, err := s.cache.Get(ctx, models.RecordCacheKey(id))
	if err != nil {
		log.Warn().Err(err).Str("func", "ingestService.Fetch").Str("record_id", id).Msg("cache read failed, falling back to store")
	}
	if ok {
		s.metrics.ObserveFetch(metrics.SourceCache)
		return cached, nil
	}

	record, err := s.records.GetRecord(ctx, id)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidRecordID) {
		s.metrics.ObserveFetch(metrics.SourceMiss)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		log.Err(err).Str("func", "ingestService.Fetch").Str("record_id", id).Msg("failed to read record")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	body := s.writeThrough(ctx, id, record.Projection())
	if body == nil {
		return nil, fmt.Errorf("%w: encode record %s", ErrStorage, id)
	}

	s.metrics.ObserveFetch(metrics.SourceStore)
	return body, nil
}

// writeThrough caches v under the record key and returns its encoding. A
// cache failure is logged and otherwise ignored; nil is returned only when v
// cannot be encoded.
func (s *ingestService) writeThrough(ctx context.Context, id string, v any) json.RawMessage {
	body, err := json.Marshal(v)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "ingestService.writeThrough").Str("record_id", id).Msg("failed to encode cache value")
		return nil
	}

	if err := s.cache.Put(ctx, models.RecordCacheKey(id), body, s.ttl); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("func", "ingestService.writeThrough").Str("record_id", id).Msg("cache write failed")
	}
	return body
}

// Sync implements [IngestService]. The counter is bumped before the payload
// is stored, so a failed store still counts the attempt.
func (s *ingestService) Sync(ctx context.Context, payload json.RawMessage) error {
	log := logger.FromContext(ctx)

	if len(payload) == 0 || !json.Valid(payload) {
		return fmt.Errorf("%w: sync payload must be JSON", ErrValidation)
	}

	now := s.now()
	counter, err := s.counters.IncrementSync(ctx, now)
	if err != nil {
		log.Err(err).Str("func", "ingestService.Sync").Msg("failed to update sync counter")
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := s.records.SaveSyncPayload(ctx, payload, now); err != nil {
		log.Err(err).Str("func", "ingestService.Sync").Msg("failed to store sync payload")
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.metrics.ObserveSync()
	log.Info().Str("func", "ingestService.Sync").Int64("sync_count", counter.SyncCount).Msg("sync acknowledged")
	return nil
}

// Stats implements [IngestService].
func (s *ingestService) Stats(ctx context.Context) (models.StatsResponse, error) {
	total, err := s.records.CountRecords(ctx)
	if err != nil {
		return models.StatsResponse{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	counter, err := s.counters.Load(ctx)
	if err != nil {
		return models.StatsResponse{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	stats := models.StatsResponse{
		TotalRecords: total,
		SyncCount:    counter.SyncCount,
		Timestamp:    s.now().UTC(),
	}
	if !counter.LastSync.IsZero() {
		lastSync := counter.LastSync
		stats.LastSync = &lastSync
	}
	return stats, nil
}
