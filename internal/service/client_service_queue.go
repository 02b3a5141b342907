package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/store"
	"github.com/MKhiriev/medsync/internal/validators"
	"github.com/MKhiriev/medsync/models"
)

type queueService struct {
	outbox    store.OutboxQueue
	validator validators.Validator
	logger    *logger.Logger
}

func NewQueueService(outbox store.OutboxQueue, validator validators.Validator, log *logger.Logger) QueueService {
	return &queueService{outbox: outbox, validator: validator, logger: log}
}

// Enqueue implements [QueueService]. data must be valid JSON and recordType
// must pass the same envelope rules the ingest server applies: an item the
// server rejects would block every later item in the outbox.
func (s *queueService) Enqueue(ctx context.Context, recordType string, data json.RawMessage) (int64, error) {
	recordType = strings.TrimSpace(recordType)
	if recordType == "" {
		return 0, fmt.Errorf("%w: record type is required", ErrValidation)
	}
	if err := s.validator.Validate(ctx, models.Envelope{Type: recordType}, "Type"); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if len(data) == 0 || !json.Valid(data) {
		return 0, fmt.Errorf("%w: data must be valid JSON", ErrValidation)
	}

	id, err := s.outbox.Append(ctx, models.QueueItem{Type: recordType, Data: data})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.logger.Debug().Str("func", "queueService.Enqueue").Int64("id", id).Str("type", recordType).Msg("mutation queued")
	return id, nil
}

// Status implements [QueueService].
func (s *queueService) Status(ctx context.Context) (QueueStatus, error) {
	n, err := s.outbox.Len(ctx)
	if err != nil {
		return QueueStatus{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return QueueStatus{Pending: n}, nil
}

// Purge implements [QueueService].
func (s *queueService) Purge(ctx context.Context) (int64, error) {
	n, err := s.outbox.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.logger.Warn().Str("func", "queueService.Purge").Int64("removed", n).Msg("outbox purged")
	return n, nil
}
