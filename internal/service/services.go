package service

import (
	"github.com/MKhiriev/medsync/internal/cache"
	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/crypto"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/metrics"
	"github.com/MKhiriev/medsync/internal/store"
	"github.com/MKhiriev/medsync/internal/utils"
	"github.com/MKhiriev/medsync/internal/validators"
)

// Services groups the server-side services.
type Services struct {
	IngestService IngestService
}

func NewServices(
	storages *store.Storages,
	c cache.Cache,
	counters cache.MetricsStore,
	verifier crypto.Verifier,
	cfg *config.StructuredConfig,
	m *metrics.IngestMetrics,
	logger *logger.Logger,
) *Services {
	return &Services{
		IngestService: NewIngestService(
			validators.NewEnvelopeValidator(),
			verifier,
			storages.RecordRepository,
			c,
			counters,
			utils.NewUUIDGenerator(),
			cfg.Cache,
			m,
			logger,
		),
	}
}
