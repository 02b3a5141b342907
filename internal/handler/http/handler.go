package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/metrics"
	"github.com/MKhiriev/medsync/internal/service"
	"github.com/MKhiriev/medsync/models"
)

type Handler struct {
	services *service.Services

	metrics  *metrics.IngestMetrics
	gatherer prometheus.Gatherer
	limiter  *rate.Limiter
	build    models.BuildInfo

	logger *logger.Logger
}

// NewHandler builds the HTTP handler. gatherer backs GET /metrics and may be
// nil, in which case the route is not registered. A positive
// cfg.RateLimit enables the token bucket limiter.
func NewHandler(
	services *service.Services,
	cfg config.Server,
	m *metrics.IngestMetrics,
	gatherer prometheus.Gatherer,
	build models.BuildInfo,
	logger *logger.Logger,
) *Handler {
	h := &Handler{
		services: services,
		metrics:  m,
		gatherer: gatherer,
		build:    build,
		logger:   logger,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = max(1, int(cfg.RateLimit))
		}
		h.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger.Info().Bool("rate_limited", h.limiter != nil).Msg("http handler created")
	return h
}
