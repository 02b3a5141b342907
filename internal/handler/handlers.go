package handler

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/handler/http"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/metrics"
	"github.com/MKhiriev/medsync/internal/service"
	"github.com/MKhiriev/medsync/models"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(
	services *service.Services,
	cfg config.Server,
	m *metrics.IngestMetrics,
	gatherer prometheus.Gatherer,
	build models.BuildInfo,
	logger *logger.Logger,
) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: http.NewHandler(services, cfg, m, gatherer, build, logger),
	}, nil
}
