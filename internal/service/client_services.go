package service

import (
	"context"

	"github.com/MKhiriev/medsync/internal/adapter"
	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/crypto"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/metrics"
	"github.com/MKhiriev/medsync/internal/store"
	"github.com/MKhiriev/medsync/internal/validators"
)

// ClientServices groups the client-side services. The engine is gated on
// the connectivity monitor, and the monitor triggers the engine when the
// server becomes reachable again.
type ClientServices struct {
	QueueService QueueService
	SyncEngine   SyncEngine
	Connectivity ConnectivityMonitor
	SyncJob      SyncJob
}

// NewClientServices wires the client services. provider may be nil for
// commands that never seal (queue inspection); the engine then fails every
// non-empty cycle with ErrCrypto.
func NewClientServices(
	outbox store.OutboxQueue,
	provider crypto.Provider,
	transport adapter.Transport,
	cfg *config.ClientConfig,
	m *metrics.SyncMetrics,
	log *logger.Logger,
) *ClientServices {
	monitor := NewConnectivityMonitor(transport, cfg.Adapter.RequestTimeout, m, log)
	engine := NewSyncEngine(outbox, provider, transport, monitor, cfg.Adapter.RequestTimeout, m, log)

	monitor.OnRestored(func(ctx context.Context) {
		_, _ = engine.Trigger(ctx, ReasonConnectivity)
	})

	return &ClientServices{
		QueueService: NewQueueService(outbox, validators.NewEnvelopeValidator(), log),
		SyncEngine:   engine,
		Connectivity: monitor,
		SyncJob:      NewSyncJob(engine),
	}
}
