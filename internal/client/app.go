package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/medsync/internal/adapter"
	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/crypto"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/metrics"
	"github.com/MKhiriev/medsync/internal/service"
	"github.com/MKhiriev/medsync/internal/store"
)

// Options selects what NewApp prepares.
type Options struct {
	// UnlockKeys loads the key ring. Commands that only inspect the outbox
	// leave it false and never need the passphrase.
	UnlockKeys bool
}

var _ Client = (*App)(nil)

type App struct {
	cfg *config.ClientConfig

	storages  *store.ClientStorages
	provider  *crypto.AESRSAProvider
	transport adapter.Transport
	services  *service.ClientServices
	registry  *prometheus.Registry

	logger *logger.Logger
}

func NewApp(ctx context.Context, cfg *config.ClientConfig, opts Options, log *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("open outbox: %w", err)
	}

	a := &App{cfg: cfg, storages: storages, registry: prometheus.NewRegistry(), logger: log}

	if opts.UnlockKeys {
		ring, err := crypto.LoadKeyRing(cfg.App.KeysPath, cfg.App.KeysPassphrase)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("unlock key ring: %w", err)
		}
		if a.provider, err = crypto.NewProvider(ring); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("load key ring: %w", err)
		}
	}

	a.transport, err = adapter.NewHTTPTransport(cfg.Adapter, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var provider crypto.Provider
	if a.provider != nil {
		provider = a.provider
	}
	a.services = service.NewClientServices(storages.Outbox, provider, a.transport, cfg, metrics.NewSyncMetrics(a.registry), log)

	return a, nil
}

// Services exposes the wired client services to the CLI.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// SyncNow probes the server once and runs a manual cycle. Offline yields a
// skipped result.
func (a *App) SyncNow(ctx context.Context) (service.CycleResult, error) {
	a.services.Connectivity.Probe(ctx)
	return a.services.SyncEngine.Trigger(ctx, service.ReasonManual)
}

// Fetch reads a record view from the ingest server.
func (a *App) Fetch(ctx context.Context, id string) (json.RawMessage, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Adapter.RequestTimeout)
	defer cancel()
	return a.transport.Fetch(callCtx, id)
}

// Run implements [Client]. The connectivity monitor fires the first sync
// as soon as the server is reachable; afterwards the job syncs every
// SyncInterval.
func (a *App) Run(ctx context.Context) error {
	changes, unsubscribe := a.services.SyncEngine.Subscribe(16)
	defer unsubscribe()

	a.services.Connectivity.Start(ctx, a.cfg.Workers.ProbeInterval)
	defer a.services.Connectivity.Stop()

	a.services.SyncJob.Start(ctx, a.cfg.Workers.SyncInterval)
	defer a.services.SyncJob.Stop()

	a.logger.Info().
		Str("server", a.cfg.Adapter.HTTPAddress).
		Dur("sync_interval", a.cfg.Workers.SyncInterval).
		Dur("probe_interval", a.cfg.Workers.ProbeInterval).
		Msg("sync daemon started")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logTransitions(gctx, changes)
		return nil
	})

	if a.cfg.MetricsAddress != "" {
		g.Go(func() error {
			return a.serveMetrics(gctx)
		})
	}

	err := g.Wait()
	a.logger.Info().Msg("sync daemon stopped")
	return err
}

func (a *App) logTransitions(ctx context.Context, changes <-chan service.StateChange) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if change.Result == nil || change.Result.Skipped() {
				continue
			}
			a.logger.Debug().
				Str("from", change.From.String()).
				Str("to", change.To.String()).
				Str("reason", string(change.Reason)).
				Str("outcome", string(change.Result.Outcome)).
				Int("sent", change.Result.Sent).
				Msg("sync state changed")
		}
	}
}

func (a *App) serveMetrics(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.MetricsAddress,
		Handler:           metrics.Handler(a.registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("address", srv.Addr).Msg("metrics endpoint listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics endpoint: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close implements [Client].
func (a *App) Close() error {
	var errs []error
	if a.provider != nil {
		errs = append(errs, a.provider.Close())
	}
	if a.storages != nil {
		errs = append(errs, a.storages.Close())
	}
	return errors.Join(errs...)
}
