package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/medsync/internal/cache"
	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/crypto"
	"github.com/MKhiriev/medsync/internal/handler"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/metrics"
	"github.com/MKhiriev/medsync/internal/server"
	"github.com/MKhiriev/medsync/internal/service"
	"github.com/MKhiriev/medsync/internal/store"
	"github.com/MKhiriev/medsync/internal/workers"
	"github.com/MKhiriev/medsync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := buildInfo()
	printBuildInfo(build)

	log := logger.NewLogger("medsync-server")
	if err := run(build, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(build models.BuildInfo, log *logger.Logger) error {
	cfg, err := config.GetStructuredConfig(os.Args[1:])
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}
	if cfg.App.Version != "" {
		build.Version = cfg.App.Version
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storages, err := store.NewStorages(ctx, cfg.Storage.DB.DSN, log)
	if err != nil {
		return fmt.Errorf("error creating storages: %w", err)
	}
	defer storages.Close()

	db, err := cache.Open(cache.Config{Dir: cfg.Cache.Dir, InMemory: cfg.Cache.InMemory, Logger: log})
	if err != nil {
		return fmt.Errorf("error opening cache: %w", err)
	}
	defer db.Close()

	verifier, err := crypto.LoadVerifier(cfg.App.TrustedKeysPath)
	if err != nil {
		return fmt.Errorf("error loading trusted keys: %w", err)
	}
	log.Info().Int("trusted_keys", verifier.Len()).Msg("trusted keys loaded")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewIngestMetrics(registry)

	services := service.NewServices(storages, cache.NewCache(db), cache.NewMetricsStore(db), verifier, cfg, m, log)

	handlers, err := handler.NewHandlers(services, cfg.Server, m, registry, build, log)
	if err != nil {
		return fmt.Errorf("error creating handlers: %w", err)
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	jobs := workers.NewWorkers(
		workers.NewHeartbeat(services.IngestService, cfg.Workers.HeartbeatInterval, log),
		workers.NewCacheGC(db, cfg.Workers.CacheGCInterval, log),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.RunServer(gctx) })
	g.Go(func() error { return jobs.Run(gctx) })

	err = g.Wait()
	log.Info().Msg("server stopped")
	return err
}

func buildInfo() models.BuildInfo {
	info := models.BuildInfo{Version: buildVersion, Date: buildDate, Commit: buildCommit}
	if info.Version == "" {
		info.Version = "N/A"
	}
	if info.Date == "" {
		info.Date = "N/A"
	}
	if info.Commit == "" {
		info.Commit = "N/A"
	}
	return info
}

func printBuildInfo(info models.BuildInfo) {
	fmt.Printf("Build version: %s\n", info.Version)
	fmt.Printf("Build date: %s\n", info.Date)
	fmt.Printf("Build commit: %s\n", info.Commit)
}
