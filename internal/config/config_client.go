package config

import (
	"fmt"
	"time"
)

// ClientApp holds client key ring settings.
type ClientApp struct {
	KeysPath       string
	KeysPassphrase string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the base URL of the ingest server.
	HTTPAddress string
	// RequestTimeout is the per-call timeout for outbound requests.
	RequestTimeout time.Duration
}

// ClientStorage contains the local outbox database settings.
type ClientStorage struct {
	// DSN is the SQLite file path of the outbox.
	DSN string
}

// ClientWorkers contains client background job settings.
type ClientWorkers struct {
	SyncInterval  time.Duration
	ProbeInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
	// MetricsAddress enables the Prometheus endpoint of the daemon when set.
	MetricsAddress string
}

// GetClientConfig builds and validates a client-specific config view.
//
// Sources are merged as client defaults, environment, overrides (typically built
// from CLI flags by the caller) and finally the config file referenced by
// any of the previous sources.
func GetClientConfig(overrides *StructuredConfig) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withClientDefaults().
		withEnv().
		withOverrides(overrides).
		withFile().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			KeysPath:       cfg.App.KeysPath,
			KeysPassphrase: cfg.App.KeysPassphrase,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DSN: cfg.Storage.DB.DSN,
		},
		Workers: ClientWorkers{
			SyncInterval:  cfg.Workers.SyncInterval,
			ProbeInterval: cfg.Workers.ProbeInterval,
		},
		MetricsAddress: cfg.Server.MetricsAddress,
	}

	return clientCfg, clientCfg.validate()
}
