package config

import "time"

// Default values applied before any other source.
const (
	DefaultCacheTTL          = 3600 * time.Second
	DefaultRequestTimeout    = 10 * time.Second
	DefaultSyncInterval      = 30 * time.Second
	DefaultProbeInterval     = 5 * time.Second
	DefaultHeartbeatInterval = time.Minute
	DefaultCacheGCInterval   = 5 * time.Minute
	DefaultHTTPAddress       = "localhost:8080"
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Cache: Cache{
			TTL: DefaultCacheTTL,
		},
		Server: Server{
			HTTPAddress:    DefaultHTTPAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
		Adapter: Adapter{
			RequestTimeout: DefaultRequestTimeout,
		},
		Workers: Workers{
			SyncInterval:      DefaultSyncInterval,
			ProbeInterval:     DefaultProbeInterval,
			HeartbeatInterval: DefaultHeartbeatInterval,
			CacheGCInterval:   DefaultCacheGCInterval,
		},
	}
}

// Client fallbacks applied only by GetClientConfig.
const (
	DefaultClientDSN      = "medsync-outbox.db"
	DefaultClientKeysPath = "medsync-keys.json"
	DefaultServerURL      = "http://" + DefaultHTTPAddress
)

func defaultClientConfig() *StructuredConfig {
	cfg := defaultConfig()
	cfg.App.KeysPath = DefaultClientKeysPath
	cfg.Storage.DB.DSN = DefaultClientDSN
	cfg.Adapter.HTTPAddress = DefaultServerURL
	return cfg
}
