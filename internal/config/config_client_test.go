package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientConfig_FromEnvAndOverrides(t *testing.T) {
	setEnvVars(t, map[string]string{
		"ADAPTER_ADDRESS":         "http://env:8080",
		"STORAGE_DB_DATABASE_URI": "outbox.db",
		"APP_KEYS_PATH":           "/keys/ring.json",
	})

	cfg, err := GetClientConfig(&StructuredConfig{
		Adapter: Adapter{HTTPAddress: "http://flag:8080"},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://flag:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, DefaultRequestTimeout, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "outbox.db", cfg.Storage.DSN)
	assert.Equal(t, "/keys/ring.json", cfg.App.KeysPath)
	assert.Equal(t, DefaultSyncInterval, cfg.Workers.SyncInterval)
	assert.Equal(t, DefaultProbeInterval, cfg.Workers.ProbeInterval)
}

func TestGetClientConfig_FileOverridesEnv(t *testing.T) {
	path := writeTempConfig(t, "client.yaml", "adapter:\n  request_timeout: 2s\n")
	setEnvVars(t, map[string]string{
		"ADAPTER_ADDRESS":         "http://env:8080",
		"STORAGE_DB_DATABASE_URI": "outbox.db",
		"APP_KEYS_PATH":           "/keys/ring.json",
	})

	cfg, err := GetClientConfig(&StructuredConfig{FilePath: path})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Adapter.RequestTimeout)
}

func TestClientConfig_Validate(t *testing.T) {
	valid := func() *ClientConfig {
		return &ClientConfig{
			App:     ClientApp{KeysPath: "ring.json"},
			Adapter: ClientAdapter{HTTPAddress: "http://x", RequestTimeout: time.Second},
			Storage: ClientStorage{DSN: "outbox.db"},
			Workers: ClientWorkers{SyncInterval: time.Second, ProbeInterval: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(*ClientConfig)
		want   error
	}{
		{name: "valid", mutate: func(*ClientConfig) {}},
		{name: "empty dsn", mutate: func(c *ClientConfig) { c.Storage.DSN = "" }, want: ErrInvalidStorageConfigs},
		{name: "memory dsn", mutate: func(c *ClientConfig) { c.Storage.DSN = ":memory:" }, want: ErrInvalidStorageConfigs},
		{name: "no address", mutate: func(c *ClientConfig) { c.Adapter.HTTPAddress = "" }, want: ErrInvalidAdapterConfigs},
		{name: "no timeout", mutate: func(c *ClientConfig) { c.Adapter.RequestTimeout = 0 }, want: ErrInvalidAdapterConfigs},
		{name: "no sync interval", mutate: func(c *ClientConfig) { c.Workers.SyncInterval = 0 }, want: ErrInvalidWorkerConfigs},
		{name: "no keys path", mutate: func(c *ClientConfig) { c.App.KeysPath = "" }, want: ErrInvalidAppConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStructuredConfig_Validate(t *testing.T) {
	valid := func() *StructuredConfig {
		cfg := defaultConfig()
		cfg.Storage.DB.DSN = "postgres://x"
		cfg.App.TrustedKeysPath = "trusted.pem"
		cfg.Cache.Dir = "/var/cache"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*StructuredConfig)
		want   error
	}{
		{name: "valid", mutate: func(*StructuredConfig) {}},
		{name: "in memory cache", mutate: func(c *StructuredConfig) { c.Cache.Dir = ""; c.Cache.InMemory = true }},
		{name: "no dsn", mutate: func(c *StructuredConfig) { c.Storage.DB.DSN = "" }, want: ErrInvalidStorageConfigs},
		{name: "negative rate", mutate: func(c *StructuredConfig) { c.Server.RateLimit = -1 }, want: ErrInvalidServerConfigs},
		{name: "no trusted keys", mutate: func(c *StructuredConfig) { c.App.TrustedKeysPath = "" }, want: ErrInvalidAppConfigs},
		{name: "no cache dir", mutate: func(c *StructuredConfig) { c.Cache.Dir = "" }, want: ErrInvalidCacheConfigs},
		{name: "zero ttl", mutate: func(c *StructuredConfig) { c.Cache.TTL = 0 }, want: ErrInvalidCacheConfigs},
		{name: "zero heartbeat", mutate: func(c *StructuredConfig) { c.Workers.HeartbeatInterval = 0 }, want: ErrInvalidWorkerConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetClientConfig_ClientDefaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := GetClientConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultServerURL, cfg.Adapter.HTTPAddress)
	assert.Equal(t, DefaultClientDSN, cfg.Storage.DSN)
	assert.Equal(t, DefaultClientKeysPath, cfg.App.KeysPath)
}
