package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors StructuredConfig for JSON and YAML files. Durations are
// written as strings ("30s", "1h").
type fileConfig struct {
	App struct {
		KeysPath        string `json:"keys_path" yaml:"keys_path"`
		KeysPassphrase  string `json:"keys_passphrase" yaml:"keys_passphrase"`
		TrustedKeysPath string `json:"trusted_keys_path" yaml:"trusted_keys_path"`
		Version         string `json:"version" yaml:"version"`
	} `json:"app" yaml:"app"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" yaml:"dsn"`
		} `json:"db" yaml:"db"`
	} `json:"storage" yaml:"storage"`

	Cache struct {
		Dir      string   `json:"dir" yaml:"dir"`
		InMemory bool     `json:"in_memory" yaml:"in_memory"`
		TTL      Duration `json:"ttl" yaml:"ttl"`
	} `json:"cache" yaml:"cache"`

	Server struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
		RateLimit      float64  `json:"rate_limit" yaml:"rate_limit"`
		RateBurst      int      `json:"rate_burst" yaml:"rate_burst"`
		MetricsAddress string   `json:"metrics_address" yaml:"metrics_address"`
	} `json:"server" yaml:"server"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
	} `json:"adapter" yaml:"adapter"`

	Workers struct {
		SyncInterval      Duration `json:"sync_interval" yaml:"sync_interval"`
		ProbeInterval     Duration `json:"probe_interval" yaml:"probe_interval"`
		HeartbeatInterval Duration `json:"heartbeat_interval" yaml:"heartbeat_interval"`
		CacheGCInterval   Duration `json:"cache_gc_interval" yaml:"cache_gc_interval"`
	} `json:"workers" yaml:"workers"`
}

func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFormat, path)
	}

	return fc.toStructured(), nil
}

func (fc *fileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			KeysPath:        fc.App.KeysPath,
			KeysPassphrase:  fc.App.KeysPassphrase,
			TrustedKeysPath: fc.App.TrustedKeysPath,
			Version:         fc.App.Version,
		},
		Storage: Storage{
			DB: DB{DSN: fc.Storage.DB.DSN},
		},
		Cache: Cache{
			Dir:      fc.Cache.Dir,
			InMemory: fc.Cache.InMemory,
			TTL:      time.Duration(fc.Cache.TTL),
		},
		Server: Server{
			HTTPAddress:    fc.Server.HTTPAddress,
			RequestTimeout: time.Duration(fc.Server.RequestTimeout),
			RateLimit:      fc.Server.RateLimit,
			RateBurst:      fc.Server.RateBurst,
			MetricsAddress: fc.Server.MetricsAddress,
		},
		Adapter: Adapter{
			HTTPAddress:    fc.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(fc.Adapter.RequestTimeout),
		},
		Workers: Workers{
			SyncInterval:      time.Duration(fc.Workers.SyncInterval),
			ProbeInterval:     time.Duration(fc.Workers.ProbeInterval),
			HeartbeatInterval: time.Duration(fc.Workers.HeartbeatInterval),
			CacheGCInterval:   time.Duration(fc.Workers.CacheGCInterval),
		},
	}
}

// Duration is a wrapper around time.Duration that supports JSON and YAML
// unmarshaling from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	tmp, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(tmp)
	return nil
}
