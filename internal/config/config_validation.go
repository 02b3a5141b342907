// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

// validate checks that the merged server configuration can start the ingest
// service.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RateLimit < 0 || cfg.Server.RateBurst < 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.App.TrustedKeysPath == "" {
		return ErrInvalidAppConfigs
	}

	if (!cfg.Cache.InMemory && cfg.Cache.Dir == "") || cfg.Cache.TTL <= 0 {
		return ErrInvalidCacheConfigs
	}

	if cfg.Workers.HeartbeatInterval <= 0 || cfg.Workers.CacheGCInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DSN == "" || strings.Contains(cfg.Storage.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval <= 0 || cfg.Workers.ProbeInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.App.KeysPath == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}
