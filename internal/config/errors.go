package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, missing remote address or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, empty DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates missing key material locations.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, zero sync interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidServerConfigs indicates invalid listen or rate limit settings.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidCacheConfigs indicates a cache without directory or TTL.
	ErrInvalidCacheConfigs = errors.New("invalid cache configuration")
	// ErrUnsupportedConfigFormat is returned for config files that are
	// neither JSON nor YAML.
	ErrUnsupportedConfigFormat = errors.New("unsupported config file format")
)
