package cache

import "errors"

var (
	// ErrCacheUnavailable wraps badger failures on read or write.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrInvalidTTL is returned by Put for a non-positive ttl.
	ErrInvalidTTL = errors.New("cache ttl must be positive")

	// ErrCorruptEntry is returned when a stored value cannot be decoded.
	ErrCorruptEntry = errors.New("corrupt cache entry")

	errPathRequired = errors.New("cache dir is required for a persistent cache")
)
