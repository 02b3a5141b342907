// Package cache is the ingest server's read-through cache and sync counter,
// both stored in badger.
//
// Entries carry a logical expiry checked against an injectable clock, so an
// entry is never served once its expiry has been reached even if badger has
// not yet evicted it.
package cache
