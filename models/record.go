package models

import "time"

// Record is an envelope persisted in the store-of-record.
type Record struct {
	ID        string           `json:"id"`
	Encrypted EncryptedPayload `json:"encrypted"`
	Signature ByteArray        `json:"signature"`
	Type      string           `json:"type"`
	// Timestamp is assigned by the server in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
	// ClientTimestamp is whatever the client claimed, kept for diagnostics.
	ClientTimestamp int64 `json:"client_timestamp,omitempty"`
}

// RecordProjection is the trimmed view of a record written to the cache on
// ingest.
type RecordProjection struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
}

// Projection returns the cacheable view of r.
func (r Record) Projection() RecordProjection {
	return RecordProjection{ID: r.ID, Timestamp: r.Timestamp, Type: r.Type}
}

// RecordCacheKey is the cache key under which a record's view is stored.
func RecordCacheKey(id string) string {
	return "record:" + id
}

// CacheEntry is a value stored in the read-through cache. The entry is
// absent once the current time reaches ExpiresAt.
type CacheEntry struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is no longer valid at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// SyncMetrics is the server-side sync acknowledgement counter.
type SyncMetrics struct {
	SyncCount int64     `json:"sync_count"`
	LastSync  time.Time `json:"last_sync"`
}
