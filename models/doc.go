// Package models defines the data shared by the sync client and the ingest
// server: outbox items, wire envelopes, stored records, cache entries and
// the JSON bodies of the HTTP protocol.
package models
