package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/medsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// OutboxQueue is the client's durable FIFO of not yet acknowledged
// mutations.
type OutboxQueue interface {
	// Append stores item and returns its assigned id. On error the item was
	// not queued and the caller must retry.
	Append(ctx context.Context, item models.QueueItem) (int64, error)

	// DrainAll returns every queued item in append order together with the
	// highest id read. Items appended after the read are not included.
	DrainAll(ctx context.Context) (models.QueueSnapshot, error)

	// ClearUpTo removes items with id <= highWater and returns how many were
	// removed. Later appends are untouched.
	ClearUpTo(ctx context.Context, highWater int64) (int64, error)

	// Clear removes every item regardless of sync state.
	Clear(ctx context.Context) (int64, error)

	// Len returns the number of queued items.
	Len(ctx context.Context) (int64, error)
}

// RecordRepository is the server's store-of-record.
type RecordRepository interface {
	SaveRecord(ctx context.Context, record models.Record) error
	GetRecord(ctx context.Context, id string) (models.Record, error)
	CountRecords(ctx context.Context) (int64, error)
	SaveSyncPayload(ctx context.Context, payload json.RawMessage, syncedAt time.Time) error
}
