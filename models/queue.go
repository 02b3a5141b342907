package models

import (
	"encoding/json"
	"time"
)

// QueueItem is one pending local mutation in the outbox. Items are immutable
// once appended.
type QueueItem struct {
	// ID is assigned by the outbox on append. IDs grow monotonically but are
	// not contiguous after a clear.
	ID int64 `json:"id"`
	// Type is the record kind tag, e.g. "record" or "patient".
	Type string `json:"type"`
	// Data is the opaque JSON payload that gets encrypted.
	Data json.RawMessage `json:"data"`
	// Timestamp is the creation instant on the client.
	Timestamp time.Time `json:"timestamp"`
}

// QueueSnapshot is the result of draining the outbox: the items present at
// read time in append order and the highest id among them. HighWater is 0
// for an empty snapshot.
type QueueSnapshot struct {
	Items     []QueueItem
	HighWater int64
}

// Empty reports whether the snapshot holds no items.
func (s QueueSnapshot) Empty() bool {
	return len(s.Items) == 0
}
