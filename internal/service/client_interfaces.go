package service

import (
	"context"
	"encoding/json"
	"time"
)

// SyncEngine drains the outbox and delivers it to the ingest server.
type SyncEngine interface {
	// Trigger runs one cycle unless the client is offline or a cycle is
	// already running, in which case the result is skipped and err is nil.
	// A failed cycle leaves the outbox untouched.
	Trigger(ctx context.Context, reason TriggerReason) (CycleResult, error)

	State() EngineState

	// Subscribe returns a channel of state changes with the given buffer.
	// Changes are dropped for a subscriber whose buffer is full. cancel
	// closes the channel.
	Subscribe(buffer int) (changes <-chan StateChange, cancel func())
}

// Connectivity reports whether the ingest server is believed reachable.
type Connectivity interface {
	Online() bool
}

// ConnectivityMonitor probes the ingest server and notifies listeners when
// it becomes reachable again.
type ConnectivityMonitor interface {
	Connectivity

	// Probe performs one health check and updates Online.
	Probe(ctx context.Context) bool

	// OnRestored registers fn to run after each offline→online transition.
	OnRestored(fn func(ctx context.Context))

	// Start probes immediately and then every interval until Stop or ctx
	// cancellation.
	Start(ctx context.Context, interval time.Duration)
	Stop()
}

// SyncJob triggers the engine periodically.
type SyncJob interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}

// QueueStatus summarises the outbox for the CLI.
type QueueStatus struct {
	Pending int64 `json:"pending"`
}

// QueueService is the client's entry point for recording mutations.
type QueueService interface {
	// Enqueue appends a mutation to the outbox and returns its id. An error
	// means the mutation was not recorded and must be retried.
	Enqueue(ctx context.Context, recordType string, data json.RawMessage) (int64, error)

	Status(ctx context.Context) (QueueStatus, error)

	// Purge discards every pending mutation, synced or not.
	Purge(ctx context.Context) (int64, error)
}
