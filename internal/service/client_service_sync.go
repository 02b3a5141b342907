// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/medsync/internal/adapter"
	"github.com/MKhiriev/medsync/internal/crypto"
	"github.com/MKhiriev/medsync/internal/envelope"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/metrics"
	"github.com/MKhiriev/medsync/internal/store"
	"github.com/MKhiriev/medsync/models"
)

// DefaultCallTimeout bounds a single transport call when none is configured.
const DefaultCallTimeout = 10 * time.Second

type syncEngine struct {
	outbox       store.OutboxQueue
	provider     crypto.Provider
	transport    adapter.Transport
	connectivity Connectivity
	callTimeout  time.Duration

	metrics *metrics.SyncMetrics
	logger  *logger.Logger
	now     func() time.Time

	state atomic.Int32

	subMu       sync.Mutex
	subscribers map[int]chan StateChange
	nextSubID   int
}

// NewSyncEngine wires an engine from explicit dependencies. connectivity may
// be nil, meaning always online. callTimeout <= 0 selects
// DefaultCallTimeout. m may be nil.
func NewSyncEngine(
	outbox store.OutboxQueue,
	provider crypto.Provider,
	transport adapter.Transport,
	connectivity Connectivity,
	callTimeout time.Duration,
	m *metrics.SyncMetrics,
	log *logger.Logger,
) SyncEngine {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &syncEngine{
		outbox:       outbox,
		provider:     provider,
		transport:    transport,
		connectivity: connectivity,
		callTimeout:  callTimeout,
		metrics:      m,
		logger:       log,
		now:          time.Now,
		subscribers:  make(map[int]chan StateChange),
	}
}

// State implements [SyncEngine].
func (e *syncEngine) State() EngineState {
	return EngineState(e.state.Load())
}

// Trigger implements [SyncEngine]. Errors are logged and counted here and
// also returned for callers that report them (the CLI); periodic callers
// ignore them.
func (e *syncEngine) Trigger(ctx context.Context, reason TriggerReason) (CycleResult, error) {
	log := e.logger.With().Str("reason", string(reason)).Logger()

	if e.connectivity != nil && !e.connectivity.Online() {
		return e.skip(reason, SkipOffline), nil
	}
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateSyncing)) {
		return e.skip(reason, SkipBusy), nil
	}

	start := e.now()
	e.publish(StateChange{From: StateIdle, To: StateSyncing, Reason: reason, At: start})

	result := CycleResult{Reason: reason, StartedAt: start}
	err := e.runCycle(ctx, &result)
	result.FinishedAt = e.now()

	if err != nil {
		result.Outcome = OutcomeFailure
		result.Err = err
		log.Error().Err(err).
			Str("func", "syncEngine.Trigger").
			Int("drained", result.Drained).
			Int("sent", result.Sent).
			Msg("sync cycle failed, outbox kept for next trigger")
		e.metrics.ObserveFailure(failureKind(err))
	} else {
		result.Outcome = OutcomeSuccess
		log.Info().
			Str("func", "syncEngine.Trigger").
			Int("sent", result.Sent).
			Int64("cleared", result.Cleared).
			Bool("acknowledged", result.Acknowledged).
			Dur("took", result.FinishedAt.Sub(start)).
			Msg("sync cycle completed")
		e.metrics.AddSent(result.Sent)
	}
	e.metrics.ObserveCycle(string(result.Outcome), result.FinishedAt.Sub(start))

	e.state.Store(int32(StateIdle))
	e.publish(StateChange{From: StateSyncing, To: StateIdle, Reason: reason, Result: &result, At: result.FinishedAt})

	return result, err
}

func (e *syncEngine) skip(reason TriggerReason, why SkipReason) CycleResult {
	now := e.now()
	result := CycleResult{Reason: reason, Outcome: OutcomeSkipped, Skip: why, StartedAt: now, FinishedAt: now}

	e.logger.Debug().Str("func", "syncEngine.Trigger").Str("reason", string(reason)).Str("skip", string(why)).Msg("sync cycle skipped")
	e.metrics.ObserveCycle(metrics.OutcomeSkipped, 0)

	state := e.State()
	e.publish(StateChange{From: state, To: state, Reason: reason, Result: &result, At: now})
	return result
}

// runCycle drains the outbox, seals and submits every item in order, and
// clears exactly the drained id range once all of them were accepted.
func (e *syncEngine) runCycle(ctx context.Context, result *CycleResult) error {
	snapshot, err := e.outbox.DrainAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: drain outbox: %w", ErrStorage, err)
	}
	result.Drained = len(snapshot.Items)
	result.HighWater = snapshot.HighWater

	if snapshot.Empty() {
		e.metrics.SetQueueDepth(0)
		return nil
	}

	for _, item := range snapshot.Items {
		env, err := envelope.Seal(item, e.provider)
		if err != nil {
			return fmt.Errorf("%w: seal item %d: %w", ErrCrypto, item.ID, err)
		}

		if err := e.submit(ctx, env); err != nil {
			if errors.Is(err, adapter.ErrUnreachable) {
				return fmt.Errorf("%w: %w: submit item %d: %w", ErrSync, ErrNetwork, item.ID, err)
			}
			return fmt.Errorf("%w: submit item %d: %w", ErrSync, item.ID, err)
		}
		result.Sent++
	}

	cleared, err := e.outbox.ClearUpTo(ctx, snapshot.HighWater)
	if err != nil {
		// every item was delivered; the next cycle resends them
		return fmt.Errorf("%w: clear outbox up to %d: %w", ErrStorage, snapshot.HighWater, err)
	}
	result.Cleared = cleared

	result.Acknowledged = e.acknowledge(ctx, snapshot)

	if depth, err := e.outbox.Len(ctx); err == nil {
		e.metrics.SetQueueDepth(depth)
	}

	return nil
}

func (e *syncEngine) submit(ctx context.Context, env models.Envelope) error {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	_, err := e.transport.Submit(callCtx, env)
	return err
}

// acknowledge posts the coarse cycle summary to /sync. Failure is logged
// only: the outbox is already cleared and the items were accepted.
func (e *syncEngine) acknowledge(ctx context.Context, snapshot models.QueueSnapshot) bool {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	ack := models.SyncAck{
		Count:    len(snapshot.Items),
		FirstID:  snapshot.Items[0].ID,
		LastID:   snapshot.HighWater,
		SyncedAt: e.now().UTC(),
	}
	if err := e.transport.Acknowledge(callCtx, ack); err != nil {
		e.logger.Warn().Err(err).Str("func", "syncEngine.acknowledge").Msg("sync acknowledgement not delivered")
		return false
	}
	return true
}

// Subscribe implements [SyncEngine].
func (e *syncEngine) Subscribe(buffer int) (<-chan StateChange, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan StateChange, buffer)

	e.subMu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = ch
	e.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.subscribers, id)
			e.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// publish never blocks: a subscriber with a full buffer misses the change.
func (e *syncEngine) publish(change StateChange) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	for _, ch := range e.subscribers {
		select {
		case ch <- change:
		default:
		}
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrCrypto):
		return "crypto"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrSync):
		return "transport"
	case errors.Is(err, ErrStorage):
		return "storage"
	default:
		return "unknown"
	}
}
