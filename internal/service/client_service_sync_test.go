// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/medsync/internal/adapter"
	"github.com/MKhiriev/medsync/internal/envelope"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/mock"
	"github.com/MKhiriev/medsync/models"
)

type staticConnectivity bool

func (c staticConnectivity) Online() bool { return bool(c) }

func snapshotOf(items ...models.QueueItem) models.QueueSnapshot {
	s := models.QueueSnapshot{Items: items}
	for _, it := range items {
		s.HighWater = max(s.HighWater, it.ID)
	}
	return s
}

func item(id int64, data string) models.QueueItem {
	return models.QueueItem{ID: id, Type: "record", Data: json.RawMessage(data), Timestamp: time.UnixMilli(1_700_000_000_000 + id)}
}

type engineFixture struct {
	outbox    *mock.MockOutboxQueue
	transport *mock.MockTransport
	engine    *syncEngine
}

func newEngineFixture(t *testing.T, online bool) engineFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	provider, _ := testKeys(t)

	f := engineFixture{
		outbox:    mock.NewMockOutboxQueue(ctrl),
		transport: mock.NewMockTransport(ctrl),
	}
	f.engine = NewSyncEngine(f.outbox, provider, f.transport, staticConnectivity(online), time.Second, nil, logger.Nop()).(*syncEngine)
	return f
}

// ── skip paths ──────────────────────────────────────────────────────────────

func TestSyncEngine_OfflineIsNoop(t *testing.T) {
	f := newEngineFixture(t, false)

	res, err := f.engine.Trigger(context.Background(), ReasonManual)
	require.NoError(t, err)
	assert.True(t, res.Skipped())
	assert.Equal(t, SkipOffline, res.Skip)
	assert.Equal(t, StateIdle, f.engine.State())
}

func TestSyncEngine_BusyIsNoop(t *testing.T) {
	f := newEngineFixture(t, true)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})

	f.outbox.EXPECT().DrainAll(gomock.Any()).Return(snapshotOf(item(1, `{"n":1}`)), nil)
	f.transport.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, models.Envelope) (models.SubmitResponse, error) {
			close(entered)
			<-release
			return models.SubmitResponse{Success: true, ID: "r1"}, nil
		})
	f.outbox.EXPECT().ClearUpTo(gomock.Any(), int64(1)).Return(int64(1), nil)
	f.transport.EXPECT().Acknowledge(gomock.Any(), gomock.Any()).Return(nil)
	f.outbox.EXPECT().Len(gomock.Any()).Return(int64(0), nil)

	done := make(chan CycleResult)
	go func() {
		res, _ := f.engine.Trigger(ctx, ReasonPeriodic)
		done <- res
	}()

	<-entered
	assert.Equal(t, StateSyncing, f.engine.State())

	res, err := f.engine.Trigger(ctx, ReasonManual)
	require.NoError(t, err)
	assert.Equal(t, SkipBusy, res.Skip)

	close(release)
	first := <-done
	assert.Equal(t, OutcomeSuccess, first.Outcome)
	assert.Equal(t, StateIdle, f.engine.State())
}

// ── success path ────────────────────────────────────────────────────────────

func TestSyncEngine_SubmitsInOrderThenClearsRange(t *testing.T) {
	f := newEngineFixture(t, true)
	provider := f.engine.provider
	items := []models.QueueItem{item(3, `{"a":1}`), item(5, `{"a":2}`), item(9, `{"a":3}`)}

	var seen []string
	f.outbox.EXPECT().DrainAll(gomock.Any()).Return(snapshotOf(items...), nil)
	f.transport.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(ctx context.Context, env models.Envelope) (models.SubmitResponse, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline, "submit must run under a per-call timeout")

			plain, err := envelope.Open(env, provider)
			require.NoError(t, err)
			seen = append(seen, string(plain))
			return models.SubmitResponse{Success: true, ID: "id"}, nil
		})
	f.outbox.EXPECT().ClearUpTo(gomock.Any(), int64(9)).Return(int64(3), nil)
	f.transport.EXPECT().Acknowledge(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ack models.SyncAck) error {
			assert.Equal(t, 3, ack.Count)
			assert.EqualValues(t, 3, ack.FirstID)
			assert.EqualValues(t, 9, ack.LastID)
			return nil
		})
	f.outbox.EXPECT().Len(gomock.Any()).Return(int64(0), nil)

	res, err := f.engine.Trigger(context.Background(), ReasonManual)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 3, res.Sent)
	assert.EqualValues(t, 3, res.Cleared)
	assert.True(t, res.Acknowledged)
	assert.Equal(t, []string{`{"a":1}`, `{"a":2}`, `{"a":3}`}, seen)
}

func TestSyncEngine_SubmitTimeoutAbortsCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider, _ := testKeys(t)
	outbox := mock.NewMockOutboxQueue(ctrl)
	transport := mock.NewMockTransport(ctrl)
	engine := NewSyncEngine(outbox, provider, transport, staticConnectivity(true), 20*time.Millisecond, nil, logger.Nop())

	outbox.EXPECT().DrainAll(gomock.Any()).Return(snapshotOf(item(1, `{}`), item(2, `{}`)), nil)
	transport.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ models.Envelope) (models.SubmitResponse, error) {
			<-ctx.Done()
			return models.SubmitResponse{}, ctx.Err()
		})
	// no ClearUpTo, no Acknowledge: the queue stays as it was

	start := time.Now()
	res, err := engine.Trigger(context.Background(), ReasonManual)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "a stalled submit must be cut off by the call timeout")

	assert.ErrorIs(t, err, ErrSync)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Zero(t, res.Sent)
	assert.Equal(t, StateIdle, engine.State())
}

func TestSyncEngine_EmptyQueue(t *testing.T) {
	f := newEngineFixture(t, true)
	f.outbox.EXPECT().DrainAll(gomock.Any()).Return(models.QueueSnapshot{}, nil)

	res, err := f.engine.Trigger(context.Background(), ReasonPeriodic)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Zero(t, res.Sent)
}

func TestSyncEngine_AckFailureIsNotFatal(t *testing.T) {
	f := newEngineFixture(t, true)

	f.outbox.EXPECT().DrainAll(gomock.Any()).Return(snapshotOf(item(1, `{}`)), nil)
	f.transport.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(models.SubmitResponse{Success: true, ID: "r"}, nil)
	f.outbox.EXPECT().ClearUpTo(gomock.Any(), int64(1)).Return(int64(1), nil)
	f.transport.EXPECT().Acknowledge(gomock.Any(), gomock.Any()).Return(adapter.ErrInternalServerError)
	f.outbox.EXPECT().Len(gomock.Any()).Return(int64(0), nil)

	res, err := f.engine.Trigger(context.Background(), ReasonManual)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.False(t, res.Acknowledged)
}

// ── failure paths: the queue is never cleared ──────────────────────────────

func TestSyncEngine_SubmitFailureKeepsQueue(t *testing.T) {
	f := newEngineFixture(t, true)

	f.outbox.EXPECT().DrainAll(gomock.Any()).Return(snapshotOf(item(1, `{}`), item(2, `{}`), item(3, `{}`)), nil)
	gomock.InOrder(
		f.transport.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(models.SubmitResponse{Success: true, ID: "r1"}, nil),
		f.transport.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(models.SubmitResponse{}, adapter.ErrInternalServerError),
	)
	// no ClearUpTo, Acknowledge or third Submit expected

	res, err := f.engine.Trigger(context.Background(), ReasonManual)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSync)
	assert.ErrorIs(t, err, adapter.ErrInternalServerError)
	assert.NotErrorIs(t, err, ErrNetwork)
	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, StateIdle, f.engine.State())
}

func TestSyncEngine_UnreachableIsNetworkError(t *testing.T) {
	f := newEngineFixture(t, true)

	f.outbox.EXPECT().DrainAll(gomock.Any()).Return(snapshotOf(item(1, `{}`)), nil)
	f.transport.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(models.SubmitResponse{}, adapter.ErrUnreachable)

	_, err := f.engine.Trigger(context.Background(), ReasonManual)
	assert.ErrorIs(t, err, ErrSync)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestSyncEngine_CryptoFailureBeforeNetwork(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mock.NewMockOutboxQueue(ctrl)
	transport := mock.NewMockTransport(ctrl)
	provider := mock.NewMockProvider(ctrl)

	outbox.EXPECT().DrainAll(gomock.Any()).Return(snapshotOf(item(1, `{}`)), nil)
	provider.EXPECT().Encrypt(gomock.Any()).Return(models.EncryptedPayload{}, errors.New("hsm gone"))

	engine := NewSyncEngine(outbox, provider, transport, nil, time.Second, nil, logger.Nop())

	res, err := engine.Trigger(context.Background(), ReasonManual)
	assert.ErrorIs(t, err, ErrCrypto)
	assert.Zero(t, res.Sent)
}

func TestSyncEngine_DrainFailure(t *testing.T) {
	f := newEngineFixture(t, true)
	f.outbox.EXPECT().DrainAll(gomock.Any()).Return(models.QueueSnapshot{}, errors.New("disk"))

	_, err := f.engine.Trigger(context.Background(), ReasonManual)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestSyncEngine_ClearFailureIsStorageError(t *testing.T) {
	f := newEngineFixture(t, true)

	f.outbox.EXPECT().DrainAll(gomock.Any()).Return(snapshotOf(item(1, `{}`)), nil)
	f.transport.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(models.SubmitResponse{Success: true, ID: "r"}, nil)
	f.outbox.EXPECT().ClearUpTo(gomock.Any(), int64(1)).Return(int64(0), errors.New("readonly"))

	_, err := f.engine.Trigger(context.Background(), ReasonManual)
	assert.ErrorIs(t, err, ErrStorage)
}

// ── observers ───────────────────────────────────────────────────────────────

func TestSyncEngine_SubscribersSeeTransitions(t *testing.T) {
	f := newEngineFixture(t, true)
	f.outbox.EXPECT().DrainAll(gomock.Any()).Return(models.QueueSnapshot{}, nil)

	changes, cancel := f.engine.Subscribe(4)
	defer cancel()

	_, err := f.engine.Trigger(context.Background(), ReasonConnectivity)
	require.NoError(t, err)

	first := <-changes
	assert.Equal(t, StateIdle, first.From)
	assert.Equal(t, StateSyncing, first.To)
	assert.Equal(t, ReasonConnectivity, first.Reason)

	second := <-changes
	assert.Equal(t, StateSyncing, second.From)
	assert.Equal(t, StateIdle, second.To)
	require.NotNil(t, second.Result)
	assert.Equal(t, OutcomeSuccess, second.Result.Outcome)
}

func TestSyncEngine_SkipIsPublished(t *testing.T) {
	f := newEngineFixture(t, false)

	changes, cancel := f.engine.Subscribe(1)
	defer cancel()

	_, _ = f.engine.Trigger(context.Background(), ReasonManual)

	change := <-changes
	assert.Equal(t, change.From, change.To)
	require.NotNil(t, change.Result)
	assert.Equal(t, OutcomeSkipped, change.Result.Outcome)
}

func TestSyncEngine_SlowSubscriberDoesNotBlock(t *testing.T) {
	f := newEngineFixture(t, false)

	_, cancel := f.engine.Subscribe(0)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_, _ = f.engine.Trigger(context.Background(), ReasonPeriodic)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine blocked on an unread subscriber")
	}
}

func TestSyncEngine_CancelClosesChannel(t *testing.T) {
	f := newEngineFixture(t, false)

	changes, cancel := f.engine.Subscribe(1)
	cancel()
	cancel()

	_, ok := <-changes
	assert.False(t, ok)

	// publishing after cancel must not panic
	_, _ = f.engine.Trigger(context.Background(), ReasonManual)
}

func TestSyncEngine_ConcurrentTriggersRunOneCycle(t *testing.T) {
	f := newEngineFixture(t, true)
	release := make(chan struct{})
	var submits atomic.Int32

	f.outbox.EXPECT().DrainAll(gomock.Any()).Return(snapshotOf(item(1, `{}`)), nil).Times(1)
	f.transport.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, models.Envelope) (models.SubmitResponse, error) {
			submits.Add(1)
			<-release
			return models.SubmitResponse{Success: true, ID: "r"}, nil
		}).Times(1)
	f.outbox.EXPECT().ClearUpTo(gomock.Any(), int64(1)).Return(int64(1), nil)
	f.transport.EXPECT().Acknowledge(gomock.Any(), gomock.Any()).Return(nil)
	f.outbox.EXPECT().Len(gomock.Any()).Return(int64(0), nil)

	results := make(chan CycleResult, 8)
	for i := 0; i < 8; i++ {
		go func() {
			res, _ := f.engine.Trigger(context.Background(), ReasonPeriodic)
			results <- res
		}()
	}

	require.Eventually(t, func() bool { return submits.Load() == 1 }, time.Second, 5*time.Millisecond)
	skipped := 0
	for i := 0; i < 7; i++ {
		if (<-results).Skipped() {
			skipped++
		}
	}
	close(release)
	last := <-results

	assert.Equal(t, 7, skipped)
	assert.Equal(t, OutcomeSuccess, last.Outcome)
}
