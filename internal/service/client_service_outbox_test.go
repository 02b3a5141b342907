package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/medsync/internal/adapter"
	"github.com/MKhiriev/medsync/internal/envelope"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/store"
	"github.com/MKhiriev/medsync/internal/validators"
	"github.com/MKhiriev/medsync/models"
)

// recordingTransport is an in-process stand-in for the ingest server that
// can fail on demand and enqueue during a submit.
type recordingTransport struct {
	mu        sync.Mutex
	submitted []models.Envelope
	acks      []models.SyncAck
	failAt    int
	onSubmit  func(n int)
}

func (r *recordingTransport) Submit(_ context.Context, env models.Envelope) (models.SubmitResponse, error) {
	r.mu.Lock()
	n := len(r.submitted) + 1
	hook := r.onSubmit
	if r.failAt == n {
		r.failAt = 0
		r.mu.Unlock()
		return models.SubmitResponse{}, adapter.ErrUnreachable
	}
	r.submitted = append(r.submitted, env)
	r.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return models.SubmitResponse{Success: true, ID: "srv"}, nil
}

func (r *recordingTransport) Acknowledge(_ context.Context, ack models.SyncAck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acks = append(r.acks, ack)
	return nil
}

func (r *recordingTransport) Fetch(context.Context, string) (json.RawMessage, error) {
	return nil, adapter.ErrNotFound
}

func (r *recordingTransport) Health(context.Context) (models.HealthResponse, error) {
	return models.HealthResponse{Status: "ok", Timestamp: time.Now()}, nil
}

func openOutbox(t *testing.T) store.OutboxQueue {
	t.Helper()
	st, err := store.NewClientStorages(context.Background(), filepath.Join(t.TempDir(), "outbox.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st.Outbox
}

func TestSyncEngine_Outbox_FailedCycleThenRecovery(t *testing.T) {
	ctx := context.Background()
	outbox := openOutbox(t)
	queue := NewQueueService(outbox, validators.NewEnvelopeValidator(), logger.Nop())
	provider, _ := testKeys(t)
	transport := &recordingTransport{failAt: 2}
	engine := NewSyncEngine(outbox, provider, transport, nil, time.Second, nil, logger.Nop())

	for _, body := range []string{`{"bp":"120/80"}`, `{"bp":"118/79"}`, `{"bp":"121/82"}`} {
		_, err := queue.Enqueue(ctx, "vitals", json.RawMessage(body))
		require.NoError(t, err)
	}

	_, err := engine.Trigger(ctx, ReasonManual)
	require.ErrorIs(t, err, ErrNetwork)

	status, err := queue.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, status.Pending, "a failed cycle must not remove anything")

	res, err := engine.Trigger(ctx, ReasonManual)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Sent)

	status, err = queue.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.Pending)

	// item 1 was delivered twice: at-least-once, no dedup
	require.Len(t, transport.submitted, 4)
	last := transport.submitted[3]
	plain, err := envelope.Open(last, provider)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bp":"121/82"}`, string(plain))
	assert.Equal(t, "vitals", last.Type)
}

func TestSyncEngine_Outbox_LateAppendSurvivesClear(t *testing.T) {
	ctx := context.Background()
	outbox := openOutbox(t)
	queue := NewQueueService(outbox, validators.NewEnvelopeValidator(), logger.Nop())
	provider, _ := testKeys(t)

	var lateID int64
	transport := &recordingTransport{}
	transport.onSubmit = func(n int) {
		if n != 1 {
			return
		}
		id, err := queue.Enqueue(ctx, "note", json.RawMessage(`{"late":true}`))
		assert.NoError(t, err)
		lateID = id
	}
	engine := NewSyncEngine(outbox, provider, transport, nil, time.Second, nil, logger.Nop())

	_, err := queue.Enqueue(ctx, "note", json.RawMessage(`{"early":true}`))
	require.NoError(t, err)

	res, err := engine.Trigger(ctx, ReasonManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.EqualValues(t, 1, res.Cleared)

	snapshot, err := outbox.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, lateID, snapshot.Items[0].ID)
	assert.JSONEq(t, `{"late":true}`, string(snapshot.Items[0].Data))

	require.Len(t, transport.acks, 1)
	assert.Equal(t, 1, transport.acks[0].Count)
}

// stalledTransport never answers a submit until the caller gives up.
type stalledTransport struct {
	recordingTransport
}

func (s *stalledTransport) Submit(ctx context.Context, _ models.Envelope) (models.SubmitResponse, error) {
	<-ctx.Done()
	return models.SubmitResponse{}, fmt.Errorf("%w: %w", adapter.ErrUnreachable, ctx.Err())
}

func TestSyncEngine_Outbox_StalledServerKeepsQueue(t *testing.T) {
	ctx := context.Background()
	outbox := openOutbox(t)
	queue := NewQueueService(outbox, validators.NewEnvelopeValidator(), logger.Nop())
	provider, _ := testKeys(t)
	engine := NewSyncEngine(outbox, provider, &stalledTransport{}, nil, 20*time.Millisecond, nil, logger.Nop())

	for _, body := range []string{`{"n":1}`, `{"n":2}`} {
		_, err := queue.Enqueue(ctx, "note", json.RawMessage(body))
		require.NoError(t, err)
	}

	res, err := engine.Trigger(ctx, ReasonManual)
	require.ErrorIs(t, err, ErrSync)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Zero(t, res.Sent)

	status, err := queue.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, status.Pending)
}
