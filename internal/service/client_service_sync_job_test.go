package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEngine struct {
	triggers atomic.Int32
	lastWhy  atomic.Value
}

func (c *countingEngine) Trigger(_ context.Context, reason TriggerReason) (CycleResult, error) {
	c.triggers.Add(1)
	c.lastWhy.Store(reason)
	return CycleResult{Reason: reason, Outcome: OutcomeSuccess}, nil
}

func (c *countingEngine) State() EngineState { return StateIdle }

func (c *countingEngine) Subscribe(int) (<-chan StateChange, func()) {
	ch := make(chan StateChange)
	return ch, func() {}
}

func TestSyncJob_TriggersPeriodically(t *testing.T) {
	engine := &countingEngine{}
	job := NewSyncJob(engine)

	job.Start(context.Background(), 10*time.Millisecond)
	require.Eventually(t, func() bool { return engine.triggers.Load() >= 3 }, time.Second, 5*time.Millisecond)
	job.Stop()

	assert.Equal(t, ReasonPeriodic, engine.lastWhy.Load())

	stopped := engine.triggers.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, stopped, engine.triggers.Load(), "no triggers after Stop")
}

func TestSyncJob_StopsOnContextCancel(t *testing.T) {
	engine := &countingEngine{}
	job := NewSyncJob(engine)

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx, 10*time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}

func TestSyncJob_RestartReplacesRunningJob(t *testing.T) {
	engine := &countingEngine{}
	job := NewSyncJob(engine)

	job.Start(context.Background(), time.Hour)
	job.Start(context.Background(), 10*time.Millisecond)
	defer job.Stop()

	require.Eventually(t, func() bool { return engine.triggers.Load() >= 1 }, time.Second, 5*time.Millisecond)
}

func TestSyncJob_ConcurrentStartLeavesOneLoop(t *testing.T) {
	engine := &countingEngine{}
	job := NewSyncJob(engine)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job.Start(context.Background(), 5*time.Millisecond)
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return engine.triggers.Load() >= 1 }, time.Second, 5*time.Millisecond)
	job.Stop()

	stopped := engine.triggers.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, stopped, engine.triggers.Load(), "a replaced loop kept running")
}
