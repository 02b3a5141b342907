package service

import (
	"context"
	"sync"
	"time"
)

type syncJob struct {
	engine SyncEngine

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a job that triggers engine on a ticker. The job is idle
// until Start is called.
func NewSyncJob(engine SyncEngine) SyncJob {
	return &syncJob{engine: engine}
}

// Start implements SyncJob. It stops any previously running job, then
// launches a background goroutine that triggers a periodic cycle every
// interval. If interval is zero or negative it defaults to 30 seconds. The
// goroutine exits when ctx is cancelled or Stop is called. Concurrent Start
// and Stop calls are serialised, so at most one goroutine runs.
func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.stopLocked()

	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				_, _ = j.engine.Trigger(jobCtx, ReasonPeriodic)
			}
		}
	}()
}

// Stop implements SyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is
// not running.
func (j *syncJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.stopLocked()
}

// stopLocked must be called with mu held. The goroutine never takes mu, so
// waiting here cannot deadlock.
func (j *syncJob) stopLocked() {
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
	j.wg.Wait()
}
