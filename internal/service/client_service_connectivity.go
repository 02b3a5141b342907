package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/medsync/internal/adapter"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/metrics"
)

type connectivityMonitor struct {
	transport    adapter.Transport
	probeTimeout time.Duration
	metrics      *metrics.SyncMetrics
	logger       *logger.Logger

	online atomic.Bool

	listenersMu sync.RWMutex
	listeners   []func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConnectivityMonitor returns a monitor that treats a successful
// GET /health as online. It starts offline.
func NewConnectivityMonitor(transport adapter.Transport, probeTimeout time.Duration, m *metrics.SyncMetrics, log *logger.Logger) ConnectivityMonitor {
	if probeTimeout <= 0 {
		probeTimeout = DefaultCallTimeout
	}
	return &connectivityMonitor{
		transport:    transport,
		probeTimeout: probeTimeout,
		metrics:      m,
		logger:       log,
	}
}

// Online implements [Connectivity].
func (c *connectivityMonitor) Online() bool {
	return c.online.Load()
}

// OnRestored implements [ConnectivityMonitor].
func (c *connectivityMonitor) OnRestored(fn func(ctx context.Context)) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Probe implements [ConnectivityMonitor]. Listeners run synchronously on
// the probing goroutine.
func (c *connectivityMonitor) Probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	_, err := c.transport.Health(probeCtx)
	cancel()

	online := err == nil
	was := c.online.Swap(online)
	c.metrics.SetOnline(online)

	switch {
	case online && !was:
		c.logger.Info().Str("func", "connectivityMonitor.Probe").Msg("ingest server reachable")
		c.listenersMu.RLock()
		listeners := append([]func(context.Context){}, c.listeners...)
		c.listenersMu.RUnlock()
		for _, fn := range listeners {
			fn(ctx)
		}
	case !online && was:
		c.logger.Warn().Err(err).Str("func", "connectivityMonitor.Probe").Msg("ingest server unreachable, working offline")
	}

	return online
}

// Start implements [ConnectivityMonitor]. A non-positive interval defaults
// to 5 seconds. Start and Stop are serialised; a second Start replaces the
// running probe loop.
func (c *connectivityMonitor) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	monCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		c.Probe(monCtx)

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-monCtx.Done():
				return
			case <-t.C:
				c.Probe(monCtx)
			}
		}
	}()
}

// Stop implements [ConnectivityMonitor]. It blocks until the probing
// goroutine exits and is a no-op when not running.
func (c *connectivityMonitor) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// stopLocked must be called with mu held. Restore callbacks run on the
// probing goroutine and must not call Start or Stop.
func (c *connectivityMonitor) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.wg.Wait()
}
