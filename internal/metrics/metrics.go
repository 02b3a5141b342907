// Package metrics defines the Prometheus collectors of the sync client and
// the ingest server.
//
// Collectors are registered on a caller-supplied registry so that tests can
// use a private one. All recording methods are safe on a nil receiver,
// which disables metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medsync"

// Cycle outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// SyncMetrics instruments the client sync engine.
type SyncMetrics struct {
	cycles     *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   prometheus.Histogram
	itemsSent  prometheus.Counter
	queueDepth prometheus.Gauge
	online     prometheus.Gauge
}

// NewSyncMetrics registers the client collectors on reg.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	f := promauto.With(reg)

	return &SyncMetrics{
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Sync cycles by outcome.",
		}, []string{"outcome"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "failures_total",
			Help:      "Failed sync cycles by error kind.",
		}, []string{"kind"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of non-skipped sync cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		itemsSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "items_sent_total",
			Help:      "Envelopes accepted by the server.",
		}),
		queueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "depth",
			Help:      "Items waiting in the outbox after the last cycle.",
		}),
		online: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "online",
			Help:      "1 when the ingest server was reachable at the last probe.",
		}),
	}
}

// ObserveCycle records one cycle. d is ignored for skipped cycles.
func (m *SyncMetrics) ObserveCycle(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		m.duration.Observe(d.Seconds())
	}
}

// ObserveFailure counts a failed cycle by error kind ("crypto", "network",
// "storage").
func (m *SyncMetrics) ObserveFailure(kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(kind).Inc()
}

func (m *SyncMetrics) AddSent(n int) {
	if m == nil {
		return
	}
	m.itemsSent.Add(float64(n))
}

func (m *SyncMetrics) SetQueueDepth(n int64) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *SyncMetrics) SetOnline(online bool) {
	if m == nil {
		return
	}
	if online {
		m.online.Set(1)
	} else {
		m.online.Set(0)
	}
}

// IngestMetrics instruments the ingest server.
type IngestMetrics struct {
	submissions *prometheus.CounterVec
	fetches     *prometheus.CounterVec
	syncs       prometheus.Counter
	requests    *prometheus.HistogramVec
}

// Submission results.
const (
	ResultAccepted = "accepted"
	ResultInvalid  = "invalid"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Fetch sources.
const (
	SourceCache = "cache"
	SourceStore = "store"
	SourceMiss  = "miss"
)

// NewIngestMetrics registers the server collectors on reg.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	f := promauto.With(reg)

	return &IngestMetrics{
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "submissions_total",
			Help:      "Submitted envelopes by result.",
		}, []string{"result"}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "fetches_total",
			Help:      "Fetches by the source that answered them.",
		}, []string{"source"}),
		syncs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "sync_acks_total",
			Help:      "Sync acknowledgements received.",
		}),
		requests: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

func (m *IngestMetrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *IngestMetrics) ObserveFetch(source string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(source).Inc()
}

func (m *IngestMetrics) ObserveSync() {
	if m == nil {
		return
	}
	m.syncs.Inc()
}

// ObserveRequest records one HTTP request. route is the chi route pattern,
// not the raw path, to keep cardinality bounded.
func (m *IngestMetrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the exposition format for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
