// Package metrics exposes Prometheus metrics for the scout service.
//
// A nil *Manager is valid and records nothing, which keeps tests and tools
// that do not serve /metrics free of registry plumbing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom buckets for latency histograms, in seconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry uses an existing registry instead of a fresh one.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Manager) { m.runtime = true }
}

type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry
	runtime   bool

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	narratives    *prometheus.CounterVec
	queryLogFails prometheus.Counter
	players       prometheus.Gauge

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "soccer_scout",
		buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	if m.runtime {
		m.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	m.init()
	return m
}

func (m *Manager) init() {
	auto := promauto.With(m.registry)

	m.queries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "queries_total",
		Help:      "Queries processed by request kind, interpreter tier and outcome",
	}, []string{"kind", "tier", "outcome"})

	m.queryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "query_duration_seconds",
		Help:      "End-to-end query processing time",
		Buckets:   m.buckets,
	}, []string{"kind"})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cache_lookups_total",
		Help:      "Result cache lookups by result",
	}, []string{"result"})

	m.narratives = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "narratives_total",
		Help:      "Narratives produced by source (llm or template)",
	}, []string{"source"})

	m.queryLogFails = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "query_log_failures_total",
		Help:      "Query log writes that failed",
	})

	m.players = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "store_players",
		Help:      "Player records loaded in the store",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   m.buckets,
	}, []string{"endpoint", "method", "status_code"})
}

// Outcome labels for ObserveQuery.
const (
	OutcomeResults = "results"
	OutcomeEmpty   = "empty"
	OutcomeTimeout = "timeout"
)

func (m *Manager) ObserveQuery(kind, tier, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(kind, tier, outcome).Inc()
	m.queryDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Manager) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Manager) Narrative(source string) {
	if m == nil {
		return
	}
	m.narratives.WithLabelValues(source).Inc()
}

func (m *Manager) QueryLogFailed() {
	if m == nil {
		return
	}
	m.queryLogFails.Inc()
}

func (m *Manager) SetPlayers(n int) {
	if m == nil {
		return
	}
	m.players.Set(float64(n))
}

func (m *Manager) ObserveHTTP(endpoint, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
