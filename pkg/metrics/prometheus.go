// Package metrics provides Prometheus metrics for the freshpoint server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every collector exported by the server.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors by kind
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// Upstream open-data API
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram
	upstreamRecords  prometheus.Gauge

	// Route business counters
	commentsReceived prometheus.Counter
	joins            *prometheus.CounterVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by Record* helpers

// customRegistry keeps the default Go collectors out of /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it at startup, before any Record* helper runs concurrently.
func Init(opts ...Option) *Manager {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
	return globalManager
}

// RefreshInterval reports how often the global manager's gauges should be refreshed.
func RefreshInterval() time.Duration { return globalManager.RefreshInterval() }

// Enabled reports whether the global manager records request-path metrics.
func Enabled() bool { return globalManager.Enabled() }

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "freshpoint",
		subsystem:        "server",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval reports how often gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether Record* helpers update collectors.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by route, method and status",
		ConstLabels: labels,
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"route", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_type_total",
		Help:        "Errors reported to the error handler by kind and severity",
		ConstLabels: labels,
	}, []string{"kind", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "Errors reported to the error handler by route, method and kind",
		ConstLabels: labels,
	}, []string{"route", "method", "kind"})

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_requests_total",
		Help:        "Outbound open-data fetches by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.upstreamLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_latency_milliseconds",
		Help:        "Latency of outbound open-data fetches in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.upstreamRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_records",
		Help:        "Number of records returned by the last successful upstream fetch",
		ConstLabels: labels,
	})

	m.commentsReceived = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "comments_received_total",
		Help:        "Comments echoed by POST /comment",
		ConstLabels: labels,
	})

	m.joins = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "joins_total",
		Help:        "String joins by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(route, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(route, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(route, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(route, method, statusCode).Observe(durationMs)
}

// RecordErrorByType records an error with kind and severity labels.
func RecordErrorByType(kind, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByType.WithLabelValues(kind, severity).Inc()
}

// RecordErrorByEndpoint records an error with route, method and kind labels.
func RecordErrorByEndpoint(route, method, kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(route, method, kind).Inc()
}

// RecordUpstreamFetch records one outbound fetch. records is ignored when
// the fetch failed.
func RecordUpstreamFetch(latencyMs float64, records int, err error) {
	if !globalManager.enabled {
		return
	}
	globalManager.upstreamLatency.Observe(latencyMs)
	if err != nil {
		globalManager.upstreamRequests.WithLabelValues("failure").Inc()
		return
	}
	globalManager.upstreamRequests.WithLabelValues("success").Inc()
	globalManager.upstreamRecords.Set(float64(records))
}

// RecordComment increments the comments counter.
func RecordComment() {
	if !globalManager.enabled {
		return
	}
	globalManager.commentsReceived.Inc()
}

// RecordJoin counts a join attempt.
func RecordJoin(ok bool) {
	if !globalManager.enabled {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "type_mismatch"
	}
	globalManager.joins.WithLabelValues(outcome).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
