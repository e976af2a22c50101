// Package metrics provides Prometheus metrics for the scorekeep
// scoring service.
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

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Event log metrics
	eventsApplied   prometheus.Counter
	eventsRejected  *prometheus.CounterVec
	eventsDuplicate prometheus.Counter
	replayDuration  prometheus.Histogram

	// Standings metrics
	standingsRecomputes       prometheus.Counter
	standingsRecomputeLatency prometheus.Histogram
	divisionsTracked          prometheus.Gauge
	playersTracked            prometheus.Gauge
	snapshotUpdateLatency     prometheus.Histogram

	// Podium metrics
	podiumAdjustments *prometheus.CounterVec

	// Store metrics
	storeAppendLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByType        *prometheus.CounterVec
	errorsByEndpoint    *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scorekeep",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
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

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.eventsApplied = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_applied_total",
		Help: "Scoring events applied to the results projection.",
	})
	m.eventsRejected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_rejected_total",
		Help: "Scoring events rejected by the reducer, by reason.",
	}, []string{"reason"})
	m.eventsDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_duplicate_total",
		Help: "Re-delivered events dropped before append.",
	})
	m.replayDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "replay_duration_ms",
		Help:    "Full event log replay duration in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.standingsRecomputes = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "standings_recomputes_total",
		Help: "Standings recompute passes.",
	})
	m.standingsRecomputeLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "standings_recompute_duration_ms",
		Help:    "Standings recompute duration in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.divisionsTracked = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "divisions_tracked",
		Help: "Divisions with a computed standings snapshot.",
	})
	m.playersTracked = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "players_tracked",
		Help: "Players present in the results projection.",
	})
	m.snapshotUpdateLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "snapshot_update_duration_ms",
		Help:    "Standings snapshot store update duration in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.podiumAdjustments = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "podium_adjustments_total",
		Help: "Podium adjustment events applied, by type.",
	}, []string{"type"})

	m.storeAppendLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "store_append_duration_ms",
		Help:    "Durable event append duration in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method, and status code.",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByType = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_by_type_total",
		Help: "Errors by type and severity.",
	}, []string{"error_type", "severity"})
	m.errorsByEndpoint = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_by_endpoint_total",
		Help: "Errors by endpoint, method, and type.",
	}, []string{"endpoint", "method", "error_type"})
	m.errorLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "error_latency_ms",
		Help:    "Latency of failed operations in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "memory_usage_bytes",
		Help: "Current heap allocation in bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "goroutine_count",
		Help: "Current number of goroutines.",
	})
	m.systemGCPauseTime = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name:    "gc_pause_ms",
		Help:    "Average GC pause time in milliseconds.",
		Buckets: m.histogramBuckets,
	})
}

// Package-level helpers recording against the global manager.

// RecordEventApplied counts one applied scoring event.
func RecordEventApplied() { globalManager.eventsApplied.Inc() }

// RecordEventRejected counts one reducer rejection by reason.
func RecordEventRejected(reason string) {
	globalManager.eventsRejected.WithLabelValues(reason).Inc()
}

// RecordEventDuplicate counts one re-delivered event dropped before
// append.
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }

// RecordReplayDuration records one full replay duration.
func RecordReplayDuration(ms float64) { globalManager.replayDuration.Observe(ms) }

// RecordStandingsRecompute records one recompute pass and its duration.
func RecordStandingsRecompute(ms float64) {
	globalManager.standingsRecomputes.Inc()
	globalManager.standingsRecomputeLatency.Observe(ms)
}

// UpdateDivisionsTracked sets the tracked division count.
func UpdateDivisionsTracked(count int) { globalManager.divisionsTracked.Set(float64(count)) }

// UpdatePlayersTracked sets the tracked player count.
func UpdatePlayersTracked(count int) { globalManager.playersTracked.Set(float64(count)) }

// RecordSnapshotUpdateLatency records one snapshot store update.
func RecordSnapshotUpdateLatency(ms float64) { globalManager.snapshotUpdateLatency.Observe(ms) }

// RecordPodiumAdjustment counts one podium adjustment by type.
func RecordPodiumAdjustment(adjType string) {
	globalManager.podiumAdjustments.WithLabelValues(adjType).Inc()
}

// RecordStoreAppendLatency records one durable append.
func RecordStoreAppendLatency(ms float64) { globalManager.storeAppendLatency.Observe(ms) }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// RecordErrorByType counts one error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts one error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of one failed operation.
func RecordErrorLatency(component, errorType string, ms float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(ms)
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the registry backing the global manager, for
// serving /healthz.
func GetRegistry() *prometheus.Registry { return customRegistry }
