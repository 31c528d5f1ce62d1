// Package metrics provides Prometheus metrics for the circularity scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the circularity service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	scoreBuckets     []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring - what players actually see
	strokesScored   *prometheus.CounterVec
	accuracy        *prometheus.HistogramVec
	finalScore      *prometheus.HistogramVec
	scoringLatency  prometheus.Histogram
	highScores      prometheus.Counter
	duplicateStroke prometheus.Counter

	// Sessions
	activeSessions  prometheus.Gauge
	sessionsCreated prometheus.Counter
	sessionsClosed  *prometheus.CounterVec
	pointerEvents   *prometheus.CounterVec

	// Best-score store
	bestEntries       prometheus.Gauge
	repositoryLatency *prometheus.HistogramVec

	// Stroke id dedupe
	dedupeSize      prometheus.Gauge
	dedupeEvictions prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "circularity",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		scoreBuckets:     prometheus.LinearBuckets(10, 10, 10),
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics on the configured registry.
func (m *Manager) initializeMetrics() {
	m.strokesScored = m.counterVec("strokes_scored_total",
		"Total number of strokes scored by difficulty and outcome", "difficulty", "outcome")
	m.accuracy = m.histogramVec("accuracy",
		"Distribution of stroke accuracy (0-100)", m.scoreBuckets, "difficulty")
	m.finalScore = m.histogramVec("final_score",
		"Distribution of final scores (0-100)", m.scoreBuckets, "difficulty")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds",
		"Histogram of scoring latency in milliseconds", m.histogramBuckets)
	m.highScores = m.counter("high_scores_total",
		"Total number of verdicts that beat the session best")
	m.duplicateStroke = m.counter("strokes_duplicate_total",
		"Total number of resubmitted strokes detected by stroke id")

	m.activeSessions = m.gauge("active_sessions", "Current number of live sessions")
	m.sessionsCreated = m.counter("sessions_created_total", "Total number of sessions created")
	m.sessionsClosed = m.counterVec("sessions_closed_total",
		"Total number of sessions closed by reason", "reason")
	m.pointerEvents = m.counterVec("pointer_events_total",
		"Total number of pointer events applied by kind", "kind")

	m.bestEntries = m.gauge("best_entries", "Number of sessions holding a best score")
	m.repositoryLatency = m.histogramVec("repository_latency_milliseconds",
		"Best-score store operation latency in milliseconds", m.histogramBuckets, "operation")

	m.dedupeSize = m.gauge("dedupe_size", "Number of stroke ids remembered")
	m.dedupeEvictions = m.counter("dedupe_evictions_total", "Total number of stroke ids evicted")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds",
		"Latency of operations that resulted in errors", m.histogramBuckets, "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordStrokeScored counts one verdict and observes its scores.
func RecordStrokeScored(difficulty, outcome string, accuracy, final float64) {
	globalManager.strokesScored.WithLabelValues(difficulty, outcome).Inc()
	globalManager.accuracy.WithLabelValues(difficulty).Observe(accuracy)
	globalManager.finalScore.WithLabelValues(difficulty).Observe(final)
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordHighScore increments the high score counter.
func RecordHighScore() {
	globalManager.highScores.Inc()
}

// RecordDuplicateStroke increments the duplicate stroke counter.
func RecordDuplicateStroke() {
	globalManager.duplicateStroke.Inc()
}

// UpdateActiveSessions sets the number of live sessions.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordSessionCreated increments the created sessions counter.
func RecordSessionCreated() {
	globalManager.sessionsCreated.Inc()
}

// RecordSessionClosed counts a session leaving the registry ("deleted" or "expired").
func RecordSessionClosed(reason string) {
	globalManager.sessionsClosed.WithLabelValues(reason).Inc()
}

// RecordPointerEvent counts one applied pointer event.
func RecordPointerEvent(kind string) {
	globalManager.pointerEvents.WithLabelValues(kind).Inc()
}

// UpdateBestEntries sets the number of sessions in the best-score store.
func UpdateBestEntries(count int) {
	globalManager.bestEntries.Set(float64(count))
}

// RecordRepositoryLatency records a best-score store operation latency.
func RecordRepositoryLatency(operation string, latencyMs float64) {
	globalManager.repositoryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateDedupeSize sets the number of remembered stroke ids.
func UpdateDedupeSize(size int) {
	globalManager.dedupeSize.Set(float64(size))
}

// RecordDedupeEviction increments the dedupe eviction counter.
func RecordDedupeEviction() {
	globalManager.dedupeEvictions.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
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

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
