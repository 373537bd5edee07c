// Package metrics provides Prometheus metrics for the revbeat service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the revbeat service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Core Business Metrics
	recommendations       *prometheus.CounterVec
	recommendationLatency prometheus.Histogram
	playlistLength        prometheus.Histogram
	targetValence         prometheus.Histogram
	targetEnergy          prometheus.Histogram
	catalogSize           prometheus.Gauge
	stageFailures         *prometheus.CounterVec

	// Collaborator Metrics
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	upstreamRetries  *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
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

// unitBuckets covers [0, 1] feature values.
var unitBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "revbeat",
		subsystem:        "recommender",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.recommendations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "recommendations_total",
		Help:        "Total number of playlists served by mood rule and weather class",
		ConstLabels: labels,
	}, []string{"mood_rule", "weather"})

	m.recommendationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "recommendation_latency_milliseconds",
		Help:        "End-to-end recommendation latency in milliseconds, collaborators included",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.playlistLength = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "playlist_length",
		Help:        "Number of tracks in served playlists",
		Buckets:     []float64{1, 5, 10, 20, 30, 50, 75, 100},
		ConstLabels: labels,
	})

	m.targetValence = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "target_valence",
		Help:        "Distribution of derived target valence",
		Buckets:     unitBuckets,
		ConstLabels: labels,
	})

	m.targetEnergy = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "target_energy",
		Help:        "Distribution of derived target energy",
		Buckets:     unitBuckets,
		ConstLabels: labels,
	})

	m.catalogSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "catalog_size",
		Help:        "Number of candidate tracks in the last catalog fetch",
		ConstLabels: labels,
	})

	m.stageFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_failures_total",
		Help:        "Recommendation requests aborted, by failing stage",
		ConstLabels: labels,
	}, []string{"stage"})

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_requests_total",
		Help:        "Outbound collaborator calls by outcome",
		ConstLabels: labels,
	}, []string{"collaborator", "outcome"})

	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_latency_milliseconds",
		Help:        "Outbound collaborator call latency in milliseconds, retries included",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"collaborator"})

	m.upstreamRetries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_retries_total",
		Help:        "Outbound collaborator retry attempts",
		ConstLabels: labels,
	}, []string{"collaborator"})

	m.breakerState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "circuit_breaker_state",
		Help:        "Circuit breaker state per collaborator (0 closed, 1 half-open, 2 open)",
		ConstLabels: labels,
	}, []string{"collaborator"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_type_total",
		Help:        "Total number of errors by type",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "Total number of errors by endpoint",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
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

// Business Metrics Functions.

// RecordRecommendation counts a served playlist and its shape.
func RecordRecommendation(moodRule string, adverseWeather bool, valence, energy float64, tracks int) {
	weather := "fair"
	if adverseWeather {
		weather = "adverse"
	}
	globalManager.recommendations.WithLabelValues(moodRule, weather).Inc()
	globalManager.targetValence.Observe(valence)
	globalManager.targetEnergy.Observe(energy)
	globalManager.playlistLength.Observe(float64(tracks))
}

// RecordRecommendationLatency records end-to-end latency in milliseconds.
func RecordRecommendationLatency(latencyMs float64) {
	globalManager.recommendationLatency.Observe(latencyMs)
}

// UpdateCatalogSize sets the size of the last fetched catalog.
func UpdateCatalogSize(size int) {
	globalManager.catalogSize.Set(float64(size))
}

// RecordStageFailure counts a request aborted at stage.
func RecordStageFailure(stage string) {
	globalManager.stageFailures.WithLabelValues(stage).Inc()
}

// Collaborator Metrics Functions.

// RecordUpstreamRequest records one collaborator call, its outcome and latency.
func RecordUpstreamRequest(collaborator, outcome string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(collaborator, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(collaborator).Observe(latencyMs)
}

// RecordUpstreamRetry counts a retry toward collaborator.
func RecordUpstreamRetry(collaborator string) {
	globalManager.upstreamRetries.WithLabelValues(collaborator).Inc()
}

// UpdateBreakerState publishes a breaker state by its name
// ("closed", "half-open" or "open").
func UpdateBreakerState(collaborator, state string) error {
	var v float64
	switch state {
	case "closed":
		v = 0
	case "half-open":
		v = 1
	case "open":
		v = 2
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBreakerState, state)
	}
	globalManager.breakerState.WithLabelValues(collaborator).Set(v)
	return nil
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

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
