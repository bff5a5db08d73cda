// Package metrics provides Prometheus metrics for the pavilion league service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion metrics.
	ballsRecorded       prometheus.Counter
	ballsDuplicate      prometheus.Counter
	screenshotsRecorded prometheus.Counter

	// Aggregation metrics.
	rankingLatency  prometheus.Histogram
	matchLogLatency prometheus.Histogram

	// Store metrics.
	leagueQueryLatency  prometheus.Histogram
	logStoreLatency     prometheus.Histogram
	leagueQueryErrors   prometheus.Counter
	logStoreErrors      prometheus.Counter
	playersTracked      prometheus.Gauge
	logDocumentsTracked prometheus.Gauge

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System metrics.
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global manager on a private registry so the default Go collectors do not
// leak into scrape output.
var (
	globalManager  *Manager                  //nolint:gochecknoglobals // singleton metrics manager
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pavilion",
		subsystem:        "league",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.register()
	return m
}

func (m *Manager) register() {
	auto := promauto.With(m.registry)

	m.ballsRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "balls_recorded_total",
		Help:      "Total number of ball events recorded",
	})
	m.ballsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "balls_duplicate_total",
		Help:      "Total number of duplicate ball events rejected by the deduper",
	})
	m.screenshotsRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "screenshots_recorded_total",
		Help:      "Total number of screenshot log documents recorded",
	})

	m.rankingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_latency_milliseconds",
		Help:      "Histogram of leaderboard aggregation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.matchLogLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_log_latency_milliseconds",
		Help:      "Histogram of match log aggregation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leagueQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "league_query_latency_milliseconds",
		Help:      "Histogram of relational store query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.logStoreLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "log_store_latency_milliseconds",
		Help:      "Histogram of log document store latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.leagueQueryErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "league_query_errors_total",
		Help:      "Total number of relational store failures",
	})
	m.logStoreErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "log_store_errors_total",
		Help:      "Total number of log document store failures",
	})
	m.playersTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_tracked",
		Help:      "Number of players with at least one score row",
	})
	m.logDocumentsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "log_documents_tracked",
		Help:      "Number of log documents in the document store",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of error responses by endpoint and class",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current heap allocation in bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})
}

// Package-level helpers operating on the global manager.

func RecordBallEvent()                 { globalManager.ballsRecorded.Inc() }
func RecordBallDuplicate()             { globalManager.ballsDuplicate.Inc() }
func RecordScreenshot()                { globalManager.screenshotsRecorded.Inc() }
func RecordRankingLatency(ms float64)  { globalManager.rankingLatency.Observe(ms) }
func RecordMatchLogLatency(ms float64) { globalManager.matchLogLatency.Observe(ms) }

func RecordLeagueQueryLatency(ms float64) { globalManager.leagueQueryLatency.Observe(ms) }
func RecordLogStoreLatency(ms float64)    { globalManager.logStoreLatency.Observe(ms) }
func RecordLeagueQueryError()             { globalManager.leagueQueryErrors.Inc() }
func RecordLogStoreError()                { globalManager.logStoreErrors.Inc() }
func UpdatePlayersTracked(n int)          { globalManager.playersTracked.Set(float64(n)) }
func UpdateLogDocumentsTracked(n int)     { globalManager.logDocumentsTracked.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(n int)     { globalManager.systemGoroutineCount.Set(float64(n)) }

// GetRegistry returns the private registry for the /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
