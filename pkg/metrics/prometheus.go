// Package metrics provides Prometheus metrics for the FitRate arena service.
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

// Manager manages all Prometheus metrics for the arena service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - What really matters for matchmaking
	queueJoins       *prometheus.CounterVec
	queueLeaves      prometheus.Counter
	matchesCreated   *prometheus.CounterVec
	pollResults      *prometheus.CounterVec
	matchWaitSeconds prometheus.Histogram

	// Ghost Pool Metrics
	ghostsServed      prometheus.Counter
	ghostsSynthesized prometheus.Counter
	ghostPoolSize     prometheus.Gauge

	// Leaderboard Metrics
	leaderboardUpdates prometheus.Counter
	leaderboardErrors  prometheus.Counter

	// War Metrics
	warJoins         *prometheus.CounterVec
	warContributions *prometheus.CounterVec
	warPoints        *prometheus.CounterVec

	// Operational Health Metrics
	queueDepth   *prometheus.GaugeVec
	onlineUsers  prometheus.Gauge
	matchesToday prometheus.Gauge

	// Store Metrics - Key-value store health
	storeFallbacks *prometheus.CounterVec
	storeLatency   prometheus.Histogram

	// Ingest Metrics - Snapshot queue performance
	ingestCapacity    prometheus.Gauge
	ingestDepth       prometheus.Gauge
	ingestUtilization prometheus.Gauge
	ingestEnqueued    prometheus.Counter
	ingestDequeued    prometheus.Counter
	ingestDropped     prometheus.Counter
	ingestLatency     prometheus.Histogram

	// Worker Metrics - Ingest processing performance
	workerActiveCount prometheus.Gauge
	workerIdleCount   prometheus.Gauge
	workerErrorRate   prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec

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
		namespace:        "fitrate",
		subsystem:        "arena",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics - Focus on what drives business value
	m.queueJoins = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "queue_joins_total",
			Help:      "Total number of queue joins by mode",
		},
		[]string{"mode"},
	)

	m.queueLeaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_leaves_total",
		Help:      "Total number of explicit queue leaves",
	})

	m.matchesCreated = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "matches_created_total",
			Help:      "Total number of matches created by kind (live or ghost)",
		},
		[]string{"kind"},
	)

	m.pollResults = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "poll_results_total",
			Help:      "Total number of poll responses by result status",
		},
		[]string{"result"},
	)

	m.matchWaitSeconds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_wait_seconds",
		Help:      "Histogram of time waited in queue before a match was made",
		Buckets:   []float64{1, 2, 5, 10, 20, 30, 45, 60, 90},
	})

	// Ghost Pool Metrics - Fallback opponent supply
	m.ghostsServed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ghosts_served_total",
		Help:      "Total number of ghost opponents served from the pool",
	})

	m.ghostsSynthesized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ghosts_synthesized_total",
		Help:      "Total number of synthetic opponents generated for an empty pool",
	})

	m.ghostPoolSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ghost_pool_size",
		Help:      "Current number of entries in the ghost pool",
	})

	// Leaderboard Metrics
	m.leaderboardUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_updates_total",
		Help:      "Total number of weekly leaderboard score increments",
	})

	m.leaderboardErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_errors_total",
		Help:      "Total number of leaderboard update errors (business impact)",
	})

	// War Metrics - Alliance minigame activity
	m.warJoins = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "war_joins_total",
			Help:      "Total number of alliance joins by alliance",
		},
		[]string{"alliance"},
	)

	m.warContributions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "war_contributions_total",
			Help:      "Total number of war contributions by alliance",
		},
		[]string{"alliance"},
	)

	m.warPoints = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "war_points_total",
			Help:      "Total weighted war points awarded by alliance",
		},
		[]string{"alliance"},
	)

	// Operational Health Metrics - System stability indicators
	m.queueDepth = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "queue_depth",
			Help:      "Current number of waiting users per mode queue",
		},
		[]string{"mode"},
	)

	m.onlineUsers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "online_users",
		Help:      "Current online counter value (social proof floor not applied)",
	})

	m.matchesToday = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_today",
		Help:      "Completed matches so far today",
	})

	// Store Metrics - Key-value store health
	m.storeFallbacks = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_fallbacks_total",
			Help:      "Total number of store operations served by the in-memory fallback",
		},
		[]string{"op"},
	)

	m.storeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Key-value store operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Ingest Metrics - Snapshot queue performance
	m.ingestCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_capacity",
		Help:      "Maximum snapshot queue capacity",
	})

	m.ingestDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_depth",
		Help:      "Current size of the snapshot queue (backlog indicator)",
	})

	m.ingestUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_utilization_ratio",
		Help:      "Snapshot queue utilization ratio (current size / capacity)",
	})

	m.ingestEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_enqueue_total",
		Help:      "Total number of snapshots enqueued",
	})

	m.ingestDequeued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_dequeue_total",
		Help:      "Total number of snapshots dequeued",
	})

	m.ingestDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_dropped_total",
		Help:      "Total number of snapshots dropped because the queue was full",
	})

	m.ingestLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_latency_milliseconds",
		Help:      "Snapshot ingest processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Worker Metrics - Ingest processing performance
	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active ingest workers",
	})

	m.workerIdleCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_idle_count",
		Help:      "Number of idle ingest workers",
	})

	m.workerErrorRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of ingest worker errors",
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordQueueJoin increments the queue join counter for a mode.
func RecordQueueJoin(mode string) {
	globalManager.queueJoins.WithLabelValues(mode).Inc()
}

// RecordQueueLeave increments the explicit leave counter.
func RecordQueueLeave() {
	globalManager.queueLeaves.Inc()
}

// RecordMatch increments the matches created counter for a kind (live or ghost).
func RecordMatch(kind string) {
	globalManager.matchesCreated.WithLabelValues(kind).Inc()
}

// RecordPollResult increments the poll result counter for a status.
func RecordPollResult(result string) {
	globalManager.pollResults.WithLabelValues(result).Inc()
}

// RecordMatchWaitSeconds records how long a user waited before matching.
func RecordMatchWaitSeconds(seconds float64) {
	globalManager.matchWaitSeconds.Observe(seconds)
}

// RecordGhostServed increments the ghosts served counter.
func RecordGhostServed() {
	globalManager.ghostsServed.Inc()
}

// RecordGhostSynthesized increments the synthetic ghost counter.
func RecordGhostSynthesized() {
	globalManager.ghostsSynthesized.Inc()
}

// UpdateGhostPoolSize sets the current ghost pool size.
func UpdateGhostPoolSize(size int) {
	globalManager.ghostPoolSize.Set(float64(size))
}

// RecordLeaderboardUpdate increments the leaderboard updates counter.
func RecordLeaderboardUpdate() {
	globalManager.leaderboardUpdates.Inc()
}

// RecordLeaderboardError increments the leaderboard errors counter.
func RecordLeaderboardError() {
	globalManager.leaderboardErrors.Inc()
}

// RecordWarJoin increments the alliance join counter.
func RecordWarJoin(alliance string) {
	globalManager.warJoins.WithLabelValues(alliance).Inc()
}

// RecordWarContribution increments the contribution counter and adds the
// weighted points for an alliance.
func RecordWarContribution(alliance string, points float64) {
	globalManager.warContributions.WithLabelValues(alliance).Inc()
	globalManager.warPoints.WithLabelValues(alliance).Add(points)
}

// UpdateQueueDepth sets the waiting-user count for a mode queue.
func UpdateQueueDepth(mode string, depth int) {
	globalManager.queueDepth.WithLabelValues(mode).Set(float64(depth))
}

// UpdateOnlineUsers sets the online counter gauge.
func UpdateOnlineUsers(count int) {
	globalManager.onlineUsers.Set(float64(count))
}

// UpdateMatchesToday sets the completed-matches-today gauge.
func UpdateMatchesToday(count int) {
	globalManager.matchesToday.Set(float64(count))
}

// RecordStoreFallback increments the fallback counter for a store operation.
func RecordStoreFallback(op string) {
	globalManager.storeFallbacks.WithLabelValues(op).Inc()
}

// RecordStoreLatency records key-value store operation latency.
func RecordStoreLatency(latencyMs float64) {
	globalManager.storeLatency.Observe(latencyMs)
}

// Ingest Metrics Functions.

// UpdateIngestCapacity sets the maximum snapshot queue capacity.
func UpdateIngestCapacity(capacity int) {
	globalManager.ingestCapacity.Set(float64(capacity))
}

// UpdateIngestDepth sets the current snapshot queue size.
func UpdateIngestDepth(size int) {
	globalManager.ingestDepth.Set(float64(size))
}

// UpdateIngestUtilization sets the snapshot queue utilization ratio.
func UpdateIngestUtilization(utilization float64) {
	globalManager.ingestUtilization.Set(utilization)
}

// RecordIngestEnqueue increments the enqueue counter.
func RecordIngestEnqueue() {
	globalManager.ingestEnqueued.Inc()
}

// RecordIngestDequeue increments the dequeue counter.
func RecordIngestDequeue() {
	globalManager.ingestDequeued.Inc()
}

// RecordIngestDrop increments the dropped-snapshot counter.
func RecordIngestDrop() {
	globalManager.ingestDropped.Inc()
}

// RecordIngestLatency records snapshot processing latency.
func RecordIngestLatency(latencyMs float64) {
	globalManager.ingestLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active ingest workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle ingest workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerError increments the ingest worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
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

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
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
