package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the CryptoWatcher API
var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_watcher_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crypto_watcher_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crypto_watcher_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	HTTPPanicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crypto_watcher_http_panics_recovered_total",
			Help: "Total number of handler panics turned into 500 responses",
		},
	)

	// External API Metrics
	ExternalAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_watcher_external_api_requests_total",
			Help: "Total number of external API requests",
		},
		[]string{"service", "endpoint", "status_code"},
	)

	ExternalAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crypto_watcher_external_api_request_duration_seconds",
			Help:    "External API request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"service", "endpoint"},
	)

	// Coin detail memo metrics
	DetailMemoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_watcher_detail_memo_lookups_total",
			Help: "Coin detail lookups by memo result",
		},
		[]string{"result"}, // result: hit/miss/shared/error/abandoned
	)

	DetailMemoEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crypto_watcher_detail_memo_entries",
			Help: "Number of coin details currently memoized",
		},
	)

	// Snapshot store metrics
	SnapshotOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_watcher_snapshot_operations_total",
			Help: "Total number of snapshot store operations",
		},
		[]string{"backend", "operation", "result"}, // operation: get/set, result: hit/miss/success/error
	)

	// Refresh task metrics
	MarketRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_watcher_market_refreshes_total",
			Help: "Total number of market refresh ticks",
		},
		[]string{"result"}, // result: success/error
	)

	SnapshotMarkets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crypto_watcher_snapshot_markets",
			Help: "Number of markets in the latest snapshot",
		},
	)

	SnapshotLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crypto_watcher_snapshot_last_success_timestamp_seconds",
			Help: "Unix time of the last successful market refresh",
		},
	)

	RefreshTaskRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crypto_watcher_refresh_task_running",
			Help: "Whether the background refresh task is running (1) or not (0)",
		},
	)

	// Session metrics
	UpstreamSessionOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crypto_watcher_upstream_session_open",
			Help: "Whether the upstream client session is open (1) or closed (0)",
		},
	)

	// Rate Limiting Metrics
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_watcher_rate_limit_requests_total",
			Help: "Total number of requests processed by rate limiter",
		},
		[]string{"result"}, // result: allowed/blocked
	)

	RateLimitTokensRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crypto_watcher_rate_limit_tokens_remaining",
			Help: "Number of tokens remaining in rate limiter buckets",
		},
		[]string{"client_id"},
	)

	// WebSocket Metrics
	StreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crypto_watcher_stream_clients",
			Help: "Connected snapshot stream clients",
		},
	)

	StreamDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crypto_watcher_stream_drops_total",
			Help: "Snapshots dropped because a stream client was too slow",
		},
	)

	// Application Metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crypto_watcher_application_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, duration float64, responseSize int64) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)

	if responseSize > 0 {
		HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordPanicRecovered counts a recovered handler panic
func RecordPanicRecovered() {
	HTTPPanicsRecovered.Inc()
}

// RecordExternalAPICall records external API call metrics
func RecordExternalAPICall(service, endpoint string, statusCode int, duration float64) {
	ExternalAPIRequestsTotal.WithLabelValues(service, endpoint, strconv.Itoa(statusCode)).Inc()
	ExternalAPIRequestDuration.WithLabelValues(service, endpoint).Observe(duration)
}

// RecordDetailMemoLookup records a coin detail memo lookup
func RecordDetailMemoLookup(result string) {
	DetailMemoLookups.WithLabelValues(result).Inc()
}

// UpdateDetailMemoEntries sets the memo size gauge
func UpdateDetailMemoEntries(n int) {
	DetailMemoEntries.Set(float64(n))
}

// RecordSnapshotOperation records snapshot store operation metrics
func RecordSnapshotOperation(backend, operation, result string) {
	SnapshotOperationsTotal.WithLabelValues(backend, operation, result).Inc()
}

// RecordMarketRefresh records the outcome of one refresh tick
func RecordMarketRefresh(success bool, markets int, unixTime float64) {
	if !success {
		MarketRefreshesTotal.WithLabelValues("error").Inc()
		return
	}
	MarketRefreshesTotal.WithLabelValues("success").Inc()
	SnapshotMarkets.Set(float64(markets))
	SnapshotLastSuccess.Set(unixTime)
}

// SetRefreshTaskRunning updates the refresh task gauge
func SetRefreshTaskRunning(running bool) {
	RefreshTaskRunning.Set(boolToFloat(running))
}

// SetUpstreamSessionOpen updates the session gauge
func SetUpstreamSessionOpen(open bool) {
	UpstreamSessionOpen.Set(boolToFloat(open))
}

// RecordRateLimitResult records rate limiting results
func RecordRateLimitResult(allowed bool) {
	result := "blocked"
	if allowed {
		result = "allowed"
	}
	RateLimitRequestsTotal.WithLabelValues(result).Inc()
}

// UpdateRateLimitTokens updates remaining tokens gauge
func UpdateRateLimitTokens(clientID string, tokens float64) {
	RateLimitTokensRemaining.WithLabelValues(clientID).Set(tokens)
}

// UpdateStreamClients sets the connected stream clients gauge
func UpdateStreamClients(n int) {
	StreamClients.Set(float64(n))
}

// RecordStreamDrop incrementa contador de descartes por canal lleno
func RecordStreamDrop() {
	StreamDrops.Inc()
}

// SetApplicationInfo sets application information
func SetApplicationInfo(version, goVersion string) {
	ApplicationInfo.WithLabelValues(version, goVersion).Set(1)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
