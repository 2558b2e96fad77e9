package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Cache metrics
	CacheHitsTotal         *prometheus.CounterVec
	CacheMissesTotal       *prometheus.CounterVec
	CacheOperationDuration *prometheus.HistogramVec
	CacheInvalidations     *prometheus.CounterVec

	RateLimitExceededTotal *prometheus.CounterVec

	// Domain metrics
	InteractionsTotal        *prometheus.CounterVec
	NotificationsTotal       *prometheus.CounterVec
	BroadcastsTotal          *prometheus.CounterVec
	BroadcastRecipientsTotal *prometheus.CounterVec
	BroadcastDuration        prometheus.Histogram

	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			CacheHitsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),
			CacheOperationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "cache_operation_duration_seconds",
					Help:    "Cache operation latency in seconds",
					Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
				},
				[]string{"operation", "cache_name"},
			),
			CacheInvalidations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_invalidated_keys_total",
					Help: "Total number of cached responses dropped after mutations",
				},
				[]string{"cache_name"},
			),

			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"endpoint", "method"},
			),

			InteractionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cardfeed_interactions_total",
					Help: "Post interactions by action (like, unlike, comment, share)",
				},
				[]string{"action"},
			),
			NotificationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cardfeed_notifications_total",
					Help: "Notification creation attempts by type and result",
				},
				[]string{"type", "result"},
			),
			BroadcastsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cardfeed_broadcasts_total",
					Help: "Admin broadcasts by final status",
				},
				[]string{"status"},
			),
			BroadcastRecipientsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cardfeed_broadcast_recipients_total",
					Help: "Broadcast deliveries by result",
				},
				[]string{"result"},
			),
			BroadcastDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "cardfeed_broadcast_duration_seconds",
					Help:    "Time to fan out one broadcast",
					Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
				},
			),

			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Initialize()
}

func RecordCacheHit(cacheName string) {
	Get().CacheHitsTotal.WithLabelValues(cacheName).Inc()
}

func RecordCacheMiss(cacheName string) {
	Get().CacheMissesTotal.WithLabelValues(cacheName).Inc()
}

func RecordCacheOperation(operation, cacheName string, duration time.Duration) {
	Get().CacheOperationDuration.WithLabelValues(operation, cacheName).Observe(duration.Seconds())
}

func RecordCacheInvalidation(cacheName string, keys int) {
	Get().CacheInvalidations.WithLabelValues(cacheName).Add(float64(keys))
}

func RecordRateLimitExceeded(endpoint, method string) {
	Get().RateLimitExceededTotal.WithLabelValues(endpoint, method).Inc()
}

// RecordInteraction counts like, unlike, comment and share actions
func RecordInteraction(action string) {
	Get().InteractionsTotal.WithLabelValues(action).Inc()
}

// RecordNotification counts notification inserts; result is created, skipped_self or failed
func RecordNotification(notificationType, result string) {
	Get().NotificationsTotal.WithLabelValues(notificationType, result).Inc()
}

// RecordBroadcast records one finished broadcast
func RecordBroadcast(status string, delivered, failed int, duration time.Duration) {
	m := Get()
	m.BroadcastsTotal.WithLabelValues(status).Inc()
	m.BroadcastRecipientsTotal.WithLabelValues("delivered").Add(float64(delivered))
	m.BroadcastRecipientsTotal.WithLabelValues("failed").Add(float64(failed))
	m.BroadcastDuration.Observe(duration.Seconds())
}

func RecordError(errorType, endpoint string) {
	Get().ErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}
