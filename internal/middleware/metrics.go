package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names exported for tests and dashboards.
const (
	MetricRateLimitRequests     = "rate_limit_requests_total"
	MetricRateLimitBlocked      = "rate_limit_blocked_total"
	MetricRateLimitRedisErrors  = "rate_limit_redis_errors_total"
	MetricHTTPRequestDuration   = "http_request_duration_seconds"
	MetricHTTPRequestsTotal     = "http_requests_total"
	MetricHTTPRequestSizeBytes  = "http_request_size_bytes"
	MetricHTTPResponseSizeBytes = "http_response_size_bytes"
	MetricIdempotencyRequests   = "idempotency_requests_total"
)

// Idempotency outcomes.
const (
	IdempotencyStored   = "stored"
	IdempotencyReplayed = "replayed"
	IdempotencyConflict = "conflict"
)

var (
	httpLabels      = []string{"method", "path", "status"}
	rateLimitLabels = []string{"endpoint", "key_type"}

	// 100 B to ~1 GB.
	sizeBuckets = prometheus.ExponentialBuckets(100, 10, 8)
	// Live fetches dominate the slow end.
	durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
)

// Metrics holds the Prometheus collectors of the HTTP middleware.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	rateLimitRequests    *prometheus.CounterVec
	rateLimitBlocked     *prometheus.CounterVec
	rateLimitRedisErrors prometheus.Counter
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestSize      *prometheus.HistogramVec
	httpResponseSize     *prometheus.HistogramVec
	idempotencyRequests  *prometheus.CounterVec
}

func counterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
}

func histogramVec(name, help string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, httpLabels)
}

// NewMetrics creates unregistered collectors; call Register to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		rateLimitRequests: counterVec(MetricRateLimitRequests,
			"Rate limit checks by endpoint scope and key type", rateLimitLabels),
		rateLimitBlocked: counterVec(MetricRateLimitBlocked,
			"Requests rejected with 429 by endpoint scope and key type", rateLimitLabels),
		rateLimitRedisErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRateLimitRedisErrors,
			Help: "Redis failures during rate limiting; each one let the request through",
		}),
		httpRequestDuration: histogramVec(MetricHTTPRequestDuration, "HTTP request duration in seconds", durationBuckets),
		httpRequestsTotal:   counterVec(MetricHTTPRequestsTotal, "HTTP requests served", httpLabels),
		httpRequestSize:     histogramVec(MetricHTTPRequestSizeBytes, "HTTP request body size in bytes", sizeBuckets),
		httpResponseSize:    histogramVec(MetricHTTPResponseSizeBytes, "HTTP response body size in bytes", sizeBuckets),
		idempotencyRequests: counterVec(MetricIdempotencyRequests,
			"Requests carrying an Idempotency-Key by outcome", []string{"outcome"}),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncRateLimitRequests counts a rate limit check. keyType is "user" or "ip".
func (m *Metrics) IncRateLimitRequests(endpoint, keyType string) {
	if m != nil {
		m.rateLimitRequests.WithLabelValues(endpoint, keyType).Inc()
	}
}

// IncRateLimitBlocked counts a request rejected with 429.
func (m *Metrics) IncRateLimitBlocked(endpoint, keyType string) {
	if m != nil {
		m.rateLimitBlocked.WithLabelValues(endpoint, keyType).Inc()
	}
}

// IncRateLimitRedisErrors counts fail-open events.
func (m *Metrics) IncRateLimitRedisErrors() {
	if m != nil {
		m.rateLimitRedisErrors.Inc()
	}
}

// IncIdempotency counts a keyed request by outcome.
func (m *Metrics) IncIdempotency(outcome string) {
	if m != nil {
		m.idempotencyRequests.WithLabelValues(outcome).Inc()
	}
}

// ObserveHTTPRequest records one request. path must already be normalized.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration float64, requestSize, responseSize int64) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "path": path, "status": status}
	m.httpRequestDuration.With(labels).Observe(duration)
	m.httpRequestsTotal.With(labels).Inc()
	m.httpRequestSize.With(labels).Observe(float64(requestSize))
	m.httpResponseSize.With(labels).Observe(float64(responseSize))
}

// Collectors returns every collector owned by m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rateLimitRequests,
		m.rateLimitBlocked,
		m.rateLimitRedisErrors,
		m.httpRequestDuration,
		m.httpRequestsTotal,
		m.httpRequestSize,
		m.httpResponseSize,
		m.idempotencyRequests,
	}
}
