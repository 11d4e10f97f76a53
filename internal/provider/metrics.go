package provider

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricProviderFetchTotal    = "provider_fetch_total"
	MetricProviderFetchDuration = "provider_fetch_duration_seconds"
	MetricProviderItems         = "provider_items_total"
	MetricLiveCacheRequests     = "live_cache_requests_total"
)

// Fetch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics contains Prometheus metrics for live provider fetches.
type Metrics struct {
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	items         *prometheus.CounterVec
	cacheRequests *prometheus.CounterVec
}

// NewMetrics creates provider metrics. Call Register to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricProviderFetchTotal,
				Help: "Total number of live provider fetches by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricProviderFetchDuration,
				Help:    "Live provider fetch duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricProviderItems,
				Help: "Total number of articles returned by live providers",
			},
			[]string{"provider"},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricLiveCacheRequests,
				Help: "Live result cache lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.fetchTotal,
		m.fetchDuration,
		m.items,
		m.cacheRequests,
	}
}

// ObserveFetch records the outcome of a single provider fetch.
func (m *Metrics) ObserveFetch(provider, outcome string, seconds float64, items int) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(provider, outcome).Inc()
	m.fetchDuration.WithLabelValues(provider).Observe(seconds)
	m.items.WithLabelValues(provider).Add(float64(items))
}

// IncCache records a cache lookup result.
func (m *Metrics) IncCache(result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}
