package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup outcomes.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupStale = "stale"
)

// Metrics holds the collectors for the historical series pipeline. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	CacheLookupsTotal    *prometheus.CounterVec
	HistoricalFetches    *prometheus.CounterVec
	StorageFailuresTotal prometheus.Counter
	SeriesRequestsTotal  prometheus.Counter
	SeriesBuildDuration  prometheus.Histogram
	ConversionsTotal     prometheus.Counter
}

// NewMetrics registers the collectors with reg. Pass prometheus.NewRegistry()
// in tests to keep registrations isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxtrend_cache_lookups_total",
				Help: "Historical rate cache lookups by outcome",
			},
			[]string{"result"},
		),

		HistoricalFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxtrend_historical_fetches_total",
				Help: "Per-date historical rate fetches by outcome",
			},
			[]string{"outcome"},
		),

		StorageFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fxtrend_cache_storage_failures_total",
				Help: "Cache writes that failed to persist",
			},
		),

		SeriesRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fxtrend_series_requests_total",
				Help: "Total number of historical series requests",
			},
		),

		SeriesBuildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fxtrend_series_build_duration_seconds",
				Help:    "Time spent assembling a historical series",
				Buckets: prometheus.DefBuckets,
			},
		),

		ConversionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fxtrend_conversions_total",
				Help: "Total number of currency conversions",
			},
		),
	}
}

// CacheLookup records a cache lookup outcome.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// Fetch records a per-date fetch outcome.
func (m *Metrics) Fetch(ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.HistoricalFetches.WithLabelValues(outcome).Inc()
}

// StorageFailure records a failed cache write.
func (m *Metrics) StorageFailure() {
	if m == nil {
		return
	}
	m.StorageFailuresTotal.Inc()
}

// SeriesBuilt records one series request and how long it took.
func (m *Metrics) SeriesBuilt(seconds float64) {
	if m == nil {
		return
	}
	m.SeriesRequestsTotal.Inc()
	m.SeriesBuildDuration.Observe(seconds)
}

// Conversion records a completed conversion.
func (m *Metrics) Conversion() {
	if m == nil {
		return
	}
	m.ConversionsTotal.Inc()
}
