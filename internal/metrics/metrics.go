// Package metrics exposes Prometheus collectors for faceted fetches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "facets"

// FetchMetrics tracks fetch activity per model.
//
// Metrics:
//   - facets_fetches_total: Completed fetches by model
//   - facets_fetch_errors_total: Failed fetches by model
//   - facets_fetch_duration_seconds: Fetch duration histogram
//   - facets_records_returned: Records per fetch histogram
//   - facets_query_words_total: Query string words by model and state
//
// A nil *FetchMetrics records nothing.
type FetchMetrics struct {
	fetchesTotal   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	recordsPerPage *prometheus.HistogramVec
	wordsTotal     *prometheus.CounterVec
}

// Word states for facets_query_words_total.
const (
	WordMatched   = "matched"
	WordRemaining = "remaining"
)

// NewFetchMetrics creates fetch metrics and registers them with registry.
// A nil registry gets a fresh one.
func NewFetchMetrics(registry *prometheus.Registry) *FetchMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &FetchMetrics{
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "fetches_total",
				Help:      "Total number of completed fetches",
			},
			[]string{"model"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "fetch_errors_total",
				Help:      "Total number of failed fetches",
			},
			[]string{"model"},
		),

		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of fetches in seconds, count and select included",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"model"},
		),

		recordsPerPage: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "records_returned",
				Help:      "Number of records returned per fetch",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 6), // 1 to 1024
			},
			[]string{"model"},
		),

		wordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "query_words_total",
				Help:      "Query string words seen, by whether a criterion claimed them",
			},
			[]string{"model", "state"},
		),
	}

	registry.MustRegister(
		m.fetchesTotal,
		m.errorsTotal,
		m.fetchDuration,
		m.recordsPerPage,
		m.wordsTotal,
	)

	return m
}

// ObserveFetch records a completed fetch.
func (m *FetchMetrics) ObserveFetch(model string, duration time.Duration, records int) {
	if m == nil {
		return
	}
	m.fetchesTotal.WithLabelValues(model).Inc()
	m.fetchDuration.WithLabelValues(model).Observe(duration.Seconds())
	m.recordsPerPage.WithLabelValues(model).Observe(float64(records))
}

// FetchFailed records a failed fetch.
func (m *FetchMetrics) FetchFailed(model string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(model).Inc()
}

// ObserveWords records how many query string words were claimed.
func (m *FetchMetrics) ObserveWords(model string, matched, remaining int) {
	if m == nil {
		return
	}
	if matched > 0 {
		m.wordsTotal.WithLabelValues(model, WordMatched).Add(float64(matched))
	}
	if remaining > 0 {
		m.wordsTotal.WithLabelValues(model, WordRemaining).Add(float64(remaining))
	}
}
