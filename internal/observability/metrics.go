package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the pipeline. All record methods
// are safe to call on a nil *Metrics.
type Metrics struct {
	PriceFetchTotal    *prometheus.CounterVec
	PriceBars          *prometheus.GaugeVec
	UpstreamDuration   *prometheus.HistogramVec
	HeadlineFetchTotal *prometheus.CounterVec
	HeadlinesReturned  prometheus.Histogram
	SentimentScores    *prometheus.HistogramVec
	CacheWritesTotal   *prometheus.CounterVec
	RefreshRunsTotal   *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// compound scores live in [-1, 1]
var compoundBuckets = []float64{-1, -0.75, -0.5, -0.25, -0.05, 0.05, 0.25, 0.5, 0.75, 1}

const namespace = "finsent"

// NewMetrics creates and registers all collectors on reg (the default registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		PriceFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "prices",
				Name:      "fetch_total",
				Help:      "Price history fetches by data source and outcome",
			},
			[]string{"source", "outcome"},
		),
		PriceBars: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "prices",
				Name:      "bars",
				Help:      "Number of bars in the latest successful fetch",
			},
			[]string{"ticker"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "duration_seconds",
				Help:      "Duration of upstream provider calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service"},
		),
		HeadlineFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "news",
				Name:      "fetch_total",
				Help:      "Headline feed fetches by outcome",
			},
			[]string{"outcome"},
		),
		HeadlinesReturned: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "news",
				Name:      "headlines_returned",
				Help:      "Headlines returned per fetch",
				Buckets:   prometheus.LinearBuckets(0, 5, 11),
			},
		),
		SentimentScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "sentiment",
				Name:      "ticker_score",
				Help:      "Distribution of per-ticker average compound scores",
				Buckets:   compoundBuckets,
			},
			[]string{"ticker"},
		),
		CacheWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "writes_total",
				Help:      "Cache file writes by outcome",
			},
			[]string{"outcome"},
		),
		RefreshRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "refresh_runs_total",
				Help:      "Watchlist refresh runs by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}
}

// RecordPriceFetch records a price fetch outcome ("ok", "no_data", "invalid").
func (m *Metrics) RecordPriceFetch(source, outcome string) {
	if m == nil {
		return
	}
	m.PriceFetchTotal.WithLabelValues(source, outcome).Inc()
}

// SetPriceBars records the bar count of the latest series for ticker.
func (m *Metrics) SetPriceBars(ticker string, n int) {
	if m == nil {
		return
	}
	m.PriceBars.WithLabelValues(ticker).Set(float64(n))
}

// RecordUpstream records the duration of one upstream call.
func (m *Metrics) RecordUpstream(service string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(service).Observe(d.Seconds())
}

// RecordHeadlineFetch records a feed fetch outcome and how many headlines it produced.
func (m *Metrics) RecordHeadlineFetch(outcome string, n int) {
	if m == nil {
		return
	}
	m.HeadlineFetchTotal.WithLabelValues(outcome).Inc()
	m.HeadlinesReturned.Observe(float64(n))
}

// RecordSentiment records a per-ticker average compound score.
func (m *Metrics) RecordSentiment(ticker string, score float64) {
	if m == nil {
		return
	}
	m.SentimentScores.WithLabelValues(ticker).Observe(score)
}

// RecordCacheWrite records a cache write outcome.
func (m *Metrics) RecordCacheWrite(outcome string) {
	if m == nil {
		return
	}
	m.CacheWritesTotal.WithLabelValues(outcome).Inc()
}

// RecordRefresh records a scheduled refresh outcome.
func (m *Metrics) RecordRefresh(outcome string) {
	if m == nil {
		return
	}
	m.RefreshRunsTotal.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetCircuitBreakerState sets the current state of a circuit breaker.
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip.
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	if m == nil {
		return
	}
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}
