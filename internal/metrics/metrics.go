package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the dashboard pipeline.
// Each Metrics owns its registry so tests can construct as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	FetchesTotal    *prometheus.CounterVec // labels: kind (quote|history)
	FetchErrors     *prometheus.CounterVec // labels: kind, reason
	FetchDuration   prometheus.Histogram
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	SignalsComputed prometheus.Counter
	RefreshRuns     prometheus.Counter
}

// New registers and returns the pipeline metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchboard_fetches_total",
			Help: "Provider fetches issued",
		}, []string{"kind"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchboard_fetch_errors_total",
			Help: "Provider fetches that failed",
		}, []string{"kind", "reason"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "watchboard_fetch_duration_seconds",
			Help:    "Provider fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchboard_cache_hits_total",
			Help: "Cache lookups served without a producer call",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchboard_cache_misses_total",
			Help: "Cache lookups that invoked the producer",
		}),
		SignalsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchboard_signals_computed_total",
			Help: "Crossover signals derived from history series",
		}),
		RefreshRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchboard_refresh_runs_total",
			Help: "Background watchlist refresh passes",
		}),
	}
	reg.MustRegister(
		m.FetchesTotal,
		m.FetchErrors,
		m.FetchDuration,
		m.CacheHits,
		m.CacheMisses,
		m.SignalsComputed,
		m.RefreshRuns,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
