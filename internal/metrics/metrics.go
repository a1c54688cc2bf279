// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns its own prometheus.Registry so tests can create as many as
// they like without clashing on the default registerer.
type Registry struct {
	reg *prometheus.Registry

	RateLimitDecisions *prometheus.CounterVec
	UpstreamRequests   *prometheus.CounterVec
	UpstreamDuration   *prometheus.HistogramVec
	CacheLookups       *prometheus.CounterVec
	Comparisons        *prometheus.CounterVec
}

func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RateLimitDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopcompare_rate_limit_decisions_total",
				Help: "Rate limiter decisions by caller class and outcome",
			},
			[]string{"class", "outcome"},
		),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopcompare_upstream_requests_total",
				Help: "Catalog API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shopcompare_upstream_duration_seconds",
				Help:    "Catalog API request latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
			},
			[]string{"endpoint"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopcompare_cache_lookups_total",
				Help: "Catalog cache lookups by kind and result",
			},
			[]string{"kind", "result"},
		),
		Comparisons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopcompare_comparisons_total",
				Help: "Comparison requests by outcome",
			},
			[]string{"outcome"},
		),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RateLimitDecisions,
		r.UpstreamRequests,
		r.UpstreamDuration,
		r.CacheLookups,
		r.Comparisons,
	)
	return r
}

func (r *Registry) ObserveDecision(class, outcome string) {
	r.RateLimitDecisions.WithLabelValues(class, outcome).Inc()
}

func (r *Registry) ObserveUpstream(endpoint, outcome string, elapsed time.Duration) {
	r.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	r.UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (r *Registry) ObserveCache(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheLookups.WithLabelValues(kind, result).Inc()
}

func (r *Registry) ObserveComparison(outcome string) {
	r.Comparisons.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
