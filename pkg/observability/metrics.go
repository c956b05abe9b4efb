// Package observability exposes the service's Prometheus metrics. A single
// Metrics value is created at startup and threaded to the layers that feed
// it; the collectors use a dedicated registry so tests can create metrics
// without duplicate-registration panics.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector the service registers.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	StoreErrors *prometheus.CounterVec

	GraphEntities      prometheus.Gauge
	GraphRelationships prometheus.Gauge
	TrailsTracked      prometheus.Gauge
}

// NewMetrics creates and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := func(c prometheus.Collector) {
		registry.MustRegister(c)
	}

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memgate_requests_total",
				Help: "HTTP requests processed, by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "memgate_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memgate_cache_hits_total",
				Help: "Query cache hits, by project scope",
			},
			[]string{"project"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memgate_cache_misses_total",
				Help: "Query cache misses, by project scope",
			},
			[]string{"project"},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memgate_store_errors_total",
				Help: "Vector store call failures, by operation",
			},
			[]string{"operation"},
		),
		GraphEntities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memgate_graph_entities",
			Help: "Entities currently held in the relationship graph",
		}),
		GraphRelationships: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memgate_graph_relationships",
			Help: "Relationships currently held in the relationship graph",
		}),
		TrailsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memgate_trails_tracked",
			Help: "Distinct pheromone trails currently tracked",
		}),
	}

	factory(m.RequestsTotal)
	factory(m.RequestDuration)
	factory(m.CacheHits)
	factory(m.CacheMisses)
	factory(m.StoreErrors)
	factory(m.GraphEntities)
	factory(m.GraphRelationships)
	factory(m.TrailsTracked)

	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
