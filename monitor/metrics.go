package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the cache
type Metrics struct {
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ErrorsTotal       *prometheus.CounterVec
	ItemsTotal        *prometheus.GaugeVec
	MemoryBytes       *prometheus.GaugeVec
	EvictionsTotal    *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on the default registry
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates a Metrics instance registered on the given registerer
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "nexocache"
	}
	factory := promauto.With(reg)

	return &Metrics{
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of cache operations processed",
			},
			[]string{"cache", "operation", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Cache operation duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"cache", "operation"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of failed cache operations",
			},
			[]string{"cache", "operation"},
		),
		ItemsTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "items",
				Help:      "Number of items currently cached",
			},
			[]string{"cache"},
		),
		MemoryBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "memory_bytes",
				Help:      "Memory used by cached items in bytes",
			},
			[]string{"cache"},
		),
		EvictionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evictions_total",
				Help:      "Total number of items evicted to reclaim capacity",
			},
			[]string{"cache"},
		),
	}
}

// observe exports one recorded operation
func (m *Metrics) observe(op Operation) {
	status := "success"
	if !op.Success {
		status = "error"
		m.ErrorsTotal.WithLabelValues(op.CacheName, string(op.Kind)).Inc()
	}
	m.OperationsTotal.WithLabelValues(op.CacheName, string(op.Kind), status).Inc()
	m.OperationDuration.WithLabelValues(op.CacheName, string(op.Kind)).Observe(op.Duration.Seconds())

	if op.Kind == KindGet && op.Success {
		if op.Hit {
			m.CacheHits.WithLabelValues(op.CacheName).Inc()
		} else {
			m.CacheMisses.WithLabelValues(op.CacheName).Inc()
		}
	}
}

// UpdateStats refreshes the item and memory gauges for a cache
func (m *Metrics) UpdateStats(cacheName string, items int, memoryBytes int64) {
	m.ItemsTotal.WithLabelValues(cacheName).Set(float64(items))
	m.MemoryBytes.WithLabelValues(cacheName).Set(float64(memoryBytes))
}

// RecordEviction counts one evicted item
func (m *Metrics) RecordEviction(cacheName string) {
	m.EvictionsTotal.WithLabelValues(cacheName).Inc()
}
