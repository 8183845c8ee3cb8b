package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	allocatorRuns        *prometheus.CounterVec
	solveDuration        *prometheus.HistogramVec
	unsatisfiedDemands   *prometheus.CounterVec
	allocatedQuantity    *prometheus.GaugeVec
	distributionRequests *prometheus.CounterVec
	activeConnections    prometheus.Gauge
)

// InitMetrics registers all custom metrics with the provided registry
func InitMetrics(registry prometheus.Registerer) {
	allocatorRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allocator_runs_total",
			Help: "Total number of allocator runs",
		},
		[]string{"strategy", "outcome"},
	)
	solveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "allocator_solve_duration_seconds",
			Help:    "Time taken by an allocator run",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"strategy"},
	)
	unsatisfiedDemands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allocator_unsatisfied_demands_total",
			Help: "Total number of demands the allocator could not satisfy",
		},
		[]string{"strategy"},
	)
	allocatedQuantity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "allocator_allocated_quantity",
			Help: "Quantity allocated to each sink in the published allocation",
		},
		[]string{"sink"},
	)
	distributionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distribution_requests_total",
			Help: "Total number of distribution requests by outcome",
		},
		[]string{"outcome"},
	)
	activeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "distribution_active_connections",
			Help: "Number of client connections being served",
		},
	)

	registry.MustRegister(allocatorRuns)
	registry.MustRegister(solveDuration)
	registry.MustRegister(unsatisfiedDemands)
	registry.MustRegister(allocatedQuantity)
	registry.MustRegister(distributionRequests)
	registry.MustRegister(activeConnections)
}

// InitMetricsAndEmitter registers metrics with Prometheus and creates a metrics emitter
func InitMetricsAndEmitter(registry prometheus.Registerer) *MetricsEmitter {
	InitMetrics(registry)
	return NewMetricsEmitter()
}

// MetricsEmitter handles emission of custom metrics; all methods are no-ops
// until InitMetrics has been called
type MetricsEmitter struct{}

// NewMetricsEmitter creates a new metrics emitter
func NewMetricsEmitter() *MetricsEmitter {
	return &MetricsEmitter{}
}

// EmitAllocationMetrics emits metrics of a completed or failed allocator run
func (m *MetricsEmitter) EmitAllocationMetrics(strategy, outcome string, elapsed time.Duration, unsatisfied int) {
	if allocatorRuns == nil {
		return
	}
	allocatorRuns.With(prometheus.Labels{"strategy": strategy, "outcome": outcome}).Inc()
	solveDuration.With(prometheus.Labels{"strategy": strategy}).Observe(elapsed.Seconds())
	if unsatisfied > 0 {
		unsatisfiedDemands.With(prometheus.Labels{"strategy": strategy}).Add(float64(unsatisfied))
	}
}

// EmitAllocatedQuantities replaces the per sink quantity gauges
func (m *MetricsEmitter) EmitAllocatedQuantities(quantities map[string]float64) {
	if allocatedQuantity == nil {
		return
	}
	allocatedQuantity.Reset()
	for sink, q := range quantities {
		allocatedQuantity.With(prometheus.Labels{"sink": sink}).Set(q)
	}
}

// EmitRequestMetrics counts a served distribution request
func (m *MetricsEmitter) EmitRequestMetrics(outcome string) {
	if distributionRequests == nil {
		return
	}
	distributionRequests.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// ConnectionOpened and ConnectionClosed track connections in flight
func (m *MetricsEmitter) ConnectionOpened() {
	if activeConnections != nil {
		activeConnections.Inc()
	}
}

func (m *MetricsEmitter) ConnectionClosed() {
	if activeConnections != nil {
		activeConnections.Dec()
	}
}
