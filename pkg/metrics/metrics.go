// Package metrics instruments the reordering pipeline with Prometheus
// collectors. A run-scoped Registry can be gathered and dumped at the end
// of a batch run or scraped when the tool is embedded in a service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for the reordering pipeline
type Registry struct {
	// Pipeline metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Bisection metrics
	BisectionsTotal      prometheus.Counter
	BisectionCut         prometheus.Histogram
	PartitioningDuration prometheus.Histogram

	// Refinement metrics
	RefinementIterationsTotal prometheus.Counter
	NodesMovedTotal           prometheus.Counter
	RefinementDuration        prometheus.Histogram

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "minloggapa_runs_total",
			Help: "Total number of reordering runs",
		},
		[]string{"status"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "minloggapa_run_duration_seconds",
			Help:    "End-to-end reordering run duration in seconds",
			Buckets: []float64{0.1, 1, 10, 60, 300, 1800, 7200},
		},
	)

	r.BisectionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "minloggapa_bisections_total",
			Help: "Total number of bisection steps performed",
		},
	)

	r.BisectionCut = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "minloggapa_bisection_cut_edges",
			Help:    "Edge cut after refinement of each bisection",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		},
	)

	r.PartitioningDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "minloggapa_partitioning_duration_seconds",
			Help:    "Initial partitioning duration per bisection in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60},
		},
	)

	r.RefinementIterationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "minloggapa_refinement_iterations_total",
			Help: "Total number of refinement iterations executed",
		},
	)

	r.NodesMovedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "minloggapa_nodes_moved_total",
			Help: "Total number of vertices moved across the cut",
		},
	)

	r.RefinementDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "minloggapa_refinement_duration_seconds",
			Help:    "Refinement duration per bisection in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60, 600},
		},
	)

	return r
}

// RecordRun records a completed run with its duration and outcome.
func (r *Registry) RecordRun(status string, duration time.Duration) {
	r.RunsTotal.WithLabelValues(status).Inc()
	r.RunDuration.Observe(duration.Seconds())
}

// RecordBisection records one bisection step.
func (r *Registry) RecordBisection(cut int, partitioning, refinement time.Duration) {
	r.BisectionsTotal.Inc()
	r.BisectionCut.Observe(float64(cut))
	r.PartitioningDuration.Observe(partitioning.Seconds())
	r.RefinementDuration.Observe(refinement.Seconds())
}

// RecordRefinementIteration records one refinement iteration.
func (r *Registry) RecordRefinementIteration(nodesMoved int) {
	r.RefinementIterationsTotal.Inc()
	r.NodesMovedTotal.Add(float64(nodesMoved))
}

// Gather exposes the underlying registry for scraping or dumping.
func (r *Registry) Gather() *prometheus.Registry {
	return r.registry
}
