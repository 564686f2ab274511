package reorder

import (
	"github.com/DanielSeemaier/minloggapa/pkg/metrics"
	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
	"github.com/DanielSeemaier/minloggapa/pkg/report"
)

// metricsReporter forwards all events to the wrapped reporter and mirrors
// refinement iterations into the metrics registry.
type metricsReporter struct {
	report.Reporter
	registry *metrics.Registry
}

// WithMetrics decorates a reporter so refinement iterations are counted in
// the given registry.
func WithMetrics(r report.Reporter, registry *metrics.Registry) report.Reporter {
	return &metricsReporter{Reporter: r, registry: registry}
}

func (m *metricsReporter) RefinementIterationFinish(qg *querygraph.QueryGraph, numNodesExchanged int, resultingPartitionCost float64) {
	m.registry.RecordRefinementIteration(numNodesExchanged)
	m.Reporter.RefinementIterationFinish(qg, numNodesExchanged, resultingPartitionCost)
}
