package report

import (
	"github.com/DanielSeemaier/minloggapa/pkg/logging"
	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
)

// CLIReporter logs run-level metrics through the structured logger and
// tracks recursion state. Per-movement events are intentionally dropped;
// use one of the relational sinks for full traces.
type CLIReporter struct {
	Base
	log logging.Logger
}

// NewCLIReporter returns a reporter that writes to the given logger.
func NewCLIReporter(log logging.Logger) *CLIReporter {
	return &CLIReporter{log: log}
}

// Start implements Reporter.
func (r *CLIReporter) Start(qg *querygraph.QueryGraph, filename, remark string, initialLogGap, initialLog float64, initialQuadtree int64) {
	r.Base.Start(filename, initialLogGap, initialLog, initialQuadtree)
	r.log.Info("reordering started",
		logging.String("graph", filename),
		logging.String("remark", remark),
		logging.Int("nodes", qg.DataGraph().NumNodes()),
		logging.Int("edges", qg.DataGraph().NumEdges()),
		logging.Float64("initial_loggap", initialLogGap),
		logging.Float64("initial_log", initialLog),
		logging.Int64("initial_quadtree", initialQuadtree),
	)
}

// Finish implements Reporter.
func (r *CLIReporter) Finish(qg *querygraph.QueryGraph, layout []int, resultingLogGap, resultingLog float64, resultingQuadtree int64) {
	r.log.Info("reordering finished",
		logging.String("graph", r.Filename),
		logging.Float64("resulting_loggap", resultingLogGap),
		logging.Float64("resulting_log", resultingLog),
		logging.Int64("resulting_quadtree", resultingQuadtree),
		logging.Float64("seconds", r.GlobalElapsed()),
	)
}

// BisectionStart implements Reporter.
func (r *CLIReporter) BisectionStart(qg *querygraph.QueryGraph) {
	r.log.Debug("bisection started",
		logging.String("branch", r.BranchIdentifier),
		logging.Int("nodes", qg.DataGraph().NumNodes()),
		logging.Int("edges", qg.DataGraph().NumEdges()),
	)
}

// BisectionFinish implements Reporter.
func (r *CLIReporter) BisectionFinish(qg, first, second *querygraph.QueryGraph) {
	r.log.Debug("bisection finished",
		logging.String("branch", r.BranchIdentifier),
		logging.Int("p0_nodes", first.DataGraph().NumNodes()),
		logging.Int("p1_nodes", second.DataGraph().NumNodes()),
		logging.Int("cut", qg.DataGraph().EdgeCut()),
		logging.Int("imbalance", Imbalance(first, second)),
	)
}

// InitialPartitioningFinish implements Reporter.
func (r *CLIReporter) InitialPartitioningFinish(qg *querygraph.QueryGraph) {
	r.log.Debug("initial partitioning finished",
		logging.String("branch", r.BranchIdentifier),
		logging.Int("cut", qg.DataGraph().EdgeCut()),
		logging.Float64("seconds", r.PartitioningElapsed()),
	)
}

// InitialPartitioningStart implements Reporter.
func (r *CLIReporter) InitialPartitioningStart(qg *querygraph.QueryGraph) {
	r.Base.InitialPartitioningStart()
}

// RefinementStart implements Reporter.
func (r *CLIReporter) RefinementStart(qg *querygraph.QueryGraph, initialPartitionCost float64) {
	r.Base.RefinementStart(initialPartitionCost)
}

// RefinementFinish implements Reporter.
func (r *CLIReporter) RefinementFinish(qg *querygraph.QueryGraph, iterationsExecuted int, resultingPartitionCost float64) {
	r.log.Debug("refinement finished",
		logging.String("branch", r.BranchIdentifier),
		logging.Int("iterations", iterationsExecuted),
		logging.Float64("initial_partition_cost", r.RefinementInitialPartitionCost),
		logging.Float64("resulting_partition_cost", resultingPartitionCost),
		logging.Float64("seconds", r.RefinementElapsed()),
	)
}

// RefinementIterationStart implements Reporter.
func (r *CLIReporter) RefinementIterationStart(qg *querygraph.QueryGraph, nthIteration int, initialPartitionCost float64) {
	r.Base.RefinementIterationStart(nthIteration, initialPartitionCost)
}

// RefinementMoveNode implements Reporter.
func (r *CLIReporter) RefinementMoveNode(qg *querygraph.QueryGraph, node, fromPartition int, gainTotal, gainAdjacent, gainNonadjacent float64, isBoundary bool) {
}

// RefinementIterationFinish implements Reporter.
func (r *CLIReporter) RefinementIterationFinish(qg *querygraph.QueryGraph, numNodesExchanged int, resultingPartitionCost float64) {
	r.log.Debug("refinement iteration finished",
		logging.String("branch", r.BranchIdentifier),
		logging.Int("nth", r.NthIteration),
		logging.Int("moved", numNodesExchanged),
		logging.Float64("resulting_partition_cost", resultingPartitionCost),
	)
}
