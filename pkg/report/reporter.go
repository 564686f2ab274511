// Package report collects telemetry from the reordering pipeline: one
// report per run, one bisection per recursion step, one iteration per
// refinement pass and one movement per node moved. Sinks are the CLI, a
// SQLite file or a Postgres database.
package report

import (
	"time"

	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
)

// Reporter receives pipeline events. Implementations must tolerate events
// arriving in recursive bisection order: Start, then per recursion step
// BisectionStart / partitioning / refinement / BisectionFinish bracketed by
// Enter/Leave branch calls, and a single Finish at the end.
type Reporter interface {
	Start(qg *querygraph.QueryGraph, filename, remark string, initialLogGap, initialLog float64, initialQuadtree int64)
	Finish(qg *querygraph.QueryGraph, layout []int, resultingLogGap, resultingLog float64, resultingQuadtree int64)

	EnterFirstBranch()
	LeaveFirstBranch()
	EnterSecondBranch()
	LeaveSecondBranch()

	BisectionStart(qg *querygraph.QueryGraph)
	BisectionFinish(qg, first, second *querygraph.QueryGraph)

	InitialPartitioningStart(qg *querygraph.QueryGraph)
	InitialPartitioningFinish(qg *querygraph.QueryGraph)

	RefinementStart(qg *querygraph.QueryGraph, initialPartitionCost float64)
	RefinementFinish(qg *querygraph.QueryGraph, iterationsExecuted int, resultingPartitionCost float64)
	RefinementIterationStart(qg *querygraph.QueryGraph, nthIteration int, initialPartitionCost float64)
	RefinementMoveNode(qg *querygraph.QueryGraph, node, fromPartition int, gainTotal, gainAdjacent, gainNonadjacent float64, isBoundary bool)
	RefinementIterationFinish(qg *querygraph.QueryGraph, numNodesExchanged int, resultingPartitionCost float64)
}

// Base tracks the recursion state shared by all sinks: the branch
// identifier (a string of '0'/'1' recording the path in the bisection
// tree) and the timers bracketing the pipeline phases.
type Base struct {
	Filename         string
	RecursionLevel   int
	BranchIdentifier string
	NthIteration     int

	InitialLogGap   float64
	InitialLog      float64
	InitialQuadtree int64

	RefinementInitialPartitionCost float64
	IterationInitialPartitionCost  float64

	globalStart     time.Time
	branchStart     time.Time
	partitionStart  time.Time
	refinementStart time.Time
}

// Start records run-level inputs and starts the global timer.
func (b *Base) Start(filename string, initialLogGap, initialLog float64, initialQuadtree int64) {
	b.Filename = filename
	b.InitialLogGap = initialLogGap
	b.InitialLog = initialLog
	b.InitialQuadtree = initialQuadtree
	b.globalStart = time.Now()
}

// EnterFirstBranch descends into the partition-0 subtree.
func (b *Base) EnterFirstBranch() {
	b.RecursionLevel++
	b.BranchIdentifier += "0"
	b.branchStart = time.Now()
}

// LeaveFirstBranch returns from the partition-0 subtree.
func (b *Base) LeaveFirstBranch() {
	b.leaveBranch()
}

// EnterSecondBranch descends into the partition-1 subtree.
func (b *Base) EnterSecondBranch() {
	b.RecursionLevel++
	b.BranchIdentifier += "1"
	b.branchStart = time.Now()
}

// LeaveSecondBranch returns from the partition-1 subtree.
func (b *Base) LeaveSecondBranch() {
	b.leaveBranch()
}

func (b *Base) leaveBranch() {
	if b.RecursionLevel == 0 || len(b.BranchIdentifier) == 0 {
		panic("report: leaving a branch that was never entered")
	}
	b.RecursionLevel--
	b.BranchIdentifier = b.BranchIdentifier[:len(b.BranchIdentifier)-1]
}

// InitialPartitioningStart starts the partitioning timer.
func (b *Base) InitialPartitioningStart() {
	b.partitionStart = time.Now()
}

// RefinementStart records the pre-refinement cost and starts the
// refinement timer.
func (b *Base) RefinementStart(initialPartitionCost float64) {
	b.RefinementInitialPartitionCost = initialPartitionCost
	b.refinementStart = time.Now()
}

// RefinementIterationStart records the per-iteration initial cost.
func (b *Base) RefinementIterationStart(nthIteration int, initialPartitionCost float64) {
	b.IterationInitialPartitionCost = initialPartitionCost
	b.NthIteration = nthIteration
}

// GlobalElapsed returns seconds since Start.
func (b *Base) GlobalElapsed() float64 { return time.Since(b.globalStart).Seconds() }

// PartitioningElapsed returns seconds since InitialPartitioningStart.
func (b *Base) PartitioningElapsed() float64 { return time.Since(b.partitionStart).Seconds() }

// RefinementElapsed returns seconds since RefinementStart.
func (b *Base) RefinementElapsed() float64 { return time.Since(b.refinementStart).Seconds() }

// MovementStats captures the context of a single node move for the
// movement record of the relational sinks.
type MovementStats struct {
	Nodes0, Nodes1       int // partition sizes before the move
	DegData0, DegData1   int // data-neighbor count per partition
	DegQuery             int // number of adjacent query nodes
	DegQuery0, DegQuery1 int // summed degrees of adjacent query nodes, pre-move
}

// CollectMovementStats recomputes the movement context for a node that was
// just moved out of fromPartition.
func CollectMovementStats(qg *querygraph.QueryGraph, node, fromPartition int) MovementStats {
	g := qg.DataGraph()

	var stats MovementStats
	var dataDegrees [2]int
	for e := g.FirstEdge(node); e < g.FirstInvalidEdge(node); e++ {
		dataDegrees[g.PartitionIndex(g.EdgeTarget(e))]++
	}
	stats.DegData0, stats.DegData1 = dataDegrees[0], dataDegrees[1]

	adjacent := qg.AdjacentQueryNodes(node)
	stats.DegQuery = len(adjacent)

	var queryDegrees [2]int
	for _, q := range adjacent {
		degrees := qg.CountQueryNodeDegrees(q)
		queryDegrees[0] += degrees[0]
		queryDegrees[1] += degrees[1]
	}
	// undo the move so the record reflects the pre-move state
	queryDegrees[fromPartition] += len(adjacent)
	queryDegrees[1-fromPartition] -= len(adjacent)
	stats.DegQuery0, stats.DegQuery1 = queryDegrees[0], queryDegrees[1]

	sizes := qg.CountPartitionSizes()
	sizes[fromPartition]++
	sizes[1-fromPartition]--
	stats.Nodes0, stats.Nodes1 = sizes[0], sizes[1]

	return stats
}

// Imbalance returns the percentage size imbalance of a bisection.
func Imbalance(first, second *querygraph.QueryGraph) int {
	n0 := first.DataGraph().NumNodes()
	n1 := second.DataGraph().NumNodes()
	diff := n0 - n1
	if diff < 0 {
		diff = -diff
	}
	return int(float64(diff) / float64(n0+n1) * 100)
}
