// Package refine implements local search over a bisection: refiners move
// data vertices across the cut to minimize the partition cost of the query
// graph.
package refine

import (
	"github.com/DanielSeemaier/minloggapa/pkg/layout"
	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
	"github.com/DanielSeemaier/minloggapa/pkg/report"
)

// defaultImbalance is the balance budget (in percent) used on recursion
// levels where the configured imbalance does not apply.
const defaultImbalance = 3

// Refiner improves the current bisection of qg in place. It runs
// iterations until maxIterations is reached or an iteration moves no
// vertex.
type Refiner interface {
	PerformRefinement(qg *querygraph.QueryGraph, maxIterations, level int, reporter report.Reporter)
}

// runRefinement is the iteration loop shared by all refiners: report
// start, run single iterations until one moves nothing, recompute the cost
// after each, report finish. The per-iteration balance budget is the
// configured imbalance on levels divisible by imbalanceLevel and the
// default otherwise.
func runRefinement(qg *querygraph.QueryGraph, maxIterations, level int, reporter report.Reporter,
	imbalance, imbalanceLevel int, iterate func(nth, imbalance int) int) {

	initialCost := layout.PartitionCost(qg)
	preIterationCost := initialCost
	reporter.RefinementStart(qg, initialCost)

	i := 0
	for ; i < maxIterations; i++ {
		budget := defaultImbalance
		if level%imbalanceLevel == 0 {
			budget = imbalance
		}

		reporter.RefinementIterationStart(qg, i, preIterationCost)
		nodesMoved := iterate(i, budget)
		postIterationCost := layout.PartitionCost(qg)
		reporter.RefinementIterationFinish(qg, nodesMoved, postIterationCost)
		preIterationCost = postIterationCost

		if nodesMoved == 0 {
			break
		}
	}

	reporter.RefinementFinish(qg, i, preIterationCost)
}

// nodeCost evaluates a single query node's contribution to the partition
// cost for the given partition sizes and degrees. An empty partition
// implies a zero degree and contributes nothing.
func nodeCost(sizes, degrees [2]int) float64 {
	cost := 0.0
	for i := 0; i < 2; i++ {
		if degrees[i] > sizes[i] {
			panic("refine: query degree exceeds partition size")
		}
		if sizes[i] > 0 {
			cost += float64(degrees[i]) * layout.Log2Bits(float64(sizes[i])/float64(degrees[i]+1))
		}
	}
	return cost
}
