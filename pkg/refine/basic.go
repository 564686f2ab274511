package refine

import (
	"sort"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
	"github.com/DanielSeemaier/minloggapa/pkg/layout"
	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
	"github.com/DanielSeemaier/minloggapa/pkg/report"
)

// BasicRefiner performs bulk symmetric swaps: it sorts both partitions by
// decreasing gain and exchanges the i-th best vertices pairwise while the
// summed gain stays positive. Pairwise exchange preserves the partition
// sizes exactly.
type BasicRefiner struct {
	imbalance      int
	imbalanceLevel int

	qg       *querygraph.QueryGraph
	g        *graph.Graph
	reporter report.Reporter

	partitionSizes [2]int
}

// NewBasicRefiner creates a basic refiner. The imbalance parameters are
// accepted for interface parity; pairwise swaps never change the balance.
func NewBasicRefiner(imbalance, imbalanceLevel int) *BasicRefiner {
	return &BasicRefiner{imbalance: imbalance, imbalanceLevel: imbalanceLevel}
}

// PerformRefinement implements Refiner.
func (r *BasicRefiner) PerformRefinement(qg *querygraph.QueryGraph, maxIterations, level int, reporter report.Reporter) {
	r.qg = qg
	r.g = qg.DataGraph()
	r.reporter = reporter
	runRefinement(qg, maxIterations, level, reporter, r.imbalance, r.imbalanceLevel, r.performIteration)
}

func (r *BasicRefiner) performIteration(nth, imbalance int) int {
	r.partitionSizes = r.qg.CountPartitionSizes()

	gains := r.calculateGains()

	// one candidate list per partition, best gain first
	var s [2][]int
	for v := 0; v < r.g.NumNodes(); v++ {
		p := r.g.PartitionIndex(v)
		s[p] = append(s[p], v)
	}
	for p := 0; p < 2; p++ {
		sort.SliceStable(s[p], func(i, j int) bool { return gains[s[p][i]] > gains[s[p][j]] })
	}

	limit := min(len(s[0]), len(s[1]))

	// boundary status must be captured before any swap mutates the cut
	var isBoundary [2][]bool
	for i := 0; i < limit; i++ {
		if gains[s[0][i]]+gains[s[1][i]] <= 0 {
			break
		}
		for p := 0; p < 2; p++ {
			isBoundary[p] = append(isBoundary[p], layout.IsBoundary(r.g, s[p][i]))
		}
	}

	numMoved := 0
	for i := 0; i < limit; i++ {
		if gains[s[0][i]]+gains[s[1][i]] <= 0 {
			break
		}

		numMoved += 2
		for p := 0; p < 2; p++ {
			v := s[p][i]
			r.g.SetPartitionIndex(v, 1-p)
			r.reporter.RefinementMoveNode(r.qg, v, p, gains[v], 0, 0, isBoundary[p][i])
		}
	}

	return numMoved
}

// calculateGains computes, for every data node, the decrease in partition
// cost that moving it across the cut would cause. The per-query-node cost
// delta splits into a contribution for adjacent vertices and a uniform base
// applied to every non-adjacent vertex of a partition; both are evaluated
// in closed form from the partition sizes and the query node's degrees.
func (r *BasicRefiner) calculateGains() []float64 {
	gains := make([]float64, r.g.NumNodes())
	var nonadjacentBase [2]float64

	for q := 0; q < r.qg.NumQueryNodes(); q++ {
		degrees := r.qg.CountQueryNodeDegrees(q)
		cost := nodeCost(r.partitionSizes, degrees)

		// cost delta when an adjacent vertex moves out of partition p
		var adjacentContribution [2]float64
		// cost delta when a non-adjacent vertex moves out of partition p
		var nonadjacentContribution [2]float64

		if degrees[0] > 0 {
			adjacentContribution[0] = cost - nodeCost(
				[2]int{r.partitionSizes[0] - 1, r.partitionSizes[1] + 1},
				[2]int{degrees[0] - 1, degrees[1] + 1},
			)
		}
		if degrees[1] > 0 {
			adjacentContribution[1] = cost - nodeCost(
				[2]int{r.partitionSizes[0] + 1, r.partitionSizes[1] - 1},
				[2]int{degrees[0] + 1, degrees[1] - 1},
			)
		}
		if r.partitionSizes[0] > 0 && degrees[0] < r.partitionSizes[0] {
			nonadjacentContribution[0] = cost - nodeCost(
				[2]int{r.partitionSizes[0] - 1, r.partitionSizes[1] + 1},
				degrees,
			)
			nonadjacentBase[0] += nonadjacentContribution[0]
		}
		if r.partitionSizes[1] > 0 && degrees[1] < r.partitionSizes[1] {
			nonadjacentContribution[1] = cost - nodeCost(
				[2]int{r.partitionSizes[0] + 1, r.partitionSizes[1] - 1},
				degrees,
			)
			nonadjacentBase[1] += nonadjacentContribution[1]
		}

		for e := r.qg.FirstQueryEdge(q); e < r.qg.FirstInvalidQueryEdge(q); e++ {
			v := r.qg.QueryEdgeTarget(e)
			p := r.g.PartitionIndex(v)
			gains[v] += adjacentContribution[p] - nonadjacentContribution[p]
		}
	}

	for v := 0; v < r.g.NumNodes(); v++ {
		gains[v] += nonadjacentBase[r.g.PartitionIndex(v)]
	}

	return gains
}
