package refine

import (
	"fmt"
	"math"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
	"github.com/DanielSeemaier/minloggapa/pkg/layout"
	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
	"github.com/DanielSeemaier/minloggapa/pkg/report"
)

// quadtreeNodeInfo is the per-node state of the priority-queue FM variant.
type quadtreeNodeInfo struct {
	marked     bool
	gain       float64
	numEdgesTo [2]int
}

// QuadtreeFMRefiner is the priority-queue FM variant: two max-heaps keyed
// on gain, one per partition, drained alternately for exactly
// 2*min(|Q0|,|Q1|) tentative moves without a balance heuristic. The cost
// function approximates the quadtree size of the partitioned adjacency
// matrix through Stirling-estimated binomial coefficients. Intended for
// experimental comparison; the main pipeline uses FMRefiner.
type QuadtreeFMRefiner struct {
	imbalance      int
	imbalanceLevel int

	qg       *querygraph.QueryGraph
	g        *graph.Graph
	reporter report.Reporter

	partitionSizes [2]int
	numEdgesFromTo [2][2]int
}

// NewQuadtreeFMRefiner creates a quadtree-cost FM refiner.
func NewQuadtreeFMRefiner(imbalance, imbalanceLevel int) *QuadtreeFMRefiner {
	return &QuadtreeFMRefiner{imbalance: imbalance, imbalanceLevel: imbalanceLevel}
}

// PerformRefinement implements Refiner.
func (r *QuadtreeFMRefiner) PerformRefinement(qg *querygraph.QueryGraph, maxIterations, level int, reporter report.Reporter) {
	r.qg = qg
	r.g = qg.DataGraph()
	r.reporter = reporter
	runRefinement(qg, maxIterations, level, reporter, r.imbalance, r.imbalanceLevel, r.performIteration)
}

func (r *QuadtreeFMRefiner) performIteration(nth, imbalance int) int {
	nodes := r.initPartitionInfo()

	queues := [2]*maxNodeHeap{newMaxNodeHeap(), newMaxNodeHeap()}
	for v := 0; v < r.g.NumNodes(); v++ {
		queues[r.g.PartitionIndex(v)].Insert(v, nodes[v].gain)
	}

	// drain the queues alternately; the partition is temporarily mutated
	// during selection and restored before the commit phase
	oldPartition := snapshotPartition(r.g)
	var s []int
	limit := min(queues[0].Size(), queues[1].Size())
	for k := 0; k < 2*limit; k++ {
		p := k % 2
		v := queues[p].DeleteMax()

		r.moveAndUpdate(v, nodes)
		s = append(s, v)

		for u := 0; u < r.g.NumNodes(); u++ {
			if nodes[u].marked {
				continue
			}
			queues[r.g.PartitionIndex(u)].ChangeKey(u, nodes[u].gain)
		}
	}
	restorePartition(r.g, oldPartition)

	maxK := 0
	maxValue := math.Inf(-1)
	sum := 0.0
	for k, v := range s {
		sum += nodes[v].gain
		if sum > maxValue {
			maxValue = sum
			maxK = k
		}
	}

	if maxValue <= 0 {
		return 0
	}

	r.initPartitionInfo()
	preIterationCost := r.evaluateCost()

	for i := 0; i <= maxK; i++ {
		u := s[i]
		p := r.g.PartitionIndex(u)
		isBoundary := layout.IsBoundary(r.g, u)

		r.g.SetPartitionIndex(u, 1-p)
		r.reporter.RefinementMoveNode(r.qg, u, p, nodes[u].gain, 0, 0, isBoundary)
	}

	r.initPartitionInfo()
	postIterationCost := r.evaluateCost()
	if diff := math.Abs(preIterationCost - postIterationCost - maxValue); diff > costTolerance {
		panic(fmt.Sprintf("refine: committed gain %f disagrees with cost change %f",
			maxValue, preIterationCost-postIterationCost))
	}

	return maxK + 1
}

// moveAndUpdate flips node to the other partition, maintains the edge
// census and refreshes the gain of every unmarked node.
func (r *QuadtreeFMRefiner) moveAndUpdate(node int, nodes []quadtreeNodeInfo) {
	oldPartition := r.g.PartitionIndex(node)
	newPartition := 1 - oldPartition
	r.g.SetPartitionIndex(node, newPartition)
	nodes[node].marked = true

	r.partitionSizes[oldPartition]--
	r.partitionSizes[newPartition]++

	for e := r.g.FirstEdge(node); e < r.g.FirstInvalidEdge(node); e++ {
		u := r.g.EdgeTarget(e)
		p := r.g.PartitionIndex(u)

		// undirected: the edge appears once from each endpoint
		r.numEdgesFromTo[oldPartition][p]--
		r.numEdgesFromTo[newPartition][p]++
		r.numEdgesFromTo[p][oldPartition]--
		r.numEdgesFromTo[p][newPartition]++
		nodes[u].numEdgesTo[oldPartition]--
		nodes[u].numEdgesTo[newPartition]++
	}

	r.updateGains(nodes)
}

// updateGains recomputes every unmarked node's gain as the cost difference
// of hypothetically moving it, by temporarily applying the move to the
// censuses and evaluating the closed-form cost.
func (r *QuadtreeFMRefiner) updateGains(nodes []quadtreeNodeInfo) {
	oldCost := r.evaluateCost()

	for v := 0; v < r.g.NumNodes(); v++ {
		if nodes[v].marked {
			continue
		}

		oldP := r.g.PartitionIndex(v)
		newP := 1 - oldP
		to := nodes[v].numEdgesTo

		r.partitionSizes[oldP]--
		r.partitionSizes[newP]++

		// v's own edge entries change row
		r.numEdgesFromTo[oldP][oldP] -= to[oldP]
		r.numEdgesFromTo[oldP][newP] -= to[newP]
		r.numEdgesFromTo[newP][oldP] += to[oldP]
		r.numEdgesFromTo[newP][newP] += to[newP]
		// the mirrored entries of v's neighbors change column
		r.numEdgesFromTo[oldP][oldP] -= to[oldP]
		r.numEdgesFromTo[oldP][newP] += to[oldP]
		r.numEdgesFromTo[newP][oldP] -= to[newP]
		r.numEdgesFromTo[newP][newP] += to[newP]

		newCost := r.evaluateCost()

		// undo
		r.numEdgesFromTo[newP][newP] -= to[newP]
		r.numEdgesFromTo[newP][oldP] += to[newP]
		r.numEdgesFromTo[oldP][newP] -= to[oldP]
		r.numEdgesFromTo[oldP][oldP] += to[oldP]
		r.numEdgesFromTo[newP][newP] -= to[newP]
		r.numEdgesFromTo[newP][oldP] -= to[oldP]
		r.numEdgesFromTo[oldP][newP] += to[newP]
		r.numEdgesFromTo[oldP][oldP] += to[oldP]

		r.partitionSizes[newP]--
		r.partitionSizes[oldP]++

		nodes[v].gain = oldCost - newCost
	}
}

// initPartitionInfo rebuilds the partition sizes, the per-pair edge census
// and every node's gain from scratch in O(m).
func (r *QuadtreeFMRefiner) initPartitionInfo() []quadtreeNodeInfo {
	nodes := make([]quadtreeNodeInfo, r.g.NumNodes())

	r.numEdgesFromTo = [2][2]int{}
	r.partitionSizes = [2]int{}

	for v := 0; v < r.g.NumNodes(); v++ {
		r.partitionSizes[r.g.PartitionIndex(v)]++

		for e := r.g.FirstEdge(v); e < r.g.FirstInvalidEdge(v); e++ {
			p := r.g.PartitionIndex(r.g.EdgeTarget(e))
			nodes[v].numEdgesTo[p]++
			r.numEdgesFromTo[r.g.PartitionIndex(v)][p]++
		}
	}

	r.updateGains(nodes)
	return nodes
}

// evaluateCost sums the approximate encoding cost of the four partition
// quadrants.
func (r *QuadtreeFMRefiner) evaluateCost() float64 {
	cost := 0.0
	for from := 0; from < 2; from++ {
		for to := 0; to < 2; to++ {
			cost += approxLogBinom(
				float64(r.partitionSizes[from])*float64(r.partitionSizes[to]),
				float64(r.numEdgesFromTo[from][to]))
		}
	}
	return cost
}

// approxLogFactorial is log2(n!) by Stirling's formula.
func approxLogFactorial(n float64) float64 {
	return (1.0 / math.Ln2) * (0.5*math.Log(2*math.Pi*n) + n*math.Log(n/math.E))
}

// approxLogBinom is log2 of the binomial coefficient C(n, k) by Stirling's
// formula.
func approxLogBinom(n, k float64) float64 {
	return approxLogFactorial(n) - approxLogFactorial(k) - approxLogFactorial(n-k)
}

func snapshotPartition(g *graph.Graph) []int {
	partition := make([]int, g.NumNodes())
	for v := range partition {
		partition[v] = g.PartitionIndex(v)
	}
	return partition
}

func restorePartition(g *graph.Graph, partition []int) {
	for v, p := range partition {
		g.SetPartitionIndex(v, p)
	}
}
