package refine

import (
	"fmt"
	"math"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
	"github.com/DanielSeemaier/minloggapa/pkg/layout"
	"github.com/DanielSeemaier/minloggapa/pkg/parallel"
	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
	"github.com/DanielSeemaier/minloggapa/pkg/report"
)

// commitEpsilon is the minimum prefix-sum gain required to apply the moves
// of an FM iteration.
const commitEpsilon = 0.01

// costTolerance bounds the allowed disagreement between the committed
// prefix-sum gain and the directly recomputed cost difference.
const costTolerance = 0.05

// queryNodeInfo is the FM refiner's per-query-node state: the degrees into
// each partition and the closed-form cost delta caused by moving one of its
// neighbors out of each partition.
type queryNodeInfo struct {
	degrees              [2]int
	adjacentContribution [2]float64
}

// dataNodeInfo is the FM refiner's per-data-node state. gain is the
// first-order saving of moving the node now; gain2 is the lookahead term
// approximating the effect on all non-adjacent vertices.
type dataNodeInfo struct {
	gain   float64
	gain2  float64
	marked bool
}

// FMRefiner runs Fiduccia-Mattheyses-style passes against the partition
// cost: every vertex is tentatively moved once in gain order under a
// balance budget, and the prefix of the move sequence with the best
// cumulative gain is committed.
type FMRefiner struct {
	imbalance      int
	imbalanceLevel int

	qg       *querygraph.QueryGraph
	g        *graph.Graph
	reporter report.Reporter

	partitionSizes [2]int
	partitionEdges [2]int

	queryNodes []queryNodeInfo
	dataNodes  []dataNodeInfo
}

// NewFMRefiner creates an FM refiner with the given imbalance percentage
// applied on every recursion level divisible by imbalanceLevel.
func NewFMRefiner(imbalance, imbalanceLevel int) *FMRefiner {
	return &FMRefiner{imbalance: imbalance, imbalanceLevel: imbalanceLevel}
}

// NewDefaultFMRefiner creates an FM refiner with a 3% imbalance budget on
// every level.
func NewDefaultFMRefiner() *FMRefiner {
	return NewFMRefiner(defaultImbalance, 1)
}

// PerformRefinement implements Refiner.
func (r *FMRefiner) PerformRefinement(qg *querygraph.QueryGraph, maxIterations, level int, reporter report.Reporter) {
	r.qg = qg
	r.g = qg.DataGraph()
	r.reporter = reporter
	runRefinement(qg, maxIterations, level, reporter, r.imbalance, r.imbalanceLevel, r.performIteration)
}

func (r *FMRefiner) performIteration(nth, imbalance int) int {
	r.partitionSizes = r.qg.CountPartitionSizes()
	r.calculateGainValues()

	// S holds the tentative moves in selection order. The partition index
	// array itself stays untouched until the commit phase; the tentative
	// state lives in partitionSizes/partitionEdges and the marked flags.
	var s []int
	for {
		v, ok := r.selectNode(imbalance)
		if !ok {
			break
		}
		s = append(s, v)
		r.updateGainValues(v)
	}

	// find the prefix of S with the maximal cumulative gain
	maxK := 0
	maxValue := math.Inf(-1)
	sum := 0.0
	for k, v := range s {
		sum += r.dataNodes[v].gain
		if sum > maxValue {
			maxValue = sum
			maxK = k
		}
	}

	if maxValue <= commitEpsilon {
		return 0
	}

	preIterationCost := layout.PartitionCost(r.qg)

	for i := 0; i <= maxK; i++ {
		u := s[i]
		p := r.g.PartitionIndex(u)
		isBoundary := layout.IsBoundary(r.g, u)

		r.g.SetPartitionIndex(u, 1-p)
		info := &r.dataNodes[u]
		r.reporter.RefinementMoveNode(r.qg, u, p, info.gain, info.gain-info.gain2, info.gain2, isBoundary)
	}

	postIterationCost := layout.PartitionCost(r.qg)
	if diff := math.Abs(preIterationCost - postIterationCost - maxValue); diff > costTolerance {
		panic(fmt.Sprintf("refine: committed gain %f disagrees with cost change %f",
			maxValue, preIterationCost-postIterationCost))
	}

	return 2 * (maxK + 1)
}

// selectNode picks the next vertex to move tentatively. When the balance
// budget allows it the better of the two partitions' best candidates wins;
// when the budget is exhausted the larger partition must shrink; when only
// one side has candidates left it may move as long as balance permits.
func (r *FMRefiner) selectNode(imbalance int) (int, bool) {
	m0, ok0 := r.maxGainNode(0)
	m1, ok1 := r.maxGainNode(1)

	diff := r.partitionSizes[0] - r.partitionSizes[1]
	if diff < 0 {
		diff = -diff
	}
	currentImbalance := float64(diff) / float64(r.partitionSizes[0]+r.partitionSizes[1])
	withinBudget := currentImbalance*100 < float64(imbalance)

	switch {
	case ok0 && ok1:
		if withinBudget {
			g0 := r.dataNodes[m0].gain + r.dataNodes[m0].gain2
			g1 := r.dataNodes[m1].gain + r.dataNodes[m1].gain2
			if g0 < g1 {
				return m1, true
			}
			return m0, true
		}
		// budget exhausted: shrink the larger partition
		if r.partitionSizes[0] < r.partitionSizes[1] {
			return m1, true
		}
		return m0, true
	case ok0 && (withinBudget || r.partitionSizes[1] < r.partitionSizes[0]):
		return m0, true
	case ok1 && (withinBudget || r.partitionSizes[0] < r.partitionSizes[1]):
		return m1, true
	}
	return 0, false
}

// maxGainNode scans for the unmarked vertex of partition p with the
// largest gain + gain2, ties broken by the lowest id.
func (r *FMRefiner) maxGainNode(p int) (int, bool) {
	best := -1
	for v := 0; v < r.g.NumNodes(); v++ {
		if r.dataNodes[v].marked || r.g.PartitionIndex(v) != p {
			continue
		}
		if best == -1 {
			best = v
			continue
		}
		if r.dataNodes[best].gain+r.dataNodes[best].gain2 < r.dataNodes[v].gain+r.dataNodes[v].gain2 {
			best = v
		}
	}
	return best, best != -1
}

// calculateGainValues recomputes the full FM state from the current
// partition: per-query-node degrees and contributions, per-data-node gain
// from the adjacent contributions and gain2 from the non-adjacent closed
// form.
func (r *FMRefiner) calculateGainValues() {
	numQuery := r.qg.NumQueryNodes()
	numData := r.g.NumNodes()

	if cap(r.queryNodes) < numQuery {
		r.queryNodes = make([]queryNodeInfo, numQuery)
	}
	r.queryNodes = r.queryNodes[:numQuery]
	if cap(r.dataNodes) < numData {
		r.dataNodes = make([]dataNodeInfo, numData)
	}
	r.dataNodes = r.dataNodes[:numData]
	for i := range r.dataNodes {
		r.dataNodes[i] = dataNodeInfo{}
	}

	r.partitionEdges = [2]int{}

	for q := 0; q < numQuery; q++ {
		info := &r.queryNodes[q]
		info.degrees = r.qg.CountQueryNodeDegrees(q)
		info.adjacentContribution = adjacentContribution(info.degrees)

		for e := r.qg.FirstQueryEdge(q); e < r.qg.FirstInvalidQueryEdge(q); e++ {
			v := r.qg.QueryEdgeTarget(e)
			p := r.g.PartitionIndex(v)
			r.dataNodes[v].gain += info.adjacentContribution[p]
			r.partitionEdges[p]++
		}
	}

	parallel.For(numData, 0, func(v int) {
		r.dataNodes[v].gain2 = r.nonadjacentGain(v, r.qg.NumAdjacentQueryNodes(v))
	})
}

// adjacentContribution is the closed-form cost delta a query node with the
// given degrees causes for an adjacent vertex moving out of partition 0 or
// 1 respectively.
func adjacentContribution(degrees [2]int) [2]float64 {
	d0, d1 := float64(degrees[0]), float64(degrees[1])

	var contribution [2]float64
	if degrees[0] > 0 {
		contribution[0] -= d0 * layout.Log2Bits(d0+1)
		contribution[0] -= d1 * layout.Log2Bits(d1+1)
		contribution[0] += (d0 - 1) * layout.Log2Bits(d0)
		contribution[0] += (d1 + 1) * layout.Log2Bits(d1+2)
	}
	if degrees[1] > 0 {
		contribution[1] -= d0 * layout.Log2Bits(d0+1)
		contribution[1] -= d1 * layout.Log2Bits(d1+1)
		contribution[1] += (d0 + 1) * layout.Log2Bits(d0+2)
		contribution[1] += (d1 - 1) * layout.Log2Bits(d1)
	}
	return contribution
}

// nonadjacentGain is the closed-form lookahead gain of moving v across the
// cut, derived from the total query-edge mass per partition: moving v
// shrinks its partition by one vertex and shifts its adjacent query edges
// to the other side, which changes the base cost of every query edge.
func (r *FMRefiner) nonadjacentGain(v, numAdjacent int) float64 {
	pe0, pe1 := float64(r.partitionEdges[0]), float64(r.partitionEdges[1])
	n0, n1 := r.partitionSizes[0], r.partitionSizes[1]
	adj := float64(numAdjacent)

	gain2 := 0.0
	if r.g.PartitionIndex(v) == 0 {
		if r.partitionEdges[0] < numAdjacent || n0 <= 0 {
			panic("refine: inconsistent partition totals")
		}
		gain2 += pe0 * (layout.Log2Bits(float64(n0)) + 1)
		if n1 > 0 {
			gain2 += pe1 * (layout.Log2Bits(float64(n1)) + 1)
		}
		if n0 > 1 {
			gain2 -= (pe0 - adj) * (layout.Log2Bits(float64(n0-1)) + 1)
		}
		gain2 -= (pe1 + adj) * (layout.Log2Bits(float64(n1+1)) + 1)
	} else {
		if r.partitionEdges[1] < numAdjacent || n1 <= 0 {
			panic("refine: inconsistent partition totals")
		}
		if n0 > 0 {
			gain2 += pe0 * (layout.Log2Bits(float64(n0)) + 1)
		}
		gain2 += pe1 * (layout.Log2Bits(float64(n1)) + 1)
		gain2 -= (pe0 + adj) * (layout.Log2Bits(float64(n0+1)) + 1)
		if n1 > 1 {
			gain2 -= (pe1 - adj) * (layout.Log2Bits(float64(n1-1)) + 1)
		}
	}

	if math.IsNaN(gain2) {
		panic("refine: lookahead gain is NaN")
	}
	return gain2
}

// updateGainValues applies the tentative move of node: it marks it, folds
// its lookahead into its committed gain, shifts the partition totals, and
// propagates the contribution change of every adjacent query node to the
// still-unmarked vertices. Runtime is O(maxdeg(QG)^2) for the propagation
// plus O(n) for the lookahead recomputation.
func (r *FMRefiner) updateGainValues(node int) {
	info := &r.dataNodes[node]
	if info.marked {
		panic("refine: node moved twice in one iteration")
	}

	partition := r.g.PartitionIndex(node)
	info.marked = true
	info.gain += info.gain2

	adjacent := r.qg.AdjacentQueryNodes(node)

	if r.partitionSizes[partition] <= 0 {
		panic("refine: moving out of an empty partition")
	}
	r.partitionSizes[partition]--
	r.partitionSizes[1-partition]++

	if r.partitionEdges[partition] < len(adjacent) {
		panic("refine: inconsistent partition totals")
	}
	r.partitionEdges[partition] -= len(adjacent)
	r.partitionEdges[1-partition] += len(adjacent)

	for _, q := range adjacent {
		qInfo := &r.queryNodes[q]

		if qInfo.degrees[partition] <= 0 {
			panic("refine: inconsistent query degrees")
		}
		qInfo.degrees[partition]--
		qInfo.degrees[1-partition]++

		newContribution := adjacentContribution(qInfo.degrees)

		for e := r.qg.FirstQueryEdge(q); e < r.qg.FirstInvalidQueryEdge(q); e++ {
			v := r.qg.QueryEdgeTarget(e)
			if r.dataNodes[v].marked {
				continue
			}
			p := r.g.PartitionIndex(v)
			r.dataNodes[v].gain -= qInfo.adjacentContribution[p]
			r.dataNodes[v].gain += newContribution[p]
		}

		qInfo.adjacentContribution = newContribution
	}

	parallel.For(r.g.NumNodes(), 0, func(v int) {
		if r.dataNodes[v].marked {
			return
		}
		r.dataNodes[v].gain2 = r.nonadjacentGain(v, r.qg.NumAdjacentQueryNodes(v))
	})
}
