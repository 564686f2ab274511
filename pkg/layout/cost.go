package layout

import (
	"math"
	"sort"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
)

// Log2Bits is the number of bits needed to encode a positive value:
// 1 + log2(x). Note that the result is negative for x < 0.5.
func Log2Bits(x float64) float64 {
	return 1 + math.Log2(x)
}

// LogGap is the mean number of bits per adjacency gap when each vertex's
// neighbor positions are sorted and delta-encoded: for consecutive
// positions a < b the gap costs 1 + floor(log2(b-a)) bits.
func LogGap(g *graph.Graph, layout []int) float64 {
	cost := 0.0
	gaps := 0

	neighbors := make([]int, 0, 64)
	for v := 0; v < g.NumNodes(); v++ {
		neighbors = neighbors[:0]
		for e := g.FirstEdge(v); e < g.FirstInvalidEdge(v); e++ {
			neighbors = append(neighbors, layout[g.EdgeTarget(e)])
		}
		sort.Ints(neighbors)

		for i := 0; i+1 < len(neighbors); i++ {
			cost += 1 + math.Floor(math.Log2(float64(neighbors[i+1]-neighbors[i])))
			gaps++
		}
	}

	if gaps == 0 {
		return 0
	}
	return cost / float64(gaps)
}

// LogCost is the mean number of bits to encode each directed edge's
// endpoint distance: 1 + floor(log2|pos(u)-pos(v)|), averaged over all
// directed edge entries.
func LogCost(g *graph.Graph, layout []int) float64 {
	if g.NumEdges() == 0 {
		return 0
	}
	return perEdgeCost(g, func(u, v int) float64 {
		d := layout[u] - layout[v]
		if d < 0 {
			d = -d
		}
		return 1 + math.Floor(math.Log2(float64(d)))
	}) / float64(g.NumEdges())
}

// MLACost is the mean absolute endpoint distance over all directed edge
// entries, the classic minimum-linear-arrangement objective.
func MLACost(g *graph.Graph, layout []int) float64 {
	if g.NumEdges() == 0 {
		return 0
	}
	return perEdgeCost(g, func(u, v int) float64 {
		d := layout[u] - layout[v]
		if d < 0 {
			d = -d
		}
		return float64(d)
	}) / float64(g.NumEdges())
}

func perEdgeCost(g *graph.Graph, cost func(u, v int) float64) float64 {
	total := 0.0
	for u := 0; u < g.NumNodes(); u++ {
		for e := g.FirstEdge(u); e < g.FirstInvalidEdge(u); e++ {
			total += cost(u, g.EdgeTarget(e))
		}
	}
	return total
}

// PartitionCost is the refinement objective: for every query node q and
// partition p, the term d_p(q) * Log2Bits(n_p / (d_p(q)+1)) estimates the
// bits per neighbor under a partition-induced arrangement. Terms with an
// empty partition or zero degree contribute nothing.
func PartitionCost(qg *querygraph.QueryGraph) float64 {
	cost := 0.0
	sizes := qg.CountPartitionSizes()

	for q := 0; q < qg.NumQueryNodes(); q++ {
		degrees := qg.CountQueryNodeDegrees(q)
		for p := 0; p < 2; p++ {
			if degrees[p] > 0 {
				cost += float64(degrees[p]) * Log2Bits(float64(sizes[p])/float64(degrees[p]+1))
			}
		}
	}

	if math.IsNaN(cost) {
		panic("layout: partition cost is NaN")
	}
	return cost
}

// IsBoundary reports whether v has a neighbor in the opposite partition.
func IsBoundary(g *graph.Graph, v int) bool {
	p := g.PartitionIndex(v)
	for e := g.FirstEdge(v); e < g.FirstInvalidEdge(v); e++ {
		if g.PartitionIndex(g.EdgeTarget(e)) != p {
			return true
		}
	}
	return false
}

// QuadtreeSize counts the cells of a quadtree over the adjacency matrix
// padded to the next power of two: a quadrant that contains at least one
// edge costs four cells and recurses.
func QuadtreeSize(g *graph.Graph) int {
	if g.NumNodes() == 0 {
		return 0
	}

	// round up to the next power of two
	end := g.NumNodes() - 1
	end |= end >> 1
	end |= end >> 2
	end |= end >> 4
	end |= end >> 8
	end |= end >> 16
	end |= end >> 32
	end++

	size := 0
	quadtreeQuarter(g, &size, 0, end, 0, end)
	return size
}

// quadtreeQuarter reports whether the quadrant is empty, accumulating the
// cell count into size.
func quadtreeQuarter(g *graph.Graph, size *int, xStart, xEnd, yStart, yEnd int) bool {
	if xEnd-xStart == 1 || yEnd-yStart == 1 {
		if xStart >= g.NumNodes() || yStart >= g.NumNodes() {
			return true
		}
		for e := g.FirstEdge(yStart); e < g.FirstInvalidEdge(yStart); e++ {
			if g.EdgeTarget(e) == xStart {
				return false
			}
		}
		return true
	}

	xMid := xStart + (xEnd-xStart)/2
	yMid := yStart + (yEnd-yStart)/2
	zero1 := quadtreeQuarter(g, size, xStart, xMid, yStart, yMid)
	zero2 := quadtreeQuarter(g, size, xMid, xEnd, yStart, yMid)
	zero3 := quadtreeQuarter(g, size, xMid, xEnd, yMid, yEnd)
	zero4 := quadtreeQuarter(g, size, xStart, xMid, yMid, yEnd)

	if zero1 && zero2 && zero3 && zero4 {
		return true
	}
	*size += 4
	return false
}
