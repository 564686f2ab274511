// Package querygraph wraps a data graph with a set of query nodes that
// survive partition-induced subgraph extraction. Query edges represent
// connectivity that was cut away at earlier bisection levels, which keeps
// the partition cost function well-defined at every recursion depth.
package querygraph

import (
	"fmt"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
)

// QueryGraph augments a data graph with a CSR-stored bipartite edge set
// between query nodes and data nodes. A root QueryGraph owns real query-edge
// structure; a derived subgraph borrows its parent's structure through
// mapToParent, so resolving the query neighbors of a data node always walks
// up to the root.
type QueryGraph struct {
	parent      *QueryGraph // nil at the root
	data        *graph.Graph
	queryNodes  []int // queryNodes[q] = first query edge of q, len |Q|+1
	queryEdges  []int // queryEdges[e] = target data node
	mapToParent []int

	constructing bool
	lastSource   int
}

// New returns a query graph over the given data graph with no query edges.
func New(g *graph.Graph) *QueryGraph {
	return &QueryGraph{data: g}
}

// DataGraph returns the underlying data graph.
func (qg *QueryGraph) DataGraph() *graph.Graph { return qg.data }

// StartConstruction begins query-edge construction for the given number of
// query nodes, which must be at least the number of data nodes.
func (qg *QueryGraph) StartConstruction(numQueryNodes int) {
	if qg.constructing {
		panic("querygraph: StartConstruction called twice")
	}
	if numQueryNodes < qg.data.NumNodes() {
		panic(fmt.Sprintf("querygraph: %d query nodes < %d data nodes", numQueryNodes, qg.data.NumNodes()))
	}
	qg.constructing = true
	qg.queryNodes = make([]int, numQueryNodes+1)
	qg.queryEdges = qg.queryEdges[:0]
	qg.lastSource = 0
}

// AddQueryEdge appends a query edge from query node source to data node
// target. Sources must be non-decreasing across calls; gaps are filled by
// replicating the current offset.
func (qg *QueryGraph) AddQueryEdge(source, target int) {
	if !qg.constructing {
		panic("querygraph: AddQueryEdge outside construction")
	}
	if source >= qg.NumQueryNodes() {
		panic(fmt.Sprintf("querygraph: query node %d out of range [0,%d)", source, qg.NumQueryNodes()))
	}
	if target < 0 || target >= qg.data.NumNodes() {
		panic(fmt.Sprintf("querygraph: data node %d out of range [0,%d)", target, qg.data.NumNodes()))
	}
	if source < qg.lastSource {
		panic(fmt.Sprintf("querygraph: source %d decreases below %d", source, qg.lastSource))
	}

	qg.queryEdges = append(qg.queryEdges, target)
	qg.queryNodes[source+1] = len(qg.queryEdges)

	// fill offsets for query nodes skipped between lastSource and source
	for i := source; i > qg.lastSource+1; i-- {
		qg.queryNodes[i] = qg.queryNodes[qg.lastSource+1]
	}
	qg.lastSource = source
}

// FinishConstruction seals the query-edge structure, replicating the final
// offset for trailing query nodes without edges.
func (qg *QueryGraph) FinishConstruction() {
	if !qg.constructing {
		panic("querygraph: FinishConstruction outside construction")
	}
	if qg.lastSource != len(qg.queryNodes)-1 {
		for i := len(qg.queryNodes) - 1; i > qg.lastSource+1; i-- {
			qg.queryNodes[i] = qg.queryNodes[qg.lastSource+1]
		}
	}
	qg.constructing = false
}

// ConstructQueryEdges creates one query node per data node and one query
// edge per directed data edge, so query node i initially mirrors data
// node i.
func (qg *QueryGraph) ConstructQueryEdges() {
	qg.StartConstruction(qg.data.NumNodes())
	for v := 0; v < qg.data.NumNodes(); v++ {
		for e := qg.data.FirstEdge(v); e < qg.data.FirstInvalidEdge(v); e++ {
			qg.AddQueryEdge(v, qg.data.EdgeTarget(e))
		}
	}
	qg.FinishConstruction()
}

// NumQueryNodes returns the number of query nodes.
func (qg *QueryGraph) NumQueryNodes() int {
	if len(qg.queryNodes) == 0 {
		return 0
	}
	return len(qg.queryNodes) - 1
}

// NumQueryEdges returns the number of query edges.
func (qg *QueryGraph) NumQueryEdges() int { return len(qg.queryEdges) }

// FirstQueryEdge returns the index of q's first query edge.
func (qg *QueryGraph) FirstQueryEdge(q int) int { return qg.queryNodes[q] }

// FirstInvalidQueryEdge returns the index one past q's last query edge.
func (qg *QueryGraph) FirstInvalidQueryEdge(q int) int { return qg.queryNodes[q+1] }

// QueryEdgeTarget returns the data node a query edge points to.
func (qg *QueryGraph) QueryEdgeTarget(e int) int { return qg.queryEdges[e] }

// CountPartitionSizes counts the data nodes in each partition.
func (qg *QueryGraph) CountPartitionSizes() [2]int {
	var sizes [2]int
	for v := 0; v < qg.data.NumNodes(); v++ {
		sizes[qg.data.PartitionIndex(v)]++
	}
	return sizes
}

// CountQueryNodeDegrees counts q's query edges into each partition.
func (qg *QueryGraph) CountQueryNodeDegrees(q int) [2]int {
	var degrees [2]int
	for e := qg.FirstQueryEdge(q); e < qg.FirstInvalidQueryEdge(q); e++ {
		degrees[qg.data.PartitionIndex(qg.queryEdges[e])]++
	}
	return degrees
}

// AdjacentQueryNodes returns the query nodes adjacent to data node v. At the
// root these are simply v's data neighbors (query id equals data id there);
// a derived subgraph resolves through its parent chain.
func (qg *QueryGraph) AdjacentQueryNodes(v int) []int {
	if qg.parent != nil {
		return qg.parent.AdjacentQueryNodes(qg.mapToParent[v])
	}

	adjacent := make([]int, 0, qg.data.Degree(v))
	for e := qg.data.FirstEdge(v); e < qg.data.FirstInvalidEdge(v); e++ {
		adjacent = append(adjacent, qg.data.EdgeTarget(e))
	}
	return adjacent
}

// NumAdjacentQueryNodes returns len(AdjacentQueryNodes(v)) without
// materializing the slice.
func (qg *QueryGraph) NumAdjacentQueryNodes(v int) int {
	if qg.parent != nil {
		return qg.parent.NumAdjacentQueryNodes(qg.mapToParent[v])
	}
	return qg.data.Degree(v)
}

// BuildPartitionInducedSubgraphs splits the data graph along the current
// partition into two child query graphs with compacted vertex ids. Data
// edges inside a partition are copied; cut edges are dropped from the data
// graphs and survive only as query edges, routed to the subgraph holding
// their target. Both children start with every vertex in partition 0 and
// reference qg as their parent. Returns the two subgraphs and their
// new-id-to-old-id maps.
func (qg *QueryGraph) BuildPartitionInducedSubgraphs() ([2]*QueryGraph, [2][]int) {
	g := qg.data

	var numNodes [2]int
	var numEdges [2]int
	for v := 0; v < g.NumNodes(); v++ {
		p := g.PartitionIndex(v)
		numNodes[p]++
		for e := g.FirstEdge(v); e < g.FirstInvalidEdge(v); e++ {
			if p == g.PartitionIndex(g.EdgeTarget(e)) {
				numEdges[p]++
			}
		}
	}

	mapOldToNew := make([]int, g.NumNodes())
	mapNewToOld := [2][]int{make([]int, numNodes[0]), make([]int, numNodes[1])}

	var subgraphs [2]*QueryGraph
	for i := 0; i < 2; i++ {
		subgraphs[i] = New(graph.New())
		subgraphs[i].data.StartConstruction(numNodes[i], numEdges[i])
		subgraphs[i].StartConstruction(qg.NumQueryNodes())
	}

	// assign compacted ids
	next := [2]int{0, 0}
	for v := 0; v < g.NumNodes(); v++ {
		p := g.PartitionIndex(v)
		mapOldToNew[v] = next[p]
		mapNewToOld[p][next[p]] = v
		next[p]++
	}

	// emit intra-partition data edges
	for v := 0; v < g.NumNodes(); v++ {
		p := g.PartitionIndex(v)
		node := subgraphs[p].data.NewNode()
		for e := g.FirstEdge(v); e < g.FirstInvalidEdge(v); e++ {
			target := g.EdgeTarget(e)
			if p != g.PartitionIndex(target) {
				continue
			}
			subgraphs[p].data.NewEdge(node, mapOldToNew[target])
		}
	}

	// route every query edge to the subgraph holding its target
	for q := 0; q < qg.NumQueryNodes(); q++ {
		for e := qg.queryNodes[q]; e < qg.queryNodes[q+1]; e++ {
			target := qg.queryEdges[e]
			p := g.PartitionIndex(target)
			subgraphs[p].AddQueryEdge(q, mapOldToNew[target])
		}
	}

	for i := 0; i < 2; i++ {
		subgraphs[i].FinishConstruction()
		subgraphs[i].data.FinishConstruction()
		subgraphs[i].parent = qg
		subgraphs[i].mapToParent = mapNewToOld[i]
	}

	qg.validateSplit(subgraphs)
	return subgraphs, mapNewToOld
}

// validateSplit checks the bisection counting invariants. A violation is a
// bug, not an input error.
func (qg *QueryGraph) validateSplit(subgraphs [2]*QueryGraph) {
	if qg.NumQueryNodes() != subgraphs[0].NumQueryNodes() || qg.NumQueryNodes() != subgraphs[1].NumQueryNodes() {
		panic("querygraph: query nodes not replicated in subgraphs")
	}
	if qg.NumQueryEdges() != subgraphs[0].NumQueryEdges()+subgraphs[1].NumQueryEdges() {
		panic("querygraph: query edges lost during split")
	}
	if qg.data.NumNodes() != subgraphs[0].data.NumNodes()+subgraphs[1].data.NumNodes() {
		panic("querygraph: data nodes lost during split")
	}
	if qg.data.NumEdges() < subgraphs[0].data.NumEdges()+subgraphs[1].data.NumEdges() {
		panic("querygraph: subgraphs gained data edges")
	}
}
