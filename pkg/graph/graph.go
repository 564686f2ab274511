package graph

import "fmt"

// Graph is a simple undirected graph in CSR (compressed sparse row) form.
// Every undirected edge is stored as two directed entries, one per endpoint.
// Topology is immutable after FinishConstruction; only the per-vertex
// partition index mutates afterwards.
type Graph struct {
	firstEdge  []int // firstEdge[v] = index of v's first edge entry, len n+1
	edgeTarget []int // edgeTarget[e] = target vertex of edge entry e
	nodeWeight []int
	edgeWeight []int
	partition  []int

	partitionCount int

	// construction state
	constructing bool
	nextNode     int
	nextEdge     int
}

// New returns an empty graph. Call StartConstruction before adding nodes.
func New() *Graph {
	return &Graph{}
}

// StartConstruction sizes the graph for n nodes and m directed edge entries.
// The CSR offsets are filled incrementally by NewNode/NewEdge so no
// reallocation happens during construction.
func (g *Graph) StartConstruction(n, m int) {
	if g.constructing {
		panic("graph: StartConstruction called twice")
	}
	g.constructing = true
	g.firstEdge = make([]int, n+1)
	g.edgeTarget = make([]int, 0, m)
	g.nodeWeight = make([]int, n)
	g.edgeWeight = make([]int, 0, m)
	g.partition = make([]int, n)
	g.partitionCount = 2
	g.nextNode = 0
	g.nextEdge = 0
}

// NewNode appends a node and returns its id. Ids are assigned sequentially
// starting at 0.
func (g *Graph) NewNode() int {
	if !g.constructing {
		panic("graph: NewNode outside construction")
	}
	if g.nextNode >= len(g.nodeWeight) {
		panic(fmt.Sprintf("graph: node %d exceeds declared size %d", g.nextNode, len(g.nodeWeight)))
	}
	v := g.nextNode
	g.nextNode++
	g.nodeWeight[v] = 1
	g.firstEdge[v+1] = g.firstEdge[v]
	return v
}

// NewEdge appends a directed edge entry from source to target and returns its
// id. The source must be the most recently created node.
func (g *Graph) NewEdge(source, target int) int {
	if !g.constructing {
		panic("graph: NewEdge outside construction")
	}
	if source != g.nextNode-1 {
		panic(fmt.Sprintf("graph: edge source %d is not the current node %d", source, g.nextNode-1))
	}
	if target < 0 || target >= len(g.nodeWeight) {
		panic(fmt.Sprintf("graph: edge target %d out of range [0,%d)", target, len(g.nodeWeight)))
	}
	e := g.nextEdge
	g.nextEdge++
	g.edgeTarget = append(g.edgeTarget, target)
	g.edgeWeight = append(g.edgeWeight, 1)
	g.firstEdge[source+1] = g.nextEdge
	return e
}

// FinishConstruction seals the topology.
func (g *Graph) FinishConstruction() {
	if !g.constructing {
		panic("graph: FinishConstruction outside construction")
	}
	if g.nextNode != len(g.nodeWeight) {
		panic(fmt.Sprintf("graph: constructed %d of %d declared nodes", g.nextNode, len(g.nodeWeight)))
	}
	g.constructing = false
}

// NumNodes returns the number of vertices.
func (g *Graph) NumNodes() int { return len(g.nodeWeight) }

// NumEdges returns the number of directed edge entries. Each undirected edge
// counts twice.
func (g *Graph) NumEdges() int { return len(g.edgeTarget) }

// FirstEdge returns the index of v's first edge entry.
func (g *Graph) FirstEdge(v int) int { return g.firstEdge[v] }

// FirstInvalidEdge returns the index one past v's last edge entry.
func (g *Graph) FirstInvalidEdge(v int) int { return g.firstEdge[v+1] }

// Degree returns the number of edge entries leaving v.
func (g *Graph) Degree(v int) int { return g.firstEdge[v+1] - g.firstEdge[v] }

// EdgeTarget returns the target vertex of edge entry e.
func (g *Graph) EdgeTarget(e int) int { return g.edgeTarget[e] }

// NodeWeight returns the weight of v.
func (g *Graph) NodeWeight(v int) int { return g.nodeWeight[v] }

// SetNodeWeight sets the weight of v.
func (g *Graph) SetNodeWeight(v, w int) { g.nodeWeight[v] = w }

// EdgeWeight returns the weight of edge entry e.
func (g *Graph) EdgeWeight(e int) int { return g.edgeWeight[e] }

// SetEdgeWeight sets the weight of edge entry e.
func (g *Graph) SetEdgeWeight(e, w int) { g.edgeWeight[e] = w }

// PartitionIndex returns the partition v is assigned to.
func (g *Graph) PartitionIndex(v int) int { return g.partition[v] }

// SetPartitionIndex assigns v to partition p.
func (g *Graph) SetPartitionIndex(v, p int) {
	if p < 0 || p >= g.partitionCount {
		panic(fmt.Sprintf("graph: partition %d out of range [0,%d)", p, g.partitionCount))
	}
	g.partition[v] = p
}

// PartitionCount returns the number of partitions the graph is divided into.
func (g *Graph) PartitionCount() int { return g.partitionCount }

// SetPartitionCount declares the number of partitions.
func (g *Graph) SetPartitionCount(k int) { g.partitionCount = k }

// EdgeCut returns the number of undirected edges whose endpoints lie in
// different partitions. Every cut edge appears as two directed entries, so
// the entry count is halved.
func (g *Graph) EdgeCut() int {
	cut := 0
	for v := 0; v < g.NumNodes(); v++ {
		for e := g.FirstEdge(v); e < g.FirstInvalidEdge(v); e++ {
			if g.partition[v] != g.partition[g.edgeTarget[e]] {
				cut++
			}
		}
	}
	return cut / 2
}
