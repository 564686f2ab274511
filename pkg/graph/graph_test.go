package graph

import "testing"

// buildGraph constructs a CSR graph from an undirected edge list.
func buildGraph(t *testing.T, n int, edges [][2]int) *Graph {
	t.Helper()

	adjacency := make([][]int, n)
	for _, e := range edges {
		adjacency[e[0]] = append(adjacency[e[0]], e[1])
		adjacency[e[1]] = append(adjacency[e[1]], e[0])
	}

	g := New()
	g.StartConstruction(n, 2*len(edges))
	for v := 0; v < n; v++ {
		node := g.NewNode()
		for _, u := range adjacency[v] {
			g.NewEdge(node, u)
		}
	}
	g.FinishConstruction()
	return g
}

func TestConstruction_Counts(t *testing.T) {
	g := buildGraph(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})

	if g.NumNodes() != 4 {
		t.Errorf("expected 4 nodes, got %d", g.NumNodes())
	}
	if g.NumEdges() != 6 {
		t.Errorf("expected 6 directed edge entries, got %d", g.NumEdges())
	}
}

func TestConstruction_CSROffsets(t *testing.T) {
	g := buildGraph(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})

	// vertex 1 has neighbors 0 and 2
	if got := g.Degree(1); got != 2 {
		t.Fatalf("expected degree 2 for vertex 1, got %d", got)
	}
	targets := map[int]bool{}
	for e := g.FirstEdge(1); e < g.FirstInvalidEdge(1); e++ {
		targets[g.EdgeTarget(e)] = true
	}
	if !targets[0] || !targets[2] {
		t.Errorf("expected neighbors {0, 2} for vertex 1, got %v", targets)
	}

	// offsets must be monotonic and cover all edge entries
	last := 0
	for v := 0; v < g.NumNodes(); v++ {
		if g.FirstEdge(v) != last {
			t.Errorf("offset gap at vertex %d", v)
		}
		if g.FirstInvalidEdge(v) < g.FirstEdge(v) {
			t.Errorf("decreasing offsets at vertex %d", v)
		}
		last = g.FirstInvalidEdge(v)
	}
	if last != g.NumEdges() {
		t.Errorf("offsets end at %d, expected %d", last, g.NumEdges())
	}
}

func TestConstruction_IsolatedVertex(t *testing.T) {
	g := buildGraph(t, 3, [][2]int{{0, 1}})

	if got := g.Degree(2); got != 0 {
		t.Errorf("expected degree 0 for isolated vertex, got %d", got)
	}
}

func TestConstruction_WrongNodeCountPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic when finishing with missing nodes")
		}
	}()

	g := New()
	g.StartConstruction(2, 0)
	g.NewNode()
	g.FinishConstruction()
}

func TestEdgeCut(t *testing.T) {
	// a path 0-1-2-3 partitioned down the middle cuts one edge
	g := buildGraph(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	g.SetPartitionIndex(0, 0)
	g.SetPartitionIndex(1, 0)
	g.SetPartitionIndex(2, 1)
	g.SetPartitionIndex(3, 1)

	if got := g.EdgeCut(); got != 1 {
		t.Errorf("expected cut 1, got %d", got)
	}

	// everything on one side cuts nothing
	for v := 0; v < 4; v++ {
		g.SetPartitionIndex(v, 0)
	}
	if got := g.EdgeCut(); got != 0 {
		t.Errorf("expected cut 0, got %d", got)
	}
}

func TestPartitionIndex_RangeChecked(t *testing.T) {
	g := buildGraph(t, 2, [][2]int{{0, 1}})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range partition")
		}
	}()
	g.SetPartitionIndex(0, 2)
}

func TestWeights_DefaultToOne(t *testing.T) {
	g := buildGraph(t, 2, [][2]int{{0, 1}})

	if g.NodeWeight(0) != 1 || g.NodeWeight(1) != 1 {
		t.Error("expected unit node weights")
	}
	if g.EdgeWeight(0) != 1 {
		t.Error("expected unit edge weights")
	}

	g.SetNodeWeight(0, 5)
	if g.NodeWeight(0) != 5 {
		t.Error("node weight not updated")
	}
}
