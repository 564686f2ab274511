package querygraph

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
)

// buildGraph constructs a CSR graph from an undirected edge list.
func buildGraph(t *testing.T, n int, edges [][2]int) *graph.Graph {
	t.Helper()
	return buildGraphRaw(n, edges)
}

func buildGraphRaw(n int, edges [][2]int) *graph.Graph {
	adjacency := make([][]int, n)
	for _, e := range edges {
		adjacency[e[0]] = append(adjacency[e[0]], e[1])
		adjacency[e[1]] = append(adjacency[e[1]], e[0])
	}

	g := graph.New()
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

func TestConstructQueryEdges_MirrorsDataEdges(t *testing.T) {
	g := buildGraph(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	qg := New(g)
	qg.ConstructQueryEdges()

	if qg.NumQueryNodes() != g.NumNodes() {
		t.Fatalf("expected %d query nodes, got %d", g.NumNodes(), qg.NumQueryNodes())
	}
	if qg.NumQueryEdges() != g.NumEdges() {
		t.Fatalf("expected %d query edges, got %d", g.NumEdges(), qg.NumQueryEdges())
	}

	// for every directed data edge (u,v) exactly one query edge (u,v)
	for u := 0; u < g.NumNodes(); u++ {
		counts := map[int]int{}
		for e := qg.FirstQueryEdge(u); e < qg.FirstInvalidQueryEdge(u); e++ {
			counts[qg.QueryEdgeTarget(e)]++
		}
		for e := g.FirstEdge(u); e < g.FirstInvalidEdge(u); e++ {
			v := g.EdgeTarget(e)
			if counts[v] != 1 {
				t.Errorf("query edge (%d,%d) appears %d times, want 1", u, v, counts[v])
			}
		}
	}
}

func TestAddQueryEdge_GapFilling(t *testing.T) {
	g := buildGraph(t, 4, nil)
	qg := New(g)

	// only query node 2 has edges; offsets of skipped nodes replicate
	qg.StartConstruction(4)
	qg.AddQueryEdge(2, 0)
	qg.AddQueryEdge(2, 3)
	qg.FinishConstruction()

	for q := 0; q < 4; q++ {
		want := 0
		if q == 2 {
			want = 2
		}
		got := qg.FirstInvalidQueryEdge(q) - qg.FirstQueryEdge(q)
		if got != want {
			t.Errorf("query node %d has %d edges, want %d", q, got, want)
		}
	}
}

func TestAddQueryEdge_DecreasingSourcePanics(t *testing.T) {
	g := buildGraph(t, 3, nil)
	qg := New(g)
	qg.StartConstruction(3)
	qg.AddQueryEdge(2, 0)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for decreasing source id")
		}
	}()
	qg.AddQueryEdge(1, 0)
}

func TestCountQueryNodeDegrees(t *testing.T) {
	g := buildGraph(t, 4, [][2]int{{0, 1}, {0, 2}, {0, 3}})
	qg := New(g)
	qg.ConstructQueryEdges()

	g.SetPartitionIndex(1, 0)
	g.SetPartitionIndex(2, 1)
	g.SetPartitionIndex(3, 1)

	degrees := qg.CountQueryNodeDegrees(0)
	if degrees[0] != 1 || degrees[1] != 2 {
		t.Errorf("degrees = %v, want [1 2]", degrees)
	}
}

func TestBuildPartitionInducedSubgraphs_DropsCutEdges(t *testing.T) {
	// path 0-1-2-3 split down the middle; the middle edge becomes query-only
	g := buildGraph(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	qg := New(g)
	qg.ConstructQueryEdges()
	g.SetPartitionIndex(2, 1)
	g.SetPartitionIndex(3, 1)

	subgraphs, maps := qg.BuildPartitionInducedSubgraphs()

	if subgraphs[0].DataGraph().NumNodes() != 2 || subgraphs[1].DataGraph().NumNodes() != 2 {
		t.Fatalf("unexpected subgraph sizes")
	}
	// each side keeps exactly its internal edge
	if subgraphs[0].DataGraph().NumEdges() != 2 || subgraphs[1].DataGraph().NumEdges() != 2 {
		t.Errorf("cut edge leaked into a data graph")
	}
	// query edges are preserved in total
	if subgraphs[0].NumQueryEdges()+subgraphs[1].NumQueryEdges() != qg.NumQueryEdges() {
		t.Errorf("query edges lost during split")
	}
	// id maps translate back to the parent
	for i := 0; i < 2; i++ {
		for newID, oldID := range maps[i] {
			if g.PartitionIndex(oldID) != i {
				t.Errorf("map %d entry %d points to vertex of wrong partition", i, newID)
			}
		}
	}
	// children start unpartitioned
	for i := 0; i < 2; i++ {
		sizes := subgraphs[i].CountPartitionSizes()
		if sizes[1] != 0 {
			t.Errorf("subgraph %d has vertices in partition 1", i)
		}
	}
}

func TestAdjacentQueryNodes_DelegatesToParent(t *testing.T) {
	// cut vertex 1's neighborhood must stay visible from the subgraph
	g := buildGraph(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	qg := New(g)
	qg.ConstructQueryEdges()
	g.SetPartitionIndex(2, 1)
	g.SetPartitionIndex(3, 1)

	subgraphs, maps := qg.BuildPartitionInducedSubgraphs()

	// find vertex 1 in subgraph 0
	new1 := -1
	for newID, oldID := range maps[0] {
		if oldID == 1 {
			new1 = newID
		}
	}
	if new1 == -1 {
		t.Fatal("vertex 1 missing from subgraph 0")
	}

	adjacent := subgraphs[0].AdjacentQueryNodes(new1)
	if len(adjacent) != 2 {
		t.Fatalf("expected 2 adjacent query nodes, got %d", len(adjacent))
	}
	seen := map[int]bool{}
	for _, q := range adjacent {
		seen[q] = true
	}
	// query ids are root data ids: 0 (same side) and 2 (cut away)
	if !seen[0] || !seen[2] {
		t.Errorf("adjacent query nodes = %v, want {0, 2}", adjacent)
	}
	if subgraphs[0].NumAdjacentQueryNodes(new1) != 2 {
		t.Errorf("NumAdjacentQueryNodes disagrees with AdjacentQueryNodes")
	}
}

func TestBuildPartitionInducedSubgraphs_MergeRestoresMembership(t *testing.T) {
	g := buildGraph(t, 6, [][2]int{{0, 1}, {1, 2}, {3, 4}, {4, 5}, {2, 3}})
	qg := New(g)
	qg.ConstructQueryEdges()
	for v := 3; v < 6; v++ {
		g.SetPartitionIndex(v, 1)
	}

	_, maps := qg.BuildPartitionInducedSubgraphs()

	// merging through the identity maps reconstructs every vertex's side
	membership := make([]int, 6)
	for i := 0; i < 2; i++ {
		for _, oldID := range maps[i] {
			membership[oldID] = i
		}
	}
	for v := 0; v < 6; v++ {
		if membership[v] != g.PartitionIndex(v) {
			t.Errorf("vertex %d reconstructed in partition %d, want %d", v, membership[v], g.PartitionIndex(v))
		}
	}
}

// TestSplitInvariants verifies the counting invariants of the bisection
// split on random graphs and random partitions.
func TestSplitInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("split preserves node and query-edge counts", prop.ForAll(
		func(n int, rawEdges []int, rawPartition []int) bool {
			edges := make([][2]int, 0, len(rawEdges)/2)
			for i := 0; i+1 < len(rawEdges); i += 2 {
				u, v := rawEdges[i]%n, rawEdges[i+1]%n
				if u != v {
					edges = append(edges, [2]int{u, v})
				}
			}

			g := buildGraphRaw(n, edges)
			qg := New(g)
			qg.ConstructQueryEdges()
			for v := 0; v < n; v++ {
				if len(rawPartition) > 0 && rawPartition[v%len(rawPartition)]%2 == 1 {
					g.SetPartitionIndex(v, 1)
				}
			}

			subgraphs, _ := qg.BuildPartitionInducedSubgraphs()

			nodesOK := subgraphs[0].DataGraph().NumNodes()+subgraphs[1].DataGraph().NumNodes() == n
			queryNodesOK := subgraphs[0].NumQueryNodes() == qg.NumQueryNodes() &&
				subgraphs[1].NumQueryNodes() == qg.NumQueryNodes()
			queryEdgesOK := subgraphs[0].NumQueryEdges()+subgraphs[1].NumQueryEdges() == qg.NumQueryEdges()
			return nodesOK && queryNodesOK && queryEdgesOK
		},
		gen.IntRange(2, 24),
		gen.SliceOfN(40, gen.IntRange(0, 1<<20)),
		gen.SliceOfN(24, gen.IntRange(0, 1)),
	))

	properties.Property("child query neighborhoods are subsets of the parent's", prop.ForAll(
		func(n int, rawEdges []int) bool {
			edges := make([][2]int, 0, len(rawEdges)/2)
			for i := 0; i+1 < len(rawEdges); i += 2 {
				u, v := rawEdges[i]%n, rawEdges[i+1]%n
				if u != v {
					edges = append(edges, [2]int{u, v})
				}
			}

			g := buildGraphRaw(n, edges)
			qg := New(g)
			qg.ConstructQueryEdges()
			for v := n / 2; v < n; v++ {
				g.SetPartitionIndex(v, 1)
			}

			subgraphs, maps := qg.BuildPartitionInducedSubgraphs()

			for i := 0; i < 2; i++ {
				for newID := 0; newID < subgraphs[i].DataGraph().NumNodes(); newID++ {
					parentSet := map[int]bool{}
					for _, q := range qg.AdjacentQueryNodes(maps[i][newID]) {
						parentSet[q] = true
					}
					for _, q := range subgraphs[i].AdjacentQueryNodes(newID) {
						if !parentSet[q] {
							return false
						}
					}
				}
			}
			return true
		},
		gen.IntRange(2, 24),
		gen.SliceOfN(40, gen.IntRange(0, 1<<20)),
	))

	properties.TestingRun(t)
}
