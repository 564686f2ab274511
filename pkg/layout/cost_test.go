package layout

import (
	"math"
	"math/rand"
	"testing"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
)

func TestLog2Bits(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{1, 1},
		{2, 2},
		{4, 3},
		{0.5, 0},
	}
	for _, c := range cases {
		if got := Log2Bits(c.in); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Log2Bits(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}

func TestLogCost_Cycle10Identity(t *testing.T) {
	// on C_10 under the identity, 18 entries span distance 1 and the two
	// wrap-around entries span distance 9: (18*1 + 2*4) / 20 = 1.3
	g := graph.Cycle(10)
	got := LogCost(g, Identity(g))
	if math.Abs(got-1.3) > 1e-9 {
		t.Errorf("LogCost = %f, want 1.3", got)
	}
}

func TestLogCost_TwoVertices(t *testing.T) {
	g := graph.Clique(2)
	got := LogCost(g, Identity(g))
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("LogCost = %f, want 1.0", got)
	}
}

func TestLogCost_Clique5PermutationInvariant(t *testing.T) {
	// every layout of a complete graph has the same Log cost
	g := graph.Clique(5)
	want := LogCost(g, Identity(g))

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		got := LogCost(g, Random(g, rng))
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("LogCost = %f under a permutation, want %f", got, want)
		}
	}
}

func TestLogGap_NonNegative(t *testing.T) {
	g := graph.CycleWithChords(16)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		if got := LogGap(g, Random(g, rng)); got < 0 {
			t.Fatalf("LogGap = %f, want >= 0", got)
		}
		if got := LogCost(g, Random(g, rng)); got < 0 {
			t.Fatalf("LogCost = %f, want >= 0", got)
		}
	}
}

func TestLogGap_PathIdentity(t *testing.T) {
	// on a path under the identity the neighbors of inner vertex i are
	// i-1 and i+1: one gap of 2 -> cost 2 bits; end vertices have a
	// single neighbor and contribute no gap.
	g := graph.New()
	g.StartConstruction(4, 6)
	for v := 0; v < 4; v++ {
		node := g.NewNode()
		if v > 0 {
			g.NewEdge(node, v-1)
		}
		if v < 3 {
			g.NewEdge(node, v+1)
		}
	}
	g.FinishConstruction()

	// two inner vertices, each one gap of 2: (2+2)/2 = 2
	got := LogGap(g, Identity(g))
	if math.Abs(got-2.0) > 1e-9 {
		t.Errorf("LogGap = %f, want 2.0", got)
	}
}

func TestMLACost_Cycle4Identity(t *testing.T) {
	g := graph.Cycle(4)
	// distances 1,1,1,1,... and two wrap entries of 3
	// entries: 6 of distance 1, 2 of distance 3 -> (6+6)/8 = 1.5
	got := MLACost(g, Identity(g))
	if math.Abs(got-1.5) > 1e-9 {
		t.Errorf("MLACost = %f, want 1.5", got)
	}
}

func TestPartitionCost_UniformBisection(t *testing.T) {
	// C_4 split into {0,1} and {2,3}: query node degrees are known, so
	// the cost can be written out directly
	g := graph.Cycle(4)
	qg := querygraph.New(g)
	qg.ConstructQueryEdges()
	g.SetPartitionIndex(2, 1)
	g.SetPartitionIndex(3, 1)

	want := 0.0
	for q := 0; q < 4; q++ {
		degrees := qg.CountQueryNodeDegrees(q)
		for p := 0; p < 2; p++ {
			if degrees[p] > 0 {
				want += float64(degrees[p]) * Log2Bits(2.0/float64(degrees[p]+1))
			}
		}
	}

	got := PartitionCost(qg)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("PartitionCost = %f, want %f", got, want)
	}
}

func TestPartitionCost_EmptyPartitionContributesZero(t *testing.T) {
	g := graph.Clique(3)
	qg := querygraph.New(g)
	qg.ConstructQueryEdges()
	// all vertices in partition 0: the partition-1 terms must vanish
	got := PartitionCost(qg)

	want := 0.0
	for q := 0; q < 3; q++ {
		want += 2 * Log2Bits(3.0/3.0)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("PartitionCost = %f, want %f", got, want)
	}
}

func TestIsBoundary(t *testing.T) {
	g := graph.Cycle(4)
	g.SetPartitionIndex(2, 1)
	g.SetPartitionIndex(3, 1)

	// 0 neighbors 1 (same side) and 3 (other side)
	if !IsBoundary(g, 0) {
		t.Error("vertex 0 should be a boundary vertex")
	}

	// in an all-zero partition nothing is boundary
	g.SetPartitionIndex(2, 0)
	g.SetPartitionIndex(3, 0)
	for v := 0; v < 4; v++ {
		if IsBoundary(g, v) {
			t.Errorf("vertex %d should not be a boundary vertex", v)
		}
	}
}

func TestQuadtreeSize_Clique(t *testing.T) {
	// K_2: the 2x2 matrix has two off-diagonal ones -> a single subdivided
	// level of 4 cells
	g := graph.Clique(2)
	if got := QuadtreeSize(g); got != 4 {
		t.Errorf("QuadtreeSize(K_2) = %d, want 4", got)
	}

	// an edgeless graph costs nothing
	empty := graph.New()
	empty.StartConstruction(4, 0)
	for i := 0; i < 4; i++ {
		empty.NewNode()
	}
	empty.FinishConstruction()
	if got := QuadtreeSize(empty); got != 0 {
		t.Errorf("QuadtreeSize(edgeless) = %d, want 0", got)
	}
}
