package layout

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
)

func TestIdentity(t *testing.T) {
	g := graph.Cycle(5)
	layout := Identity(g)
	for i, v := range layout {
		if v != i {
			t.Fatalf("Identity[%d] = %d", i, v)
		}
	}
}

func TestRandom_IsPermutation(t *testing.T) {
	g := graph.Cycle(16)
	layout := Random(g, rand.New(rand.NewSource(3)))

	seen := make([]bool, 16)
	for _, v := range layout {
		if v < 0 || v >= 16 || seen[v] {
			t.Fatalf("not a permutation: %v", layout)
		}
		seen[v] = true
	}
}

func TestInvert_SmallExample(t *testing.T) {
	// inverted[i] = vertex at position i
	inverted := []int{2, 0, 1}
	layout := Invert(inverted)

	want := []int{1, 2, 0}
	for i := range want {
		if layout[i] != want[i] {
			t.Fatalf("Invert(%v) = %v, want %v", inverted, layout, want)
		}
	}
}

// TestInvert_Involution checks that inverting twice yields the input for
// arbitrary permutations.
func TestInvert_Involution(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Invert is an involution", prop.ForAll(
		func(seed int64, n int) bool {
			rng := rand.New(rand.NewSource(seed))
			perm := rng.Perm(n)

			twice := Invert(Invert(perm))
			for i := range perm {
				if twice[i] != perm[i] {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}

func TestInvert_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a non-permutation")
		}
	}()
	Invert([]int{0, 0, 1})
}

func TestApply_ReordersTopology(t *testing.T) {
	// path 0-1-2 reversed: the new vertex 0 is the old vertex 2
	g := graph.New()
	g.StartConstruction(3, 4)
	n0 := g.NewNode()
	g.NewEdge(n0, 1)
	n1 := g.NewNode()
	g.NewEdge(n1, 0)
	g.NewEdge(n1, 2)
	n2 := g.NewNode()
	g.NewEdge(n2, 1)
	g.FinishConstruction()

	reversed := Apply(g, []int{2, 1, 0})

	if reversed.NumNodes() != 3 || reversed.NumEdges() != 4 {
		t.Fatalf("Apply changed graph size")
	}
	// new vertex 0 (old 2) must be adjacent to new vertex 1 (old 1)
	if reversed.Degree(0) != 1 || reversed.EdgeTarget(reversed.FirstEdge(0)) != 1 {
		t.Errorf("reordered adjacency wrong for vertex 0")
	}
	if reversed.Degree(1) != 2 {
		t.Errorf("reordered adjacency wrong for vertex 1")
	}
}

func TestApply_CostInvariantUnderIdentity(t *testing.T) {
	g := graph.CycleWithChords(8)
	applied := Apply(g, Identity(g))

	if LogCost(g, Identity(g)) != LogCost(applied, Identity(applied)) {
		t.Error("identity application changed the Log cost")
	}
}
