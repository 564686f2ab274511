// Package layout provides linear arrangements of graph vertices and the
// compression-oriented cost functions used to evaluate them.
package layout

import (
	"fmt"
	"math/rand"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
)

// Identity returns the identity layout: vertex i at position i.
func Identity(g *graph.Graph) []int {
	layout := make([]int, g.NumNodes())
	for i := range layout {
		layout[i] = i
	}
	return layout
}

// Random returns a uniformly random layout drawn from rng.
func Random(g *graph.Graph, rng *rand.Rand) []int {
	layout := Identity(g)
	rng.Shuffle(len(layout), func(i, j int) {
		layout[i], layout[j] = layout[j], layout[i]
	})
	return layout
}

// Invert converts between a layout and its inverse: given inverted[i] =
// vertex at position i, it returns layout[v] = position of v, and vice
// versa. Applying it twice yields the input again.
func Invert(inverted []int) []int {
	layout := make([]int, len(inverted))
	for i := range layout {
		layout[i] = -1
	}
	for i, v := range inverted {
		if layout[v] != -1 {
			panic(fmt.Sprintf("layout: position %d assigned twice", v))
		}
		layout[v] = i
	}
	return layout
}

// Apply rebuilds the graph under the layout: vertex v of the result is
// vertex layout^-1(v) of the original. Node and edge weights are reset to
// one; callers that need weights preserved must rebuild them separately.
func Apply(original *graph.Graph, layout []int) *graph.Graph {
	inverted := Invert(layout)

	reordered := graph.New()
	reordered.StartConstruction(original.NumNodes(), original.NumEdges())
	for v := 0; v < original.NumNodes(); v++ {
		node := reordered.NewNode()
		old := inverted[v]
		for e := original.FirstEdge(old); e < original.FirstInvalidEdge(old); e++ {
			reordered.NewEdge(node, layout[original.EdgeTarget(e)])
		}
	}
	reordered.FinishConstruction()
	return reordered
}
