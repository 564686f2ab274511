package graph

import "fmt"

// Clique generates a complete graph on size vertices.
func Clique(size int) *Graph {
	g := New()
	g.StartConstruction(size, size*(size-1))
	for v := 0; v < size; v++ {
		node := g.NewNode()
		for u := 0; u < size; u++ {
			if u == v {
				continue
			}
			g.NewEdge(node, u)
		}
	}
	g.FinishConstruction()
	return g
}

// Biclique generates two cliques of size0 and size1 vertices. If connected,
// a single bridge edge joins vertex 0 of the first clique to vertex size0 of
// the second.
func Biclique(size0, size1 int, connected bool) *Graph {
	bridge := 0
	if connected {
		bridge = 2
	}

	g := New()
	g.StartConstruction(size0+size1, size0*(size0-1)+size1*(size1-1)+bridge)
	for v := 0; v < size0; v++ {
		node := g.NewNode()
		for u := 0; u < size0; u++ {
			if u == v {
				continue
			}
			g.NewEdge(node, u)
		}
		if v == 0 && connected {
			g.NewEdge(node, size0)
		}
	}
	for v := size0; v < size0+size1; v++ {
		node := g.NewNode()
		for u := size0; u < size0+size1; u++ {
			if u == v {
				continue
			}
			g.NewEdge(node, u)
		}
		if v == size0 && connected {
			g.NewEdge(node, 0)
		}
	}
	g.FinishConstruction()
	return g
}

// IncreasingCliques generates count cliques of sizes 1..count chained
// together: the last vertex of each clique is joined to the first vertex of
// the next.
func IncreasingCliques(count int) *Graph {
	if count < 1 {
		panic("graph: IncreasingCliques needs at least one clique")
	}

	numNodes := count * (count + 1) / 2
	numEdges := 2 * (count - 1)
	for clique := 1; clique <= count; clique++ {
		numEdges += clique * (clique - 1)
	}

	g := New()
	g.StartConstruction(numNodes, numEdges)
	offset := 0
	for clique := 1; clique <= count; clique++ {
		for v := offset; v < offset+clique; v++ {
			node := g.NewNode()
			if v == offset && clique > 1 {
				g.NewEdge(node, v-1)
			}
			if v == offset+clique-1 && clique < count {
				g.NewEdge(node, v+1)
			}
			for u := offset; u < offset+clique; u++ {
				if u == v {
					continue
				}
				g.NewEdge(node, u)
			}
		}
		offset += clique
	}
	g.FinishConstruction()
	return g
}

// Cycle generates a ring on size vertices. Size must be at least 3.
func Cycle(size int) *Graph {
	if size < 3 {
		panic(fmt.Sprintf("graph: cycle size %d < 3", size))
	}

	g := New()
	g.StartConstruction(size, 2*size)
	for v := 0; v < size; v++ {
		node := g.NewNode()
		prev := v - 1
		if v == 0 {
			prev = size - 1
		}
		g.NewEdge(node, prev)
		g.NewEdge(node, (v+1)%size)
	}
	g.FinishConstruction()
	return g
}

// CycleWithChords generates a ring on size vertices where every vertex is
// additionally joined to the vertex opposite it. Size must be even.
func CycleWithChords(size int) *Graph {
	if size%2 != 0 {
		panic(fmt.Sprintf("graph: cycle-with-chords size %d is odd", size))
	}

	g := New()
	g.StartConstruction(size, 3*size)
	for v := 0; v < size; v++ {
		node := g.NewNode()
		prev := v - 1
		if v == 0 {
			prev = size - 1
		}
		g.NewEdge(node, prev)
		g.NewEdge(node, (v+1)%size)
		if v < size/2 {
			g.NewEdge(node, v+size/2)
		} else {
			g.NewEdge(node, v-size/2)
		}
	}
	g.FinishConstruction()
	return g
}

// Rect generates a size x size grid graph.
func Rect(size int) *Graph {
	g := New()
	g.StartConstruction(size*size, 4*(size-1)*size)
	for v := 0; v < size*size; v++ {
		node := g.NewNode()
		x, y := v%size, v/size
		if x > 0 {
			g.NewEdge(node, (x-1)+y*size)
		}
		if x < size-1 {
			g.NewEdge(node, (x+1)+y*size)
		}
		if y > 0 {
			g.NewEdge(node, x+(y-1)*size)
		}
		if y < size-1 {
			g.NewEdge(node, x+(y+1)*size)
		}
	}
	g.FinishConstruction()
	return g
}
