package graph

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ReadRMF loads a graph in the rmf format: the first line is
// "d ghct <nodes> <edges>", then one line "e <source> <target> <weight>" per
// directed edge entry. Node ids start at 1.
func ReadRMF(filename string) (*Graph, error) {
	const op = "ReadRMF"

	f, err := os.Open(filename)
	if err != nil {
		return nil, ioError(op, filename, 0, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	lineno := 1
	if !sc.Scan() {
		return nil, ioError(op, filename, lineno, ErrMalformedHeader)
	}
	fields := strings.Fields(sc.Text())
	if len(fields) != 4 || fields[0] != "d" {
		return nil, ioError(op, filename, lineno, ErrMalformedHeader)
	}
	n, err1 := strconv.Atoi(fields[2])
	m, err2 := strconv.Atoi(fields[3])
	if err1 != nil || err2 != nil {
		return nil, ioError(op, filename, lineno, ErrMalformedHeader)
	}

	// The rmf edge lines are grouped by source but the CSR builder needs them
	// strictly ordered, so buffer the adjacency first.
	adjacency := make([][]int, n)
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields = strings.Fields(line)
		if len(fields) < 3 || fields[0] != "e" {
			return nil, ioError(op, filename, lineno, ErrMalformedLine)
		}
		source, serr := strconv.Atoi(fields[1])
		target, terr := strconv.Atoi(fields[2])
		if serr != nil || terr != nil {
			return nil, ioError(op, filename, lineno, ErrMalformedLine)
		}
		if source < 1 || source > n || target < 1 || target > n {
			return nil, ioError(op, filename, lineno, ErrTargetRange)
		}
		adjacency[source-1] = append(adjacency[source-1], target-1)
	}
	if err := sc.Err(); err != nil {
		return nil, ioError(op, filename, lineno, err)
	}

	g := New()
	g.StartConstruction(n, m)
	for v := 0; v < n; v++ {
		node := g.NewNode()
		for _, u := range adjacency[v] {
			g.NewEdge(node, u)
		}
	}
	g.FinishConstruction()
	return g, nil
}

// ReadColonSep loads a graph from a colon-separated edge list: one
// "source:target" pair per line, 1-indexed. The graph is implicitly
// undirected; the reverse entry of every edge is inserted automatically.
func ReadColonSep(filename string) (*Graph, error) {
	const op = "ReadColonSep"

	f, err := os.Open(filename)
	if err != nil {
		return nil, ioError(op, filename, 0, err)
	}
	defer f.Close()

	adjacency := make(map[int][]int)
	numNodes, numEdges := 0, 0

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		from, to, ok := strings.Cut(line, ":")
		if !ok {
			return nil, ioError(op, filename, lineno, ErrMalformedLine)
		}
		u, uerr := strconv.Atoi(strings.TrimSpace(from))
		v, verr := strconv.Atoi(strings.TrimSpace(to))
		if uerr != nil || verr != nil || u < 1 || v < 1 {
			return nil, ioError(op, filename, lineno, ErrMalformedLine)
		}
		u, v = u-1, v-1

		adjacency[u] = append(adjacency[u], v)
		adjacency[v] = append(adjacency[v], u)
		numEdges += 2
		numNodes = max(numNodes, max(u, v)+1)
	}
	if err := sc.Err(); err != nil {
		return nil, ioError(op, filename, lineno, err)
	}

	g := New()
	g.StartConstruction(numNodes, numEdges)
	for v := 0; v < numNodes; v++ {
		node := g.NewNode()
		neighbors := adjacency[v]
		sort.Ints(neighbors)
		for _, u := range neighbors {
			g.NewEdge(node, u)
		}
	}
	g.FinishConstruction()
	return g, nil
}

// ReadAny dispatches on the format name: "metis", "rmf" or "colonsep".
func ReadAny(format, filename string) (*Graph, error) {
	switch format {
	case "metis":
		return ReadMETIS(filename)
	case "rmf":
		return ReadRMF(filename)
	case "colonsep":
		return ReadColonSep(filename)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
