package graph

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadMETIS loads a graph in the text METIS format: the header line is
// "n m [fmt]" where n counts vertices, m counts undirected edges and the
// optional fmt flags node weights (10) and edge weights (01). The following
// n lines list the 1-indexed neighbors of vertex i, with weights interleaved
// according to fmt. Lines starting with '%' are comments.
func ReadMETIS(filename string) (*Graph, error) {
	const op = "ReadMETIS"

	f, err := os.Open(filename)
	if err != nil {
		return nil, ioError(op, filename, 0, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	lineno := 0
	header, lineno, err := nextLine(sc, lineno)
	if err != nil {
		return nil, ioError(op, filename, lineno, err)
	}

	fields := strings.Fields(header)
	if len(fields) < 2 || len(fields) > 3 {
		return nil, ioError(op, filename, lineno, ErrMalformedHeader)
	}
	n, err1 := strconv.Atoi(fields[0])
	m, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || n < 0 || m < 0 {
		return nil, ioError(op, filename, lineno, ErrMalformedHeader)
	}

	hasNodeWeights, hasEdgeWeights := false, false
	if len(fields) == 3 {
		switch fields[2] {
		case "0", "00":
		case "1", "01":
			hasEdgeWeights = true
		case "10":
			hasNodeWeights = true
		case "11":
			hasNodeWeights = true
			hasEdgeWeights = true
		default:
			return nil, ioError(op, filename, lineno, ErrMalformedHeader)
		}
	}

	g := New()
	g.StartConstruction(n, 2*m)

	for v := 0; v < n; v++ {
		var line string
		line, lineno, err = nextLine(sc, lineno)
		if err != nil {
			return nil, ioError(op, filename, lineno, err)
		}

		node := g.NewNode()
		tokens := strings.Fields(line)
		i := 0
		if hasNodeWeights {
			if len(tokens) == 0 {
				return nil, ioError(op, filename, lineno, ErrMalformedLine)
			}
			w, werr := strconv.Atoi(tokens[0])
			if werr != nil {
				return nil, ioError(op, filename, lineno, ErrMalformedLine)
			}
			g.SetNodeWeight(node, w)
			i++
		}
		for i < len(tokens) {
			target, terr := strconv.Atoi(tokens[i])
			if terr != nil {
				return nil, ioError(op, filename, lineno, ErrMalformedLine)
			}
			if target < 1 || target > n {
				return nil, ioError(op, filename, lineno, ErrTargetRange)
			}
			i++
			weight := 1
			if hasEdgeWeights {
				if i >= len(tokens) {
					return nil, ioError(op, filename, lineno, ErrMalformedLine)
				}
				w, werr := strconv.Atoi(tokens[i])
				if werr != nil {
					return nil, ioError(op, filename, lineno, ErrMalformedLine)
				}
				weight = w
				i++
			}
			e := g.NewEdge(node, target-1)
			g.SetEdgeWeight(e, weight)
		}
	}

	g.FinishConstruction()
	return g, nil
}

// WriteMETIS writes the graph in the METIS format with unit weights.
func WriteMETIS(g *Graph, filename string) error {
	return writeMETIS(g, filename, false)
}

// WriteMETISWeighted writes the graph in the METIS format including node and
// edge weights (fmt 11).
func WriteMETISWeighted(g *Graph, filename string) error {
	return writeMETIS(g, filename, true)
}

func writeMETIS(g *Graph, filename string, weighted bool) error {
	const op = "WriteMETIS"

	f, err := os.Create(filename)
	if err != nil {
		return ioError(op, filename, 0, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if weighted {
		fmt.Fprintf(w, "%d %d 11\n", g.NumNodes(), g.NumEdges()/2)
	} else {
		fmt.Fprintf(w, "%d %d\n", g.NumNodes(), g.NumEdges()/2)
	}

	for v := 0; v < g.NumNodes(); v++ {
		first := true
		if weighted {
			fmt.Fprintf(w, "%d", g.NodeWeight(v))
			first = false
		}
		for e := g.FirstEdge(v); e < g.FirstInvalidEdge(v); e++ {
			if !first {
				fmt.Fprint(w, " ")
			}
			first = false
			fmt.Fprintf(w, "%d", g.EdgeTarget(e)+1)
			if weighted {
				fmt.Fprintf(w, " %d", g.EdgeWeight(e))
			}
		}
		fmt.Fprintln(w)
	}

	if err := w.Flush(); err != nil {
		return ioError(op, filename, 0, err)
	}
	return nil
}

// WritePartition writes the partition index of every vertex, one per line.
func WritePartition(g *Graph, filename string) error {
	const op = "WritePartition"

	f, err := os.Create(filename)
	if err != nil {
		return ioError(op, filename, 0, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for v := 0; v < g.NumNodes(); v++ {
		fmt.Fprintln(w, g.PartitionIndex(v))
	}
	if err := w.Flush(); err != nil {
		return ioError(op, filename, 0, err)
	}
	return nil
}

// ReadPartition loads a partition file: the i-th line holds the partition of
// vertex i.
func ReadPartition(filename string) ([]int, error) {
	const op = "ReadPartition"

	f, err := os.Open(filename)
	if err != nil {
		return nil, ioError(op, filename, 0, err)
	}
	defer f.Close()

	var partition []int
	sc := bufio.NewScanner(f)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		p, perr := strconv.Atoi(line)
		if perr != nil {
			return nil, ioError(op, filename, lineno, ErrMalformedLine)
		}
		partition = append(partition, p)
	}
	if err := sc.Err(); err != nil {
		return nil, ioError(op, filename, lineno, err)
	}
	return partition, nil
}

// nextLine returns the next non-comment line.
func nextLine(sc *bufio.Scanner, lineno int) (string, int, error) {
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "%") {
			continue
		}
		return line, lineno, nil
	}
	if err := sc.Err(); err != nil {
		return "", lineno, err
	}
	return "", lineno, ErrMalformedLine
}
