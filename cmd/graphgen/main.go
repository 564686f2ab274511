package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
)

func main() {
	typ := flag.String("type", "", "graph type: clique, biclique, increasing_cliques, cycle_with_chords, rect, cycle")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "usage: graphgen -type=TYPE output TYPE_OPTIONS\n")
		fmt.Fprintf(out, "\tclique: complete graph; TYPE_OPTIONS: size\n")
		fmt.Fprintf(out, "\tbiclique: two cliques with one or zero edges in between; TYPE_OPTIONS: size0 size1 connect\n")
		fmt.Fprintf(out, "\tincreasing_cliques: chained cliques of sizes 1..count; TYPE_OPTIONS: count\n")
		fmt.Fprintf(out, "\tcycle_with_chords: ring with opposite-vertex chords; TYPE_OPTIONS: size\n")
		fmt.Fprintf(out, "\trect: square grid; TYPE_OPTIONS: size\n")
		fmt.Fprintf(out, "\tcycle: ring; TYPE_OPTIONS: size\n")
		fmt.Fprintf(out, "example: graphgen -type=clique out.graph 100\n")
	}
	flag.Parse()

	if *typ == "" || flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	output := flag.Arg(0)
	args := flag.Args()[1:]

	g, err := generate(*typ, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		flag.Usage()
		os.Exit(1)
	}

	if err := graph.WriteMETIS(g, output); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s: %d nodes, %d edges\n", output, g.NumNodes(), g.NumEdges()/2)
}

func generate(typ string, args []string) (*graph.Graph, error) {
	ints := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("bad argument %q", a)
		}
		ints[i] = v
	}

	switch typ {
	case "clique":
		if len(ints) != 1 {
			return nil, fmt.Errorf("clique needs a size")
		}
		return graph.Clique(ints[0]), nil
	case "biclique":
		if len(ints) != 3 {
			return nil, fmt.Errorf("biclique needs size0, size1 and connect")
		}
		return graph.Biclique(ints[0], ints[1], ints[2] == 1), nil
	case "increasing_cliques":
		if len(ints) != 1 {
			return nil, fmt.Errorf("increasing_cliques needs a count")
		}
		return graph.IncreasingCliques(ints[0]), nil
	case "cycle_with_chords":
		if len(ints) != 1 {
			return nil, fmt.Errorf("cycle_with_chords needs a size")
		}
		if ints[0]%2 != 0 {
			return nil, fmt.Errorf("cycle_with_chords needs an even size")
		}
		return graph.CycleWithChords(ints[0]), nil
	case "rect":
		if len(ints) != 1 {
			return nil, fmt.Errorf("rect needs a size")
		}
		return graph.Rect(ints[0]), nil
	case "cycle":
		if len(ints) != 1 {
			return nil, fmt.Errorf("cycle needs a size")
		}
		if ints[0] < 3 {
			return nil, fmt.Errorf("cycle needs at least 3 nodes")
		}
		return graph.Cycle(ints[0]), nil
	}
	return nil, fmt.Errorf("unknown type %q", typ)
}
