package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
	"github.com/DanielSeemaier/minloggapa/pkg/layout"
)

func main() {
	random := flag.Bool("r", false, "evaluate a random layout instead of the identity")
	seed := flag.Int64("seed", 0, "RNG seed for -r (0 derives one from the clock)")
	partition := flag.String("partition", "", "also report the edge cut of this partition file")
	quadtree := flag.Bool("quadtree", false, "also compute the quadtree size")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: graph-metrics [flags] <graph>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	g, err := graph.ReadMETIS(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	arrangement := layout.Identity(g)
	if *random {
		if *seed == 0 {
			*seed = time.Now().UnixNano()
		}
		arrangement = layout.Random(g, rand.New(rand.NewSource(*seed)))
	}

	fmt.Printf("nodes = %d\n", g.NumNodes())
	fmt.Printf("edges = %d\n", g.NumEdges()/2)
	fmt.Printf("loggap = %f\n", layout.LogGap(g, arrangement))
	fmt.Printf("log = %f\n", layout.LogCost(g, arrangement))
	fmt.Printf("mla = %f\n", layout.MLACost(g, arrangement))
	if *quadtree {
		fmt.Printf("quadtree = %d\n", layout.QuadtreeSize(g))
	}

	if *partition != "" {
		assignment, err := graph.ReadPartition(*partition)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		if len(assignment) != g.NumNodes() {
			fmt.Fprintf(os.Stderr, "error: partition has %d entries for %d nodes\n", len(assignment), g.NumNodes())
			os.Exit(1)
		}
		blocks := 2
		for _, p := range assignment {
			if p+1 > blocks {
				blocks = p + 1
			}
		}
		g.SetPartitionCount(blocks)
		for v, p := range assignment {
			g.SetPartitionIndex(v, p)
		}
		fmt.Printf("cut = %d\n", g.EdgeCut())
	}
}
