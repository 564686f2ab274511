package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
)

func main() {
	format := flag.String("format", "", "input format: rmf or colonsep")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: x2metis -format=[rmf|colonsep] input output\n")
	}
	flag.Parse()

	if flag.NArg() != 2 || (*format != "rmf" && *format != "colonsep") {
		flag.Usage()
		os.Exit(1)
	}

	g, err := graph.ReadAny(*format, flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "the format specific loader reported:")
		fmt.Fprintln(os.Stderr, "\t", err)
		fmt.Fprintln(os.Stderr, "did you specify the appropriate file format?")
		os.Exit(1)
	}

	fmt.Printf("|V| = %d\n", g.NumNodes())
	fmt.Printf("|E| = %d\n", g.NumEdges()/2)

	if err := graph.WriteMETISWeighted(g, flag.Arg(1)); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
