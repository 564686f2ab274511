package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
	"github.com/DanielSeemaier/minloggapa/pkg/layout"
)

func main() {
	random := flag.Bool("r", false, "permute randomly")
	seed := flag.Int64("seed", 0, "RNG seed for -r (0 derives one from the clock)")
	layoutFile := flag.String("layout", "", "apply the layout from this file (one position per line)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: permute [flags] <input> <output>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 || (*random == (*layoutFile != "")) {
		flag.Usage()
		os.Exit(1)
	}

	g, err := graph.ReadMETIS(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	var arrangement []int
	if *random {
		if *seed == 0 {
			*seed = time.Now().UnixNano()
		}
		arrangement = layout.Random(g, rand.New(rand.NewSource(*seed)))
	} else {
		arrangement, err = readLayout(*layoutFile, g.NumNodes())
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	reordered := layout.Apply(g, arrangement)
	if err := graph.WriteMETIS(reordered, flag.Arg(1)); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// readLayout reads one position per line and checks it forms a permutation
// of [0,n).
func readLayout(filename string, n int) ([]int, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	arrangement := make([]int, 0, n)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		pos, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("bad layout line %q", line)
		}
		arrangement = append(arrangement, pos)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(arrangement) != n {
		return nil, fmt.Errorf("layout has %d entries for %d nodes", len(arrangement), n)
	}

	seen := make([]bool, n)
	for _, pos := range arrangement {
		if pos < 0 || pos >= n || seen[pos] {
			return nil, fmt.Errorf("layout is not a permutation of [0,%d)", n)
		}
		seen[pos] = true
	}
	return arrangement, nil
}
