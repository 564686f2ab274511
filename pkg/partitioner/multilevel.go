package partitioner

import (
	"math/rand"

	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
	"github.com/DanielSeemaier/minloggapa/pkg/report"
)

// Preset selects how much work the multilevel partitioner invests per
// bisection. The social presets assume power-law degree distributions and
// trade cut quality for speed.
type Preset string

const (
	PresetStandard     Preset = "standard"
	PresetEco          Preset = "eco"
	PresetFastSocial   Preset = "fastsocial"
	PresetEcoSocial    Preset = "ecosocial"
	PresetStrongSocial Preset = "strongsocial"
)

// restarts maps a preset to the number of independent region-growing
// attempts; the best cut wins.
func (p Preset) restarts() int {
	switch p {
	case PresetFastSocial:
		return 3
	case PresetEco, PresetEcoSocial:
		return 8
	case PresetStrongSocial:
		return 16
	default:
		return 12
	}
}

// MultilevelPartitioner is the built-in stand-in for an external multilevel
// bisection backend. It grows partition 1 by breadth-first search from a
// random start vertex until the balance target is reached, retrying from
// several start vertices and keeping the assignment with the smallest edge
// cut. The imbalance percentage is applied on every recursion level whose
// index is a multiple of imbalanceLevel; other levels use the default 3%.
type MultilevelPartitioner struct {
	imbalance      int
	imbalanceLevel int
	preset         Preset
	rng            *rand.Rand
}

// NewMultilevelPartitioner creates a partitioner with the given imbalance
// percentage, the recursion-level stride at which it applies, a preset and
// a seed.
func NewMultilevelPartitioner(imbalance, imbalanceLevel int, preset Preset, seed int64) *MultilevelPartitioner {
	if imbalance < 0 || imbalance > 100 {
		panic("partitioner: imbalance out of range [0,100]")
	}
	if imbalanceLevel < 1 {
		panic("partitioner: imbalance level must be positive")
	}
	return &MultilevelPartitioner{
		imbalance:      imbalance,
		imbalanceLevel: imbalanceLevel,
		preset:         preset,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// PerformPartitioning implements InitialPartitioner.
func (p *MultilevelPartitioner) PerformPartitioning(qg *querygraph.QueryGraph, level int, reporter report.Reporter) error {
	reporter.InitialPartitioningStart(qg)

	g := qg.DataGraph()
	g.SetPartitionCount(2)

	imbalance := 3
	if level%p.imbalanceLevel == 0 {
		imbalance = p.imbalance
	}

	n := g.NumNodes()
	// partition 1 grows to at most (1+imbalance%) of half the vertices
	target := n / 2
	limit := target + target*imbalance/100
	if limit >= n {
		limit = n - 1
	}
	if limit < 1 {
		limit = 1
	}

	best := make([]int, n)
	bestCut := -1
	assignment := make([]int, n)
	queue := make([]int, 0, n)

	for attempt := 0; attempt < p.preset.restarts(); attempt++ {
		for i := range assignment {
			assignment[i] = 0
		}

		// grow partition 1 by BFS from a random start vertex, jumping to a
		// fresh component when the frontier empties early
		grown := 0
		queue = queue[:0]
		start := p.rng.Intn(n)
		queue = append(queue, start)
		assignment[start] = 1
		grown++

		for grown < target {
			if len(queue) == 0 {
				fresh := p.rng.Intn(n)
				for assignment[fresh] == 1 {
					fresh = (fresh + 1) % n
				}
				queue = append(queue, fresh)
				assignment[fresh] = 1
				grown++
				continue
			}
			v := queue[0]
			queue = queue[1:]
			for e := g.FirstEdge(v); e < g.FirstInvalidEdge(v); e++ {
				u := g.EdgeTarget(e)
				if assignment[u] == 0 && grown < limit {
					assignment[u] = 1
					grown++
					queue = append(queue, u)
				}
			}
		}

		for v := 0; v < n; v++ {
			g.SetPartitionIndex(v, assignment[v])
		}
		cut := g.EdgeCut()
		if bestCut < 0 || cut < bestCut {
			bestCut = cut
			copy(best, assignment)
		}
	}

	for v := 0; v < n; v++ {
		g.SetPartitionIndex(v, best[v])
	}

	reporter.InitialPartitioningFinish(qg)
	return checkBalanced(qg)
}
