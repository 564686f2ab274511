package partitioner

import (
	"math/rand"

	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
	"github.com/DanielSeemaier/minloggapa/pkg/report"
)

// RandomPartitioner assigns exactly floor(n/2) vertices to partition 1 and
// the rest to partition 0, uniformly at random. A single explicit RNG is
// seeded once at construction, so runs with the same seed are
// deterministic.
type RandomPartitioner struct {
	rng *rand.Rand
}

// NewRandomPartitioner creates a random partitioner with the given seed.
func NewRandomPartitioner(seed int64) *RandomPartitioner {
	return &RandomPartitioner{rng: rand.New(rand.NewSource(seed))}
}

// PerformPartitioning implements InitialPartitioner.
func (p *RandomPartitioner) PerformPartitioning(qg *querygraph.QueryGraph, level int, reporter report.Reporter) error {
	reporter.InitialPartitioningStart(qg)

	g := qg.DataGraph()
	g.SetPartitionCount(2)

	assignment := make([]int, g.NumNodes())
	for i := 0; i < g.NumNodes()/2; i++ {
		assignment[i] = 1
	}
	p.rng.Shuffle(len(assignment), func(i, j int) {
		assignment[i], assignment[j] = assignment[j], assignment[i]
	})

	for v := 0; v < g.NumNodes(); v++ {
		g.SetPartitionIndex(v, assignment[v])
	}

	reporter.InitialPartitioningFinish(qg)
	return checkBalanced(qg)
}
