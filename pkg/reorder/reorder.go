// Package reorder drives the recursive bisection pipeline: partition,
// refine, split, recurse, concatenate. The result is a linear arrangement
// of the input graph's vertices that makes adjacency lists cheap to
// compress.
package reorder

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
	"github.com/DanielSeemaier/minloggapa/pkg/layout"
	"github.com/DanielSeemaier/minloggapa/pkg/logging"
	"github.com/DanielSeemaier/minloggapa/pkg/metrics"
	"github.com/DanielSeemaier/minloggapa/pkg/partitioner"
	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
	"github.com/DanielSeemaier/minloggapa/pkg/refine"
	"github.com/DanielSeemaier/minloggapa/pkg/report"
)

// Pipeline bundles the collaborators of a reordering run.
type Pipeline struct {
	Partitioner partitioner.InitialPartitioner
	Refiner     refine.Refiner
	Reporter    report.Reporter
	Logger      logging.Logger
	Metrics     *metrics.Registry

	// MaxIterations bounds the refiner loop per bisection.
	MaxIterations int

	// MaxLevels caps the recursion depth; 0 leaves only the floor(1 + log2(n)) bound.
	MaxLevels int

	// QuadtreeCost enables the quadtree size metric before and after.
	QuadtreeCost bool

	// WritePartitionFile writes the final bisection tree partition next to
	// the input graph.
	WritePartitionFile bool

	// OutputGraphFile, when set, receives the reordered graph in METIS
	// format. Weights are reset to one by the rebuild.
	OutputGraphFile string

	// RNG orders the vertices of recursion leaves. Must be non-nil.
	RNG *rand.Rand
}

// NewPipeline assembles a pipeline with a fresh run-scoped RNG.
func NewPipeline(p partitioner.InitialPartitioner, r refine.Refiner, rep report.Reporter, log logging.Logger, seed int64) *Pipeline {
	return &Pipeline{
		Partitioner:   p,
		Refiner:       r,
		Reporter:      rep,
		Logger:        log,
		Metrics:       metrics.DefaultRegistry(),
		MaxIterations: 20,
		MaxLevels:     7,
		RNG:           rand.New(rand.NewSource(seed)),
	}
}

// ProcessGraph loads a graph, reorders it and returns the linear layout:
// layout[v] is the position of vertex v. The remark tags the run in the
// report sink.
func (p *Pipeline) ProcessGraph(filename, remark string) ([]int, error) {
	runID := uuid.NewString()
	log := p.Logger.With(logging.RunID(runID))
	started := time.Now()

	g, err := graph.ReadMETIS(filename)
	if err != nil {
		p.Metrics.RecordRun("error", time.Since(started))
		return nil, fmt.Errorf("load graph: %w", err)
	}

	qg := querygraph.New(g)
	qg.ConstructQueryEdges()

	identity := layout.Identity(g)
	initialLogGap := layout.LogGap(g, identity)
	initialLog := layout.LogCost(g, identity)

	initialQuadtree := int64(-1)
	if p.QuadtreeCost {
		initialQuadtree = int64(layout.QuadtreeSize(g))
	}
	p.Reporter.Start(qg, filename, remark, initialLogGap, initialLog, initialQuadtree)
	log.Info("graph loaded",
		logging.String("graph", filename),
		logging.Int("nodes", g.NumNodes()),
		logging.Int("edges", g.NumEdges()),
	)

	levels := int(layout.Log2Bits(float64(g.NumNodes())))
	if p.MaxLevels > 0 && levels > p.MaxLevels {
		levels = p.MaxLevels
	}

	inverted, err := p.FindLinearArrangement(qg, levels)
	if err != nil {
		p.Metrics.RecordRun("error", time.Since(started))
		return nil, err
	}
	arrangement := layout.Invert(inverted)

	if p.WritePartitionFile {
		partitionFile := filename + ".partition_" + runID
		if err := graph.WritePartition(g, partitionFile); err != nil {
			p.Metrics.RecordRun("error", time.Since(started))
			return nil, fmt.Errorf("save partition: %w", err)
		}
		log.Info("partition saved", logging.String("file", partitionFile))
	}

	resultingLogGap := layout.LogGap(g, arrangement)
	resultingLog := layout.LogCost(g, arrangement)

	resultingQuadtree := int64(-1)
	if p.QuadtreeCost || p.OutputGraphFile != "" {
		reordered := layout.Apply(g, arrangement)
		if p.QuadtreeCost {
			resultingQuadtree = int64(layout.QuadtreeSize(reordered))
		}
		if p.OutputGraphFile != "" {
			if err := graph.WriteMETIS(reordered, p.OutputGraphFile); err != nil {
				p.Metrics.RecordRun("error", time.Since(started))
				return nil, fmt.Errorf("write reordered graph: %w", err)
			}
			log.Info("reordered graph saved", logging.String("file", p.OutputGraphFile))
		}
	}
	p.Reporter.Finish(qg, arrangement, resultingLogGap, resultingLog, resultingQuadtree)

	p.Metrics.RecordRun("success", time.Since(started))
	return arrangement, nil
}

// FindLinearArrangement recursively bisects qg and returns the inverse
// layout of its data graph: result[i] is the vertex placed at position i.
// Leaves (depth exhausted or at most one vertex) return a random
// permutation; they never fail.
func (p *Pipeline) FindLinearArrangement(qg *querygraph.QueryGraph, level int) ([]int, error) {
	g := qg.DataGraph()

	if level == 0 || g.NumNodes() <= 1 {
		return layout.Random(g, p.RNG), nil
	}

	p.Reporter.BisectionStart(qg)

	partitioningStart := time.Now()
	if err := p.Partitioner.PerformPartitioning(qg, level, p.Reporter); err != nil {
		return nil, fmt.Errorf("initial partitioning on level %d: %w", level, err)
	}
	partitioningTime := time.Since(partitioningStart)

	p.Logger.Debug("initial bisection",
		logging.Int("level", level),
		logging.Int("cut", g.EdgeCut()),
	)

	refinementStart := time.Now()
	p.Refiner.PerformRefinement(qg, p.MaxIterations, level, p.Reporter)
	refinementTime := time.Since(refinementStart)

	p.Logger.Debug("refined bisection",
		logging.Int("level", level),
		logging.Int("cut", g.EdgeCut()),
	)
	p.Metrics.RecordBisection(g.EdgeCut(), partitioningTime, refinementTime)

	subgraphs, maps := qg.BuildPartitionInducedSubgraphs()
	p.Reporter.BisectionFinish(qg, subgraphs[0], subgraphs[1])

	p.Reporter.EnterFirstBranch()
	lower, err := p.FindLinearArrangement(subgraphs[0], level-1)
	p.Reporter.LeaveFirstBranch()
	if err != nil {
		return nil, err
	}

	p.Reporter.EnterSecondBranch()
	higher, err := p.FindLinearArrangement(subgraphs[1], level-1)
	p.Reporter.LeaveSecondBranch()
	if err != nil {
		return nil, err
	}

	// concatenate: positions 0..|G0|-1 come from the first subgraph,
	// translated back to parent ids, the rest from the second
	inverted := make([]int, g.NumNodes())
	offset := subgraphs[0].DataGraph().NumNodes()
	for v := 0; v < g.NumNodes(); v++ {
		if v < offset {
			inverted[v] = maps[0][lower[v]]
		} else {
			inverted[v] = maps[1][higher[v-offset]]
		}
	}
	return inverted, nil
}
