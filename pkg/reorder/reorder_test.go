package reorder

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DanielSeemaier/minloggapa/pkg/graph"
	"github.com/DanielSeemaier/minloggapa/pkg/layout"
	"github.com/DanielSeemaier/minloggapa/pkg/logging"
	"github.com/DanielSeemaier/minloggapa/pkg/partitioner"
	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
	"github.com/DanielSeemaier/minloggapa/pkg/refine"
	"github.com/DanielSeemaier/minloggapa/pkg/report"
)

func testPipeline(t *testing.T, seed int64) *Pipeline {
	t.Helper()
	log := logging.Discard()
	return NewPipeline(
		partitioner.NewMultilevelPartitioner(3, 1, partitioner.PresetStandard, seed),
		refine.NewBasicRefiner(3, 1),
		report.NewCLIReporter(log),
		log,
		seed,
	)
}

func writeGraph(t *testing.T, g *graph.Graph) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.graph")
	require.NoError(t, graph.WriteMETIS(g, path))
	return path
}

func requirePermutation(t *testing.T, arrangement []int, n int) {
	t.Helper()
	require.Len(t, arrangement, n)
	seen := make([]bool, n)
	for _, pos := range arrangement {
		require.GreaterOrEqual(t, pos, 0)
		require.Less(t, pos, n)
		require.False(t, seen[pos], "position assigned twice")
		seen[pos] = true
	}
}

func TestProcessGraph_SingleVertex(t *testing.T) {
	g := graph.New()
	g.StartConstruction(1, 0)
	g.NewNode()
	g.FinishConstruction()

	p := testPipeline(t, 1)
	arrangement, err := p.ProcessGraph(writeGraph(t, g), "test")
	require.NoError(t, err)
	require.Equal(t, []int{0}, arrangement)
}

func TestProcessGraph_TwoVertices(t *testing.T) {
	p := testPipeline(t, 2)
	arrangement, err := p.ProcessGraph(writeGraph(t, graph.Clique(2)), "test")
	require.NoError(t, err)
	requirePermutation(t, arrangement, 2)
}

func TestProcessGraph_MissingFile(t *testing.T) {
	p := testPipeline(t, 3)
	_, err := p.ProcessGraph(filepath.Join(t.TempDir(), "nope.graph"), "test")
	require.Error(t, err)
}

func TestProcessGraph_WritesPartitionFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.graph")
	require.NoError(t, graph.WriteMETIS(graph.Cycle(8), path))

	p := testPipeline(t, 4)
	p.WritePartitionFile = true
	_, err := p.ProcessGraph(path, "test")
	require.NoError(t, err)

	matches, err := filepath.Glob(path + ".partition_*")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	partition, err := graph.ReadPartition(matches[0])
	require.NoError(t, err)
	require.Len(t, partition, 8)
}

func TestFindLinearArrangement_ReturnsPermutation(t *testing.T) {
	g := graph.CycleWithChords(16)
	qg := querygraph.New(g)
	qg.ConstructQueryEdges()

	p := testPipeline(t, 5)
	inverted, err := p.FindLinearArrangement(qg, 4)
	require.NoError(t, err)
	requirePermutation(t, layout.Invert(inverted), 16)
}

func TestFindLinearArrangement_LevelZeroIsRandomLeaf(t *testing.T) {
	g := graph.Cycle(6)
	qg := querygraph.New(g)
	qg.ConstructQueryEdges()

	p := testPipeline(t, 6)
	inverted, err := p.FindLinearArrangement(qg, 0)
	require.NoError(t, err)
	requirePermutation(t, inverted, 6)
}

func TestProcessGraph_BridgedCliquesBeatRandom(t *testing.T) {
	// two K4s joined by one edge: the bisection driver should place each
	// clique contiguously, beating random layouts on LogGap
	g := graph.Biclique(4, 4, true)

	p := testPipeline(t, 7)
	arrangement, err := p.ProcessGraph(writeGraph(t, g), "test")
	require.NoError(t, err)
	requirePermutation(t, arrangement, 8)

	resulting := layout.LogGap(g, arrangement)

	rng := rand.New(rand.NewSource(1234))
	randomMean := 0.0
	const samples = 32
	for i := 0; i < samples; i++ {
		randomMean += layout.LogGap(g, layout.Random(g, rng))
	}
	randomMean /= samples

	require.Less(t, resulting, randomMean,
		"reordered LogGap %f should beat the random mean %f", resulting, randomMean)
}

func TestProcessGraph_FMRefinerEndToEnd(t *testing.T) {
	log := logging.Discard()
	p := NewPipeline(
		partitioner.NewMultilevelPartitioner(3, 1, partitioner.PresetEco, 11),
		refine.NewDefaultFMRefiner(),
		report.NewCLIReporter(log),
		log,
		11,
	)

	arrangement, err := p.ProcessGraph(writeGraph(t, graph.Rect(5)), "test")
	require.NoError(t, err)
	requirePermutation(t, arrangement, 25)
}

func TestProcessGraph_ReportsMetricsThroughReporter(t *testing.T) {
	rec := &recordingReporter{}
	log := logging.Discard()
	p := NewPipeline(
		partitioner.NewRandomPartitioner(13),
		refine.NewBasicRefiner(3, 1),
		rec,
		log,
		13,
	)

	_, err := p.ProcessGraph(writeGraph(t, graph.Cycle(8)), "test")
	require.NoError(t, err)

	require.True(t, rec.started, "Start not reported")
	require.True(t, rec.finished, "Finish not reported")
	require.Greater(t, rec.bisections, 0, "no bisections reported")
	// the branch identifier unwinds completely
	require.Equal(t, "", rec.BranchIdentifier)
}

// recordingReporter tracks which events fired.
type recordingReporter struct {
	report.Base
	started    bool
	finished   bool
	bisections int
}

func (r *recordingReporter) Start(qg *querygraph.QueryGraph, filename, remark string, a, b float64, q int64) {
	r.started = true
}
func (r *recordingReporter) Finish(qg *querygraph.QueryGraph, layout []int, a, b float64, q int64) {
	r.finished = true
}
func (r *recordingReporter) BisectionStart(qg *querygraph.QueryGraph) { r.bisections++ }
func (r *recordingReporter) BisectionFinish(qg, first, second *querygraph.QueryGraph)     {}
func (r *recordingReporter) InitialPartitioningStart(qg *querygraph.QueryGraph)           {}
func (r *recordingReporter) InitialPartitioningFinish(qg *querygraph.QueryGraph)          {}
func (r *recordingReporter) RefinementStart(qg *querygraph.QueryGraph, cost float64)      {}
func (r *recordingReporter) RefinementFinish(qg *querygraph.QueryGraph, i int, c float64) {}
func (r *recordingReporter) RefinementIterationStart(qg *querygraph.QueryGraph, n int, c float64) {
}
func (r *recordingReporter) RefinementMoveNode(qg *querygraph.QueryGraph, node, from int, g1, g2, g3 float64, boundary bool) {
}
func (r *recordingReporter) RefinementIterationFinish(qg *querygraph.QueryGraph, m int, c float64) {
}
