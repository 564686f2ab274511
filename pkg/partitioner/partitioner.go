// Package partitioner produces the initial bisection that refinement
// starts from.
package partitioner

import (
	"errors"

	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
	"github.com/DanielSeemaier/minloggapa/pkg/report"
)

// ErrEmptyPartition is returned when a partitioner leaves one side of a
// non-trivial graph empty.
var ErrEmptyPartition = errors.New("partitioner produced an empty partition")

// InitialPartitioner assigns every data vertex of qg to partition 0 or 1.
// The recursion level lets implementations vary their balance constraint
// along the bisection tree.
type InitialPartitioner interface {
	PerformPartitioning(qg *querygraph.QueryGraph, level int, reporter report.Reporter) error
}

// checkBalanced verifies that a bisection of a graph with at least two
// vertices is non-degenerate.
func checkBalanced(qg *querygraph.QueryGraph) error {
	if qg.DataGraph().NumNodes() < 2 {
		return nil
	}
	sizes := qg.CountPartitionSizes()
	if sizes[0] == 0 || sizes[1] == 0 {
		return ErrEmptyPartition
	}
	return nil
}
