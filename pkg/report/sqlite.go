package report

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS report (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT,
	remark TEXT,
	nodes INTEGER,
	edges INTEGER,
	initial_loggap REAL,
	initial_log REAL,
	initial_quadtree INTEGER,
	time REAL,
	resulting_loggap REAL,
	resulting_log REAL,
	resulting_quadtree INTEGER,
	creation_date DATE DEFAULT (datetime('now', 'localtime'))
);
CREATE TABLE IF NOT EXISTS bisection (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	rid INTEGER,
	branch TEXT,
	nodes INTEGER,
	edges INTEGER,
	p0_nodes INTEGER,
	p0_edges INTEGER,
	p1_nodes INTEGER,
	p1_edges INTEGER,
	initial_cut INTEGER,
	cut INTEGER,
	imbalance INTEGER,
	initial_partition_cost REAL,
	resulting_partition_cost REAL,
	partitioning_time REAL,
	refinement_time REAL,
	FOREIGN KEY(rid) REFERENCES report(id)
);
CREATE TABLE IF NOT EXISTS iteration (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	bid INTEGER,
	nth INTEGER,
	initial_partition_cost REAL,
	resulting_partition_cost REAL,
	num_moved_0to1 INTEGER,
	num_moved_1to0 INTEGER,
	FOREIGN KEY (bid) REFERENCES bisection(id)
);
CREATE TABLE IF NOT EXISTS movement (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	iid INTEGER,
	nodes0 INTEGER,
	nodes1 INTEGER,
	"from" INTEGER,
	"to" INTEGER,
	gain_total REAL,
	gain_adjacent REAL,
	gain_nonadjacent REAL,
	boundary INTEGER,
	deg_data0 INTEGER,
	deg_data1 INTEGER,
	deg_query INTEGER,
	deg_query0 INTEGER,
	deg_query1 INTEGER,
	FOREIGN KEY (iid) REFERENCES iteration(id)
);
`

// SQLiteReporter writes the full report/bisection/iteration/movement trace
// to a SQLite database. All writes happen inside a single transaction that
// is committed by Close, so a crashed run leaves no partial report.
type SQLiteReporter struct {
	Base
	conn *sqlite.Conn

	reportID    int64
	bisectionID int64
	iterationID int64

	numMoved0to1 int
	numMoved1to0 int

	err error // first write error, surfaced by Close
}

// NewSQLiteReporter opens (or creates) the database, ensures the schema and
// begins the report transaction.
func NewSQLiteReporter(filename string) (*SQLiteReporter, error) {
	conn, err := sqlite.OpenConn(filename, sqlite.OpenCreate, sqlite.OpenReadWrite)
	if err != nil {
		return nil, fmt.Errorf("open report database: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, sqliteSchema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create report schema: %w", err)
	}
	if err := sqlitex.ExecuteTransient(conn, "BEGIN TRANSACTION;", nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("begin report transaction: %w", err)
	}
	return &SQLiteReporter{conn: conn}, nil
}

// Close commits the transaction and closes the database. It returns the
// first error encountered while writing events, if any.
func (r *SQLiteReporter) Close() error {
	commitErr := sqlitex.ExecuteTransient(r.conn, "COMMIT TRANSACTION;", nil)
	closeErr := r.conn.Close()
	if r.err != nil {
		return r.err
	}
	if commitErr != nil {
		return fmt.Errorf("commit report transaction: %w", commitErr)
	}
	return closeErr
}

func (r *SQLiteReporter) exec(query string, args ...any) {
	if r.err != nil {
		return
	}
	if err := sqlitex.Execute(r.conn, query, &sqlitex.ExecOptions{Args: args}); err != nil {
		r.err = fmt.Errorf("report write: %w", err)
	}
}

// Start implements Reporter.
func (r *SQLiteReporter) Start(qg *querygraph.QueryGraph, filename, remark string, initialLogGap, initialLog float64, initialQuadtree int64) {
	r.Base.Start(filename, initialLogGap, initialLog, initialQuadtree)
	r.exec(`INSERT INTO report (filename, remark, nodes, edges, initial_loggap, initial_log, initial_quadtree)
		VALUES (?, ?, ?, ?, ?, ?, ?);`,
		filename, remark, qg.DataGraph().NumNodes(), qg.DataGraph().NumEdges(),
		initialLogGap, initialLog, initialQuadtree)
	r.reportID = r.conn.LastInsertRowID()
}

// Finish implements Reporter.
func (r *SQLiteReporter) Finish(qg *querygraph.QueryGraph, layout []int, resultingLogGap, resultingLog float64, resultingQuadtree int64) {
	r.exec(`UPDATE report SET time = ?, resulting_loggap = ?, resulting_log = ?, resulting_quadtree = ? WHERE id = ?;`,
		r.GlobalElapsed(), resultingLogGap, resultingLog, resultingQuadtree, r.reportID)
}

// BisectionStart implements Reporter.
func (r *SQLiteReporter) BisectionStart(qg *querygraph.QueryGraph) {
	r.exec(`INSERT INTO bisection (rid, branch, nodes, edges) VALUES (?, ?, ?, ?);`,
		r.reportID, r.BranchIdentifier, qg.DataGraph().NumNodes(), qg.DataGraph().NumEdges())
	r.bisectionID = r.conn.LastInsertRowID()
}

// BisectionFinish implements Reporter.
func (r *SQLiteReporter) BisectionFinish(qg, first, second *querygraph.QueryGraph) {
	r.exec(`UPDATE bisection SET p0_nodes = ?, p0_edges = ?, p1_nodes = ?, p1_edges = ?, cut = ?, imbalance = ? WHERE id = ?;`,
		first.DataGraph().NumNodes(), first.DataGraph().NumEdges(),
		second.DataGraph().NumNodes(), second.DataGraph().NumEdges(),
		qg.DataGraph().EdgeCut(), Imbalance(first, second), r.bisectionID)
}

// InitialPartitioningStart implements Reporter.
func (r *SQLiteReporter) InitialPartitioningStart(qg *querygraph.QueryGraph) {
	r.Base.InitialPartitioningStart()
}

// InitialPartitioningFinish implements Reporter.
func (r *SQLiteReporter) InitialPartitioningFinish(qg *querygraph.QueryGraph) {
	r.exec(`UPDATE bisection SET partitioning_time = ?, initial_cut = ? WHERE id = ?;`,
		r.PartitioningElapsed(), qg.DataGraph().EdgeCut(), r.bisectionID)
}

// RefinementStart implements Reporter.
func (r *SQLiteReporter) RefinementStart(qg *querygraph.QueryGraph, initialPartitionCost float64) {
	r.Base.RefinementStart(initialPartitionCost)
	r.exec(`UPDATE bisection SET initial_partition_cost = ? WHERE id = ?;`,
		initialPartitionCost, r.bisectionID)
}

// RefinementFinish implements Reporter.
func (r *SQLiteReporter) RefinementFinish(qg *querygraph.QueryGraph, iterationsExecuted int, resultingPartitionCost float64) {
	r.exec(`UPDATE bisection SET resulting_partition_cost = ?, refinement_time = ? WHERE id = ?;`,
		resultingPartitionCost, r.RefinementElapsed(), r.bisectionID)
}

// RefinementIterationStart implements Reporter.
func (r *SQLiteReporter) RefinementIterationStart(qg *querygraph.QueryGraph, nthIteration int, initialPartitionCost float64) {
	r.Base.RefinementIterationStart(nthIteration, initialPartitionCost)
	r.exec(`INSERT INTO iteration (bid, nth, initial_partition_cost) VALUES (?, ?, ?);`,
		r.bisectionID, nthIteration, initialPartitionCost)
	r.iterationID = r.conn.LastInsertRowID()
	r.numMoved0to1 = 0
	r.numMoved1to0 = 0
}

// RefinementMoveNode implements Reporter.
func (r *SQLiteReporter) RefinementMoveNode(qg *querygraph.QueryGraph, node, fromPartition int, gainTotal, gainAdjacent, gainNonadjacent float64, isBoundary bool) {
	stats := CollectMovementStats(qg, node, fromPartition)

	boundary := 0
	if isBoundary {
		boundary = 1
	}
	r.exec(`INSERT INTO movement (iid, nodes0, nodes1, "from", "to", gain_total, gain_adjacent,
		gain_nonadjacent, boundary, deg_data0, deg_data1, deg_query, deg_query0, deg_query1)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.iterationID, stats.Nodes0, stats.Nodes1, fromPartition, 1-fromPartition,
		gainTotal, gainAdjacent, gainNonadjacent, boundary,
		stats.DegData0, stats.DegData1, stats.DegQuery, stats.DegQuery0, stats.DegQuery1)

	if fromPartition == 1 {
		r.numMoved1to0++
	} else {
		r.numMoved0to1++
	}
}

// RefinementIterationFinish implements Reporter.
func (r *SQLiteReporter) RefinementIterationFinish(qg *querygraph.QueryGraph, numNodesExchanged int, resultingPartitionCost float64) {
	r.exec(`UPDATE iteration SET resulting_partition_cost = ?, num_moved_0to1 = ?, num_moved_1to0 = ? WHERE id = ?;`,
		resultingPartitionCost, r.numMoved0to1, r.numMoved1to0, r.iterationID)
}
