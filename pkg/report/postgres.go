package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DanielSeemaier/minloggapa/pkg/querygraph"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS report (
	id BIGSERIAL PRIMARY KEY,
	filename TEXT,
	remark TEXT,
	nodes BIGINT,
	edges BIGINT,
	initial_loggap DOUBLE PRECISION,
	initial_log DOUBLE PRECISION,
	initial_quadtree BIGINT,
	time DOUBLE PRECISION,
	resulting_loggap DOUBLE PRECISION,
	resulting_log DOUBLE PRECISION,
	resulting_quadtree BIGINT,
	creation_date TIMESTAMPTZ DEFAULT now()
);
CREATE TABLE IF NOT EXISTS bisection (
	id BIGSERIAL PRIMARY KEY,
	rid BIGINT REFERENCES report(id),
	branch TEXT,
	nodes BIGINT,
	edges BIGINT,
	p0_nodes BIGINT,
	p0_edges BIGINT,
	p1_nodes BIGINT,
	p1_edges BIGINT,
	initial_cut BIGINT,
	cut BIGINT,
	imbalance INTEGER,
	initial_partition_cost DOUBLE PRECISION,
	resulting_partition_cost DOUBLE PRECISION,
	partitioning_time DOUBLE PRECISION,
	refinement_time DOUBLE PRECISION
);
CREATE TABLE IF NOT EXISTS iteration (
	id BIGSERIAL PRIMARY KEY,
	bid BIGINT REFERENCES bisection(id),
	nth INTEGER,
	initial_partition_cost DOUBLE PRECISION,
	resulting_partition_cost DOUBLE PRECISION,
	num_moved_0to1 INTEGER,
	num_moved_1to0 INTEGER
);
CREATE TABLE IF NOT EXISTS movement (
	id BIGSERIAL PRIMARY KEY,
	iid BIGINT REFERENCES iteration(id),
	nodes0 BIGINT,
	nodes1 BIGINT,
	"from" INTEGER,
	"to" INTEGER,
	gain_total DOUBLE PRECISION,
	gain_adjacent DOUBLE PRECISION,
	gain_nonadjacent DOUBLE PRECISION,
	boundary BOOLEAN,
	deg_data0 BIGINT,
	deg_data1 BIGINT,
	deg_query BIGINT,
	deg_query0 BIGINT,
	deg_query1 BIGINT
);
`

// PostgresReporter writes the same trace as SQLiteReporter to a Postgres
// database, for runs whose reports are aggregated across machines.
type PostgresReporter struct {
	Base
	ctx  context.Context
	pool *pgxpool.Pool
	tx   pgx.Tx

	reportID    int64
	bisectionID int64
	iterationID int64

	numMoved0to1 int
	numMoved1to0 int

	err error // first write error, surfaced by Close
}

// NewPostgresReporter connects to the database, ensures the schema and
// begins the report transaction.
func NewPostgresReporter(ctx context.Context, databaseURL string) (*PostgresReporter, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse report database URL: %w", err)
	}
	config.MaxConns = 2
	config.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect report database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("report database unreachable: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create report schema: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("begin report transaction: %w", err)
	}
	return &PostgresReporter{ctx: ctx, pool: pool, tx: tx}, nil
}

// Close commits the transaction and releases the pool. It returns the first
// error encountered while writing events, if any.
func (r *PostgresReporter) Close() error {
	commitErr := r.tx.Commit(r.ctx)
	r.pool.Close()
	if r.err != nil {
		return r.err
	}
	if commitErr != nil {
		return fmt.Errorf("commit report transaction: %w", commitErr)
	}
	return nil
}

func (r *PostgresReporter) exec(query string, args ...any) {
	if r.err != nil {
		return
	}
	if _, err := r.tx.Exec(r.ctx, query, args...); err != nil {
		r.err = fmt.Errorf("report write: %w", err)
	}
}

func (r *PostgresReporter) insertReturningID(query string, args ...any) int64 {
	if r.err != nil {
		return 0
	}
	var id int64
	if err := r.tx.QueryRow(r.ctx, query, args...).Scan(&id); err != nil {
		r.err = fmt.Errorf("report write: %w", err)
		return 0
	}
	return id
}

// Start implements Reporter.
func (r *PostgresReporter) Start(qg *querygraph.QueryGraph, filename, remark string, initialLogGap, initialLog float64, initialQuadtree int64) {
	r.Base.Start(filename, initialLogGap, initialLog, initialQuadtree)
	r.reportID = r.insertReturningID(`INSERT INTO report (filename, remark, nodes, edges, initial_loggap, initial_log, initial_quadtree)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		filename, remark, qg.DataGraph().NumNodes(), qg.DataGraph().NumEdges(),
		initialLogGap, initialLog, initialQuadtree)
}

// Finish implements Reporter.
func (r *PostgresReporter) Finish(qg *querygraph.QueryGraph, layout []int, resultingLogGap, resultingLog float64, resultingQuadtree int64) {
	r.exec(`UPDATE report SET time = $1, resulting_loggap = $2, resulting_log = $3, resulting_quadtree = $4 WHERE id = $5`,
		r.GlobalElapsed(), resultingLogGap, resultingLog, resultingQuadtree, r.reportID)
}

// BisectionStart implements Reporter.
func (r *PostgresReporter) BisectionStart(qg *querygraph.QueryGraph) {
	r.bisectionID = r.insertReturningID(`INSERT INTO bisection (rid, branch, nodes, edges) VALUES ($1, $2, $3, $4) RETURNING id`,
		r.reportID, r.BranchIdentifier, qg.DataGraph().NumNodes(), qg.DataGraph().NumEdges())
}

// BisectionFinish implements Reporter.
func (r *PostgresReporter) BisectionFinish(qg, first, second *querygraph.QueryGraph) {
	r.exec(`UPDATE bisection SET p0_nodes = $1, p0_edges = $2, p1_nodes = $3, p1_edges = $4, cut = $5, imbalance = $6 WHERE id = $7`,
		first.DataGraph().NumNodes(), first.DataGraph().NumEdges(),
		second.DataGraph().NumNodes(), second.DataGraph().NumEdges(),
		qg.DataGraph().EdgeCut(), Imbalance(first, second), r.bisectionID)
}

// InitialPartitioningStart implements Reporter.
func (r *PostgresReporter) InitialPartitioningStart(qg *querygraph.QueryGraph) {
	r.Base.InitialPartitioningStart()
}

// InitialPartitioningFinish implements Reporter.
func (r *PostgresReporter) InitialPartitioningFinish(qg *querygraph.QueryGraph) {
	r.exec(`UPDATE bisection SET partitioning_time = $1, initial_cut = $2 WHERE id = $3`,
		r.PartitioningElapsed(), qg.DataGraph().EdgeCut(), r.bisectionID)
}

// RefinementStart implements Reporter.
func (r *PostgresReporter) RefinementStart(qg *querygraph.QueryGraph, initialPartitionCost float64) {
	r.Base.RefinementStart(initialPartitionCost)
	r.exec(`UPDATE bisection SET initial_partition_cost = $1 WHERE id = $2`,
		initialPartitionCost, r.bisectionID)
}

// RefinementFinish implements Reporter.
func (r *PostgresReporter) RefinementFinish(qg *querygraph.QueryGraph, iterationsExecuted int, resultingPartitionCost float64) {
	r.exec(`UPDATE bisection SET resulting_partition_cost = $1, refinement_time = $2 WHERE id = $3`,
		resultingPartitionCost, r.RefinementElapsed(), r.bisectionID)
}

// RefinementIterationStart implements Reporter.
func (r *PostgresReporter) RefinementIterationStart(qg *querygraph.QueryGraph, nthIteration int, initialPartitionCost float64) {
	r.Base.RefinementIterationStart(nthIteration, initialPartitionCost)
	r.iterationID = r.insertReturningID(`INSERT INTO iteration (bid, nth, initial_partition_cost) VALUES ($1, $2, $3) RETURNING id`,
		r.bisectionID, nthIteration, initialPartitionCost)
	r.numMoved0to1 = 0
	r.numMoved1to0 = 0
}

// RefinementMoveNode implements Reporter.
func (r *PostgresReporter) RefinementMoveNode(qg *querygraph.QueryGraph, node, fromPartition int, gainTotal, gainAdjacent, gainNonadjacent float64, isBoundary bool) {
	stats := CollectMovementStats(qg, node, fromPartition)

	r.exec(`INSERT INTO movement (iid, nodes0, nodes1, "from", "to", gain_total, gain_adjacent,
		gain_nonadjacent, boundary, deg_data0, deg_data1, deg_query, deg_query0, deg_query1)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.iterationID, stats.Nodes0, stats.Nodes1, fromPartition, 1-fromPartition,
		gainTotal, gainAdjacent, gainNonadjacent, isBoundary,
		stats.DegData0, stats.DegData1, stats.DegQuery, stats.DegQuery0, stats.DegQuery1)

	if fromPartition == 1 {
		r.numMoved1to0++
	} else {
		r.numMoved0to1++
	}
}

// RefinementIterationFinish implements Reporter.
func (r *PostgresReporter) RefinementIterationFinish(qg *querygraph.QueryGraph, numNodesExchanged int, resultingPartitionCost float64) {
	r.exec(`UPDATE iteration SET resulting_partition_cost = $1, num_moved_0to1 = $2, num_moved_1to0 = $3 WHERE id = $4`,
		resultingPartitionCost, r.numMoved0to1, r.numMoved1to0, r.iterationID)
}
