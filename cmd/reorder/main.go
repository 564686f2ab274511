package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/DanielSeemaier/minloggapa/pkg/config"
	"github.com/DanielSeemaier/minloggapa/pkg/logging"
	"github.com/DanielSeemaier/minloggapa/pkg/metrics"
	"github.com/DanielSeemaier/minloggapa/pkg/partitioner"
	"github.com/DanielSeemaier/minloggapa/pkg/refine"
	"github.com/DanielSeemaier/minloggapa/pkg/reorder"
	"github.com/DanielSeemaier/minloggapa/pkg/report"
)

func main() {
	configFile := flag.String("config", "", "YAML configuration file")
	seed := flag.Int64("seed", 0, "RNG seed (0 derives one from the clock)")
	quadtree := flag.Bool("quadtree", false, "also compute the quadtree size metric")
	sqlitePath := flag.String("sqlite", "", "write the report to this SQLite database")
	postgresURL := flag.String("postgres", "", "write the report to this Postgres database")
	outputGraph := flag.String("output", "", "write the reordered graph to this file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"usage: reorder [flags] <graph> [<kahip|random>] [<fm|basic>]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logging.NewDefaultLogger()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Error("bad configuration", logging.Error(err))
			os.Exit(1)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *quadtree {
		cfg.QuadtreeCost = true
	}
	if *sqlitePath != "" {
		cfg.Report = config.ReportConfig{Sink: "sqlite", Path: *sqlitePath}
	}
	if *postgresURL != "" {
		cfg.Report = config.ReportConfig{Sink: "postgres", DatabaseURL: *postgresURL}
	}

	graphFile := flag.Arg(0)
	if flag.NArg() >= 2 {
		cfg.Partitioner = flag.Arg(1)
	}
	if flag.NArg() >= 3 {
		cfg.Refiner = flag.Arg(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("bad configuration", logging.Error(err))
		os.Exit(1)
	}

	if err := run(cfg, graphFile, *outputGraph, log); err != nil {
		log.Error("reordering failed", logging.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, graphFile, outputGraph string, log logging.Logger) error {
	runSeed := cfg.EffectiveSeed()

	var part partitioner.InitialPartitioner
	switch cfg.Partitioner {
	case "random":
		part = partitioner.NewRandomPartitioner(runSeed)
	default: // multilevel, kahip
		part = partitioner.NewMultilevelPartitioner(cfg.Imbalance, cfg.ImbalanceLevel, partitioner.Preset(cfg.Preset), runSeed)
	}

	var ref refine.Refiner
	switch cfg.Refiner {
	case "fm":
		ref = refine.NewFMRefiner(cfg.Imbalance, cfg.ImbalanceLevel)
	case "quadtree":
		ref = refine.NewQuadtreeFMRefiner(cfg.Imbalance, cfg.ImbalanceLevel)
	default:
		ref = refine.NewBasicRefiner(cfg.Imbalance, cfg.ImbalanceLevel)
	}

	var rep report.Reporter
	switch cfg.Report.Sink {
	case "sqlite":
		sink, err := report.NewSQLiteReporter(cfg.Report.Path)
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Close(); err != nil {
				log.Error("report sink", logging.Error(err))
			}
		}()
		rep = sink
	case "postgres":
		sink, err := report.NewPostgresReporter(context.Background(), cfg.Report.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Close(); err != nil {
				log.Error("report sink", logging.Error(err))
			}
		}()
		rep = sink
	default:
		rep = report.NewCLIReporter(log)
	}

	pipeline := reorder.NewPipeline(part, ref, reorder.WithMetrics(rep, metrics.DefaultRegistry()), log, runSeed)
	pipeline.MaxIterations = cfg.MaxRefinementIterations
	pipeline.MaxLevels = cfg.MaxLevels
	pipeline.QuadtreeCost = cfg.QuadtreeCost
	pipeline.WritePartitionFile = true
	pipeline.OutputGraphFile = outputGraph

	remark := cfg.Partitioner + "," + cfg.Refiner
	_, err := pipeline.ProcessGraph(graphFile, remark)
	return err
}
