// Package config loads and validates the run configuration of the
// reordering pipeline.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config controls a reordering run. Zero values are filled in by
// DefaultConfig; a file loaded with Load only needs the keys it overrides.
type Config struct {
	// Seed drives every RNG in the pipeline. Runs with the same seed and
	// input are deterministic. 0 means "derive from wall clock".
	Seed int64 `yaml:"seed"`

	// MaxLevels caps the recursion depth; 0 means floor(1 + log2(n)).
	MaxLevels int `yaml:"max_levels" validate:"gte=0"`

	// MaxRefinementIterations bounds the refiner loop per bisection.
	MaxRefinementIterations int `yaml:"max_refinement_iterations" validate:"gte=1"`

	// Imbalance is the balance budget in percent, applied on every
	// recursion level divisible by ImbalanceLevel.
	Imbalance      int `yaml:"imbalance" validate:"gte=0,lte=100"`
	ImbalanceLevel int `yaml:"imbalance_level" validate:"gte=1"`

	// Partitioner selects the initial partitioner: "multilevel" (alias
	// "kahip") or "random".
	Partitioner string `yaml:"partitioner" validate:"oneof=multilevel kahip random"`

	// Preset tunes the multilevel partitioner.
	Preset string `yaml:"preset" validate:"oneof=standard eco fastsocial ecosocial strongsocial"`

	// Refiner selects the refinement algorithm: "fm", "basic" or
	// "quadtree".
	Refiner string `yaml:"refiner" validate:"oneof=fm basic quadtree"`

	// QuadtreeCost enables the quadtree size metric, which is expensive on
	// large graphs.
	QuadtreeCost bool `yaml:"quadtree_cost"`

	Report ReportConfig `yaml:"report"`
}

// ReportConfig selects where the run trace goes.
type ReportConfig struct {
	// Sink is "cli", "sqlite" or "postgres".
	Sink string `yaml:"sink" validate:"oneof=cli sqlite postgres"`

	// Path is the database file for the sqlite sink.
	Path string `yaml:"path"`

	// DatabaseURL is the connection string for the postgres sink.
	DatabaseURL string `yaml:"database_url"`
}

// DefaultConfig returns the configuration the CLI runs with when no file
// is given.
func DefaultConfig() Config {
	return Config{
		Seed:                    0,
		MaxLevels:               7,
		MaxRefinementIterations: 20,
		Imbalance:               3,
		ImbalanceLevel:          1,
		Partitioner:             "multilevel",
		Preset:                  "fastsocial",
		Refiner:                 "basic",
		Report:                  ReportConfig{Sink: "cli"},
	}
}

// Load reads a YAML configuration file over the defaults and validates the
// result.
func Load(filename string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Report.Sink == "sqlite" && c.Report.Path == "" {
		return fmt.Errorf("invalid config: sqlite sink needs a path")
	}
	if c.Report.Sink == "postgres" && c.Report.DatabaseURL == "" {
		return fmt.Errorf("invalid config: postgres sink needs a database_url")
	}
	return nil
}

// EffectiveSeed resolves the configured seed, deriving one from the wall
// clock when it is zero.
func (c *Config) EffectiveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
