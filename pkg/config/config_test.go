package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "seed: 42\nrefiner: fm\npartitioner: random\nmax_levels: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Seed != 42 || cfg.Refiner != "fm" || cfg.Partitioner != "random" || cfg.MaxLevels != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	// untouched keys keep their defaults
	if cfg.MaxRefinementIterations != 20 {
		t.Errorf("default lost: %d", cfg.MaxRefinementIterations)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad refiner":      "refiner: simulated-annealing\n",
		"bad partitioner":  "partitioner: metis\n",
		"bad imbalance":    "imbalance: 200\n",
		"sqlite sans path": "report:\n  sink: sqlite\n",
		"pg sans url":      "report:\n  sink: postgres\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEffectiveSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	if cfg.EffectiveSeed() != 7 {
		t.Error("explicit seed not honored")
	}

	cfg.Seed = 0
	if cfg.EffectiveSeed() == 0 {
		t.Error("zero seed should derive a clock seed")
	}
}
