package metrics

import (
	"testing"
	"time"
)

func TestNewRegistry_CollectorsRegistered(t *testing.T) {
	r := NewRegistry()

	r.RecordRun("success", time.Second)
	r.RecordBisection(5, time.Millisecond, 2*time.Millisecond)
	r.RecordRefinementIteration(4)

	families, err := r.Gather().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("no metric families registered")
	}

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"minloggapa_runs_total",
		"minloggapa_bisections_total",
		"minloggapa_refinement_iterations_total",
		"minloggapa_nodes_moved_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not gathered", want)
		}
	}
}

func TestDefaultRegistry_Singleton(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry must return the same instance")
	}
}
