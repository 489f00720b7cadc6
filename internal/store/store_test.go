package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrel-aero/motorsim/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		States: []sim.State{
			{Time: 0, Pressure: 5.0e5, BurningArea: 0.0628, Radius: 0.02,
				RegressionRate: 0.0021, MassFlow: 0.235, Thrust: 510, Isp: 221},
			{Time: 0.01, Pressure: 5.1e5, BurningArea: 0.0629, Radius: 0.02002,
				RegressionRate: 0.0021, MassFlow: 0.237, Thrust: 515, Isp: 221.4},
		},
		Summary: sim.Summary{MaxThrust: 515, TotalImpulse: 5.1, BurnTime: 0.01},
		Status:  sim.BurnoutCompleted,
		Metrics: map[string]float64{"peak_thrust": 515},
		Flags:   []string{"thermo-cache"},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("solid", "baseline-bates", 0.01, 30, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Motor != "solid" || meta.Label != "baseline-bates" {
		t.Errorf("metadata %q/%q, want solid/baseline-bates", meta.Motor, meta.Label)
	}
	if meta.Status != "burnout_completed" {
		t.Errorf("status %q, want burnout_completed", meta.Status)
	}
	if meta.Metrics["peak_thrust"] != 515 {
		t.Errorf("peak_thrust metric %g, want 515", meta.Metrics["peak_thrust"])
	}

	states, err := st.LoadHistory(runID)
	if err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	if states[1] != sampleResult().States[1] {
		t.Errorf("round-tripped state differs: %+v", states[1])
	}
}

func TestListSkipsCorruptRuns(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Save("solid", "good", 0.01, 30, sampleResult()); err != nil {
		t.Fatal(err)
	}

	badDir := filepath.Join(dir, "solid_corrupt")
	if err := os.MkdirAll(badDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(badDir, "metadata.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected the corrupt run to be skipped, got %d runs", len(runs))
	}
}

func TestListEmptyBase(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, "solid", "baseline-bates", 0.01, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var exported ExportData
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("exported file is not valid JSON: %v", err)
	}
	if exported.Steps != 2 || exported.Motor != "solid" {
		t.Errorf("unexpected export header: %+v", exported)
	}
	if exported.Summary.MaxThrust != 515 {
		t.Errorf("summary max thrust %g, want 515", exported.Summary.MaxThrust)
	}
}
