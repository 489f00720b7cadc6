package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/kestrel-aero/motorsim/internal/grain"
	"github.com/kestrel-aero/motorsim/internal/nozzle"
	"github.com/kestrel-aero/motorsim/internal/pressure"
	"github.com/kestrel-aero/motorsim/internal/prop"
	"github.com/kestrel-aero/motorsim/internal/sim"
)

func testBuilder(port float64) Builder {
	return func() (*sim.Driver, error) {
		g, err := grain.NewBates(0.05, port, 0.3)
		if err != nil {
			return nil, err
		}
		props := prop.Properties{
			Density:     1800,
			BurnCoeff:   2.1e-5,
			PressureExp: 0.35,
			RefTemp:     293.15,
			CStar:       1520,
			Gamma:       1.2,
		}
		bal := sim.SolidBallistics{
			Props:     props,
			GrainTemp: props.RefTemp,
			Solver:    pressure.NewSolver(),
			Throat:    4e-4,
		}
		ev := nozzle.NewEvaluator(nozzle.Nozzle{ThroatArea: 4e-4, ExpansionRatio: 4})
		return sim.NewDriver(g, bal, ev, sim.Config{Dt: 0.05, MaxTime: 60, Ambient: 0}), nil
	}
}

func TestEnsembleIndependentRuns(t *testing.T) {
	builders := []Builder{testBuilder(0.01), testBuilder(0.015), testBuilder(0.02)}

	results, errs := Ensemble{Workers: 2}.Run(context.Background(), builders)

	for i := range builders {
		if errs[i] != nil {
			t.Fatalf("run %d: %v", i, errs[i])
		}
		if results[i] == nil || results[i].Status != sim.BurnoutCompleted {
			t.Fatalf("run %d: unexpected result %+v", i, results[i])
		}
	}

	// Bigger initial port burns out sooner (thinner web).
	if results[0].Summary.BurnTime <= results[2].Summary.BurnTime {
		t.Errorf("thicker web should burn longer: %g vs %g",
			results[0].Summary.BurnTime, results[2].Summary.BurnTime)
	}
}

func TestEnsembleIsolatesFailures(t *testing.T) {
	boom := errors.New("bad parameter set")
	builders := []Builder{
		testBuilder(0.015),
		func() (*sim.Driver, error) { return nil, boom },
	}

	results, errs := Ensemble{}.Run(context.Background(), builders)

	if errs[0] != nil || results[0] == nil {
		t.Errorf("healthy run disturbed: err=%v", errs[0])
	}
	if !errors.Is(errs[1], boom) {
		t.Errorf("expected builder error, got %v", errs[1])
	}
}

func TestEnsembleDeterministicAcrossWorkers(t *testing.T) {
	builders := []Builder{testBuilder(0.012), testBuilder(0.018)}

	serial, _ := Ensemble{Workers: 1}.Run(context.Background(), builders)
	parallel, _ := Ensemble{Workers: 2}.Run(context.Background(), builders)

	for i := range builders {
		if serial[i].Summary != parallel[i].Summary {
			t.Errorf("run %d: summaries differ between worker counts", i)
		}
	}
}

func TestGridSearchMaximizesImpulse(t *testing.T) {
	gs := GridSearch{
		Params: []string{"port_radius"},
		Ranges: [][]float64{{0.01, 0.015, 0.02}},
	}

	best, score, err := gs.Search(context.Background(),
		func(params map[string]float64) (*sim.Driver, error) {
			return testBuilder(params["port_radius"])()
		},
		func(r *sim.Result) float64 { return r.Summary.TotalImpulse },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score <= 0 {
		t.Fatalf("non-positive best score %g", score)
	}

	// The thickest web carries the most propellant, hence the most impulse.
	if best["port_radius"] != 0.01 {
		t.Errorf("best port radius %g, want 0.01", best["port_radius"])
	}
}

func TestGridSearchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs := GridSearch{Params: []string{"x"}, Ranges: [][]float64{{1, 2}}}
	_, _, err := gs.Search(ctx,
		func(map[string]float64) (*sim.Driver, error) { return testBuilder(0.015)() },
		func(r *sim.Result) float64 { return 0 },
	)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
