package sim

import (
	"math"
	"testing"

	"github.com/kestrel-aero/motorsim/internal/nozzle"
)

func TestSummarizeEmpty(t *testing.T) {
	s := summarize(nil)
	if s != (Summary{}) {
		t.Errorf("empty sequence should summarize to zero, got %+v", s)
	}
}

func TestSummarizeRectangularProfile(t *testing.T) {
	// Flat 100 N / 0.05 kg/s profile over 2 s, then a terminal zero state.
	states := []State{
		{Time: 0, Thrust: 100, Pressure: 2e6, MassFlow: 0.05},
		{Time: 1, Thrust: 100, Pressure: 2e6, MassFlow: 0.05},
		{Time: 2, Thrust: 100, Pressure: 2e6, MassFlow: 0.05},
		{Time: 2.5, Thrust: 0, Pressure: 0, MassFlow: 0},
	}

	s := summarize(states)

	if s.MaxThrust != 100 {
		t.Errorf("max thrust %g, want 100", s.MaxThrust)
	}
	if s.BurnTime != 2.5 {
		t.Errorf("burn time %g, want 2.5", s.BurnTime)
	}
	if s.BurnoutPressure != 2e6 {
		t.Errorf("burnout pressure %g, want 2e6", s.BurnoutPressure)
	}

	// Trapezoid over the profile: 100*2 + 25 for the tail-off triangle.
	wantImpulse := 225.0
	if math.Abs(s.TotalImpulse-wantImpulse) > 1e-9 {
		t.Errorf("total impulse %g, want %g", s.TotalImpulse, wantImpulse)
	}

	wantMass := 0.05*2 + 0.0125
	wantIsp := wantImpulse / (wantMass * nozzle.G0)
	if math.Abs(s.DeliveredIsp-wantIsp) > 1e-9 {
		t.Errorf("delivered Isp %g, want %g", s.DeliveredIsp, wantIsp)
	}
}

func TestSummarizeSingleState(t *testing.T) {
	s := summarize([]State{{Time: 0, Thrust: 0, Pressure: 101325}})
	if s.TotalImpulse != 0 || s.DeliveredIsp != 0 {
		t.Errorf("single state cannot integrate: %+v", s)
	}
	if s.BurnoutPressure != 0 {
		t.Errorf("no burning step means no burnout pressure, got %g", s.BurnoutPressure)
	}
}
