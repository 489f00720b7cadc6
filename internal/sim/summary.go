package sim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/kestrel-aero/motorsim/internal/nozzle"
)

// summarize reduces a committed state sequence. Impulse and expelled
// propellant mass are trapezoid integrals over the (possibly non-uniform)
// time grid.
func summarize(states []State) Summary {
	if len(states) == 0 {
		return Summary{}
	}

	n := len(states)
	times := make([]float64, n)
	thrusts := make([]float64, n)
	pressures := make([]float64, n)
	flows := make([]float64, n)
	for i, s := range states {
		times[i] = s.Time
		thrusts[i] = s.Thrust
		pressures[i] = s.Pressure
		flows[i] = s.MassFlow
	}

	sum := Summary{
		MaxThrust:   floats.Max(thrusts),
		AvgThrust:   stat.Mean(thrusts, nil),
		AvgPressure: stat.Mean(pressures, nil),
		BurnTime:    times[n-1],
	}

	if n >= 2 {
		sum.TotalImpulse = integrate.Trapezoidal(times, thrusts)
		if mass := integrate.Trapezoidal(times, flows); mass > 0 {
			sum.DeliveredIsp = sum.TotalImpulse / (mass * nozzle.G0)
		}
	}

	// Last state with thrust is the final burning step.
	for i := n - 1; i >= 0; i-- {
		if states[i].Thrust > 0 {
			sum.BurnoutPressure = states[i].Pressure
			break
		}
	}
	return sum
}
