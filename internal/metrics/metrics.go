// Package metrics provides per-run observers implementing [sim.Metric].
// Each metric accumulates over the committed state sequence and reports a
// single scalar at the end of the run.
package metrics

import "github.com/kestrel-aero/motorsim/internal/sim"

// PeakThrust tracks the maximum thrust seen.
type PeakThrust struct {
	peak float64
}

func NewPeakThrust() *PeakThrust { return &PeakThrust{} }

func (p *PeakThrust) Name() string { return "peak_thrust" }

func (p *PeakThrust) Observe(s sim.State) {
	if s.Thrust > p.peak {
		p.peak = s.Thrust
	}
}

func (p *PeakThrust) Value() float64 { return p.peak }
func (p *PeakThrust) Reset()         { p.peak = 0 }

// TotalImpulse integrates thrust over time incrementally (trapezoid rule).
type TotalImpulse struct {
	impulse    float64
	lastTime   float64
	lastThrust float64
	samples    int
}

func NewTotalImpulse() *TotalImpulse { return &TotalImpulse{} }

func (ti *TotalImpulse) Name() string { return "total_impulse" }

func (ti *TotalImpulse) Observe(s sim.State) {
	if ti.samples > 0 {
		dt := s.Time - ti.lastTime
		ti.impulse += 0.5 * (s.Thrust + ti.lastThrust) * dt
	}
	ti.lastTime = s.Time
	ti.lastThrust = s.Thrust
	ti.samples++
}

func (ti *TotalImpulse) Value() float64 { return ti.impulse }

func (ti *TotalImpulse) Reset() {
	ti.impulse = 0
	ti.lastTime = 0
	ti.lastThrust = 0
	ti.samples = 0
}

// AvgPressure reports the mean chamber pressure across committed states.
type AvgPressure struct {
	total   float64
	samples int
}

func NewAvgPressure() *AvgPressure { return &AvgPressure{} }

func (a *AvgPressure) Name() string { return "avg_pressure" }

func (a *AvgPressure) Observe(s sim.State) {
	a.total += s.Pressure
	a.samples++
}

func (a *AvgPressure) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.total / float64(a.samples)
}

func (a *AvgPressure) Reset() {
	a.total = 0
	a.samples = 0
}

// RegressionMonotonic reports the fraction of steps whose port/web radius
// did not decrease, 1.0 for a healthy run.
type RegressionMonotonic struct {
	lastRadius float64
	violations int
	samples    int
}

func NewRegressionMonotonic() *RegressionMonotonic { return &RegressionMonotonic{} }

func (r *RegressionMonotonic) Name() string { return "regression_monotonic" }

func (r *RegressionMonotonic) Observe(s sim.State) {
	if r.samples > 0 && s.Radius < r.lastRadius {
		r.violations++
	}
	r.lastRadius = s.Radius
	r.samples++
}

func (r *RegressionMonotonic) Value() float64 {
	if r.samples <= 1 {
		return 1
	}
	return 1 - float64(r.violations)/float64(r.samples-1)
}

func (r *RegressionMonotonic) Reset() {
	r.lastRadius = 0
	r.violations = 0
	r.samples = 0
}

// Standard returns the default metric set attached to CLI runs.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewPeakThrust(),
		NewTotalImpulse(),
		NewAvgPressure(),
		NewRegressionMonotonic(),
	}
}
