// Package pressure solves the chamber mass-conservation balance
//
//	mdot_generated(P) = mdot_through_nozzle(P)
//
// for instantaneous chamber pressure. The equation is implicit because the
// propellant regression rate on the generation side is itself a function of
// pressure. The solver brackets the root around the previous step's pressure
// and bisects the residual down to explicit, configurable tolerances.
package pressure

import (
	"fmt"
	"math"
)

// Default convergence configuration. All values are explicit so runs are
// reproducible across implementations.
const (
	DefaultRelTol  = 1e-6
	DefaultAbsTol  = 1e-8
	DefaultMaxIter = 1000

	// DefaultGuess is the atmospheric-scaled first-step estimate used when
	// no previous pressure is available.
	DefaultGuess = 10 * 101325.0

	minPressure = 1.0 // Pa, lower clamp for the bracket
)

// Solver holds the convergence configuration for the balance iteration.
type Solver struct {
	RelTol  float64
	AbsTol  float64
	MaxIter int
}

// NewSolver returns a Solver with the default tolerances.
func NewSolver() Solver {
	return Solver{RelTol: DefaultRelTol, AbsTol: DefaultAbsTol, MaxIter: DefaultMaxIter}
}

// Balance describes one instant of the chamber mass balance. Rate returns
// the propellant regression rate at a candidate pressure; Injected is mass
// flow entering the chamber independently of pressure (the oxidizer feed in
// a hybrid motor, zero for solids).
type Balance struct {
	Density     float64 // propellant density, kg/m^3
	BurningArea float64 // m^2
	ThroatArea  float64 // m^2
	CStar       float64 // effective characteristic velocity, m/s
	Injected    float64 // kg/s
	Rate        func(p float64) (float64, error)
}

// Residual evaluates mdot_generated(p) - mdot_through_nozzle(p).
func (b Balance) Residual(p float64) (float64, error) {
	r, err := b.Rate(p)
	if err != nil {
		return 0, err
	}
	gen := b.Injected + b.Density*r*b.BurningArea
	noz := p * b.ThroatArea / b.CStar
	res := gen - noz
	if math.IsNaN(res) || math.IsInf(res, 0) {
		return 0, fmt.Errorf("pressure: non-finite residual at p=%g", p)
	}
	return res, nil
}

// Solution is a converged balance result with its diagnostics.
type Solution struct {
	Pressure   float64
	Residual   float64
	Iterations int
}

// ConvergenceError reports an iteration-cap overrun, carrying the last
// residual for caller-level retry with relaxed tolerances.
type ConvergenceError struct {
	Iterations   int
	LastResidual float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("pressure: no convergence after %d iterations (residual %g)", e.Iterations, e.LastResidual)
}

// Solve finds the chamber pressure balancing b, starting from guess (the
// previous step's pressure, or <= 0 for the atmospheric-scaled default).
// Convergence requires relative residual < RelTol or absolute < AbsTol.
func (s Solver) Solve(b Balance, guess float64) (Solution, error) {
	if b.ThroatArea <= 0 || b.CStar <= 0 {
		return Solution{}, fmt.Errorf("pressure: non-positive throat area or c* (At=%g c*=%g)", b.ThroatArea, b.CStar)
	}
	if guess <= 0 || math.IsNaN(guess) || math.IsInf(guess, 0) {
		guess = DefaultGuess
	}

	iters := 0
	eval := func(p float64) (float64, error) {
		iters++
		return b.Residual(p)
	}

	// Generation grows as P^n with n < 1 while nozzle flow grows linearly,
	// so the residual is positive below the root and negative above it.
	lo := math.Max(guess/64, minPressure)
	hi := guess

	rlo, err := eval(lo)
	if err != nil {
		return Solution{}, err
	}
	for rlo < 0 && lo > minPressure {
		if iters >= s.MaxIter {
			return Solution{}, &ConvergenceError{Iterations: iters, LastResidual: rlo}
		}
		lo = math.Max(lo/8, minPressure)
		if rlo, err = eval(lo); err != nil {
			return Solution{}, err
		}
	}
	if rlo < 0 {
		// No generation even at the floor: the balance has no positive root.
		return Solution{}, &ConvergenceError{Iterations: iters, LastResidual: rlo}
	}

	rhi, err := eval(hi)
	if err != nil {
		return Solution{}, err
	}
	for rhi > 0 {
		if iters >= s.MaxIter {
			return Solution{}, &ConvergenceError{Iterations: iters, LastResidual: rhi}
		}
		hi *= 2
		if rhi, err = eval(hi); err != nil {
			return Solution{}, err
		}
	}

	if sol, ok := s.converged(b, lo, rlo); ok {
		sol.Iterations = iters
		return sol, nil
	}
	if sol, ok := s.converged(b, hi, rhi); ok {
		sol.Iterations = iters
		return sol, nil
	}

	var mid, rmid float64
	for iters < s.MaxIter {
		mid = 0.5 * (lo + hi)
		if rmid, err = eval(mid); err != nil {
			return Solution{}, err
		}
		if sol, ok := s.converged(b, mid, rmid); ok {
			sol.Iterations = iters
			return sol, nil
		}
		if rmid > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return Solution{}, &ConvergenceError{Iterations: iters, LastResidual: rmid}
}

// converged checks the residual against the tolerances, normalizing the
// relative test by the nozzle mass flow at the candidate pressure.
func (s Solver) converged(b Balance, p, res float64) (Solution, bool) {
	scale := p * b.ThroatArea / b.CStar
	if math.Abs(res) < s.AbsTol || (scale > 0 && math.Abs(res)/scale < s.RelTol) {
		return Solution{Pressure: p, Residual: res}, true
	}
	return Solution{}, false
}
