// Package nozzle converts a converged chamber pressure into thrust, mass
// flow and specific impulse for a fixed conical/bell nozzle.
//
// The exit Mach number comes from the supersonic branch of the isentropic
// area-Mach relation, solved by bisection with the same explicit
// tolerance/iteration-cap discipline as the chamber pressure balance.
package nozzle

import (
	"fmt"
	"math"
)

// G0 is standard gravity, used to express specific impulse in seconds.
const G0 = 9.80665

const (
	defaultMachTol  = 1e-10
	defaultMachIter = 200
	maxExitMach     = 50.0
)

// Nozzle is the fixed geometry of a run: throat area and expansion ratio in
// SI, discharge coefficient dimensionless (1 for an ideal nozzle).
type Nozzle struct {
	ThroatArea     float64 // m^2
	ExpansionRatio float64 // Ae/At
	DischargeCoeff float64
}

// ExitArea returns the nozzle exit plane area.
func (n Nozzle) ExitArea() float64 { return n.ThroatArea * n.ExpansionRatio }

// Point is the instantaneous performance at one chamber state.
type Point struct {
	MassFlow     float64 // kg/s
	ExitMach     float64
	ExitPressure float64 // Pa
	ExitVelocity float64 // m/s
	Thrust       float64 // N
	Isp          float64 // s
}

// NonPhysicalError reports a performance result outside physical bounds,
// which indicates inconsistent upstream models or inputs. The run aborts
// rather than clamping.
type NonPhysicalError struct {
	Quantity string
	Value    float64
}

func (e *NonPhysicalError) Error() string {
	return fmt.Sprintf("nozzle: non-physical %s %g", e.Quantity, e.Value)
}

// ConvergenceError reports a Mach solve that exhausted its iteration cap
// before meeting tolerance. The last bracket midpoint is never returned as
// a result.
type ConvergenceError struct {
	Iterations   int
	LastResidual float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("nozzle: exit Mach not converged after %d iterations (residual %g)",
		e.Iterations, e.LastResidual)
}

// Evaluator couples a nozzle with the Mach-solve convergence configuration.
type Evaluator struct {
	Nozzle  Nozzle
	MachTol float64
	MaxIter int
}

// NewEvaluator returns an evaluator with the default convergence settings.
func NewEvaluator(n Nozzle) Evaluator {
	if n.DischargeCoeff == 0 {
		n.DischargeCoeff = 1
	}
	return Evaluator{Nozzle: n, MachTol: defaultMachTol, MaxIter: defaultMachIter}
}

// areaRatio evaluates the isentropic A/At at Mach m for the given gamma.
func areaRatio(m, gamma float64) float64 {
	t := (2 / (gamma + 1)) * (1 + (gamma-1)/2*m*m)
	return math.Pow(t, (gamma+1)/(2*(gamma-1))) / m
}

// exitMach solves areaRatio(M) = ratio on the supersonic branch.
func (e Evaluator) exitMach(ratio, gamma float64) (float64, error) {
	if ratio < 1 {
		return 0, &NonPhysicalError{Quantity: "expansion ratio", Value: ratio}
	}
	lo, hi := 1.0, maxExitMach
	if areaRatio(hi, gamma) < ratio {
		return 0, &NonPhysicalError{Quantity: "expansion ratio", Value: ratio}
	}
	var residual float64
	for i := 0; i < e.MaxIter; i++ {
		mid := 0.5 * (lo + hi)
		r := areaRatio(mid, gamma)
		residual = math.Abs(r-ratio) / ratio
		if residual < e.MachTol || hi-lo < e.MachTol {
			return mid, nil
		}
		// Area ratio grows with Mach on the supersonic branch.
		if r < ratio {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0, &ConvergenceError{Iterations: e.MaxIter, LastResidual: residual}
}

// Evaluate computes the performance point for a chamber pressure (Pa),
// ambient pressure (Pa), specific-heat ratio and effective characteristic
// velocity (m/s).
func (e Evaluator) Evaluate(chamberP, ambientP, gamma, cstar float64) (Point, error) {
	if chamberP <= 0 || math.IsNaN(chamberP) {
		return Point{}, &NonPhysicalError{Quantity: "chamber pressure", Value: chamberP}
	}
	if gamma <= 1 || cstar <= 0 {
		return Point{}, &NonPhysicalError{Quantity: "gas properties", Value: gamma}
	}

	n := e.Nozzle
	mach, err := e.exitMach(n.ExpansionRatio, gamma)
	if err != nil {
		return Point{}, err
	}

	// Stagnation-to-exit ratios from the exit Mach number.
	tRatio := 1 + (gamma-1)/2*mach*mach
	exitP := chamberP * math.Pow(tRatio, -gamma/(gamma-1))

	// gamma*R*Tc recovered from the effective c*:
	// c* = sqrt(gamma*R*Tc) / (gamma * ((2/(gamma+1))^((gamma+1)/(2(gamma-1)))))
	gf := gamma * math.Pow(2/(gamma+1), (gamma+1)/(2*(gamma-1)))
	gRTc := math.Pow(cstar*gf, 2)

	exitV := mach * math.Sqrt(gRTc/tRatio)
	massFlow := n.DischargeCoeff * chamberP * n.ThroatArea / cstar

	thrust := massFlow*exitV + (exitP-ambientP)*n.ExitArea()
	isp := thrust / (massFlow * G0)

	if thrust < 0 {
		return Point{}, &NonPhysicalError{Quantity: "thrust", Value: thrust}
	}
	if math.IsNaN(isp) || math.IsInf(isp, 0) {
		return Point{}, &NonPhysicalError{Quantity: "specific impulse", Value: isp}
	}

	return Point{
		MassFlow:     massFlow,
		ExitMach:     mach,
		ExitPressure: exitP,
		ExitVelocity: exitV,
		Thrust:       thrust,
		Isp:          isp,
	}, nil
}
