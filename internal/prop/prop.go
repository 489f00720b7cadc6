// Package prop defines propellant property records and the regression-rate
// laws for solid and hybrid motors.
//
// Rates are pure functions of their inputs: the same pressure, temperature
// and property record always produce the same rate. Validation failures are
// reported as [*InvalidStateError] so callers can distinguish bad operating
// points from numerical faults downstream.
package prop

import (
	"fmt"
	"math"
)

// Properties holds the validated ballistic and thermochemical data for one
// propellant. The record is immutable once loaded; a simulation run owns its
// copy for the duration of the run.
type Properties struct {
	Name string

	Density     float64 // kg/m^3
	BurnCoeff   float64 // a in r = a*P^n (SI: m/s at P in Pa)
	PressureExp float64 // n, dimensionless
	TempSens    float64 // sigma_p, 1/K
	RefTemp     float64 // K

	// Validated soak temperature range. A zero range disables the check.
	MinTemp float64 // K
	MaxTemp float64 // K

	CStar     float64 // effective characteristic velocity, m/s
	Gamma     float64 // specific-heat ratio
	MolWeight float64 // kg/kmol
}

// InvalidStateError reports a regression-model input outside the propellant's
// valid operating envelope.
type InvalidStateError struct {
	Quantity string
	Value    float64
	Reason   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("prop: invalid %s %g: %s", e.Quantity, e.Value, e.Reason)
}

// SolidRate evaluates Vieille's law with temperature sensitivity:
//
//	r = a * P^n * exp(sigma_p * (T - T_ref))
//
// pressure is chamber pressure in Pa, temp the grain soak temperature in K.
func SolidRate(pressure, temp float64, p Properties) (float64, error) {
	if pressure <= 0 || math.IsNaN(pressure) || math.IsInf(pressure, 0) {
		return 0, &InvalidStateError{Quantity: "pressure", Value: pressure, Reason: "must be positive and finite"}
	}
	if p.MinTemp < p.MaxTemp && (temp < p.MinTemp || temp > p.MaxTemp) {
		return 0, &InvalidStateError{
			Quantity: "temperature",
			Value:    temp,
			Reason:   fmt.Sprintf("outside validated range [%g, %g]", p.MinTemp, p.MaxTemp),
		}
	}
	r := p.BurnCoeff * math.Pow(pressure, p.PressureExp) * math.Exp(p.TempSens*(temp-p.RefTemp))
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, &InvalidStateError{Quantity: "rate", Value: r, Reason: "non-finite regression rate"}
	}
	return r, nil
}

// Enhancement scales a hybrid regression rate for vortex injection, catalytic
// additives and surface roughness. Composition is assumed multiplicative; the
// source data does not settle whether the factors interact.
type Enhancement struct {
	Vortex    float64
	Catalytic float64
	Roughness float64
}

// NoEnhancement is the identity scaling.
func NoEnhancement() Enhancement {
	return Enhancement{Vortex: 1, Catalytic: 1, Roughness: 1}
}

// Combined returns the product of the three factors.
func (e Enhancement) Combined() (float64, error) {
	for _, f := range []struct {
		name string
		v    float64
	}{{"vortex", e.Vortex}, {"catalytic", e.Catalytic}, {"roughness", e.Roughness}} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return 0, &InvalidStateError{Quantity: f.name + " factor", Value: f.v, Reason: "must be >= 0 and finite"}
		}
	}
	return e.Vortex * e.Catalytic * e.Roughness, nil
}

// HybridLaw is the oxidizer-flux regression law r = a * Gox^n, optionally
// scaled by an enhancement factor.
type HybridLaw struct {
	A           float64 // m/s at Gox in kg/(m^2 s)
	N           float64
	Enhancement Enhancement
}

// NewHybridLaw returns a law with identity enhancement.
func NewHybridLaw(a, n float64) HybridLaw {
	return HybridLaw{A: a, N: n, Enhancement: NoEnhancement()}
}

// Rate is a hybrid regression result. Base is the unscaled a*Gox^n value and
// Factor the combined enhancement, kept separate for auditability.
type Rate struct {
	Base   float64
	Factor float64
	Value  float64
}

// Rate evaluates the law at the given oxidizer mass flux (kg/(m^2 s)).
func (l HybridLaw) Rate(flux float64) (Rate, error) {
	if flux <= 0 || math.IsNaN(flux) || math.IsInf(flux, 0) {
		return Rate{}, &InvalidStateError{Quantity: "oxidizer flux", Value: flux, Reason: "must be positive and finite"}
	}
	factor, err := l.Enhancement.Combined()
	if err != nil {
		return Rate{}, err
	}
	base := l.A * math.Pow(flux, l.N)
	if math.IsNaN(base) || math.IsInf(base, 0) {
		return Rate{}, &InvalidStateError{Quantity: "rate", Value: base, Reason: "non-finite regression rate"}
	}
	return Rate{Base: base, Factor: factor, Value: base * factor}, nil
}
