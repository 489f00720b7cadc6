package sim

import (
	"context"
	"fmt"

	"github.com/kestrel-aero/motorsim/internal/feed"
	"github.com/kestrel-aero/motorsim/internal/grain"
	"github.com/kestrel-aero/motorsim/internal/pressure"
	"github.com/kestrel-aero/motorsim/internal/prop"
	"github.com/kestrel-aero/motorsim/internal/thermo"
)

// StepPoint is the resolved chamber condition for one step before the
// nozzle evaluation.
type StepPoint struct {
	Pressure       float64
	Residual       float64
	Iterations     int
	RegressionRate float64
	MixtureRatio   float64
	CStar          float64
	Gamma          float64
	FromCache      bool
}

// Ballistics resolves the chamber pressure and regression rate at one
// instant. prevP is the previous step's pressure (0 on the first step).
type Ballistics interface {
	Point(ctx context.Context, g *grain.Grain, prevP, t float64) (StepPoint, error)
}

// SolidBallistics couples Vieille's law to the implicit chamber balance:
// the regression rate depends on pressure, so every step is a nonlinear
// solve seeded with the previous pressure.
type SolidBallistics struct {
	Props     prop.Properties
	GrainTemp float64 // K
	Solver    pressure.Solver
	Throat    float64 // effective throat area Cd*At, m^2
}

func (s SolidBallistics) Point(ctx context.Context, g *grain.Grain, prevP, t float64) (StepPoint, error) {
	bal := pressure.Balance{
		Density:     s.Props.Density,
		BurningArea: g.BurningArea(),
		ThroatArea:  s.Throat,
		CStar:       s.Props.CStar,
		Rate: func(p float64) (float64, error) {
			return prop.SolidRate(p, s.GrainTemp, s.Props)
		},
	}
	sol, err := s.Solver.Solve(bal, prevP)
	if err != nil {
		return StepPoint{}, err
	}
	rate, err := prop.SolidRate(sol.Pressure, s.GrainTemp, s.Props)
	if err != nil {
		return StepPoint{}, err
	}
	return StepPoint{
		Pressure:       sol.Pressure,
		Residual:       sol.Residual,
		Iterations:     sol.Iterations,
		RegressionRate: rate,
		CStar:          s.Props.CStar,
		Gamma:          s.Props.Gamma,
	}, nil
}

// HybridBallistics drives regression from oxidizer mass flux. The rate does
// not depend on pressure, but the result is still routed through the same
// balance solve so the mass-conservation residual is checked for every
// committed state. An optional equilibrium lookup refreshes c* and gamma at
// the step's mixture ratio.
type HybridBallistics struct {
	Fuel   prop.Properties
	Law    prop.HybridLaw
	Feed   feed.Schedule
	Solver pressure.Solver
	Throat float64 // effective throat area Cd*At, m^2

	// Optional property refresh per operating point.
	Lookup   thermo.LookupFunc
	Cache    *thermo.Cache
	Oxidizer string
	FuelName string
}

func (h HybridBallistics) Point(ctx context.Context, g *grain.Grain, prevP, t float64) (StepPoint, error) {
	mox := h.Feed.MassFlow(t)
	port := g.PortArea()
	if port <= 0 {
		return StepPoint{}, fmt.Errorf("sim: zero port area at t=%g", t)
	}

	rate, err := h.Law.Rate(mox / port)
	if err != nil {
		return StepPoint{}, err
	}
	mfuel := h.Fuel.Density * rate.Value * g.BurningArea()
	if mfuel <= 0 {
		return StepPoint{}, fmt.Errorf("sim: no fuel generation at t=%g", t)
	}
	mr := mox / mfuel

	cstar, gamma := h.Fuel.CStar, h.Fuel.Gamma
	fromCache := false
	if h.Lookup != nil {
		guess := prevP
		if guess <= 0 {
			guess = pressure.DefaultGuess
		}
		req := thermo.Request{Oxidizer: h.Oxidizer, Fuel: h.FuelName, Pressure: guess, MixtureRatio: mr}

		var props thermo.Properties
		if h.Cache != nil {
			props, fromCache, err = h.Cache.Lookup(ctx, h.Lookup, req)
		} else {
			props, err = h.Lookup(ctx, req)
		}
		if err != nil {
			return StepPoint{}, err
		}
		cstar, gamma = props.CStar, props.Gamma
	}

	bal := pressure.Balance{
		Density:     h.Fuel.Density,
		BurningArea: g.BurningArea(),
		ThroatArea:  h.Throat,
		CStar:       cstar,
		Injected:    mox,
		Rate:        func(p float64) (float64, error) { return rate.Value, nil },
	}
	sol, err := h.Solver.Solve(bal, prevP)
	if err != nil {
		return StepPoint{}, err
	}

	return StepPoint{
		Pressure:       sol.Pressure,
		Residual:       sol.Residual,
		Iterations:     sol.Iterations,
		RegressionRate: rate.Value,
		MixtureRatio:   mr,
		CStar:          cstar,
		Gamma:          gamma,
		FromCache:      fromCache,
	}, nil
}
