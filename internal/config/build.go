package config

import (
	"fmt"

	"github.com/kestrel-aero/motorsim/internal/feed"
	"github.com/kestrel-aero/motorsim/internal/grain"
	"github.com/kestrel-aero/motorsim/internal/nozzle"
	"github.com/kestrel-aero/motorsim/internal/pressure"
	"github.com/kestrel-aero/motorsim/internal/prop"
	"github.com/kestrel-aero/motorsim/internal/sim"
	"github.com/kestrel-aero/motorsim/internal/thermo"
)

// BuildOptions carries collaborators that cannot live in a YAML file.
type BuildOptions struct {
	// Lookup, when set on a hybrid motor, refreshes c*/gamma per step.
	Lookup thermo.LookupFunc
	Cache  *thermo.Cache
}

// Build turns a validated Config into a ready-to-run driver. Every call
// produces an independent driver with its own grain.
func Build(cfg *Config, opts BuildOptions) (*sim.Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g, err := buildGrain(&cfg.Grain)
	if err != nil {
		return nil, err
	}

	solver := pressure.NewSolver()
	if cfg.Sim.RelTol > 0 {
		solver.RelTol = cfg.Sim.RelTol
	}
	if cfg.Sim.AbsTol > 0 {
		solver.AbsTol = cfg.Sim.AbsTol
	}
	if cfg.Sim.MaxIterations > 0 {
		solver.MaxIter = cfg.Sim.MaxIterations
	}

	props := prop.Properties{
		Name:        cfg.Propellant.Name,
		Density:     cfg.Propellant.Density,
		BurnCoeff:   cfg.Propellant.BurnCoeff,
		PressureExp: cfg.Propellant.PressureExp,
		TempSens:    cfg.Propellant.TempSens,
		RefTemp:     cfg.Propellant.RefTemp,
		MinTemp:     cfg.Propellant.MinTemp,
		MaxTemp:     cfg.Propellant.MaxTemp,
		CStar:       cfg.Propellant.CStar,
		Gamma:       cfg.Propellant.Gamma,
		MolWeight:   cfg.Propellant.MolWeight,
	}

	grainTemp := cfg.Sim.GrainTemp
	if grainTemp == 0 {
		grainTemp = DefaultSoakTemp
	}

	// The balance must see the same nozzle flow P*(Cd*At)/c* the evaluator
	// reports, or the committed mass flow drifts from the converged balance.
	cd := cfg.Nozzle.DischargeCoeff
	if cd == 0 {
		cd = 1
	}
	effThroat := cd * cfg.Nozzle.ThroatArea

	var ballistics sim.Ballistics
	switch cfg.Motor {
	case "solid":
		ballistics = sim.SolidBallistics{
			Props:     props,
			GrainTemp: grainTemp,
			Solver:    solver,
			Throat:    effThroat,
		}
	case "hybrid":
		sched, err := buildFeed(&cfg.Feed)
		if err != nil {
			return nil, err
		}
		law := prop.NewHybridLaw(cfg.Hybrid.BurnCoeff, cfg.Hybrid.FluxExp)
		if cfg.Hybrid.Vortex > 0 {
			law.Enhancement.Vortex = cfg.Hybrid.Vortex
		}
		if cfg.Hybrid.Catalytic > 0 {
			law.Enhancement.Catalytic = cfg.Hybrid.Catalytic
		}
		if cfg.Hybrid.Roughness > 0 {
			law.Enhancement.Roughness = cfg.Hybrid.Roughness
		}
		ballistics = sim.HybridBallistics{
			Fuel:     props,
			Law:      law,
			Feed:     sched,
			Solver:   solver,
			Throat:   effThroat,
			Lookup:   opts.Lookup,
			Cache:    opts.Cache,
			Oxidizer: cfg.Hybrid.Oxidizer,
			FuelName: cfg.Propellant.Name,
		}
	}

	ev := nozzle.NewEvaluator(nozzle.Nozzle{
		ThroatArea:     cfg.Nozzle.ThroatArea,
		ExpansionRatio: cfg.Nozzle.ExpansionRatio,
		DischargeCoeff: cfg.Nozzle.DischargeCoeff,
	})

	simCfg := sim.Config{
		Dt:            cfg.Sim.Dt,
		MaxTime:       cfg.Sim.MaxTime,
		Ambient:       cfg.Sim.Ambient,
		AdaptiveRetry: cfg.Sim.AdaptiveRetry,
	}

	return sim.NewDriver(g, ballistics, ev, simCfg), nil
}

func buildGrain(gc *GrainConfig) (*grain.Grain, error) {
	family, err := grain.ParseFamily(gc.Family)
	if err != nil {
		return nil, err
	}
	switch family {
	case grain.Cylindrical:
		return grain.NewBates(gc.OuterRadius, gc.PortRadius, gc.Length)
	case grain.SinglePort:
		return grain.NewSinglePort(gc.OuterRadius, gc.PortRadius, gc.Length)
	case grain.Star:
		return grain.NewStar(gc.OuterRadius, gc.PortRadius, gc.Length,
			grain.AreaTable{Radii: gc.TableRadii, Areas: gc.TableAreas})
	case grain.WagonWheel:
		return grain.NewWagonWheel(gc.OuterRadius, gc.PortRadius, gc.Length,
			grain.AreaTable{Radii: gc.TableRadii, Areas: gc.TableAreas})
	default:
		return nil, fmt.Errorf("config: unhandled grain family %v", family)
	}
}

func buildFeed(fc *FeedConfig) (feed.Schedule, error) {
	switch fc.Type {
	case "constant":
		return feed.Constant{Rate: fc.Rate}, nil
	case "ramp":
		return feed.Ramp{Start: fc.Start, End: fc.End, Duration: fc.Duration}, nil
	case "table":
		return feed.NewTable(fc.Times, fc.Rates)
	default:
		return nil, fmt.Errorf("config: unknown feed type %q", fc.Type)
	}
}
