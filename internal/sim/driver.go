package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/kestrel-aero/motorsim/internal/grain"
	"github.com/kestrel-aero/motorsim/internal/nozzle"
	"github.com/kestrel-aero/motorsim/internal/pressure"
)

// Driver owns one simulation run. It is single-threaded; for batch studies
// give every goroutine its own Driver and grain.
type Driver struct {
	Grain      *grain.Grain
	Ballistics Ballistics
	Evaluator  nozzle.Evaluator
	Config     Config

	metrics   []Metric
	observers []Observer
}

// NewDriver assembles a driver from its components.
func NewDriver(g *grain.Grain, b Ballistics, ev nozzle.Evaluator, cfg Config) *Driver {
	return &Driver{Grain: g, Ballistics: b, Evaluator: ev, Config: cfg}
}

func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *Driver) validate() error {
	if d.Grain == nil || d.Ballistics == nil {
		return fmt.Errorf("sim: driver missing grain or ballistics")
	}
	if d.Config.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %g", d.Config.Dt)
	}
	if d.Config.MaxTime <= 0 {
		return fmt.Errorf("sim: max time must be positive, got %g", d.Config.MaxTime)
	}
	return nil
}

// retryable reports whether a step failure may clear on retry (with a
// smaller dt). Everything except solver non-convergence is fatal: bad
// propellant state, geometry divergence, non-physical performance and
// provider timeouts all indicate conditions a rerun of the same step cannot
// fix.
func retryable(err error) bool {
	var ce *pressure.ConvergenceError
	return errors.As(err, &ce)
}

// Run executes the stepping loop until burnout, the configured time limit,
// or failure. The returned Result always carries every committed state;
// cancellation and fatal errors surface alongside the partial sequence.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	maxFailures := d.Config.MaxConsecutiveFailures
	if maxFailures <= 0 {
		maxFailures = DefaultMaxConsecutiveFailures
	}

	res := &Result{Metrics: make(map[string]float64)}
	for _, m := range d.metrics {
		m.Reset()
	}

	commit := func(st State) {
		res.States = append(res.States, st)
		for _, m := range d.metrics {
			m.Observe(st)
		}
		for _, o := range d.observers {
			o.OnStep(st)
		}
	}

	terminal := func(t float64) State {
		return State{Time: t, Pressure: d.Config.Ambient, Radius: d.Grain.Radius()}
	}

	g := d.Grain
	cfg := d.Config
	t := 0.0
	prevP := 0.0
	failures := 0
	cacheFlagged := false

	for {
		// Cooperative cancellation between steps only; a started solve
		// always finishes.
		select {
		case <-ctx.Done():
			res.Status = Failed
			d.finish(res)
			return res, ctx.Err()
		default:
		}

		if g.BurnedOut() {
			commit(terminal(t))
			res.Status = BurnoutCompleted
			break
		}
		if t >= cfg.MaxTime {
			res.Status = Completed
			res.Truncated = true
			break
		}

		dt := cfg.Dt
		seed := prevP
		var pt StepPoint
		var perf nozzle.Point
		for {
			var stepErr error
			pt, stepErr = d.Ballistics.Point(ctx, g, seed, t)
			if stepErr == nil {
				perf, stepErr = d.Evaluator.Evaluate(pt.Pressure, cfg.Ambient, pt.Gamma, pt.CStar)
			}
			if stepErr == nil {
				break
			}

			if !retryable(stepErr) {
				res.Status = Failed
				d.finish(res)
				return res, &StepError{Step: len(res.States), Time: t, Err: stepErr}
			}
			failures++
			if failures >= maxFailures {
				res.Status = Failed
				d.finish(res)
				return res, &StepError{Step: len(res.States), Time: t, Err: stepErr}
			}
			if cfg.AdaptiveRetry {
				// Repeating the identical solve cannot converge any
				// better: re-bracket from a progressively wider seed and
				// commit a half-length step once one succeeds.
				dt /= 2
				seed = pressure.DefaultGuess * math.Pow(4, float64(failures))
			}
		}
		failures = 0

		if pt.FromCache && !cacheFlagged {
			res.Flags = append(res.Flags, "thermo-cache")
			cacheFlagged = true
		}

		commit(State{
			Time:           t,
			Pressure:       pt.Pressure,
			BurningArea:    g.BurningArea(),
			Radius:         g.Radius(),
			RegressionRate: pt.RegressionRate,
			MassFlow:       perf.MassFlow,
			Thrust:         perf.Thrust,
			Isp:            perf.Isp,
			MixtureRatio:   pt.MixtureRatio,
		})

		burnedOut, err := g.Advance(pt.RegressionRate, dt)
		if err != nil {
			res.Status = Failed
			d.finish(res)
			return res, &StepError{Step: len(res.States), Time: t, Err: err}
		}

		t += dt
		prevP = pt.Pressure

		if burnedOut {
			commit(terminal(t))
			res.Status = BurnoutCompleted
			break
		}
	}

	d.finish(res)
	return res, nil
}

func (d *Driver) finish(res *Result) {
	res.Summary = summarize(res.States)
	for _, m := range d.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
}
