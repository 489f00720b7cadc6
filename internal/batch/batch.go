// Package batch runs independent simulations in parallel. Every run gets
// its own driver, grain and state sequence, so no locking is needed beyond
// the fan-out bookkeeping; the workload is embarrassingly parallel.
package batch

import (
	"context"
	"math"
	"sync"

	"github.com/kestrel-aero/motorsim/internal/sim"
)

// Builder constructs a fresh driver for one run. It must not share mutable
// state with other builders.
type Builder func() (*sim.Driver, error)

// Ensemble fans a set of runs across a bounded worker pool.
type Ensemble struct {
	Workers int // <= 0 means one worker per run
}

// Run executes every builder and collects per-run results and errors by
// index. A failed run never disturbs its neighbors.
func (e Ensemble) Run(ctx context.Context, builders []Builder) ([]*sim.Result, []error) {
	results := make([]*sim.Result, len(builders))
	errs := make([]error, len(builders))

	workers := e.Workers
	if workers <= 0 || workers > len(builders) {
		workers = len(builders)
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, build := range builders {
		wg.Add(1)
		go func(idx int, build Builder) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			d, err := build()
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = d.Run(ctx)
		}(i, build)
	}
	wg.Wait()

	return results, errs
}

// GridSearch sweeps named scalar parameters over explicit value grids and
// keeps the run maximizing a caller-chosen score.
type GridSearch struct {
	Params []string
	Ranges [][]float64
}

// Search evaluates every grid point. build receives one parameter
// assignment per call; score reduces a completed run to the objective.
// Failed points are skipped. The assignment order is deterministic.
func (g GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*sim.Driver, error),
	score func(*sim.Result) float64,
) (map[string]float64, float64, error) {
	best := math.Inf(-1)
	var bestParams map[string]float64

	err := g.walk(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		d, err := build(params)
		if err != nil {
			return
		}
		res, err := d.Run(ctx)
		if err != nil {
			return
		}
		if v := score(res); v > best {
			best = v
			bestParams = make(map[string]float64, len(params))
			for k, val := range params {
				bestParams[k] = val
			}
		}
	})
	if err != nil {
		return nil, 0, err
	}
	return bestParams, best, nil
}

func (g GridSearch) walk(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.Params) {
		visit(current)
		return nil
	}
	for _, v := range g.Ranges[depth] {
		current[g.Params[depth]] = v
		if err := g.walk(ctx, depth+1, current, visit); err != nil {
			return err
		}
	}
	delete(current, g.Params[depth])
	return nil
}
