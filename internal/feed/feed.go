// Package feed models the oxidizer supply of a hybrid motor as a mass-flow
// schedule over burn time.
package feed

import (
	"fmt"
	"sort"
)

// Schedule yields the oxidizer mass flow (kg/s) at time t.
type Schedule interface {
	MassFlow(t float64) float64
}

// Constant is a fixed-rate feed.
type Constant struct {
	Rate float64
}

func (c Constant) MassFlow(t float64) float64 { return c.Rate }

// Ramp interpolates linearly from Start to End over Duration, holding End
// afterwards.
type Ramp struct {
	Start    float64
	End      float64
	Duration float64
}

func (r Ramp) MassFlow(t float64) float64 {
	if t <= 0 || r.Duration <= 0 {
		return r.Start
	}
	if t >= r.Duration {
		return r.End
	}
	return r.Start + (r.End-r.Start)*t/r.Duration
}

// Table is a piecewise-linear schedule over time knots. Times must be
// strictly increasing.
type Table struct {
	Times []float64
	Rates []float64
}

// NewTable validates the knots and builds a table schedule.
func NewTable(times, rates []float64) (Table, error) {
	if len(times) < 2 || len(times) != len(rates) {
		return Table{}, fmt.Errorf("feed: table needs >= 2 matched points, got %d/%d", len(times), len(rates))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return Table{}, fmt.Errorf("feed: table times not increasing at index %d", i)
		}
	}
	return Table{Times: times, Rates: rates}, nil
}

func (tb Table) MassFlow(t float64) float64 {
	if t <= tb.Times[0] {
		return tb.Rates[0]
	}
	n := len(tb.Times)
	if t >= tb.Times[n-1] {
		return tb.Rates[n-1]
	}
	i := sort.SearchFloat64s(tb.Times, t)
	frac := (t - tb.Times[i-1]) / (tb.Times[i] - tb.Times[i-1])
	return tb.Rates[i-1] + frac*(tb.Rates[i]-tb.Rates[i-1])
}
