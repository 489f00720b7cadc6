// Package grain models regressing propellant geometry.
//
// A Grain advances its port/web radius once per simulation step and reports
// burnout when the radius reaches the outer bound. The burning-surface area
// formula is selected by grain family: cylindrical families use the analytic
// 2*pi*L*r lateral surface, star and wagon-wheel grains interpolate a
// caller-supplied area-vs-radius table.
package grain

import (
	"fmt"
	"math"
	"sort"
)

// Family tags the geometric family of a grain.
type Family int

const (
	Cylindrical Family = iota // BATES-style cylindrical port
	Star
	WagonWheel
	SinglePort // hybrid single circular port
)

func (f Family) String() string {
	switch f {
	case Cylindrical:
		return "cylindrical"
	case Star:
		return "star"
	case WagonWheel:
		return "wagon_wheel"
	case SinglePort:
		return "single_port"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// ParseFamily maps a config tag to a Family.
func ParseFamily(s string) (Family, error) {
	switch s {
	case "cylindrical", "bates":
		return Cylindrical, nil
	case "star":
		return Star, nil
	case "wagon_wheel":
		return WagonWheel, nil
	case "single_port":
		return SinglePort, nil
	default:
		return 0, fmt.Errorf("grain: unknown family %q", s)
	}
}

// AreaTable is a piecewise-linear area-vs-radius function for star and
// wagon-wheel grains. Radii must be strictly increasing.
type AreaTable struct {
	Radii []float64
	Areas []float64
}

// Validate checks table shape and monotonicity.
func (t AreaTable) Validate() error {
	if len(t.Radii) < 2 || len(t.Radii) != len(t.Areas) {
		return fmt.Errorf("grain: area table needs >= 2 matched points, got %d/%d", len(t.Radii), len(t.Areas))
	}
	for i := 1; i < len(t.Radii); i++ {
		if t.Radii[i] <= t.Radii[i-1] {
			return fmt.Errorf("grain: area table radii not increasing at index %d", i)
		}
	}
	return nil
}

// At interpolates the burning area at radius r, clamping outside the table.
func (t AreaTable) At(r float64) float64 {
	if r <= t.Radii[0] {
		return t.Areas[0]
	}
	n := len(t.Radii)
	if r >= t.Radii[n-1] {
		return t.Areas[n-1]
	}
	i := sort.SearchFloat64s(t.Radii, r)
	// t.Radii[i-1] < r <= t.Radii[i]
	frac := (r - t.Radii[i-1]) / (t.Radii[i] - t.Radii[i-1])
	return t.Areas[i-1] + frac*(t.Areas[i]-t.Areas[i-1])
}

// DivergenceError reports a non-physical computed burning area. It is fatal
// for the run that produced it.
type DivergenceError struct {
	Radius float64
	Area   float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("grain: divergent burning area %g at radius %g", e.Area, e.Radius)
}

// Grain is the evolving geometry of one propellant grain or fuel port. The
// radius never decreases; once burned out the grain is terminal and every
// further Advance is a no-op.
type Grain struct {
	family    Family
	outer     float64
	radius    float64
	length    float64
	table     AreaTable
	burnedOut bool
}

func newGrain(f Family, outer, radius, length float64) (*Grain, error) {
	if outer <= 0 || radius < 0 || length <= 0 {
		return nil, fmt.Errorf("grain: non-positive dimensions (outer=%g radius=%g length=%g)", outer, radius, length)
	}
	if radius > outer {
		return nil, fmt.Errorf("grain: initial radius %g exceeds outer bound %g", radius, outer)
	}
	g := &Grain{family: f, outer: outer, radius: radius, length: length}
	if radius >= outer {
		// Zero web: burned out before the first step.
		g.burnedOut = true
	}
	return g, nil
}

// NewBates builds a cylindrical (BATES) grain with the given outer radius,
// initial port radius and length, all in meters.
func NewBates(outer, port, length float64) (*Grain, error) {
	return newGrain(Cylindrical, outer, port, length)
}

// NewSinglePort builds a hybrid single-port fuel grain.
func NewSinglePort(outer, port, length float64) (*Grain, error) {
	return newGrain(SinglePort, outer, port, length)
}

// NewStar builds a star grain whose burning area follows the supplied table.
// The radius coordinate is the regressed web distance.
func NewStar(outer, web, length float64, table AreaTable) (*Grain, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	g, err := newGrain(Star, outer, web, length)
	if err != nil {
		return nil, err
	}
	g.table = table
	return g, nil
}

// NewWagonWheel builds a wagon-wheel grain with a table-driven area function.
func NewWagonWheel(outer, web, length float64, table AreaTable) (*Grain, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	g, err := newGrain(WagonWheel, outer, web, length)
	if err != nil {
		return nil, err
	}
	g.table = table
	return g, nil
}

func (g *Grain) Family() Family      { return g.family }
func (g *Grain) Radius() float64     { return g.radius }
func (g *Grain) OuterBound() float64 { return g.outer }
func (g *Grain) Length() float64     { return g.length }
func (g *Grain) BurnedOut() bool     { return g.burnedOut }

// Web returns the remaining web thickness.
func (g *Grain) Web() float64 { return g.outer - g.radius }

// PortArea returns the flow-port cross section, used for oxidizer flux in
// hybrid motors.
func (g *Grain) PortArea() float64 {
	return math.Pi * g.radius * g.radius
}

// BurningArea returns the current burning-surface area. A burned-out grain
// has zero area.
func (g *Grain) BurningArea() float64 {
	if g.burnedOut {
		return 0
	}
	switch g.family {
	case Cylindrical, SinglePort:
		return 2 * math.Pi * g.length * g.radius
	case Star, WagonWheel:
		return g.table.At(g.radius)
	default:
		return 0
	}
}

// Advance regresses the grain by rate*dt and recomputes the burning area.
// It reports burnout when the radius reaches the outer bound; on that step
// the area is forced to zero and the grain becomes terminal. A negative or
// non-finite area yields a *DivergenceError.
func (g *Grain) Advance(rate, dt float64) (burnedOut bool, err error) {
	if g.burnedOut {
		return true, nil
	}
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return false, &DivergenceError{Radius: g.radius, Area: math.NaN()}
	}
	next := g.radius + rate*dt
	if next >= g.outer {
		g.radius = g.outer
		g.burnedOut = true
		return true, nil
	}
	g.radius = next
	area := g.BurningArea()
	if area < 0 || math.IsNaN(area) || math.IsInf(area, 0) {
		return false, &DivergenceError{Radius: g.radius, Area: area}
	}
	return false, nil
}
