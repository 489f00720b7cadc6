// Package sim drives the time-stepped motor-performance simulation.
//
// The driver couples a regressing grain, a ballistics strategy (solid or
// hybrid) and a nozzle performance evaluator into an ordered, append-only
// sequence of chamber states. Each run owns its state sequence exclusively;
// drivers are safe to invoke concurrently as long as every invocation gets
// its own grain and configuration.
package sim

// State is one committed time step. The ordered sequence of states is the
// simulation's primary output artifact.
type State struct {
	Time           float64 // s
	Pressure       float64 // Pa
	BurningArea    float64 // m^2
	Radius         float64 // current port/web radius, m
	RegressionRate float64 // m/s
	MassFlow       float64 // kg/s
	Thrust         float64 // N
	Isp            float64 // s
	MixtureRatio   float64 // O/F, 0 for solids
}

// Status is the terminal condition of a run.
type Status int

const (
	Completed        Status = iota // reached the configured time limit
	BurnoutCompleted               // grain fully regressed
	Failed
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case BurnoutCompleted:
		return "burnout_completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config holds the per-run stepping parameters. Everything is explicit so a
// rerun with the same Config reproduces the state sequence byte for byte.
type Config struct {
	Dt      float64 // s
	MaxTime float64 // s
	Ambient float64 // Pa

	// MaxConsecutiveFailures caps solver retries before the run fails;
	// zero means the default of 3.
	MaxConsecutiveFailures int

	// AdaptiveRetry reacts to a solver non-convergence by re-seeding the
	// pressure bracket and halving the step about to be committed, instead
	// of repeating the identical solve. Committed states are never
	// revisited either way.
	AdaptiveRetry bool
}

// DefaultMaxConsecutiveFailures is applied when Config leaves the cap unset.
const DefaultMaxConsecutiveFailures = 3

// Summary condenses a completed run.
type Summary struct {
	MaxThrust       float64 // N
	AvgThrust       float64 // N
	TotalImpulse    float64 // N*s
	BurnTime        float64 // s
	BurnoutPressure float64 // Pa, last burning-step chamber pressure
	AvgPressure     float64 // Pa
	DeliveredIsp    float64 // s, impulse over expelled propellant weight
}

// Result is the full output of one run. States holds whatever was committed
// before termination, even when the run failed partway.
type Result struct {
	States    []State
	Summary   Summary
	Status    Status
	Truncated bool
	Metrics   map[string]float64

	// Flags records explicit approximate behavior (e.g. a property value
	// served from cache) so nothing is silently downgraded.
	Flags []string
}

// Final returns the last committed state.
func (r *Result) Final() (State, bool) {
	if len(r.States) == 0 {
		return State{}, false
	}
	return r.States[len(r.States)-1], true
}

// Metric accumulates a scalar over the committed states of one run.
type Metric interface {
	Name() string
	Observe(s State)
	Value() float64
	Reset()
}

// Observer is notified of every committed state, in order. Used by the live
// view; must not block.
type Observer interface {
	OnStep(s State)
}
