package sim

import "fmt"

// StepError wraps a component failure with the step index and simulation
// time at which it occurred. The underlying typed error (convergence,
// geometry divergence, non-physical result, provider timeout, invalid
// propellant state) is reachable through errors.As.
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("sim: step %d (t=%.4fs): %v", e.Step, e.Time, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
