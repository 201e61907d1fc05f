package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a non-positive circuit constant, step
	// count, trial count or a malformed time interval.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrDomain indicates an argument outside a function's mathematical domain.
	ErrDomain = errors.New("dynamo: argument outside function domain")

	// ErrEmptyInput indicates a reduction over an empty series.
	ErrEmptyInput = errors.New("dynamo: empty input series")

	// ErrSamplingExhausted indicates rejection sampling ran out of attempts.
	ErrSamplingExhausted = errors.New("dynamo: sampling attempt budget exhausted")

	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// InvalidParam formats an ErrInvalidParameter with the offending name and value.
func InvalidParam(name string, value any) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalidParameter, name, value)
}
