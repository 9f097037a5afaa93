package nonlinear

import (
	"errors"
	"fmt"
)

// Input errors. These are returned before any step runs; divergence during
// the analysis is reported through Result instead.
var (
	// ErrInvalidParameters indicates a Parameters value outside its valid range.
	ErrInvalidParameters = errors.New("nonlinear: invalid parameters")

	// ErrDimensionMismatch indicates the model's vectors or matrices do not
	// match its number of DOFs.
	ErrDimensionMismatch = errors.New("nonlinear: dimension mismatch")

	// ErrZeroLoad indicates an all-zero reference force vector where a
	// load is required.
	ErrZeroLoad = errors.New("nonlinear: reference load is zero")

	// ErrNoModel indicates a nil model.
	ErrNoModel = errors.New("nonlinear: no model")
)

// StopReason names why a step stopped iterating.
type StopReason int

const (
	ReasonNone StopReason = iota
	ReasonMaxIterations
	ReasonNotFinite
	ReasonSingular
	ReasonComplexRoots
)

func (r StopReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMaxIterations:
		return "maximum iterations reached"
	case ReasonNotFinite:
		return "non-finite values (NaN/Inf)"
	case ReasonSingular:
		return "singular stiffness"
	case ReasonComplexRoots:
		return "arc-length constraint has no real root"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// StepFailure describes the iteration at which a step stopped.
type StepFailure struct {
	Step       int
	Iteration  int
	LoadFactor float64
	Reason     StopReason
	Wrapped    error
}

func (e *StepFailure) Error() string {
	msg := fmt.Sprintf("step %d stopped at iteration %d (load factor %.6g): %s", e.Step, e.Iteration, e.LoadFactor, e.Reason)
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *StepFailure) Unwrap() error {
	return e.Wrapped
}
