package nonlinear

import (
	"fmt"
	"strings"
)

// SolverKind selects how the stiffness matrix is updated between iterations.
type SolverKind int

const (
	NewtonRaphson SolverKind = iota
	ModifiedNewtonRaphson
	Secant
)

var solverNames = map[SolverKind]string{
	NewtonRaphson:         "newton-raphson",
	ModifiedNewtonRaphson: "modified-newton-raphson",
	Secant:                "secant",
}

func (k SolverKind) String() string {
	if s, ok := solverNames[k]; ok {
		return s
	}
	return fmt.Sprintf("solver(%d)", int(k))
}

// ParseSolverKind accepts the names printed by String and the short forms
// "nr" and "mnr". An empty string selects Newton-Raphson.
func ParseSolverKind(s string) (SolverKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "newton-raphson", "newtonraphson", "nr", "":
		return NewtonRaphson, nil
	case "modified-newton-raphson", "modifiednewtonraphson", "mnr":
		return ModifiedNewtonRaphson, nil
	case "secant":
		return Secant, nil
	}
	return 0, fmt.Errorf("%w: unknown solver %q", ErrInvalidParameters, s)
}

// Control selects how the load factor evolves.
type Control int

const (
	// LoadControl applies equal load-factor increments per step.
	LoadControl Control = iota
	// ArcLengthControl constrains the norm of the step's displacement
	// increment and lets the load factor follow.
	ArcLengthControl
)

func (c Control) String() string {
	switch c {
	case LoadControl:
		return "load"
	case ArcLengthControl:
		return "arc-length"
	}
	return fmt.Sprintf("control(%d)", int(c))
}

func ParseControl(s string) (Control, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "load", "standard", "":
		return LoadControl, nil
	case "arc-length", "arclength", "arc", "riks":
		return ArcLengthControl, nil
	}
	return 0, fmt.Errorf("%w: unknown control %q", ErrInvalidParameters, s)
}

const (
	DefaultNumberOfSteps         = 50
	DefaultMaxIterations         = 1000
	DefaultMinIterations         = 2
	DefaultForceTolerance        = 1e-3
	DefaultDisplacementTolerance = 1e-8
	DefaultDesiredIterations     = 5
)

// Parameters configures an analysis. It is copied into the analysis when
// the analysis is created and never changed afterwards.
type Parameters struct {
	Solver                SolverKind
	Control               Control
	NumberOfSteps         int
	MaxIterations         int
	MinIterations         int
	ForceTolerance        float64
	DisplacementTolerance float64

	// Arc-length settings. ArcLength of zero derives the first radius from
	// the elastic predictor; zero bounds mean unbounded.
	DesiredIterations int
	ArcLength         float64
	MinArcLength      float64
	MaxArcLength      float64

	// MonitoredDoF is the DOF recorded in the load-displacement output.
	// A negative value selects the last unconstrained DOF.
	MonitoredDoF int
}

func DefaultParameters() Parameters {
	return Parameters{
		Solver:                NewtonRaphson,
		Control:               LoadControl,
		NumberOfSteps:         DefaultNumberOfSteps,
		MaxIterations:         DefaultMaxIterations,
		MinIterations:         DefaultMinIterations,
		ForceTolerance:        DefaultForceTolerance,
		DisplacementTolerance: DefaultDisplacementTolerance,
		DesiredIterations:     DefaultDesiredIterations,
		MonitoredDoF:          -1,
	}
}

func (p Parameters) Validate() error {
	if _, ok := solverNames[p.Solver]; !ok {
		return fmt.Errorf("%w: unknown solver %d", ErrInvalidParameters, int(p.Solver))
	}
	if p.Control != LoadControl && p.Control != ArcLengthControl {
		return fmt.Errorf("%w: unknown control %d", ErrInvalidParameters, int(p.Control))
	}
	if p.NumberOfSteps <= 0 {
		return fmt.Errorf("%w: number of steps must be positive, got %d", ErrInvalidParameters, p.NumberOfSteps)
	}
	if p.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidParameters, p.MaxIterations)
	}
	if p.MinIterations < 1 {
		return fmt.Errorf("%w: min iterations must be at least 1, got %d", ErrInvalidParameters, p.MinIterations)
	}
	if p.MinIterations > p.MaxIterations {
		return fmt.Errorf("%w: min iterations %d exceeds max iterations %d", ErrInvalidParameters, p.MinIterations, p.MaxIterations)
	}
	if p.ForceTolerance <= 0 {
		return fmt.Errorf("%w: force tolerance must be positive, got %g", ErrInvalidParameters, p.ForceTolerance)
	}
	if p.DisplacementTolerance <= 0 {
		return fmt.Errorf("%w: displacement tolerance must be positive, got %g", ErrInvalidParameters, p.DisplacementTolerance)
	}
	if p.Control == ArcLengthControl {
		if p.DesiredIterations <= 0 {
			return fmt.Errorf("%w: desired iterations must be positive, got %d", ErrInvalidParameters, p.DesiredIterations)
		}
		if p.ArcLength < 0 || p.MinArcLength < 0 || p.MaxArcLength < 0 {
			return fmt.Errorf("%w: arc-length settings must not be negative", ErrInvalidParameters)
		}
		if p.MaxArcLength > 0 && p.MinArcLength > p.MaxArcLength {
			return fmt.Errorf("%w: min arc length %g exceeds max arc length %g", ErrInvalidParameters, p.MinArcLength, p.MaxArcLength)
		}
	}
	return nil
}
