package nonlinear

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/nlsolve/internal/linalg"
)

// CurvePoint is one point of the load-displacement curve.
type CurvePoint struct {
	LoadFactor   float64
	Displacement float64
}

// Result aggregates a finished or aborted run.
type Result struct {
	// Steps holds the converged steps in order.
	Steps           []*LoadStep
	Curve           []CurvePoint
	Metrics         map[string]float64
	TotalIterations int
	LoadFactor      float64

	Aborted     bool
	StopMessage string
	Failure     *StepFailure
	// FailedStep is the step that stopped, kept for inspection. It is not
	// part of Steps.
	FailedStep *LoadStep
}

type Option func(*Analysis)

func WithLogger(l *slog.Logger) Option {
	return func(a *Analysis) { a.logger = l }
}

func WithObserver(o Observer) Option {
	return func(a *Analysis) { a.observers = append(a.observers, o) }
}

func WithMetric(m Metric) Option {
	return func(a *Analysis) { a.metrics = append(a.metrics, m) }
}

// Analysis drives the sequence of load steps of a nonlinear analysis.
// It is not safe for concurrent use.
type Analysis struct {
	env       *environment
	observers []Observer
	metrics   []Metric
	logger    *slog.Logger

	target    float64
	increment float64
	steps     []*LoadStep
	failed    *LoadStep
}

// New validates the parameters against the model and returns an analysis
// ready to Execute.
func New(model Model, params Parameters, opts ...Option) (*Analysis, error) {
	if model == nil {
		return nil, ErrNoModel
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n := model.NumberOfDoFs()
	if n <= 0 {
		return nil, fmt.Errorf("%w: model has %d DOFs", ErrDimensionMismatch, n)
	}
	f := model.ExternalForces()
	if f == nil || f.Len() != n {
		return nil, fmt.Errorf("%w: external force vector does not have %d entries", ErrDimensionMismatch, n)
	}
	if !linalg.IsFinite(f) {
		return nil, fmt.Errorf("%w: external force vector is not finite", ErrInvalidParameters)
	}

	constraints := slices.Clone(model.ConstraintIndex())
	slices.Sort(constraints)
	constraints = slices.Compact(constraints)
	for _, c := range constraints {
		if c < 0 || c >= n {
			return nil, fmt.Errorf("%w: constrained DOF %d outside [0, %d)", ErrDimensionMismatch, c, n)
		}
	}
	if len(constraints) == n {
		return nil, fmt.Errorf("%w: every DOF is constrained", ErrInvalidParameters)
	}

	reference := linalg.ReduceVector(f, constraints)
	if params.Control == ArcLengthControl && linalg.SumSquares(reference) == 0 {
		return nil, ErrZeroLoad
	}

	monitored := params.MonitoredDoF
	if monitored >= n {
		return nil, fmt.Errorf("%w: monitored DOF %d outside [0, %d)", ErrDimensionMismatch, monitored, n)
	}
	if monitored < 0 {
		monitored = lastFree(n, constraints)
	}

	a := &Analysis{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.env = &environment{
		params:        params,
		model:         model,
		n:             n,
		constraints:   constraints,
		reference:     reference,
		fullReference: linalg.CloneVector(f),
		monitored:     monitored,
		logger:        a.logger,
	}
	return a, nil
}

func lastFree(n int, constraints []int) int {
	for i := n - 1; i >= 0; i-- {
		if _, found := slices.BinarySearch(constraints, i); !found {
			return i
		}
	}
	return 0
}

func (a *Analysis) AddObserver(o Observer) { a.observers = append(a.observers, o) }
func (a *Analysis) AddMetric(m Metric)     { a.metrics = append(a.metrics, m) }

func (a *Analysis) Parameters() Parameters { return a.env.params }

// MonitoredDoF is the DOF whose displacement is recorded in the output.
func (a *Analysis) MonitoredDoF() int { return a.env.monitored }

// Steps returns the converged steps recorded so far.
func (a *Analysis) Steps() []*LoadStep { return slices.Clone(a.steps) }

// Execute runs the step sequence up to loadFactor times the reference load.
// Divergence is not an error: the result is marked Aborted and carries the
// stop message. Errors are returned for invalid input and cancellation; the
// context is checked between steps.
func (a *Analysis) Execute(ctx context.Context, loadFactor float64) (*Result, error) {
	if loadFactor <= 0 || isNaNOrInf(loadFactor) {
		return nil, fmt.Errorf("%w: load factor must be positive and finite, got %g", ErrInvalidParameters, loadFactor)
	}

	a.target = loadFactor
	a.increment = loadFactor / float64(a.env.params.NumberOfSteps)
	a.steps = nil
	a.failed = nil
	for _, m := range a.metrics {
		m.Reset()
	}

	a.logger.Info("analysis starting",
		"solver", a.env.params.Solver.String(),
		"control", a.env.params.Control.String(),
		"dofs", a.env.n,
		"steps", a.env.params.NumberOfSteps,
		"load_factor", loadFactor)

	first := a.InitialStep()
	if first.Stop {
		return a.abort(first), nil
	}
	a.record(first)

	for !a.done() {
		select {
		case <-ctx.Done():
			return a.result(), ctx.Err()
		default:
		}

		step := a.ExecuteStep()
		if step.Stop {
			return a.abort(step), nil
		}
	}

	res := a.result()
	a.logger.Info("analysis complete",
		"steps", len(res.Steps),
		"iterations", res.TotalIterations,
		"load_factor", res.LoadFactor)
	for _, o := range a.observers {
		o.OnAnalysisComplete(res)
	}
	return res, nil
}

// InitialStep assembles the initial tangent, solves the elastic predictor at
// the first load increment and returns it as step 1 with one iteration.
func (a *Analysis) InitialStep() *LoadStep {
	env := a.env
	if a.increment == 0 {
		a.increment = 1 / float64(env.params.NumberOfSteps)
	}

	env.model.UpdateDisplacements(linalg.NewVector(env.n))
	env.model.CalculateForces()

	seed := NewIteration(env.n, env.model.AssembleStiffness())
	seed.InternalForces = env.model.AssembleInternalForces()

	step := newLoadStep(1, a.increment, seed, env, LoadStepping{})
	a.logger.Info("step starting", "step", 1, "load_factor", step.LoadFactor)
	step.predict()
	if step.Stop {
		a.failed = step
	}
	return step
}

// ExecuteStep creates the next step from the last converged one and
// iterates it. A converged step is recorded; a stopped step triggers
// CorrectResults. The caller decides whether to continue.
func (a *Analysis) ExecuteStep() *LoadStep {
	prev := a.last()
	if prev == nil {
		step := a.InitialStep()
		if !step.Stop {
			a.record(step)
		}
		return step
	}

	number := prev.Number + 1
	var step *LoadStep
	switch a.env.params.Control {
	case ArcLengthControl:
		step = newLoadStep(number, prev.LoadFactor, prev.FinalIteration(), a.env, a.nextArcLength(prev))
	default:
		step = newLoadStep(number, float64(number)*a.increment, prev.FinalIteration(), a.env, LoadStepping{})
	}

	a.logger.Info("step starting", "step", number, "load_factor", step.LoadFactor)
	step.Iterate()

	if step.Converged {
		a.record(step)
	} else {
		a.failed = step
	}
	return step
}

func (a *Analysis) nextArcLength(prev *LoadStep) *ArcLength {
	if arc, ok := prev.strategy.(*ArcLength); ok {
		return arc.next(prev, a.env.params)
	}

	radius := a.env.params.ArcLength
	if radius == 0 {
		radius = linalg.Norm(prev.FinalIteration().Displacements)
	}
	sign := Positive
	if prev.StiffnessSignChanged() {
		sign = Negative
	}
	return &ArcLength{
		Radius:            clampRadius(radius, a.env.params),
		DesiredIterations: a.env.params.DesiredIterations,
		Sign:              sign,
	}
}

// CorrectResults rolls the model back to the last converged step, or to
// the undeformed state when no step converged.
func (a *Analysis) CorrectResults() {
	env := a.env
	u := linalg.NewVector(env.n)
	last := a.last()
	if last != nil {
		u = linalg.CloneVector(last.FinalIteration().Displacements)
	}

	env.model.UpdateDisplacements(u)
	env.model.CalculateForces()
	if g, ok := env.model.(Grip); ok {
		g.SetDisplacements(u)
		if last != nil {
			g.SetReactions(last.reactions())
		} else {
			g.SetReactions(linalg.NewVector(env.n))
		}
	}
	a.logger.Info("results corrected to last converged step", "steps", len(a.steps))
}

// GenerateOutput returns the load-displacement curve: the origin followed by
// one point per converged step.
func (a *Analysis) GenerateOutput() []CurvePoint {
	out := make([]CurvePoint, 0, len(a.steps)+1)
	out = append(out, CurvePoint{})
	for _, s := range a.steps {
		if s.Monitored != nil {
			out = append(out, CurvePoint{LoadFactor: s.Monitored.LoadFactor, Displacement: s.Monitored.Displacement})
		}
	}
	return out
}

func (a *Analysis) last() *LoadStep {
	if len(a.steps) == 0 {
		return nil
	}
	return a.steps[len(a.steps)-1]
}

func (a *Analysis) done() bool {
	if len(a.steps) >= a.env.params.NumberOfSteps {
		return true
	}
	if a.env.params.Control == ArcLengthControl {
		last := a.last()
		return last != nil && last.LoadFactor >= a.target*(1-1e-12)
	}
	return false
}

func (a *Analysis) record(step *LoadStep) {
	final := step.FinalIteration()
	step.Monitored = &MonitoredPoint{
		LoadFactor:   step.LoadFactor,
		Displacement: final.Displacements.AtVec(a.env.monitored),
	}
	a.steps = append(a.steps, step)

	if g, ok := a.env.model.(Grip); ok {
		g.SetDisplacements(linalg.CloneVector(final.Displacements))
		g.SetReactions(step.reactions())
	}

	a.logger.Info("step converged",
		"step", step.Number,
		"iterations", step.history.Len(),
		"load_factor", step.LoadFactor,
		"displacement", step.Monitored.Displacement)

	for _, m := range a.metrics {
		m.Observe(step)
	}
	for _, o := range a.observers {
		o.OnStepConverged(step)
	}
}

func (a *Analysis) abort(step *LoadStep) *Result {
	a.failed = step
	a.CorrectResults()

	res := a.result()
	a.logger.Warn("analysis aborted", "step", step.Number, "message", step.StopMessage)
	for _, o := range a.observers {
		o.OnStepAborted(step)
	}
	for _, o := range a.observers {
		o.OnAnalysisAborted(res)
	}
	return res
}

func (a *Analysis) result() *Result {
	res := &Result{
		Steps:   slices.Clone(a.steps),
		Curve:   a.GenerateOutput(),
		Metrics: make(map[string]float64, len(a.metrics)),
	}
	for _, s := range a.steps {
		res.TotalIterations += s.history.Len()
	}
	if last := a.last(); last != nil {
		res.LoadFactor = last.LoadFactor
	}
	if a.failed != nil {
		res.Aborted = true
		res.StopMessage = a.failed.StopMessage
		res.Failure = a.failed.Failure
		res.FailedStep = a.failed
	}
	for _, m := range a.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}

// Displacements returns the displacements of the last converged step, or
// nil before any step converged.
func (a *Analysis) Displacements() *mat.VecDense {
	if last := a.last(); last != nil {
		return linalg.CloneVector(last.FinalIteration().Displacements)
	}
	return nil
}
