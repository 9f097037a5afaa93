package nonlinear

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/nlsolve/internal/linalg"
)

// StepState is the lifecycle state of a LoadStep.
type StepState int

const (
	StepIterating StepState = iota
	StepConverged
	StepStopped
)

func (s StepState) String() string {
	switch s {
	case StepConverged:
		return "converged"
	case StepStopped:
		return "stopped"
	}
	return "iterating"
}

// MonitoredPoint is the load factor and displacement at the monitored DOF
// of a converged step.
type MonitoredPoint struct {
	LoadFactor   float64
	Displacement float64
}

// environment is shared read-only by every step of one analysis.
type environment struct {
	params      Parameters
	model       Model
	n           int
	constraints []int
	// reference is the external force vector with constrained entries
	// zeroed; fullReference keeps them for reaction recovery.
	reference     *mat.VecDense
	fullReference *mat.VecDense
	monitored     int
	logger        *slog.Logger
}

// LoadStep iterates one load increment to equilibrium.
type LoadStep struct {
	Number      int
	LoadFactor  float64
	ForceVector *mat.VecDense

	Converged   bool
	Stop        bool
	StopMessage string
	Failure     *StepFailure
	Monitored   *MonitoredPoint

	history         History
	seed            *Iteration
	startLoadFactor float64
	strategy        Strategy

	*environment
}

// newLoadStep seeds a step from the final iteration of the previous one.
// The seed is re-balanced against this step's load and numbered 0.
func newLoadStep(number int, loadFactor float64, from *Iteration, env *environment, strategy Strategy) *LoadStep {
	s := &LoadStep{
		Number:          number,
		LoadFactor:      loadFactor,
		startLoadFactor: loadFactor,
		strategy:        strategy,
		environment:     env,
	}
	s.setForceVector()

	seed := from.Clone()
	seed.Number = 0
	seed.LoadFactorIncrement = 0
	seed.IncrementFromResidual = nil
	seed.IncrementFromExternal = nil
	seed.UpdateForces(s.ForceVector, seed.InternalForces)
	linalg.ZeroEntries(seed.ResidualForces, s.constraints)
	s.seed = seed
	return s
}

func (s *LoadStep) setForceVector() {
	s.ForceVector = linalg.Scaled(s.LoadFactor, s.reference)
}

// IncrementLoad adds dl to the load factor and rescales the force vector.
func (s *LoadStep) IncrementLoad(dl float64) {
	s.LoadFactor += dl
	s.setForceVector()
}

// Iterate runs equilibrium iterations until the step converges or stops.
// Calling it again restarts the step from its seed.
func (s *LoadStep) Iterate() {
	if s.history.Len() > 0 || s.Converged || s.Stop {
		s.history.reset()
		s.LoadFactor = s.startLoadFactor
		s.setForceVector()
		s.Converged, s.Stop = false, false
		s.StopMessage, s.Failure = "", nil
	}

	prev := s.seed
	for {
		it, ok := s.advance(prev)
		if !ok {
			return
		}
		if it.CheckConvergence(s.params) {
			s.Converged = true
			s.logger.Debug("step converged",
				"step", s.Number,
				"iterations", it.Number,
				"load_factor", s.LoadFactor)
			return
		}
		if reason := it.StopReason(s.params); reason != ReasonNone {
			s.fail(it, reason, nil)
			return
		}
		prev = it
	}
}

// predict performs the single elastic-predictor iteration of the first
// step and accepts it without a convergence check.
func (s *LoadStep) predict() {
	if _, ok := s.advance(s.seed); ok {
		s.Converged = true
	}
}

// advance performs one iteration starting from prev and appends it to the
// history. It returns false when the step had to stop.
func (s *LoadStep) advance(prev *Iteration) (*Iteration, bool) {
	it := prev.next()

	du, dl, reason, err := s.strategy.Increment(s, it)
	if reason != ReasonNone {
		s.history.append(it)
		s.fail(it, reason, err)
		return it, false
	}
	if dl != 0 {
		s.IncrementLoad(dl)
	}
	it.LoadFactorIncrement = dl
	it.IncrementDisplacements(du)

	s.model.UpdateDisplacements(it.Displacements)
	s.updateStiffness(it)
	s.model.CalculateForces()

	it.UpdateForces(s.ForceVector, s.model.AssembleInternalForces())
	linalg.ZeroEntries(it.ResidualForces, s.constraints)
	s.secantUpdate(prev, it)

	s.history.append(it)
	it.CalculateConvergence(s.ForceVector, s.history.First().DisplacementIncrement)

	s.logger.Debug("iteration",
		"step", s.Number,
		"iteration", it.Number,
		"load_factor", s.LoadFactor,
		"force_convergence", it.ForceConvergence,
		"displacement_convergence", it.DisplacementConvergence)

	if !it.IsFinite() {
		s.fail(it, ReasonNotFinite, nil)
		return it, false
	}
	return it, true
}

func (s *LoadStep) fail(it *Iteration, reason StopReason, err error) {
	s.Stop = true
	s.Failure = &StepFailure{
		Step:       s.Number,
		Iteration:  it.Number,
		LoadFactor: s.LoadFactor,
		Reason:     reason,
		Wrapped:    err,
	}
	s.StopMessage = s.Failure.Error()
	s.logger.Warn("step stopped",
		"step", s.Number,
		"iteration", it.Number,
		"reason", reason.String())
}

func (s *LoadStep) State() StepState {
	switch {
	case s.Converged:
		return StepConverged
	case s.Stop:
		return StepStopped
	}
	return StepIterating
}

// History returns the step's iteration record.
func (s *LoadStep) History() *History { return &s.history }

// Iterations returns a copy of the iteration list.
func (s *LoadStep) Iterations() []*Iteration { return s.history.All() }

// FinalIteration returns the last iteration, or the seed before Iterate.
func (s *LoadStep) FinalIteration() *Iteration {
	if it := s.history.Current(); it != nil {
		return it
	}
	return s.seed
}

// StartLoadFactor is the load factor the step was created with.
func (s *LoadStep) StartLoadFactor() float64 { return s.startLoadFactor }

// LoadFactorChange is the net load-factor change over the step.
func (s *LoadStep) LoadFactorChange() float64 { return s.LoadFactor - s.startLoadFactor }

func (s *LoadStep) Strategy() Strategy { return s.strategy }

// StiffnessSignChanged reports whether the determinant of the final
// stiffness has the opposite sign of the stiffness the step started from,
// i.e. the step passed a limit or bifurcation point.
func (s *LoadStep) StiffnessSignChanged() bool {
	final := s.FinalIteration()
	if s.seed == nil || final == s.seed || s.seed.Stiffness == nil || final.Stiffness == nil {
		return false
	}
	k0, _ := linalg.Simplify(s.seed.Stiffness, s.constraints)
	k1, _ := linalg.Simplify(final.Stiffness, s.constraints)
	return linalg.DetSign(k0)*linalg.DetSign(k1) < 0
}

// reactions returns internal minus applied forces at the constrained DOFs
// and zero elsewhere.
func (s *LoadStep) reactions() *mat.VecDense {
	final := s.FinalIteration()
	r := linalg.NewVector(s.n)
	for _, i := range s.constraints {
		r.SetVec(i, final.InternalForces.AtVec(i)-s.LoadFactor*s.fullReference.AtVec(i))
	}
	return r
}
