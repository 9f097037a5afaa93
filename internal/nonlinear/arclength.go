package nonlinear

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/nlsolve/internal/linalg"
)

// Sign is the direction of load-factor travel along the equilibrium path.
type Sign int

const (
	Positive Sign = 1
	Negative Sign = -1
)

func (s Sign) String() string {
	if s == Negative {
		return "negative"
	}
	return "positive"
}

var errNoLoadDirection = errors.New("nonlinear: external load produces no displacement")

// ArcLength is the continuation strategy: every step's accumulated
// displacement increment has Euclidean norm Radius and the load factor is
// solved for alongside the displacements.
type ArcLength struct {
	Radius            float64
	DesiredIterations int
	Sign              Sign
}

func (a *ArcLength) Control() Control { return ArcLengthControl }

// Increment solves K·x_r = −r and K·x_f = F and combines them as
// Δu = x_r + λ̇·x_f. The first iteration takes λ̇ from the radius and the
// sign; later iterations solve the spherical constraint for λ̇.
func (a *ArcLength) Increment(s *LoadStep, it *Iteration) (*mat.VecDense, float64, StopReason, error) {
	kr, eliminated := linalg.Simplify(it.Stiffness, s.constraints)

	rhs := linalg.ReduceVector(it.ResidualForces, eliminated)
	rhs.ScaleVec(-1, rhs)
	xr, err := linalg.Solve(kr, rhs)
	if err != nil {
		return nil, 0, ReasonSingular, err
	}
	xf, err := linalg.Solve(kr, linalg.ReduceVector(s.reference, eliminated))
	if err != nil {
		return nil, 0, ReasonSingular, err
	}
	it.IncrementFromResidual = xr
	it.IncrementFromExternal = xf

	var dl float64
	if it.Number == 1 {
		nf := linalg.Norm(xf)
		if nf == 0 {
			return nil, 0, ReasonSingular, errNoLoadDirection
		}
		dl = float64(a.Sign) * a.Radius / nf
	} else {
		acc := linalg.NewVector(it.Displacements.Len())
		acc.SubVec(it.Displacements, s.seed.Displacements)
		var ok bool
		dl, ok = ConstrainedLoadIncrement(acc, xr, xf, a.Radius)
		if !ok {
			return nil, 0, ReasonComplexRoots, nil
		}
	}
	return linalg.Combine(xr, dl, xf), dl, ReasonNone, nil
}

// ConstrainedLoadIncrement solves ‖acc + xr + λ̇·xf‖² = radius² for λ̇.
// Roots whose resulting increment points against acc are discarded; of the
// remaining roots the one closest to the linearised solution −a₃/a₂ wins.
// ok is false when the quadratic has no real root.
func ConstrainedLoadIncrement(acc, xr, xf *mat.VecDense, radius float64) (float64, bool) {
	base := linalg.NewVector(acc.Len())
	base.AddVec(acc, xr)

	a1 := mat.Dot(xf, xf)
	a2 := 2 * mat.Dot(xf, base)
	a3 := mat.Dot(base, base) - radius*radius
	if a1 == 0 {
		return 0, false
	}

	disc := a2*a2 - 4*a1*a3
	if disc < 0 {
		// round-off on a tangent constraint
		if -disc > 1e-12*a2*a2 {
			return 0, false
		}
		disc = 0
	}
	sq := math.Sqrt(disc)
	roots := [2]float64{(-a2 + sq) / (2 * a1), (-a2 - sq) / (2 * a1)}

	linear := 0.0
	if a2 != 0 {
		linear = -a3 / a2
	}

	var keep []float64
	for _, r := range roots {
		d := linalg.Combine(base, r, xf)
		if mat.Dot(d, acc) >= 0 {
			keep = append(keep, r)
		}
	}
	if len(keep) == 0 {
		keep = roots[:]
	}

	best := keep[0]
	for _, r := range keep[1:] {
		if math.Abs(r-linear) < math.Abs(best-linear) {
			best = r
		}
	}
	return best, true
}

// next returns the strategy for the step after prev: the radius scales by
// desired/required iterations and the sign flips when prev crossed a limit
// point.
func (a *ArcLength) next(prev *LoadStep, p Parameters) *ArcLength {
	required := prev.history.Len()
	radius := a.Radius
	if required > 0 {
		radius = a.Radius * float64(a.DesiredIterations) / float64(required)
	}
	sign := a.Sign
	if prev.StiffnessSignChanged() {
		sign = -sign
	}
	return &ArcLength{
		Radius:            clampRadius(radius, p),
		DesiredIterations: a.DesiredIterations,
		Sign:              sign,
	}
}

func clampRadius(r float64, p Parameters) float64 {
	if p.MinArcLength > 0 && r < p.MinArcLength {
		r = p.MinArcLength
	}
	if p.MaxArcLength > 0 && r > p.MaxArcLength {
		r = p.MaxArcLength
	}
	return r
}
