package models

import "math"

// Law is a one-dimensional force–elongation relation.
type Law interface {
	// Force returns the axial force and the tangent stiffness at elongation e.
	Force(e float64) (force, tangent float64)
}

// Linear is a Hookean spring.
type Linear struct {
	K float64
}

func (l Linear) Force(e float64) (float64, float64) { return l.K * e, l.K }

// Bilinear is elastic with stiffness K1 up to |force| = Yield and continues
// with stiffness K2 beyond. A negative K2 softens the spring and gives the
// load–displacement curve a limit point at Yield.
type Bilinear struct {
	K1    float64
	K2    float64
	Yield float64
}

func (b Bilinear) Force(e float64) (float64, float64) {
	ey := b.Yield / b.K1
	if math.Abs(e) <= ey {
		return b.K1 * e, b.K1
	}
	sign := 1.0
	if e < 0 {
		sign = -1
	}
	return sign * (b.Yield + b.K2*(math.Abs(e)-ey)), b.K2
}

// Cubic is K·e + C·e³: hardening for C > 0, softening for C < 0.
type Cubic struct {
	K float64
	C float64
}

func (c Cubic) Force(e float64) (float64, float64) {
	return c.K*e + c.C*e*e*e, c.K + 3*c.C*e*e
}
