package nonlinear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSecantStiffnessClosedForm(t *testing.T) {
	k := mat.NewDense(2, 2, []float64{2, 0, 0, 3})
	du := vec(1, 2)
	dr := vec(4, 5)

	got := SecantStiffness(k, du, dr)

	// K + ((dr − K·du) / du·du) ⊗ du with K·du = [2 6]
	want := mat.NewDense(2, 2, []float64{
		2 + 2.0/5*1, 2.0 / 5 * 2,
		-1.0 / 5 * 1, 3 - 1.0/5*2,
	})
	if !mat.EqualApprox(got, want, 1e-12) {
		t.Errorf("expected\n%v\ngot\n%v", mat.Formatted(want), mat.Formatted(got))
	}

	var kdu mat.VecDense
	kdu.MulVec(got, du)
	if !mat.EqualApprox(&kdu, dr, 1e-12) {
		t.Errorf("secant condition violated: K·du = %v", kdu.RawVector().Data)
	}
	if k.At(0, 0) != 2 {
		t.Error("input stiffness modified")
	}
}

func TestSecantStiffnessZeroIncrement(t *testing.T) {
	k := mat.NewDense(1, 1, []float64{5})
	got := SecantStiffness(k, vec(0), vec(1))
	if got.At(0, 0) != 5 {
		t.Errorf("expected unchanged stiffness, got %g", got.At(0, 0))
	}
	got.Set(0, 0, 1)
	if k.At(0, 0) != 5 {
		t.Error("result aliases the input")
	}
}

func TestConstrainedLoadIncrement(t *testing.T) {
	tests := []struct {
		name       string
		acc, xr    *mat.VecDense
		xf         *mat.VecDense
		radius     float64
		want       float64
		wantStatus bool
	}{
		{
			name: "root against travel discarded",
			acc:  vec(1), xr: vec(0), xf: vec(1), radius: 2,
			want: 1, wantStatus: true,
		},
		{
			name: "both roots forward, closest to linear wins",
			acc:  vec(1, 0), xr: vec(0, 0), xf: vec(0.1, 1), radius: 2,
			want: (-0.2 + math.Sqrt(12.16)) / 2.02, wantStatus: true,
		},
		{
			name: "no real root",
			acc:  vec(3, 0), xr: vec(0, 0), xf: vec(0, 1), radius: 1,
			wantStatus: false,
		},
		{
			name: "zero load direction",
			acc:  vec(1), xr: vec(0), xf: vec(0), radius: 1,
			wantStatus: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConstrainedLoadIncrement(tt.acc, tt.xr, tt.xf, tt.radius)
			if ok != tt.wantStatus {
				t.Fatalf("expected ok=%v, got %v", tt.wantStatus, ok)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %g, got %g", tt.want, got)
			}
		})
	}
}

func TestConstrainedLoadIncrementSatisfiesConstraint(t *testing.T) {
	acc, xr, xf := vec(0.3, -0.1), vec(0.05, 0.02), vec(0.4, 0.9)
	const radius = 0.5

	dl, ok := ConstrainedLoadIncrement(acc, xr, xf, radius)
	if !ok {
		t.Fatal("expected a real root")
	}

	d := mat.NewVecDense(2, nil)
	d.AddVec(acc, xr)
	d.AddScaledVec(d, dl, xf)
	if n := mat.Norm(d, 2); math.Abs(n-radius) > 1e-9 {
		t.Errorf("expected norm %g, got %g", radius, n)
	}
}

func TestArcLengthNextAdaptsRadius(t *testing.T) {
	p := DefaultParameters()
	p.Control = ArcLengthControl
	p.MaxArcLength = 3

	prev := &LoadStep{environment: &environment{}}
	for range 2 {
		prev.history.append(&Iteration{})
	}

	a := &ArcLength{Radius: 1, DesiredIterations: 5, Sign: Positive}
	next := a.next(prev, p)
	if next.Radius != 2.5 {
		t.Errorf("expected radius 2.5, got %g", next.Radius)
	}
	if next.Sign != Positive {
		t.Errorf("sign flipped without a stiffness sign change")
	}

	a.Radius = 2
	if r := a.next(prev, p).Radius; r != 3 {
		t.Errorf("expected radius clamped to 3, got %g", r)
	}
}
