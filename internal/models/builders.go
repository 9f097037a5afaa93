package models

// NewSpring is a single linear spring from a fixed DOF 0 to DOF 1 with
// force f on DOF 1.
func NewSpring(k, f float64) *Assembly {
	a := NewAssembly("spring", 2)
	_ = a.Add(&Spring{I: 0, J: 1, Law: Linear{K: k}})
	a.Fix(0)
	a.Load(1, f)
	return a
}

// NewSofteningSpring is NewSpring with a bilinear law. With k2 < 0 the
// load–displacement curve peaks at fy.
func NewSofteningSpring(k1, k2, fy, f float64) *Assembly {
	a := NewAssembly("softening-spring", 2)
	_ = a.Add(&Spring{I: 0, J: 1, Law: Bilinear{K1: k1, K2: k2, Yield: fy}})
	a.Fix(0)
	a.Load(1, f)
	return a
}

// NewSpringChain is n cubic springs in series. DOF 0 is fixed and f acts
// on DOF n.
func NewSpringChain(n int, k, c, f float64) *Assembly {
	if n < 1 {
		n = 1
	}
	a := NewAssembly("spring-chain", n+1)
	for i := range n {
		_ = a.Add(&Spring{I: i, J: i + 1, Law: Cubic{K: k, C: c}})
	}
	a.Fix(0)
	a.Load(n, f)
	return a
}

// NewVonMisesTruss is the shallow two-bar truss: supports at (0, 0) and
// (span, 0), apex at (span/2, rise), downward load p on the apex. Node k
// owns DOFs 2k and 2k+1; the apex vertical is DOF 3.
func NewVonMisesTruss(span, rise, ea, p float64) *Assembly {
	a := NewAssembly("von-mises-truss", 6)
	_ = a.Add(
		NewBar(0, 0, span/2, rise, [4]int{0, 1, 2, 3}, ea),
		NewBar(span/2, rise, span, 0, [4]int{2, 3, 4, 5}, ea),
	)
	a.Fix(0, 1, 4, 5)
	a.Load(3, -p)
	return a
}
