package nonlinear_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/nlsolve/internal/models"
	"github.com/san-kum/nlsolve/internal/nonlinear"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func run(model nonlinear.Model, p nonlinear.Parameters, lambda float64, opts ...nonlinear.Option) *nonlinear.Result {
	GinkgoHelper()
	a, err := nonlinear.New(model, p, append([]nonlinear.Option{nonlinear.WithLogger(quiet)}, opts...)...)
	Expect(err).NotTo(HaveOccurred())
	res, err := a.Execute(context.Background(), lambda)
	Expect(err).NotTo(HaveOccurred())
	return res
}

func totalIterations(res *nonlinear.Result) int {
	n := 0
	for _, s := range res.Steps {
		n += len(s.Iterations())
	}
	return n
}

type stepCounter struct {
	n int
}

func (c *stepCounter) Name() string                { return "counted_steps" }
func (c *stepCounter) Observe(*nonlinear.LoadStep) { c.n++ }
func (c *stepCounter) Value() float64              { return float64(c.n) }
func (c *stepCounter) Reset()                      { c.n = 0 }

var _ = Describe("Analysis", func() {
	var p nonlinear.Parameters

	BeforeEach(func() {
		p = nonlinear.DefaultParameters()
		p.NumberOfSteps = 10
	})

	Describe("a linear spring", func() {
		It("solves a single step with the elastic predictor", func() {
			p.NumberOfSteps = 1
			res := run(models.NewSpring(1000, 500), p, 1)

			Expect(res.Aborted).To(BeFalse())
			Expect(res.Steps).To(HaveLen(1))

			step := res.Steps[0]
			Expect(step.Iterations()).To(HaveLen(1))
			final := step.FinalIteration()
			Expect(final.Displacements.AtVec(1)).To(BeNumerically("~", 0.5, 1e-12))
			Expect(mat.Norm(final.ResidualForces, 2)).To(BeNumerically("<", 1e-9))
			Expect(res.Curve).To(Equal([]nonlinear.CurvePoint{{}, {LoadFactor: 1, Displacement: 0.5}}))
		})

		It("reaches the same displacement in ten steps", func() {
			res := run(models.NewSpring(1000, 500), p, 1)

			Expect(res.Steps).To(HaveLen(10))
			Expect(res.Curve).To(HaveLen(11))
			last := res.Curve[10]
			Expect(last.LoadFactor).To(BeNumerically("~", 1, 1e-12))
			Expect(last.Displacement).To(BeNumerically("~", 0.5, 1e-9))
			for i, pt := range res.Curve {
				Expect(pt.LoadFactor).To(BeNumerically("~", float64(i)*0.1, 1e-12))
			}
		})

		It("keeps earlier iterations unchanged by later steps", func() {
			res := run(models.NewSpring(1000, 500), p, 1)
			Expect(res.Steps[0].FinalIteration().Displacements.AtVec(1)).To(BeNumerically("~", 0.05, 1e-12))
			Expect(res.Steps[0].FinalIteration().Displacements.AtVec(0)).To(BeZero())
		})

		It("restarts a step from its seed when iterated again", func() {
			res := run(models.NewSpring(1000, 500), p, 1)
			step := res.Steps[3]
			n, lf := len(step.Iterations()), step.LoadFactor
			u := step.FinalIteration().Displacements.AtVec(1)

			step.Iterate()

			Expect(step.Converged).To(BeTrue())
			Expect(step.Iterations()).To(HaveLen(n))
			Expect(step.LoadFactor).To(Equal(lf))
			Expect(step.FinalIteration().Displacements.AtVec(1)).To(BeNumerically("~", u, 1e-12))
		})
	})

	Describe("a softening spring under load control", func() {
		var (
			model *models.Assembly
			res   *nonlinear.Result
		)

		BeforeEach(func() {
			p.MaxIterations = 50
			model = models.NewSofteningSpring(1000, -200, 110, 200)
			res = run(model, p, 1)
		})

		It("stops at the first step above the peak", func() {
			Expect(res.Aborted).To(BeTrue())
			Expect(res.Steps).To(HaveLen(5))
			Expect(res.FailedStep.Number).To(Equal(6))
			Expect(res.Failure.Reason).To(Equal(nonlinear.ReasonMaxIterations))
			Expect(res.StopMessage).To(ContainSubstring("step 6"))
			Expect(res.StopMessage).To(ContainSubstring("maximum iterations"))
		})

		It("keeps the curve up to the last converged step", func() {
			Expect(res.Curve).To(HaveLen(6))
			last := res.Curve[5]
			Expect(last.LoadFactor).To(BeNumerically("~", 0.5, 1e-12))
			Expect(last.Displacement).To(BeNumerically("~", 0.1, 1e-9))
		})

		It("rolls the model back to the last converged state", func() {
			Expect(model.Displacements().AtVec(1)).To(BeNumerically("~", 0.1, 1e-9))
			Expect(model.Reactions().AtVec(0)).To(BeNumerically("~", -100, 1e-6))
		})
	})

	Describe("a softening spring under arc-length control", func() {
		var res *nonlinear.Result

		BeforeEach(func() {
			p.Control = nonlinear.ArcLengthControl
			p.DesiredIterations = 5
			res = run(models.NewSofteningSpring(1000, -200, 110, 200), p, 1)
		})

		It("passes the peak without stopping", func() {
			Expect(res.Aborted).To(BeFalse())
			Expect(res.Steps).To(HaveLen(10))

			peak := 0
			for i, pt := range res.Curve {
				if pt.LoadFactor > res.Curve[peak].LoadFactor {
					peak = i
				}
			}
			Expect(peak).To(BeNumerically(">", 1))
			Expect(peak).To(BeNumerically("<", len(res.Curve)-1))
			Expect(res.Curve[peak].LoadFactor).To(BeNumerically("<=", 0.55))

			for i := peak + 1; i < len(res.Curve); i++ {
				Expect(res.Curve[i].LoadFactor).To(BeNumerically("<", res.Curve[i-1].LoadFactor))
				Expect(res.Curve[i].Displacement).To(BeNumerically(">", res.Curve[i-1].Displacement))
			}
		})

		It("reverses the load direction after the limit point", func() {
			var signs []nonlinear.Sign
			for _, s := range res.Steps[1:] {
				arc, ok := s.Strategy().(*nonlinear.ArcLength)
				Expect(ok).To(BeTrue())
				signs = append(signs, arc.Sign)
			}
			Expect(signs[0]).To(Equal(nonlinear.Positive))
			Expect(signs[len(signs)-1]).To(Equal(nonlinear.Negative))
		})

		It("keeps every step on its constraint sphere", func() {
			for i := 1; i < len(res.Steps); i++ {
				step := res.Steps[i]
				arc := step.Strategy().(*nonlinear.ArcLength)

				d := mat.NewVecDense(2, nil)
				d.SubVec(step.FinalIteration().Displacements, res.Steps[i-1].FinalIteration().Displacements)
				Expect(mat.Norm(d, 2)).To(BeNumerically("~", arc.Radius, 1e-9*(1+arc.Radius)))
			}
		})

		It("accounts for the load change iteration by iteration", func() {
			for _, step := range res.Steps[1:] {
				sum := 0.0
				for _, it := range step.Iterations() {
					sum += it.LoadFactorIncrement
				}
				Expect(sum).To(BeNumerically("~", step.LoadFactorChange(), 1e-12))
			}
		})
	})

	Describe("the von Mises truss", func() {
		It("traces the snap-through under arc-length control", func() {
			p.Control = nonlinear.ArcLengthControl
			p.NumberOfSteps = 60
			p.ArcLength = 0.02
			p.MaxArcLength = 0.03

			res := run(models.NewVonMisesTruss(2, 0.2, 1e4, 1), p, 40)

			Expect(res.Aborted).To(BeFalse())
			maxLoad, minLoad := 0.0, 0.0
			for _, pt := range res.Curve {
				maxLoad = max(maxLoad, pt.LoadFactor)
				minLoad = min(minLoad, pt.LoadFactor)
			}
			Expect(maxLoad).To(BeNumerically(">=", 40))
			Expect(minLoad).To(BeNumerically("<", -20))
			Expect(res.LoadFactor).To(BeNumerically(">=", 40))
			Expect(res.Curve[len(res.Curve)-1].Displacement).To(BeNumerically("<", -0.4))
		})

		It("never moves a constrained DOF", func() {
			p.Control = nonlinear.ArcLengthControl
			p.NumberOfSteps = 20
			p.ArcLength = 0.02
			p.MaxArcLength = 0.03

			res := run(models.NewVonMisesTruss(2, 0.2, 1e4, 1), p, 40)

			Expect(res.Steps).NotTo(BeEmpty())
			for _, s := range res.Steps {
				for _, it := range s.Iterations() {
					for _, dof := range []int{0, 1, 4, 5} {
						Expect(it.Displacements.AtVec(dof)).To(BeZero())
						Expect(it.ResidualForces.AtVec(dof)).To(BeZero())
					}
				}
			}
		})
	})

	DescribeTable("tighter tolerances never take fewer iterations",
		func(solver nonlinear.SolverKind) {
			p.Solver = solver
			p.MaxIterations = 200

			prev := 0
			for _, tol := range [][2]float64{{1e-2, 1e-6}, {1e-3, 1e-8}, {1e-6, 1e-12}, {1e-9, 1e-16}} {
				p.ForceTolerance, p.DisplacementTolerance = tol[0], tol[1]
				res := run(models.NewSpringChain(3, 100, 50, 100), p, 1)

				Expect(res.Aborted).To(BeFalse())
				Expect(res.Curve[len(res.Curve)-1].Displacement).To(BeNumerically("~", 2.3127, 1e-3))
				n := totalIterations(res)
				Expect(n).To(BeNumerically(">=", prev))
				prev = n
			}
		},
		Entry("Newton-Raphson", nonlinear.NewtonRaphson),
		Entry("modified Newton-Raphson", nonlinear.ModifiedNewtonRaphson),
		Entry("secant", nonlinear.Secant),
	)

	Describe("observers and metrics", func() {
		It("are notified of every converged step and the completion", func() {
			var converged, completed int
			counter := &stepCounter{}
			obs := nonlinear.ObserverFuncs{
				StepConverged:    func(*nonlinear.LoadStep) { converged++ },
				AnalysisComplete: func(*nonlinear.Result) { completed++ },
			}

			res := run(models.NewSpring(1000, 500), p, 1, nonlinear.WithObserver(obs), nonlinear.WithMetric(counter))

			Expect(converged).To(Equal(10))
			Expect(completed).To(Equal(1))
			Expect(res.Metrics).To(HaveKeyWithValue("counted_steps", 10.0))
			Expect(res.TotalIterations).To(Equal(totalIterations(res)))
		})

		It("publish events through a sink", func() {
			p.MaxIterations = 50
			sink := nonlinear.NewEventSink(64)

			run(models.NewSofteningSpring(1000, -200, 110, 200), p, 1, nonlinear.WithObserver(sink))
			sink.Close()

			var kinds []nonlinear.EventKind
			for ev := range sink.Events() {
				kinds = append(kinds, ev.Kind)
			}
			Expect(kinds).To(HaveLen(7))
			Expect(kinds[4]).To(Equal(nonlinear.EventStepConverged))
			Expect(kinds[5]).To(Equal(nonlinear.EventStepAborted))
			Expect(kinds[6]).To(Equal(nonlinear.EventAnalysisAborted))
		})
	})

	Describe("input validation", func() {
		It("rejects a nil model", func() {
			_, err := nonlinear.New(nil, p)
			Expect(err).To(MatchError(nonlinear.ErrNoModel))
		})

		It("rejects invalid parameters", func() {
			p.NumberOfSteps = 0
			_, err := nonlinear.New(models.NewSpring(1, 1), p)
			Expect(err).To(MatchError(nonlinear.ErrInvalidParameters))
		})

		It("rejects constraints outside the model", func() {
			m := models.NewSpring(1, 1)
			m.Fix(5)
			_, err := nonlinear.New(m, p)
			Expect(err).To(MatchError(nonlinear.ErrDimensionMismatch))
		})

		It("rejects a monitored DOF outside the model", func() {
			p.MonitoredDoF = 2
			_, err := nonlinear.New(models.NewSpring(1, 1), p)
			Expect(err).To(MatchError(nonlinear.ErrDimensionMismatch))
		})

		It("rejects arc-length control without a free load", func() {
			p.Control = nonlinear.ArcLengthControl
			m := models.NewAssembly("fixed-load", 2)
			Expect(m.Add(&models.Spring{I: 0, J: 1, Law: models.Linear{K: 1}})).To(Succeed())
			m.Fix(0)
			m.Load(0, 5)
			_, err := nonlinear.New(m, p)
			Expect(err).To(MatchError(nonlinear.ErrZeroLoad))
		})

		It("rejects a non-positive load factor", func() {
			a, err := nonlinear.New(models.NewSpring(1, 1), p, nonlinear.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())
			_, err = a.Execute(context.Background(), 0)
			Expect(err).To(MatchError(nonlinear.ErrInvalidParameters))
		})

		It("stops between steps when the context is cancelled", func() {
			a, err := nonlinear.New(models.NewSpring(1000, 500), p, nonlinear.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := a.Execute(ctx, 1)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Steps).To(HaveLen(1))
		})
	})
})
