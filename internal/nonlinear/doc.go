// Package nonlinear drives the equilibrium iteration of a structural model
// under increasing load.
//
// An [Analysis] splits the load into [LoadStep] values. Each step iterates
// [Iteration] values until the residual and the displacement increment are
// small enough:
//
//   - [NewtonRaphson] reassembles the tangent every iteration
//   - [ModifiedNewtonRaphson] reassembles once per step
//   - [Secant] applies a rank-one update to the previous stiffness
//
// Load-controlled steps hold the load factor fixed. Under [ArcLengthControl]
// the load factor becomes an unknown and every step is constrained to a
// fixed displacement-increment norm, which lets the analysis pass limit
// points.
//
// # Example
//
//	a, err := nonlinear.New(model, nonlinear.DefaultParameters(),
//		nonlinear.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	res, err := a.Execute(ctx, 1.0)
//	if res.Aborted {
//		fmt.Println(res.StopMessage)
//	}
//
// # Thread Safety
//
// An Analysis and its model are NOT safe for concurrent use. Run separate
// analyses on separate models in parallel instead.
package nonlinear
