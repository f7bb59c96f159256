// Package dynamo provides the core primitives shared by the integrator,
// the simulation loop and the example systems.
//
// The package defines the fundamental types for numerical integration of
// first-order ordinary differential equations dY/dX = F(X, Y):
//
//   - [State]: fixed-length vector of dependent variables
//   - [Func]: the right-hand side F
//   - [System]: a named F with its dimension and component labels
//   - [Stepper]: a stateful single-trajectory integrator
//   - [Metric], [Observer]: hooks fed by the simulation loop
//
// # Example
//
//	sys := models.NewSIR(3.0, 1.0/3.0)
//	integ, err := integrators.NewRK4(sys.Derive, 0.1, 0, models.SIRInitialState(1e-5, 0))
//	if err != nil {
//	    return err
//	}
//	result, err := sim.New(integ, logger).Run(ctx, dynamo.Config{Steps: 800})
//
// # Errors
//
// Construction and reconfiguration failures are reported as [*ConfigError]
// or [*DimensionError]; match them with errors.Is against the package
// sentinels such as [ErrNilFunction] and [ErrDimensionMismatch].
//
// # Thread Safety
//
// Steppers are NOT thread-safe. Each goroutine that integrates must own its
// own instance.
package dynamo
