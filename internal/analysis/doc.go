// Package analysis provides post-processing for integrated trajectories.
//
//   - [EstimateOrder]: observed order of accuracy via step halving
//   - [Richardson]: extrapolation from two step sizes
//   - [Peaks], [ArgMax]: peak detection on a recorded component
//
// # Convergence
//
// For a smooth problem the RK4 error shrinks by about 16 when h halves:
//
//	c, err := analysis.EstimateOrder(sys.Derive, 0, y0, 10, 0.1)
//	if err == nil && math.Abs(c.Order-4) < 0.2 {
//	    // fourth order observed
//	}
package analysis
