// Package viz provides terminal rendering for integrated trajectories.
//
//   - [PlotSeries]: multi-series line chart with legends (asciigraph)
//   - [Live]: interactive stepping view built on Bubble Tea
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	N     - Single step while paused
//	R     - Reset to initial point, values, step size and parameters
//	+ -   - Double/halve the step size
//	D     - Reverse the integration direction
//	F S   - More/fewer steps per frame
//	Tab   - Cycle parameters
//	↑ ↓   - Tune selected parameter by ±5%
//	T     - Cycle color themes
package viz
