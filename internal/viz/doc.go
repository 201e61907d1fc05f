// Package viz renders trial results on the terminal.
//
//   - [PlotCurrents]: perturbed and baseline currents on shared axes
//   - [Progress]: a Bubble Tea view that follows a running batch
//   - [SummaryView]: a panel of energy-delta statistics
//
// # Key Bindings
//
//	q, Esc, Ctrl+C - stop the batch
package viz
