// Package metrics does the energy bookkeeping of a run: average dissipated
// power from the current series, and the energy difference between a
// perturbed trajectory and its unperturbed baseline.
package metrics
