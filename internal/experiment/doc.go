// Package experiment runs single trials of the photon-perturbed circuit.
//
// A [Runner] walks the circuit through consecutive segments, each with its
// own photon-derived frequency shift, and stitches the segment trajectories
// into one. A [Trial] pairs that perturbed run with an unperturbed
// [Baseline] and reports the energy difference as a [TrialResult].
//
// Randomness is per trial: [Trial.Rand] seeds a PCG stream from the run seed
// and the trial index, so trials can run in any order or in parallel and
// still reproduce.
package experiment
