// Package analysis inspects trajectories after a run.
//
//   - [PowerSpectrum], [DominantFrequency]: spectrum of a resampled component
//   - [DecayRate]: exponential envelope fit over successive peaks
//   - [PhasePortrait], [PhasePortraitToASCII]: (current, velocity) plots
//   - [ZeroCrossings]: sign changes of a component
//
// Spectra go through gonum's real FFT, so the resampled length need not be a
// power of two:
//
//	f, err := analysis.DominantFrequency(traj, 0, 1024)
package analysis
