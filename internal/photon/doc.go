// Package photon draws photons from a blackbody source and couples them into
// a circuit.
//
// [Sampler] draws frequencies from Planck's law by rejection sampling under an
// explicit attempt budget. [Coupler] turns a batch of photons into coupling
// factors for an aperture, and [Shift] folds frequencies and factors into one
// angular frequency shift.
package photon
