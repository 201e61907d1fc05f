package photon

import (
	"fmt"
	"math"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

// WienFactor is the x in f_peak = x*kB*T/h for the frequency form of Planck's law.
const WienFactor = 3.157

// Constants are the physical constants the sampler evaluates Planck's law with.
type Constants struct {
	SpeedOfLight float64 // m/s
	Planck       float64 // J*s
	Boltzmann    float64 // J/K
}

// Standard returns the constants the reference runs were calibrated with.
func Standard() Constants {
	return Constants{
		SpeedOfLight: 3e8,
		Planck:       6.6261e-34,
		Boltzmann:    1.381e-23,
	}
}

func (c Constants) Validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{{"speed of light", c.SpeedOfLight}, {"planck", c.Planck}, {"boltzmann", c.Boltzmann}} {
		if !(p.v > 0) || math.IsInf(p.v, 1) {
			return dynamo.InvalidParam(p.name, p.v)
		}
	}
	return nil
}

// Density evaluates the Planck spectral radiance
// 2hf^3/c^2 * 1/(exp(hf/(kB*T)) - 1).
func (c Constants) Density(f, temperature float64) (float64, error) {
	if !(f > 0) || math.IsInf(f, 1) {
		return 0, fmt.Errorf("%w: frequency %g", dynamo.ErrDomain, f)
	}
	if !(temperature > 0) || math.IsInf(temperature, 1) {
		return 0, fmt.Errorf("%w: temperature %g", dynamo.ErrDomain, temperature)
	}
	x := c.Planck * f / (c.Boltzmann * temperature)
	return 2 * c.Planck * f * f * f / (c.SpeedOfLight * c.SpeedOfLight) / math.Expm1(x), nil
}

// PeakFrequency is Wien's displacement law in frequency form.
func (c Constants) PeakFrequency(temperature float64) float64 {
	return WienFactor * c.Boltzmann * temperature / c.Planck
}
