package photon

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

// Coupler maps photons landing on a square aperture of side A, with positions
// drawn from a Gaussian of width Sigma truncated to the aperture, to a
// dimensionless coupling factor each.
//
// The factor depends only on the number of photons, not their frequencies.
// Frequency enters through Shift.
type Coupler struct {
	A     float64
	Sigma float64

	xi  float64
	rng *rand.Rand
}

func NewCoupler(a, sigma float64, rng *rand.Rand) (*Coupler, error) {
	if !(a > 0) || math.IsInf(a, 1) {
		return nil, dynamo.InvalidParam("aperture", a)
	}
	if !(sigma > 0) || math.IsInf(sigma, 1) {
		return nil, dynamo.InvalidParam("sigma", sigma)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", dynamo.ErrInvalidParameter)
	}
	return &Coupler{A: a, Sigma: sigma, xi: math.Erf(a / (2 * sigma)), rng: rng}, nil
}

// Transform returns one coupling factor per entry of freqs. Draw order is all
// x uniforms, then all y uniforms, then all angles.
func (c *Coupler) Transform(freqs []float64) []float64 {
	n := len(freqs)
	u := make([]float64, 2*n)
	for i := range u {
		u[i] = c.rng.Float64()
	}
	theta := make([]float64, n)
	for i := range theta {
		theta[i] = math.Pi / 2 * c.rng.Float64()
	}

	out := make([]float64, n)
	a2 := c.A * c.A
	for i := 0; i < n; i++ {
		x := c.Sigma * math.Erfinv(2*c.xi*u[i]-c.xi)
		y := c.Sigma * math.Erfinv(2*c.xi*u[n+i]-c.xi)
		out[i] = (x*x + y*y + a2) / (2 * a2) * (math.Cos(theta[i]) - math.Sin(theta[i]))
	}
	return out
}

// Bounds returns the closed range every coupling factor lies in.
func (c *Coupler) Bounds() (lo, hi float64) {
	// |x|, |y| <= A/2 on the aperture, so the radial term is in [1/2, 3/4].
	return -0.75, 0.75
}

// Shift is the frequency shift sum(freqs[i] * coupling[i]).
func Shift(freqs, coupling []float64) (float64, error) {
	if len(freqs) != len(coupling) {
		return 0, fmt.Errorf("%w: %d frequencies, %d coupling factors", dynamo.ErrInvalidParameter, len(freqs), len(coupling))
	}
	if len(freqs) == 0 {
		return 0, nil
	}
	return floats.Dot(freqs, coupling), nil
}
