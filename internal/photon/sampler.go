package photon

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

// DefaultMaxAttempts bounds the candidates one Sample call may draw.
const DefaultMaxAttempts = 1_000_000

// Envelope limits relative to the peak frequency and density.
const (
	lowerBound     = 0.001
	upperBound     = 5.0
	envelopeMargin = 1.05
)

// Photon is one accepted draw and the source temperature it came from.
type Photon struct {
	Frequency   float64
	Temperature float64
}

// Sampler draws photon frequencies from Planck's law at a fixed temperature
// by rejection against a uniform envelope over [0.001*peak, 5*peak].
//
// A Sampler owns its random source and is not safe for concurrent use.
type Sampler struct {
	consts      Constants
	temperature float64
	peak        float64
	ceiling     float64
	rng         *rand.Rand
	maxAttempts int
}

type Option func(*Sampler)

// WithMaxAttempts sets the per-call candidate budget. Values < 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(s *Sampler) {
		if n >= 1 {
			s.maxAttempts = n
		}
	}
}

func NewSampler(consts Constants, temperature float64, rng *rand.Rand, opts ...Option) (*Sampler, error) {
	if err := consts.Validate(); err != nil {
		return nil, err
	}
	if !(temperature > 0) || math.IsInf(temperature, 1) {
		return nil, dynamo.InvalidParam("temperature", temperature)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", dynamo.ErrInvalidParameter)
	}

	s := &Sampler{
		consts:      consts,
		temperature: temperature,
		peak:        consts.PeakFrequency(temperature),
		rng:         rng,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}

	atPeak, err := consts.Density(s.peak, temperature)
	if err != nil {
		return nil, err
	}
	s.ceiling = envelopeMargin * atPeak
	return s, nil
}

func (s *Sampler) PeakFrequency() float64 { return s.peak }

// Bounds returns the candidate frequency range.
func (s *Sampler) Bounds() (lo, hi float64) {
	return lowerBound * s.peak, upperBound * s.peak
}

// Density evaluates Planck's law at the sampler's temperature.
func (s *Sampler) Density(f float64) (float64, error) {
	return s.consts.Density(f, s.temperature)
}

// Stream starts a fresh attempt budget.
func (s *Sampler) Stream() *Stream {
	return &Stream{s: s}
}

// Sample returns exactly count accepted frequencies drawn under one budget.
func (s *Sampler) Sample(count int) ([]float64, error) {
	return s.Stream().Take(count)
}

// Stream is a lazy sequence of accepted photons sharing one attempt budget.
type Stream struct {
	s        *Sampler
	attempts int
	accepted int
}

// Next draws candidates until one is accepted or the budget runs out.
func (st *Stream) Next() (Photon, error) {
	lo, hi := st.s.Bounds()
	for st.attempts < st.s.maxAttempts {
		st.attempts++

		f := lo + (hi-lo)*st.s.rng.Float64()
		b := st.s.ceiling * st.s.rng.Float64()

		d, err := st.s.Density(f)
		if err != nil {
			return Photon{}, err
		}
		if b < d {
			st.accepted++
			return Photon{Frequency: f, Temperature: st.s.temperature}, nil
		}
	}
	return Photon{}, fmt.Errorf("%w: %d accepted after %d attempts", dynamo.ErrSamplingExhausted, st.accepted, st.attempts)
}

// Take returns the frequencies of the next count accepted photons.
func (st *Stream) Take(count int) ([]float64, error) {
	if count < 0 {
		return nil, dynamo.InvalidParam("count", count)
	}
	freqs := make([]float64, 0, count)
	for len(freqs) < count {
		p, err := st.Next()
		if err != nil {
			return freqs, err
		}
		freqs = append(freqs, p.Frequency)
	}
	return freqs, nil
}

func (st *Stream) Attempts() int { return st.attempts }

func (st *Stream) Accepted() int { return st.accepted }

// Rejected is the number of candidates drawn and discarded so far.
func (st *Stream) Rejected() int { return st.attempts - st.accepted }

// Reset restores the full attempt budget.
func (st *Stream) Reset() {
	st.attempts = 0
	st.accepted = 0
}
