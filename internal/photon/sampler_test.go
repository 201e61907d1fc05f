package photon

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func TestDensity_DomainError(t *testing.T) {
	consts := Standard()

	for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := consts.Density(f, 300); !errors.Is(err, dynamo.ErrDomain) {
			t.Errorf("Density(%v): expected ErrDomain, got %v", f, err)
		}
	}
}

func TestDensity_EnvelopeCoversDensity(t *testing.T) {
	consts := Standard()
	temp := 9e-2
	peak := consts.PeakFrequency(temp)

	atPeak, err := consts.Density(peak, temp)
	if err != nil {
		t.Fatal(err)
	}
	// 3.157 sits slightly above the true maximum, so the envelope carries margin.
	for _, scale := range []float64{0.001, 0.1, 0.5, 0.85, 0.9, 1.1, 2, 5} {
		d, err := consts.Density(scale*peak, temp)
		if err != nil {
			t.Fatal(err)
		}
		if d < 0 {
			t.Errorf("density at %g*peak is negative: %g", scale, d)
		}
		if d > envelopeMargin*atPeak {
			t.Errorf("density at %g*peak (%g) exceeds envelope %g", scale, d, envelopeMargin*atPeak)
		}
	}
}

func TestPeakFrequency(t *testing.T) {
	consts := Standard()
	got := consts.PeakFrequency(9e-2)
	want := 3.157 * 1.381e-23 * 9e-2 / 6.6261e-34

	if math.Abs(got-want) > 1e-9*want {
		t.Errorf("peak = %g, want %g", got, want)
	}
}

func TestSampler_SampleCountAndBounds(t *testing.T) {
	for _, temp := range []float64{9e-2, 300, 5800} {
		s, err := NewSampler(Standard(), temp, newRand(7))
		if err != nil {
			t.Fatal(err)
		}

		freqs, err := s.Sample(500)
		if err != nil {
			t.Fatalf("T=%g: %v", temp, err)
		}
		if len(freqs) != 500 {
			t.Fatalf("T=%g: expected 500 samples, got %d", temp, len(freqs))
		}

		lo, hi := s.Bounds()
		for _, f := range freqs {
			if f < lo || f > hi {
				t.Errorf("T=%g: sample %g outside [%g, %g]", temp, f, lo, hi)
			}
			d, err := s.Density(f)
			if err != nil || d < 0 {
				t.Errorf("T=%g: density(%g) = %g, %v", temp, f, d, err)
			}
		}
	}
}

func TestSampler_ZeroAndNegativeCount(t *testing.T) {
	s, _ := NewSampler(Standard(), 300, newRand(1))

	freqs, err := s.Sample(0)
	if err != nil || len(freqs) != 0 {
		t.Errorf("Sample(0) = %v, %v", freqs, err)
	}
	if _, err := s.Sample(-1); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("Sample(-1): expected ErrInvalidParameter, got %v", err)
	}
}

func TestSampler_Deterministic(t *testing.T) {
	a, _ := NewSampler(Standard(), 300, newRand(42))
	b, _ := NewSampler(Standard(), 300, newRand(42))

	fa, _ := a.Sample(20)
	fb, _ := b.Sample(20)
	for i := range fa {
		if fa[i] != fb[i] {
			t.Fatalf("sample %d differs for equal seeds: %g vs %g", i, fa[i], fb[i])
		}
	}
}

func TestSampler_Exhausted(t *testing.T) {
	s, _ := NewSampler(Standard(), 300, newRand(3), WithMaxAttempts(1))

	// Acceptance rate is well below one half, so a single-attempt budget
	// cannot produce 50 photons.
	_, err := s.Sample(50)
	if !errors.Is(err, dynamo.ErrSamplingExhausted) {
		t.Fatalf("expected ErrSamplingExhausted, got %v", err)
	}
}

func TestStream_BudgetAndReset(t *testing.T) {
	s, _ := NewSampler(Standard(), 300, newRand(11), WithMaxAttempts(10_000))
	st := s.Stream()

	for i := 0; i < 10; i++ {
		if _, err := st.Next(); err != nil {
			t.Fatal(err)
		}
	}
	if st.Accepted() != 10 {
		t.Errorf("accepted = %d, want 10", st.Accepted())
	}
	if st.Attempts() < 10 || st.Rejected() != st.Attempts()-10 {
		t.Errorf("attempts = %d, rejected = %d", st.Attempts(), st.Rejected())
	}

	st.Reset()
	if st.Attempts() != 0 || st.Accepted() != 0 {
		t.Error("Reset did not clear counters")
	}
}

func TestNewSampler_InvalidTemperature(t *testing.T) {
	for _, temp := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if _, err := NewSampler(Standard(), temp, newRand(1)); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("T=%v: expected ErrInvalidParameter, got %v", temp, err)
		}
	}
	if _, err := NewSampler(Constants{}, 300, newRand(1)); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("zero constants: expected ErrInvalidParameter, got %v", err)
	}
}
