package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

// Resample linearly interpolates component idx of tr onto n evenly spaced
// times over [Start, End]. Returns the grid spacing with the samples.
func Resample(tr dynamo.Trajectory, idx, n int) ([]float64, float64, error) {
	if tr.Len() < 2 {
		return nil, 0, fmt.Errorf("%w: need at least two samples", dynamo.ErrEmptyInput)
	}
	if n < 2 {
		return nil, 0, dynamo.InvalidParam("samples", n)
	}

	src := tr.Component(idx)
	grid := floats.Span(make([]float64, n), tr.Start(), tr.End())
	out := make([]float64, n)

	j := 0
	for i, t := range grid {
		for j < tr.Len()-2 && tr.Times[j+1] < t {
			j++
		}
		t0, t1 := tr.Times[j], tr.Times[j+1]
		frac := (t - t0) / (t1 - t0)
		out[i] = src[j] + frac*(src[j+1]-src[j])
	}
	return out, grid[1] - grid[0], nil
}

// Spectrum is the one-sided amplitude spectrum of a uniformly sampled signal.
type Spectrum struct {
	Freqs      []float64 // Hz
	Amplitudes []float64
}

// PowerSpectrum resamples component idx of tr onto n points and returns its
// amplitude spectrum.
func PowerSpectrum(tr dynamo.Trajectory, idx, n int) (Spectrum, error) {
	samples, dt, err := Resample(tr, idx, n)
	if err != nil {
		return Spectrum{}, err
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, samples)

	s := Spectrum{
		Freqs:      make([]float64, len(coeffs)),
		Amplitudes: make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		s.Freqs[i] = fft.Freq(i) / dt
		s.Amplitudes[i] = cmplx.Abs(c)
	}
	return s, nil
}

// DominantFrequency is the frequency in Hz of the largest non-DC bin.
func DominantFrequency(tr dynamo.Trajectory, idx, n int) (float64, error) {
	s, err := PowerSpectrum(tr, idx, n)
	if err != nil {
		return 0, err
	}
	if len(s.Amplitudes) < 2 {
		return 0, dynamo.ErrEmptyInput
	}
	k := floats.MaxIdx(s.Amplitudes[1:]) + 1
	return s.Freqs[k], nil
}

// Peaks returns the indices of the k largest non-DC bins, strongest first.
func (s Spectrum) Peaks(k int) []int {
	idx := make([]int, 0, len(s.Amplitudes))
	for i := 1; i < len(s.Amplitudes); i++ {
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Amplitudes[idx[a]] > s.Amplitudes[idx[b]]
	})
	if k < len(idx) {
		idx = idx[:k]
	}
	return idx
}

// DecayRate fits log|current| at successive envelope peaks and returns the
// exponential decay rate in 1/s, or NaN when fewer than two peaks exist.
func DecayRate(tr dynamo.Trajectory) float64 {
	xs := tr.Component(0)
	var ts, logs []float64
	for i := 1; i+1 < len(xs); i++ {
		a := math.Abs(xs[i])
		if a > math.Abs(xs[i-1]) && a >= math.Abs(xs[i+1]) && a > 0 {
			ts = append(ts, tr.Times[i])
			logs = append(logs, math.Log(a))
		}
	}
	if len(ts) < 2 {
		return math.NaN()
	}
	_, slope := stat.LinearRegression(ts, logs, nil, false)
	return -slope
}
