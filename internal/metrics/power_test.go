package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

func TestAveragePower_ConstantSeries(t *testing.T) {
	cases := []struct {
		i0, r float64
		n     int
	}{
		{1, 0.4e6, 1},
		{0.3, 10, 7},
		{-2.5, 1e-3, 1000},
		{1e-7, 0.4e6, 5000},
	}

	for _, tc := range cases {
		series := make([]float64, tc.n)
		for i := range series {
			series[i] = tc.i0
		}

		got, err := AveragePower(tc.r, series)
		if err != nil {
			t.Fatal(err)
		}
		if want := tc.i0 * tc.i0 * tc.r; got != want {
			t.Errorf("I0=%g r=%g n=%d: power = %v, want exactly %v", tc.i0, tc.r, tc.n, got, want)
		}
	}
}

func TestAveragePower_Empty(t *testing.T) {
	if _, err := AveragePower(1, nil); !errors.Is(err, dynamo.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := RMS([]float64{}); !errors.Is(err, dynamo.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestRMS(t *testing.T) {
	got, err := RMS([]float64{3, -4})
	if err != nil {
		t.Fatal(err)
	}
	if want := math.Sqrt(12.5); math.Abs(got-want) > 1e-12 {
		t.Errorf("rms = %v, want %v", got, want)
	}
}

func TestPowerMeter_Reset(t *testing.T) {
	m := NewPowerMeter(2)

	m.Observe(dynamo.State{3, 0}, 0)
	if m.Value() != 18 {
		t.Errorf("expected 18, got %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 || m.Samples() != 0 {
		t.Error("expected zero power after reset")
	}

	m.Observe(dynamo.State{}, 0)
	if m.Samples() != 0 {
		t.Error("empty state should not count as a sample")
	}
}

func TestPeak(t *testing.T) {
	tr := dynamo.Trajectory{
		Times:  []float64{0, 1, 2},
		States: []dynamo.State{{0.5, 0}, {-2, 1}, {1, 0}},
	}
	if got := Replay(NewPeak(), tr); got != 2 {
		t.Errorf("peak = %v, want 2", got)
	}
}
