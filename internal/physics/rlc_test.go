package physics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/photonrlc/internal/dynamo"
	"github.com/san-kum/photonrlc/internal/integrators"
)

func TestRLC_DerivedCoefficients(t *testing.T) {
	cases := []struct{ r, l, c float64 }{
		{0.4e6, 10e-6, 1e-15},
		{1, 1, 1},
		{50, 2e-3, 4e-9},
		{1e-9, 1e3, 1e-3},
	}

	for _, tc := range cases {
		osc, err := New(tc.r, tc.l, tc.c, [2]float64{0, 1}, dynamo.State{1, 0})
		if err != nil {
			t.Fatalf("New(%g, %g, %g): %v", tc.r, tc.l, tc.c, err)
		}
		if osc.Alpha < 0 || math.Abs(osc.Alpha-tc.r/(2*tc.l)) > 1e-12*osc.Alpha {
			t.Errorf("alpha = %g, want %g", osc.Alpha, tc.r/(2*tc.l))
		}
		if !(osc.Omega > 0) {
			t.Errorf("omega = %g, want > 0", osc.Omega)
		}
		want := 1 / math.Sqrt(tc.l*tc.c)
		if math.Abs(osc.Omega-want) > 1e-12*want {
			t.Errorf("omega = %g, want %g", osc.Omega, want)
		}
	}
}

func TestRLC_ReferenceCircuit(t *testing.T) {
	osc, err := New(0.4e6, 10e-6, 1e-15, [2]float64{0, 5e-10}, dynamo.State{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(osc.Alpha-2e10) > 1 {
		t.Errorf("alpha = %g, want 2e10", osc.Alpha)
	}
	if math.Abs(osc.Omega-1e10) > 1 {
		t.Errorf("omega = %g, want 1e10", osc.Omega)
	}
}

func TestRLC_InvalidParameters(t *testing.T) {
	ic := dynamo.State{1, 0}
	iv := [2]float64{0, 1}

	cases := []struct {
		name     string
		r, l, c  float64
		interval [2]float64
		ic       dynamo.State
	}{
		{"zero resistance", 0, 1, 1, iv, ic},
		{"negative inductance", 1, -1, 1, iv, ic},
		{"nan capacitance", 1, 1, math.NaN(), iv, ic},
		{"infinite resistance", math.Inf(1), 1, 1, iv, ic},
		{"reversed interval", 1, 1, 1, [2]float64{1, 0}, ic},
		{"empty interval", 1, 1, 1, [2]float64{1, 1}, ic},
		{"short initial condition", 1, 1, 1, iv, dynamo.State{1}},
		{"nan initial condition", 1, 1, 1, iv, dynamo.State{math.NaN(), 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.r, tc.l, tc.c, tc.interval, tc.ic)
			if !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestRLC_Derive(t *testing.T) {
	osc, _ := New(1, 1, 0.25, [2]float64{0, 1}, dynamo.State{1, 0})

	dx := osc.Derive(dynamo.State{2, 3}, 0)

	// alpha = 0.5, omega^2 = 4
	if dx[0] != 3 {
		t.Errorf("expected dx[0] = 3, got %f", dx[0])
	}
	if math.Abs(dx[1]-(-0.5*3-4*2)) > 1e-12 {
		t.Errorf("expected dx[1] = -9.5, got %f", dx[1])
	}
}

func TestRLC_SnapshotsDoNotAlias(t *testing.T) {
	osc, _ := New(1, 1, 1, [2]float64{0, 1}, dynamo.State{1, 0})

	shifted := osc.WithOmega(-3)
	if osc.Omega != 1 {
		t.Errorf("WithOmega mutated receiver: omega = %g", osc.Omega)
	}
	if shifted.Omega != -3 {
		t.Errorf("negative omega not preserved: %g", shifted.Omega)
	}

	next, err := osc.WithSegment([2]float64{1, 2}, dynamo.State{0.5, -0.1})
	if err != nil {
		t.Fatal(err)
	}
	next.Initial[0] = 99
	if osc.Initial[0] != 1 {
		t.Error("WithSegment shares initial condition with receiver")
	}
	if osc.Interval != [2]float64{0, 1} {
		t.Errorf("receiver interval changed to %v", osc.Interval)
	}
}

func TestRLC_IntegrateRejectsNonPositiveSteps(t *testing.T) {
	osc, _ := New(1, 1, 1, [2]float64{0, 1}, dynamo.State{1, 0})

	for _, n := range []int{0, -1} {
		_, err := osc.Integrate(context.Background(), integrators.NewRK45(), n)
		if !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("n=%d: expected ErrInvalidParameter, got %v", n, err)
		}
	}
}

func TestRLC_IntegrateSpansInterval(t *testing.T) {
	osc, _ := New(0.4e6, 10e-6, 1e-15, [2]float64{2e-11, 3e-11}, dynamo.State{1, 0})

	tr, err := osc.Integrate(context.Background(), integrators.NewRK45(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Start() != 2e-11 || tr.End() != 3e-11 {
		t.Errorf("span = [%g, %g], want [2e-11, 3e-11]", tr.Start(), tr.End())
	}
	if !tr.Monotonic() {
		t.Error("times are not strictly increasing")
	}
	if tr.Len() < 101 {
		t.Errorf("expected at least 101 samples with max step span/100, got %d", tr.Len())
	}
}

func TestRLC_DampingDissipates(t *testing.T) {
	// Span 0.2 is well below the damping time 2L/R of every circuit here.
	prev := math.Inf(1)
	for _, r := range []float64{0.1, 0.5, 1, 2} {
		osc, _ := New(r, 1, 1, [2]float64{0, 0.2}, dynamo.State{1, 0})
		tr, err := osc.Integrate(context.Background(), integrators.NewRK45(), 200)
		if err != nil {
			t.Fatal(err)
		}

		e0 := osc.Energy(tr.States[0])
		e1 := osc.Energy(tr.Last())
		if !(e1 < e0) {
			t.Errorf("r=%g: energy did not decrease (%g -> %g)", r, e0, e1)
		}
		if !(e1 < prev) {
			t.Errorf("r=%g: final energy %g not below %g for lower resistance", r, e1, prev)
		}
		prev = e1
	}
}
