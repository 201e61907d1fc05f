package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

func TestTrial_ReferenceScenario(t *testing.T) {
	res, err := Trial{Params: DefaultParams(), Index: 0}.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if math.IsNaN(res.Delta) || math.IsInf(res.Delta, 0) || res.Delta < 0 {
		t.Errorf("delta = %g, want finite and non-negative", res.Delta)
	}
	if res.Segments != 49 {
		t.Errorf("segments = %d, want 49", res.Segments)
	}
	if res.Perturbed.Start() != 0 || res.Perturbed.End() >= 5e-10 {
		t.Errorf("perturbed span [%g, %g], want [0, <5e-10)", res.Perturbed.Start(), res.Perturbed.End())
	}
	if res.Baseline.Start() != 0 || res.Baseline.End() != 5e-10 {
		t.Errorf("baseline span [%g, %g], want [0, 5e-10]", res.Baseline.Start(), res.Baseline.End())
	}
	if got := math.Abs(res.PerturbedEnergy - res.BaselineEnergy); math.Abs(got-res.Delta) > 1e-12*math.Max(got, 1e-300) {
		t.Errorf("delta %g does not match |%g - %g|", res.Delta, res.PerturbedEnergy, res.BaselineEnergy)
	}
}

func TestTrial_StoredEnergy(t *testing.T) {
	p := DefaultParams()
	p.End = 2e-10

	res, err := Trial{Params: p, Index: 1}.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	omega0 := 1 / math.Sqrt(p.Inductance*p.Capacitance)
	if want := 0.5 * omega0 * omega0 * p.Initial[0] * p.Initial[0]; math.Abs(res.InitialStored-want) > 1e-9*want {
		t.Errorf("initial stored energy = %g, want %g", res.InitialStored, want)
	}
	for name, e := range map[string]float64{"baseline": res.BaselineStored, "perturbed": res.PerturbedStored} {
		if math.IsNaN(e) || math.IsInf(e, 0) || e < 0 {
			t.Errorf("%s stored energy = %g, want finite and non-negative", name, e)
		}
	}
	if res.BaselineStored >= res.InitialStored {
		t.Errorf("damped baseline gained energy: %g -> %g", res.InitialStored, res.BaselineStored)
	}
}

func TestTrial_Reproducible(t *testing.T) {
	p := DefaultParams()
	p.End = 1e-10
	p.Seed = 99

	a, err := Trial{Params: p, Index: 3}.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Trial{Params: p, Index: 3}.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a.Delta != b.Delta || a.FinalOmega != b.FinalOmega {
		t.Errorf("same seed and index gave %g/%g and %g/%g", a.Delta, a.FinalOmega, b.Delta, b.FinalOmega)
	}

	c, err := Trial{Params: p, Index: 4}.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if c.FinalOmega == a.FinalOmega {
		t.Error("different trial indices drew identical shifts")
	}
}

func TestTrial_InvalidParams(t *testing.T) {
	p := DefaultParams()
	p.Capacitance = 0
	if _, err := (Trial{Params: p}).Run(context.Background()); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}

	p = DefaultParams()
	p.Integrator = "leapfrog"
	if _, err := (Trial{Params: p}).Run(context.Background()); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for unknown integrator, got %v", err)
	}
}

func TestTrial_RK4(t *testing.T) {
	p := DefaultParams()
	p.Integrator = "rk4"
	p.End = 1e-10

	res, err := Trial{Params: p}.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Perturbed.Monotonic() || res.Delta < 0 {
		t.Errorf("rk4 trial: monotonic=%v delta=%g", res.Perturbed.Monotonic(), res.Delta)
	}
}

func TestParams_With(t *testing.T) {
	p := DefaultParams()

	q, err := p.With("temperature", 300)
	if err != nil {
		t.Fatal(err)
	}
	if q.Temperature != 300 || p.Temperature != 9e-2 {
		t.Errorf("With mutated receiver or ignored value: %g, %g", p.Temperature, q.Temperature)
	}

	q, _ = p.With("intensity", 2.6)
	if q.Intensity != 3 {
		t.Errorf("intensity = %d, want 3", q.Intensity)
	}

	if _, err := p.With("mass", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := r.ListIntegrators()
	if len(names) != 2 || names[0] != "rk4" || names[1] != "rk45" {
		t.Errorf("integrators = %v", names)
	}

	a, _ := r.GetIntegrator("rk4")
	b, _ := r.GetIntegrator("rk4")
	if a == b {
		t.Error("registry returned a shared stepper")
	}
	if _, err := r.GetIntegrator("euler"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
