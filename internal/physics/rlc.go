package physics

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/photonrlc/internal/dynamo"
	"github.com/san-kum/photonrlc/internal/integrators"
)

// RLC is one snapshot of a series RLC circuit written as the damped oscillator
// y'' + Alpha*y' + Omega^2*y = 0 with state (y, y').
//
// Snapshots are values: WithOmega and WithSegment return modified copies so a
// perturbed run is a chain of snapshots rather than one mutated object.
// Omega starts at 1/sqrt(LC) but may be driven anywhere by perturbation,
// including zero or below; that changes the regime of the solution and is
// not treated as an error.
type RLC struct {
	R, L, C float64

	Alpha float64
	Omega float64

	Interval [2]float64
	Initial  dynamo.State

	// Tolerance overrides the adaptive solver's relative tolerance when > 0.
	Tolerance float64
}

// New builds the unperturbed circuit over interval starting from ic.
func New(r, l, c float64, interval [2]float64, ic dynamo.State) (RLC, error) {
	for _, p := range []struct {
		name string
		v    float64
	}{{"resistance", r}, {"inductance", l}, {"capacitance", c}} {
		if !positiveFinite(p.v) {
			return RLC{}, dynamo.InvalidParam(p.name, p.v)
		}
	}

	osc := RLC{
		R:     r,
		L:     l,
		C:     c,
		Alpha: r / (2 * l),
		Omega: 1 / math.Sqrt(l*c),
	}
	return osc.WithSegment(interval, ic)
}

// WithOmega returns a copy running at natural frequency omega.
func (o RLC) WithOmega(omega float64) RLC {
	o.Initial = o.Initial.Clone()
	o.Omega = omega
	return o
}

// WithSegment returns a copy over interval that starts from ic.
func (o RLC) WithSegment(interval [2]float64, ic dynamo.State) (RLC, error) {
	if err := checkInterval(interval); err != nil {
		return RLC{}, err
	}
	if len(ic) != 2 || !ic.IsValid() {
		return RLC{}, fmt.Errorf("%w: initial condition %v", dynamo.ErrInvalidParameter, ic)
	}
	o.Interval = interval
	o.Initial = ic.Clone()
	return o, nil
}

func (o RLC) StateDim() int { return 2 }

// Derive returns (v, -Alpha*v - Omega^2*y).
func (o RLC) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{x[1], -o.Alpha*x[1] - o.Omega*o.Omega*x[0]}
}

// Energy is the normalized stored energy (v^2 + Omega^2*y^2)/2.
func (o RLC) Energy(x dynamo.State) float64 {
	if len(x) < 2 {
		return 0
	}
	return 0.5 * (x[1]*x[1] + o.Omega*o.Omega*x[0]*x[0])
}

// Integrate solves the snapshot over its interval with steps no longer than
// (end-start)/n.
func (o RLC) Integrate(ctx context.Context, stepper dynamo.Integrator, n int) (dynamo.Trajectory, error) {
	if n < 1 {
		return dynamo.Trajectory{}, dynamo.InvalidParam("n_steps", n)
	}
	if err := checkInterval(o.Interval); err != nil {
		return dynamo.Trajectory{}, err
	}

	t0, t1 := o.Interval[0], o.Interval[1]
	return integrators.Solve(ctx, o, stepper, t0, t1, o.Initial, integrators.SolveOptions{
		MaxStep:   (t1 - t0) / float64(n),
		Tolerance: o.Tolerance,
	})
}

func (o RLC) GetParams() map[string]float64 {
	return map[string]float64{
		"resistance":  o.R,
		"inductance":  o.L,
		"capacitance": o.C,
		"alpha":       o.Alpha,
		"omega":       o.Omega,
	}
}

func checkInterval(iv [2]float64) error {
	if math.IsNaN(iv[0]) || math.IsInf(iv[0], 0) || math.IsInf(iv[1], 0) || !(iv[1] > iv[0]) {
		return fmt.Errorf("%w: time interval [%g, %g]", dynamo.ErrInvalidParameter, iv[0], iv[1])
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
