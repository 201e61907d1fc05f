package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

// SolveOptions bounds an interval integration.
type SolveOptions struct {
	// MaxStep caps every step. Required.
	MaxStep float64
	// Tolerance is the relative error per adaptive step. Zero means DefaultTolerance.
	Tolerance float64
	// MinStep aborts adaptive integration once a rejected step would go below it.
	// Zero means MaxStep * 1e-9.
	MinStep float64
}

// Solve integrates sys over [t0, t1] from x0. Adaptive steppers pick their
// own step within MaxStep; any other stepper advances with fixed MaxStep
// steps. The first sample is (t0, x0) and the last lands exactly on t1.
func Solve(ctx context.Context, sys dynamo.System, stepper dynamo.Integrator, t0, t1 float64, x0 dynamo.State, opts SolveOptions) (dynamo.Trajectory, error) {
	if !(t1 > t0) || math.IsInf(t0, 0) || math.IsInf(t1, 0) {
		return dynamo.Trajectory{}, fmt.Errorf("%w: interval [%g, %g]", dynamo.ErrInvalidParameter, t0, t1)
	}
	if !(opts.MaxStep > 0) {
		return dynamo.Trajectory{}, dynamo.InvalidParam("max step", opts.MaxStep)
	}
	if len(x0) != sys.StateDim() || !x0.IsValid() {
		return dynamo.Trajectory{}, fmt.Errorf("%w: initial state %v", dynamo.ErrInvalidState, x0)
	}

	tol := opts.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	minStep := opts.MinStep
	if minStep <= 0 {
		minStep = opts.MaxStep * 1e-9
	}

	estimate := int((t1-t0)/opts.MaxStep) + 2
	tr := dynamo.Trajectory{
		Times:  make([]float64, 0, estimate),
		States: make([]dynamo.State, 0, estimate),
	}
	tr.Times = append(tr.Times, t0)
	tr.States = append(tr.States, x0.Clone())

	adaptive, isAdaptive := stepper.(dynamo.AdaptiveIntegrator)

	// Remaining spans this small relative to the interval are absorbed into
	// the previous step rather than producing a degenerate sample.
	eps := (t1 - t0) * 1e-12

	x := x0.Clone()
	t := t0
	h := opts.MaxStep
	for step := 0; t1-t > eps; step++ {
		if step%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return tr, err
			}
		}

		h = math.Min(h, opts.MaxStep)
		last := false
		if t+h >= t1-eps {
			h = t1 - t
			last = true
		}

		var xNew dynamo.State
		taken := h
		if isAdaptive {
			for {
				xTry, hNext, ratio := adaptive.StepAdaptive(sys, x, t, taken, tol)
				valid := xTry.IsValid()
				if valid && ratio <= 1 {
					xNew = xTry
					h = hNext
					break
				}
				if !valid {
					hNext = taken * 0.2
				}
				if !(hNext >= minStep) {
					return tr, &dynamo.SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: dynamo.ErrStepTooSmall}
				}
				taken = hNext
				last = false
			}
		} else {
			xNew = stepper.Step(sys, x, t, taken)
		}

		if !xNew.IsValid() {
			return tr, &dynamo.SimulationError{Step: step, Time: t, State: xNew, Wrapped: dynamo.ErrInvalidState}
		}

		if last {
			t = t1
		} else {
			t += taken
		}
		x = xNew
		tr.Times = append(tr.Times, t)
		tr.States = append(tr.States, x.Clone())
	}

	return tr, nil
}
