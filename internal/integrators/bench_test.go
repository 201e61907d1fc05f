package integrators

import (
	"context"
	"testing"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

type benchDynamics struct{}

func (b *benchDynamics) StateDim() int { return 2 }
func (b *benchDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

// benchCircuit mirrors the reference circuit: alpha = 2e10, omega = 1e10.
type benchCircuit struct{}

func (b *benchCircuit) StateDim() int { return 2 }
func (b *benchCircuit) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -2e10*x[1] - 1e20*x[0]}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45()
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkSolve_Segment(b *testing.B) {
	dyn := &benchCircuit{}
	opts := SolveOptions{MaxStep: 1e-13}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Solve(context.Background(), dyn, NewRK45(), 0, 1e-11, dynamo.State{1, 0}, opts); err != nil {
			b.Fatal(err)
		}
	}
}
