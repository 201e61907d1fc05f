// Package physics holds the circuit model driven by the simulation.
//
// [RLC] is a series resistor-inductor-capacitor circuit written as the damped
// harmonic oscillator
//
//	y'' + alpha*y' + omega^2*y = 0, alpha = R/(2L), omega = 1/sqrt(LC)
//
// and rewritten as the first-order system (y, y') for the integrators. It
// implements [dynamo.System] and [dynamo.Hamiltonian].
//
// An RLC value is a snapshot. Perturbation produces new snapshots through
// [RLC.WithOmega] and [RLC.WithSegment]:
//
//	osc, err := physics.New(0.4e6, 10e-6, 1e-15, [2]float64{0, 1e-11}, dynamo.State{1, 0})
//	if err != nil {
//		return err
//	}
//	next := osc.WithOmega(osc.Omega + shift)
//	traj, err := next.Integrate(ctx, integrators.NewRK45(), 100)
package physics
