// Package dynamo provides core simulation primitives shared by the oscillator,
// the integrators and the trial machinery.
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator], [AdaptiveIntegrator]: numerical steppers
//   - [Trajectory]: ordered (time, state) samples from one integration
//
// # Errors
//
// Failures are reported with the sentinel errors in errors.go, wrapped with
// context and matched with [errors.Is]:
//
//	if errors.Is(err, dynamo.ErrSamplingExhausted) {
//	    // widen the envelope and retry
//	}
//
// # Thread Safety
//
// Steppers may keep scratch buffers and are NOT safe for concurrent use.
// Each trial owns its own stepper instance.
package dynamo
