// Package dynamo provides the simulation primitives shared by the spin
// dynamics packages.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: advances a [System] over a sequence of output times
//   - [Trajectory]: ordered (time, state) samples produced by an integrator
//
// # Example
//
//	veh, _ := physics.NewSpinVehicle(design, motor1, motor2)
//	integ := integrators.NewRK45(dynamo.DefaultConfig())
//	tr, err := integ.Integrate(ctx, veh, x0, dynamo.Linspace(0, 7, 701))
//
// # Errors
//
// Failures are reported through four sentinel errors, matched with
// [errors.Is]: [ErrInvalidParameter], [ErrInvalidInput],
// [ErrNumericalSingularity] and [ErrIntegrationFailure].
//
// # Thread Safety
//
// Systems hold no mutable state and may be shared. Integrators may keep
// scratch buffers, so parallel runs each need their own integrator.
package dynamo
