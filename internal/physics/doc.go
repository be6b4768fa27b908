// Package physics provides the rotational model of a spin-stabilized launch
// vehicle during boost.
//
//   - [Design]: moment arms and principal inertias, validated once
//   - [Design.Moments]: body moment from the two motor thrusts
//   - [SpinVehicle]: Euler's equations plus Euler-angle kinematics,
//     implementing [dynamo.System] and [dynamo.Hamiltonian]
//
// # Gimbal Lock
//
// The kinematic rates divide by cos(theta). [SpinVehicle.Derive] returns
// [dynamo.ErrNumericalSingularity] once |cos(theta)| drops below
// [SingularityEps] instead of producing infinite rates.
package physics
