package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/spinsim/internal/dynamo"
)

// State indices for the spin vehicle: body rates then Euler angles.
const (
	WX = iota
	WY
	WZ
	Psi
	Theta
	Phi
	StateDim
)

// SingularityEps is the smallest |cos(theta)| the kinematic equations accept.
const SingularityEps = 1e-6

// ThrustSource yields a motor's thrust (N) at time t (s).
type ThrustSource interface {
	Thrust(t float64) float64
}

// SpinVehicle is the rigid-body rotational model of a vehicle spun up by two
// off-axis motors: Euler's equations for the body rates plus the Euler-angle
// kinematics, with no gravity or aerodynamic torque.
type SpinVehicle struct {
	design         Design
	motor1, motor2 ThrustSource
	eps            float64
}

// NewSpinVehicle validates the design once; Derive does not re-check it.
func NewSpinVehicle(d Design, motor1, motor2 ThrustSource) (*SpinVehicle, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if motor1 == nil || motor2 == nil {
		return nil, fmt.Errorf("%w: both motors are required", dynamo.ErrInvalidInput)
	}
	return &SpinVehicle{design: d, motor1: motor1, motor2: motor2, eps: SingularityEps}, nil
}

func (v *SpinVehicle) StateDim() int  { return StateDim }
func (v *SpinVehicle) Design() Design { return v.design }

// Moments samples both motors at t and returns the body moment.
func (v *SpinVehicle) Moments(t float64) Vec3 {
	return v.design.Moments(v.motor1.Thrust(t), v.motor2.Thrust(t))
}

// Derive returns d/dt of [wx, wy, wz, psi, theta, phi].
func (v *SpinVehicle) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	if len(x) != StateDim {
		return nil, fmt.Errorf("%w: state has %d components, want %d", dynamo.ErrInvalidInput, len(x), StateDim)
	}
	wx, wy, wz := x[WX], x[WY], x[WZ]
	theta, phi := x[Theta], x[Phi]

	cosT := math.Cos(theta)
	if math.Abs(cosT) < v.eps {
		return nil, fmt.Errorf("%w: gimbal lock at theta = %.6g rad (|cos(theta)| = %.3g)",
			dynamo.ErrNumericalSingularity, theta, math.Abs(cosT))
	}

	m := v.Moments(t)
	d := v.design
	sinP, cosP := math.Sincos(phi)
	// Shared by psi_dot and phi_dot.
	q := wy*sinP + wz*cosP

	dx := dynamo.State{
		(m[0] - (d.Izz-d.Iyy)*wy*wz) / d.Ixx,
		(m[1] - (d.Ixx-d.Izz)*wz*wx) / d.Iyy,
		(m[2] - (d.Iyy-d.Ixx)*wx*wy) / d.Izz,
		q / cosT,
		wy*cosP - wz*sinP,
		wx + q*math.Tan(theta),
	}
	if !dx.IsValid() {
		return nil, fmt.Errorf("%w: non-finite rates at t = %g", dynamo.ErrNumericalSingularity, t)
	}
	return dx, nil
}

// CheckStep fails a step whose theta crosses ±90°. cos(theta) changing sign
// means the path passed through gimbal lock between evaluation points.
func (v *SpinVehicle) CheckStep(x0, x1 dynamo.State) error {
	if len(x0) != StateDim || len(x1) != StateDim {
		return fmt.Errorf("%w: state has wrong dimension", dynamo.ErrInvalidInput)
	}
	c0, c1 := math.Cos(x0[Theta]), math.Cos(x1[Theta])
	if math.Signbit(c0) != math.Signbit(c1) || math.Abs(c1) < v.eps {
		return fmt.Errorf("%w: theta crossed gimbal lock between %.6g and %.6g rad",
			dynamo.ErrNumericalSingularity, x0[Theta], x1[Theta])
	}
	return nil
}

// Energy is the rotational kinetic energy (J).
func (v *SpinVehicle) Energy(x dynamo.State) float64 {
	d := v.design
	return 0.5 * (d.Ixx*x[WX]*x[WX] + d.Iyy*x[WY]*x[WY] + d.Izz*x[WZ]*x[WZ])
}

// BodyState is a named view of the six-component state.
type BodyState struct {
	WX, WY, WZ      float64
	Psi, Theta, Phi float64
}

func (b BodyState) State() dynamo.State {
	return dynamo.State{b.WX, b.WY, b.WZ, b.Psi, b.Theta, b.Phi}
}

func BodyStateOf(x dynamo.State) BodyState {
	return BodyState{WX: x[WX], WY: x[WY], WZ: x[WZ], Psi: x[Psi], Theta: x[Theta], Phi: x[Phi]}
}
