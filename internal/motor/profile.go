package motor

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/spinsim/internal/dynamo"
)

// Profile is one motor's measured thrust curve: strictly increasing sample
// times (s) paired with non-negative thrust (N). A Profile never changes once
// built; the transform methods return new profiles.
type Profile struct {
	times  []float64
	thrust []float64
}

// NewProfile copies and validates a thrust table.
func NewProfile(times, thrust []float64) (*Profile, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: thrust table is empty", dynamo.ErrInvalidInput)
	}
	if len(times) != len(thrust) {
		return nil, fmt.Errorf("%w: %d times but %d thrust values", dynamo.ErrInvalidInput, len(times), len(thrust))
	}
	for i := range times {
		t, f := times[i], thrust[i]
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return nil, fmt.Errorf("%w: time[%d] = %g must be finite and non-negative", dynamo.ErrInvalidInput, i, t)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return nil, fmt.Errorf("%w: thrust[%d] = %g must be finite and non-negative", dynamo.ErrInvalidInput, i, f)
		}
		if i > 0 && t <= times[i-1] {
			return nil, fmt.Errorf("%w: time[%d] = %g not greater than time[%d] = %g", dynamo.ErrInvalidInput, i, t, i-1, times[i-1])
		}
	}

	p := &Profile{
		times:  make([]float64, len(times)),
		thrust: make([]float64, len(thrust)),
	}
	copy(p.times, times)
	copy(p.thrust, thrust)
	return p, nil
}

// Thrust returns the thrust at time t. Outside the sampled interval the motor
// is not burning and the result is 0; inside it the table is interpolated
// linearly.
func (p *Profile) Thrust(t float64) float64 {
	n := len(p.times)
	if math.IsNaN(t) || t < p.times[0] || t > p.times[n-1] {
		return 0
	}

	i := sort.SearchFloat64s(p.times, t)
	if p.times[i] == t {
		return p.thrust[i]
	}

	t0, t1 := p.times[i-1], p.times[i]
	f0, f1 := p.thrust[i-1], p.thrust[i]
	return f0 + (f1-f0)*(t-t0)/(t1-t0)
}

func (p *Profile) Len() int { return len(p.times) }

func (p *Profile) Times() []float64 {
	out := make([]float64, len(p.times))
	copy(out, p.times)
	return out
}

func (p *Profile) Thrusts() []float64 {
	out := make([]float64, len(p.thrust))
	copy(out, p.thrust)
	return out
}

// Ignition is the first sample time.
func (p *Profile) Ignition() float64 { return p.times[0] }

// Burnout is the last sample time.
func (p *Profile) Burnout() float64 { return p.times[len(p.times)-1] }

func (p *Profile) BurnTime() float64 { return p.Burnout() - p.Ignition() }

func (p *Profile) PeakThrust() float64 {
	peak := 0.0
	for _, f := range p.thrust {
		peak = math.Max(peak, f)
	}
	return peak
}

// TotalImpulse integrates the piecewise-linear curve (N·s).
func (p *Profile) TotalImpulse() float64 {
	sum := 0.0
	for i := 1; i < len(p.times); i++ {
		sum += 0.5 * (p.thrust[i] + p.thrust[i-1]) * (p.times[i] - p.times[i-1])
	}
	return sum
}

// Delay shifts the whole curve later by d seconds.
func (p *Profile) Delay(d float64) (*Profile, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return nil, fmt.Errorf("%w: ignition delay %g must be finite and non-negative", dynamo.ErrInvalidInput, d)
	}
	times := p.Times()
	for i := range times {
		times[i] += d
	}
	return NewProfile(times, p.thrust)
}

// Scale multiplies every thrust sample by k.
func (p *Profile) Scale(k float64) (*Profile, error) {
	if math.IsNaN(k) || math.IsInf(k, 0) || k <= 0 {
		return nil, fmt.Errorf("%w: thrust scale %g must be positive", dynamo.ErrInvalidInput, k)
	}
	thrust := p.Thrusts()
	for i := range thrust {
		thrust[i] *= k
	}
	return NewProfile(p.times, thrust)
}

// PerGrain divides a multi-grain motor's curve evenly across its grains.
func (p *Profile) PerGrain(grains int) (*Profile, error) {
	if grains <= 0 {
		return nil, fmt.Errorf("%w: grain count %d must be positive", dynamo.ErrInvalidInput, grains)
	}
	return p.Scale(1 / float64(grains))
}
