// Package motor models solid rocket motor thrust curves.
package motor

import "fmt"

// Motor carries the RASP header metadata alongside its thrust curve.
type Motor struct {
	Name           string
	Diameter       float64 // mm
	Length         float64 // mm
	Delays         string
	PropellantMass float64 // kg
	TotalMass      float64 // kg
	Manufacturer   string
	Profile        *Profile
}

func (m *Motor) String() string {
	return fmt.Sprintf("%s (%s) %.0fx%.0fmm, %.1f N·s over %.3fs",
		m.Name, m.Manufacturer, m.Diameter, m.Length, m.Profile.TotalImpulse(), m.Profile.BurnTime())
}
