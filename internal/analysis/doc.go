// Package analysis derives attitude quantities from a simulated trajectory.
//
//   - [Nutation]: angle between the spin axis and the reference roll axis
//   - [Precession]: yaw-pitch coning angle, computed the same way
//   - [DominantFrequency]: peak of the nutation spectrum
//   - [NewPhasePortrait]: two state components against each other
//
// All angle series are in degrees and aligned index-for-index with the
// trajectory they were computed from:
//
//	nut, prec, err := analysis.FromTrajectory(tr)
//	if err != nil {
//	    return err
//	}
package analysis
