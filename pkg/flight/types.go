// Package flight derives per-fix kinematics from a raw fix sequence and
// labels each fix with a flight state using a trailing rolling window.
package flight

import "igclab/pkg/igc"

// FlightState labels what the pilot is doing at a fix.
type FlightState int8

const (
	// StateUnknown marks fixes inside the classifier warm-up window.
	StateUnknown FlightState = -1
	// StateOther is anything that is neither gliding nor thermalling.
	StateOther FlightState = 0
	// StateGlide is straight-ish flight at glide speed.
	StateGlide FlightState = 1
	// StateThermal is climbing flight with a sustained turn.
	StateThermal FlightState = 2
)

func (s FlightState) String() string {
	switch s {
	case StateOther:
		return "other"
	case StateGlide:
		return "glide"
	case StateThermal:
		return "thermal"
	default:
		return "unknown"
	}
}

// GlideRatioSentinel is the glide ratio assigned to windows that are not
// descending. It must survive unchanged so downstream `< LDMax` filters
// exclude those samples.
const GlideRatioSentinel = 1000000.0

// Fix is a raw fix plus everything derived from it. Derivative fields that
// need a predecessor (HeadingROC, climb rates) are NaN at fix 0; rolling
// fields are NaN until the window has filled (the first avgWindow-1 fixes).
type Fix struct {
	igc.RawFix

	// Pairwise kinematics (this fix vs its successor/predecessor).
	GroundSpeed   float64 // m/s, distance to next fix over 1 s; 0 for the last fix
	Heading       float64 // degrees [0,360), bearing to next fix; 0 for the last fix
	HeadingROC    float64 // degrees/sample, wrap-aware delta vs previous heading
	GPSClimbRate  float64 // m/s, GPS altitude delta vs previous fix
	BaroClimbRate float64 // m/s, baro altitude delta vs previous fix

	// Rolling-window results.
	AvgHeadingROC    float64
	AvgGroundSpeed   float64
	AvgGPSClimbRate  float64
	AvgBaroClimbRate float64
	State            FlightState
	GlideRatio       float64
}
