package flight

import (
	"math"

	"igclab/pkg/geo"
	"igclab/pkg/igc"
)

// sampleInterval is the fixed time between fixes. The whole pipeline
// assumes 1 Hz recorders.
const sampleInterval = 1.0 // seconds

// Derive computes pairwise kinematics for an ordered fix sequence: ground
// speed and heading toward the successor, and heading/altitude rates of
// change versus the predecessor. Rolling fields are initialized to NaN and
// the state to StateUnknown; classification happens separately.
//
// The last fix has no successor and keeps the degenerate self-to-self
// values: ground speed 0 and heading 0.
func Derive(raw []igc.RawFix) []Fix {
	fixes := make([]Fix, len(raw))

	for i := range raw {
		f := Fix{
			RawFix:           raw[i],
			HeadingROC:       math.NaN(),
			GPSClimbRate:     math.NaN(),
			BaroClimbRate:    math.NaN(),
			AvgHeadingROC:    math.NaN(),
			AvgGroundSpeed:   math.NaN(),
			AvgGPSClimbRate:  math.NaN(),
			AvgBaroClimbRate: math.NaN(),
			State:            StateUnknown,
			GlideRatio:       math.NaN(),
		}

		if i+1 < len(raw) {
			p := geo.Point{Lat: raw[i].Lat, Lon: raw[i].Lon}
			q := geo.Point{Lat: raw[i+1].Lat, Lon: raw[i+1].Lon}
			f.GroundSpeed = geo.Distance(p, q) / sampleInterval
			f.Heading = geo.Bearing(p, q)
		}

		if i > 0 {
			f.HeadingROC = headingDelta(fixes[i-1].Heading, f.Heading)
			f.GPSClimbRate = (raw[i].GPSAlt - raw[i-1].GPSAlt) / sampleInterval
			f.BaroClimbRate = (raw[i].BaroAlt - raw[i-1].BaroAlt) / sampleInterval
		}

		fixes[i] = f
	}

	return fixes
}

// headingDelta returns the signed heading change from prev to cur in
// degrees per sample. Crossings of the 0/360 boundary (prev above 300 with
// cur below 60, or the reverse) are unwrapped before subtracting so a
// 350°→10° turn reads +20, not -340.
func headingDelta(prev, cur float64) float64 {
	switch {
	case prev > 300 && cur < 60:
		return (cur + 360) - prev
	case prev < 60 && cur > 300:
		return (cur - 360) - prev
	default:
		return cur - prev
	}
}
