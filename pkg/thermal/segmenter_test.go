package thermal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igclab/pkg/flight"
)

// turningClimb builds n consecutive thermal-state fixes turning at rocDeg
// per sample and climbing climbPerFix meters per sample from startAlt.
func turningClimb(n int, rocDeg, startAlt, climbPerFix float64) []flight.Fix {
	fixes := make([]flight.Fix, n)
	heading := 0.0
	for i := range fixes {
		fixes[i] = flight.Fix{
			State:         flight.StateThermal,
			Heading:       heading,
			HeadingROC:    rocDeg,
			GPSClimbRate:  climbPerFix,
			BaroClimbRate: climbPerFix,
		}
		fixes[i].GPSAlt = startAlt + climbPerFix*float64(i)
		fixes[i].Lat = 46.5
		fixes[i].Lon = 8.0
		heading = math.Mod(heading+rocDeg+360, 360)
	}
	return fixes
}

// withBreakAfter appends a spacer fix (non-thermal) and one extra thermal
// fix so the preceding run is forced closed. Without it the final open run
// would never be evaluated.
func withBreakAfter(fixes []flight.Fix) []flight.Fix {
	out := append([]flight.Fix{}, fixes...)
	out = append(out, flight.Fix{State: flight.StateGlide})
	closer := flight.Fix{
		State:      flight.StateThermal,
		HeadingROC: 15,
	}
	closer.GPSAlt = out[len(out)-2].GPSAlt
	return append(out, closer)
}

func TestSegmentSingleThermal(t *testing.T) {
	// 40 samples of constant right turn, gaining 50 m.
	run := turningClimb(40, 15, 1000, 50.0/39.0)
	thermals := Segment(withBreakAfter(run))

	require.Len(t, thermals, 1)
	th := thermals[0]
	assert.Equal(t, 0, th.ID)
	assert.Equal(t, 1, th.TurnDirection)
	assert.InDelta(t, 50.0, th.HeightGain, 1e-9)
	assert.InDelta(t, 15.0, th.AvgTurnRate, 1e-9)
	assert.Greater(t, th.TurnCount, 1.0)
	assert.InDelta(t, 50.0/39.0, th.AvgGPSClimbRate, 1e-9)
	assert.Equal(t, 46.5, th.StartLat)
	assert.Equal(t, 8.0, th.StartLon)
}

func TestSegmentLeftTurn(t *testing.T) {
	run := turningClimb(40, -15, 800, 1)
	thermals := Segment(withBreakAfter(run))

	require.Len(t, thermals, 1)
	assert.Equal(t, -1, thermals[0].TurnDirection)
	assert.InDelta(t, -15.0, thermals[0].AvgTurnRate, 1e-9)
}

func TestSegmentDirectionFlipSplitsRun(t *testing.T) {
	run := turningClimb(40, 15, 1000, 1)
	// One sample turning the other way mid-run.
	run[20].HeadingROC = -15

	thermals := Segment(withBreakAfter(run))

	// First sub-run (fixes 0..19) qualifies. The flipped fix becomes a
	// one-sample run with zero height gain and is discarded; the rest
	// re-qualifies before the appended break.
	require.Len(t, thermals, 2)
	assert.Equal(t, 0, thermals[0].ID)
	assert.InDelta(t, 19.0, thermals[0].HeightGain, 1e-9)
	// The discarded middle run still consumed ID 1.
	assert.Equal(t, 2, thermals[1].ID)
}

func TestSegmentFinalOpenRunIsDropped(t *testing.T) {
	// A flight that ends mid-thermal: the run is never closed, so no
	// thermal is emitted even though it would qualify.
	run := turningClimb(40, 15, 1000, 2)
	assert.Empty(t, Segment(run))
}

func TestSegmentNonAdjacentFixesBreakRun(t *testing.T) {
	// Two turning climbs separated by a glide; the gap closes the first
	// run even though the turn direction never changes.
	first := turningClimb(30, 15, 1000, 1)
	second := turningClimb(30, 15, 1200, 1)

	var fixes []flight.Fix
	fixes = append(fixes, first...)
	fixes = append(fixes, flight.Fix{State: flight.StateGlide}, flight.Fix{State: flight.StateGlide})
	fixes = append(fixes, second...)

	thermals := Segment(fixes)

	// Only the first climb closes (the second stays open at end of track).
	require.Len(t, thermals, 1)
	assert.InDelta(t, 29.0, thermals[0].HeightGain, 1e-9)
}

func TestSegmentZeroRateBreaksRun(t *testing.T) {
	run := turningClimb(30, 15, 1000, 1)
	run[15].HeadingROC = 0 // straight sample: product is zero, not > 0

	thermals := Segment(withBreakAfter(run))
	require.NotEmpty(t, thermals)
	assert.InDelta(t, 14.0, thermals[0].HeightGain, 1e-9)
}

func TestSegmentNoThermalFixes(t *testing.T) {
	fixes := []flight.Fix{
		{State: flight.StateGlide},
		{State: flight.StateOther},
	}
	assert.Empty(t, Segment(fixes))
	assert.Empty(t, Segment(nil))
}

func TestSegmentSinkingRunDiscarded(t *testing.T) {
	// Turning but losing altitude: closed run fails heightGain > 0.
	run := turningClimb(40, 15, 1000, -1)
	assert.Empty(t, Segment(withBreakAfter(run)))
}
