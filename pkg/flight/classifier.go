package flight

import (
	"fmt"
	"math"
)

// DefaultAvgWindow is the default rolling window length in samples.
const DefaultAvgWindow = 15

// Classification thresholds.
const (
	// thermalTurnRate is the minimum |average heading rate| (deg/sample)
	// for a window to count as circling.
	thermalTurnRate = 10.0
	// glideMinSpeed is the minimum average ground speed (m/s) for a
	// window to count as gliding.
	glideMinSpeed = 3.0
)

// Classifier slides a trailing window over a derived fix sequence and
// fills in the rolling averages, flight state and glide ratio of each fix
// once enough history exists.
type Classifier struct {
	window int
}

// NewClassifier returns a classifier with the given window length in
// samples. The window must be positive.
func NewClassifier(window int) (*Classifier, error) {
	if window < 1 {
		return nil, fmt.Errorf("flight: avg window must be positive, got %d", window)
	}
	return &Classifier{window: window}, nil
}

// rollingSum accumulates a sliding sum that ignores NaN members, so means
// over windows touching fix 0 (whose predecessor-derived values are
// missing) divide by the number of present samples only.
type rollingSum struct {
	sum float64
	n   int
}

func (r *rollingSum) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	r.sum += v
	r.n++
}

func (r *rollingSum) remove(v float64) {
	if math.IsNaN(v) {
		return
	}
	r.sum -= v
	r.n--
}

func (r *rollingSum) mean() float64 {
	if r.n == 0 {
		return math.NaN()
	}
	return r.sum / float64(r.n)
}

// Classify labels fixes in place. Fixes with index below window-1 are left
// untouched (NaN averages, StateUnknown): there is not enough history to
// say anything about them.
func (c *Classifier) Classify(fixes []Fix) {
	var speed, hdgROC, gpsClimb, baroClimb rollingSum

	for i := range fixes {
		speed.add(fixes[i].GroundSpeed)
		hdgROC.add(fixes[i].HeadingROC)
		gpsClimb.add(fixes[i].GPSClimbRate)
		baroClimb.add(fixes[i].BaroClimbRate)

		if i >= c.window {
			out := &fixes[i-c.window]
			speed.remove(out.GroundSpeed)
			hdgROC.remove(out.HeadingROC)
			gpsClimb.remove(out.GPSClimbRate)
			baroClimb.remove(out.BaroClimbRate)
		}

		if i < c.window-1 {
			continue
		}

		f := &fixes[i]
		f.AvgGroundSpeed = speed.mean()
		f.AvgHeadingROC = hdgROC.mean()
		f.AvgGPSClimbRate = gpsClimb.mean()
		f.AvgBaroClimbRate = baroClimb.mean()
		f.State = classify(f.AvgBaroClimbRate, f.AvgHeadingROC, f.AvgGroundSpeed)
		f.GlideRatio = glideRatio(f.AvgGroundSpeed, f.AvgGPSClimbRate)
	}
}

// classify applies the state rules in priority order. NaN averages fail
// every comparison and fall through to StateOther, matching the behavior
// of the thresholds on missing data.
func classify(avgBaroClimb, avgHdgROC, avgSpeed float64) FlightState {
	absROC := math.Abs(avgHdgROC)
	switch {
	case avgBaroClimb > 0 && absROC >= thermalTurnRate:
		return StateThermal
	case absROC < thermalTurnRate && avgSpeed > glideMinSpeed:
		return StateGlide
	default:
		return StateOther
	}
}

// glideRatio is |horizontal speed / sink rate| while descending; anything
// else (climbing, level, or missing climb data) gets the sentinel so that
// `< LDMax` filters drop it.
func glideRatio(avgSpeed, avgGPSClimb float64) float64 {
	if avgGPSClimb < 0 {
		return math.Abs(avgSpeed / avgGPSClimb)
	}
	return GlideRatioSentinel
}
