// Package thermal groups consecutive thermal-state fixes into discrete
// climb events.
//
// The walk is a small state machine over the thermal-state subsequence of
// a classified flight, in original time order. A run keeps absorbing fixes
// while they stay adjacent in the original sequence and keep the same turn
// direction; any break closes the run, evaluates it, and starts a new run
// at the fix that broke.
package thermal

import "igclab/pkg/flight"

// Thermal is one qualifying climb event.
type Thermal struct {
	ID               int     // closure ordinal; advances even for discarded runs
	HeightGain       float64 // meters, GPS altitude end minus start
	TurnCount        float64 // heading-sum proxy: sum of run headings / 360
	AvgTurnRate      float64 // degrees/sample
	TurnDirection    int     // +1 right, -1 left
	AvgGPSClimbRate  float64 // m/s
	AvgBaroClimbRate float64 // m/s

	// Run-start fix position, for hotspot aggregation and export.
	StartLat  float64
	StartLon  float64
	StartTime string
}

// Qualification thresholds for emitting a run as a Thermal.
const (
	minTurnCount = 1.0  // more than one full rotation (by the heading-sum proxy)
	minTurnRate  = 10.0 // degrees/sample, absolute
)

// run accumulates one open thermal-state run.
type run struct {
	length       int
	sumHeading   float64
	sumHdgROC    float64
	sumGPSClimb  float64
	sumBaroClimb float64
	startAlt     float64
	startLat     float64
	startLon     float64
	startTime    string
}

func (r *run) reset(start flight.Fix) {
	*r = run{
		startAlt:  start.GPSAlt,
		startLat:  start.Lat,
		startLon:  start.Lon,
		startTime: start.Time,
	}
}

func (r *run) add(f flight.Fix) {
	r.sumHeading += f.Heading
	r.sumHdgROC += f.HeadingROC
	r.sumGPSClimb += f.GPSClimbRate
	r.sumBaroClimb += f.BaroClimbRate
	r.length++
}

// close evaluates the run ending at fix end and reports whether it
// qualifies as a thermal.
func (r *run) close(id int, end flight.Fix) (Thermal, bool) {
	heightGain := end.GPSAlt - r.startAlt
	turnCount := r.sumHeading / 360
	avgTurnRate := r.sumHdgROC / float64(r.length)

	if !(heightGain > 0 && turnCount > minTurnCount && abs(avgTurnRate) > minTurnRate) {
		return Thermal{}, false
	}

	return Thermal{
		ID:               id,
		HeightGain:       heightGain,
		TurnCount:        turnCount,
		AvgTurnRate:      avgTurnRate,
		TurnDirection:    sign(avgTurnRate),
		AvgGPSClimbRate:  r.sumGPSClimb / float64(r.length),
		AvgBaroClimbRate: r.sumBaroClimb / float64(r.length),
		StartLat:         r.startLat,
		StartLon:         r.startLon,
		StartTime:        r.startTime,
	}, true
}

// Segment extracts thermal events from a classified fix sequence.
//
// A run continues from one thermal-state fix to the next if and only if
// they are adjacent in the original sequence and their heading rates have
// the same sign (strictly positive product: a zero rate or a direction
// flip breaks the run).
//
// Known quirk, kept on purpose: the walk is pairwise, so the final open
// run is never evaluated. A flight that ends mid-thermal drops that last
// climb. The ID counter also advances on runs that fail qualification, so
// emitted IDs are closure ordinals, not dense.
func Segment(fixes []flight.Fix) []Thermal {
	var idx []int
	for i := range fixes {
		if fixes[i].State == flight.StateThermal {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return nil
	}

	var (
		thermals []Thermal
		acc      run
		nextID   int
	)
	acc.reset(fixes[idx[0]])

	for k := 0; k+1 < len(idx); k++ {
		cur := fixes[idx[k]]
		next := fixes[idx[k+1]]

		acc.add(cur)

		adjacent := idx[k+1]-idx[k] == 1
		sameDirection := cur.HeadingROC*next.HeadingROC > 0
		if adjacent && sameDirection {
			continue
		}

		if th, ok := acc.close(nextID, cur); ok {
			thermals = append(thermals, th)
		}
		nextID++
		acc.reset(next)
	}

	return thermals
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
