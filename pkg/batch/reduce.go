package batch

import (
	"fmt"

	"igclab/pkg/flight"
	"igclab/pkg/polar"
	"igclab/pkg/stats"
	"igclab/pkg/thermal"
)

// Merged is the batch-level view over several flights' results.
//
// The fix, thermal and gliding tables are plain concatenations in flight
// order; flight boundaries are implicit only (no flight-id column), a
// known data-model limitation kept for output compatibility. Bin
// statistics are arithmetic averages of the per-flight values — an
// average of averages, not a recomputation over pooled samples — and the
// per-bin counts are elementwise sums.
type Merged struct {
	Fixes            []flight.Fix
	Thermals         []thermal.Thermal
	Gliding          []flight.Fix
	Bins             []polar.BinStat
	GlideRatioCounts []int
	ClimbRateCounts  []int
}

// Reduce merges per-flight results. Edges must be the bucket edges the
// flights were aggregated with; they define the output shape when results
// is empty.
func Reduce(results []*FlightResult, edges []float64) *Merged {
	nBins := len(edges) - 1
	m := &Merged{
		Bins:             make([]polar.BinStat, nBins),
		GlideRatioCounts: make([]int, nBins),
		ClimbRateCounts:  make([]int, nBins),
	}

	for _, r := range results {
		m.Fixes = append(m.Fixes, r.Fixes...)
		m.Thermals = append(m.Thermals, r.Thermals...)
		m.Gliding = append(m.Gliding, r.Polar.Gliding...)
	}

	for b := 0; b < nBins; b++ {
		perFlight := func(pick func(polar.BinStat) float64) []float64 {
			vals := make([]float64, 0, len(results))
			for _, r := range results {
				vals = append(vals, pick(r.Polar.Bins[b]))
			}
			return vals
		}
		avg := func(pick func(polar.BinStat) polar.Summary) polar.Summary {
			return polar.Summary{
				Mean:   stats.Mean(perFlight(func(s polar.BinStat) float64 { return pick(s).Mean })),
				Median: stats.Mean(perFlight(func(s polar.BinStat) float64 { return pick(s).Median })),
				StdDev: stats.Mean(perFlight(func(s polar.BinStat) float64 { return pick(s).StdDev })),
				Q1:     stats.Mean(perFlight(func(s polar.BinStat) float64 { return pick(s).Q1 })),
				Q3:     stats.Mean(perFlight(func(s polar.BinStat) float64 { return pick(s).Q3 })),
				IQR:    stats.Mean(perFlight(func(s polar.BinStat) float64 { return pick(s).IQR })),
			}
		}

		m.Bins[b] = polar.BinStat{
			Label:             fmt.Sprintf("%.2f - %.2f m/s", edges[b], edges[b+1]),
			GroundSpeedMedian: (edges[b] + edges[b+1]) / 2,
			GlideRatio:        avg(func(s polar.BinStat) polar.Summary { return s.GlideRatio }),
			BaroClimbRate:     avg(func(s polar.BinStat) polar.Summary { return s.BaroClimbRate }),
			GPSClimbRate:      avg(func(s polar.BinStat) polar.Summary { return s.GPSClimbRate }),
		}

		for _, r := range results {
			m.GlideRatioCounts[b] += r.Polar.GlideRatioCounts[b]
			m.ClimbRateCounts[b] += r.Polar.ClimbRateCounts[b]
		}
	}

	return m
}
