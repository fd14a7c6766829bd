// Package polar buckets glide-state samples by ground speed and computes
// per-bucket descriptive statistics, the raw material for a measured glide
// polar.
package polar

import (
	"fmt"
	"math"

	"igclab/pkg/flight"
	"igclab/pkg/stats"
)

// DefaultLDMax is the default glide-ratio ceiling for glide samples.
const DefaultLDMax = 14.0

// maxGroundSpeed caps the ground speed of glide samples; faster fixes are
// GPS noise or wind spikes, not polar data.
const maxGroundSpeed = 20.0

// DefaultSpeedBins returns the default bucket edges: 19 edges evenly
// spaced from 7.25 to 16.25 m/s (18 half-open bins of 0.5 m/s).
func DefaultSpeedBins() []float64 {
	const (
		lo    = 7.25
		hi    = 16.25
		count = 19
	)
	edges := make([]float64, count)
	for i := range edges {
		edges[i] = lo + float64(i)*(hi-lo)/float64(count-1)
	}
	return edges
}

// Summary holds the distributional statistics of one variable in one bin.
// Empty bins carry NaN throughout.
type Summary struct {
	Mean   float64
	Median float64
	StdDev float64
	Q1     float64
	Q3     float64
	IQR    float64
}

func summarize(xs []float64) Summary {
	q1 := stats.Quantile(xs, 0.25)
	q3 := stats.Quantile(xs, 0.75)
	return Summary{
		Mean:   stats.Mean(xs),
		Median: stats.Median(xs),
		StdDev: stats.StdDev(xs),
		Q1:     q1,
		Q3:     q3,
		IQR:    q3 - q1,
	}
}

// BinStat is one row of the speed-binned glide table.
type BinStat struct {
	Label string // "7.25 - 7.75 m/s"
	// GroundSpeedMedian is the midpoint of the bin edges. The name is
	// historical: it is a bin-center approximation, not a sample median.
	GroundSpeedMedian float64
	GlideRatio        Summary
	BaroClimbRate     Summary // of the rolling average climb rate
	GPSClimbRate      Summary // of the rolling average climb rate
}

// Result is the aggregator output for one flight (or one merged batch).
type Result struct {
	// Gliding is the filtered glide subset the bins are computed from:
	// glide state, glide ratio below the ceiling, ground speed below
	// maxGroundSpeed.
	Gliding []flight.Fix
	Bins    []BinStat
	// Per-bin sample counts, aligned 1:1 with Bins.
	GlideRatioCounts []int
	ClimbRateCounts  []int
}

// Aggregate filters fixes down to glide data and computes per-bin
// statistics. Edges must be strictly increasing with at least two entries
// (validated at configuration time); empty bins yield NaN statistics and
// zero counts.
func Aggregate(fixes []flight.Fix, edges []float64, ldMax float64) Result {
	var gliding []flight.Fix
	for i := range fixes {
		f := &fixes[i]
		if f.State == flight.StateGlide && f.GlideRatio < ldMax && f.GroundSpeed < maxGroundSpeed {
			gliding = append(gliding, *f)
		}
	}

	nBins := len(edges) - 1
	res := Result{
		Gliding:          gliding,
		Bins:             make([]BinStat, nBins),
		GlideRatioCounts: make([]int, nBins),
		ClimbRateCounts:  make([]int, nBins),
	}

	for b := 0; b < nBins; b++ {
		lo, hi := edges[b], edges[b+1]

		var ratios, baros, gpss []float64
		for i := range gliding {
			if gliding[i].GroundSpeed >= lo && gliding[i].GroundSpeed < hi {
				ratios = append(ratios, gliding[i].GlideRatio)
				baros = append(baros, gliding[i].AvgBaroClimbRate)
				gpss = append(gpss, gliding[i].AvgGPSClimbRate)
			}
		}

		res.Bins[b] = BinStat{
			Label:             fmt.Sprintf("%.2f - %.2f m/s", lo, hi),
			GroundSpeedMedian: (lo + hi) / 2,
			GlideRatio:        summarize(ratios),
			BaroClimbRate:     summarize(baros),
			GPSClimbRate:      summarize(gpss),
		}
		res.GlideRatioCounts[b] = stats.Count(ratios)
		res.ClimbRateCounts[b] = stats.Count(baros)
	}

	return res
}

// EmptyResult returns a Result with the fixed bin shape and no samples,
// used for degenerate flights so downstream consumers always see the same
// table dimensions.
func EmptyResult(edges []float64) Result {
	return Aggregate(nil, edges, math.Inf(1))
}
