// Package stats provides NaN-aware descriptive statistics. Missing values
// are encoded as NaN and skipped; an all-missing series yields NaN, never
// an error, so downstream tables keep a fixed shape.
package stats

import (
	"math"
	"sort"
)

// valid returns the non-NaN values of xs.
func valid(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// Count returns the number of non-NaN values.
func Count(xs []float64) int {
	n := 0
	for _, x := range xs {
		if !math.IsNaN(x) {
			n++
		}
	}
	return n
}

// Mean returns the arithmetic mean of the non-NaN values, or NaN if there
// are none.
func Mean(xs []float64) float64 {
	sum, n := 0.0, 0
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// StdDev returns the population standard deviation of the non-NaN values.
func StdDev(xs []float64) float64 {
	vs := valid(xs)
	if len(vs) == 0 {
		return math.NaN()
	}

	mean := Mean(vs)
	sumSq := 0.0
	for _, v := range vs {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vs)))
}

// Median returns the 50th percentile of the non-NaN values.
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// Quantile returns the q-th quantile (0 <= q <= 1) of the non-NaN values
// using linear interpolation between closest ranks.
func Quantile(xs []float64, q float64) float64 {
	vs := valid(xs)
	if len(vs) == 0 {
		return math.NaN()
	}
	sort.Float64s(vs)

	if q <= 0 {
		return vs[0]
	}
	if q >= 1 {
		return vs[len(vs)-1]
	}

	pos := q * float64(len(vs)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return vs[lo]
	}
	frac := pos - float64(lo)
	return vs[lo] + frac*(vs[hi]-vs[lo])
}
