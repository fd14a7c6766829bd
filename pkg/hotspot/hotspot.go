// Package hotspot buckets thermal start positions into H3 cells to find
// the spots where thermals keep triggering.
package hotspot

import (
	"fmt"
	"sort"

	"github.com/uber/h3-go/v4"

	"igclab/pkg/stats"
	"igclab/pkg/thermal"
)

// DefaultResolution is H3 resolution 8, cells of roughly 0.7 km².
const DefaultResolution = 8

// Cell is one H3 cell with aggregate thermal statistics.
type Cell struct {
	Index          string  // H3 cell index as hex string
	Lat            float64 // cell center
	Lon            float64
	Count          int     // thermals starting in this cell
	MeanHeightGain float64 // m
	MeanClimbRate  float64 // m/s, baro
}

// Aggregate groups thermals into H3 cells at the given resolution. Cells
// come back sorted by count descending, ties broken by index so the
// output is deterministic.
func Aggregate(thermals []thermal.Thermal, resolution int) ([]Cell, error) {
	type acc struct {
		cell   h3.Cell
		gains  []float64
		climbs []float64
	}
	cells := make(map[h3.Cell]*acc)

	for i := range thermals {
		th := &thermals[i]
		cell, err := h3.LatLngToCell(h3.NewLatLng(th.StartLat, th.StartLon), resolution)
		if err != nil {
			return nil, fmt.Errorf("hotspot: index thermal %d: %w", th.ID, err)
		}
		a, ok := cells[cell]
		if !ok {
			a = &acc{cell: cell}
			cells[cell] = a
		}
		a.gains = append(a.gains, th.HeightGain)
		a.climbs = append(a.climbs, th.AvgBaroClimbRate)
	}

	out := make([]Cell, 0, len(cells))
	for _, a := range cells {
		center, err := a.cell.LatLng()
		if err != nil {
			return nil, fmt.Errorf("hotspot: cell center: %w", err)
		}
		out = append(out, Cell{
			Index:          a.cell.String(),
			Lat:            center.Lat,
			Lon:            center.Lng,
			Count:          len(a.gains),
			MeanHeightGain: stats.Mean(a.gains),
			MeanClimbRate:  stats.Mean(a.climbs),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Index < out[j].Index
	})
	return out, nil
}
