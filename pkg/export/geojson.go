// Package export writes analysis results to GeoJSON and CSV files.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"igclab/pkg/batch"
	"igclab/pkg/thermal"
)

// TrackFeatureCollection builds a GeoJSON feature collection for one
// flight: a LineString for the track plus a Point per detected thermal
// start.
func TrackFeatureCollection(res *batch.FlightResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(res.Fixes) > 0 {
		line := make(orb.LineString, 0, len(res.Fixes))
		for i := range res.Fixes {
			line = append(line, orb.Point{res.Fixes[i].Lon, res.Fixes[i].Lat})
		}
		track := geojson.NewFeature(line)
		track.Properties["name"] = res.Name
		track.Properties["fixes"] = len(res.Fixes)
		track.Properties["thermals"] = len(res.Thermals)
		fc.Append(track)
	}

	for _, th := range res.Thermals {
		pt := geojson.NewFeature(orb.Point{th.StartLon, th.StartLat})
		pt.Properties["thermal_id"] = th.ID
		pt.Properties["height_gain"] = th.HeightGain
		pt.Properties["turn_count"] = th.TurnCount
		pt.Properties["turn_direction"] = th.TurnDirection
		pt.Properties["avg_turn_rate"] = th.AvgTurnRate
		pt.Properties["avg_gps_climb_rate"] = th.AvgGPSClimbRate
		pt.Properties["avg_baro_climb_rate"] = th.AvgBaroClimbRate
		pt.Properties["start_time"] = th.StartTime
		fc.Append(pt)
	}

	return fc
}

// WriteTrackGeoJSON writes the flight's feature collection to path.
func WriteTrackGeoJSON(path string, res *batch.FlightResult) error {
	data, err := TrackFeatureCollection(res).MarshalJSON()
	if err != nil {
		return fmt.Errorf("export: marshal geojson: %w", err)
	}
	return writeFile(path, data)
}

// ThermalFeatureCollection builds a Point feature collection from
// thermals of any number of flights, for plotting thermal locations on a
// map.
func ThermalFeatureCollection(thermals []thermal.Thermal) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, th := range thermals {
		pt := geojson.NewFeature(orb.Point{th.StartLon, th.StartLat})
		pt.Properties["thermal_id"] = th.ID
		pt.Properties["height_gain"] = th.HeightGain
		pt.Properties["avg_baro_climb_rate"] = th.AvgBaroClimbRate
		pt.Properties["turn_direction"] = th.TurnDirection
		fc.Append(pt)
	}
	return fc
}

// WriteThermalGeoJSON writes the thermal points to path.
func WriteThermalGeoJSON(path string, thermals []thermal.Thermal) error {
	data, err := ThermalFeatureCollection(thermals).MarshalJSON()
	if err != nil {
		return fmt.Errorf("export: marshal geojson: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: create dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// cell renders a float for file output; NaN becomes an empty cell.
func cell(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return fmt.Sprintf("%g", f)
}
