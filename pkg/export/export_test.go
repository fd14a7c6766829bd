package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igclab/pkg/batch"
	"igclab/pkg/flight"
	"igclab/pkg/igc"
	"igclab/pkg/polar"
	"igclab/pkg/thermal"
)

func sampleResult() *batch.FlightResult {
	fixes := []flight.Fix{
		{RawFix: igc.RawFix{Time: "110000", Lat: 46.5, Lon: 8.1, GPSAlt: 1200, BaroAlt: 1180}},
		{RawFix: igc.RawFix{Time: "110001", Lat: 46.5001, Lon: 8.1, GPSAlt: 1201, BaroAlt: 1181}},
		{RawFix: igc.RawFix{Time: "110002", Lat: 46.5002, Lon: 8.1, GPSAlt: 1202, BaroAlt: 1182}},
	}
	for i := range fixes {
		fixes[i].GroundSpeed = 10
		fixes[i].Heading = 0
		fixes[i].State = flight.StateGlide
		fixes[i].GlideRatio = 9
		fixes[i].AvgHeadingROC = math.NaN()
	}
	return &batch.FlightResult{
		Name:  "sample.igc",
		Fixes: fixes,
		Thermals: []thermal.Thermal{
			{ID: 0, HeightGain: 150, TurnCount: 4, AvgTurnRate: 16, TurnDirection: 1,
				StartLat: 46.5, StartLon: 8.1, StartTime: "110500"},
		},
		Polar: polar.EmptyResult([]float64{8, 10, 12}),
	}
}

func TestTrackFeatureCollection(t *testing.T) {
	fc := TrackFeatureCollection(sampleResult())

	require.Len(t, fc.Features, 2)
	assert.Equal(t, "LineString", fc.Features[0].Geometry.GeoJSONType())
	assert.Equal(t, "sample.igc", fc.Features[0].Properties["name"])
	assert.Equal(t, "Point", fc.Features[1].Geometry.GeoJSONType())
	assert.Equal(t, 150.0, fc.Features[1].Properties["height_gain"])
}

func TestWriteTrackGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "track.geojson")
	require.NoError(t, WriteTrackGeoJSON(path, sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "FeatureCollection", doc["type"])
}

func TestTrackFeatureCollectionEmptyFlight(t *testing.T) {
	res := &batch.FlightResult{Name: "empty.igc", Polar: polar.EmptyResult([]float64{8, 10})}
	fc := TrackFeatureCollection(res)
	assert.Empty(t, fc.Features)
}

func TestWriteThermalGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thermals.geojson")
	require.NoError(t, WriteThermalGeoJSON(path, sampleResult().Thermals))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "height_gain")
}

func TestWriteFixCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFixCSV(&buf, sampleResult().Fixes))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header plus three fixes

	assert.Equal(t, "time", rows[0][0])
	assert.Equal(t, "110000", rows[1][0])
	assert.Equal(t, "glide", rows[1][14])
	// NaN rolling values render as empty cells.
	assert.Equal(t, "", rows[1][10])
}

func TestWriteThermalCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteThermalCSV(&buf, sampleResult().Thermals))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "0", rows[1][0])
	assert.Equal(t, "150", rows[1][1])
}

func TestWriteBinCSV(t *testing.T) {
	res := polar.EmptyResult([]float64{8, 10, 12})

	var buf bytes.Buffer
	require.NoError(t, WriteBinCSV(&buf, res.Bins, res.GlideRatioCounts, res.ClimbRateCounts))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "8.00 - 10.00 m/s", rows[1][0])
	// Empty bins carry NaN stats, rendered as empty cells, and zero counts.
	assert.Equal(t, "", rows[1][2])
	assert.Equal(t, "0", rows[1][14])
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fixes.csv")
	err := WriteCSVFile(path, func(w io.Writer) error { return WriteFixCSV(w, nil) })
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ground_speed")
}
