package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"igclab/pkg/flight"
	"igclab/pkg/hotspot"
	"igclab/pkg/polar"
	"igclab/pkg/thermal"
)

// WriteFixCSV writes the per-fix table, one row per fix with kinematics,
// rolling averages and the classified state.
func WriteFixCSV(w io.Writer, fixes []flight.Fix) error {
	cw := csv.NewWriter(w)

	header := []string{
		"time", "lat", "lon", "gps_alt", "baro_alt",
		"ground_speed", "heading", "heading_roc",
		"gps_climb_rate", "baro_climb_rate",
		"avg_heading_roc", "avg_ground_speed",
		"avg_gps_climb_rate", "avg_baro_climb_rate",
		"state", "glide_ratio",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}

	for i := range fixes {
		f := &fixes[i]
		row := []string{
			f.Time,
			cell(f.Lat),
			cell(f.Lon),
			cell(f.GPSAlt),
			cell(f.BaroAlt),
			cell(f.GroundSpeed),
			cell(f.Heading),
			cell(f.HeadingROC),
			cell(f.GPSClimbRate),
			cell(f.BaroClimbRate),
			cell(f.AvgHeadingROC),
			cell(f.AvgGroundSpeed),
			cell(f.AvgGPSClimbRate),
			cell(f.AvgBaroClimbRate),
			f.State.String(),
			cell(f.GlideRatio),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteThermalCSV writes the thermal table, one row per qualified thermal.
func WriteThermalCSV(w io.Writer, thermals []thermal.Thermal) error {
	cw := csv.NewWriter(w)

	header := []string{
		"thermal_id", "height_gain", "turn_count", "avg_turn_rate",
		"turn_direction", "avg_gps_climb_rate", "avg_baro_climb_rate",
		"start_lat", "start_lon", "start_time",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}

	for _, th := range thermals {
		row := []string{
			strconv.Itoa(th.ID),
			cell(th.HeightGain),
			cell(th.TurnCount),
			cell(th.AvgTurnRate),
			strconv.Itoa(th.TurnDirection),
			cell(th.AvgGPSClimbRate),
			cell(th.AvgBaroClimbRate),
			cell(th.StartLat),
			cell(th.StartLon),
			th.StartTime,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteBinCSV writes the speed-binned glide table: one row per bucket
// with glide-ratio and climb-rate distributions plus sample counts.
func WriteBinCSV(w io.Writer, bins []polar.BinStat, glideCounts, climbCounts []int) error {
	cw := csv.NewWriter(w)

	header := []string{
		"bin", "ground_speed",
		"glide_ratio_mean", "glide_ratio_median", "glide_ratio_std",
		"glide_ratio_q1", "glide_ratio_q3", "glide_ratio_iqr",
		"baro_climb_mean", "baro_climb_median", "baro_climb_std",
		"gps_climb_mean", "gps_climb_median", "gps_climb_std",
		"glide_ratio_count", "climb_rate_count",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}

	for b := range bins {
		bin := &bins[b]
		row := []string{
			bin.Label,
			cell(bin.GroundSpeedMedian),
			cell(bin.GlideRatio.Mean),
			cell(bin.GlideRatio.Median),
			cell(bin.GlideRatio.StdDev),
			cell(bin.GlideRatio.Q1),
			cell(bin.GlideRatio.Q3),
			cell(bin.GlideRatio.IQR),
			cell(bin.BaroClimbRate.Mean),
			cell(bin.BaroClimbRate.Median),
			cell(bin.BaroClimbRate.StdDev),
			cell(bin.GPSClimbRate.Mean),
			cell(bin.GPSClimbRate.Median),
			cell(bin.GPSClimbRate.StdDev),
			strconv.Itoa(glideCounts[b]),
			strconv.Itoa(climbCounts[b]),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteHotspotCSV writes the thermal hotspot table, one row per H3 cell.
func WriteHotspotCSV(w io.Writer, cells []hotspot.Cell) error {
	cw := csv.NewWriter(w)

	header := []string{"h3_index", "lat", "lon", "count", "mean_height_gain", "mean_climb_rate"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}

	for _, c := range cells {
		row := []string{
			c.Index,
			cell(c.Lat),
			cell(c.Lon),
			strconv.Itoa(c.Count),
			cell(c.MeanHeightGain),
			cell(c.MeanClimbRate),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile opens path for writing (creating directories) and passes
// the file to write.
func WriteCSVFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: create dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	return f.Close()
}
