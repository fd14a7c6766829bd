package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"igclab/pkg/batch"
	"igclab/pkg/config"
	"igclab/pkg/export"
	"igclab/pkg/hotspot"
	"igclab/pkg/logging"
	"igclab/pkg/store"
	"igclab/pkg/version"
)

var (
	configPath = flag.String("config", "configs/igclab.yaml", "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	outDir     = flag.String("out", "out", "Output directory for CSV and GeoJSON files")
	dbPath     = flag.String("db", "", "SQLite database path (overrides config)")
	workers    = flag.Int("workers", 0, "Parallel flights in folder mode (overrides config)")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.Save(*configPath, config.DefaultConfig()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: igclab [flags] <flight.igc | flight-directory>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(context.Background(), flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, input string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional .env for local overrides; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("igclab started", "version", version.Version, "input", input)

	var st *store.Store
	if cfg.DB.Path != "" {
		st, err = store.Open(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("failed to stat input: %w", err)
	}

	opts := batch.Options{
		AvgWindow: cfg.Analysis.AvgWindow,
		SpeedBins: cfg.Analysis.SpeedBins,
		LDMax:     cfg.Analysis.LDMax,
	}

	if info.IsDir() {
		return runBatch(ctx, input, opts, cfg, st)
	}
	return runSingle(ctx, input, opts, cfg, st)
}

func runSingle(ctx context.Context, path string, opts batch.Options, cfg *config.Config, st *store.Store) error {
	res, err := batch.AnalyzeFile(path, opts)
	if err != nil {
		return err
	}

	slog.Info("flight analyzed",
		"name", res.Name,
		"fixes", len(res.Fixes),
		"thermals", len(res.Thermals),
		"glide_samples", len(res.Polar.Gliding))

	base := strings.TrimSuffix(res.Name, filepath.Ext(res.Name))
	if err := writeFlightOutputs(base, res); err != nil {
		return err
	}

	cells, err := hotspot.Aggregate(res.Thermals, cfg.Hotspot.Resolution)
	if err != nil {
		return err
	}
	if err := export.WriteCSVFile(filepath.Join(*outDir, base+"_hotspots.csv"), func(w io.Writer) error {
		return export.WriteHotspotCSV(w, cells)
	}); err != nil {
		return err
	}

	if st != nil {
		id, err := st.SaveFlight(ctx, res)
		if err != nil {
			return err
		}
		slog.Info("flight stored", "id", id)
	}
	return nil
}

func runBatch(ctx context.Context, dir string, opts batch.Options, cfg *config.Config, st *store.Store) error {
	results, err := batch.AnalyzeDir(ctx, dir, opts, cfg.Batch.Workers)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no IGC files found in %s", dir)
	}

	merged := batch.Reduce(results, opts.SpeedBins)

	slog.Info("batch analyzed",
		"flights", len(results),
		"fixes", len(merged.Fixes),
		"thermals", len(merged.Thermals),
		"glide_samples", len(merged.Gliding))

	if err := export.WriteCSVFile(filepath.Join(*outDir, "merged_fixes.csv"), func(w io.Writer) error {
		return export.WriteFixCSV(w, merged.Fixes)
	}); err != nil {
		return err
	}
	if err := export.WriteCSVFile(filepath.Join(*outDir, "merged_thermals.csv"), func(w io.Writer) error {
		return export.WriteThermalCSV(w, merged.Thermals)
	}); err != nil {
		return err
	}
	if err := export.WriteCSVFile(filepath.Join(*outDir, "merged_bins.csv"), func(w io.Writer) error {
		return export.WriteBinCSV(w, merged.Bins, merged.GlideRatioCounts, merged.ClimbRateCounts)
	}); err != nil {
		return err
	}
	if err := export.WriteThermalGeoJSON(filepath.Join(*outDir, "merged_thermals.geojson"), merged.Thermals); err != nil {
		return err
	}

	cells, err := hotspot.Aggregate(merged.Thermals, cfg.Hotspot.Resolution)
	if err != nil {
		return err
	}
	if err := export.WriteCSVFile(filepath.Join(*outDir, "hotspots.csv"), func(w io.Writer) error {
		return export.WriteHotspotCSV(w, cells)
	}); err != nil {
		return err
	}

	if st != nil {
		for _, res := range results {
			if _, err := st.SaveFlight(ctx, res); err != nil {
				return err
			}
		}
		slog.Info("batch stored", "flights", len(results))
	}
	return nil
}

// writeFlightOutputs writes the per-flight CSV tables and the track
// GeoJSON under the output directory.
func writeFlightOutputs(base string, res *batch.FlightResult) error {
	if err := export.WriteCSVFile(filepath.Join(*outDir, base+"_fixes.csv"), func(w io.Writer) error {
		return export.WriteFixCSV(w, res.Fixes)
	}); err != nil {
		return err
	}
	if err := export.WriteCSVFile(filepath.Join(*outDir, base+"_gliding.csv"), func(w io.Writer) error {
		return export.WriteFixCSV(w, res.Polar.Gliding)
	}); err != nil {
		return err
	}
	if err := export.WriteCSVFile(filepath.Join(*outDir, base+"_thermals.csv"), func(w io.Writer) error {
		return export.WriteThermalCSV(w, res.Thermals)
	}); err != nil {
		return err
	}
	if err := export.WriteCSVFile(filepath.Join(*outDir, base+"_bins.csv"), func(w io.Writer) error {
		return export.WriteBinCSV(w, res.Polar.Bins, res.Polar.GlideRatioCounts, res.Polar.ClimbRateCounts)
	}); err != nil {
		return err
	}
	return export.WriteTrackGeoJSON(filepath.Join(*outDir, base+".geojson"), res)
}
