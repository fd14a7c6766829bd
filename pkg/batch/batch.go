// Package batch runs the full per-flight analysis pipeline (parse →
// kinematics → classification → thermal segmentation → speed-bin
// aggregation) and merges the outputs of many flights.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"igclab/pkg/flight"
	"igclab/pkg/igc"
	"igclab/pkg/polar"
	"igclab/pkg/thermal"
)

// Options carries the tunables of the analysis pipeline.
type Options struct {
	AvgWindow int       // rolling window length in samples
	SpeedBins []float64 // strictly increasing bucket edges, m/s
	LDMax     float64   // glide-ratio inclusion ceiling
}

// withDefaults fills zero-valued options.
func (o Options) withDefaults() Options {
	if o.AvgWindow == 0 {
		o.AvgWindow = flight.DefaultAvgWindow
	}
	if len(o.SpeedBins) == 0 {
		o.SpeedBins = polar.DefaultSpeedBins()
	}
	if o.LDMax == 0 {
		o.LDMax = polar.DefaultLDMax
	}
	return o
}

// FlightResult is everything the pipeline produces for one flight.
type FlightResult struct {
	Name     string
	Fixes    []flight.Fix
	Thermals []thermal.Thermal
	Polar    polar.Result
}

// AnalyzeFlight runs the pipeline over one IGC stream. A format error
// aborts the flight; an empty flight (no B-records) is degenerate, not an
// error, and yields empty tables with the fixed bin shape.
func AnalyzeFlight(name string, r io.Reader, opts Options) (*FlightResult, error) {
	opts = opts.withDefaults()

	raw, err := igc.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("batch: flight %s: %w", name, err)
	}

	classifier, err := flight.NewClassifier(opts.AvgWindow)
	if err != nil {
		return nil, err
	}

	fixes := flight.Derive(raw)
	classifier.Classify(fixes)

	res := &FlightResult{
		Name:     name,
		Fixes:    fixes,
		Thermals: thermal.Segment(fixes),
		Polar:    polar.Aggregate(fixes, opts.SpeedBins, opts.LDMax),
	}

	slog.Debug("flight analyzed",
		"name", name,
		"fixes", len(res.Fixes),
		"thermals", len(res.Thermals),
		"glide_samples", len(res.Polar.Gliding))

	return res, nil
}

// AnalyzeFile runs the pipeline over one IGC file.
func AnalyzeFile(path string, opts Options) (*FlightResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("batch: open %s: %w", path, err)
	}
	defer f.Close()

	return AnalyzeFlight(filepath.Base(path), f, opts)
}

// ListFlights returns the IGC files directly under dir, sorted by name.
func ListFlights(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: read dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".igc") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// AnalyzeDir analyzes every IGC file in dir on up to workers goroutines.
// Flights are fully independent, so only the result slot assignment is
// shared; results come back in file-name order regardless of scheduling.
// The first flight error aborts the batch.
func AnalyzeDir(ctx context.Context, dir string, opts Options, workers int) ([]*FlightResult, error) {
	paths, err := ListFlights(dir)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	var (
		wg      sync.WaitGroup
		sem     = make(chan struct{}, workers)
		results = make([]*FlightResult, len(paths))
		errs    = make([]error, len(paths))
	)

	for i, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = AnalyzeFile(path, opts)
		}(i, path)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
