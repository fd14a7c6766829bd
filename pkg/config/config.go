// Package config holds the application configuration: a YAML file with
// defaults written on first run, validated before any parsing starts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"igclab/pkg/flight"
	"igclab/pkg/polar"
)

// Config is the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Batch    BatchConfig    `yaml:"batch"`
	Hotspot  HotspotConfig  `yaml:"hotspot"`
	DB       DBConfig       `yaml:"db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // DEBUG, INFO, WARN, ERROR
	Path  string `yaml:"path"`  // log file; empty disables the file sink
}

// AnalysisConfig holds the pipeline tunables.
type AnalysisConfig struct {
	// AvgWindow is the rolling window length in samples (1 Hz fixes).
	AvgWindow int `yaml:"avg_window"`
	// SpeedBins are the ground-speed bucket edges in m/s, strictly
	// increasing. Empty means the default 7.25–16.25 m/s in 0.5 steps.
	SpeedBins []float64 `yaml:"speed_bins"`
	// LDMax is the glide-ratio ceiling for glide samples.
	LDMax float64 `yaml:"ld_max"`
}

// BatchConfig holds folder-mode settings.
type BatchConfig struct {
	Workers int `yaml:"workers"` // parallel flights; 0 means NumCPU
}

// HotspotConfig holds thermal hotspot aggregation settings.
type HotspotConfig struct {
	Resolution int `yaml:"resolution"` // H3 resolution, 0–15
}

// DBConfig holds result persistence settings.
type DBConfig struct {
	Path string `yaml:"path"` // SQLite file; empty disables persistence
}

// ValidationError reports a rejected configuration value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Field, e.Reason)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "INFO",
			Path:  "logs/igclab.log",
		},
		Analysis: AnalysisConfig{
			AvgWindow: flight.DefaultAvgWindow,
			SpeedBins: polar.DefaultSpeedBins(),
			LDMax:     polar.DefaultLDMax,
		},
		Batch: BatchConfig{
			Workers: runtime.NumCPU(),
		},
		Hotspot: HotspotConfig{
			Resolution: 8,
		},
		DB: DBConfig{
			Path: "",
		},
	}
}

// Load reads the configuration from path. A missing file writes the
// defaults back to disk and returns them. The result is always validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create dir %s: %w", dir, err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	header := []byte("# igclab configuration\n# speed_bins are bucket edges in m/s and must be strictly increasing.\n\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the pipeline cannot run with. It must
// pass before any flight is parsed.
func (c *Config) Validate() error {
	if c.Analysis.AvgWindow < 1 {
		return &ValidationError{Field: "analysis.avg_window", Reason: fmt.Sprintf("must be positive, got %d", c.Analysis.AvgWindow)}
	}
	if c.Analysis.LDMax <= 0 {
		return &ValidationError{Field: "analysis.ld_max", Reason: fmt.Sprintf("must be positive, got %v", c.Analysis.LDMax)}
	}
	if len(c.Analysis.SpeedBins) < 2 {
		return &ValidationError{Field: "analysis.speed_bins", Reason: "need at least two bucket edges"}
	}
	for i := 1; i < len(c.Analysis.SpeedBins); i++ {
		if c.Analysis.SpeedBins[i] <= c.Analysis.SpeedBins[i-1] {
			return &ValidationError{Field: "analysis.speed_bins", Reason: fmt.Sprintf("edges must be strictly increasing, got %v after %v", c.Analysis.SpeedBins[i], c.Analysis.SpeedBins[i-1])}
		}
	}
	if c.Batch.Workers < 0 {
		return &ValidationError{Field: "batch.workers", Reason: fmt.Sprintf("must not be negative, got %d", c.Batch.Workers)}
	}
	if c.Hotspot.Resolution < 0 || c.Hotspot.Resolution > 15 {
		return &ValidationError{Field: "hotspot.resolution", Reason: fmt.Sprintf("H3 resolution must be within 0..15, got %d", c.Hotspot.Resolution)}
	}
	return nil
}
