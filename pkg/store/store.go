// Package store persists analysis results to SQLite so batches can be
// inspected and re-aggregated later without re-parsing tracklogs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // register driver

	"igclab/pkg/batch"
)

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping db: %w", err)
	}

	// WAL plus a single connection avoids SQLITE_BUSY during concurrent
	// flight saves.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS flights (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			fix_count INTEGER NOT NULL,
			thermal_count INTEGER NOT NULL,
			glide_sample_count INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS thermals (
			flight_id TEXT NOT NULL REFERENCES flights(id),
			thermal_id INTEGER NOT NULL,
			height_gain REAL,
			turn_count REAL,
			avg_turn_rate REAL,
			turn_direction INTEGER,
			avg_gps_climb_rate REAL,
			avg_baro_climb_rate REAL,
			start_lat REAL,
			start_lon REAL,
			start_time TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS bin_stats (
			flight_id TEXT NOT NULL REFERENCES flights(id),
			bin_index INTEGER NOT NULL,
			label TEXT NOT NULL,
			ground_speed_median REAL,
			glide_ratio_mean REAL,
			glide_ratio_median REAL,
			glide_ratio_std REAL,
			glide_ratio_q1 REAL,
			glide_ratio_q3 REAL,
			glide_ratio_iqr REAL,
			baro_climb_mean REAL,
			baro_climb_median REAL,
			baro_climb_std REAL,
			gps_climb_mean REAL,
			gps_climb_median REAL,
			gps_climb_std REAL,
			glide_ratio_count INTEGER NOT NULL,
			climb_rate_count INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_thermals_flight ON thermals(flight_id);`,
		`CREATE INDEX IF NOT EXISTS idx_bin_stats_flight ON bin_stats(flight_id);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// nullable maps NaN to NULL; SQLite has no NaN and empty-bin statistics
// must survive a round trip.
func nullable(f float64) any {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

// SaveFlight stores one flight's results and returns the generated
// flight id.
func (s *Store) SaveFlight(ctx context.Context, res *batch.FlightResult) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO flights (id, name, fix_count, thermal_count, glide_sample_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, res.Name, len(res.Fixes), len(res.Thermals), len(res.Polar.Gliding),
		time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return "", fmt.Errorf("store: insert flight: %w", err)
	}

	for _, th := range res.Thermals {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO thermals (flight_id, thermal_id, height_gain, turn_count, avg_turn_rate,
			 turn_direction, avg_gps_climb_rate, avg_baro_climb_rate, start_lat, start_lon, start_time)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, th.ID, th.HeightGain, th.TurnCount, th.AvgTurnRate,
			th.TurnDirection, th.AvgGPSClimbRate, th.AvgBaroClimbRate,
			th.StartLat, th.StartLon, th.StartTime)
		if err != nil {
			return "", fmt.Errorf("store: insert thermal %d: %w", th.ID, err)
		}
	}

	for b, bin := range res.Polar.Bins {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bin_stats (flight_id, bin_index, label, ground_speed_median,
			 glide_ratio_mean, glide_ratio_median, glide_ratio_std, glide_ratio_q1, glide_ratio_q3, glide_ratio_iqr,
			 baro_climb_mean, baro_climb_median, baro_climb_std,
			 gps_climb_mean, gps_climb_median, gps_climb_std,
			 glide_ratio_count, climb_rate_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, b, bin.Label, bin.GroundSpeedMedian,
			nullable(bin.GlideRatio.Mean), nullable(bin.GlideRatio.Median), nullable(bin.GlideRatio.StdDev),
			nullable(bin.GlideRatio.Q1), nullable(bin.GlideRatio.Q3), nullable(bin.GlideRatio.IQR),
			nullable(bin.BaroClimbRate.Mean), nullable(bin.BaroClimbRate.Median), nullable(bin.BaroClimbRate.StdDev),
			nullable(bin.GPSClimbRate.Mean), nullable(bin.GPSClimbRate.Median), nullable(bin.GPSClimbRate.StdDev),
			res.Polar.GlideRatioCounts[b], res.Polar.ClimbRateCounts[b])
		if err != nil {
			return "", fmt.Errorf("store: insert bin %d: %w", b, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: commit: %w", err)
	}
	return id, nil
}

// FlightSummary is one row of the flights table.
type FlightSummary struct {
	ID           string
	Name         string
	FixCount     int
	ThermalCount int
}

// Flights lists stored flights, newest first.
func (s *Store) Flights(ctx context.Context) ([]FlightSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, fix_count, thermal_count FROM flights ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("store: query flights: %w", err)
	}
	defer rows.Close()

	var out []FlightSummary
	for rows.Next() {
		var f FlightSummary
		if err := rows.Scan(&f.ID, &f.Name, &f.FixCount, &f.ThermalCount); err != nil {
			return nil, fmt.Errorf("store: scan flight: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ThermalCount returns the number of stored thermals for a flight.
func (s *Store) ThermalCount(ctx context.Context, flightID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM thermals WHERE flight_id = ?`, flightID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count thermals: %w", err)
	}
	return n, nil
}
