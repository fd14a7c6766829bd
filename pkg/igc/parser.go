// Package igc extracts position fixes from IGC flight-recorder files.
//
// Only B-records (position fixes) are consumed. The layout follows the
// historical IGC B-record format:
//
//	B HHMMSS DDMMmmm N DDDMMmmm E A PPPPP GGGGG ...
//
// Everything past the two altitude fields (fix validity flag, extension
// data) is ignored.
package igc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// RawFix is one position record as read from the file. Times are kept as
// the recorder's HHMMSS string; the 1 Hz sample-rate assumption makes
// wall-clock arithmetic unnecessary downstream.
type RawFix struct {
	Time    string
	Lat     float64
	Lon     float64
	GPSAlt  float64
	BaroAlt float64
}

// FormatError reports a malformed B-record. A flight with a format error
// is aborted wholesale: downstream adjacency logic assumes a contiguous,
// gap-free fix sequence, so skipping bad records is not an option.
type FormatError struct {
	Line   int // 1-based line number in the input
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("igc: malformed B-record at line %d: %s", e.Line, e.Reason)
}

// B-record byte offsets (0-indexed, half-open).
const (
	timeStart = 1
	timeEnd   = 7
	latStart  = 7
	latEnd    = 14
	latHemi   = 14
	lonStart  = 15
	lonEnd    = 23
	lonHemi   = 23
	gpsStart  = 25
	gpsEnd    = 30
	baroStart = 30
	baroEnd   = 35
)

// Parse reads IGC text from r and returns the ordered fix sequence.
// Zero B-records yield an empty (degenerate, not erroneous) flight.
func Parse(r io.Reader) ([]RawFix, error) {
	var fixes []RawFix

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !strings.HasPrefix(line, "B") {
			continue
		}

		fix, err := parseBRecord(line, lineNo)
		if err != nil {
			return nil, err
		}
		fixes = append(fixes, fix)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("igc: read failed: %w", err)
	}

	return fixes, nil
}

// ParseFile opens path and parses it as an IGC file.
func ParseFile(path string) ([]RawFix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("igc: open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

func parseBRecord(line string, lineNo int) (RawFix, error) {
	if len(line) < baroEnd {
		return RawFix{}, &FormatError{Line: lineNo, Reason: fmt.Sprintf("record too short (%d chars, need %d)", len(line), baroEnd)}
	}

	lat, err := parseCoordinate(line[latStart:latEnd], line[latHemi:latHemi+1])
	if err != nil {
		return RawFix{}, &FormatError{Line: lineNo, Reason: err.Error()}
	}
	lon, err := parseCoordinate(line[lonStart:lonEnd], line[lonHemi:lonHemi+1])
	if err != nil {
		return RawFix{}, &FormatError{Line: lineNo, Reason: err.Error()}
	}

	gpsAlt, err := parseAltitude(line[gpsStart:gpsEnd])
	if err != nil {
		return RawFix{}, &FormatError{Line: lineNo, Reason: fmt.Sprintf("gps altitude: %v", err)}
	}
	baroAlt, err := parseAltitude(line[baroStart:baroEnd])
	if err != nil {
		return RawFix{}, &FormatError{Line: lineNo, Reason: fmt.Sprintf("baro altitude: %v", err)}
	}

	return RawFix{
		Time:    line[timeStart:timeEnd],
		Lat:     lat,
		Lon:     lon,
		GPSAlt:  gpsAlt,
		BaroAlt: baroAlt,
	}, nil
}

// parseCoordinate converts an IGC DDMMmmm (latitude) or DDDMMmmm
// (longitude) field plus a hemisphere flag into decimal degrees. South and
// West flip the sign.
func parseCoordinate(field, hemi string) (float64, error) {
	var degDigits int
	switch len(field) {
	case 7: // latitude: DDMMmmm
		degDigits = 2
	case 8: // longitude: DDDMMmmm
		degDigits = 3
	default:
		return 0, fmt.Errorf("coordinate field %q: length must be 7 or 8", field)
	}

	deg, err := strconv.Atoi(field[:degDigits])
	if err != nil {
		return 0, fmt.Errorf("coordinate field %q: degrees: %v", field, err)
	}
	min, err := strconv.Atoi(field[degDigits : degDigits+2])
	if err != nil {
		return 0, fmt.Errorf("coordinate field %q: minutes: %v", field, err)
	}
	thousandths, err := strconv.Atoi(field[degDigits+2:])
	if err != nil {
		return 0, fmt.Errorf("coordinate field %q: decimal minutes: %v", field, err)
	}

	dec := float64(deg) + (float64(min)+float64(thousandths)/1000.0)/60.0
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	return dec, nil
}

func parseAltitude(field string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(field), 64)
}
