package igc

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"AXCT7F2 flight recorder",
		"HFDTE270724",
		"B1101354712345N00812345EA0123401150",
		"B1101364712401N00812400EA0123501152",
		"LCOMMENT not a fix",
	}, "\n")

	fixes, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, fixes, 2)

	assert.Equal(t, "110135", fixes[0].Time)
	assert.InDelta(t, 47.20575, fixes[0].Lat, 1e-9) // 47 + 12.345/60
	assert.InDelta(t, 8.20575, fixes[0].Lon, 1e-9)
	assert.Equal(t, 1234.0, fixes[0].GPSAlt)
	assert.Equal(t, 1150.0, fixes[0].BaroAlt)

	assert.Equal(t, "110136", fixes[1].Time)
	assert.Equal(t, 1235.0, fixes[1].GPSAlt)
}

func TestParseHemispheres(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantLat float64
		wantLon float64
	}{
		{
			name:    "NorthEast",
			line:    "B1101354712345N00812345EA0123401150",
			wantLat: 47.20575,
			wantLon: 8.20575,
		},
		{
			name:    "SouthWest",
			line:    "B1101354712345S00812345WA0123401150",
			wantLat: -47.20575,
			wantLon: -8.20575,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixes, err := Parse(strings.NewReader(tt.line))
			require.NoError(t, err)
			require.Len(t, fixes, 1)
			assert.InDelta(t, tt.wantLat, fixes[0].Lat, 1e-9)
			assert.InDelta(t, tt.wantLon, fixes[0].Lon, 1e-9)
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	fixes, err := Parse(strings.NewReader("HFDTE270724\nLNO FIXES HERE\n"))
	require.NoError(t, err)
	assert.Empty(t, fixes)
}

func TestParseFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "TooShort", line: "B110135471234"},
		{name: "GarbageCoordinate", line: "B110135XXYYZZQN00812345EA0123401150"},
		{name: "GarbageAltitude", line: "B1101354712345N00812345EAxxxxx01150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.line))
			require.Error(t, err)

			var ferr *FormatError
			assert.True(t, errors.As(err, &ferr), "expected *FormatError, got %T", err)
			assert.Equal(t, 1, ferr.Line)
		})
	}
}

func TestParseAbortsFlightOnBadRecord(t *testing.T) {
	input := strings.Join([]string{
		"B1101354712345N00812345EA0123401150",
		"B110136BADRECORD",
		"B1101374712401N00812400EA0123501152",
	}, "\n")

	fixes, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Nil(t, fixes, "a bad record must abort the whole flight, not skip")
}

func TestParseCoordinateLength(t *testing.T) {
	_, err := parseCoordinate("471234", "N") // 6 chars: neither lat nor lon
	require.Error(t, err)

	_, err = parseCoordinate("4712345", "N")
	require.NoError(t, err)

	_, err = parseCoordinate("00812345", "E")
	require.NoError(t, err)
}
