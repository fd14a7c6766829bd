package hotspot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igclab/pkg/thermal"
)

func TestAggregateGroupsNearbyThermals(t *testing.T) {
	// Two thermals within meters of each other, one far away.
	thermals := []thermal.Thermal{
		{ID: 0, StartLat: 46.5000, StartLon: 8.1000, HeightGain: 100, AvgBaroClimbRate: 1.0},
		{ID: 1, StartLat: 46.5001, StartLon: 8.1001, HeightGain: 200, AvgBaroClimbRate: 2.0},
		{ID: 2, StartLat: 47.2000, StartLon: 9.3000, HeightGain: 50, AvgBaroClimbRate: 0.5},
	}

	cells, err := Aggregate(thermals, DefaultResolution)
	require.NoError(t, err)
	require.Len(t, cells, 2)

	// Sorted by count descending: the shared cell first.
	assert.Equal(t, 2, cells[0].Count)
	assert.Equal(t, 150.0, cells[0].MeanHeightGain)
	assert.Equal(t, 1.5, cells[0].MeanClimbRate)
	assert.Equal(t, 1, cells[1].Count)
	assert.NotEmpty(t, cells[0].Index)

	// Cell centers land near the thermals they aggregate.
	assert.InDelta(t, 46.5, cells[0].Lat, 0.05)
	assert.InDelta(t, 8.1, cells[0].Lon, 0.05)
}

func TestAggregateEmpty(t *testing.T) {
	cells, err := Aggregate(nil, DefaultResolution)
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestAggregateDeterministicOrder(t *testing.T) {
	thermals := []thermal.Thermal{
		{ID: 0, StartLat: 46.5, StartLon: 8.1},
		{ID: 1, StartLat: 47.2, StartLon: 9.3},
		{ID: 2, StartLat: 45.9, StartLon: 7.0},
	}

	first, err := Aggregate(thermals, DefaultResolution)
	require.NoError(t, err)
	second, err := Aggregate(thermals, DefaultResolution)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
