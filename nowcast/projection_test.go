package nowcast_test

import (
	"testing"

	"github.com/scorix/harmonie/errs"
	"github.com/scorix/harmonie/nowcast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Known corner coordinates of the radar composite.
var (
	bottomLeft  = [2]float64{0.0, 49.362064361572266}
	topLeft     = [2]float64{0.0, 55.973602294921875}
	topRight    = [2]float64{10.856452941894531, 55.388973236083984}
	bottomRight = [2]float64{9.009300231933594, 48.895301818847656}
)

func TestGridToLonLat_Corners(t *testing.T) {
	const margin = 0.0005

	lon, lat, err := nowcast.GridToLonLat(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, topLeft[0], lon, margin)
	assert.InDelta(t, topLeft[1], lat, margin)

	lon, lat, err = nowcast.GridToLonLat(0, nowcast.GridRows)
	require.NoError(t, err)
	assert.InDelta(t, bottomLeft[0], lon, margin)
	assert.InDelta(t, bottomLeft[1], lat, margin)

	lon, lat, err = nowcast.GridToLonLat(nowcast.GridCols, 0)
	require.NoError(t, err)
	assert.InDelta(t, topRight[0], lon, margin)
	assert.InDelta(t, topRight[1], lat, margin)

	lon, lat, err = nowcast.GridToLonLat(nowcast.GridCols, nowcast.GridRows)
	require.NoError(t, err)
	assert.InDelta(t, bottomRight[0], lon, margin)
	assert.InDelta(t, bottomRight[1], lat, margin)
}

func TestLonLatToGrid_Corners(t *testing.T) {
	cases := []struct {
		lonlat   [2]float64
		col, row int
	}{
		{bottomLeft, 0, nowcast.GridRows},
		{topLeft, 0, 0},
		{topRight, nowcast.GridCols, 0},
		{bottomRight, nowcast.GridCols, nowcast.GridRows},
	}
	for _, c := range cases {
		col, row, err := nowcast.LonLatToGrid(c.lonlat[0], c.lonlat[1])
		require.NoError(t, err)
		assert.Equal(t, c.col, col)
		assert.Equal(t, c.row, row)
	}
}

func TestLonLatToGrid_RoundTrip(t *testing.T) {
	for _, cell := range [][2]int{{20, 430}, {111, 527}, {350, 380}, {1, 1}} {
		lon, lat, err := nowcast.GridToLonLat(cell[0], cell[1])
		require.NoError(t, err)

		col, row, err := nowcast.LonLatToGrid(lon, lat)
		require.NoError(t, err)
		assert.Equal(t, cell[0], col)
		assert.Equal(t, cell[1], row)
	}
}

func TestLonLatToGrid_OutOfBounds(t *testing.T) {
	cases := [][2]float64{
		{-1.0, 49.3620},
		{0.0, 48.362064},
		{0.0, 56.973602},
		{11.856452941, 55.388973236},
	}
	for _, c := range cases {
		_, _, err := nowcast.LonLatToGrid(c[0], c[1])
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrOutOfBounds)
	}
}

func TestLonLatToGrid_CoordinateError(t *testing.T) {
	_, _, err := nowcast.LonLatToGrid(-10000000.01, 5000000000.0)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrProjection)
}

func TestGridToLonLat_OutOfBounds(t *testing.T) {
	_, _, err := nowcast.GridToLonLat(-1, 0)
	assert.ErrorIs(t, err, errs.ErrOutOfBounds)
	_, _, err = nowcast.GridToLonLat(0, nowcast.GridRows+1)
	assert.ErrorIs(t, err, errs.ErrOutOfBounds)
	_, _, err = nowcast.GridToLonLat(nowcast.GridCols+1, 0)
	assert.ErrorIs(t, err, errs.ErrOutOfBounds)
}
