package cy43p1

import (
	"fmt"
	"math"

	"github.com/scorix/harmonie/errs"
)

// Grid holds the fixed geometry of the CY43-P1 output grid. Every
// message in the file set shares it, so the reader keeps one
// precomputed instance instead of decoding the GDS per message.
type Grid struct {
	LatitudeSouth    float64
	LongitudeWest    float64
	LatitudeNorth    float64
	LongitudeEast    float64
	LatitudePoints   int
	LongitudePoints  int
	LatitudeSpacing  float64
	LongitudeSpacing float64
	ScanningMode     uint8
}

// DefaultGrid is the KNMI Harmonie CY43-P1 grid: 390x390 points over
// the Netherlands region, scanning mode 64.
var DefaultGrid = Grid{
	LatitudeSouth:    49.000004,
	LongitudeWest:    0.0,
	LatitudeNorth:    56.002003,
	LongitudeEast:    11.281,
	LatitudePoints:   390,
	LongitudePoints:  390,
	LatitudeSpacing:  0.017999997,
	LongitudeSpacing: 0.029000001,
	ScanningMode:     64,
}

// ValueCount returns the number of samples per message.
func (g Grid) ValueCount() int {
	return g.LatitudePoints * g.LongitudePoints
}

// ClosestIndex returns the flat sample index of the grid point nearest
// to (lon, lat). Coordinates outside the grid extent fail rather than
// clamp.
func (g Grid) ClosestIndex(lon, lat float64) (int, error) {
	if lon < g.LongitudeWest || lon > g.LongitudeEast {
		return 0, fmt.Errorf("%w: Longitude out of bounds", errs.ErrOutOfBounds)
	}
	if lat < g.LatitudeSouth || lat > g.LatitudeNorth {
		return 0, fmt.Errorf("%w: Latitude out of bounds", errs.ErrOutOfBounds)
	}

	lonIdx := int(math.Round((lon - g.LongitudeWest) / g.LongitudeSpacing))
	latIdx := int(math.Round((lat - g.LatitudeSouth) / g.LatitudeSpacing))

	if lonIdx >= g.LongitudePoints {
		lonIdx = g.LongitudePoints - 1
	}
	if latIdx >= g.LatitudePoints {
		latIdx = g.LatitudePoints - 1
	}

	return latIdx*g.LongitudePoints + lonIdx, nil
}

// LonLat returns the coordinates of the grid point at a flat sample
// index, the inverse of ClosestIndex.
func (g Grid) LonLat(index int) (lon, lat float64, err error) {
	if index < 0 || index >= g.ValueCount() {
		return 0, 0, fmt.Errorf("%w: grid index %d outside [0, %d)", errs.ErrOutOfBounds, index, g.ValueCount())
	}

	lonIdx := index % g.LongitudePoints
	latIdx := index / g.LongitudePoints
	// the rounded spacing constants can overshoot the last grid point
	// (389 * 0.029000001 = 11.281000389); keep the result inside the
	// grid extent
	lon = math.Min(g.LongitudeWest+float64(lonIdx)*g.LongitudeSpacing, g.LongitudeEast)
	lat = math.Min(g.LatitudeSouth+float64(latIdx)*g.LatitudeSpacing, g.LatitudeNorth)
	return lon, lat, nil
}
