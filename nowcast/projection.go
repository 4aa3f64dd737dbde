// Package nowcast reads the KNMI 2-hour precipitation radar forecast:
// an HDF5 container of 25 images on a 765x700 polar-stereographic
// grid, 5 minutes apart.
package nowcast

import (
	"fmt"
	"math"

	"github.com/scorix/harmonie/errs"
)

// Grid geometry of the radar composite. The projection is a north
// polar stereographic with a true-scale latitude of 60 degrees on the
// ellipsoid a=6378.14 km, b=6356.75 km; one pixel is one kilometre.
const (
	// GridRowOffset shifts projected northings into row numbers.
	GridRowOffset = 3649.98193359375

	// GridRows and GridCols are the raster extent.
	GridRows = 765
	GridCols = 700

	semiMajorKM = 6378.14
	semiMinorKM = 6356.75
	latTrueDeg  = 60.0
)

var (
	eccentricity = math.Sqrt(1 - (semiMinorKM*semiMinorKM)/(semiMajorKM*semiMajorKM))

	// akm1 is the projection constant a * m(lat_ts) / t(lat_ts); with
	// it the forward transform is just rho = akm1 * t(lat).
	akm1 = semiMajorKM * msfn(latTrueDeg*math.Pi/180) / tsfn(latTrueDeg*math.Pi/180)
)

// tsfn is the isometric-latitude auxiliary function of the polar
// stereographic projection.
func tsfn(phi float64) float64 {
	sinphi := math.Sin(phi)
	return math.Tan(0.5*(math.Pi/2-phi)) /
		math.Pow((1-eccentricity*sinphi)/(1+eccentricity*sinphi), 0.5*eccentricity)
}

// msfn is the meridional scale auxiliary function.
func msfn(phi float64) float64 {
	sinphi := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-eccentricity*eccentricity*sinphi*sinphi)
}

// forward maps WGS84 (lon, lat) in degrees to projected (x, y) in km.
func forward(lon, lat float64) (x, y float64, err error) {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.Abs(lat) > 90 {
		return 0, 0, fmt.Errorf("%w: coordinate transformation failed", errs.ErrProjection)
	}

	lam := lon * math.Pi / 180
	phi := lat * math.Pi / 180

	rho := akm1 * tsfn(phi)
	x = rho * math.Sin(lam)
	y = -rho * math.Cos(lam)
	return x, y, nil
}

// inverse maps projected (x, y) in km back to WGS84 (lon, lat) in
// degrees. The latitude is recovered by fixed-point iteration on the
// conformal latitude.
func inverse(x, y float64) (lon, lat float64, err error) {
	rho := math.Hypot(x, y)
	if rho == 0 {
		return 0, 90, nil
	}

	ts := rho / akm1
	phi := math.Pi/2 - 2*math.Atan(ts)
	for i := 0; i < 15; i++ {
		sinphi := eccentricity * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(ts*math.Pow((1-sinphi)/(1+sinphi), 0.5*eccentricity))
		if math.Abs(next-phi) < 1e-12 {
			phi = next
			break
		}
		phi = next
	}
	if math.IsNaN(phi) {
		return 0, 0, fmt.Errorf("%w: coordinate transformation failed", errs.ErrProjection)
	}

	lam := math.Atan2(x, -y)
	return lam * 180 / math.Pi, phi * 180 / math.Pi, nil
}

// LonLatToGrid converts a WGS84 coordinate to the (col, row) cell of
// the radar grid, rounding to the nearest cell.
func LonLatToGrid(lon, lat float64) (col, row int, err error) {
	x, y, err := forward(lon, lat)
	if err != nil {
		return 0, 0, err
	}

	c := math.Round(x)
	r := math.Round(-GridRowOffset - y)

	if c < 0 || c > GridCols || r < 0 || r > GridRows {
		return 0, 0, fmt.Errorf("%w: coordinates are outside the grid", errs.ErrOutOfBounds)
	}

	return int(c), int(r), nil
}

// GridToLonLat converts a (col, row) cell back to a WGS84 coordinate.
// The result carries the projection's rounding offset of up to half a
// cell.
func GridToLonLat(col, row int) (lon, lat float64, err error) {
	if col < 0 || col > GridCols || row < 0 || row > GridRows {
		return 0, 0, fmt.Errorf("%w: grid coordinates are outside the grid", errs.ErrOutOfBounds)
	}

	y := -GridRowOffset - float64(row)
	return inverse(float64(col), y)
}
