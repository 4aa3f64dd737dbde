package nowcast

import "time"

// Image is one radar frame: a 765x700 raster of raw pixel values and
// the frame's valid time.
type Image struct {
	data []uint16 // row-major, rows x cols
	rows int
	cols int

	// Time is the instant the frame is valid for.
	Time time.Time
}

// NewImage builds an Image from a row-major pixel buffer.
func NewImage(data []uint16, rows, cols int, t time.Time) *Image {
	return &Image{data: data, rows: rows, cols: cols, Time: t}
}

// ValueAt returns the raw pixel value at grid position (x, y), with x
// the column and y the row. The second result is false when the
// position lies outside the raster.
func (img *Image) ValueAt(x, y int) (uint16, bool) {
	if x < 0 || x >= img.cols || y < 0 || y >= img.rows {
		return 0, false
	}
	return img.data[y*img.cols+x], true
}

// RateAt returns the precipitation rate in mm/h at grid position (x, y).
func (img *Image) RateAt(x, y int) (float64, bool) {
	v, ok := img.ValueAt(x, y)
	if !ok {
		return 0, false
	}
	return PixelToMMPerHour(v), true
}

// ValueAtLonLat returns the raw pixel value at a WGS84 coordinate.
func (img *Image) ValueAtLonLat(lon, lat float64) (uint16, bool, error) {
	x, y, err := LonLatToGrid(lon, lat)
	if err != nil {
		return 0, false, err
	}
	v, ok := img.ValueAt(x, y)
	return v, ok, nil
}

// RateAtLonLat returns the precipitation rate in mm/h at a WGS84
// coordinate.
func (img *Image) RateAtLonLat(lon, lat float64) (float64, bool, error) {
	v, ok, err := img.ValueAtLonLat(lon, lat)
	if err != nil || !ok {
		return 0, ok, err
	}
	return PixelToMMPerHour(v), true, nil
}
