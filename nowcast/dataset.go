package nowcast

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/scorix/harmonie/errs"
	"gonum.org/v1/hdf5"
)

// ImageCount is the number of frames in a radar forecast container:
// 25 frames at 5-minute spacing cover the 2-hour horizon.
const ImageCount = 25

// Dataset is an open radar forecast container. It keeps the HDF5 file
// handle open; frames are read on demand.
type Dataset struct {
	path string
	file *hdf5.File
}

// PrecipitationValue is the rate at one forecast timestep.
type PrecipitationValue struct {
	Time  time.Time
	Value float64 // mm/h
}

// PrecipitationForecast is the 2-hour point forecast: 25 timesteps of
// precipitation rate.
type PrecipitationForecast struct {
	Time   time.Time // valid time of the first frame
	Values []PrecipitationValue
}

// Open opens a radar forecast HDF5 container.
func Open(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrRead, err)
	}

	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrRead, err)
	}

	return &Dataset{path: path, file: f}, nil
}

// Close releases the HDF5 file handle.
func (d *Dataset) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// ReadImage reads frame i, with i in [1, 25]: the raster of group
// image{i} plus its valid time.
func (d *Dataset) ReadImage(i int) (*Image, error) {
	if i < 1 || i > ImageCount {
		return nil, fmt.Errorf("%w: image index should be between 1 and %d: %d",
			errs.ErrImageIndex, ImageCount, i)
	}

	group, err := d.file.OpenGroup(fmt.Sprintf("image%d", i))
	if err != nil {
		return nil, fmt.Errorf("%w: image group %d: %v", errs.ErrRead, i, err)
	}
	defer group.Close()

	valid, err := d.readImageTime(group)
	if err != nil {
		return nil, err
	}

	data, rows, cols, err := d.readImageData(group)
	if err != nil {
		return nil, err
	}

	return NewImage(data, rows, cols, valid), nil
}

// readImageTime reads and parses the image_datetime_valid attribute.
func (d *Dataset) readImageTime(group *hdf5.Group) (time.Time, error) {
	attr, err := group.OpenAttribute("image_datetime_valid")
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: datetime attribute: %v", errs.ErrRead, err)
	}
	defer attr.Close()

	var raw string
	if err := attr.Read(&raw, hdf5.T_GO_STRING); err != nil {
		return time.Time{}, fmt.Errorf("%w: datetime attribute: %v", errs.ErrRead, err)
	}

	return ParseImageTime(raw)
}

// readImageData reads the image_data dataset: a 2-D u16 raster of
// shape (765, 700).
func (d *Dataset) readImageData(group *hdf5.Group) ([]uint16, int, int, error) {
	ds, err := group.OpenDataset("image_data")
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: image data: %v", errs.ErrRead, err)
	}
	defer ds.Close()

	space := ds.Space()
	defer space.Close()

	dims, _, err := space.SimpleExtentDims()
	if err != nil || len(dims) != 2 {
		return nil, 0, 0, fmt.Errorf("%w: image data dimensions: %v", errs.ErrRead, err)
	}

	rows, cols := int(dims[0]), int(dims[1])
	data := make([]uint16, rows*cols)
	if err := ds.Read(&data); err != nil {
		return nil, 0, 0, fmt.Errorf("%w: image data: %v", errs.ErrRead, err)
	}

	return data, rows, cols, nil
}

// GetForecast sweeps all 25 frames and composes the precipitation
// rate at (lon, lat) into a point forecast.
func (d *Dataset) GetForecast(lon, lat float64) (*PrecipitationForecast, error) {
	forecast := &PrecipitationForecast{
		Values: make([]PrecipitationValue, 0, ImageCount),
	}

	for i := 1; i <= ImageCount; i++ {
		img, err := d.ReadImage(i)
		if err != nil {
			return nil, err
		}

		if i == 1 {
			forecast.Time = img.Time
		}

		rate, ok, err := img.RateAtLonLat(lon, lat)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: coordinates are outside the image", errs.ErrOutOfBounds)
		}

		forecast.Values = append(forecast.Values, PrecipitationValue{Time: img.Time, Value: rate})
	}

	return forecast, nil
}
