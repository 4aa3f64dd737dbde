package cy43p1

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/samber/lo"
	"github.com/scorix/harmonie/errs"
)

// filenamePattern matches the KNMI delivery convention
// HA43_N20_{yyyymmddhhmm}_{hhhhh}_GB, where the five-digit field is
// the forecast hour times 100.
var filenamePattern = regexp.MustCompile(`^HA43_N20_(\d{12})_(\d{5})_GB$`)

// ParseFilename extracts the model run time and forecast hour from a
// CY43-P1 filename.
func ParseFilename(name string) (run time.Time, hour int, err error) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, 0, fmt.Errorf("%w: %s", errs.ErrInvalidFilename, name)
	}

	run, err = time.Parse("200601021504", m[1])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %s: %v", errs.ErrInvalidFilename, name, err)
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %s: %v", errs.ErrInvalidFilename, name, err)
	}

	return run, n / 100, nil
}

type forecastFile struct {
	path string
	hour int
}

// Dataset aggregates the hourly CY43-P1 files of one model run. It
// owns one Reader per file and, for tar input, a scratch directory
// whose lifetime equals the dataset's.
type Dataset struct {
	files   []forecastFile
	readers []*Reader
	scratch string
}

// ForecastValue is one point of a parameter time series.
type ForecastValue struct {
	Time  time.Time
	Value float32
}

// ParameterForecast is the time series of one parameter at one location.
type ParameterForecast struct {
	Name   string
	Level  uint16
	Values []ForecastValue
}

// LocationForecast groups the parameter series of one location.
type LocationForecast struct {
	Location   Location
	Parameters []ParameterForecast
}

// Forecast is the aggregated result of GetForecast, grouped
// location -> parameter -> time-ordered values.
type Forecast struct {
	Locations []LocationForecast
}

// AvailableParameters returns the static CY43-P1 catalog, without any
// per-file byte offsets.
func AvailableParameters() []Parameter {
	t := NewTable()
	out := make([]Parameter, 0, len(t.entries))
	for _, p := range t.entries {
		out = append(out, *p)
	}
	return out
}

// FromFiles builds a dataset from explicit file paths. Every base name
// must follow the delivery convention. A non-negative maxHour drops
// files beyond that forecast hour.
func FromFiles(paths []string, maxHour int) (*Dataset, error) {
	files := make([]forecastFile, 0, len(paths))
	for _, path := range paths {
		_, hour, err := ParseFilename(filepath.Base(path))
		if err != nil {
			return nil, err
		}
		files = append(files, forecastFile{path: path, hour: hour})
	}

	return newDataset(files, maxHour, "")
}

// FromDirectory builds a dataset from every conventionally named file
// directly inside dir. Files with other names are skipped.
func FromDirectory(dir string, maxHour int) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidDirectory, dir, err)
	}

	var files []forecastFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		_, hour, err := ParseFilename(e.Name())
		if err != nil {
			glog.V(2).Infof("cy43p1: skipping %s: not a forecast file", e.Name())
			continue
		}
		files = append(files, forecastFile{path: filepath.Join(dir, e.Name()), hour: hour})
	}

	return newDataset(files, maxHour, "")
}

// FromTar builds a dataset from an uncompressed POSIX tar archive of
// forecast files at any path depth. The archive is unpacked into a
// scratch directory that is removed when the dataset is closed.
func FromTar(path string, maxHour int) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrRead, err)
	}
	defer f.Close()

	scratch, err := os.MkdirTemp("", "cy43p1-*")
	if err != nil {
		return nil, fmt.Errorf("%w: scratch directory: %v", errs.ErrTar, err)
	}

	var files []forecastFile
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			os.RemoveAll(scratch)
			return nil, fmt.Errorf("%w: %v", errs.ErrTar, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.Base(hdr.Name)
		_, hour, perr := ParseFilename(name)
		if perr != nil {
			glog.V(2).Infof("cy43p1: skipping tar entry %s: not a forecast file", hdr.Name)
			continue
		}

		dst := filepath.Join(scratch, name)
		out, err := os.Create(dst)
		if err != nil {
			os.RemoveAll(scratch)
			return nil, fmt.Errorf("%w: %v", errs.ErrTar, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			os.RemoveAll(scratch)
			return nil, fmt.Errorf("%w: extracting %s: %v", errs.ErrTar, hdr.Name, err)
		}
		out.Close()

		files = append(files, forecastFile{path: dst, hour: hour})
	}

	d, err := newDataset(files, maxHour, scratch)
	if err != nil {
		os.RemoveAll(scratch)
		return nil, err
	}
	return d, nil
}

func newDataset(files []forecastFile, maxHour int, scratch string) (*Dataset, error) {
	if maxHour >= 0 {
		files = lo.Filter(files, func(f forecastFile, _ int) bool {
			return f.hour <= maxHour
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].hour < files[j].hour })
	glog.V(1).Infof("cy43p1: dataset of %d files", len(files))

	d := &Dataset{files: files, scratch: scratch}
	for _, f := range files {
		r, err := Open(f.path)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.readers = append(d.readers, r)
	}

	return d, nil
}

// Paths returns the file paths of the dataset in forecast-hour order.
func (d *Dataset) Paths() []string {
	return lo.Map(d.files, func(f forecastFile, _ int) string { return f.path })
}

// Close releases every reader and removes the tar scratch directory,
// if any.
func (d *Dataset) Close() error {
	var firstErr error
	for _, r := range d.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.scratch != "" {
		if err := os.RemoveAll(d.scratch); err != nil && firstErr == nil {
			firstErr = err
		}
		d.scratch = ""
	}
	return firstErr
}

// Get runs the same query against every file of the dataset and
// returns the per-file responses in forecast-hour order. It
// short-circuits on the first failing file.
func (d *Dataset) Get(parameters []Param, locations []Location) ([]*Response, error) {
	out := make([]*Response, 0, len(d.readers))
	for i, r := range d.readers {
		resp, err := r.Get(parameters, locations)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.files[i].path, err)
		}
		out = append(out, resp)
	}
	return out, nil
}

// GetForecast reads the requested parameters at the requested
// locations from every file and combines them into per-location,
// per-parameter time series. The valid time of each value is the
// file's reference time plus its forecast hour; each series is sorted
// by valid time ascending.
func (d *Dataset) GetForecast(locations []Location, parameters []Param) (*Forecast, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: forecast requires at least one location", errs.ErrOutOfBounds)
	}

	forecast := &Forecast{Locations: make([]LocationForecast, len(locations))}
	for i, loc := range locations {
		forecast.Locations[i] = LocationForecast{Location: loc}
	}

	for i, r := range d.readers {
		resp, err := r.Get(parameters, locations)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.files[i].path, err)
		}

		valid := resp.Time.Add(time.Duration(d.files[i].hour) * time.Hour)

		for li := range locations {
			lf := &forecast.Locations[li]
			if lf.Parameters == nil {
				lf.Parameters = lo.Map(resp.Results, func(res Result, _ int) ParameterForecast {
					return ParameterForecast{Name: res.Name, Level: res.Level}
				})
			}
			for ri, res := range resp.Results {
				lf.Parameters[ri].Values = append(lf.Parameters[ri].Values, ForecastValue{
					Time:  valid,
					Value: res.Values[li],
				})
			}
		}
	}

	for li := range forecast.Locations {
		for pi := range forecast.Locations[li].Parameters {
			vs := forecast.Locations[li].Parameters[pi].Values
			sort.Slice(vs, func(a, b int) bool { return vs[a].Time.Before(vs[b].Time) })
		}
	}

	return forecast, nil
}
