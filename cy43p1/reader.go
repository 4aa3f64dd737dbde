// Package cy43p1 reads KNMI Harmonie CY43-P1 GRIB edition 1 files.
//
// The file set is a fixed dialect, which the reader exploits: the
// message inventory is known in advance (the 49-entry parameter
// catalog), the PDS is always 28 octets, the GDS is always 760 octets
// and identical across messages, and every message carries 152100
// samples. Indexing therefore touches only the Indicator and PDS of
// each message and records byte offsets in the catalog; decoding seeks
// straight to the Binary Data Section of the requested messages.
package cy43p1

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/scorix/harmonie/errs"
	"github.com/scorix/harmonie/grib1"
	"github.com/scorix/harmonie/grib1/section"
)

// Fixed section lengths of the dialect.
const (
	lengthIndicator = 8
	lengthPDS       = 28
	lengthGDS       = 760
)

// MissingValue is the sentinel emitted for samples whose bitmap bit is
// zero. It is a project convention, not a physical value; consumers
// must treat it as "missing".
const MissingValue float32 = 9999.0

// Param selects one catalog entry by short name (case-insensitive) and
// level.
type Param struct {
	Name  string
	Level uint16
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Lon float64
	Lat float64
}

// Result carries the decoded values of one parameter: one value per
// requested location, or all 152100 samples in scan order when no
// locations were given.
type Result struct {
	Name   string
	Level  uint16
	Values []float32
}

// Response is the outcome of one Get call.
type Response struct {
	Time      time.Time  // reference time shared by all messages in the file
	Locations []Location // echo of the request, nil for all-samples reads
	Results   []Result
}

// Reader reads one CY43-P1 GRIB file. A Reader is safe to share for
// queries, but Get calls are serialized internally: indexing and
// decoding mutate the catalog's byte offsets and the file position.
type Reader struct {
	mu      sync.Mutex
	f       *os.File
	size    int64
	table   *Table
	grid    Grid
	refTime time.Time
}

// Open opens a CY43-P1 GRIB file. The file handle stays open until
// Close; no message is read until the first query.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrRead, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrRead, err)
	}

	return &Reader{
		f:     f,
		size:  st.Size(),
		table: NewTable(),
		grid:  DefaultGrid,
	}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

// AvailableParameters returns a copy of the catalog, including any
// byte offsets recorded by earlier queries.
func (r *Reader) AvailableParameters() []Parameter {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Parameter, 0, len(r.table.entries))
	for _, p := range r.table.entries {
		out = append(out, *p)
	}
	return out
}

// ClosestLonLatIndex returns the flat sample index of the grid point
// nearest to (lon, lat).
func (r *Reader) ClosestLonLatIndex(lon, lat float64) (int, error) {
	return r.grid.ClosestIndex(lon, lat)
}

// Get reads values for the requested parameters at the requested
// locations. A nil parameters slice selects the whole catalog; a nil
// locations slice returns all 152100 samples per parameter in scan
// order. The first call indexes the file; later calls reuse the
// recorded byte offsets.
func (r *Reader) Get(parameters []Param, locations []Location) (*Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	targets, err := r.table.EntriesFor(parameters)
	if err != nil {
		return nil, err
	}

	if err := r.index(targets); err != nil {
		return nil, err
	}

	var indices []int
	if locations != nil {
		indices = make([]int, len(locations))
		for i, loc := range locations {
			idx, err := r.grid.ClosestIndex(loc.Lon, loc.Lat)
			if err != nil {
				return nil, err
			}
			indices[i] = idx
		}
	}

	resp := &Response{
		Time:    r.refTime,
		Results: make([]Result, 0, len(targets)),
	}
	if locations != nil {
		resp.Locations = append([]Location(nil), locations...)
	}

	for _, p := range targets {
		values, err := r.readValues(p, indices, locations != nil)
		if err != nil {
			return nil, fmt.Errorf("parameter %s level %d: %w", p.Name, p.Level, err)
		}
		resp.Results = append(resp.Results, Result{Name: p.Name, Level: p.Level, Values: values})
	}

	return resp, nil
}

// index walks the file once and records the byte offset of every
// target message in the catalog. It returns early when every target
// already carries an offset, and stops walking as soon as the last
// target is located. Messages whose PDS identity is not in the target
// set are skipped.
func (r *Reader) index(targets []*Parameter) error {
	remaining := 0
	want := make(map[ParameterID]bool, len(targets))
	for _, p := range targets {
		if p.ByteIndex < 0 {
			want[p.ID()] = true
			remaining++
		}
	}
	if remaining == 0 {
		return nil
	}

	walker := grib1.NewReaderAt(r.f, r.size)
	return walker.EachMessage(func(_ int, info grib1.MessageInfo) bool {
		if r.refTime.IsZero() {
			r.refTime = info.Product.ReferenceTime
		}

		id := ParameterID{
			Code:      info.Product.ParameterCode,
			LevelType: LevelType(info.Product.LevelType),
			Level:     info.Product.Level,
			TimeRange: TimeRangeIndicator(info.Product.TimeRangeIndicator),
		}
		if want[id] {
			r.table.setByteIndex(id, info.Offset)
			delete(want, id)
			remaining--
		}

		return remaining > 0
	})
}

// readValues decodes the Binary Data Section of one indexed message.
// With selected=false it emits the full sample vector in scan order;
// with selected=true it emits one value per entry of indices.
func (r *Reader) readValues(p *Parameter, indices []int, selected bool) ([]float32, error) {
	if p.ByteIndex < 0 {
		return nil, fmt.Errorf("%w: message not present in file", errs.ErrParameterNotFound)
	}

	// The Indicator, PDS and GDS lengths are dialect constants, so the
	// decoder seeks straight past them.
	offset := p.ByteIndex + lengthIndicator + lengthPDS + lengthGDS
	sr := io.NewSectionReader(r.f, offset, r.size-offset)

	var bitmap *section.Bitmap
	if p.HasBitmap {
		var err error
		bitmap, err = section.NewBitmapFromReader(sr)
		if err != nil {
			return nil, err
		}
	}

	bds, err := section.NewBinaryDataFromReader(sr)
	if err != nil {
		return nil, err
	}

	if selected {
		return r.readSelected(bds, bitmap, indices)
	}
	return r.readAll(bds, bitmap)
}

// readAll emits all samples sequentially. Bitmap-backed messages store
// only the present samples, so the bit stream is never seeked; missing
// positions emit the sentinel instead of consuming bits.
func (r *Reader) readAll(bds *section.BinaryData, bitmap *section.Bitmap) ([]float32, error) {
	count := r.grid.ValueCount()
	nbits := int(bds.BitsPerValue)
	factor := bds.ScaleFactor()

	out := make([]float32, 0, count)
	br := bds.Reader()

	for i := 0; i < count; i++ {
		if bitmap != nil && !bitmap.Present(i) {
			out = append(out, MissingValue)
			continue
		}
		if nbits == 0 {
			// zero-width packing means the whole field equals R
			out = append(out, bds.ReferenceValue)
			continue
		}
		x, err := br.ReadBits(nbits)
		if err != nil {
			return nil, fmt.Errorf("%w: sample %d: %v", errs.ErrRead, i, err)
		}
		out = append(out, bds.ReferenceValue+float32(x)*factor)
	}

	return out, nil
}

// readSelected emits one sample per requested grid index, seeking the
// bit stream per location. For bitmap-backed messages the grid index
// is first translated to its BDS rank.
func (r *Reader) readSelected(bds *section.BinaryData, bitmap *section.Bitmap, indices []int) ([]float32, error) {
	nbits := int(bds.BitsPerValue)
	factor := bds.ScaleFactor()

	out := make([]float32, 0, len(indices))
	br := bds.Reader()

	for _, g := range indices {
		sample := g
		if bitmap != nil {
			if !bitmap.Present(g) {
				out = append(out, MissingValue)
				continue
			}
			sample = bitmap.Rank(g)
		}
		if nbits == 0 {
			out = append(out, bds.ReferenceValue)
			continue
		}
		if err := br.Seek(sample * nbits); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrRead, err)
		}
		x, err := br.ReadBits(nbits)
		if err != nil {
			return nil, fmt.Errorf("%w: grid index %d: %v", errs.ErrRead, g, err)
		}
		out = append(out, bds.ReferenceValue+float32(x)*factor)
	}

	return out, nil
}
