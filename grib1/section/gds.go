package section

import (
	"fmt"
	"io"

	"github.com/scorix/harmonie/errs"
	"github.com/scorix/harmonie/grib1/bits"
)

// GridDefinition is the GRIB1 Grid Definition Section for a
// latitude/longitude grid (data representation type 0).
//
// Format (octets used):
// +-------+------------------------------------------------------------+
// | Octet | Content                                                    |
// +-------+------------------------------------------------------------+
// | 1-3   | Length of section                                          |
// | 4     | NV, number of vertical coordinate parameters               |
// | 5     | PV/PL location, or 255 when absent                         |
// | 6     | Data representation type (Code table 6)                    |
// | 7-8   | Ni, points along a parallel                                |
// | 9-10  | Nj, points along a meridian                                |
// | 11-13 | La1, latitude of first grid point (millidegrees)           |
// | 14-16 | Lo1, longitude of first grid point (millidegrees)          |
// | 18-20 | La2, latitude of last grid point (millidegrees)            |
// | 21-23 | Lo2, longitude of last grid point (millidegrees)           |
// | 28    | Scanning mode (Flag table 8)                               |
// +-------+------------------------------------------------------------+
type GridDefinition struct {
	Length                 uint32
	PVLocation             uint8
	DataRepresentationType uint8
	LatitudeSouth          float64
	LongitudeWest          float64
	LatitudeNorth          float64
	LongitudeEast          float64
	LatitudePoints         int
	LongitudePoints        int
	LatitudeSpacing        float64
	LongitudeSpacing       float64
	ScanningMode           uint8
}

// ValueCount returns the number of grid samples described by the section.
func (s *GridDefinition) ValueCount() int {
	return s.LatitudePoints * s.LongitudePoints
}

// NewGridDefinitionFromReader probes the section length and decodes a
// Grid Definition Section from a reader positioned at its first octet.
func NewGridDefinitionFromReader(r io.ReadSeeker) (*GridDefinition, error) {
	data, err := readSized(r)
	if err != nil {
		return nil, err
	}
	return NewGridDefinitionFromBytes(data)
}

// NewGridDefinitionFromBytes decodes a Grid Definition Section from
// its raw bytes. Latitudes and longitudes are converted from
// millidegrees to degrees; the spacing is derived from the corner
// coordinates rather than octets 24-27 so that grids without explicit
// direction increments still resolve.
func NewGridDefinitionFromBytes(data []byte) (*GridDefinition, error) {
	if len(data) < 28 {
		return nil, fmt.Errorf("%w: gds: %d bytes, want at least 28", errs.ErrInvalidFile, len(data))
	}

	s := GridDefinition{
		Length:                 bits.Uint24(data[0:3]),
		PVLocation:             data[4],
		DataRepresentationType: data[5],
		LongitudePoints:        int(bits.Uint16(data[6:8])),
		LatitudePoints:         int(bits.Uint16(data[8:10])),
		LatitudeSouth:          float64(bits.Uint24(data[10:13])) * 0.001,
		LongitudeWest:          float64(bits.Uint24(data[13:16])) * 0.001,
		LatitudeNorth:          float64(bits.Uint24(data[17:20])) * 0.001,
		LongitudeEast:          float64(bits.Uint24(data[20:23])) * 0.001,
		ScanningMode:           data[27],
	}

	if s.LatitudePoints > 1 {
		s.LatitudeSpacing = (s.LatitudeNorth - s.LatitudeSouth) / float64(s.LatitudePoints-1)
	}
	if s.LongitudePoints > 1 {
		s.LongitudeSpacing = (s.LongitudeEast - s.LongitudeWest) / float64(s.LongitudePoints-1)
	}

	return &s, nil
}
