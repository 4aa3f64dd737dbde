package section

import (
	"fmt"
	"io"
	"time"

	"github.com/scorix/harmonie/errs"
	"github.com/scorix/harmonie/grib1/bits"
)

// PDS flag bits in octet 8 (Code table 1): bit 1 (MSB) marks a GDS,
// bit 2 a BMS.
const (
	flagHasGDS = 1 << 7
	flagHasBMP = 1 << 6
)

// ProductDefinition is the GRIB1 Product Definition Section. Only the
// fields this reader needs are retained.
//
// Format (octets used):
// +-------+------------------------------------------------------------+
// | Octet | Content                                                    |
// +-------+------------------------------------------------------------+
// | 1-3   | Length of section                                          |
// | 4     | GRIB tables version number                                 |
// | 5     | Originating centre (Code table 0)                          |
// | 6     | Generating process identifier                              |
// | 7     | Grid definition number                                     |
// | 8     | Flag: GDS / BMS presence (Code table 1)                    |
// | 9     | Indicator of parameter (Code table 2)                      |
// | 10    | Indicator of type of level (Code table 3)                  |
// | 11-12 | Height, pressure, etc. of level                            |
// | 13-17 | Reference time: year of century, month, day, hour, minute  |
// | 18    | Unit of time range (Code table 4)                          |
// | 21    | Time range indicator (Code table 5)                        |
// +-------+------------------------------------------------------------+
type ProductDefinition struct {
	Length             uint32
	TableVersion       uint8
	OriginatingCenter  uint8
	GeneratingProcess  uint8
	GridIdentification uint8
	Flags              uint8
	ParameterCode      uint8
	LevelType          uint8
	Level              uint16
	ReferenceTime      time.Time
	TimeRangeIndicator uint8
}

// HasGDS reports whether a Grid Definition Section follows the PDS.
func (s *ProductDefinition) HasGDS() bool { return s.Flags&flagHasGDS != 0 }

// HasBMP reports whether a Bit-map Section precedes the BDS.
func (s *ProductDefinition) HasBMP() bool { return s.Flags&flagHasBMP != 0 }

// NewProductDefinitionFromReader probes the section length and decodes
// a Product Definition Section from a reader positioned at its first
// octet.
func NewProductDefinitionFromReader(r io.ReadSeeker) (*ProductDefinition, error) {
	data, err := readSized(r)
	if err != nil {
		return nil, err
	}
	return NewProductDefinitionFromBytes(data)
}

// NewProductDefinitionFromBytes decodes a Product Definition Section
// from its raw bytes.
//
// The reference time century is not stored in the retained octets; the
// year of century is reconstructed as 20YY. Files dated beyond 2099
// will be misdated.
func NewProductDefinitionFromBytes(data []byte) (*ProductDefinition, error) {
	if len(data) < 21 {
		return nil, fmt.Errorf("%w: pds: %d bytes, want at least 21", errs.ErrInvalidFile, len(data))
	}

	s := ProductDefinition{
		Length:             bits.Uint24(data[0:3]),
		TableVersion:       data[3],
		OriginatingCenter:  data[4],
		GeneratingProcess:  data[5],
		GridIdentification: data[6],
		Flags:              data[7],
		ParameterCode:      data[8],
		LevelType:          data[9],
		Level:              bits.Uint16(data[10:12]),
		TimeRangeIndicator: data[20],
	}

	s.ReferenceTime = time.Date(2000+int(data[12]), time.Month(data[13]), int(data[14]),
		int(data[15]), int(data[16]), 0, 0, time.UTC)

	return &s, nil
}
