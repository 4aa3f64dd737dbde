package section

import (
	"fmt"
	"io"

	"github.com/scorix/harmonie/errs"
	"github.com/scorix/harmonie/grib1/bits"
)

// IndicatorLength is the fixed size of the GRIB1 Indicator Section.
const IndicatorLength = 8

// Indicator is the GRIB1 Indicator Section (Section 0). It identifies
// the start of a message and carries the total message length.
//
// Format:
// +-------+------------------------------------------------------------+
// | Octet | Content                                                    |
// +-------+------------------------------------------------------------+
// | 1-4   | 'GRIB' (International Alphabet No. 5)                      |
// | 5-7   | Total length of the GRIB message including Section 0       |
// | 8     | GRIB edition number (1)                                    |
// +-------+------------------------------------------------------------+
type Indicator struct {
	MessageLength uint32
	Edition       uint8
}

// NewIndicatorFromReader reads and decodes an Indicator Section from a
// reader positioned at the first octet of a message.
func NewIndicatorFromReader(r io.Reader) (*Indicator, error) {
	data := make([]byte, IndicatorLength)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: indicator: %v", errs.ErrRead, err)
	}
	return NewIndicatorFromBytes(data)
}

// NewIndicatorFromBytes decodes an Indicator Section from its raw bytes.
func NewIndicatorFromBytes(data []byte) (*Indicator, error) {
	if len(data) < IndicatorLength {
		return nil, fmt.Errorf("%w: indicator: data too short", errs.ErrInvalidFile)
	}
	if string(data[:4]) != "GRIB" {
		return nil, fmt.Errorf("%w: indicator: missing GRIB identifier", errs.ErrInvalidFile)
	}

	s := Indicator{
		MessageLength: bits.Uint24(data[4:7]),
		Edition:       data[7],
	}

	if s.Edition != 1 {
		return nil, fmt.Errorf("%w: indicator: edition %d, want 1", errs.ErrInvalidFile, s.Edition)
	}

	return &s, nil
}

// Validate reports an error when the message length exceeds the size
// of the containing file.
func (s *Indicator) Validate(fileSize int64) error {
	if int64(s.MessageLength) > fileSize {
		return fmt.Errorf("%w: indicator: message length %d exceeds file size %d",
			errs.ErrInvalidLength, s.MessageLength, fileSize)
	}
	return nil
}
