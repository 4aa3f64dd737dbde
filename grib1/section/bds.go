package section

import (
	"fmt"
	"io"
	"math"

	"github.com/scorix/harmonie/errs"
	"github.com/scorix/harmonie/grib1/bits"
)

// bdsHeaderLength is the number of octets preceding the packed bitstream.
const bdsHeaderLength = 11

// BinaryData is the GRIB1 Binary Data Section: the packed sample
// payload with the scaling parameters needed to decode it.
//
// Format:
// +-------+------------------------------------------------------------+
// | Octet | Content                                                    |
// +-------+------------------------------------------------------------+
// | 1-3   | Length of section                                          |
// | 4     | Flag (Code table 11) and unused-bit count                  |
// | 5-6   | Binary scale factor E (sign-magnitude)                     |
// | 7-10  | Reference value R (IBM 32-bit float)                       |
// | 11    | Number of bits per packed value N                          |
// | 12-nn | Packed values, MSB-first                                   |
// +-------+------------------------------------------------------------+
//
// Each decoded sample is R + X * 2^E where X is the unsigned N-bit
// packed integer. Trailing padding bits after the last sample are not
// inspected.
type BinaryData struct {
	Length         uint32
	Flags          uint8
	BinaryScale    int16
	ReferenceValue float32
	BitsPerValue   uint8
	Payload        []byte
}

// NewBinaryDataFromReader probes the section length and decodes a
// Binary Data Section from a reader positioned at its first octet.
func NewBinaryDataFromReader(r io.ReadSeeker) (*BinaryData, error) {
	data, err := readSized(r)
	if err != nil {
		return nil, err
	}
	return NewBinaryDataFromBytes(data)
}

// NewBinaryDataFromBytes decodes a Binary Data Section from its raw bytes.
func NewBinaryDataFromBytes(data []byte) (*BinaryData, error) {
	if len(data) < bdsHeaderLength {
		return nil, fmt.Errorf("%w: bds: %d bytes, want at least %d",
			errs.ErrInvalidFile, len(data), bdsHeaderLength)
	}

	return &BinaryData{
		Length:         bits.Uint24(data[0:3]),
		Flags:          data[3],
		BinaryScale:    bits.Int16(data[4:6]),
		ReferenceValue: bits.IBMFloat32(data[6:10]),
		BitsPerValue:   data[10],
		Payload:        data[bdsHeaderLength:],
	}, nil
}

// ScaleFactor returns 2^E as a binary float.
func (s *BinaryData) ScaleFactor() float32 {
	return float32(math.Ldexp(1, int(s.BinaryScale)))
}

// Reader returns a bit-stream reader over the packed payload.
func (s *BinaryData) Reader() *bits.Reader {
	return bits.NewReader(s.Payload)
}
