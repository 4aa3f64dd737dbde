package section

import (
	"fmt"
	"io"

	"github.com/scorix/harmonie/errs"
	"github.com/scorix/harmonie/grib1/bits"
)

// Bitmap is the GRIB1 Bit-map Section. Bit k of the packed vector
// (MSB-first) reports whether grid sample k is present in the BDS.
//
// Format:
// +-------+------------------------------------------------------------+
// | Octet | Content                                                    |
// +-------+------------------------------------------------------------+
// | 1-3   | Length of section                                          |
// | 4     | Number of unused bits at end of section                    |
// | 5-6   | Table reference; 0 when a bit-map follows                  |
// | 7-nn  | Bit-map, one bit per grid point in scan order              |
// +-------+------------------------------------------------------------+
type Bitmap struct {
	Length         uint32
	UnusedBits     uint8
	TableReference uint16
	Data           []byte
}

// NewBitmapFromReader probes the section length and decodes a Bit-map
// Section from a reader positioned at its first octet.
func NewBitmapFromReader(r io.ReadSeeker) (*Bitmap, error) {
	data, err := readSized(r)
	if err != nil {
		return nil, err
	}
	return NewBitmapFromBytes(data)
}

// NewBitmapFromBytes decodes a Bit-map Section from its raw bytes.
func NewBitmapFromBytes(data []byte) (*Bitmap, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("%w: bmp: %d bytes, want at least 6", errs.ErrInvalidFile, len(data))
	}

	return &Bitmap{
		Length:         bits.Uint24(data[0:3]),
		UnusedBits:     data[3],
		TableReference: bits.Uint16(data[4:6]),
		Data:           data[6:],
	}, nil
}

// Present reports whether grid sample k has data in the BDS.
func (s *Bitmap) Present(k int) bool {
	byteIdx := k / 8
	if byteIdx >= len(s.Data) {
		return false
	}
	return s.Data[byteIdx]>>(7-uint(k%8))&1 == 1
}

// Rank counts the set bits in positions [0, k), translating a grid
// index into a BDS sample index for sparse messages. It is a linear
// scan; for the small location counts this reader serves that is
// cheaper than building a rank-select structure per message.
func (s *Bitmap) Rank(k int) int {
	n := 0
	for i := 0; i < k; i++ {
		if s.Present(i) {
			n++
		}
	}
	return n
}
