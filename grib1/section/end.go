package section

import (
	"fmt"
	"io"

	"github.com/scorix/harmonie/errs"
)

// EndLength is the fixed size of the GRIB1 End Section.
const EndLength = 4

// End is the GRIB1 End Section, the four ASCII octets "7777" closing a
// message.
type End struct {
	Marker [4]byte
}

// IsValid reports whether the end marker is the expected "7777".
func (s *End) IsValid() bool {
	return s.Marker == [4]byte{'7', '7', '7', '7'}
}

// NewEndFromReader reads and decodes an End Section.
func NewEndFromReader(r io.Reader) (*End, error) {
	data := make([]byte, EndLength)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: end section: %v", errs.ErrRead, err)
	}
	return NewEndFromBytes(data)
}

// NewEndFromBytes decodes an End Section from its raw bytes.
func NewEndFromBytes(data []byte) (*End, error) {
	if len(data) < EndLength {
		return nil, fmt.Errorf("%w: end section: data too short", errs.ErrInvalidFile)
	}

	var s End
	copy(s.Marker[:], data[:EndLength])

	if !s.IsValid() {
		return nil, fmt.Errorf("%w: end section: marker %q, want \"7777\"",
			errs.ErrInvalidFile, string(s.Marker[:]))
	}

	return &s, nil
}
