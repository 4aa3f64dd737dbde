// Package section decodes the sections of a GRIB edition 1 message.
//
// A GRIB1 message is a fixed sequence of sections:
//
//	Indicator Section (IS)           8 octets, starts with "GRIB"
//	Product Definition Section (PDS) variable, length in octets 1-3
//	Grid Definition Section (GDS)    optional, flagged in the PDS
//	Bit-map Section (BMS)            optional, flagged in the PDS
//	Binary Data Section (BDS)        variable
//	End Section                      4 octets, "7777"
//
// Every section except the Indicator and End carries its own length as
// a 24-bit big-endian integer in its first three octets. Each decoder
// is a free function returning a concrete struct; there is no section
// interface hierarchy.
package section

import (
	"fmt"
	"io"

	"github.com/scorix/harmonie/errs"
	"github.com/scorix/harmonie/grib1/bits"
)

// PeekLength reads the 24-bit section length at the reader's current
// position and rewinds the three probed bytes. It is the uniform
// length probe for the PDS, GDS, BMS and BDS.
func PeekLength(r io.ReadSeeker) (int, error) {
	var buf [3]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: length probe: %v", errs.ErrMessageLength, err)
	}
	if _, err := r.Seek(-3, io.SeekCurrent); err != nil {
		return 0, fmt.Errorf("%w: rewind after length probe: %v", errs.ErrMessageLength, err)
	}
	return int(bits.Uint24(buf[:])), nil
}

// readSized probes the section length, then reads the whole section
// (length bytes, including the three probed ones) into memory.
func readSized(r io.ReadSeeker) ([]byte, error) {
	n, err := PeekLength(r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: section body: %v", errs.ErrRead, err)
	}
	return data, nil
}
