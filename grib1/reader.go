// Package grib1 walks GRIB edition 1 files: it enumerates message
// offsets for index building and assembles full messages for the
// general decode path. The dialect-specific fast paths live in the
// cy43p1 package.
package grib1

import (
	"fmt"
	"io"

	"github.com/scorix/harmonie/errs"
	"github.com/scorix/harmonie/grib1/section"
)

// MessageInfo describes the location and identity of one message in a
// file. Only the Indicator and Product Definition sections are decoded
// while enumerating; the data sections are left untouched.
type MessageInfo struct {
	Index   int    // message index in the file (0-based)
	Offset  int64  // byte offset of the Indicator Section
	Length  uint32 // total message length from the Indicator Section
	Product *section.ProductDefinition
}

// Message is a fully assembled GRIB1 message.
type Message struct {
	Indicator *section.Indicator
	Product   *section.ProductDefinition
	Grid      *section.GridDefinition // nil when the PDS flags no GDS
	Bitmap    *section.Bitmap         // nil when the PDS flags no BMS
	Data      *section.BinaryData
	End       *section.End
}

// ReaderAt reads GRIB1 messages from an io.ReaderAt with a known size.
type ReaderAt struct {
	r    io.ReaderAt
	size int64
}

// NewReaderAt returns a ReaderAt over r, whose total size is size bytes.
func NewReaderAt(r io.ReaderAt, size int64) *ReaderAt {
	return &ReaderAt{r: r, size: size}
}

// EachMessage walks the file in message order, decoding only the
// Indicator and Product Definition of each message. The callback
// returns true to continue; returning false stops the walk.
func (r *ReaderAt) EachMessage(fn func(int, MessageInfo) bool) error {
	offset := int64(0)
	index := 0

	for offset < r.size {
		sr := io.NewSectionReader(r.r, offset, r.size-offset)

		ind, err := section.NewIndicatorFromReader(sr)
		if err != nil {
			return fmt.Errorf("message %d at offset %d: %w", index, offset, err)
		}
		if int64(ind.MessageLength) > r.size-offset {
			return fmt.Errorf("%w: message %d at offset %d: length %d exceeds remaining %d",
				errs.ErrInvalidLength, index, offset, ind.MessageLength, r.size-offset)
		}

		pds, err := section.NewProductDefinitionFromReader(sr)
		if err != nil {
			return fmt.Errorf("message %d at offset %d: %w", index, offset, err)
		}

		if !fn(index, MessageInfo{Index: index, Offset: offset, Length: ind.MessageLength, Product: pds}) {
			return nil
		}

		offset += int64(ind.MessageLength)
		index++
	}

	return nil
}

// ReadMessageAt assembles the complete message starting at offset,
// decoding every section it carries and verifying the end marker.
func (r *ReaderAt) ReadMessageAt(offset int64) (*Message, error) {
	if offset < 0 || offset >= r.size {
		return nil, fmt.Errorf("%w: message offset %d outside file of %d bytes",
			errs.ErrInvalidLength, offset, r.size)
	}

	sr := io.NewSectionReader(r.r, offset, r.size-offset)

	var m Message
	var err error

	if m.Indicator, err = section.NewIndicatorFromReader(sr); err != nil {
		return nil, err
	}
	if err = m.Indicator.Validate(r.size - offset); err != nil {
		return nil, err
	}
	if m.Product, err = section.NewProductDefinitionFromReader(sr); err != nil {
		return nil, err
	}
	if m.Product.HasGDS() {
		if m.Grid, err = section.NewGridDefinitionFromReader(sr); err != nil {
			return nil, err
		}
	}
	if m.Product.HasBMP() {
		if m.Bitmap, err = section.NewBitmapFromReader(sr); err != nil {
			return nil, err
		}
	}
	if m.Data, err = section.NewBinaryDataFromReader(sr); err != nil {
		return nil, err
	}
	if m.End, err = section.NewEndFromReader(sr); err != nil {
		return nil, err
	}

	return &m, nil
}
