package cy43p1_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/scorix/harmonie/cy43p1"
	"github.com/stretchr/testify/require"
)

// The tests build synthetic CY43-P1 files: real GRIB1 framing (28-byte
// PDS, 760-byte GDS, optional bitmap, 8-bit simple packing) with
// deterministic sample values.

const (
	gridValues = 152100
	testRef    = float32(250.0) // IBM-encodable exactly: 0x42FA0000
)

// sampleAt is the deterministic packed value of grid sample i in
// message number msg.
func sampleAt(msg, i int) byte {
	return byte((i + 37*msg) % 256)
}

// valueAt is the decoded value the reader must produce for grid sample
// i of message msg (binary scale 0, reference 250).
func valueAt(msg, i int) float32 {
	return testRef + float32(sampleAt(msg, i))
}

func put24(b *bytes.Buffer, v int) {
	b.Write([]byte{byte(v >> 16), byte(v >> 8), byte(v)})
}

// buildMessage encodes one complete GRIB1 message for the given
// catalog identity. missing reports grid samples omitted via the
// bitmap; it is only consulted when hasBitmap is true.
func buildMessage(p cy43p1.Parameter, msg int, missing func(int) bool) []byte {
	hasBitmap := p.HasBitmap

	var payload bytes.Buffer
	for i := 0; i < gridValues; i++ {
		if hasBitmap && missing(i) {
			continue
		}
		payload.WriteByte(sampleAt(msg, i))
	}

	var bmp bytes.Buffer
	if hasBitmap {
		bitmapBytes := (gridValues + 7) / 8
		put24(&bmp, 6+bitmapBytes)
		bmp.WriteByte(byte(bitmapBytes*8 - gridValues)) // unused bits
		bmp.Write([]byte{0x00, 0x00})                   // table reference: bit-map follows
		var cur byte
		for i := 0; i < bitmapBytes*8; i++ {
			cur <<= 1
			if i < gridValues && !missing(i) {
				cur |= 1
			}
			if i%8 == 7 {
				bmp.WriteByte(cur)
				cur = 0
			}
		}
	}

	var bds bytes.Buffer
	put24(&bds, 11+payload.Len())
	bds.WriteByte(0x00)                               // flags
	bds.Write([]byte{0x00, 0x00})                     // binary scale 0
	bds.Write([]byte{0x42, 0xfa, 0x00, 0x00})         // reference value: IBM 250.0
	bds.WriteByte(8)                                  // bits per value
	bds.Write(payload.Bytes())

	var gds bytes.Buffer
	put24(&gds, 760)
	gds.WriteByte(0)    // NV
	gds.WriteByte(33)   // PV location
	gds.WriteByte(0)    // representation type
	gds.Write([]byte{0x01, 0x86, 0x01, 0x86}) // Ni, Nj: 390
	put24(&gds, 49000)  // La1 millidegrees
	put24(&gds, 0)      // Lo1
	gds.WriteByte(0x80) // resolution flags
	put24(&gds, 56002)  // La2
	put24(&gds, 11281)  // Lo2
	gds.Write([]byte{0x00, 0x12, 0x00, 0x1d}) // Di, Dj
	gds.WriteByte(64)   // scanning mode
	for gds.Len() < 760 {
		gds.WriteByte(0)
	}

	var pds bytes.Buffer
	put24(&pds, 28)
	pds.WriteByte(0xfd) // tables version
	pds.WriteByte(0x63) // originating centre
	pds.WriteByte(0x01) // generating process
	pds.WriteByte(0xff) // grid identification
	flags := byte(0x80)
	if hasBitmap {
		flags |= 0x40
	}
	pds.WriteByte(flags)
	pds.WriteByte(p.Code)
	pds.WriteByte(byte(p.LevelType))
	pds.Write([]byte{byte(p.Level >> 8), byte(p.Level)})
	pds.Write([]byte{24, 12, 22, 18, 0}) // reference time 2024-12-22T18:00
	pds.WriteByte(1)                     // unit of time range: hour
	pds.Write([]byte{0, 0})              // P1, P2
	pds.WriteByte(byte(p.TimeRange))
	for pds.Len() < 28 {
		pds.WriteByte(0)
	}

	total := 8 + pds.Len() + gds.Len() + bmp.Len() + bds.Len() + 4

	var out bytes.Buffer
	out.WriteString("GRIB")
	put24(&out, total)
	out.WriteByte(1) // edition
	out.Write(pds.Bytes())
	out.Write(gds.Bytes())
	out.Write(bmp.Bytes())
	out.Write(bds.Bytes())
	out.WriteString("7777")

	return out.Bytes()
}

// catalogEntry finds a catalog parameter by name and level.
func catalogEntry(t *testing.T, name string, level uint16) cy43p1.Parameter {
	t.Helper()
	for _, p := range cy43p1.AvailableParameters() {
		if p.Name == name && p.Level == level {
			return p
		}
	}
	t.Fatalf("catalog entry %s@%d not found", name, level)
	return cy43p1.Parameter{}
}

// missingCorner marks exactly one grid sample (the north-west corner
// of the fixtures) as absent.
func missingCorner(i int) bool { return i == 151710 }

// writeTestFile builds a file holding the given messages and returns
// its path.
func writeTestFile(t *testing.T, dir, name string, messages ...[]byte) string {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range messages {
		buf.Write(m)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// writeTwoParamFile writes a file with the dense tmp@0 message
// (message number 0) and the bitmap-backed isba@802 message (message
// number 1, one sample missing).
func writeTwoParamFile(t *testing.T, dir, name string) string {
	t.Helper()
	tmp := buildMessage(catalogEntry(t, "tmp", 0), 0, nil)
	isba := buildMessage(catalogEntry(t, "isba", 802), 1, missingCorner)
	return writeTestFile(t, dir, name, tmp, isba)
}
