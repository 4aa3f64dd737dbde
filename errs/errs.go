// Package errs defines the sentinel errors shared by the harmonie
// readers. Callers match them with errors.Is; the producing package
// wraps them with fmt.Errorf("%w: detail", ...) to attach context.
package errs

import "errors"

var (
	// ErrFileNotFound indicates the input path does not exist or is not readable.
	ErrFileNotFound = errors.New("file not found")

	// ErrRead indicates an OS-level I/O failure mid-stream.
	ErrRead = errors.New("read error")

	// ErrInvalidFile indicates magic-byte mismatch or an unsupported edition.
	ErrInvalidFile = errors.New("invalid file")

	// ErrInvalidLength indicates a section length exceeding the remaining file size.
	ErrInvalidLength = errors.New("invalid length")

	// ErrMessageLength indicates a failed length probe at a section boundary.
	ErrMessageLength = errors.New("message length error")

	// ErrParameterNotFound indicates a requested (name, level) pair is not
	// in the parameter catalog.
	ErrParameterNotFound = errors.New("parameter not found")

	// ErrOutOfBounds indicates a longitude/latitude outside the grid extent
	// or a grid index outside the image.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrImageIndex indicates a nowcast timestep outside [1, 25].
	ErrImageIndex = errors.New("image index out of bounds")

	// ErrProjection indicates the coordinate transformation failed.
	ErrProjection = errors.New("projection coordinate error")

	// ErrInvalidFilename indicates a forecast filename not matching the
	// HA43_N20_{yyyymmddhhmm}_{hhhhh}_GB convention.
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrInvalidDirectory indicates a dataset directory that cannot be listed.
	ErrInvalidDirectory = errors.New("invalid directory")

	// ErrTar indicates a failure while unpacking a forecast tar archive.
	ErrTar = errors.New("tar error")
)
