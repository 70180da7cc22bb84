// Package ustar reads and writes USTAR-format tape archives: a sequence of
// fixed 512-byte blocks encoding metadata headers interleaved with file
// content, terminated by an all-zero block.
//
// The package provides three layers:
//
//   - Reader and Writer operate on the raw block stream, one entry at a time,
//     in the style of archive/tar.
//   - Create, Extract, and List are complete pipelines: recursive archiving
//     of filesystem trees, filtered extraction through a pluggable filesystem
//     collaborator, and archive-order listings.
//   - Inspect summarizes an archive in a single sequential pass.
//
// Only the plain USTAR layout is supported. GNU and PAX extensions, long
// names, sparse files, and compression are out of scope.
package ustar

import "errors"

// BlockSize is the fixed archive block size; headers occupy exactly one
// block and data regions are zero-padded to a multiple of it.
const BlockSize = 512

// Sentinel errors.
var (
	// ErrInvalidHeader is returned when a header block fails field decoding.
	ErrInvalidHeader = errors.New("ustar: invalid header")

	// ErrNameTooLong is returned when an entry or link name exceeds the
	// fixed 100-byte header field.
	ErrNameTooLong = errors.New("ustar: name too long")

	// ErrFieldRange is returned when a numeric value cannot be represented
	// in its octal header field.
	ErrFieldRange = errors.New("ustar: value too large for header field")

	// ErrWriteTooLong is returned when more data is written for an entry
	// than its header declared.
	ErrWriteTooLong = errors.New("ustar: write exceeds declared entry size")

	// ErrIncompleteEntry is returned when an entry's declared size was not
	// fully supplied before the next header or close.
	ErrIncompleteEntry = errors.New("ustar: declared entry size not fully written")

	// ErrWriteAfterClose is returned when writing to a closed Writer.
	ErrWriteAfterClose = errors.New("ustar: write after close")

	// ErrUnsupportedType is returned for entry types the format or the
	// current platform cannot represent.
	ErrUnsupportedType = errors.New("ustar: unsupported entry type")

	// ErrPartial is returned when a run completed but one or more entries
	// failed; per-entry diagnostics go to the configured logger.
	ErrPartial = errors.New("ustar: completed with errors")
)
