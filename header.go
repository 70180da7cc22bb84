package ustar

import (
	"io/fs"
	"time"
)

// Type classifies an archive entry.
type Type uint8

const (
	TypeRegular Type = iota
	TypeDirectory
	TypeHardLink
	TypeSymlink
	TypeCharDevice
	TypeBlockDevice
	TypeFIFO
	TypeSocket
	TypeUnknown
)

func (t Type) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeDirectory:
		return "directory"
	case TypeHardLink:
		return "hardlink"
	case TypeSymlink:
		return "symlink"
	case TypeCharDevice:
		return "char-device"
	case TypeBlockDevice:
		return "block-device"
	case TypeFIFO:
		return "fifo"
	case TypeSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// Header describes one archive entry. It is decoded from, or encoded into,
// a single 512-byte header block; no Header outlives the processing of its
// own entry in either pipeline.
type Header struct {
	// Name is the entry path, slash-separated. Directory names carry a
	// trailing slash in wire form. At most 100 bytes.
	Name string

	// Mode holds permission bits plus the fs.FileMode type bits matching
	// Type. Only the permission bits are stored on the wire.
	Mode fs.FileMode

	UID int
	GID int

	// Size is the byte count of the data region that follows the header,
	// before block-alignment padding. Meaningful only for data-bearing
	// types; always zero for directories and links.
	Size int64

	// ModTime is stored on the wire as Unix epoch seconds.
	ModTime time.Time

	Type Type

	// LinkName is the target of a hard link or symlink. At most 100 bytes.
	LinkName string

	// Uname and Gname are carried through the codec but not interpreted.
	Uname string
	Gname string

	// DevMajor and DevMinor are meaningful only for device entries.
	DevMajor int64
	DevMinor int64
}

// isDataBearing reports whether the entry's header is followed by a data
// region. Directories, hard links, and symlinks never carry data; regular
// files always do, and device, fifo, and socket entries do in principle
// (a nonzero size governs).
func (h *Header) isDataBearing() bool {
	switch h.Type {
	case TypeRegular, TypeCharDevice, TypeBlockDevice, TypeFIFO, TypeSocket:
		return true
	default:
		return false
	}
}

// dataSize returns the size of the data region governed by this header.
func (h *Header) dataSize() int64 {
	if !h.isDataBearing() {
		return 0
	}
	return h.Size
}
