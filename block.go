package ustar

import (
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/meigma/ustar/internal/octal"
	"github.com/meigma/ustar/internal/pathutil"
)

// Wire layout of a USTAR header block.
const (
	nameSize = 100
	linkSize = 100

	offName     = 0
	offMode     = 100
	offUID      = 108
	offGID      = 116
	offSize     = 124
	offMtime    = 136
	offChecksum = 148
	offType     = 156
	offLink     = 157
	offMagic    = 257
	offVersion  = 263
	offUname    = 265
	offGname    = 297
	offDevMajor = 329
	offDevMinor = 337
)

const (
	headerMagic   = "ustar\x00"
	headerVersion = "00"
)

// Wire type flags. Both the ASCII form and the raw numeric form appear in
// the wild; the decoder accepts either.
const (
	flagRegular    = '0'
	flagHardLink   = '1'
	flagSymlink    = '2'
	flagCharDevice = '3'
	flagBlockDevice = '4'
	flagDirectory  = '5'
	flagFIFO       = '6'
	flagContiguous = '7'
)

// File-type bits as stored in the mode field by pre-USTAR archivers.
const (
	ifmt   = 0o170000
	ififo  = 0o010000
	ifchr  = 0o020000
	ifdir  = 0o040000
	ifblk  = 0o060000
	ifreg  = 0o100000
	iflnk  = 0o120000
	ifsock = 0o140000
)

type block [BlockSize]byte

func (b *block) field(off, n int) []byte { return b[off : off+n] }

// isZero reports whether the block is an end-of-archive marker.
func (b *block) isZero() bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// checksum sums all 512 header bytes as unsigned values with the checksum
// field itself treated as ASCII spaces.
func (b *block) checksum() int64 {
	var sum int64
	for i, c := range b {
		if i >= offChecksum && i < offChecksum+8 {
			c = ' '
		}
		sum += int64(c)
	}
	return sum
}

// cstring returns the bytes of field up to the first NUL.
func cstring(field []byte) string {
	for i, c := range field {
		if c == 0 {
			return string(field[:i])
		}
	}
	return string(field)
}

// decodeHeader decodes a non-empty header block into a Header. The second
// return value reports whether a leading run of slashes was stripped from
// the name. Octal field failures surface as ErrInvalidHeader.
//
// The stored checksum is not validated unless verifyChecksum is set; the
// read path is historically permissive toward archives written by
// non-conforming tools.
func decodeHeader(b *block, verifyChecksum bool) (*Header, bool, error) {
	if verifyChecksum {
		stored, err := octal.Parse(b.field(offChecksum, 8))
		if err != nil {
			return nil, false, fmt.Errorf("%w: checksum field: %v", ErrInvalidHeader, err)
		}
		if computed := b.checksum(); stored != computed {
			return nil, false, fmt.Errorf("%w: checksum mismatch (stored %o, computed %o)", ErrInvalidHeader, stored, computed)
		}
	}

	mode, err := parseField(b, offMode, 8, "mode")
	if err != nil {
		return nil, false, err
	}
	uid, err := parseField(b, offUID, 8, "uid")
	if err != nil {
		return nil, false, err
	}
	gid, err := parseField(b, offGID, 8, "gid")
	if err != nil {
		return nil, false, err
	}
	size, err := parseField(b, offSize, 12, "size")
	if err != nil {
		return nil, false, err
	}
	mtime, err := parseField(b, offMtime, 12, "mtime")
	if err != nil {
		return nil, false, err
	}

	name, stripped := pathutil.CleanName(cstring(b.name()))

	typ := classifyType(b[offType], mode)
	if strings.HasSuffix(name, "/") {
		typ = TypeDirectory
	}

	hdr := &Header{
		Name:     name,
		Mode:     fileMode(mode, typ),
		UID:      int(uid),
		GID:      int(gid),
		Size:     size,
		ModTime:  time.Unix(mtime, 0),
		Type:     typ,
		LinkName: cstring(b.field(offLink, linkSize)),
		Uname:    cstring(b.field(offUname, 32)),
		Gname:    cstring(b.field(offGname, 32)),
	}

	// Device numbers are only meaningful (and only reliably encoded) for
	// device entries.
	if typ == TypeCharDevice || typ == TypeBlockDevice {
		if hdr.DevMajor, err = parseField(b, offDevMajor, 8, "devmajor"); err != nil {
			return nil, false, err
		}
		if hdr.DevMinor, err = parseField(b, offDevMinor, 8, "devminor"); err != nil {
			return nil, false, err
		}
	}

	return hdr, stripped, nil
}

func (b *block) name() []byte { return b.field(offName, nameSize) }

func parseField(b *block, off, n int, what string) (int64, error) {
	v, err := octal.Parse(b.field(off, n))
	if err != nil {
		return 0, fmt.Errorf("%w: %s field: %v", ErrInvalidHeader, what, err)
	}
	return v, nil
}

// classifyType maps a wire type flag to a Type. Archives written before
// USTAR standardized the flag carry the file type in the mode field instead,
// so a regular flag with type bits set defers to those bits.
func classifyType(flag byte, mode int64) Type {
	switch flag {
	case flagRegular, 0, flagContiguous, flagContiguous - '0':
		// fall through to the mode-bit check below
	case flagHardLink, flagHardLink - '0':
		return TypeHardLink
	case flagSymlink, flagSymlink - '0':
		return TypeSymlink
	case flagCharDevice, flagCharDevice - '0':
		return TypeCharDevice
	case flagBlockDevice, flagBlockDevice - '0':
		return TypeBlockDevice
	case flagDirectory, flagDirectory - '0':
		return TypeDirectory
	case flagFIFO, flagFIFO - '0':
		return TypeFIFO
	default:
		return TypeUnknown
	}

	switch mode & ifmt {
	case 0, ifreg:
		return TypeRegular
	case ifdir:
		return TypeDirectory
	case ifchr:
		return TypeCharDevice
	case ifblk:
		return TypeBlockDevice
	case ififo:
		return TypeFIFO
	case ifsock:
		return TypeSocket
	case iflnk:
		return TypeSymlink
	default:
		return TypeUnknown
	}
}

// fileMode merges the permission bits from the wire mode with the fs.FileMode
// type bits implied by the classification.
func fileMode(mode int64, typ Type) fs.FileMode {
	m := fs.FileMode(mode & 0o777)
	if mode&0o4000 != 0 {
		m |= fs.ModeSetuid
	}
	if mode&0o2000 != 0 {
		m |= fs.ModeSetgid
	}
	if mode&0o1000 != 0 {
		m |= fs.ModeSticky
	}
	switch typ {
	case TypeDirectory:
		m |= fs.ModeDir
	case TypeSymlink:
		m |= fs.ModeSymlink
	case TypeCharDevice:
		m |= fs.ModeDevice | fs.ModeCharDevice
	case TypeBlockDevice:
		m |= fs.ModeDevice
	case TypeFIFO:
		m |= fs.ModeNamedPipe
	case TypeSocket:
		m |= fs.ModeSocket
	}
	return m
}

// wireFlag returns the USTAR type flag for a Type. Sockets have no flag in
// the format and cannot be encoded.
func wireFlag(typ Type) (byte, error) {
	switch typ {
	case TypeRegular:
		return flagRegular, nil
	case TypeHardLink:
		return flagHardLink, nil
	case TypeSymlink:
		return flagSymlink, nil
	case TypeCharDevice:
		return flagCharDevice, nil
	case TypeBlockDevice:
		return flagBlockDevice, nil
	case TypeDirectory:
		return flagDirectory, nil
	case TypeFIFO:
		return flagFIFO, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
	}
}

// encodeHeader encodes h into b: magic and version, octal numeric fields
// (mode masked to permission bits), and the blanked-field checksum.
func encodeHeader(b *block, h *Header) error {
	*b = block{}

	if len(h.Name) >= nameSize {
		return fmt.Errorf("%w: %q", ErrNameTooLong, h.Name)
	}
	if len(h.LinkName) >= linkSize {
		return fmt.Errorf("%w: link target %q", ErrNameTooLong, h.LinkName)
	}
	if len(h.Uname) >= 32 || len(h.Gname) >= 32 {
		return fmt.Errorf("%w: owner name", ErrNameTooLong)
	}

	flag, err := wireFlag(h.Type)
	if err != nil {
		return err
	}

	copy(b.name(), h.Name)
	copy(b.field(offMagic, 6), headerMagic)
	copy(b.field(offVersion, 2), headerVersion)
	b[offType] = flag
	copy(b.field(offLink, linkSize), h.LinkName)
	copy(b.field(offUname, 32), h.Uname)
	copy(b.field(offGname, 32), h.Gname)

	if err := formatField(b, offMode, 8, int64(h.Mode.Perm()), "mode"); err != nil {
		return err
	}
	if err := formatField(b, offUID, 8, int64(h.UID), "uid"); err != nil {
		return err
	}
	if err := formatField(b, offGID, 8, int64(h.GID), "gid"); err != nil {
		return err
	}
	if err := formatField(b, offSize, 12, h.Size, "size"); err != nil {
		return err
	}
	if err := formatField(b, offMtime, 12, h.ModTime.Unix(), "mtime"); err != nil {
		return err
	}
	if h.Type == TypeCharDevice || h.Type == TypeBlockDevice {
		if err := formatField(b, offDevMajor, 8, h.DevMajor, "devmajor"); err != nil {
			return err
		}
		if err := formatField(b, offDevMinor, 8, h.DevMinor, "devminor"); err != nil {
			return err
		}
	}

	return formatField(b, offChecksum, 8, b.checksum(), "checksum")
}

func formatField(b *block, off, n int, v int64, what string) error {
	if err := octal.Format(b.field(off, n), v); err != nil {
		return fmt.Errorf("%w: %s %d: %v", ErrFieldRange, what, v, err)
	}
	return nil
}
