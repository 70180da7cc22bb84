package ustar

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ustar/internal/octal"
)

func TestEncodeDecodeHeader(t *testing.T) {
	hdr := &Header{
		Name:    "path/to/hello.txt",
		Mode:    0o644,
		UID:     1000,
		GID:     100,
		Size:    4,
		ModTime: time.Unix(1234567890, 0),
		Type:    TypeRegular,
		Uname:   "alice",
		Gname:   "users",
	}

	var b block
	require.NoError(t, encodeHeader(&b, hdr))

	assert.Equal(t, headerMagic, string(b.field(offMagic, 6)))
	assert.Equal(t, headerVersion, string(b.field(offVersion, 2)))

	// Decode with checksum validation on: the encoder must satisfy its own
	// verifier.
	got, stripped, err := decodeHeader(&b, true)
	require.NoError(t, err)
	assert.False(t, stripped)
	assert.Equal(t, hdr.Name, got.Name)
	assert.Equal(t, fs.FileMode(0o644), got.Mode)
	assert.Equal(t, hdr.UID, got.UID)
	assert.Equal(t, hdr.GID, got.GID)
	assert.Equal(t, hdr.Size, got.Size)
	assert.Equal(t, hdr.ModTime.Unix(), got.ModTime.Unix())
	assert.Equal(t, TypeRegular, got.Type)
	assert.Equal(t, "alice", got.Uname)
	assert.Equal(t, "users", got.Gname)
}

func TestChecksumInvariant(t *testing.T) {
	var b block
	require.NoError(t, encodeHeader(&b, &Header{
		Name:    "file",
		Mode:    0o600,
		Size:    123,
		ModTime: time.Unix(1700000000, 0),
		Type:    TypeRegular,
	}))

	stored, err := octal.Parse(b.field(offChecksum, 8))
	require.NoError(t, err)
	assert.Equal(t, b.checksum(), stored)
}

func TestDecodeInvalidField(t *testing.T) {
	var b block
	require.NoError(t, encodeHeader(&b, &Header{Name: "x", Type: TypeRegular, ModTime: time.Unix(0, 0)}))

	copy(b.field(offSize, 12), "not octal!!!")
	_, _, err := decodeHeader(&b, false)
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestDecodeChecksumValidation(t *testing.T) {
	var b block
	require.NoError(t, encodeHeader(&b, &Header{Name: "x", Type: TypeRegular, ModTime: time.Unix(0, 0)}))

	// Corrupt a byte the field parsers never look at; only the checksum
	// notices.
	b[offUname] = 'z'

	_, _, err := decodeHeader(&b, false)
	assert.NoError(t, err)

	_, _, err = decodeHeader(&b, true)
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestDecodeTrailingSlashForcesDirectory(t *testing.T) {
	var b block
	require.NoError(t, encodeHeader(&b, &Header{Name: "sub/", Type: TypeRegular, ModTime: time.Unix(0, 0)}))

	got, _, err := decodeHeader(&b, false)
	require.NoError(t, err)
	assert.Equal(t, TypeDirectory, got.Type)
	assert.True(t, got.Mode.IsDir())
}

func TestDecodeStripsAbsolutePath(t *testing.T) {
	var b block
	require.NoError(t, encodeHeader(&b, &Header{Name: "/etc/passwd", Type: TypeRegular, ModTime: time.Unix(0, 0)}))

	got, stripped, err := decodeHeader(&b, false)
	require.NoError(t, err)
	assert.True(t, stripped)
	assert.Equal(t, "etc/passwd", got.Name)
}

func TestDecodeNumericTypeFlag(t *testing.T) {
	var b block
	require.NoError(t, encodeHeader(&b, &Header{Name: "x", LinkName: "y", Type: TypeHardLink, ModTime: time.Unix(0, 0)}))

	// Rewrite the flag as the raw numeric form seen in the wild.
	b[offType] = 1
	got, _, err := decodeHeader(&b, false)
	require.NoError(t, err)
	assert.Equal(t, TypeHardLink, got.Type)
	assert.Equal(t, "y", got.LinkName)
}

func TestDecodeModeTypeBits(t *testing.T) {
	// Pre-USTAR archivers leave the flag at regular and carry the file type
	// in the mode field.
	tests := []struct {
		name string
		mode int64
		want Type
	}{
		{name: "socket", mode: 0o140755, want: TypeSocket},
		{name: "fifo", mode: 0o010644, want: TypeFIFO},
		{name: "directory", mode: 0o040755, want: TypeDirectory},
		{name: "plain regular", mode: 0o100644, want: TypeRegular},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b block
			require.NoError(t, encodeHeader(&b, &Header{Name: "x", Type: TypeRegular, ModTime: time.Unix(0, 0)}))
			require.NoError(t, octal.Format(b.field(offMode, 8), tt.mode))

			got, _, err := decodeHeader(&b, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Type)
		})
	}
}

func TestEncodeDeviceNumbers(t *testing.T) {
	hdr := &Header{
		Name:     "dev/sda1",
		Mode:     0o660,
		Type:     TypeBlockDevice,
		ModTime:  time.Unix(0, 0),
		DevMajor: 8,
		DevMinor: 1,
	}
	var b block
	require.NoError(t, encodeHeader(&b, hdr))

	got, _, err := decodeHeader(&b, false)
	require.NoError(t, err)
	assert.Equal(t, TypeBlockDevice, got.Type)
	assert.Equal(t, int64(8), got.DevMajor)
	assert.Equal(t, int64(1), got.DevMinor)
}

func TestEncodeRejects(t *testing.T) {
	longName := make([]byte, nameSize)
	for i := range longName {
		longName[i] = 'a'
	}

	tests := []struct {
		name    string
		hdr     *Header
		wantErr error
	}{
		{
			name:    "name too long",
			hdr:     &Header{Name: string(longName), Type: TypeRegular, ModTime: time.Unix(0, 0)},
			wantErr: ErrNameTooLong,
		},
		{
			name:    "link name too long",
			hdr:     &Header{Name: "x", LinkName: string(longName), Type: TypeSymlink, ModTime: time.Unix(0, 0)},
			wantErr: ErrNameTooLong,
		},
		{
			name:    "size beyond field range",
			hdr:     &Header{Name: "x", Size: 1 << 40, Type: TypeRegular, ModTime: time.Unix(0, 0)},
			wantErr: ErrFieldRange,
		},
		{
			name:    "socket has no wire flag",
			hdr:     &Header{Name: "x", Type: TypeSocket, ModTime: time.Unix(0, 0)},
			wantErr: ErrUnsupportedType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b block
			assert.ErrorIs(t, encodeHeader(&b, tt.hdr), tt.wantErr)
		})
	}
}
