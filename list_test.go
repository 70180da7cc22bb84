package ustar

import (
	"bytes"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listFixture(t *testing.T) []byte {
	t.Helper()
	mtime := time.Unix(1700000000, 0) // Nov 14 22:13 2023 UTC
	return buildArchive(t, []*Header{
		{Name: "hello.txt", Mode: 0o644, UID: 12, GID: 34, Size: 4, Type: TypeRegular, ModTime: mtime},
		{Name: "sub/", Mode: 0o755 | fs.ModeDir, Type: TypeDirectory, ModTime: mtime},
		{Name: "link.txt", Mode: 0o644, Type: TypeHardLink, LinkName: "hello.txt", ModTime: mtime},
	}, map[string]string{"hello.txt": "abcd"})
}

func TestList(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, List(bytes.NewReader(listFixture(t)), &out))

	assert.Equal(t, "hello.txt\n"+
		"sub/\n"+
		"link.txt (link to \"hello.txt\")\n", out.String())
}

func TestListVerbose(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, List(bytes.NewReader(listFixture(t)), &out, ListWithVerbose(true)))

	assert.Equal(t, "-rw-r--r--  12/34         4 Nov 14 22:13 2023 hello.txt\n"+
		"drwxr-xr-x   0/0         0 Nov 14 22:13 2023 sub/\n"+
		"-rw-r--r--   0/0         0 Nov 14 22:13 2023 link.txt (link to \"hello.txt\")\n", out.String())
}

func TestListPrefixes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, List(bytes.NewReader(listFixture(t)), &out, ListWithPrefixes("sub")))

	assert.Equal(t, "sub/\n", out.String())
}

func TestListDeviceColumns(t *testing.T) {
	raw := buildArchive(t, []*Header{
		{Name: "dev/sda1", Mode: 0o660 | fs.ModeDevice, Type: TypeBlockDevice, DevMajor: 8, DevMinor: 1, ModTime: time.Unix(1700000000, 0)},
	}, nil)

	var out bytes.Buffer
	require.NoError(t, List(bytes.NewReader(raw), &out, ListWithVerbose(true)))

	assert.Equal(t, "brw-rw----   0/0    8,   1 Nov 14 22:13 2023 dev/sda1\n", out.String())
}

func TestModeString(t *testing.T) {
	tests := []struct {
		hdr  Header
		want string
	}{
		{Header{Mode: 0o644, Type: TypeRegular}, "-rw-r--r--"},
		{Header{Mode: 0o755 | fs.ModeDir, Type: TypeDirectory}, "drwxr-xr-x"},
		{Header{Mode: 0o777 | fs.ModeSymlink, Type: TypeSymlink}, "lrwxrwxrwx"},
		{Header{Mode: 0o644 | fs.ModeNamedPipe, Type: TypeFIFO}, "prw-r--r--"},
		{Header{Mode: 0o666 | fs.ModeCharDevice, Type: TypeCharDevice}, "crw-rw-rw-"},
		{Header{Mode: 0o755 | fs.ModeSetuid, Type: TypeRegular}, "-rwsr-xr-x"},
		{Header{Mode: 0o644 | fs.ModeSetuid, Type: TypeRegular}, "-rwSr--r--"},
		{Header{Mode: 0o755 | fs.ModeSetgid, Type: TypeRegular}, "-rwxr-sr-x"},
		{Header{Mode: 0o777 | fs.ModeDir | fs.ModeSticky, Type: TypeDirectory}, "drwxrwxrwt"},
		{Header{Mode: 0o776 | fs.ModeDir | fs.ModeSticky, Type: TypeDirectory}, "drwxrwxrwT"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, modeString(&tt.hdr), tt.want)
	}
}
