package ustar

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// EntryInfo describes a filesystem object as seen by the archiving pipeline.
// Dev and Ino identify the object for the self-inclusion guard.
type EntryInfo struct {
	Mode    fs.FileMode
	UID     int
	GID     int
	Size    int64
	ModTime time.Time
	Dev     uint64
	Ino     uint64
}

// SourceFS is the traversal side of the filesystem collaborator, consumed by
// Create. Names are passed through exactly as the caller or the directory
// listing produced them.
type SourceFS interface {
	// Stat describes the named object, following symlinks only when asked.
	Stat(name string, followSymlink bool) (EntryInfo, error)

	// Open opens the named file for reading.
	Open(name string) (io.ReadCloser, error)

	// ListDir returns the child names of a directory, excluding "." and
	// "..", in the order the pipeline should archive them.
	ListDir(name string) ([]string, error)
}

// DestFS is the creation side of the filesystem collaborator, consumed by
// Extract. Names are archive-relative, slash-separated paths. The Set
// operations are best-effort restoration hooks.
type DestFS interface {
	// CreatePath creates the named directory and any missing parents.
	CreatePath(name string, mode fs.FileMode) error

	// CreateFile creates or truncates the named file.
	CreateFile(name string, mode fs.FileMode) (io.WriteCloser, error)

	// CreateHardLink links name to the existing archive member target.
	CreateHardLink(target, name string) error

	// CreateSymlink creates name pointing at target verbatim.
	CreateSymlink(target, name string) error

	// CreateDevice creates a character, block, or socket node.
	CreateDevice(name string, mode fs.FileMode, major, minor int64) error

	// CreateFIFO creates a named pipe.
	CreateFIFO(name string, mode fs.FileMode) error

	SetOwner(name string, uid, gid int) error
	SetPermissions(name string, mode fs.FileMode) error
	SetTimes(name string, atime, mtime time.Time) error
}

// DirFS returns a filesystem collaborator backed by the operating system,
// with archive-relative names resolved under dir. An empty dir resolves
// names against the process working directory, which is what Create wants
// for caller-supplied paths.
func DirFS(dir string) *OSFS {
	return &OSFS{base: dir}
}

// OSFS implements SourceFS and DestFS against the real filesystem.
type OSFS struct {
	base string
}

func (f *OSFS) path(name string) string {
	return filepath.Join(f.base, filepath.FromSlash(name))
}

func (f *OSFS) Stat(name string, followSymlink bool) (EntryInfo, error) {
	var (
		info os.FileInfo
		err  error
	)
	if followSymlink {
		info, err = os.Stat(f.path(name))
	} else {
		info, err = os.Lstat(f.path(name))
	}
	if err != nil {
		return EntryInfo{}, err
	}

	uid, gid := fileOwner(info)
	dev, ino := deviceInode(info)
	return EntryInfo{
		Mode:    info.Mode(),
		UID:     uid,
		GID:     gid,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Dev:     dev,
		Ino:     ino,
	}, nil
}

func (f *OSFS) Open(name string) (io.ReadCloser, error) {
	return os.Open(f.path(name))
}

func (f *OSFS) ListDir(name string) ([]string, error) {
	entries, err := os.ReadDir(f.path(name))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (f *OSFS) CreatePath(name string, mode fs.FileMode) error {
	return os.MkdirAll(f.path(name), mode.Perm())
}

func (f *OSFS) CreateFile(name string, mode fs.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(f.path(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
}

func (f *OSFS) CreateHardLink(target, name string) error {
	return os.Link(f.path(target), f.path(name))
}

func (f *OSFS) CreateSymlink(target, name string) error {
	return os.Symlink(target, f.path(name))
}

func (f *OSFS) CreateDevice(name string, mode fs.FileMode, major, minor int64) error {
	return mkdev(f.path(name), mode, major, minor)
}

func (f *OSFS) CreateFIFO(name string, mode fs.FileMode) error {
	return mkfifo(f.path(name), mode)
}

// SetOwner uses lchown so that restoring a symlink's ownership never follows
// the link to its target.
func (f *OSFS) SetOwner(name string, uid, gid int) error {
	return os.Lchown(f.path(name), uid, gid)
}

func (f *OSFS) SetPermissions(name string, mode fs.FileMode) error {
	return os.Chmod(f.path(name), mode.Perm())
}

func (f *OSFS) SetTimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(f.path(name), atime, mtime)
}
