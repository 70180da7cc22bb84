//go:build !unix

package ustar

import "io/fs"

// fileOwner returns zero UID/GID on non-Unix systems.
func fileOwner(info fs.FileInfo) (uid, gid int) {
	return 0, 0
}

// deviceInode returns zero coordinates on non-Unix systems; the
// self-inclusion guard is effectively disabled.
func deviceInode(info fs.FileInfo) (dev, ino uint64) {
	return 0, 0
}

func mkdev(path string, mode fs.FileMode, major, minor int64) error {
	return ErrUnsupportedType
}

func mkfifo(path string, mode fs.FileMode) error {
	return ErrUnsupportedType
}
