//go:build unix

package ustar

import (
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

// fileOwner extracts UID and GID from file info on Unix systems.
func fileOwner(info fs.FileInfo) (uid, gid int) {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return int(stat.Uid), int(stat.Gid)
	}
	return 0, 0
}

// deviceInode extracts the device and inode coordinates used by the
// self-inclusion guard.
func deviceInode(info fs.FileInfo) (dev, ino uint64) {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(stat.Dev), stat.Ino
	}
	return 0, 0
}

func mkdev(path string, mode fs.FileMode, major, minor int64) error {
	m := unixMode(mode)
	switch {
	case mode&fs.ModeCharDevice != 0:
		m |= unix.S_IFCHR
	case mode&fs.ModeSocket != 0:
		m |= unix.S_IFSOCK
	default:
		m |= unix.S_IFBLK
	}
	return unix.Mknod(path, m, int(unix.Mkdev(uint32(major), uint32(minor))))
}

func mkfifo(path string, mode fs.FileMode) error {
	return unix.Mkfifo(path, unixMode(mode))
}

func unixMode(mode fs.FileMode) uint32 {
	m := uint32(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		m |= unix.S_ISUID
	}
	if mode&fs.ModeSetgid != 0 {
		m |= unix.S_ISGID
	}
	if mode&fs.ModeSticky != 0 {
		m |= unix.S_ISVTX
	}
	return m
}
