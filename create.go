package ustar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/meigma/ustar/internal/pathutil"
)

// Create archives the named paths to w, in caller order, recursing into
// directories depth-first. Top-level paths follow symlinks; paths discovered
// while recursing do not.
//
// If w is an *os.File (or anything exposing Stat), its device and inode are
// captured first and any visited path with the same coordinates is skipped,
// so an archive being written into the tree it records never includes
// itself.
//
// Regular files and directories are archived. Symlinks, devices, fifos, and
// sockets encountered during traversal are reported and skipped; extraction
// can create them, creation does not record them. Per-entry failures are
// logged and accumulated: Create still terminates the archive and returns
// ErrPartial. Failures writing the archive stream itself abort.
func Create(ctx context.Context, w io.Writer, paths []string, opts ...CreateOption) error {
	cfg := createConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(paths) == 0 {
		return errors.New("ustar: no paths to archive")
	}

	cw := &writeContext{
		tw:      NewWriter(w),
		fsys:    cfg.fsys,
		logger:  cfg.logger,
		verbose: cfg.verbose,
		buf:     make([]byte, 32*1024),
	}
	if cw.fsys == nil {
		cw.fsys = DirFS("")
	}
	if cw.logger == nil {
		cw.logger = slog.New(slog.DiscardHandler)
	}

	if statter, ok := w.(interface{ Stat() (os.FileInfo, error) }); ok {
		if info, err := statter.Stat(); err == nil {
			cw.selfDev, cw.selfIno = deviceInode(info)
			cw.haveSelf = true
		}
	}

	for _, p := range paths {
		if cw.fatal != nil {
			break
		}
		cw.savePath(ctx, p, true)
	}

	closeErr := cw.tw.Close()
	switch {
	case cw.fatal != nil:
		return cw.fatal
	case closeErr != nil:
		return closeErr
	case cw.hadErrors:
		return ErrPartial
	}
	return nil
}

// writeContext carries the state of one archiving run: the open writer, the
// self-inclusion coordinates, and the accumulated error flag.
type writeContext struct {
	tw      *Writer
	fsys    SourceFS
	logger  *slog.Logger
	verbose func(name string)
	buf     []byte

	selfDev  uint64
	selfIno  uint64
	haveSelf bool

	hadErrors bool
	fatal     error
}

// entryErr records a per-entry failure: logged, accumulated, never aborting.
func (c *writeContext) entryErr(msg, name string, err error) {
	c.logger.Warn(msg, "name", name, "err", err)
	c.hadErrors = true
}

// savePath archives one path, recursing into directories. follow controls
// whether a symlink at this path is dereferenced; only top-level arguments
// are followed.
func (c *writeContext) savePath(ctx context.Context, name string, follow bool) {
	if c.fatal != nil {
		return
	}
	if err := ctx.Err(); err != nil {
		c.fatal = err
		return
	}
	if c.verbose != nil {
		c.verbose(name)
	}

	if len(name) >= nameSize {
		c.entryErr("file name too long for header field", name, ErrNameTooLong)
		return
	}

	info, err := c.fsys.Stat(name, follow)
	if err != nil {
		c.entryErr("cannot stat", name, err)
		return
	}

	if c.haveSelf && info.Dev == c.selfDev && info.Ino == c.selfIno {
		c.logger.Warn("skipping archive file itself", "name", name)
		return
	}

	switch {
	case info.Mode.IsDir():
		c.saveDirectory(ctx, name, info)
	case info.Mode.IsRegular():
		c.saveRegularFile(ctx, name, info)
	default:
		c.entryErr("not a directory or regular file, skipping", name, ErrUnsupportedType)
	}
}

// writeHeader emits a header block, sorting encode failures (per-entry) from
// stream failures (fatal).
func (c *writeContext) writeHeader(hdr *Header) bool {
	err := c.tw.WriteHeader(hdr)
	if err == nil {
		return true
	}
	if c.tw.err != nil {
		c.fatal = err
		return false
	}
	c.entryErr("cannot encode header", hdr.Name, err)
	return false
}

func (c *writeContext) saveDirectory(ctx context.Context, name string, info EntryInfo) {
	hdrName := name
	if !strings.HasSuffix(hdrName, "/") {
		hdrName += "/"
	}
	hdr := &Header{
		Name:    hdrName,
		Mode:    info.Mode,
		UID:     info.UID,
		GID:     info.GID,
		Size:    0,
		ModTime: info.ModTime,
		Type:    TypeDirectory,
	}
	if !c.writeHeader(hdr) {
		return
	}

	children, err := c.fsys.ListDir(name)
	if err != nil {
		c.entryErr("cannot read directory", name, err)
		return
	}
	for _, child := range children {
		if c.fatal != nil {
			return
		}
		c.savePath(ctx, pathutil.Join(name, child), false)
	}
}

func (c *writeContext) saveRegularFile(ctx context.Context, name string, info EntryInfo) {
	f, err := c.fsys.Open(name)
	if err != nil {
		c.entryErr("cannot open", name, err)
		return
	}
	defer f.Close()

	hdr := &Header{
		Name:    name,
		Mode:    info.Mode,
		UID:     info.UID,
		GID:     info.GID,
		Size:    info.Size,
		ModTime: info.ModTime,
		Type:    TypeRegular,
	}
	if !c.writeHeader(hdr) {
		return
	}

	// The size committed in the header is authoritative: exactly that many
	// data bytes are written even if the file changes underneath us, with
	// any shortfall zero-filled.
	remaining := info.Size
	sawEOF := false
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			c.fatal = err
			return
		}
		n := len(c.buf)
		if int64(n) > remaining {
			n = int(remaining)
		}

		rn := 0
		if !sawEOF {
			var rerr error
			rn, rerr = io.ReadFull(f, c.buf[:n])
			switch {
			case rerr == io.EOF || rerr == io.ErrUnexpectedEOF:
				sawEOF = true
				c.logger.Warn("short read, zero filling", "name", name)
			case rerr != nil:
				sawEOF = true
				rn = 0
				c.entryErr("read failed, zero filling remainder", name, rerr)
			}
		}
		for i := rn; i < n; i++ {
			c.buf[i] = 0
		}

		if _, err := c.tw.Write(c.buf[:n]); err != nil {
			c.fatal = err
			return
		}
		remaining -= int64(n)
	}
}
