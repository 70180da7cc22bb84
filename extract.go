package ustar

import (
	"context"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/meigma/ustar/internal/blockio"
	"github.com/meigma/ustar/internal/pathutil"
)

// Extract reads an archive from r and recreates the selected entries under
// dir through the filesystem collaborator. Entries excluded by the selection
// prefixes are consumed and discarded to keep the stream aligned.
//
// Per-entry failures (an uncreatable file, a failed restore) are logged and
// accumulated; Extract keeps going and returns ErrPartial at the end. A
// truncated or unreadable archive stream aborts immediately.
func Extract(ctx context.Context, r io.Reader, dir string, opts ...ExtractOption) error {
	cfg := extractConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	ec := &extractContext{
		fsys:    cfg.fsys,
		logger:  cfg.logger,
		out:     cfg.out,
		verbose: cfg.verbose,
		buf:     make([]byte, 32*1024),
	}
	if ec.fsys == nil {
		ec.fsys = DirFS(dir)
	}
	if ec.logger == nil {
		ec.logger = slog.New(slog.DiscardHandler)
	}

	tr := NewReader(r, ReadWithLogger(ec.logger), ReadWithChecksumValidation(cfg.verify))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if !pathutil.MatchPrefix(hdr.Name, cfg.prefixes) {
			// Next discards the data region of excluded entries.
			continue
		}
		if ec.verbose != nil {
			ec.verbose(hdr.Name)
		}
		if err := ec.extractEntry(ctx, tr, hdr); err != nil {
			return err
		}
	}

	if ec.hadErrors {
		return ErrPartial
	}
	return nil
}

// extractContext carries the state of one extraction run. Exactly one output
// sink is live at a time; it is closed on region completion, on write
// failure, and on any abort path.
type extractContext struct {
	fsys    DestFS
	logger  *slog.Logger
	out     io.Writer
	verbose func(name string)
	buf     []byte

	hadErrors bool
}

// entryErr records a per-entry failure: logged, accumulated, never aborting.
func (e *extractContext) entryErr(msg, name string, err error) {
	e.logger.Warn(msg, "name", name, "err", err)
	e.hadErrors = true
}

// restore applies mtime, ownership, and permissions, in that order so a
// late chown cannot strip freshly set mode bits. All three are best-effort:
// failures are reported but the entry still counts as extracted.
func (e *extractContext) restore(name string, hdr *Header) {
	if err := e.fsys.SetTimes(name, hdr.ModTime, hdr.ModTime); err != nil {
		e.logger.Warn("cannot restore times", "name", name, "err", err)
	}
	if err := e.fsys.SetOwner(name, hdr.UID, hdr.GID); err != nil {
		e.logger.Warn("cannot restore ownership", "name", name, "err", err)
	}
	if err := e.fsys.SetPermissions(name, hdr.Mode); err != nil {
		e.logger.Warn("cannot restore permissions", "name", name, "err", err)
	}
}

// extractEntry recreates one entry. The returned error is fatal (stream
// level); everything else is recorded and swallowed.
func (e *extractContext) extractEntry(ctx context.Context, tr *Reader, hdr *Header) error {
	if e.out != nil {
		// Stream-to-output mode: data regions of selected entries are
		// copied out verbatim, no filesystem objects are created.
		if hdr.dataSize() > 0 {
			if _, err := blockio.CopyWithContext(ctx, e.out, tr, e.buf); err != nil {
				return err
			}
		}
		return nil
	}

	switch hdr.Type {
	case TypeRegular:
		return e.extractFile(tr, hdr)

	case TypeDirectory:
		name := strings.TrimSuffix(hdr.Name, "/")
		if err := e.fsys.CreatePath(name, hdr.Mode); err != nil {
			e.entryErr("cannot create directory", name, err)
			return nil
		}
		e.restore(name, hdr)

	case TypeHardLink:
		if err := e.fsys.CreateHardLink(hdr.LinkName, hdr.Name); err != nil {
			e.entryErr("cannot create hard link", hdr.Name, err)
			return nil
		}
		e.restore(hdr.Name, hdr)

	case TypeSymlink:
		if err := e.fsys.CreateSymlink(hdr.LinkName, hdr.Name); err != nil {
			e.entryErr("cannot create symlink", hdr.Name, err)
			return nil
		}
		// Ownership only: chmod and utime would act on the link target.
		if err := e.fsys.SetOwner(hdr.Name, hdr.UID, hdr.GID); err != nil {
			e.logger.Warn("cannot restore ownership", "name", hdr.Name, "err", err)
		}

	case TypeCharDevice, TypeBlockDevice, TypeSocket:
		if err := e.fsys.CreateDevice(hdr.Name, hdr.Mode, hdr.DevMajor, hdr.DevMinor); err != nil {
			e.entryErr("cannot create device node", hdr.Name, err)
			return nil
		}
		e.restore(hdr.Name, hdr)

	case TypeFIFO:
		if err := e.fsys.CreateFIFO(hdr.Name, hdr.Mode); err != nil {
			e.entryErr("cannot create fifo", hdr.Name, err)
			return nil
		}
		e.restore(hdr.Name, hdr)

	default:
		e.entryErr("unsupported entry type, skipping", hdr.Name, ErrUnsupportedType)
	}
	return nil
}

// extractFile streams a regular file's data region to a fresh sink. A sink
// write failure stops writing but the remaining data is still consumed so
// the stream stays block-aligned.
func (e *extractContext) extractFile(tr *Reader, hdr *Header) error {
	if parent := path.Dir(hdr.Name); parent != "." {
		if err := e.fsys.CreatePath(parent, 0o777); err != nil {
			e.entryErr("cannot create path", hdr.Name, err)
			return nil
		}
	}

	sink, err := e.fsys.CreateFile(hdr.Name, hdr.Mode)
	if err != nil {
		e.entryErr("cannot create file", hdr.Name, err)
		return nil
	}

	writing := true
	for {
		n, rerr := tr.Read(e.buf)
		if n > 0 && writing {
			if _, werr := sink.Write(e.buf[:n]); werr != nil {
				e.entryErr("write failed, discarding remaining data", hdr.Name, werr)
				writing = false
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			sink.Close()
			return rerr
		}
	}

	if cerr := sink.Close(); cerr != nil {
		e.entryErr("cannot close", hdr.Name, cerr)
		return nil
	}
	if writing {
		e.restore(hdr.Name, hdr)
	}
	return nil
}
