package ustar

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/meigma/ustar/internal/blockio"
)

// readerState is the explicit discriminant of the block-stream state machine.
type readerState uint8

const (
	expectHeader readerState = iota
	copyingData
)

// Reader consumes an archive block stream entry by entry. Next advances to
// the following header; Read serves the current entry's data region.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	r      io.Reader
	logger *slog.Logger
	verify bool

	state     readerState
	remaining int64 // data bytes left in the current region
	padding   int64 // alignment bytes owed after the region
	err       error // sticky fatal error, io.EOF after the end marker

	warnedBadHeader bool
	warnedAbsolute  bool

	buf block
}

// ReadOption configures a Reader.
type ReadOption func(*Reader)

// ReadWithLogger sets the logger for policy warnings (bad header blocks,
// absolute path rewrites). Warnings are discarded by default.
func ReadWithLogger(logger *slog.Logger) ReadOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

// ReadWithChecksumValidation enables verification of the stored header
// checksum. Validation is off by default: the read path tolerates archives
// from tools that encode the field differently.
func ReadWithChecksumValidation(verify bool) ReadOption {
	return func(r *Reader) {
		r.verify = verify
	}
}

// NewReader returns a Reader consuming the archive stream r.
func NewReader(r io.Reader, opts ...ReadOption) *Reader {
	tr := &Reader{r: r}
	for _, opt := range opts {
		opt(tr)
	}
	return tr
}

func (tr *Reader) log() *slog.Logger {
	if tr.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return tr.logger
}

// Next advances to the next entry, discarding any unread remainder of the
// current one along with its alignment padding. It returns io.EOF at the
// end-of-archive marker. Header blocks that fail field decoding are skipped
// with a one-time warning; a source that runs dry is a truncated archive and
// surfaces io.ErrUnexpectedEOF.
func (tr *Reader) Next() (*Header, error) {
	if tr.err != nil {
		return nil, tr.err
	}
	if err := tr.skipCurrent(); err != nil {
		return nil, tr.fatal(fmt.Errorf("ustar: skipping entry data: %w", err))
	}

	for {
		if err := blockio.ReadBlock(tr.r, tr.buf[:]); err != nil {
			return nil, tr.fatal(fmt.Errorf("ustar: reading header block: %w", err))
		}

		// A NUL where the name should start is either the end marker or a
		// nameless header to be ignored.
		if tr.buf[0] == 0 {
			if tr.buf.isZero() {
				tr.err = io.EOF
				return nil, io.EOF
			}
			continue
		}

		hdr, stripped, err := decodeHeader(&tr.buf, tr.verify)
		if err != nil {
			if !tr.warnedBadHeader {
				tr.log().Warn("bad tar header, skipping", "err", err)
				tr.warnedBadHeader = true
			}
			continue
		}
		if stripped && !tr.warnedAbsolute {
			tr.log().Warn("absolute path detected, removing leading slashes", "name", hdr.Name)
			tr.warnedAbsolute = true
		}

		if size := hdr.dataSize(); size > 0 {
			tr.state = copyingData
			tr.remaining = size
			tr.padding = blockio.Pad(size)
		} else {
			tr.state = expectHeader
			tr.remaining, tr.padding = 0, 0
		}
		return hdr, nil
	}
}

// Read reads from the current entry's data region, returning io.EOF when the
// region is exhausted. Entries without a data region read as immediately
// empty.
func (tr *Reader) Read(p []byte) (int, error) {
	if tr.err != nil {
		return 0, tr.err
	}
	if tr.state != copyingData || tr.remaining == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > tr.remaining {
		p = p[:tr.remaining]
	}

	n, err := tr.r.Read(p)
	tr.remaining -= int64(n)
	if err == io.EOF {
		if tr.remaining > 0 {
			return n, tr.fatal(fmt.Errorf("ustar: reading entry data: %w", io.ErrUnexpectedEOF))
		}
		err = nil
	}
	if err != nil {
		return n, tr.fatal(err)
	}
	return n, nil
}

// skipCurrent discards whatever remains of the current entry, including the
// zero padding that rounds its data region up to the block boundary.
func (tr *Reader) skipCurrent() error {
	if tr.state != copyingData {
		return nil
	}
	if err := blockio.Discard(tr.r, tr.remaining+tr.padding); err != nil {
		return err
	}
	tr.state = expectHeader
	tr.remaining, tr.padding = 0, 0
	return nil
}

func (tr *Reader) fatal(err error) error {
	tr.err = err
	return err
}
