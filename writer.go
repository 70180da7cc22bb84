package ustar

import (
	"fmt"
	"io"

	"github.com/meigma/ustar/internal/blockio"
)

// Writer produces an archive block stream. WriteHeader begins an entry,
// Write supplies its data, and Close pads the final entry and emits the
// end-of-archive marker.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	w io.Writer

	remaining int64 // declared data bytes still owed for the current entry
	padding   int64 // alignment bytes owed after the data
	closed    bool
	err       error // sticky fatal error; the stream is unusable once set

	buf block
}

// NewWriter returns a Writer emitting an archive to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the header block for the next entry. The previous
// entry's data region must have been fully supplied; its alignment padding
// is emitted here. For data-bearing types the caller owes exactly h.Size
// bytes of data before the next header.
func (tw *Writer) WriteHeader(h *Header) error {
	if tw.err != nil {
		return tw.err
	}
	if tw.closed {
		return ErrWriteAfterClose
	}
	if err := tw.finishEntry(); err != nil {
		return err
	}

	if err := encodeHeader(&tw.buf, h); err != nil {
		return err
	}
	if _, err := tw.w.Write(tw.buf[:]); err != nil {
		return tw.fatal(fmt.Errorf("ustar: writing header: %w", err))
	}

	size := h.dataSize()
	tw.remaining = size
	tw.padding = blockio.Pad(size)
	return nil
}

// Write supplies data for the current entry. Writing more than the declared
// size returns ErrWriteTooLong without consuming the excess.
func (tw *Writer) Write(p []byte) (int, error) {
	if tw.err != nil {
		return 0, tw.err
	}
	if tw.closed {
		return 0, ErrWriteAfterClose
	}
	if int64(len(p)) > tw.remaining {
		return 0, ErrWriteTooLong
	}

	n, err := tw.w.Write(p)
	tw.remaining -= int64(n)
	if err != nil {
		return n, tw.fatal(fmt.Errorf("ustar: writing entry data: %w", err))
	}
	return n, nil
}

// Close pads the final entry and writes the all-zero end-of-archive block.
// The end marker is emitted even when earlier entries failed, as long as the
// underlying stream itself is still usable. Close is idempotent.
func (tw *Writer) Close() error {
	if tw.err != nil {
		return tw.err
	}
	if tw.closed {
		return nil
	}
	tw.closed = true

	// An entry left short is corrupt, but the archive is still terminated:
	// the shortfall is zero-filled so the end marker lands on a block
	// boundary, and the error is reported.
	var short error
	if tw.remaining > 0 {
		short = ErrIncompleteEntry
	}
	if err := blockio.ZeroFill(tw.w, tw.remaining+tw.padding); err != nil {
		return tw.fatal(fmt.Errorf("ustar: padding entry: %w", err))
	}
	tw.remaining, tw.padding = 0, 0

	var zero block
	if _, err := tw.w.Write(zero[:]); err != nil {
		return tw.fatal(fmt.Errorf("ustar: writing end-of-archive block: %w", err))
	}
	return short
}

// finishEntry closes out the current entry before a new header may begin.
func (tw *Writer) finishEntry() error {
	if tw.remaining > 0 {
		return ErrIncompleteEntry
	}
	if tw.padding > 0 {
		if err := blockio.ZeroFill(tw.w, tw.padding); err != nil {
			return tw.fatal(fmt.Errorf("ustar: padding entry: %w", err))
		}
		tw.padding = 0
	}
	return nil
}

func (tw *Writer) fatal(err error) error {
	tw.err = err
	return err
}
