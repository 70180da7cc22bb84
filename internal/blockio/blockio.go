// Package blockio provides block-granular I/O helpers for archive streams:
// full-block reads that surface truncation, zero padding, and context-aware
// copying.
package blockio

import (
	"context"
	"io"
)

// BlockSize is the archive alignment granularity for headers and data.
const BlockSize = 512

var zeros [BlockSize]byte

// ReadBlock fills b from r. A source that runs dry mid-block, or exactly at
// the block boundary where more data is owed, reports io.ErrUnexpectedEOF:
// a real end of file from the stream is a truncated archive.
func ReadBlock(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// Discard consumes and drops exactly n bytes from r.
func Discard(r io.Reader, n int64) error {
	written, err := io.CopyN(io.Discard, r, n)
	if err == io.EOF && written < n {
		return io.ErrUnexpectedEOF
	}
	return err
}

// ZeroFill writes n zero bytes to w.
func ZeroFill(w io.Writer, n int64) error {
	for n > 0 {
		chunk := int64(BlockSize)
		if chunk > n {
			chunk = n
		}
		if _, err := w.Write(zeros[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Pad returns the number of zero bytes needed after n to reach the next
// block boundary.
func Pad(n int64) int64 {
	return (BlockSize - n%BlockSize) % BlockSize
}

// CountingReader counts bytes read through it.
type CountingReader struct {
	R io.Reader
	N int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	c.N += int64(n)
	return n, err
}

// CopyWithContext copies from src to dst until EOF or error, checking for
// context cancellation between reads. It returns the number of bytes written.
func CopyWithContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[:nr])
			written += int64(nw)
			if ew != nil {
				return written, ew
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er == io.EOF {
				return written, nil
			}
			return written, er
		}
	}
}
