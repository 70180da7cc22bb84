package ustar

import (
	"io"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/ustar/internal/blockio"
)

// Summary describes an archive after a full sequential pass.
type Summary struct {
	// Entries is the number of headers in the archive.
	Entries int

	// DataBytes is the total declared size of all data regions, before
	// block-alignment padding.
	DataBytes int64

	// Blocks is the number of 512-byte blocks consumed, including the
	// end-of-archive marker.
	Blocks int64

	// Digest is the canonical digest of the archive bytes, computed over
	// everything up to and including the end marker.
	Digest digest.Digest
}

// Inspect consumes the archive stream and returns a census of its contents
// together with a content digest usable as a stable archive identity.
func Inspect(r io.Reader) (*Summary, error) {
	digester := digest.Canonical.Digester()
	counter := &blockio.CountingReader{R: io.TeeReader(r, digester.Hash())}

	sum := &Summary{}
	tr := NewReader(counter)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		sum.Entries++
		sum.DataBytes += hdr.dataSize()
	}

	sum.Blocks = counter.N / BlockSize
	sum.Digest = digester.Digest()
	return sum, nil
}
