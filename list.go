package ustar

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/meigma/ustar/internal/pathutil"
)

// listConfig holds configuration for List.
type listConfig struct {
	logger   *slog.Logger
	prefixes []string
	verbose  bool
}

// ListOption configures List.
type ListOption func(*listConfig)

// ListWithLogger sets the logger for policy warnings. Discarded by default.
func ListWithLogger(logger *slog.Logger) ListOption {
	return func(c *listConfig) {
		c.logger = logger
	}
}

// ListWithPrefixes restricts the listing to entries selected by the given
// path prefixes, matched on component boundaries.
func ListWithPrefixes(prefixes ...string) ListOption {
	return func(c *listConfig) {
		c.prefixes = append(c.prefixes, prefixes...)
	}
}

// ListWithVerbose adds mode, owner, size, and time columns to each line.
func ListWithVerbose(verbose bool) ListOption {
	return func(c *listConfig) {
		c.verbose = verbose
	}
}

// List prints one line per selected entry to out, in archive order. Data
// regions are skipped, not copied. Hard link and symlink entries carry a
// target annotation; device entries show major,minor in place of a size.
func List(r io.Reader, out io.Writer, opts ...ListOption) error {
	cfg := listConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tr := NewReader(r, ReadWithLogger(logger))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !pathutil.MatchPrefix(hdr.Name, cfg.prefixes) {
			continue
		}
		if err := printEntry(out, hdr, cfg.verbose); err != nil {
			return err
		}
	}
}

func printEntry(out io.Writer, hdr *Header, verbose bool) error {
	if verbose {
		if _, err := fmt.Fprintf(out, "%s %3d/%-d ", modeString(hdr), hdr.UID, hdr.GID); err != nil {
			return err
		}
		when := hdr.ModTime.UTC().Format("Jan _2 15:04 2006")
		var err error
		if hdr.Type == TypeCharDevice || hdr.Type == TypeBlockDevice {
			_, err = fmt.Fprintf(out, "%4d,%4d %s ", hdr.DevMajor, hdr.DevMinor, when)
		} else {
			_, err = fmt.Fprintf(out, "%9d %s ", hdr.Size, when)
		}
		if err != nil {
			return err
		}
	}

	if _, err := io.WriteString(out, hdr.Name); err != nil {
		return err
	}
	switch hdr.Type {
	case TypeHardLink:
		if _, err := fmt.Fprintf(out, " (link to %q)", hdr.LinkName); err != nil {
			return err
		}
	case TypeSymlink:
		if _, err := fmt.Fprintf(out, " (symlink to %q)", hdr.LinkName); err != nil {
			return err
		}
	}
	_, err := io.WriteString(out, "\n")
	return err
}

// modeString renders an ls-style ten-character mode column.
func modeString(hdr *Header) string {
	b := []byte("----------")

	switch hdr.Type {
	case TypeDirectory:
		b[0] = 'd'
	case TypeSymlink:
		b[0] = 'l'
	case TypeCharDevice:
		b[0] = 'c'
	case TypeBlockDevice:
		b[0] = 'b'
	case TypeFIFO:
		b[0] = 'p'
	case TypeSocket:
		b[0] = 's'
	}

	const rwx = "rwxrwxrwx"
	perm := hdr.Mode.Perm()
	for i := 0; i < 9; i++ {
		if perm&(1<<uint(8-i)) != 0 {
			b[1+i] = rwx[i]
		}
	}

	if hdr.Mode&fs.ModeSetuid != 0 {
		b[3] = flip(b[3], 's', 'S')
	}
	if hdr.Mode&fs.ModeSetgid != 0 {
		b[6] = flip(b[6], 's', 'S')
	}
	if hdr.Mode&fs.ModeSticky != 0 {
		b[9] = flip(b[9], 't', 'T')
	}
	return string(b)
}

// flip picks the executable or plain variant of a special-bit marker.
func flip(cur, withX, withoutX byte) byte {
	if cur == '-' {
		return withoutX
	}
	return withX
}
