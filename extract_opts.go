package ustar

import (
	"io"
	"log/slog"
)

// extractConfig holds configuration for Extract.
type extractConfig struct {
	logger   *slog.Logger
	fsys     DestFS
	prefixes []string
	out      io.Writer
	verify   bool
	verbose  func(name string)
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

// ExtractWithLogger sets the logger for per-entry diagnostics and policy
// warnings. Diagnostics are discarded by default.
func ExtractWithLogger(logger *slog.Logger) ExtractOption {
	return func(c *extractConfig) {
		c.logger = logger
	}
}

// ExtractWithFS replaces the destination collaborator entirely; the dir
// argument to Extract is ignored.
func ExtractWithFS(fsys DestFS) ExtractOption {
	return func(c *extractConfig) {
		c.fsys = fsys
	}
}

// ExtractWithPrefixes restricts extraction to entries selected by the given
// path prefixes, matched on component boundaries. No prefixes selects
// everything.
func ExtractWithPrefixes(prefixes ...string) ExtractOption {
	return func(c *extractConfig) {
		c.prefixes = append(c.prefixes, prefixes...)
	}
}

// ExtractWithOutput streams the data regions of selected entries to w
// instead of creating filesystem objects.
func ExtractWithOutput(w io.Writer) ExtractOption {
	return func(c *extractConfig) {
		c.out = w
	}
}

// ExtractWithVerbose installs a callback invoked with each selected entry
// name before it is recreated. Drives `x name` output in the CLI.
func ExtractWithVerbose(fn func(name string)) ExtractOption {
	return func(c *extractConfig) {
		c.verbose = fn
	}
}

// ExtractWithChecksumValidation enables header checksum verification on the
// underlying Reader. Off by default.
func ExtractWithChecksumValidation(verify bool) ExtractOption {
	return func(c *extractConfig) {
		c.verify = verify
	}
}
