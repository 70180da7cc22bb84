package ustar

import "log/slog"

// createConfig holds configuration for Create.
type createConfig struct {
	logger  *slog.Logger
	fsys    SourceFS
	verbose func(name string)
}

// CreateOption configures Create.
type CreateOption func(*createConfig)

// CreateWithLogger sets the logger for per-entry diagnostics and policy
// warnings. Diagnostics are discarded by default.
func CreateWithLogger(logger *slog.Logger) CreateOption {
	return func(c *createConfig) {
		c.logger = logger
	}
}

// CreateWithFS sets the traversal collaborator. The default reads the real
// filesystem with paths resolved as given.
func CreateWithFS(fsys SourceFS) CreateOption {
	return func(c *createConfig) {
		c.fsys = fsys
	}
}

// CreateWithVerbose installs a callback invoked with each path as it is
// visited, before any validation. Drives `a name` output in the CLI.
func CreateWithVerbose(fn func(name string)) CreateOption {
	return func(c *createConfig) {
		c.verbose = fn
	}
}
