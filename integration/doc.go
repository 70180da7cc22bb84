//go:build integration

// Package integration provides end-to-end tests for the ustar library.
//
// These tests stage real directory trees on disk and round-trip them through
// creation and extraction, cross-checking the wire format against the
// standard library's archive/tar.
// Run with: go test -tags=integration ./integration/...
package integration
