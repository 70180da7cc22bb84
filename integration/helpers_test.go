//go:build integration

package integration

import (
	"crypto/rand"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// --- Test Data Helpers ---

// createTestFiles writes test files to a directory, creating parents as
// needed.
func createTestFiles(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()
	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		require.NoError(tb, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(tb, os.WriteFile(fullPath, content, 0o644))
	}
}

// readTree reads every regular file under dir into a map keyed by
// slash-separated relative path.
func readTree(tb testing.TB, dir string) map[string][]byte {
	tb.Helper()

	files := map[string][]byte{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = content
		return nil
	})
	require.NoError(tb, err, "walk %s", dir)
	return files
}

// topLevel returns the sorted set of first path components in files, which
// is what gets handed to Create as the path arguments.
func topLevel(files map[string][]byte) []string {
	seen := map[string]bool{}
	for path := range files {
		root := path
		if i := strings.IndexByte(path, '/'); i >= 0 {
			root = path[:i]
		}
		seen[root] = true
	}
	roots := make([]string, 0, len(seen))
	for root := range seen {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// randomBytes returns n bytes of random content.
func randomBytes(tb testing.TB, n int) []byte {
	tb.Helper()
	buf := make([]byte, n)
	_, err := rand.Read(buf)
	require.NoError(tb, err)
	return buf
}

// --- Fixtures ---

// smallArchive is a handful of files at awkward sizes around the block
// boundary.
func smallArchive(tb testing.TB) map[string][]byte {
	return map[string][]byte{
		"empty.txt":     {},
		"one.txt":       []byte("x"),
		"under.bin":     randomBytes(tb, 511),
		"exact.bin":     randomBytes(tb, 512),
		"over.bin":      randomBytes(tb, 513),
		"hello.txt":     []byte("hello, world\n"),
		"docs/note.txt": []byte("nested"),
	}
}

// nestedArchive exercises deep directory recursion.
func nestedArchive(tb testing.TB) map[string][]byte {
	return map[string][]byte{
		"a/b/c/d/deep.txt":    []byte("deep"),
		"a/b/sibling.txt":     []byte("sibling"),
		"a/top.txt":           []byte("top"),
		"z/large.bin":         randomBytes(tb, 64*1024),
		"z/sub/trailing.bin":  randomBytes(tb, 1000),
		"z/sub/trailing2.bin": randomBytes(tb, 1),
	}
}
