// Package pathutil provides name handling for slash-separated archive paths.
package pathutil

import "strings"

// MatchPrefix reports whether name is selected by the prefix set. An empty
// set selects everything. Otherwise a prefix matches only on a path component
// boundary: the prefix equals the name, or the byte following it in name is a
// slash. "a" selects "a" and "a/b" but never "ab".
func MatchPrefix(name string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if len(name) < len(p) {
			continue
		}
		if name[:len(p)] != p {
			continue
		}
		if len(name) == len(p) || name[len(p)] == '/' {
			return true
		}
	}
	return false
}

// CleanName strips any leading run of slashes from name, reporting whether
// the name was absolute. Archive members are addressed relative to the
// extraction root regardless of how they were recorded.
func CleanName(name string) (string, bool) {
	i := 0
	for i < len(name) && name[i] == '/' {
		i++
	}
	return name[i:], i > 0
}

// Join appends child to parent, inserting a separating slash only when the
// parent does not already end in one.
func Join(parent, child string) string {
	if parent != "" && !strings.HasSuffix(parent, "/") {
		return parent + "/" + child
	}
	return parent + child
}
