package dfs

import (
	"path"
	"strings"
)

// Separator is the remote path separator.
const Separator = "/"

// IsAbs reports whether p is an absolute remote path.
func IsAbs(p string) bool { return strings.HasPrefix(p, Separator) }

// HasScheme reports whether p is a fully qualified URI such as
// hdfs://nn:8020/data or file:///tmp/x.
func HasScheme(p string) bool {
	i := strings.Index(p, "://")
	if i <= 0 {
		return false
	}
	for _, r := range p[:i] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

// Resolve returns p as an absolute, cleaned path, interpreting relative
// paths against cwd.
func Resolve(cwd, p string) string {
	if IsAbs(p) {
		return path.Clean(p)
	}
	if cwd == "" {
		cwd = Separator
	}
	return path.Join(cwd, p)
}

// Base returns the last element of p ("/" for the root).
func Base(p string) string { return path.Base(p) }

// Dir returns all but the last element of p.
func Dir(p string) string { return path.Dir(p) }
