package dfs

import (
	"context"
	"path"
	"sort"
	"strings"
)

// Glob returns the entries matching pattern, expanding one path element
// at a time with path.Match syntax.  A relative pattern resolves against
// cwd, or against fsys.Home() when cwd is empty; so Glob(".") yields the
// working directory itself.  No match is an empty result, not an error.
func Glob(ctx context.Context, fsys FileSystem, pattern, cwd string) ([]FileStatus, error) {
	if cwd == "" {
		cwd = fsys.Home()
	}
	abs := Resolve(cwd, pattern)
	if !hasMeta(abs) {
		st, err := fsys.Stat(ctx, abs)
		if err != nil {
			return nil, nil //nolint:nilerr // absence is an empty match
		}
		return []FileStatus{st}, nil
	}

	root, err := fsys.Stat(ctx, Separator)
	if err != nil {
		return nil, err
	}
	matches := []FileStatus{root}
	for _, elem := range strings.Split(strings.TrimPrefix(abs, Separator), Separator) {
		var next []FileStatus
		for _, m := range matches {
			if !m.IsDir {
				continue
			}
			if !hasMeta(elem) {
				if st, err := fsys.Stat(ctx, path.Join(m.Path, elem)); err == nil {
					next = append(next, st)
				}
				continue
			}
			entries, err := fsys.ReadDir(ctx, m.Path)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if ok, _ := path.Match(elem, e.Name); ok {
					next = append(next, e)
				}
			}
		}
		matches = next
		if len(matches) == 0 {
			return nil, nil
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Path < matches[j].Path })
	return matches, nil
}

func hasMeta(s string) bool { return strings.ContainsAny(s, `*?[\`) }
