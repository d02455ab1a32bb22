// Package memfs is an in-memory filesystem backend.  It implements the
// whole dfs boundary (Connector, FileSystem, GroupResolver and Runner)
// so the shell can run without a cluster: it backs the test suites and
// the --fs mem sandbox mode.
package memfs

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"hdfsshell/internal/dfs"
	sherr "hdfsshell/internal/errors"
)

const (
	defaultDirMode  os.FileMode = 0o755
	defaultFileMode os.FileMode = 0o644
	defaultGroup                = "supergroup"
)

type node struct {
	name     string
	dir      bool
	data     []byte
	owner    string
	group    string
	mode     os.FileMode
	mtime    time.Time
	rep      int
	acl      []string
	xattrs   map[string]string
	children map[string]*node
}

// FS is a concurrency-safe in-memory tree.
type FS struct {
	mu          sync.RWMutex
	root        *node
	groups      map[string][]string
	defaultUser string
	usersRoot   string
	now         func() time.Time
}

// Option configures an FS.
type Option func(*FS)

// WithDefaultUser sets the identity used when Connect receives "".
func WithDefaultUser(name string) Option { return func(f *FS) { f.defaultUser = name } }

// WithClock overrides the modification-time source.
func WithClock(now func() time.Time) Option { return func(f *FS) { f.now = now } }

// WithUsersRoot changes the parent of home directories (default /user).
func WithUsersRoot(p string) Option { return func(f *FS) { f.usersRoot = path.Clean(p) } }

// New returns a tree containing /, /tmp and the users root.
func New(opts ...Option) *FS {
	f := &FS{
		groups:      make(map[string][]string),
		defaultUser: "hdfs",
		usersRoot:   "/user",
		now:         time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	f.root = f.newNode("", true, "hdfs")
	f.mustMkdir("/tmp", "hdfs")
	f.root.children["tmp"].mode = 0o777
	f.mustMkdir(f.usersRoot, "hdfs")
	return f
}

// AddUser registers a principal with its groups and creates its home
// directory.
func (f *FS) AddUser(name string, groups ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[name] = append([]string(nil), groups...)
	f.mustMkdirLocked(path.Join(f.usersRoot, name), name)
}

// MkdirAll creates p and any missing parents, owned by owner.
func (f *FS) MkdirAll(p, owner string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mustMkdirLocked(p, owner)
}

// WriteFile creates or replaces the file at p, creating parents.
func (f *FS) WriteFile(p string, data []byte, owner string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = path.Clean(p)
	f.mustMkdirLocked(path.Dir(p), owner)
	parent, _ := f.lookup(path.Dir(p))
	n := f.newNode(path.Base(p), false, owner)
	n.data = append([]byte(nil), data...)
	parent.children[n.name] = n
}

// ReadFile returns a copy of the file contents at p.
func (f *FS) ReadFile(p string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n, ok := f.lookup(p)
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, sherr.ErrNoSuchPath)
	}
	if n.dir {
		return nil, fmt.Errorf("%s: is a directory", p)
	}
	return append([]byte(nil), n.data...), nil
}

// Connect returns a handle bound to user; "" selects the default user.
// Like HDFS simple authentication, any name is accepted.
func (f *FS) Connect(_ context.Context, user string) (dfs.FileSystem, error) {
	if user == "" {
		user = f.defaultUser
	}
	return &handle{fs: f, user: user}, nil
}

// Groups returns the groups registered with AddUser.
func (f *FS) Groups(_ context.Context, user string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.groups[user]...), nil
}

// ── tree helpers (callers hold f.mu) ─────────────────────────────────

func (f *FS) newNode(name string, dir bool, owner string) *node {
	n := &node{name: name, dir: dir, owner: owner, group: defaultGroup, mtime: f.now(), rep: 3}
	if dir {
		n.mode = defaultDirMode
		n.rep = 0
		n.children = make(map[string]*node)
	} else {
		n.mode = defaultFileMode
	}
	return n
}

func (f *FS) lookup(p string) (*node, bool) {
	p = path.Clean(p)
	if !dfs.IsAbs(p) {
		return nil, false
	}
	n := f.root
	if p == "/" {
		return n, true
	}
	for _, elem := range strings.Split(p[1:], "/") {
		if !n.dir {
			return nil, false
		}
		child, ok := n.children[elem]
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

func (f *FS) mustMkdir(p, owner string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mustMkdirLocked(p, owner)
}

func (f *FS) mustMkdirLocked(p, owner string) {
	if err := f.mkdirLocked(p, owner, true); err != nil {
		panic(err)
	}
}

func (f *FS) mkdirLocked(p, owner string, parents bool) error {
	p = path.Clean(p)
	if p == "/" {
		return nil
	}
	n := f.root
	elems := strings.Split(p[1:], "/")
	for i, elem := range elems {
		child, ok := n.children[elem]
		switch {
		case ok && !child.dir:
			return fmt.Errorf("`%s': Is not a directory", "/"+strings.Join(elems[:i+1], "/"))
		case ok:
		case !parents && i < len(elems)-1:
			return fmt.Errorf("`%s': No such file or directory", path.Dir(p))
		default:
			child = f.newNode(elem, true, owner)
			n.children[elem] = child
			n.mtime = f.now()
		}
		n = child
	}
	return nil
}

func status(p string, n *node) dfs.FileStatus {
	p = path.Clean(p)
	return dfs.FileStatus{
		Path:    p,
		Name:    path.Base(p),
		IsDir:   n.dir,
		Size:    int64(len(n.data)),
		Owner:   n.owner,
		Group:   n.group,
		Mode:    n.fileMode(),
		ModTime: n.mtime,
	}
}

func (n *node) fileMode() os.FileMode {
	if n.dir {
		return n.mode | os.ModeDir
	}
	return n.mode
}

func sortedChildren(n *node) []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ── handle ───────────────────────────────────────────────────────────

type handle struct {
	fs   *FS
	user string
}

func (h *handle) User() string { return h.user }

func (h *handle) Home() string { return path.Join(h.fs.usersRoot, h.user) }

func (h *handle) Stat(_ context.Context, name string) (dfs.FileStatus, error) {
	h.fs.mu.RLock()
	defer h.fs.mu.RUnlock()
	n, ok := h.fs.lookup(name)
	if !ok {
		return dfs.FileStatus{}, fmt.Errorf("%s: %w", name, sherr.ErrNoSuchPath)
	}
	return status(name, n), nil
}

func (h *handle) ReadDir(_ context.Context, name string) ([]dfs.FileStatus, error) {
	h.fs.mu.RLock()
	defer h.fs.mu.RUnlock()
	n, ok := h.fs.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, sherr.ErrNoSuchPath)
	}
	if !n.dir {
		return []dfs.FileStatus{status(name, n)}, nil
	}
	out := make([]dfs.FileStatus, 0, len(n.children))
	for _, child := range sortedChildren(n) {
		out = append(out, status(path.Join(name, child), n.children[child]))
	}
	return out, nil
}

func (h *handle) Close() error { return nil }
