// Package dfs defines the boundary between the shell and the remote
// filesystem.  The shell never implements filesystem semantics itself:
// metadata lookups go through a FileSystem bound to one principal, and
// every user-visible operation is an Invocation handed to a Runner,
// which reports a numeric result code and writes its text output to the
// sinks carried by the invocation.
package dfs

import (
	"context"
	"io"
	"os"
	"time"
)

// CurrentDirMarker is the literal that resolves to the working directory.
const CurrentDirMarker = "."

// FileStatus describes one remote entry.
type FileStatus struct {
	Path    string // absolute, cleaned
	Name    string // last path element
	IsDir   bool
	Size    int64
	Owner   string
	Group   string
	Mode    os.FileMode
	ModTime time.Time
}

// FileSystem is a metadata handle for one principal.  All paths are
// absolute; callers resolve relative paths first.
type FileSystem interface {
	// User returns the effective principal name.
	User() string
	// Home returns the principal's home directory, which is also the
	// working directory a fresh session starts in.
	Home() string
	Stat(ctx context.Context, name string) (FileStatus, error)
	ReadDir(ctx context.Context, name string) ([]FileStatus, error)
	Close() error
}

// Connector opens FileSystem handles.  An empty user selects the
// backend's default identity.
type Connector interface {
	Connect(ctx context.Context, user string) (FileSystem, error)
}

// GroupResolver is implemented by backends that can map a principal to
// its groups.
type GroupResolver interface {
	Groups(ctx context.Context, user string) ([]string, error)
}

// Invocation is one filesystem command with everything it needs to run
// in isolation: relative paths resolve against WorkingDir, and output
// goes only to Stdout/Stderr.
type Invocation struct {
	Command    string   // e.g. "ls", without the leading dash
	Args       []string // already split and rewritten
	WorkingDir string
	User       string
	Stdout     io.Writer
	Stderr     io.Writer
}

// Runner executes filesystem commands.  The returned code follows the
// Hadoop FsShell convention: 0 on success, non-zero on failure.
// Run never returns an error; launch failures are reported on Stderr
// with a non-zero code.
type Runner interface {
	Run(ctx context.Context, inv Invocation) int
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, inv Invocation) int

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, inv Invocation) int { return f(ctx, inv) }

// Exists reports whether name exists on fsys.  Lookup failures count as
// absence.
func Exists(ctx context.Context, fsys FileSystem, name string) bool {
	_, err := fsys.Stat(ctx, name)
	return err == nil
}

// IsDir reports whether name exists and is a directory.
func IsDir(ctx context.Context, fsys FileSystem, name string) bool {
	st, err := fsys.Stat(ctx, name)
	return err == nil && st.IsDir
}

// Discard returns w, or io.Discard when w is nil.
func Discard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
