// Package session holds the mutable shell state a command needs for
// context: the working directory, the home directory, the active
// principal and the output flags.
//
// A Session is an explicit value passed through dispatch.  The daemon
// creates one per connection unless it runs with a shared session, in
// which case every connection works on the same value: accessors are
// serialized, but nothing makes a sequence of commands atomic, so one
// client may observe another client's cd.
package session

import (
	"context"
	"fmt"
	"path"
	"sync"

	"hdfsshell/internal/dfs"
	sherr "hdfsshell/internal/errors"
)

// Options seeds a Session.
type Options struct {
	// Principal is the initial user; "" lets the backend pick.
	Principal string
	// UsersRoot is the parent of home directories, checked by
	// SwitchPrincipal (default /user).
	UsersRoot    string
	ShowExitCode bool
	FailFast     bool
}

// Session is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	connector dfs.Connector
	usersRoot string

	fs         dfs.FileSystem
	principal  string
	currentDir string
	homeDir    string

	showExitCode bool
	failFast     bool
}

// New returns a Session that connects lazily through connector.
func New(connector dfs.Connector, opts Options) *Session {
	if opts.UsersRoot == "" {
		opts.UsersRoot = "/user"
	}
	return &Session{
		connector:    connector,
		usersRoot:    path.Clean(opts.UsersRoot),
		principal:    opts.Principal,
		showExitCode: opts.ShowExitCode,
		failFast:     opts.FailFast,
	}
}

// FS returns the filesystem handle of the active principal, connecting
// on first use.
func (s *Session) FS(ctx context.Context) (dfs.FileSystem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fsLocked(ctx)
}

func (s *Session) fsLocked(ctx context.Context) (dfs.FileSystem, error) {
	if s.fs != nil {
		return s.fs, nil
	}
	fs, err := s.connector.Connect(ctx, s.principal)
	if err != nil {
		return nil, err
	}
	s.fs = fs
	s.principal = fs.User()
	return fs, nil
}

// Principal returns the active user name, or "" if the filesystem is
// unreachable and no principal was configured.
func (s *Session) Principal(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == "" {
		s.fsLocked(ctx) //nolint:errcheck
	}
	return s.principal
}

// CurrentDir returns the absolute working directory, resolving it on
// first call from the filesystem's view of ".".  Resolution failures
// return "" and are retried on the next call.
func (s *Session) CurrentDir(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentDirLocked(ctx)
}

func (s *Session) currentDirLocked(ctx context.Context) string {
	if s.currentDir != "" {
		return s.currentDir
	}
	fs, err := s.fsLocked(ctx)
	if err != nil {
		return ""
	}
	matches, err := dfs.Glob(ctx, fs, dfs.CurrentDirMarker, "")
	if err != nil || len(matches) == 0 {
		return ""
	}
	s.currentDir = matches[0].Path
	if s.homeDir == "" {
		s.homeDir = s.currentDir
	}
	return s.currentDir
}

// HomeDir returns the working directory as first resolved for the
// active principal, or "." if it never resolved.
func (s *Session) HomeDir(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.homeDir == "" {
		s.currentDirLocked(ctx)
	}
	if s.homeDir == "" {
		return dfs.CurrentDirMarker
	}
	return s.homeDir
}

// ChangeDirectory moves to p: "" means home, a relative p resolves
// against the current directory.  The target must be an existing
// directory; on failure the state is unchanged and the error wraps
// errors.ErrNoSuchPath.
func (s *Session) ChangeDirectory(ctx context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cwd := s.currentDirLocked(ctx)
	var target string
	switch {
	case p == "":
		target = s.homeDir
		if target == "" {
			return fmt.Errorf("home directory: %w", sherr.ErrNoSuchPath)
		}
	default:
		target = dfs.Resolve(cwd, p)
	}

	fs, err := s.fsLocked(ctx)
	if err != nil {
		return err
	}
	if !dfs.IsDir(ctx, fs, target) {
		return fmt.Errorf("%s: %w", p, sherr.ErrNoSuchPath)
	}
	s.currentDir = target
	return nil
}

// SwitchPrincipal makes name the active user.  If the users root exists,
// name must have a directory under it.  The working and home
// directories re-resolve under the new identity.
func (s *Session) SwitchPrincipal(ctx context.Context, name string) error {
	if name == "" {
		return sherr.Usagef("No username is defined! ")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fs, err := s.fsLocked(ctx)
	if err != nil {
		return err
	}
	if dfs.IsDir(ctx, fs, s.usersRoot) && !dfs.IsDir(ctx, fs, path.Join(s.usersRoot, name)) {
		return sherr.Usagef("User %s does not exist!", name)
	}

	next, err := s.connector.Connect(ctx, name)
	if err != nil {
		return err
	}
	fs.Close() //nolint:errcheck
	s.fs = next
	s.principal = next.User()
	s.currentDir = ""
	s.homeDir = ""
	return nil
}

// ShowExitCode reports whether commands annotate their result code.
func (s *Session) ShowExitCode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showExitCode
}

// SetShowExitCode toggles result code annotation.
func (s *Session) SetShowExitCode(on bool) {
	s.mu.Lock()
	s.showExitCode = on
	s.mu.Unlock()
}

// FailFast reports whether a non-zero result code becomes an error.
func (s *Session) FailFast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failFast
}

// SetFailFast toggles fail-fast.
func (s *Session) SetFailFast(on bool) {
	s.mu.Lock()
	s.failFast = on
	s.mu.Unlock()
}

// UsersRoot returns the parent of home directories.
func (s *Session) UsersRoot() string { return s.usersRoot }

// Close releases the filesystem handle.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fs == nil {
		return nil
	}
	err := s.fs.Close()
	s.fs = nil
	return err
}
