package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"hdfsshell/internal/dfs"
	"hdfsshell/internal/dfs/memfs"
	sherr "hdfsshell/internal/errors"
)

func newTestSession(t *testing.T) (*Session, *memfs.FS) {
	t.Helper()
	fs := memfs.New()
	fs.AddUser("alice", "analysts")
	fs.AddUser("bob")
	fs.MkdirAll("/user/alice/relative", "alice")
	return New(fs, Options{Principal: "alice"}), fs
}

func TestSession_LazyResolution(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	if got := s.CurrentDir(ctx); got != "/user/alice" {
		t.Errorf("CurrentDir = %q, want /user/alice", got)
	}
	if got := s.HomeDir(ctx); got != "/user/alice" {
		t.Errorf("HomeDir = %q, want /user/alice", got)
	}
	if got := s.Principal(ctx); got != "alice" {
		t.Errorf("Principal = %q", got)
	}
}

func TestSession_DefaultPrincipal(t *testing.T) {
	fs := memfs.New(memfs.WithDefaultUser("hdfs"))
	s := New(fs, Options{})
	if got := s.Principal(context.Background()); got != "hdfs" {
		t.Errorf("Principal = %q, want backend default", got)
	}
}

func TestSession_ChangeDirectory(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	if err := s.ChangeDirectory(ctx, "relative"); err != nil {
		t.Fatalf("cd relative: %v", err)
	}
	if got := s.CurrentDir(ctx); got != "/user/alice/relative" {
		t.Errorf("after cd relative: %q", got)
	}

	err := s.ChangeDirectory(ctx, "missing")
	if !sherr.Is(err, sherr.ErrNoSuchPath) {
		t.Fatalf("cd missing: got %v, want ErrNoSuchPath", err)
	}
	if got := s.CurrentDir(ctx); got != "/user/alice/relative" {
		t.Errorf("failed cd must not change directory, got %q", got)
	}

	if err := s.ChangeDirectory(ctx, "/tmp"); err != nil {
		t.Fatalf("cd /tmp: %v", err)
	}
	if err := s.ChangeDirectory(ctx, ""); err != nil {
		t.Fatalf("cd home: %v", err)
	}
	if got := s.CurrentDir(ctx); got != "/user/alice" {
		t.Errorf("cd with no argument should go home, got %q", got)
	}
	if got := s.HomeDir(ctx); got != "/user/alice" {
		t.Errorf("home must not follow cd, got %q", got)
	}
}

func TestSession_ChangeDirectoryToFile(t *testing.T) {
	s, fs := newTestSession(t)
	fs.WriteFile("/user/alice/file.txt", []byte("x"), "alice")
	if err := s.ChangeDirectory(context.Background(), "file.txt"); !sherr.Is(err, sherr.ErrNoSuchPath) {
		t.Errorf("cd to a file: got %v", err)
	}
}

func TestSession_SwitchPrincipal(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	s.ChangeDirectory(ctx, "/tmp") //nolint:errcheck

	if err := s.SwitchPrincipal(ctx, "bob"); err != nil {
		t.Fatalf("su bob: %v", err)
	}
	if got := s.Principal(ctx); got != "bob" {
		t.Errorf("Principal = %q", got)
	}
	if got := s.CurrentDir(ctx); got != "/user/bob" {
		t.Errorf("directories should re-resolve for the new user, got %q", got)
	}
	if got := s.HomeDir(ctx); got != "/user/bob" {
		t.Errorf("HomeDir = %q", got)
	}
}

func TestSession_SwitchPrincipalErrors(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	tests := []struct {
		name string
		want string
	}{
		{"", "No username is defined! "},
		{"mallory", "User mallory does not exist!"},
	}
	for _, tt := range tests {
		err := s.SwitchPrincipal(ctx, tt.name)
		if !sherr.IsUsage(err) || err.Error() != tt.want {
			t.Errorf("su %q: got %v, want usage error %q", tt.name, err, tt.want)
		}
	}
	if got := s.Principal(ctx); got != "alice" {
		t.Errorf("failed su must keep the principal, got %q", got)
	}
}

func TestSession_SwitchPrincipalWithoutUsersRoot(t *testing.T) {
	fs := memfs.New(memfs.WithUsersRoot("/home"))
	s := New(fs, Options{Principal: "alice", UsersRoot: "/missing"})
	if err := s.SwitchPrincipal(context.Background(), "anyone"); err != nil {
		t.Errorf("without a users root any name is accepted, got %v", err)
	}
}

type failingConnector struct{}

func (failingConnector) Connect(context.Context, string) (dfs.FileSystem, error) {
	return nil, fmt.Errorf("namenode unreachable")
}

func TestSession_UnreachableFilesystem(t *testing.T) {
	s := New(failingConnector{}, Options{})
	ctx := context.Background()
	if got := s.CurrentDir(ctx); got != "" {
		t.Errorf("CurrentDir = %q, want empty", got)
	}
	if got := s.HomeDir(ctx); got != "." {
		t.Errorf("HomeDir = %q, want .", got)
	}
}

func TestSession_Flags(t *testing.T) {
	s := New(memfs.New(), Options{ShowExitCode: true})
	if !s.ShowExitCode() || s.FailFast() {
		t.Fatal("initial flags not applied")
	}
	s.SetShowExitCode(false)
	s.SetFailFast(true)
	if s.ShowExitCode() || !s.FailFast() {
		t.Error("setters had no effect")
	}
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := "/tmp"
			if i%2 == 0 {
				target = "/user/alice/relative"
			}
			for j := 0; j < 50; j++ {
				s.ChangeDirectory(ctx, target) //nolint:errcheck
				s.CurrentDir(ctx)
				s.SetShowExitCode(j%2 == 0)
			}
		}(i)
	}
	wg.Wait()

	switch got := s.CurrentDir(ctx); got {
	case "/tmp", "/user/alice/relative":
	default:
		t.Errorf("CurrentDir = %q after concurrent cd", got)
	}
}
