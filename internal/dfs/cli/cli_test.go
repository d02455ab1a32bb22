package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	"hdfsshell/internal/dfs"
	"hdfsshell/util"
)

type launch struct {
	argv []string
	env  map[string]string
}

// fakeLauncher records launches and replays a canned result.
type fakeLauncher struct {
	calls  []launch
	stdout string
	code   int
	err    error
}

func (f *fakeLauncher) Launch(_ context.Context, argv []string, env map[string]string, stdout, _ io.Writer) (int, error) {
	f.calls = append(f.calls, launch{argv: argv, env: env})
	io.WriteString(stdout, f.stdout) //nolint:errcheck
	return f.code, f.err
}

func TestRunner_Run(t *testing.T) {
	fl := &fakeLauncher{stdout: "Found 0 items\n"}
	r := New("/opt/hadoop/bin/hdfs", fl, util.NewLogger(0))

	var out bytes.Buffer
	code := r.Run(context.Background(), dfs.Invocation{
		Command:    "ls",
		Args:       []string{"-R", "data"},
		WorkingDir: "/user/alice",
		User:       "alice",
		Stdout:     &out,
	})
	if code != 0 {
		t.Fatalf("code = %d", code)
	}
	want := []string{"/opt/hadoop/bin/hdfs", "dfs", "-ls", "-R", "/user/alice/data"}
	if !reflect.DeepEqual(fl.calls[0].argv, want) {
		t.Errorf("argv = %q, want %q", fl.calls[0].argv, want)
	}
	if fl.calls[0].env["HADOOP_USER_NAME"] != "alice" {
		t.Errorf("env = %v", fl.calls[0].env)
	}
	if out.String() != "Found 0 items\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestRunner_LaunchFailure(t *testing.T) {
	fl := &fakeLauncher{err: fmt.Errorf("executable file not found in $PATH")}
	r := New("", fl, util.NewLogger(0))

	var errOut bytes.Buffer
	code := r.Run(context.Background(), dfs.Invocation{Command: "ls", Stderr: &errOut})
	if code == 0 {
		t.Error("launch failure must be a non-zero code")
	}
	if !strings.Contains(errOut.String(), "hdfs: executable file not found") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestRunner_Groups(t *testing.T) {
	fl := &fakeLauncher{stdout: "alice : analysts hadoop\n"}
	r := New("hdfs", fl, util.NewLogger(0))

	groups, err := r.Groups(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(groups, []string{"analysts", "hadoop"}) {
		t.Errorf("groups = %v", groups)
	}
	if got := strings.Join(fl.calls[0].argv, " "); got != "hdfs groups alice" {
		t.Errorf("argv = %s", got)
	}

	fl.code = 1
	if _, err := r.Groups(context.Background(), "alice"); err == nil {
		t.Error("non-zero exit should be an error")
	}
}

func TestAbsolutize(t *testing.T) {
	const cwd = "/user/alice"
	tests := []struct {
		cmd  string
		args []string
		want []string
	}{
		{"ls", []string{"-d", "a", "/abs", "hdfs://nn/x"}, []string{"-d", "/user/alice/a", "/abs", "hdfs://nn/x"}},
		{"mv", []string{"a", "../b"}, []string{"/user/alice/a", "/user/b"}},
		{"chmod", []string{"-R", "755", "dir"}, []string{"-R", "755", "/user/alice/dir"}},
		{"chown", []string{"bob:staff", "f"}, []string{"bob:staff", "/user/alice/f"}},
		{"put", []string{"-f", "local.txt", "remote.txt"}, []string{"-f", "local.txt", "/user/alice/remote.txt"}},
		{"get", []string{"remote.txt", "local.txt"}, []string{"/user/alice/remote.txt", "local.txt"}},
		{"setfacl", []string{"-m", "user:bob:r-x", "dir"}, []string{"-m", "user:bob:r-x", "/user/alice/dir"}},
		{"setfattr", []string{"-n", "user.k", "-v", "v", "f"}, []string{"-n", "user.k", "-v", "v", "/user/alice/f"}},
		{"stat", []string{"%n %b", "f"}, []string{"%n %b", "/user/alice/f"}},
		{"stat", []string{"f"}, []string{"/user/alice/f"}},
		{"find", []string{"logs", "-name", "*.log"}, []string{"/user/alice/logs", "-name", "*.log"}},
		{"createSnapshot", []string{"dir", "s1"}, []string{"/user/alice/dir", "s1"}},
		{"expunge", nil, nil},
		{"ls", []string{"-R"}, []string{"-R", "/user/alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			got := Absolutize(tt.cmd, tt.args, cwd)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Absolutize(%s, %q) = %q, want %q", tt.cmd, tt.args, got, tt.want)
			}
		})
	}
}

func TestAbsolutize_NoWorkingDir(t *testing.T) {
	args := []string{"a"}
	if got := Absolutize("ls", args, ""); got[0] != "a" {
		t.Errorf("without a working dir args must pass through, got %q", got)
	}
}

type fakeRemote struct{ command string }

func (f *fakeRemote) Run(_ context.Context, command string, _, _ io.Writer) (int, error) {
	f.command = command
	return 3, nil
}

func TestGatewayLauncher(t *testing.T) {
	fr := &fakeRemote{}
	code, err := GatewayLauncher{Exec: fr}.Launch(context.Background(),
		[]string{"hdfs", "dfs", "-mkdir", "my dir"},
		map[string]string{"HADOOP_USER_NAME": "alice"}, io.Discard, io.Discard)
	if err != nil || code != 3 {
		t.Fatalf("code=%d err=%v", code, err)
	}
	if want := "HADOOP_USER_NAME=alice hdfs dfs -mkdir 'my dir'"; fr.command != want {
		t.Errorf("command = %s, want %s", fr.command, want)
	}
}

func TestParseGroups(t *testing.T) {
	in := "bob : staff\nalice : analysts\n"
	if got := ParseGroups(strings.NewReader(in), "alice"); !reflect.DeepEqual(got, []string{"analysts"}) {
		t.Errorf("got %v", got)
	}
	if got := ParseGroups(strings.NewReader(in), "carol"); got != nil {
		t.Errorf("unknown user: got %v", got)
	}
}
