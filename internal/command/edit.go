package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"hdfsshell/internal/dfs"
)

const defaultEditor = "vim"

type noTerminalKey struct{}

// WithoutTerminal marks ctx as running without a terminal the user
// sits at, as on a daemon connection.  edit refuses to run there since
// the editor would take over the daemon's own stdin and stdout.
func WithoutTerminal(ctx context.Context) context.Context {
	return context.WithValue(ctx, noTerminalKey{}, true)
}

func hasTerminal(ctx context.Context) bool {
	none, _ := ctx.Value(noTerminalKey{}).(bool)
	return !none
}

// edit downloads a remote file, opens it in the editor and uploads it
// again with put -f if the editor changed it.
func edit(e *Env) (string, error) {
	if !hasTerminal(e.Ctx) {
		return "edit needs an interactive terminal; run it from hdfs-shell instead of a daemon connection", nil
	}
	p := firstField(e.Args)
	if p == "" {
		return "You have to define path param", nil
	}
	d := e.Dispatcher

	remote := dfs.Resolve(e.Session.CurrentDir(e.Ctx), p)
	fs, err := e.Session.FS(e.Ctx)
	if err != nil {
		return "", err
	}
	if !dfs.Exists(e.Ctx, fs, remote) {
		return fmt.Sprintf("Path %s does not exists. Invalid file?", remote), nil
	}

	name := dfs.Base(remote)
	local := filepath.Join(os.TempDir(), uuid.NewString()[:10]+"-"+name)
	defer os.Remove(local)

	if code := d.run(e, "get", []string{remote, local}); code != 0 {
		return fmt.Sprintf("Failed to edit file: get finished with result code %d", code), nil
	}
	before, err := snapshot(local)
	if err != nil {
		return "Failed to edit file: " + err.Error(), nil
	}

	argv := strings.Fields(d.Opts.Editor)
	if len(argv) == 0 {
		argv = []string{defaultEditor}
	}
	d.Logger.Verbose("launching %s %s", strings.Join(argv, " "), local)
	err = d.launchEditor(e.Ctx, append(argv, local))
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		return "File " + name + " was NOT updated.", nil
	case err != nil:
		return "Failed to edit file: " + err.Error(), nil
	}

	after, err := snapshot(local)
	if err != nil {
		return "Failed to edit file: " + err.Error(), nil
	}
	if after.equal(before) {
		return "File " + name + " was NOT updated.", nil
	}

	if code := d.run(e, "put", []string{"-f", local, remote}); code != 0 {
		return fmt.Sprintf("Failed to edit file: put finished with result code %d", code), nil
	}
	d.Logger.Info("file %s was updated", remote)
	return "File " + name + " was updated successfully.", nil
}

type fileState struct {
	modTime int64
	data    []byte
}

func snapshot(p string) (fileState, error) {
	fi, err := os.Stat(p)
	if err != nil {
		return fileState{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return fileState{}, err
	}
	return fileState{modTime: fi.ModTime().UnixNano(), data: data}, nil
}

func (s fileState) equal(o fileState) bool {
	return s.modTime == o.modTime && bytes.Equal(s.data, o.data)
}

// runEditor runs the editor attached to the process terminal.
func runEditor(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
