// Package cli runs filesystem commands through the stock Hadoop client,
// `hdfs dfs -<command>`, either on this host or on an SSH gateway.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"hdfsshell/internal/dfs"
	"hdfsshell/tunnel"
	"hdfsshell/util"
)

// Launcher starts one process and waits for it.  A process that ran
// and failed reports its exit status with a nil error.
type Launcher interface {
	Launch(ctx context.Context, argv []string, env map[string]string, stdout, stderr io.Writer) (int, error)
}

// LocalLauncher runs processes on this host.
type LocalLauncher struct{}

// Launch implements Launcher with os/exec.
func (LocalLauncher) Launch(ctx context.Context, argv []string, env map[string]string, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return -1, err
	}
}

// RemoteExecutor runs a shell command line on a remote host.
// *transport.SSHDialer and *tunnel.SSHTunnel implement it.
type RemoteExecutor interface {
	Run(ctx context.Context, command string, stdout, stderr io.Writer) (int, error)
}

// GatewayLauncher runs processes on an SSH gateway.  The environment is
// passed as shell assignments in front of the command.
type GatewayLauncher struct {
	Exec RemoteExecutor
}

// Launch implements Launcher.
func (g GatewayLauncher) Launch(ctx context.Context, argv []string, env map[string]string, stdout, stderr io.Writer) (int, error) {
	var b strings.Builder
	for _, k := range sortedKeys(env) {
		b.WriteString(tunnel.Quote([]string{k + "=" + env[k]}))
		b.WriteByte(' ')
	}
	b.WriteString(tunnel.Quote(argv))
	return g.Exec.Run(ctx, b.String(), stdout, stderr)
}

// Runner implements dfs.Runner and dfs.GroupResolver on top of the
// Hadoop CLI.
type Runner struct {
	Bin      string // path to the hdfs launcher script
	Launcher Launcher
	Logger   *util.Logger
}

// New returns a Runner for bin using launcher.
func New(bin string, launcher Launcher, logger *util.Logger) *Runner {
	if bin == "" {
		bin = "hdfs"
	}
	if launcher == nil {
		launcher = LocalLauncher{}
	}
	return &Runner{Bin: bin, Launcher: launcher, Logger: logger}
}

// Run executes `hdfs dfs -<command> <args>` as inv.User.  The Hadoop
// client has no working directory of its own, so relative remote paths
// are made absolute against inv.WorkingDir first.
func (r *Runner) Run(ctx context.Context, inv dfs.Invocation) int {
	argv := append([]string{r.Bin, "dfs", "-" + inv.Command}, Absolutize(inv.Command, inv.Args, inv.WorkingDir)...)
	r.Logger.Debug("exec %s", strings.Join(argv, " "))

	code, err := r.Launcher.Launch(ctx, argv, r.env(inv.User), dfs.Discard(inv.Stdout), dfs.Discard(inv.Stderr))
	if err != nil {
		fmt.Fprintf(dfs.Discard(inv.Stderr), "-shell: %s: %v\n", r.Bin, err)
		return -1
	}
	return code
}

// Groups runs `hdfs groups <user>` and parses the `user : g1 g2` line.
func (r *Runner) Groups(ctx context.Context, user string) ([]string, error) {
	var out, errOut bytes.Buffer
	code, err := r.Launcher.Launch(ctx, []string{r.Bin, "groups", user}, r.env(user), &out, &errOut)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, fmt.Errorf("%s groups %s: exit %d: %s", r.Bin, user, code, strings.TrimSpace(errOut.String()))
	}
	return ParseGroups(&out, user), nil
}

func (r *Runner) env(user string) map[string]string {
	if user == "" {
		return nil
	}
	return map[string]string{"HADOOP_USER_NAME": user}
}

// ParseGroups extracts the groups of user from `hdfs groups` output.
func ParseGroups(rd io.Reader, user string) []string {
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		name, groups, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(name) != user {
			continue
		}
		return strings.Fields(groups)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
