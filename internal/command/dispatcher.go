package command

import (
	"context"
	"fmt"
	"io"
	"strings"

	"hdfsshell/internal/dfs"
	sherr "hdfsshell/internal/errors"
	"hdfsshell/internal/metrics"
	"hdfsshell/internal/session"
	"hdfsshell/util"
)

// DefaultSuperGroups always grant the root prompt indicator, in
// addition to the configured superuser group.
var DefaultSuperGroups = []string{"Administrators", "hdfs", "root"}

// Options configures a Dispatcher.
type Options struct {
	AppName     string
	Version     string
	MountPrefix string   // stripped from arguments, e.g. "/hdfs/"
	SuperGroups []string // dfs.permissions.superusergroup values
	Editor      string   // command line used by edit; "" means vim
}

// Dispatcher resolves command lines against a Registry and executes
// them.  It holds no per-session state, so one Dispatcher serves every
// connection.
type Dispatcher struct {
	Registry *Registry
	Runner   dfs.Runner
	Groups   dfs.GroupResolver // optional
	Metrics  *metrics.Collector
	Logger   *util.Logger
	Opts     Options

	// launchEditor opens a local file in the user's editor.
	launchEditor func(ctx context.Context, argv []string) error
}

// NewDispatcher returns a Dispatcher with every built-in command
// registered.
func NewDispatcher(runner dfs.Runner, groups dfs.GroupResolver, opts Options, m *metrics.Collector, logger *util.Logger) *Dispatcher {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	d := &Dispatcher{
		Registry:     NewRegistry(),
		Runner:       runner,
		Groups:       groups,
		Metrics:      m,
		Logger:       logger,
		Opts:         opts,
		launchEditor: runEditor,
	}
	d.Registry.MustRegister(dfsCommands()...)
	d.Registry.MustRegister(contextCommands()...)
	d.Registry.MustRegister(shellCommands()...)
	return d
}

// Execute runs one command line for sess.  Filesystem output goes to
// out and errOut as it is produced; the returned string is the
// command's result text, empty when there is nothing to print.  User
// input problems are returned as text.  The error is non-nil only for
// faults: a fail-fast OperationError, a backend failure, or ErrExit.
func (d *Dispatcher) Execute(ctx context.Context, sess *session.Session, line string, out, errOut io.Writer) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	desc, args, ok := d.Registry.Lookup(line)
	if !ok {
		name, _, _ := strings.Cut(line, " ")
		return "Unknown command " + name, nil
	}
	if args == "" && !desc.AllowNoArgs {
		return desc.Description(), nil
	}

	env := &Env{
		Ctx:        ctx,
		Session:    sess,
		Dispatcher: d,
		Name:       desc.Name,
		Args:       args,
		Out:        dfs.Discard(out),
		Err:        dfs.Discard(errOut),
	}
	result, err := desc.Handler(env)
	if err != nil && sherr.IsUsage(err) {
		return err.Error(), nil
	}
	return result, err
}

// RunExternal forwards command to the Runner with the session's working
// directory and principal.  The result code is annotated when the
// session shows exit codes, and becomes an OperationError when it is
// non-zero under fail-fast.
func (d *Dispatcher) RunExternal(e *Env, command string, args []string) (string, error) {
	code := d.run(e, command, d.stripMountPrefix(args))

	if e.Session.ShowExitCode() {
		w := e.Out
		if code != 0 {
			w = e.Err
		}
		fmt.Fprintf(w, "Exit code = %d\n", code)
	}
	if code != 0 && e.Session.FailFast() {
		return "", &sherr.OperationError{Command: command, Code: code}
	}
	return "", nil
}

func (d *Dispatcher) run(e *Env, command string, args []string) int {
	inv := dfs.Invocation{
		Command:    command,
		Args:       args,
		WorkingDir: e.Session.CurrentDir(e.Ctx),
		User:       e.Session.Principal(e.Ctx),
		Stdout:     e.Out,
		Stderr:     e.Err,
	}
	code := d.Runner.Run(e.Ctx, inv)
	d.Metrics.CommandExecuted(code)
	d.Logger.Debug("%s %s -> %d", command, strings.Join(args, " "), code)
	return code
}

// stripMountPrefix rewrites local-mount notation (/hdfs/data) to the
// remote path (/data).
func (d *Dispatcher) stripMountPrefix(args []string) []string {
	prefix := d.Opts.MountPrefix
	if prefix == "" {
		return args
	}
	keep := len(strings.TrimSuffix(prefix, "/"))
	out := make([]string, len(args))
	for i, a := range args {
		if strings.HasPrefix(a, prefix) {
			a = a[keep:]
		}
		out[i] = a
	}
	return out
}

// IsRoot reports whether the session's principal is a superuser: a
// member of a superuser group, or, when its groups cannot be resolved,
// literally root or hdfs.
func (d *Dispatcher) IsRoot(ctx context.Context, sess *session.Session) bool {
	user := sess.Principal(ctx)
	groups := d.groupsOf(ctx, user)
	if len(groups) == 0 {
		return user == "root" || user == "hdfs"
	}
	super := make(map[string]bool)
	for _, g := range append(append([]string(nil), d.Opts.SuperGroups...), DefaultSuperGroups...) {
		super[g] = true
	}
	for _, g := range groups {
		if super[g] {
			return true
		}
	}
	return false
}

func (d *Dispatcher) groupsOf(ctx context.Context, user string) []string {
	if d.Groups == nil || user == "" {
		return nil
	}
	groups, err := d.Groups.Groups(ctx, user)
	if err != nil {
		d.Logger.Debug("groups for %s: %v", user, err)
		return nil
	}
	return groups
}
