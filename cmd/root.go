// Package cmd wires up the CLI flags and dispatches to the interactive
// shell, the single-shot runner, the daemon or the daemon client.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"hdfsshell/config"
	"hdfsshell/internal/command"
	"hdfsshell/internal/console"
	"hdfsshell/internal/daemon"
	"hdfsshell/internal/dfs"
	"hdfsshell/internal/dfs/cli"
	"hdfsshell/internal/dfs/hdfs"
	"hdfsshell/internal/dfs/memfs"
	"hdfsshell/internal/metrics"
	"hdfsshell/internal/session"
	"hdfsshell/internal/transport"
	"hdfsshell/tunnel"
	"hdfsshell/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X hdfsshell/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the appropriate hdfs-shell mode on the
// process streams.
func Execute(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

// flags holds the values that are not config fields.
type flags struct {
	showVersion bool
	showHelp    bool
	dryRun      bool
	// followPrompt is set when neither --prompt nor HDFS_SHELL_PROMPT
	// pins the prompt, so config file edits apply live.
	followPrompt bool
}

func newFlagSet(cfg *config.Config, f *flags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("hdfs-shell", flag.ContinueOnError)
	fs.SetOutput(stderr)
	// Everything after the first positional argument belongs to the
	// shell command, so "hdfs-shell ls -R /" keeps its -R.
	fs.SetInterspersed(false)

	// ── mode ─────────────────────────────────────────────────────
	fs.BoolVarP(&cfg.Daemon, "daemon", "d", cfg.Daemon, "Serve the shell on a unix socket")
	fs.BoolVar(&cfg.Client, "client", cfg.Client, "Forward stdin to a running daemon")
	fs.StringVarP(&cfg.SocketPath, "socket", "s", cfg.SocketPath, "Daemon socket path")
	fs.IntVar(&cfg.MaxConns, "max-conns", cfg.MaxConns, "Concurrent daemon connections (0 = no limit)")
	fs.BoolVar(&cfg.SharedSession, "shared-session", cfg.SharedSession, "Share one session across daemon connections")

	// ── filesystem ───────────────────────────────────────────────
	fs.StringVar(&cfg.Backend, "fs", cfg.Backend, "Filesystem backend: hdfs or mem")
	fs.StringSliceVarP(&cfg.Namenodes, "namenode", "n", cfg.Namenodes, "Namenode host:port (repeatable)")
	fs.StringVarP(&cfg.User, "user", "u", cfg.User, "Initial HDFS principal")
	fs.StringVar(&cfg.HDFSBin, "hdfs-bin", cfg.HDFSBin, "Hadoop CLI used to run dfs commands")
	fs.StringSliceVar(&cfg.SuperGroups, "superuser-group", cfg.SuperGroups, "Groups whose members are superusers")
	fs.StringVar(&cfg.UsersRoot, "users-root", cfg.UsersRoot, "Parent of home directories")
	fs.StringVar(&cfg.LocalMountPrefix, "mount-prefix", cfg.LocalMountPrefix, "Local mount prefix stripped from paths")

	// ── SSH gateway ──────────────────────────────────────────────
	fs.StringVarP(&cfg.GatewaySpec, "gateway", "g", cfg.GatewaySpec, "Reach the cluster via [user@]host[:port]")
	fs.BoolVar(&cfg.RemoteExec, "remote-exec", cfg.RemoteExec, "Run the hdfs CLI on the gateway")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── shell ────────────────────────────────────────────────────
	fs.StringVar(&cfg.Prompt, "prompt", cfg.Prompt, "Prompt pattern (bash PS1 syntax)")
	fs.BoolVar(&cfg.NoBanner, "no-banner", cfg.NoBanner, "Do not print the welcome banner")
	fs.StringVar(&cfg.Editor, "editor", cfg.Editor, "Editor launched by the edit command")
	fs.BoolVar(&cfg.ShowExitCode, "show-exit-code", cfg.ShowExitCode, "Print the exit code of every dfs command")
	fs.StringVar(&cfg.ConfigPath, "config", "", "Config file (default ~/"+config.DefaultConfigFile+")")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	fs.BoolVar(&f.showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&f.showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Validate the configuration and exit")

	fs.Usage = func() { printUsage(fs, stderr) }
	return fs
}

// loadConfig layers defaults, the config file, the environment and the
// flags, in increasing precedence.  The flags are parsed twice: once to
// find --config, once over the merged values.
func loadConfig(args []string, stderr io.Writer) (*config.Config, *flags, []string, error) {
	probe := config.New()
	// Errors are reported by the second parse.
	_ = newFlagSet(probe, &flags{}, io.Discard).Parse(args)

	cfg := config.New()
	if probe.ConfigPath != "" {
		if err := config.LoadFile(cfg, probe.ConfigPath, false); err != nil {
			return nil, nil, nil, err
		}
	} else if p := config.DefaultFilePath(); p != "" {
		if err := config.LoadFile(cfg, p, true); err != nil {
			return nil, nil, nil, err
		}
	}
	config.LoadFromEnv(cfg)

	configPath := cfg.ConfigPath
	f := &flags{}
	fs := newFlagSet(cfg, f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = configPath
	}
	if !fs.Changed("prompt") && os.Getenv("HDFS_SHELL_PROMPT") == "" {
		f.followPrompt = true
	}
	return cfg, f, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdin *os.File, stdout, stderr io.Writer) error {
	cfg, f, rest, err := loadConfig(args, stderr)
	if err != nil {
		return err
	}

	if f.showHelp {
		printUsage(newFlagSet(config.New(), &flags{}, stderr), stderr)
		return nil
	}
	if f.showVersion {
		fmt.Fprintf(stdout, "%s %s\n", config.AppName, version)
		return nil
	}

	if err := cfg.ResolveGateway(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if f.dryRun {
		fmt.Fprintf(stdout, "configuration ok: %s mode, %s backend\n", mode(cfg, rest), cfg.Backend)
		return nil
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	logger.SetOutput(stderr)

	if cfg.Client {
		c := &console.Client{
			Dialer:   &transport.UnixDialer{Timeout: config.DefaultConnTimeout},
			Socket:   cfg.SocketPath,
			Attempts: config.DefaultClientAttempts,
			Logger:   logger,
		}
		if stdin == nil {
			return c.Run(ctx, eofReader{}, stdout)
		}
		return c.Run(ctx, stdin, stdout)
	}

	var prompt tunnel.Prompter
	if !cfg.Daemon {
		prompt = tunnel.TerminalPrompter(stdin, stderr)
	}
	be, err := newBackend(cfg, prompt, logger)
	if err != nil {
		return err
	}
	defer be.Close()

	m := metrics.New()
	d := command.NewDispatcher(be.runner, be.groups, command.Options{
		AppName:     config.AppName,
		Version:     version,
		MountPrefix: cfg.LocalMountPrefix,
		SuperGroups: cfg.SuperGroups,
		Editor:      cfg.Editor,
	}, m, logger.Named("command"))
	newSession := func() *session.Session {
		return session.New(be.connector, session.Options{
			Principal:    cfg.User,
			UsersRoot:    cfg.UsersRoot,
			ShowExitCode: cfg.ShowExitCode,
		})
	}

	// ── dispatch ─────────────────────────────────────────────────
	switch {
	case cfg.Daemon:
		srv := daemon.New(daemon.Options{
			SocketPath:    cfg.SocketPath,
			MaxConns:      cfg.MaxConns,
			SharedSession: cfg.SharedSession,
		}, d, newSession, m, logger)
		return srv.Serve(ctx)

	case len(rest) > 0:
		sess := newSession()
		defer sess.Close() //nolint:errcheck
		return console.RunOnce(ctx, d, sess, rest, stdout, stderr)

	default:
		sess := newSession()
		defer sess.Close() //nolint:errcheck
		con := console.New(d, sess, console.Options{
			Prompt:   cfg.Prompt,
			AppName:  config.AppName,
			Version:  version,
			NoBanner: cfg.NoBanner,
		}, logger)

		if cfg.ConfigPath != "" && f.followPrompt {
			wctx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})
			go func() {
				defer close(done)
				if err := con.WatchPrompt(wctx, cfg.ConfigPath); err != nil {
					logger.Verbose("config watch: %v", err)
				}
			}()
			defer func() {
				cancel()
				<-done
			}()
		}
		if stdin == nil {
			return con.RunLines(ctx, eofReader{}, stdout, stderr)
		}
		return con.Run(ctx, stdin, stdout)
	}
}

// ── helpers ──────────────────────────────────────────────────────────

// backend bundles the filesystem pieces selected by --fs.
type backend struct {
	connector dfs.Connector
	runner    dfs.Runner
	groups    dfs.GroupResolver
	closers   []io.Closer
}

// newBackend builds the filesystem stack.  prompt may be nil, in which
// case gateway passwords and encrypted keys are refused.
func newBackend(cfg *config.Config, prompt tunnel.Prompter, logger *util.Logger) (*backend, error) {
	if cfg.Backend == config.BackendMem {
		user := cfg.User
		if user == "" {
			user = "hdfs"
		}
		fs := memfs.New(memfs.WithDefaultUser(user), memfs.WithUsersRoot(cfg.UsersRoot))
		fs.AddUser(user)
		logger.Verbose("using in-memory filesystem as %s", user)
		return &backend{connector: fs, runner: fs, groups: fs}, nil
	}

	be := &backend{}
	dial := (&transport.TCPDialer{Timeout: config.DefaultConnTimeout}).Dial
	var launcher cli.Launcher = cli.LocalLauncher{}
	if cfg.GatewayEnabled {
		gw := transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.GatewayUser,
			Host:          cfg.GatewayHost,
			Port:          cfg.GatewayPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   config.DefaultConnTimeout,
			Prompt:        prompt,
		}, logger.Named("gateway"))
		be.closers = append(be.closers, gw)
		dial = gw.Dial
		if cfg.RemoteExec {
			launcher = cli.GatewayLauncher{Exec: gw}
		}
	}

	conn, err := hdfs.NewConnector(hdfs.Options{
		Namenodes:   cfg.Namenodes,
		UsersRoot:   cfg.UsersRoot,
		DefaultUser: cfg.User,
		Dial:        dial,
	}, logger.Named("hdfs"))
	if err != nil {
		be.Close()
		return nil, err
	}
	// Cached namenode clients close before the gateway they dial through.
	be.closers = append([]io.Closer{conn}, be.closers...)

	runner := cli.New(cfg.HDFSBin, launcher, logger.Named("cli"))
	be.connector, be.runner, be.groups = conn, runner, runner
	return be, nil
}

func (b *backend) Close() {
	for _, c := range b.closers {
		c.Close() //nolint:errcheck
	}
}

func mode(cfg *config.Config, rest []string) string {
	switch {
	case cfg.Daemon:
		return "daemon"
	case cfg.Client:
		return "client"
	case len(rest) > 0:
		return "single-shot"
	default:
		return "interactive"
	}
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `HDFS-shell – interactive HDFS client v%s

Usage:
  hdfs-shell [options]                        Interactive shell
  hdfs-shell [options] <command> [args...]    Run one command
  hdfs-shell [options] script <file>          Run a script, stop at first failure
  hdfs-shell -d [options]                     Serve on a unix socket
  hdfs-shell --client [options]               Forward stdin to the daemon

Options:
`, version)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  hdfs-shell -n nn1:8020                      Connect to a namenode
  hdfs-shell -n nn1:8020 ls -R /data          One-off listing
  hdfs-shell -g admin@edge -n nn1:8020        Through an SSH gateway
  hdfs-shell --fs mem                         In-memory sandbox
  echo "ls /" | hdfs-shell --client           Ask a running daemon
`)
}
