// Package config defines the runtime configuration for hdfs-shell and
// provides helpers for parsing gateway specifications.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	sherr "hdfsshell/internal/errors"
)

// Backend names accepted by --fs.
const (
	BackendHDFS = "hdfs"
	BackendMem  = "mem"
)

// Config holds every tuneable for a single hdfs-shell process.
type Config struct {
	// ── Mode ─────────────────────────────────────────────────────────
	Daemon        bool
	Client        bool
	SocketPath    string
	MaxConns      int  // 0 = no ceiling
	SharedSession bool // one session across all daemon connections

	// ── Filesystem ───────────────────────────────────────────────────
	Backend          string
	Namenodes        []string
	User             string
	HDFSBin          string
	SuperGroups      []string
	UsersRoot        string
	LocalMountPrefix string

	// ── SSH gateway ──────────────────────────────────────────────────
	GatewaySpec    string // raw user@host[:port] from --gateway
	GatewayEnabled bool
	GatewayUser    string
	GatewayHost    string
	GatewayPort    int
	RemoteExec     bool // run the hdfs CLI on the gateway instead of locally
	SSHKeyPath     string
	SSHPassword    bool
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Shell ────────────────────────────────────────────────────────
	Prompt       string
	NoBanner     bool
	Editor       string
	ShowExitCode bool
	ConfigPath   string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		SocketPath:       DefaultSocketPath,
		Backend:          BackendHDFS,
		HDFSBin:          DefaultHDFSBin,
		SuperGroups:      []string{DefaultSuperGroup},
		UsersRoot:        DefaultUsersRoot,
		LocalMountPrefix: DefaultLocalMountPrefix,
		Prompt:           DefaultPrompt,
		GatewayPort:      DefaultSSHPort,
	}
}

// ── Gateway-spec parser ──────────────────────────────────────────────

// gatewayRe matches [user@]host[:port].
var gatewayRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseGatewaySpec extracts user, host, and port from a string such as
// "admin@edge.example.com:2222".  Port defaults to 22.
func ParseGatewaySpec(spec string) (user, host string, port int, err error) {
	m := gatewayRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid gateway spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid gateway port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("gateway host is required")
	}
	return user, host, port, nil
}

// ResolveGateway parses GatewaySpec into the individual gateway fields.
func (c *Config) ResolveGateway() error {
	if c.GatewaySpec == "" {
		return nil
	}
	user, host, port, err := ParseGatewaySpec(c.GatewaySpec)
	if err != nil {
		return &sherr.ConfigError{Field: "gateway", Value: c.GatewaySpec, Message: err.Error()}
	}
	c.GatewayEnabled = true
	c.GatewayUser = user
	c.GatewayHost = host
	c.GatewayPort = port
	return nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Daemon && c.Client {
		return &sherr.ConfigError{
			Field:   "client",
			Message: "--daemon and --client are mutually exclusive",
			Hint:    "start the daemon in one process and connect with --client from another",
		}
	}
	if (c.Daemon || c.Client) && c.SocketPath == "" {
		return &sherr.ConfigError{
			Field:   "socket",
			Message: "a socket path is required",
			Hint:    "the default is " + DefaultSocketPath,
		}
	}
	if c.MaxConns < 0 {
		return &sherr.ConfigError{
			Field:   "max-conns",
			Value:   c.MaxConns,
			Message: "must not be negative",
			Hint:    "use 0 for no connection ceiling",
		}
	}

	switch c.Backend {
	case BackendHDFS:
		if len(c.Namenodes) == 0 && !c.Client && !hadoopConfigured() {
			return &sherr.ConfigError{
				Field:   "namenode",
				Message: "no namenode address configured",
				Hint:    "set --namenode host:8020, HADOOP_CONF_DIR, or use --fs mem",
			}
		}
	case BackendMem:
	default:
		return &sherr.ConfigError{
			Field:   "fs",
			Value:   c.Backend,
			Message: "unknown filesystem backend",
			Hint:    "use hdfs or mem",
		}
	}

	if c.RemoteExec && !c.GatewayEnabled {
		return &sherr.ConfigError{
			Field:   "remote-exec",
			Message: "remote execution needs an SSH gateway",
			Hint:    "add --gateway user@edge-node",
		}
	}
	if c.GatewayEnabled && c.GatewayHost == "" {
		return &sherr.ConfigError{Field: "gateway", Message: "gateway host is required"}
	}
	if c.Daemon && c.SSHPassword {
		return &sherr.ConfigError{
			Field:   "ssh-password",
			Message: "a daemon cannot prompt for the gateway password",
			Hint:    "use --ssh-key or --ssh-agent with --daemon",
		}
	}
	return nil
}

// hadoopConfigured reports whether namenode addresses can be read from
// the Hadoop configuration directory instead.
func hadoopConfigured() bool {
	return os.Getenv("HADOOP_CONF_DIR") != "" || os.Getenv("HADOOP_HOME") != ""
}
