package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// AppName is substituted for \s in prompt patterns.
	AppName = "hdfs-shell"

	// DefaultSocketPath is where the daemon listens when nothing else
	// is configured.
	DefaultSocketPath = "/var/tmp/hdfs-shell.sock"

	// DefaultConfigFile is looked up in the user's home directory.
	DefaultConfigFile = ".hdfs-shell.yaml"

	// DefaultPrompt renders "user@host cwd$ " in cyan and yellow.
	DefaultPrompt = "\033[36m\\u@\\h \033[0;39m\033[33m\\w\033[0;39m\033[36m\\$ \033[37;0;39m"

	// DefaultHDFSBin is the Hadoop CLI used to run filesystem commands.
	DefaultHDFSBin = "hdfs"

	// DefaultSuperGroup mirrors dfs.permissions.superusergroup.
	DefaultSuperGroup = "supergroup"

	// DefaultUsersRoot holds one home directory per principal.
	DefaultUsersRoot = "/user"

	// DefaultLocalMountPrefix is stripped from arguments so paths from a
	// locally mounted HDFS (/hdfs/...) work unchanged.
	DefaultLocalMountPrefix = "/hdfs/"

	// ScriptKeyword as the first argument enables fail-fast mode.
	ScriptKeyword = "script"

	// DefaultEditor is launched by the edit command when EDITOR is unset.
	DefaultEditor = "vim"

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultConnTimeout is the SSH and namenode connection timeout.
	DefaultConnTimeout = 30 * time.Second

	// DefaultClientAttempts is how many times --client retries the
	// socket while a daemon is starting.
	DefaultClientAttempts = 5

	// DefaultMaxLineSize caps a single command line read from a socket.
	DefaultMaxLineSize = 1024 * 1024

	// DefaultReloadDebounce coalesces bursts of config file events.
	DefaultReloadDebounce = 200 * time.Millisecond
)
