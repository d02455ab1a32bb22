package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Config file  (file.go)
//   4. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Shell-specific variables use the HDFS_SHELL_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).  HDFS_SHELL_NO_BANNER
// only needs to be present.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("HDFS_SHELL_PROMPT"); v != "" {
		cfg.Prompt = v
	}
	if _, ok := os.LookupEnv("HDFS_SHELL_NO_BANNER"); ok {
		cfg.NoBanner = true
	}
	if v := os.Getenv("HDFS_SHELL_SOCKET"); v != "" {
		cfg.SocketPath = v
	}
	if v := envInt("HDFS_SHELL_MAX_CONNS"); v > 0 {
		cfg.MaxConns = v
	}
	if envBool("HDFS_SHELL_SHARED_SESSION") {
		cfg.SharedSession = true
	}

	// Filesystem
	if v := os.Getenv("HDFS_SHELL_FS"); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("HDFS_SHELL_NAMENODE"); v != "" {
		cfg.Namenodes = splitList(v)
	}
	if v := os.Getenv("HADOOP_USER_NAME"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("HDFS_SHELL_HDFS_BIN"); v != "" {
		cfg.HDFSBin = v
	}

	// SSH gateway
	if v := os.Getenv("HDFS_SHELL_GATEWAY"); v != "" {
		cfg.GatewaySpec = v
	}
	if envBool("HDFS_SHELL_REMOTE_EXEC") {
		cfg.RemoteExec = true
	}
	if v := os.Getenv("HDFS_SHELL_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("HDFS_SHELL_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("HDFS_SHELL_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}

	// Shell
	if v := os.Getenv("EDITOR"); v != "" {
		cfg.Editor = v
	}
	if v := envInt("HDFS_SHELL_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

// splitList splits a comma-separated list and drops empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
