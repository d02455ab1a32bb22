package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	sherr "hdfsshell/internal/errors"
)

// File is the YAML layout of ~/.hdfs-shell.yaml.  Every field is
// optional; only fields present in the file override the defaults.
type File struct {
	Socket struct {
		FilePath       string `yaml:"filepath"`
		MaxConnections int    `yaml:"max-connections"`
	} `yaml:"socket"`

	Session struct {
		Shared       *bool `yaml:"shared"`
		ShowExitCode *bool `yaml:"show-exit-code"`
	} `yaml:"session"`

	FS struct {
		Backend        string   `yaml:"backend"`
		Namenodes      []string `yaml:"namenode"`
		User           string   `yaml:"user"`
		HDFSBin        string   `yaml:"hdfs-bin"`
		SuperuserGroup []string `yaml:"superuser-group"`
		UsersRoot      string   `yaml:"users-root"`
	} `yaml:"fs"`

	Gateway struct {
		Host          string `yaml:"host"`
		Key           string `yaml:"key"`
		Agent         *bool  `yaml:"agent"`
		StrictHostKey *bool  `yaml:"strict-hostkey"`
		KnownHosts    string `yaml:"known-hosts"`
		RemoteExec    *bool  `yaml:"remote-exec"`
	} `yaml:"gateway"`

	Prompt   string `yaml:"prompt"`
	NoBanner *bool  `yaml:"no-banner"`
	Editor   string `yaml:"editor"`
}

// DefaultFilePath returns ~/.hdfs-shell.yaml, or "" when the home
// directory is unknown.
func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultConfigFile)
}

// ParseFile decodes a YAML document.  Unknown keys are rejected so that
// typos surface instead of being silently ignored.
func ParseFile(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads path and overlays it onto cfg.  A missing file is not
// an error when optional is true.
func LoadFile(cfg *Config, path string, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return sherr.Startup("config", path, err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return sherr.Startup("config", path, fmt.Errorf("parsing yaml: %w", err))
	}
	f.Apply(cfg)
	cfg.ConfigPath = path
	return nil
}

// Apply overlays the fields present in f onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Socket.FilePath != "" {
		cfg.SocketPath = f.Socket.FilePath
	}
	if f.Socket.MaxConnections > 0 {
		cfg.MaxConns = f.Socket.MaxConnections
	}
	if f.Session.Shared != nil {
		cfg.SharedSession = *f.Session.Shared
	}
	if f.Session.ShowExitCode != nil {
		cfg.ShowExitCode = *f.Session.ShowExitCode
	}

	if f.FS.Backend != "" {
		cfg.Backend = f.FS.Backend
	}
	if len(f.FS.Namenodes) > 0 {
		cfg.Namenodes = f.FS.Namenodes
	}
	if f.FS.User != "" {
		cfg.User = f.FS.User
	}
	if f.FS.HDFSBin != "" {
		cfg.HDFSBin = f.FS.HDFSBin
	}
	if len(f.FS.SuperuserGroup) > 0 {
		cfg.SuperGroups = f.FS.SuperuserGroup
	}
	if f.FS.UsersRoot != "" {
		cfg.UsersRoot = f.FS.UsersRoot
	}

	if f.Gateway.Host != "" {
		cfg.GatewaySpec = f.Gateway.Host
	}
	if f.Gateway.Key != "" {
		cfg.SSHKeyPath = f.Gateway.Key
	}
	if f.Gateway.Agent != nil {
		cfg.UseSSHAgent = *f.Gateway.Agent
	}
	if f.Gateway.StrictHostKey != nil {
		cfg.StrictHostKey = *f.Gateway.StrictHostKey
	}
	if f.Gateway.KnownHosts != "" {
		cfg.KnownHostsPath = f.Gateway.KnownHosts
	}
	if f.Gateway.RemoteExec != nil {
		cfg.RemoteExec = *f.Gateway.RemoteExec
	}

	if f.Prompt != "" {
		cfg.Prompt = f.Prompt
	}
	if f.NoBanner != nil {
		cfg.NoBanner = *f.NoBanner
	}
	if f.Editor != "" {
		cfg.Editor = f.Editor
	}
}
