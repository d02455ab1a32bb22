// Package hdfs is the metadata backend for a real cluster.  It speaks
// the namenode RPC protocol natively through colinmarc/hdfs, so path
// lookups for the prompt, cd and tab completion never spawn a JVM.
package hdfs

import (
	"context"
	"fmt"
	"net"
	"os"
	"path"
	"sync"

	"github.com/colinmarc/hdfs/v2"
	"github.com/colinmarc/hdfs/v2/hadoopconf"

	"hdfsshell/internal/dfs"
	sherr "hdfsshell/internal/errors"
	"hdfsshell/util"
)

// DialFunc opens a connection to a namenode or datanode.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options configures a Connector.
type Options struct {
	// Namenodes lists host:port addresses.  When empty the addresses are
	// read from HADOOP_CONF_DIR / HADOOP_HOME.
	Namenodes []string
	// UsersRoot is the parent of home directories (default /user).
	UsersRoot string
	// DefaultUser is used when Connect receives "".
	DefaultUser string
	// Dial overrides the network dialer, e.g. to tunnel through an SSH
	// gateway.  Nil uses a plain TCP dialer.
	Dial DialFunc
}

// Connector hands out one cached client per principal.
type Connector struct {
	opts    Options
	base    hdfs.ClientOptions
	logger  *util.Logger
	mu      sync.Mutex
	clients map[string]*hdfs.Client
}

// NewConnector resolves the cluster addresses and returns a Connector.
// No connection is made until the first Connect.
func NewConnector(opts Options, logger *util.Logger) (*Connector, error) {
	if opts.UsersRoot == "" {
		opts.UsersRoot = "/user"
	}

	var base hdfs.ClientOptions
	if len(opts.Namenodes) > 0 {
		base.Addresses = opts.Namenodes
	} else {
		conf, err := hadoopconf.LoadFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("load hadoop configuration: %w", err)
		}
		base = hdfs.ClientOptionsFromConf(conf)
		if len(base.Addresses) == 0 {
			return nil, &sherr.ConfigError{
				Field:   "namenode",
				Message: "no namenode address configured",
				Hint:    "pass --namenode host:port or set HADOOP_CONF_DIR",
			}
		}
	}
	if opts.Dial != nil {
		base.NamenodeDialFunc = opts.Dial
		base.DatanodeDialFunc = opts.Dial
	}

	return &Connector{
		opts:    opts,
		base:    base,
		logger:  logger,
		clients: make(map[string]*hdfs.Client),
	}, nil
}

// Connect returns a handle bound to user, dialing the namenode the first
// time that principal is seen.
func (c *Connector) Connect(_ context.Context, user string) (dfs.FileSystem, error) {
	if user == "" {
		user = c.opts.DefaultUser
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[user]; ok {
		return &handle{client: client, usersRoot: c.opts.UsersRoot}, nil
	}

	opts := c.base
	opts.User = user
	client, err := hdfs.NewClient(opts)
	if err != nil {
		return nil, sherr.Wrap("dial", fmt.Sprint(opts.Addresses), err)
	}
	c.logger.Verbose("connected to %v as %s", opts.Addresses, client.User())
	c.clients[user] = client
	return &handle{client: client, usersRoot: c.opts.UsersRoot}, nil
}

// Close closes every cached client.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for user, client := range c.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", user, err))
		}
		delete(c.clients, user)
	}
	return sherr.Join(errs...)
}

type handle struct {
	client    *hdfs.Client
	usersRoot string
}

func (h *handle) User() string { return h.client.User() }

func (h *handle) Home() string { return path.Join(h.usersRoot, h.client.User()) }

func (h *handle) Stat(_ context.Context, name string) (dfs.FileStatus, error) {
	fi, err := h.client.Stat(name)
	if err != nil {
		return dfs.FileStatus{}, translate(name, err)
	}
	return convert(path.Clean(name), fi), nil
}

func (h *handle) ReadDir(_ context.Context, name string) ([]dfs.FileStatus, error) {
	infos, err := h.client.ReadDir(name)
	if err != nil {
		return nil, translate(name, err)
	}
	out := make([]dfs.FileStatus, 0, len(infos))
	for _, fi := range infos {
		out = append(out, convert(path.Join(name, fi.Name()), fi))
	}
	return out, nil
}

// Close is a no-op: clients are shared per principal and released by
// Connector.Close.
func (h *handle) Close() error { return nil }

func translate(name string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", name, sherr.ErrNoSuchPath)
	}
	return err
}

func convert(p string, fi os.FileInfo) dfs.FileStatus {
	st := dfs.FileStatus{
		Path:    p,
		Name:    path.Base(p),
		IsDir:   fi.IsDir(),
		Size:    fi.Size(),
		Mode:    fi.Mode(),
		ModTime: fi.ModTime(),
	}
	if hfi, ok := fi.(*hdfs.FileInfo); ok {
		st.Owner = hfi.Owner()
		st.Group = hfi.OwnerGroup()
	}
	return st
}
