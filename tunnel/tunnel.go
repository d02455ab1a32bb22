// Package tunnel connects to an SSH gateway (an edge node with the
// Hadoop client installed) and uses it two ways: forwarding namenode
// RPC connections, and running `hdfs dfs` commands remotely.
package tunnel

import (
	"context"
	"io"
	"net"
)

// Tunnel abstracts an encrypted gateway connection.
type Tunnel interface {
	// Connect establishes the tunnel to the gateway.
	Connect(ctx context.Context) error

	// Dial opens a connection to address through the tunnel.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Run executes command on the gateway and returns its exit status.
	// A non-nil error means the command could not be started or the
	// session broke; a command that ran and failed returns its status
	// with a nil error.
	Run(ctx context.Context, command string, stdout, stderr io.Writer) (int, error)

	// Close tears down the tunnel and frees resources.
	Close() error

	// IsAlive reports whether the underlying connection is still up.
	IsAlive() bool
}
