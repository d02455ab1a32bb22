// Package transport provides the dialers the shell uses to reach its
// peers: the daemon's unix socket in client mode, and the namenode
// either directly over TCP or through the SSH gateway.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound connections.  Its Dial method has the signature
// colinmarc/hdfs expects for NamenodeDialFunc.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}
