package transport

import (
	"context"
	"net"
	"time"

	sherr "hdfsshell/internal/errors"
)

// UnixDialer connects to a unix domain socket.  The network argument to
// Dial is ignored.
type UnixDialer struct {
	Timeout time.Duration
}

// Dial connects to the socket at address.
func (d *UnixDialer) Dial(ctx context.Context, _, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, "unix", address)
	if err != nil {
		return nil, sherr.Wrap("dial", address, err)
	}
	return conn, nil
}

// Close is a no-op.
func (d *UnixDialer) Close() error { return nil }
