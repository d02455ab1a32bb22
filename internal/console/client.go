package console

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"syscall"
	"time"

	sherr "hdfsshell/internal/errors"
	"hdfsshell/internal/retry"
	"hdfsshell/internal/transport"
	"hdfsshell/util"
)

// Client forwards command lines to a running daemon.
type Client struct {
	Dialer   transport.Dialer
	Socket   string
	Attempts int // dial attempts while the daemon starts; 0 = one
	Logger   *util.Logger
}

// Run connects and relays in to the daemon and its responses to out
// until in is exhausted and the daemon has answered, or ctx is done.
func (c *Client) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	logger := c.Logger
	if logger == nil {
		logger = util.NewLogger(0)
	}
	logger = logger.Named("client")

	attempts := c.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	b := retry.Connect(attempts)
	b.Retryable = daemonStarting
	b.OnRetry = func(attempt int, wait time.Duration, err error) {
		logger.Verbose("daemon at %s not ready (attempt %d): %v; retrying in %s",
			c.Socket, attempt, err, wait.Round(time.Millisecond))
	}

	var conn net.Conn
	err := b.Do(ctx, func(int) error {
		var err error
		conn, err = c.Dialer.Dial(ctx, "unix", c.Socket)
		if err != nil && ctx.Err() != nil {
			return retry.Stop(err)
		}
		return err
	})
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Verbose("connected to %s", c.Socket)

	return util.Relay(ctx, conn, in, out)
}

// daemonStarting reports dial errors seen before the daemon has bound
// its socket, or transient ones.
func daemonStarting(err error) bool {
	return sherr.IsRetryable(err) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, fs.ErrNotExist)
}
