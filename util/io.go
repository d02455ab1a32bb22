package util

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
)

// closeWriter is implemented by *net.UnixConn and *net.TCPConn.
type closeWriter interface {
	CloseWrite() error
}

// Relay shuffles data between a daemon connection and an arbitrary
// reader/writer pair (typically stdin/stdout) until the daemon side
// reaches EOF or the context is cancelled.  When r is exhausted the
// write half of conn is closed so the daemon sees end-of-stream while
// its remaining responses are still drained into w.
func Relay(ctx context.Context, conn net.Conn, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	// daemon → writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := io.Copy(w, conn)
		errCh <- err
		cancel()
	}()

	// reader → daemon
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := io.Copy(conn, r)
		if cw, ok := conn.(closeWriter); ok {
			cw.CloseWrite() //nolint:errcheck
		}
		errCh <- err
		// A normal EOF from the reader must not tear down the
		// connection before the daemon has answered.
		if err != nil {
			cancel()
		}
	}()

	<-ctx.Done()
	conn.Close() // unblock any pending reads/writes
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil && !IsHarmless(err) {
			return err
		}
	}
	return nil
}

// IsHarmless returns true for errors that are expected when a peer
// disconnects or the process shuts down.
func IsHarmless(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}
