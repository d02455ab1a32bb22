package daemon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"hdfsshell/internal/command"
	sherr "hdfsshell/internal/errors"
	"hdfsshell/internal/metrics"
	"hdfsshell/util"
)

// handle serves one connection until the peer closes it, a read fails,
// the client sends exit, or ctx is cancelled.  A failing command never
// closes the connection.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	s.metrics.ConnectionOpened()
	defer s.metrics.ConnectionClosed()
	defer conn.Close()

	id := s.nextID.Add(1)
	logger := s.logger.Named(fmt.Sprintf("conn-%d", id))
	logger.Verbose("connected")
	defer logger.Verbose("disconnected")

	sess, owned := s.session()
	if owned {
		defer sess.Close() //nolint:errcheck
	}

	// Closing the socket ends the read loop after the current command.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	w := &syncWriter{w: bufio.NewWriter(&countingWriter{w: conn, m: s.metrics})}
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), s.opts.MaxLineSize)
	cmdCtx := command.WithoutTerminal(ctx)

	for sc.Scan() {
		line := sc.Text()
		s.metrics.BytesReceived(int64(len(line) + 1))

		result, err := s.d.Execute(cmdCtx, sess, line, w, w)
		switch {
		case sherr.Is(err, sherr.ErrExit):
			w.Flush() //nolint:errcheck
			return
		case err != nil:
			logger.Error("%s: %v", line, err)
			s.metrics.RecordFault(err.Error())
			fmt.Fprintln(w, err)
		case result != "":
			fmt.Fprintln(w, result)
		}
		if err := w.Flush(); err != nil {
			if !util.IsHarmless(err) {
				logger.Verbose("write: %v", err)
			}
			return
		}
	}
	if err := sc.Err(); err != nil && !util.IsHarmless(err) {
		logger.Verbose("read: %v", err)
	}
}

// syncWriter serializes writes from a command's stdout and stderr
// copiers onto one buffered connection writer.
type syncWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *syncWriter) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

type countingWriter struct {
	w io.Writer
	m *metrics.Collector
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.m.BytesSent(int64(n))
	return n, err
}
