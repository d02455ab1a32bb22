// Package daemon serves the shell over a unix domain socket.  Each
// connection sends newline-terminated command lines and reads back the
// command output followed by the result line, if any.
package daemon

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"hdfsshell/config"
	"hdfsshell/internal/command"
	sherr "hdfsshell/internal/errors"
	"hdfsshell/internal/metrics"
	"hdfsshell/internal/session"
	"hdfsshell/util"
)

// Options configures a Server.
type Options struct {
	SocketPath string
	// MaxConns bounds concurrently served connections; further clients
	// wait in the accept loop.  0 means no ceiling.
	MaxConns int
	// MaxLineSize caps one command line (default
	// config.DefaultMaxLineSize).
	MaxLineSize int
	// SharedSession serves every connection from one session, so a cd
	// on one connection is seen by all others.
	SharedSession bool
}

// SessionFactory creates the session for a connection.
type SessionFactory func() *session.Session

// Server accepts connections and runs their commands through a
// Dispatcher.
type Server struct {
	opts       Options
	d          *command.Dispatcher
	newSession SessionFactory
	metrics    *metrics.Collector
	logger     *util.Logger

	sem    *semaphore.Weighted
	shared *session.Session
	ready  chan struct{}
	nextID atomic.Int64
}

// New returns a Server.  newSession is called once per connection, or
// once in total with SharedSession.
func New(opts Options, d *command.Dispatcher, newSession SessionFactory, m *metrics.Collector, logger *util.Logger) *Server {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	if opts.MaxLineSize <= 0 {
		opts.MaxLineSize = config.DefaultMaxLineSize
	}
	s := &Server{
		opts:       opts,
		d:          d,
		newSession: newSession,
		metrics:    m,
		logger:     logger.Named("daemon"),
		ready:      make(chan struct{}),
	}
	if opts.MaxConns > 0 {
		s.sem = semaphore.NewWeighted(int64(opts.MaxConns))
	}
	if opts.SharedSession {
		s.shared = newSession()
	}
	return s
}

// Ready is closed once the socket is listening.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Serve listens on the socket path until ctx is cancelled, then stops
// accepting, closes open connections once their current command
// finishes and waits for every handler to return.  A stale socket file
// is removed first; the socket file is removed on return.  Failing to
// listen is a *errors.StartupError.
func (s *Server) Serve(ctx context.Context) error {
	path := s.opts.SocketPath
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return sherr.Startup("remove stale socket", path, err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return sherr.Startup("listen", path, err)
	}
	defer func() {
		ln.Close()
		os.Remove(path)
		if s.shared != nil {
			s.shared.Close() //nolint:errcheck
		}
	}()

	// Unblock Accept when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.logger.Info("listening on %s", path)
	close(s.ready)

	s.acceptLoop(ctx, ln)
	s.logger.Verbose("stopped; %d connections served", s.metrics.TotalConnections())
	return nil
}

// Accept failures other than a closed listener (EMFILE and friends) are
// retried after a pause that doubles up to maxAcceptDelay.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// acceptLoop serves ln until it is closed or ctx is cancelled, then
// waits for every handler to return.
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	var wg sync.WaitGroup
	defer wg.Wait()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			delay = min(max(2*delay, minAcceptDelay), maxAcceptDelay)
			s.logger.Error("accept: %v; retrying in %v", err, delay)
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
			continue
		}
		delay = 0

		if s.sem != nil {
			s.metrics.ConnectionQueued(1)
			err := s.sem.Acquire(ctx, 1)
			s.metrics.ConnectionQueued(-1)
			if err != nil {
				conn.Close()
				return
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.sem != nil {
				defer s.sem.Release(1)
			}
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) session() (sess *session.Session, owned bool) {
	if s.shared != nil {
		return s.shared, false
	}
	return s.newSession(), true
}
