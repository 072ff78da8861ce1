// File: server/server.go
// Author: Derek Huang
// License: MIT
//
// Generic IPv4 stream server: bind, listen, then accept in a cooperative
// poll loop and hand each connection to a pluggable Handler. The shared
// base carries socket state and lifecycle; EchoServer builds its bounded
// concurrent variant on the same base.

package server

import (
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/phetdam/networking/transport"
)

// ErrAlreadyRunning is returned by Start on a server that is running.
var ErrAlreadyRunning = errors.New("server already running")

// Handler serves one accepted connection. The server owns the handle and
// closes it after Serve returns; a non-nil error tears the server down.
type Handler interface {
	Serve(conn *transport.Handle) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(conn *transport.Handle) error

// Serve calls f(conn).
func (f HandlerFunc) Serve(conn *transport.Handle) error {
	return f(conn)
}

// base holds the socket state and lifecycle shared by the servers in this
// package.
type base struct {
	opts options

	running atomic.Bool
	sock    *transport.Handle
	addr    transport.Addr
	params  Params

	bg    sync.WaitGroup
	bgErr error
}

// Running reports whether the accept loop is live.
func (b *base) Running() bool {
	return b.running.Load()
}

// Addr reports the bound endpoint. Valid once Start has returned (or, for
// foreground starts, once Running reports true).
func (b *base) Addr() transport.Addr {
	return b.addr
}

// Port reports the bound port. Requesting port 0 in Params yields the
// ephemeral port the system chose.
func (b *base) Port() uint16 {
	return b.addr.Port
}

// DotAddress reports the bound address in dotted-decimal form.
func (b *base) DotAddress() string {
	return b.addr.DotAddress()
}

// MaxPending reports the configured backlog.
func (b *base) MaxPending() int {
	return b.params.MaxPending
}

// Stop requests a cooperative shutdown. The loop observes the flag on its
// next poll tick. Safe to call repeatedly and before Start.
func (b *base) Stop() {
	b.running.Store(false)
}

// Join waits for a background loop to finish and returns its error.
func (b *base) Join() error {
	b.bg.Wait()
	return b.bgErr
}

// setUp binds and listens, leaving the server in the running state.
func (b *base) setUp(params Params) error {
	sock, err := transport.OpenTCP()
	if err != nil {
		return err
	}
	if err := transport.Bind(sock, transport.AnyAddr(params.Port)); err != nil {
		sock.Close()
		return err
	}
	addr, err := transport.LocalAddr(sock)
	if err != nil {
		sock.Close()
		return err
	}
	if err := transport.Listen(sock, params.MaxPending); err != nil {
		sock.Close()
		return err
	}
	b.sock = sock
	b.addr = addr
	b.params = params
	b.running.Store(true)
	b.opts.logger.Info("server listening",
		zap.String("addr", addr.String()), zap.Int("max_pending", params.MaxPending))
	return nil
}

// tearDown closes the listening socket and clears the running state.
func (b *base) tearDown() {
	b.running.Store(false)
	if err := b.sock.Close(); err != nil {
		b.opts.logger.Warn("listen socket close failed", zap.Error(err))
	}
	b.opts.logger.Info("server stopped", zap.String("addr", b.addr.String()))
}

// accept waits one poll interval for a pending connection. A nil handle
// with a nil error means the interval expired with nothing pending.
func (b *base) accept() (*transport.Handle, error) {
	ready, err := transport.WaitReadable(b.sock, b.opts.pollInterval)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, nil
	}
	return transport.Accept(b.sock)
}

// launch runs loop in the foreground or on a background goroutine.
func (b *base) launch(background bool, loop func() error) error {
	if background {
		b.bg.Add(1)
		go func() {
			defer b.bg.Done()
			b.bgErr = loop()
		}()
		return nil
	}
	return loop()
}

// Server is a generic accept-loop server dispatching to a Handler.
type Server struct {
	base
	handler Handler
}

// New creates a server that dispatches accepted connections to handler.
func New(handler Handler, opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{base: base{opts: o}, handler: handler}
}

// Start binds, listens, and runs the accept loop. With background set the
// loop runs on its own goroutine and Start returns once the listening
// socket is live; otherwise Start blocks until Stop or a loop error.
// Starting a running server fails with ErrAlreadyRunning.
func (s *Server) Start(params Params, background bool) error {
	if s.running.Load() {
		return ErrAlreadyRunning
	}
	if err := s.setUp(params); err != nil {
		return err
	}
	return s.launch(background, s.loop)
}

func (s *Server) loop() error {
	defer s.tearDown()
	for s.running.Load() {
		conn, err := s.accept()
		if err != nil {
			return err
		}
		if conn == nil {
			continue
		}
		s.opts.logger.Debug("connection accepted")
		if s.opts.onConnOpen != nil {
			s.opts.onConnOpen()
		}
		serveErr := s.handler.Serve(conn)
		if cerr := conn.Close(); cerr != nil {
			s.opts.logger.Warn("connection close failed", zap.Error(cerr))
		}
		if s.opts.onConnClose != nil {
			s.opts.onConnClose()
		}
		if serveErr != nil {
			return serveErr
		}
	}
	return nil
}
