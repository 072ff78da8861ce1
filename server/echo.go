// File: server/echo.go
// Author: Derek Huang
// License: MIT
//
// Echo server with bounded connection concurrency. Each connection is
// served on its own goroutine; join handles are kept in a FIFO queue of
// capacity MaxConcurrency. When the queue is full the loop blocks joining
// the oldest handler before admitting the next connection, so admission
// evicts strictly in arrival order.

package server

import (
	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/phetdam/networking/transport"
)

// EchoServer accepts connections, reads each request stream until the
// client shuts down its write side, and writes the bytes back verbatim.
// Each direction is half-closed as its phase completes: read after the
// drain, write after the echo. Per-connection I/O errors are logged and
// confined to their connection.
type EchoServer struct {
	base
	// threads holds one join channel per live connection goroutine, oldest
	// first. Touched only by the accept loop; Threads reads the length and
	// is approximate while the loop runs.
	threads    *queue.Queue
	maxThreads int
}

// NewEchoServer creates an echo server.
func NewEchoServer(opts ...Option) *EchoServer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &EchoServer{base: base{opts: o}, threads: queue.New()}
}

// Threads reports the number of connection goroutines currently tracked.
func (s *EchoServer) Threads() int {
	return s.threads.Length()
}

// Start binds, listens, and runs the accept loop, serving at most
// params.MaxConcurrency connections at once. Foreground starts block until
// Stop; background starts return once the listening socket is live.
// Starting a running server fails with ErrAlreadyRunning.
func (s *EchoServer) Start(params Params, background bool) error {
	if s.running.Load() {
		return ErrAlreadyRunning
	}
	if params.MaxConcurrency <= 0 {
		params.MaxConcurrency = DefaultParams().MaxConcurrency
	}
	if err := s.setUp(params); err != nil {
		return err
	}
	s.maxThreads = params.MaxConcurrency
	return s.launch(background, s.loop)
}

func (s *EchoServer) loop() error {
	defer s.tearDown()
	defer s.joinAll()
	for s.running.Load() {
		conn, err := s.accept()
		if err != nil {
			return err
		}
		if conn == nil {
			continue
		}
		// at capacity: wait out the oldest connection before admitting
		if s.threads.Length() >= s.maxThreads {
			<-s.threads.Remove().(chan struct{})
		}
		done := make(chan struct{})
		s.threads.Add(done)
		if s.opts.onConnOpen != nil {
			s.opts.onConnOpen()
		}
		go s.serveConn(conn, done)
	}
	return nil
}

// joinAll waits for every tracked connection goroutine to finish.
func (s *EchoServer) joinAll() {
	for s.threads.Length() > 0 {
		<-s.threads.Remove().(chan struct{})
	}
}

func (s *EchoServer) serveConn(conn *transport.Handle, done chan struct{}) {
	defer close(done)
	defer func() {
		if s.opts.onConnClose != nil {
			s.opts.onConnClose()
		}
	}()
	defer conn.Close()

	msg, err := transport.ReadAll(conn, transport.ReaderConfig{
		Timeout:   s.opts.readTimeout,
		CloseRead: true,
	})
	if err != nil {
		s.opts.logger.Warn("request read failed", zap.Error(err))
		return
	}
	s.opts.logger.Debug("echoing request", zap.Int("bytes", len(msg)))
	if err := transport.WriteAll(conn, msg, transport.WriterConfig{CloseWrite: true}); err != nil {
		s.opts.logger.Warn("echo write failed", zap.Error(err))
	}
}
