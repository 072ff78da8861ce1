// File: client/client.go
// Author: Derek Huang
// License: MIT
//
// IPv4 stream client: owns one socket, resolves the target host through
// the platform resolver, and connects. Stream I/O goes through the
// transport reader/writer on the exposed handle.

package client

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/phetdam/networking/transport"
)

// ErrNotConnected is returned when I/O accessors are used before Connect.
var ErrNotConnected = errors.New("client is not connected")

// Option customizes a client at construction time.
type Option func(*Client)

// WithLogger sets the client's logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client is an IPv4 stream client owning a single socket handle.
type Client struct {
	sock      *transport.Handle
	remote    transport.Addr
	connected bool
	logger    *zap.Logger
}

// New creates a client with a fresh TCP socket.
func New(opts ...Option) (*Client, error) {
	sock, err := transport.OpenTCP()
	if err != nil {
		return nil, err
	}
	c := &Client{sock: sock, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect resolves host and connects the socket to host:port.
func (c *Client) Connect(host string, port uint16) error {
	addr, err := transport.ResolveAddr(host, port)
	if err != nil {
		return err
	}
	if err := transport.Connect(c.sock, addr); err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	c.remote = addr
	c.connected = true
	c.logger.Debug("connected", zap.String("remote", addr.String()))
	return nil
}

// Connected reports whether Connect has succeeded.
func (c *Client) Connected() bool {
	return c.connected
}

// Remote reports the connected endpoint.
func (c *Client) Remote() transport.Addr {
	return c.remote
}

// Socket exposes the owned handle for stream I/O. The client retains
// ownership.
func (c *Client) Socket() *transport.Handle {
	return c.sock
}

// Send writes the entire payload, optionally half-closing the write side
// to signal end-of-message.
func (c *Client) Send(p []byte, closeWrite bool) error {
	if !c.connected {
		return ErrNotConnected
	}
	return transport.WriteAll(c.sock, p, transport.WriterConfig{CloseWrite: closeWrite})
}

// Recv reads the full response stream using the given configuration.
func (c *Client) Recv(cfg transport.ReaderConfig) ([]byte, error) {
	if !c.connected {
		return nil, ErrNotConnected
	}
	return transport.ReadAll(c.sock, cfg)
}

// Close closes the owned socket.
func (c *Client) Close() error {
	c.connected = false
	return c.sock.Close()
}
