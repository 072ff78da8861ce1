// File: tlslayer/layer.go
// Author: Derek Huang
// License: MIT

package tlslayer

import (
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/phetdam/networking/transport"
)

// Layer is one connection's TLS session state. A layer is created from a
// context, bound to a connected socket handle by Handshake, and closed
// independently of the handle: the layer owns a duplicate of the socket
// descriptor, so the handle's close-once contract is untouched.
type Layer struct {
	ctx  *Context
	conn *tls.Conn
}

// NewLayer creates an unconnected layer from the given context.
func NewLayer(ctx *Context) (*Layer, error) {
	if ctx == nil {
		return nil, errors.New("nil TLS context")
	}
	return &Layer{ctx: ctx}, nil
}

// Established reports whether a handshake has completed on this layer.
func (l *Layer) Established() bool {
	return l.conn != nil
}

// Conn exposes the established TLS connection.
func (l *Layer) Conn() *tls.Conn {
	return l.conn
}

// Protocol reports the negotiated protocol version string, or empty before
// the handshake.
func (l *Layer) Protocol() string {
	if l.conn == nil {
		return ""
	}
	return tls.VersionName(l.conn.ConnectionState().Version)
}

// Handshake binds the layer to the socket's descriptor and performs the
// client handshake for the given server name. Binding failures are
// reported, never retried. A handshake failure is labeled controlled when
// the peer shut the connection down cleanly mid-handshake and fatal
// otherwise; both leave the layer unestablished.
func (l *Layer) Handshake(h *transport.Handle, serverName string) error {
	if l.conn != nil {
		return errors.New("layer already established")
	}
	netConn, err := connFromHandle(h)
	if err != nil {
		return fmt.Errorf("failed to bind socket handle: %w", err)
	}
	cfg := l.ctx.config()
	cfg.ServerName = serverName
	conn := tls.Client(netConn, cfg)
	if err := conn.Handshake(); err != nil {
		conn.Close()
		cat := Classify(OpHandshake, err)
		if cat == CategoryZeroReturn {
			return fmt.Errorf("controlled TLS handshake error: %s: %w", cat, err)
		}
		return fmt.Errorf("fatal TLS handshake error: %s: %w", cat, err)
	}
	l.conn = conn
	return nil
}

// Close shuts down the TLS session and releases the duplicated descriptor.
// The socket handle given to Handshake stays open and owned by its caller.
func (l *Layer) Close() error {
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}
