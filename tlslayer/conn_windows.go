//go:build windows

// File: tlslayer/conn_windows.go
// Author: Derek Huang
// License: MIT

package tlslayer

import (
	"errors"
	"net"

	"github.com/phetdam/networking/transport"
)

// ErrUnsupported is returned on Windows, where TLS sessions are
// established through the schannel package instead.
var ErrUnsupported = errors.New("socket-bound TLS layer not supported on Windows, use schannel")

func connFromHandle(h *transport.Handle) (net.Conn, error) {
	return nil, ErrUnsupported
}
