//go:build !windows

// File: tlslayer/conn_unix.go
// Author: Derek Huang
// License: MIT

package tlslayer

import (
	"net"
	"os"

	"github.com/phetdam/networking/transport"
)

// connFromHandle binds a net.Conn to the handle's descriptor by
// duplicating it. Both descriptors refer to the same open socket; the
// returned conn owns only the duplicate.
func connFromHandle(h *transport.Handle) (net.Conn, error) {
	dup, err := h.Dup()
	if err != nil {
		return nil, err
	}
	f := os.NewFile(uintptr(dup.Release()), "tls-socket")
	defer f.Close()
	return net.FileConn(f)
}
