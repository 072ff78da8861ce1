// File: transport/handle.go
// Author: Derek Huang
// License: MIT
//
// Owned socket handle. A Handle has at most one live owner and closes its
// descriptor exactly once; Release transfers ownership of the raw descriptor
// out of the handle, after which Close is a no-op.

package transport

// ShutdownHow selects which direction(s) of a connected socket to shut down.
type ShutdownHow int

const (
	// ShutRead disables further receives.
	ShutRead ShutdownHow = iota
	// ShutWrite disables further sends.
	ShutWrite
	// ShutReadWrite disables both directions.
	ShutReadWrite
)

// Handle owns a raw socket descriptor.
//
// The zero value is invalid. Handles are not safe for concurrent use except
// where the underlying platform socket calls are.
type Handle struct {
	fd RawSocket
}

// NewHandle wraps an already-open raw descriptor, taking ownership of it.
func NewHandle(fd RawSocket) *Handle {
	return &Handle{fd: fd}
}

// Valid reports whether the handle currently owns a live descriptor.
func (h *Handle) Valid() bool {
	return h != nil && h.fd != InvalidSocket
}

// Raw returns the owned descriptor without transferring ownership.
func (h *Handle) Raw() RawSocket {
	return h.fd
}

// Release transfers ownership of the descriptor to the caller. The handle
// becomes invalid and its Close becomes a no-op.
func (h *Handle) Release() RawSocket {
	fd := h.fd
	h.fd = InvalidSocket
	return fd
}

// Dup duplicates the owned descriptor into a new independent handle. Both
// handles refer to the same open socket; each closes only its own
// descriptor, so the close-once contract holds for both.
func (h *Handle) Dup() (*Handle, error) {
	if !h.Valid() {
		return nil, ErrInvalidHandle
	}
	fd, err := dupSocket(h.fd)
	if err != nil {
		return nil, err
	}
	return &Handle{fd: fd}, nil
}

// Close closes the owned descriptor. Closing an invalid handle is a no-op,
// so the descriptor is closed at most once regardless of call count.
func (h *Handle) Close() error {
	if !h.Valid() {
		return nil
	}
	fd := h.Release()
	if err := closeSocket(fd); err != nil {
		return opError("close", err)
	}
	return nil
}

// Read receives up to len(p) bytes from the socket. A zero count with a nil
// error means the peer has shut down its write side.
func (h *Handle) Read(p []byte) (int, error) {
	if !h.Valid() {
		return 0, ErrInvalidHandle
	}
	n, err := readSocket(h.fd, p)
	if err != nil {
		return n, opError("read", err)
	}
	return n, nil
}

// Write sends up to len(p) bytes to the socket, returning the count actually
// accepted by the platform. Short writes are not retried here; see WriteAll.
func (h *Handle) Write(p []byte) (int, error) {
	if !h.Valid() {
		return 0, ErrInvalidHandle
	}
	n, err := writeSocket(h.fd, p)
	if err != nil {
		return n, opError("write", err)
	}
	return n, nil
}

// Shutdown disables the selected direction(s) of the connected socket. The
// descriptor stays owned and must still be closed.
func (h *Handle) Shutdown(how ShutdownHow) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	if err := shutdownSocket(h.fd, how); err != nil {
		return opError("shutdown", err)
	}
	return nil
}
