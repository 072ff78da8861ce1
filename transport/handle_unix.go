//go:build !windows

// File: transport/handle_unix.go
// Author: Derek Huang
// License: MIT
//
// POSIX socket plumbing on golang.org/x/sys/unix. Every call reports
// failure through the returned error; no errno globals are consulted.

package transport

import (
	"math"

	"golang.org/x/sys/unix"
)

// RawSocket is the platform's native socket descriptor type.
type RawSocket = int

// InvalidSocket is the sentinel value of a descriptor no handle owns.
const InvalidSocket RawSocket = -1

// maxWriteSize is the largest payload accepted by a single write call.
const maxWriteSize = math.MaxInt32

// Poll event masks.
const (
	EventReadable Events = unix.POLLIN
	EventWritable Events = unix.POLLOUT
)

// Open creates a socket in the given domain with the given type and
// protocol, returning an owning handle.
func Open(domain, typ, proto int) (*Handle, error) {
	fd, err := unix.Socket(domain, typ, proto)
	if err != nil {
		return nil, opError("socket", err)
	}
	return &Handle{fd: fd}, nil
}

// OpenTCP creates an IPv4 stream socket.
func OpenTCP() (*Handle, error) {
	return Open(unix.AF_INET, unix.SOCK_STREAM, 0)
}

// Bind binds the socket to the given local endpoint.
func Bind(h *Handle, addr Addr) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	if err := unix.Bind(h.fd, sockaddrFromAddr(addr)); err != nil {
		return opError("bind", err)
	}
	return nil
}

// Connect connects the socket to the given remote endpoint, blocking until
// the connection is established or refused.
func Connect(h *Handle, addr Addr) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	if err := unix.Connect(h.fd, sockaddrFromAddr(addr)); err != nil {
		return opError("connect", err)
	}
	return nil
}

// Listen marks the socket as accepting connections with the given maximum
// pending-connection backlog.
func Listen(h *Handle, maxPending int) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	if err := unix.Listen(h.fd, maxPending); err != nil {
		return opError("listen", err)
	}
	return nil
}

// Accept blocks until a pending connection is available and returns an
// owning handle for it.
func Accept(h *Handle) (*Handle, error) {
	if !h.Valid() {
		return nil, ErrInvalidHandle
	}
	fd, _, err := unix.Accept(h.fd)
	if err != nil {
		return nil, opError("accept", err)
	}
	return &Handle{fd: fd}, nil
}

// LocalAddr reports the endpoint the socket is actually bound to. Binding
// port 0 and calling LocalAddr yields the ephemeral port the system chose.
func LocalAddr(h *Handle) (Addr, error) {
	if !h.Valid() {
		return Addr{}, ErrInvalidHandle
	}
	sa, err := unix.Getsockname(h.fd)
	if err != nil {
		return Addr{}, opError("getsockname", err)
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return Addr{}, opError("getsockname", ErrAddressWidth)
	}
	return Addr{IP: sa4.Addr, Port: uint16(sa4.Port)}, nil
}

func sockaddrFromAddr(addr Addr) *unix.SockaddrInet4 {
	return &unix.SockaddrInet4{Port: int(addr.Port), Addr: addr.IP}
}

func closeSocket(fd RawSocket) error {
	return unix.Close(fd)
}

func readSocket(fd RawSocket, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func writeSocket(fd RawSocket, p []byte) (int, error) {
	for {
		n, err := unix.Write(fd, p)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func shutdownSocket(fd RawSocket, how ShutdownHow) error {
	var sysHow int
	switch how {
	case ShutRead:
		sysHow = unix.SHUT_RD
	case ShutWrite:
		sysHow = unix.SHUT_WR
	default:
		sysHow = unix.SHUT_RDWR
	}
	return unix.Shutdown(fd, sysHow)
}

func pollSocket(fd RawSocket, events Events, millis int) (Events, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: int16(events)}}
	for {
		n, err := unix.Poll(fds, millis)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		return Events(fds[0].Revents), nil
	}
}

// dupSocket duplicates the descriptor so a second owner can be created
// without violating the close-once contract of the original.
func dupSocket(fd RawSocket) (RawSocket, error) {
	nfd, err := unix.Dup(fd)
	if err != nil {
		return InvalidSocket, opError("dup", err)
	}
	return nfd, nil
}
