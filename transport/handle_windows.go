//go:build windows

// File: transport/handle_windows.go
// Author: Derek Huang
// License: MIT
//
// Winsock plumbing on golang.org/x/sys/windows. Plain accept and WSAPoll
// are resolved from ws2_32.dll since x/sys only exposes the overlapped
// (AcceptEx/IOCP) variants.

package transport

import (
	"math"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// RawSocket is the platform's native socket descriptor type.
type RawSocket = windows.Handle

// InvalidSocket is the sentinel value of a descriptor no handle owns.
const InvalidSocket RawSocket = windows.InvalidHandle

// maxWriteSize is the largest payload accepted by a single write call. The
// native send count parameter is a signed 32-bit int.
const maxWriteSize = math.MaxInt32

// Poll event masks (POLLRDNORM/POLLRDBAND and POLLWRNORM; WSAPoll rejects
// the composite POLLIN/POLLOUT aliases in its input events).
const (
	EventReadable Events = 0x0100 | 0x0200
	EventWritable Events = 0x0010
)

var (
	ws2_32      = windows.NewLazySystemDLL("ws2_32.dll")
	procAccept  = ws2_32.NewProc("accept")
	procWSAPoll = ws2_32.NewProc("WSAPoll")
)

var startupOnce sync.Once

// startWinsock performs the one-time WSAStartup every winsock program needs.
func startWinsock() {
	startupOnce.Do(func() {
		var d windows.WSAData
		_ = windows.WSAStartup(uint32(0x202), &d)
	})
}

// wsaPollFd mirrors the WSAPOLLFD structure.
type wsaPollFd struct {
	fd      RawSocket
	events  int16
	revents int16
}

// Open creates a socket in the given domain with the given type and
// protocol, returning an owning handle.
func Open(domain, typ, proto int) (*Handle, error) {
	startWinsock()
	fd, err := windows.Socket(domain, typ, proto)
	if err != nil {
		return nil, opError("socket", err)
	}
	return &Handle{fd: fd}, nil
}

// OpenTCP creates an IPv4 stream socket.
func OpenTCP() (*Handle, error) {
	return Open(windows.AF_INET, windows.SOCK_STREAM, 0)
}

// Bind binds the socket to the given local endpoint.
func Bind(h *Handle, addr Addr) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	if err := windows.Bind(h.fd, sockaddrFromAddr(addr)); err != nil {
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
	if err := windows.Connect(h.fd, sockaddrFromAddr(addr)); err != nil {
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
	if err := windows.Listen(h.fd, maxPending); err != nil {
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
	r, _, errno := procAccept.Call(uintptr(h.fd), 0, 0)
	fd := RawSocket(r)
	if fd == InvalidSocket {
		return nil, opError("accept", errno)
	}
	return &Handle{fd: fd}, nil
}

// LocalAddr reports the endpoint the socket is actually bound to. Binding
// port 0 and calling LocalAddr yields the ephemeral port the system chose.
func LocalAddr(h *Handle) (Addr, error) {
	if !h.Valid() {
		return Addr{}, ErrInvalidHandle
	}
	sa, err := windows.Getsockname(h.fd)
	if err != nil {
		return Addr{}, opError("getsockname", err)
	}
	sa4, ok := sa.(*windows.SockaddrInet4)
	if !ok {
		return Addr{}, opError("getsockname", ErrAddressWidth)
	}
	return Addr{IP: sa4.Addr, Port: uint16(sa4.Port)}, nil
}

func sockaddrFromAddr(addr Addr) *windows.SockaddrInet4 {
	return &windows.SockaddrInet4{Port: int(addr.Port), Addr: addr.IP}
}

func closeSocket(fd RawSocket) error {
	return windows.Closesocket(fd)
}

func readSocket(fd RawSocket, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	buf := windows.WSABuf{Len: uint32(len(p)), Buf: &p[0]}
	var recvd, flags uint32
	if err := windows.WSARecv(fd, &buf, 1, &recvd, &flags, nil, nil); err != nil {
		return 0, err
	}
	return int(recvd), nil
}

func writeSocket(fd RawSocket, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	buf := windows.WSABuf{Len: uint32(len(p)), Buf: &p[0]}
	var sent uint32
	if err := windows.WSASend(fd, &buf, 1, &sent, 0, nil, nil); err != nil {
		return 0, err
	}
	return int(sent), nil
}

func shutdownSocket(fd RawSocket, how ShutdownHow) error {
	var sysHow int
	switch how {
	case ShutRead:
		sysHow = windows.SHUT_RD
	case ShutWrite:
		sysHow = windows.SHUT_WR
	default:
		sysHow = windows.SHUT_RDWR
	}
	return windows.Shutdown(fd, sysHow)
}

func pollSocket(fd RawSocket, events Events, millis int) (Events, error) {
	fds := []wsaPollFd{{fd: fd, events: int16(events)}}
	r, _, errno := procWSAPoll.Call(
		uintptr(unsafe.Pointer(&fds[0])), uintptr(len(fds)), uintptr(int32(millis)))
	n := int32(r)
	if n < 0 {
		return 0, errno
	}
	if n == 0 {
		return 0, nil
	}
	return Events(fds[0].revents), nil
}

// dupSocket duplicates the descriptor so a second owner can be created
// without violating the close-once contract of the original.
func dupSocket(fd RawSocket) (RawSocket, error) {
	var info windows.WSAProtocolInfo
	if err := windows.WSADuplicateSocket(fd, uint32(windows.GetCurrentProcessId()), &info); err != nil {
		return InvalidSocket, opError("dup", err)
	}
	nfd, err := windows.WSASocket(info.AddressFamily, info.SocketType, info.Protocol,
		&info, 0, windows.WSA_FLAG_OVERLAPPED)
	if err != nil {
		return InvalidSocket, opError("dup", err)
	}
	return nfd, nil
}
