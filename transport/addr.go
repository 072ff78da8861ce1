// File: transport/addr.go
// Author: Derek Huang
// License: MIT
//
// Fixed-layout IPv4 endpoint and host-record resolution. Resolution itself
// is delegated to the platform resolver; only record consumption lives here.

package transport

import (
	"context"
	"fmt"
	"net"
	"time"
)

// resolveTimeout bounds a single host lookup.
const resolveTimeout = 30 * time.Second

// Addr is an IPv4 endpoint: a four-byte address and a port, both kept in
// host order until converted to a platform sockaddr.
type Addr struct {
	IP   [4]byte
	Port uint16
}

// NewAddr builds an endpoint from a four-byte address and port.
func NewAddr(ip [4]byte, port uint16) Addr {
	return Addr{IP: ip, Port: port}
}

// AnyAddr builds the wildcard (INADDR_ANY) endpoint for the given port.
func AnyAddr(port uint16) Addr {
	return Addr{Port: port}
}

// LoopbackAddr builds the 127.0.0.1 endpoint for the given port.
func LoopbackAddr(port uint16) Addr {
	return Addr{IP: [4]byte{127, 0, 0, 1}, Port: port}
}

// AddrFromRecord builds an endpoint from a resolved host record. The first
// entry is used and must be exactly IPv4 width, otherwise construction fails.
func AddrFromRecord(ips []net.IP, port uint16) (Addr, error) {
	if len(ips) == 0 {
		return Addr{}, ErrNoAddresses
	}
	ip4 := ips[0].To4()
	if ip4 == nil {
		return Addr{}, ErrAddressWidth
	}
	var a Addr
	copy(a.IP[:], ip4)
	a.Port = port
	return a, nil
}

// ResolveAddr resolves host to an IPv4 endpoint using the platform resolver.
func ResolveAddr(host string, port uint16) (Addr, error) {
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return Addr{}, fmt.Errorf("resolve %s: %w", host, err)
	}
	a, err := AddrFromRecord(ips, port)
	if err != nil {
		return Addr{}, fmt.Errorf("resolve %s: %w", host, err)
	}
	return a, nil
}

// String renders the endpoint in dotted-decimal host:port form.
func (a Addr) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d", a.IP[0], a.IP[1], a.IP[2], a.IP[3], a.Port)
}

// DotAddress renders only the dotted-decimal address.
func (a Addr) DotAddress() string {
	return fmt.Sprintf("%d.%d.%d.%d", a.IP[0], a.IP[1], a.IP[2], a.IP[3])
}
