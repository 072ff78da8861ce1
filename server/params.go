// File: server/params.go
// Author: Derek Huang
// License: MIT

package server

import "runtime"

// Params carries the startup parameters shared by the servers in this
// package. It is a plain value; populate it directly or start from
// DefaultParams.
type Params struct {
	// Port is the port to bind. Zero requests an ephemeral port; the
	// resolved value is available from the server once started.
	Port uint16
	// MaxPending is the maximum pending-connection backlog.
	MaxPending int
	// MaxConcurrency is the maximum number of connections served at once.
	MaxConcurrency int
}

// DefaultParams returns the default startup parameters: an ephemeral port
// and one connection slot per CPU.
func DefaultParams() Params {
	n := runtime.NumCPU()
	return Params{Port: 0, MaxPending: n, MaxConcurrency: n}
}
