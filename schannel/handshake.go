// File: schannel/handshake.go
// Author: Derek Huang
// License: MIT
//
// Package schannel establishes TLS client sessions on Windows through the
// native security support provider interface. The handshake driver in this
// file is platform-neutral: it owns the token buffer bookkeeping and the
// send/receive loop, calling into a ContextBuilder for each security
// context negotiation step. The Windows builder lives behind a build tag.

package schannel

import (
	"errors"
	"fmt"
	"io"
)

// TokenBufferSize is the handshake token buffer capacity: the TLS record
// size limit plus header and trailer overhead.
const TokenBufferSize = 16384 + 512

// Status is a native security status code.
type Status uint32

const (
	// StatusOK (SEC_E_OK) means the security context is complete.
	StatusOK Status = 0x00000000
	// StatusContinueNeeded (SEC_I_CONTINUE_NEEDED) means the produced token
	// must be sent to the peer and another build step is required.
	StatusContinueNeeded Status = 0x00090312
)

var (
	// ErrPeerClosed means the peer closed the connection before the
	// handshake completed.
	ErrPeerClosed = errors.New("peer closed connection during handshake")

	// ErrTokenBufferFull means the peer filled the token buffer without
	// producing a consumable handshake message.
	ErrTokenBufferFull = errors.New("token buffer full, peer is not following the TLS protocol")
)

// Result is the outcome of one security context build step.
type Result struct {
	// Status is the native status of the build call.
	Status Status
	// Token is the output token to forward to the peer, if any.
	Token []byte
	// Extra is the number of trailing input bytes the step did not
	// consume. They belong to the next handshake message.
	Extra int
}

// ContextBuilder performs one security context negotiation step. token
// holds the peer bytes accumulated so far; first marks the initial step,
// which consumes no input.
type ContextBuilder interface {
	Build(token []byte, first bool) (Result, error)
}

// Handshake drives the token exchange between a ContextBuilder and the
// peer connection until the security context is complete.
type Handshake struct {
	builder ContextBuilder
	conn    io.ReadWriter
	buf     [TokenBufferSize]byte
	// buffered counts the valid bytes at the front of buf: unconsumed
	// leftovers from the previous step plus freshly received bytes.
	buffered int
	building bool
}

// NewHandshake creates a handshake driver over the given connection.
func NewHandshake(b ContextBuilder, conn io.ReadWriter) *Handshake {
	return &Handshake{builder: b, conn: conn}
}

// Buffered reports how many unconsumed token bytes are currently held.
func (h *Handshake) Buffered() int {
	return h.buffered
}

// Run performs the full handshake. On return with a nil error the
// security context is complete; any buffered bytes left over are the start
// of the peer's post-handshake data.
func (h *Handshake) Run() error {
	for {
		res, err := h.builder.Build(h.buf[:h.buffered], !h.building)
		if err != nil {
			return err
		}
		// unconsumed trailing bytes move to the front of the buffer, they
		// start the next handshake message
		if res.Extra > 0 {
			copy(h.buf[:res.Extra], h.buf[h.buffered-res.Extra:h.buffered])
			h.buffered = res.Extra
		} else {
			h.buffered = 0
		}
		switch res.Status {
		case StatusOK:
			return nil
		case StatusContinueNeeded:
			if len(res.Token) > 0 {
				if _, err := h.conn.Write(res.Token); err != nil {
					return fmt.Errorf("failed to send handshake token: %w", err)
				}
			}
			if h.buffered == len(h.buf) {
				return ErrTokenBufferFull
			}
			n, err := h.conn.Read(h.buf[h.buffered:])
			if err != nil && err != io.EOF {
				return fmt.Errorf("failed to receive handshake token: %w", err)
			}
			if n == 0 {
				return ErrPeerClosed
			}
			h.buffered += n
		default:
			return fmt.Errorf("security context creation failed: status 0x%08x", uint32(res.Status))
		}
		h.building = true
	}
}
