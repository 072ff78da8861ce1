//go:build windows

// File: schannel/sspi_windows.go
// Author: Derek Huang
// License: MIT
//
// ContextBuilder implementation over InitializeSecurityContext. Each build
// step hands the provider the buffered peer token in a TOKEN+EMPTY input
// buffer pair and collects the provider-allocated output token; the EMPTY
// input buffer doubles as the SECBUFFER_EXTRA report for unconsumed bytes.

package schannel

import (
	"fmt"

	"github.com/alexbrainman/sspi"
	"go.uber.org/multierr"
	"golang.org/x/sys/windows"

	"github.com/phetdam/networking/transport"
)

// DefaultContextFlags is the context request mask for a streaming TLS
// client session.
const DefaultContextFlags = sspi.ISC_REQ_USE_SUPPLIED_CREDS |
	sspi.ISC_REQ_ALLOCATE_MEMORY |
	sspi.ISC_REQ_CONFIDENTIALITY |
	sspi.ISC_REQ_REPLAY_DETECT |
	sspi.ISC_REQ_SEQUENCE_DETECT |
	sspi.ISC_REQ_STREAM

// ClientBuilder builds an outbound TLS security context step by step. It
// owns the security context handle and releases it exactly once.
type ClientBuilder struct {
	ctx    *sspi.Context
	target *uint16
}

// NewClientBuilder prepares a security context build for the given target
// host using an acquired credential.
func NewClientBuilder(cred *Credential, host string, flags uint32) (*ClientBuilder, error) {
	if cred == nil || cred.creds == nil {
		return nil, fmt.Errorf("nil or released credential")
	}
	target, err := windows.UTF16PtrFromString(host)
	if err != nil {
		return nil, fmt.Errorf("bad target host %q: %w", host, err)
	}
	return &ClientBuilder{
		ctx:    sspi.NewClientContext(cred.creds, flags),
		target: target,
	}, nil
}

// Build performs one InitializeSecurityContext step.
func (b *ClientBuilder) Build(token []byte, first bool) (Result, error) {
	if b.ctx == nil {
		return Result{}, fmt.Errorf("security context released")
	}
	outBufs := []sspi.SecBuffer{{BufferType: sspi.SECBUFFER_TOKEN}}
	outDesc := sspi.NewSecBufferDesc(outBufs)

	var inBufs []sspi.SecBuffer
	var inDesc *sspi.SecBufferDesc
	if !first {
		inBufs = make([]sspi.SecBuffer, 2)
		inBufs[0].Set(sspi.SECBUFFER_TOKEN, token)
		inBufs[1].Set(sspi.SECBUFFER_EMPTY, nil)
		inDesc = sspi.NewSecBufferDesc(inBufs)
	}

	ret := b.ctx.Update(b.target, outDesc, inDesc)
	res := Result{Status: Status(uint32(ret))}
	if !first && inBufs[1].BufferType == sspi.SECBUFFER_EXTRA {
		res.Extra = int(inBufs[1].BufferSize)
	}
	switch res.Status {
	case StatusOK, StatusContinueNeeded:
		if outBufs[0].Buffer != nil && outBufs[0].BufferSize > 0 {
			res.Token = append([]byte(nil), outBufs[0].Bytes()...)
			if err := sspi.FreeContextBuffer(outBufs[0].Buffer); err != nil {
				return Result{}, fmt.Errorf("failed to free output token: %w", err)
			}
		}
	}
	return res, nil
}

// Release frees the security context handle. Further calls are no-ops.
func (b *ClientBuilder) Release() error {
	if b.ctx == nil {
		return nil
	}
	ctx := b.ctx
	b.ctx = nil
	return ctx.Release()
}

// PerformClientHandshake runs the full TLS handshake for host over a
// connected socket. On success the returned builder owns the established
// security context; the caller releases it when the session ends.
func PerformClientHandshake(cred *Credential, conn *transport.Handle, host string) (*ClientBuilder, error) {
	b, err := NewClientBuilder(cred, host, DefaultContextFlags)
	if err != nil {
		return nil, err
	}
	if err := NewHandshake(b, conn).Run(); err != nil {
		return nil, multierr.Append(err, b.Release())
	}
	return b, nil
}
