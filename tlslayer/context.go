// File: tlslayer/context.go
// Author: Derek Huang
// License: MIT
//
// Package tlslayer layers TLS client sessions over owned socket handles
// using the platform's native TLS backend. Contexts hold the protocol and
// trust configuration shared across connections; a Layer holds one
// connection's session state.

package tlslayer

import (
	"crypto/tls"
	"errors"
	"sync"
)

// Context holds TLS configuration shared by any number of layers. Contexts
// are immutable after construction; each layer works on its own clone of
// the underlying config.
type Context struct {
	cfg *tls.Config
}

var (
	defaultOnce sync.Once
	defaultCtx  *Context

	tls13Once sync.Once
	tls13Ctx  *Context
)

// Default returns the process-lifetime context with flexible protocol
// negotiation. It is created on first use and shared by all callers.
func Default() *Context {
	defaultOnce.Do(func() {
		defaultCtx = &Context{cfg: &tls.Config{}}
	})
	return defaultCtx
}

// DefaultTLS13 returns the process-lifetime context requiring TLS 1.3 or
// newer. It is created on first use and shared by all callers.
func DefaultTLS13() *Context {
	tls13Once.Do(func() {
		tls13Ctx = &Context{cfg: &tls.Config{MinVersion: tls.VersionTLS13}}
	})
	return tls13Ctx
}

// NewContext creates a context from an explicit TLS configuration. The
// config is cloned, so later mutation of cfg does not affect the context.
func NewContext(cfg *tls.Config) (*Context, error) {
	if cfg == nil {
		return nil, errors.New("nil TLS config")
	}
	return &Context{cfg: cfg.Clone()}, nil
}

// config returns a per-connection clone of the context's configuration.
func (c *Context) config() *tls.Config {
	return c.cfg.Clone()
}
