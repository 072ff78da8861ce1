// File: server/options.go
// Author: Derek Huang
// License: MIT
//
// Functional options for ambient server knobs. Startup parameters that
// define server semantics live in Params instead.

package server

import (
	"time"

	"go.uber.org/zap"
)

// Option customizes a server at construction time.
type Option func(*options)

type options struct {
	logger       *zap.Logger
	pollInterval time.Duration
	readTimeout  time.Duration
	onConnOpen   func()
	onConnClose  func()
}

func defaultOptions() options {
	return options{
		logger:       zap.NewNop(),
		pollInterval: 100 * time.Millisecond,
		readTimeout:  time.Second,
	}
}

// WithLogger sets the logger used by the accept loop and connection
// handlers. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPollInterval sets how long each accept-loop iteration waits for a
// pending connection before re-checking the running flag.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithReadTimeout sets the per-iteration read readiness timeout used when
// draining a connection.
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.readTimeout = d
		}
	}
}

// WithConnHooks installs callbacks invoked when a connection is admitted
// and when its handler finishes. Either may be nil.
func WithConnHooks(open, closed func()) Option {
	return func(o *options) {
		o.onConnOpen = open
		o.onConnClose = closed
	}
}
