// File: tlslayer/errors.go
// Author: Derek Huang
// License: MIT
//
// TLS error taxonomy. Backend errors are classified into a small category
// set so callers can distinguish orderly peer shutdown and would-block
// conditions from fatal I/O or library failures.

package tlslayer

import (
	"errors"
	"io"
	"net"
	"os"
)

// Op identifies which TLS operation produced an error, which determines
// how a would-block condition is categorized.
type Op int

const (
	// OpHandshake is session establishment.
	OpHandshake Op = iota
	// OpRead is record-layer reading.
	OpRead
	// OpWrite is record-layer writing.
	OpWrite
)

// Category labels a classified TLS error.
type Category int

const (
	// CategoryNone means no error.
	CategoryNone Category = iota
	// CategoryZeroReturn means the peer closed the connection for writing;
	// an orderly shutdown, not a failure of the session.
	CategoryZeroReturn
	// CategoryWantRead means a read could not complete yet and should be
	// retried.
	CategoryWantRead
	// CategoryWantWrite means a write could not complete yet and should be
	// retried.
	CategoryWantWrite
	// CategoryWantConnect means the handshake could not complete yet and
	// should be retried.
	CategoryWantConnect
	// CategoryIO is a fatal I/O error below the TLS layer.
	CategoryIO
	// CategoryLibrary is a fatal error inside the TLS backend.
	CategoryLibrary
)

// String returns the category's diagnostic message.
func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "no error"
	case CategoryZeroReturn:
		return "connection closed for writing by peer"
	case CategoryWantRead:
		return "try again, unable to complete nonblocking read"
	case CategoryWantWrite:
		return "try again, unable to complete nonblocking write"
	case CategoryWantConnect:
		return "try again, unable to complete connect"
	case CategoryIO:
		return "fatal I/O error"
	default:
		return "fatal TLS library error"
	}
}

// Retryable reports whether the category is a would-block condition.
func (c Category) Retryable() bool {
	switch c {
	case CategoryWantRead, CategoryWantWrite, CategoryWantConnect:
		return true
	}
	return false
}

// Classify maps a backend error to its category for the given operation.
func Classify(op Op, err error) Category {
	if err == nil {
		return CategoryNone
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return CategoryZeroReturn
	}
	if wouldBlock(err) {
		switch op {
		case OpRead:
			return CategoryWantRead
		case OpWrite:
			return CategoryWantWrite
		default:
			return CategoryWantConnect
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return CategoryIO
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return CategoryIO
	}
	return CategoryLibrary
}

// wouldBlock reports whether err is a transient completion-pending
// condition (an expired read/write deadline or an EAGAIN-class errno).
func wouldBlock(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
