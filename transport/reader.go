// File: transport/reader.go
// Author: Derek Huang
// License: MIT
//
// Poll-driven read-until-closed. Each iteration waits for readability, then
// reads one fixed-size chunk; a zero-byte read means the peer shut down its
// write side and terminates the loop normally.

package transport

import "time"

// DefaultReadSize is the per-iteration read chunk size.
const DefaultReadSize = 512

// DefaultPollTimeout is the default per-iteration readiness wait.
const DefaultPollTimeout = time.Second

// ReaderConfig configures ReadAll. The zero value is usable; zero fields
// take the package defaults.
type ReaderConfig struct {
	// BufSize is the per-iteration read chunk size.
	BufSize int
	// Timeout bounds each per-iteration readiness wait. A timeout is not an
	// error: whatever has been accumulated so far is returned, which may be
	// nothing.
	Timeout time.Duration
	// CloseRead shuts down the read side of the socket after the stream is
	// drained.
	CloseRead bool
}

// DefaultReaderConfig returns the package-default read configuration.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{BufSize: DefaultReadSize, Timeout: DefaultPollTimeout}
}

// ReadAll reads from the socket until the peer shuts down its write side or
// a readiness wait times out, returning all bytes accumulated. An empty
// result with a nil error is valid.
func ReadAll(h *Handle, cfg ReaderConfig) ([]byte, error) {
	if !h.Valid() {
		return nil, ErrInvalidHandle
	}
	if cfg.BufSize <= 0 {
		cfg.BufSize = DefaultReadSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultPollTimeout
	}
	var out []byte
	buf := make([]byte, cfg.BufSize)
	for {
		ready, err := WaitReadable(h, cfg.Timeout)
		if err != nil {
			return out, err
		}
		if !ready {
			return out, nil
		}
		n, err := h.Read(buf)
		if err != nil {
			return out, err
		}
		if n == 0 {
			break
		}
		out = append(out, buf[:n]...)
	}
	if cfg.CloseRead {
		if err := h.Shutdown(ShutRead); err != nil {
			return out, err
		}
	}
	return out, nil
}
