// File: transport/poll.go
// Author: Derek Huang
// License: MIT
//
// Readiness polling. Event bit values come from the platform files so the
// same mask constants work against poll(2) and WSAPoll.

package transport

import "time"

// Events is a poll event bitmask in the platform's native encoding.
type Events int16

// Poll waits up to timeout for any of the requested events on the socket and
// returns the observed event mask. A negative timeout blocks indefinitely; a
// zero result mask means the timeout expired.
func Poll(h *Handle, events Events, timeout time.Duration) (Events, error) {
	if !h.Valid() {
		return 0, ErrInvalidHandle
	}
	revents, err := pollSocket(h.fd, events, pollMillis(timeout))
	if err != nil {
		return 0, opError("poll", err)
	}
	return revents, nil
}

// WaitReadable waits up to timeout for the socket to become readable.
func WaitReadable(h *Handle, timeout time.Duration) (bool, error) {
	revents, err := Poll(h, EventReadable, timeout)
	if err != nil {
		return false, err
	}
	return revents&EventReadable != 0, nil
}

// WaitWritable waits up to timeout for the socket to become writable.
func WaitWritable(h *Handle, timeout time.Duration) (bool, error) {
	revents, err := Poll(h, EventWritable, timeout)
	if err != nil {
		return false, err
	}
	return revents&EventWritable != 0, nil
}

func pollMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	return int(timeout / time.Millisecond)
}
