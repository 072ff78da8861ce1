// File: transport/errors.go
// Author: Derek Huang
// License: MIT
//
// Sentinel errors and the wrapping helper used across the package. Native
// error codes are surfaced through %w so callers can still match on the
// underlying errno with errors.Is.

package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle indicates an operation on a handle that does not own
	// a live socket descriptor.
	ErrInvalidHandle = errors.New("invalid socket handle")

	// ErrMessageTooLong indicates a write whose payload exceeds the largest
	// single native send the platform accepts.
	ErrMessageTooLong = errors.New("message exceeds maximum write size")

	// ErrNoAddresses indicates a host record with no usable entries.
	ErrNoAddresses = errors.New("host record contains no addresses")

	// ErrAddressWidth indicates a host record entry whose address is not
	// exactly four bytes wide.
	ErrAddressWidth = errors.New("host record address is not IPv4 width")
)

// opError wraps a native error with the failing operation name.
func opError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
