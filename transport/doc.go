// File: transport/doc.go
// Author: Derek Huang
// License: MIT
//
// Package transport provides owned socket handles and thin blocking
// primitives over the native socket APIs, normalizing the divergent
// POSIX/Windows error-reporting conventions into plain error values.
// Platform-specific implementations are strictly separated by build tags.

package transport
