// File: tlslayer/rw.go
// Author: Derek Huang
// License: MIT
//
// Retrying record-layer reader/writer. Would-block conditions are retried
// when allowed, with each retry reported through the optional message
// sink; when retries are disallowed the would-block condition is an error.

package tlslayer

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"go.uber.org/zap"
)

// DefaultRecordChunk is the per-iteration read chunk size.
const DefaultRecordChunk = 512

// DefaultPendingWait bounds each wait for further pending record data.
const DefaultPendingWait = time.Second

// maxWriteSize is the largest payload accepted by a single Write.
const maxWriteSize = math.MaxInt32

// RWConfig configures the TLS reader and writer. The zero value is usable;
// zero fields take the package defaults and retries default to allowed via
// DefaultRWConfig.
type RWConfig struct {
	// AllowRetry permits retrying would-block read/write conditions.
	AllowRetry bool
	// Sink receives a message per retry. Nil means silent retries.
	Sink *zap.Logger
	// BufSize is the reader's per-iteration chunk size.
	BufSize int
	// PendingWait bounds each reader wait for more pending data. A wait
	// that expires after at least one chunk arrived ends the read normally.
	PendingWait time.Duration
}

// DefaultRWConfig returns the package-default reader/writer configuration.
func DefaultRWConfig() RWConfig {
	return RWConfig{AllowRetry: true, BufSize: DefaultRecordChunk, PendingWait: DefaultPendingWait}
}

func (cfg *RWConfig) fill() {
	if cfg.BufSize <= 0 {
		cfg.BufSize = DefaultRecordChunk
	}
	if cfg.PendingWait <= 0 {
		cfg.PendingWait = DefaultPendingWait
	}
}

func (cfg *RWConfig) notifyRetry(op string) {
	if cfg.Sink != nil {
		cfg.Sink.Info("retrying TLS operation", zap.String("op", op))
	}
}

// Writer writes whole payloads through an established layer.
type Writer struct {
	layer *Layer
	cfg   RWConfig
}

// NewWriter creates a writer over an established layer.
func NewWriter(l *Layer, cfg RWConfig) *Writer {
	cfg.fill()
	return &Writer{layer: l, cfg: cfg}
}

// Write sends the entire payload through the TLS session, retrying
// would-block conditions per the configuration. Payloads larger than the
// single-write limit are rejected up front.
func (w *Writer) Write(p []byte) error {
	if !w.layer.Established() {
		return fmt.Errorf("TLS write failed: session not established")
	}
	if len(p) > maxWriteSize {
		return fmt.Errorf("TLS write failed: payload exceeds maximum write size")
	}
	conn := w.layer.Conn()
	for len(p) > 0 {
		n, err := conn.Write(p)
		p = p[n:]
		if err == nil {
			continue
		}
		cat := Classify(OpWrite, err)
		if cat == CategoryWantWrite {
			if !w.cfg.AllowRetry {
				return fmt.Errorf("TLS write failed: %s: retries disallowed: %w", cat, err)
			}
			w.cfg.notifyRetry("write")
			continue
		}
		return fmt.Errorf("TLS write failed: %s: %w", cat, err)
	}
	return nil
}

// Reader drains pending record data from an established layer.
type Reader struct {
	layer *Layer
	cfg   RWConfig
}

// NewReader creates a reader over an established layer.
func NewReader(l *Layer, cfg RWConfig) *Reader {
	cfg.fill()
	return &Reader{layer: l, cfg: cfg}
}

// ReadTo copies decrypted data into dst until the peer closes the session
// or no further data arrives within the pending wait. A wait that expires
// before any data arrived is a would-block condition, retried per the
// configuration. A peer that pauses longer than PendingWait between chunks
// is indistinguishable from end of data and ends the read early, so size
// PendingWait for the slowest inter-chunk gap the peer may exhibit.
func (r *Reader) ReadTo(dst io.Writer) error {
	if !r.layer.Established() {
		return fmt.Errorf("TLS read failed: session not established")
	}
	conn := r.layer.Conn()
	defer conn.SetReadDeadline(time.Time{})
	buf := make([]byte, r.cfg.BufSize)
	got := false
	for {
		conn.SetReadDeadline(time.Now().Add(r.cfg.PendingWait))
		n, err := conn.Read(buf)
		if n > 0 {
			got = true
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return fmt.Errorf("TLS read failed: sink write: %w", werr)
			}
		}
		if err == nil {
			continue
		}
		switch cat := Classify(OpRead, err); cat {
		case CategoryZeroReturn:
			// orderly shutdown by the peer ends the stream
			return nil
		case CategoryWantRead:
			if got {
				// no more pending data behind what was already drained
				return nil
			}
			if !r.cfg.AllowRetry {
				return fmt.Errorf("TLS read failed: %s: retries disallowed: %w", cat, err)
			}
			r.cfg.notifyRetry("read")
		default:
			return fmt.Errorf("TLS read failed: %s: %w", cat, err)
		}
	}
}

// ReadAll drains pending record data and returns it as a byte slice.
func (r *Reader) ReadAll() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.ReadTo(&buf); err != nil {
		return buf.Bytes(), err
	}
	return buf.Bytes(), nil
}
