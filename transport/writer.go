// File: transport/writer.go
// Author: Derek Huang
// License: MIT

package transport

// WriterConfig configures WriteAll.
type WriterConfig struct {
	// CloseWrite shuts down the write side of the socket after the payload
	// is fully sent, signaling end-of-message to the peer.
	CloseWrite bool
}

// WriteAll sends the entire payload, retrying short writes until every byte
// is accepted. Payloads larger than the platform's single-send limit are
// rejected up front with ErrMessageTooLong.
func WriteAll(h *Handle, p []byte, cfg WriterConfig) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	if len(p) > maxWriteSize {
		return ErrMessageTooLong
	}
	for len(p) > 0 {
		n, err := h.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	if cfg.CloseWrite {
		return h.Shutdown(ShutWrite)
	}
	return nil
}
