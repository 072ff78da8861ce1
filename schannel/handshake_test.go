// File: schannel/handshake_test.go
// Author: Derek Huang
// License: MIT

package schannel

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step is one scripted ContextBuilder response.
type step struct {
	res Result
	err error
	// consume asserts on the input the builder was handed
	consume func(t *testing.T, token []byte, first bool)
}

// scriptedBuilder replays a fixed sequence of build results.
type scriptedBuilder struct {
	t     *testing.T
	steps []step
	calls int
}

func (b *scriptedBuilder) Build(token []byte, first bool) (Result, error) {
	require.Less(b.t, b.calls, len(b.steps), "unexpected extra build step")
	s := b.steps[b.calls]
	b.calls++
	if s.consume != nil {
		s.consume(b.t, token, first)
	}
	return s.res, s.err
}

// pipeConn adapts separate read/write ends to io.ReadWriter.
type pipeConn struct {
	r io.Reader
	w io.Writer
}

func (c *pipeConn) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *pipeConn) Write(p []byte) (int, error) { return c.w.Write(p) }

func TestHandshakeImmediateOK(t *testing.T) {
	b := &scriptedBuilder{t: t, steps: []step{
		{res: Result{Status: StatusOK}, consume: func(t *testing.T, token []byte, first bool) {
			assert.Empty(t, token)
			assert.True(t, first)
		}},
	}}
	hs := NewHandshake(b, &pipeConn{r: bytes.NewReader(nil), w: io.Discard})
	require.NoError(t, hs.Run())
	assert.Equal(t, 1, b.calls)
	assert.Zero(t, hs.Buffered())
}

func TestHandshakeContinueExchangesTokens(t *testing.T) {
	var sent bytes.Buffer
	peer := bytes.NewReader([]byte("server-hello"))
	b := &scriptedBuilder{t: t, steps: []step{
		{
			res: Result{Status: StatusContinueNeeded, Token: []byte("client-hello")},
			consume: func(t *testing.T, token []byte, first bool) {
				assert.True(t, first)
				assert.Empty(t, token)
			},
		},
		{
			res: Result{Status: StatusOK},
			consume: func(t *testing.T, token []byte, first bool) {
				assert.False(t, first)
				assert.Equal(t, []byte("server-hello"), token)
			},
		},
	}}
	hs := NewHandshake(b, &pipeConn{r: peer, w: &sent})
	require.NoError(t, hs.Run())
	assert.Equal(t, "client-hello", sent.String())
	assert.Zero(t, hs.Buffered())
}

func TestHandshakeLeftoverBytesMoveToFront(t *testing.T) {
	// the second step consumes its message but reports 4 trailing bytes:
	// they must reappear at offset 0 with the buffered length tracking them
	peer := bytes.NewReader([]byte("message-onetail"))
	var steps []step
	steps = append(steps, step{
		res: Result{Status: StatusContinueNeeded, Token: []byte("hello")},
	})
	steps = append(steps, step{
		res: Result{Status: StatusContinueNeeded, Token: []byte("again"), Extra: 4},
		consume: func(t *testing.T, token []byte, first bool) {
			assert.Equal(t, []byte("message-onetail"), token)
		},
	})
	// nothing more arrives; the builder sees only the carried-over tail
	peer2 := io.MultiReader(peer, bytes.NewReader([]byte("x")))
	steps = append(steps, step{
		res: Result{Status: StatusOK},
		consume: func(t *testing.T, token []byte, first bool) {
			assert.Equal(t, []byte("tailx"), token)
		},
	})
	b := &scriptedBuilder{t: t, steps: steps}
	hs := NewHandshake(b, &pipeConn{r: peer2, w: io.Discard})
	require.NoError(t, hs.Run())
	assert.Equal(t, 3, b.calls)
}

func TestHandshakePeerClose(t *testing.T) {
	b := &scriptedBuilder{t: t, steps: []step{
		{res: Result{Status: StatusContinueNeeded, Token: []byte("hello")}},
	}}
	hs := NewHandshake(b, &pipeConn{r: bytes.NewReader(nil), w: io.Discard})
	assert.ErrorIs(t, hs.Run(), ErrPeerClosed)
}

func TestHandshakeTokenBufferFull(t *testing.T) {
	// every step reports the whole buffer unconsumed, so the buffer can
	// only grow until it is full
	fill := bytes.Repeat([]byte("a"), TokenBufferSize)
	b := &scriptedBuilder{t: t}
	b.steps = append(b.steps, step{res: Result{Status: StatusContinueNeeded}})
	b.steps = append(b.steps, step{
		res: Result{Status: StatusContinueNeeded, Extra: TokenBufferSize},
		consume: func(t *testing.T, token []byte, first bool) {
			assert.Len(t, token, TokenBufferSize)
		},
	})
	hs := NewHandshake(b, &pipeConn{r: bytes.NewReader(fill), w: io.Discard})
	assert.ErrorIs(t, hs.Run(), ErrTokenBufferFull)
	assert.Equal(t, TokenBufferSize, hs.Buffered())
}

func TestHandshakeFatalStatus(t *testing.T) {
	b := &scriptedBuilder{t: t, steps: []step{
		{res: Result{Status: 0x80090308}}, // SEC_E_INVALID_TOKEN
	}}
	hs := NewHandshake(b, &pipeConn{r: bytes.NewReader(nil), w: io.Discard})
	err := hs.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0x80090308")
}

func TestHandshakeBuilderError(t *testing.T) {
	boom := errors.New("acquire failed")
	b := &scriptedBuilder{t: t, steps: []step{{err: boom}}}
	hs := NewHandshake(b, &pipeConn{r: bytes.NewReader(nil), w: io.Discard})
	assert.ErrorIs(t, hs.Run(), boom)
}

func TestHandshakeSendFailure(t *testing.T) {
	b := &scriptedBuilder{t: t, steps: []step{
		{res: Result{Status: StatusContinueNeeded, Token: []byte("hello")}},
	}}
	hs := NewHandshake(b, &pipeConn{r: bytes.NewReader(nil), w: failingWriter{}})
	err := hs.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send handshake token")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}
