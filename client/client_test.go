// File: client/client_test.go
// Author: Derek Huang
// License: MIT

package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phetdam/networking/server"
	"github.com/phetdam/networking/transport"
)

func startEcho(t *testing.T) *server.EchoServer {
	t.Helper()
	srv := server.NewEchoServer()
	require.NoError(t, srv.Start(server.DefaultParams(), true))
	t.Cleanup(func() {
		srv.Stop()
		require.NoError(t, srv.Join())
	})
	return srv
}

func TestClientEchoRoundTrip(t *testing.T) {
	srv := startEcho(t)

	c, err := New()
	require.NoError(t, err)
	defer c.Close()
	assert.False(t, c.Connected())

	require.NoError(t, c.Connect("localhost", srv.Port()))
	assert.True(t, c.Connected())
	assert.Equal(t, srv.Port(), c.Remote().Port)

	require.NoError(t, c.Send([]byte("hello world"), true))
	reply, err := c.Recv(transport.ReaderConfig{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(reply))
}

func TestClientNotConnected(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	assert.ErrorIs(t, c.Send([]byte("x"), false), ErrNotConnected)
	_, err = c.Recv(transport.ReaderConfig{})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestClientResolveFailure(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	assert.Error(t, c.Connect("host.invalid", 80))
	assert.False(t, c.Connected())
}
