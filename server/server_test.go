// File: server/server_test.go
// Author: Derek Huang
// License: MIT

package server

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phetdam/networking/transport"
)

// dialServer connects a client socket to the given local server port.
func dialServer(t *testing.T, port uint16) *transport.Handle {
	t.Helper()
	cli, err := transport.OpenTCP()
	require.NoError(t, err)
	t.Cleanup(func() { cli.Close() })
	require.NoError(t, transport.Connect(cli, transport.LoopbackAddr(port)))
	return cli
}

// exchange writes msg with a write half-close and reads the full reply.
func exchange(t *testing.T, conn *transport.Handle, msg string, timeout time.Duration) string {
	t.Helper()
	require.NoError(t, transport.WriteAll(conn, []byte(msg), transport.WriterConfig{CloseWrite: true}))
	reply, err := transport.ReadAll(conn, transport.ReaderConfig{Timeout: timeout})
	require.NoError(t, err)
	return string(reply)
}

func TestServerServesHandler(t *testing.T) {
	srv := New(HandlerFunc(func(conn *transport.Handle) error {
		msg, err := transport.ReadAll(conn, transport.ReaderConfig{Timeout: time.Second})
		if err != nil {
			return err
		}
		return transport.WriteAll(conn, append([]byte("ack: "), msg...), transport.WriterConfig{CloseWrite: true})
	}))
	require.NoError(t, srv.Start(DefaultParams(), true))
	defer func() {
		srv.Stop()
		require.NoError(t, srv.Join())
	}()

	assert.True(t, srv.Running())
	assert.NotZero(t, srv.Port())
	assert.Equal(t, "0.0.0.0", srv.DotAddress())

	cli := dialServer(t, srv.Port())
	assert.Equal(t, "ack: ping", exchange(t, cli, "ping", time.Second))
}

func TestServerAlreadyRunning(t *testing.T) {
	srv := New(HandlerFunc(func(conn *transport.Handle) error { return nil }))
	require.NoError(t, srv.Start(DefaultParams(), true))
	defer func() {
		srv.Stop()
		srv.Join()
	}()

	assert.ErrorIs(t, srv.Start(DefaultParams(), true), ErrAlreadyRunning)
}

func TestServerHandlerErrorTearsDown(t *testing.T) {
	boom := errors.New("handler failed")
	srv := New(HandlerFunc(func(conn *transport.Handle) error { return boom }))
	require.NoError(t, srv.Start(DefaultParams(), true))

	dialServer(t, srv.Port())
	assert.ErrorIs(t, srv.Join(), boom)
	assert.False(t, srv.Running())
}

func TestServerStopBeforeStart(t *testing.T) {
	srv := New(HandlerFunc(func(conn *transport.Handle) error { return nil }))
	srv.Stop()
	srv.Stop()

	require.NoError(t, srv.Start(DefaultParams(), true))
	srv.Stop()
	require.NoError(t, srv.Join())
	assert.False(t, srv.Running())
}
