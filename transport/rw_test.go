// File: transport/rw_test.go
// Author: Derek Huang
// License: MIT

package transport

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connectedPair returns a connected (client, server) socket pair over
// loopback.
func connectedPair(t *testing.T) (*Handle, *Handle) {
	t.Helper()
	sock, addr := newListener(t)

	cli, err := OpenTCP()
	require.NoError(t, err)
	t.Cleanup(func() { cli.Close() })
	require.NoError(t, Connect(cli, addr))

	conn, err := Accept(sock)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return cli, conn
}

func TestWriteAllReadAll(t *testing.T) {
	cli, conn := connectedPair(t)

	msg := []byte("hello world")
	require.NoError(t, WriteAll(cli, msg, WriterConfig{CloseWrite: true}))

	got, err := ReadAll(conn, ReaderConfig{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestReadAllSpansChunks(t *testing.T) {
	cli, conn := connectedPair(t)

	msg := bytes.Repeat([]byte("0123456789abcdef"), 4*DefaultReadSize/16)
	require.NoError(t, WriteAll(cli, msg, WriterConfig{CloseWrite: true}))

	got, err := ReadAll(conn, DefaultReaderConfig())
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestReadAllTimeoutReturnsAccumulated(t *testing.T) {
	cli, conn := connectedPair(t)

	// no close-write: the reader must give up on timeout and hand back
	// whatever arrived
	require.NoError(t, WriteAll(cli, []byte("partial"), WriterConfig{}))

	got, err := ReadAll(conn, ReaderConfig{Timeout: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, []byte("partial"), got)
}

func TestReadAllTimeoutEmpty(t *testing.T) {
	_, conn := connectedPair(t)

	got, err := ReadAll(conn, ReaderConfig{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadAllCloseRead(t *testing.T) {
	cli, conn := connectedPair(t)

	require.NoError(t, WriteAll(cli, []byte("bye"), WriterConfig{CloseWrite: true}))

	got, err := ReadAll(conn, ReaderConfig{Timeout: time.Second, CloseRead: true})
	require.NoError(t, err)
	assert.Equal(t, []byte("bye"), got)

	// socket stays open for writing after the read half-close
	require.NoError(t, WriteAll(conn, got, WriterConfig{CloseWrite: true}))
	echoed, err := ReadAll(cli, ReaderConfig{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, got, echoed)
}
