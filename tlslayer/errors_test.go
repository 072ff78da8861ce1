// File: tlslayer/errors_test.go
// Author: Derek Huang
// License: MIT

package tlslayer

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, CategoryNone, Classify(OpRead, nil))
	assert.Equal(t, CategoryZeroReturn, Classify(OpRead, io.EOF))
	assert.Equal(t, CategoryWantRead, Classify(OpRead, os.ErrDeadlineExceeded))
	assert.Equal(t, CategoryWantWrite, Classify(OpWrite, os.ErrDeadlineExceeded))
	assert.Equal(t, CategoryWantConnect, Classify(OpHandshake, os.ErrDeadlineExceeded))
	assert.Equal(t, CategoryLibrary, Classify(OpRead, errors.New("bad record MAC")))
}

func TestCategoryRetryable(t *testing.T) {
	assert.True(t, CategoryWantRead.Retryable())
	assert.True(t, CategoryWantWrite.Retryable())
	assert.True(t, CategoryWantConnect.Retryable())
	assert.False(t, CategoryNone.Retryable())
	assert.False(t, CategoryZeroReturn.Retryable())
	assert.False(t, CategoryIO.Retryable())
	assert.False(t, CategoryLibrary.Retryable())
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "no error", CategoryNone.String())
	assert.Equal(t, "connection closed for writing by peer", CategoryZeroReturn.String())
	assert.Equal(t, "fatal TLS library error", CategoryLibrary.String())
}
