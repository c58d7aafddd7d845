package rpcerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsKindMatchable(t *testing.T) {
	err := New(InvalidMove, "move %d out of range", 42)
	assert.True(t, IsKind(err, InvalidMove))
	assert.False(t, IsKind(err, Timeout))
}

func TestWrap_PreservesCauseAndKind(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(ConnectionRefused, cause, "calling referee")
	require.NotNil(t, err)
	assert.True(t, IsKind(err, ConnectionRefused))
	assert.ErrorIs(t, err, cause)
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(Timeout, nil, "whatever"))
}

func TestRetryable_OnlyTransportKinds(t *testing.T) {
	assert.True(t, Retryable(ConnectionRefused))
	assert.True(t, Retryable(Timeout))
	assert.False(t, Retryable(InvalidMove))
	assert.False(t, Retryable(LeagueFull))
	assert.False(t, Retryable(CapacityExceeded))
}

func TestAsError_ExtractsTypedError(t *testing.T) {
	err := New(DuplicateMove, "already moved")
	var wrapped error = err
	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, DuplicateMove, e.Kind)
}

func TestAsError_FalseForPlainError(t *testing.T) {
	_, ok := AsError(errors.New("plain"))
	assert.False(t, ok)
}
