package protocol

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_DoSucceedsOnFirstTry(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, MaxAttempts: 3}
	calls := 0
	err := p.Do(context.Background(), func(error) bool { return true }, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_DoRetriesRetryableErrorsUpToMaxAttempts(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, MaxAttempts: 3}
	calls := 0
	sentinel := errors.New("connection refused")
	err := p.Do(context.Background(), func(error) bool { return true }, func() error {
		calls++
		return sentinel
	})
	assert.Equal(t, sentinel, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_DoNeverRetriesNonRetryableError(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, MaxAttempts: 3}
	calls := 0
	sentinel := errors.New("invalid move")
	err := p.Do(context.Background(), func(error) bool { return false }, func() error {
		calls++
		return sentinel
	})
	assert.Equal(t, sentinel, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_DoStopsOnContextCancellation(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Hour, MaxDelay: time.Hour, MaxAttempts: 5}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	err := p.Do(ctx, func(error) bool { return true }, func() error {
		calls++
		return errors.New("transport failure")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDefaultRetryPolicy_MatchesConfiguredSchedule(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, time.Second, p.BaseDelay)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 0.10, p.JitterFrac)
}
