package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAfterThresholdFailures(t *testing.T) {
	b := NewBreaker("ref:R01", 3, time.Minute, nil)

	for i := 0; i < 2; i++ {
		allowed, trial := b.Allow()
		assert.True(t, allowed)
		assert.False(t, trial)
		b.RecordFailure()
	}
	assert.Equal(t, BreakerClosed, b.state)

	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.state)

	allowed, _ := b.Allow()
	assert.False(t, allowed, "breaker should fail fast while open and within cooldown")
}

func TestBreaker_HalfOpenTrialAfterCooldown(t *testing.T) {
	b := NewBreaker("ref:R01", 1, 10*time.Millisecond, nil)
	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.state)

	time.Sleep(15 * time.Millisecond)
	allowed, trial := b.Allow()
	assert.True(t, allowed)
	assert.True(t, trial)

	allowed, _ = b.Allow()
	assert.False(t, allowed, "only one trial call is let through at a time")
}

func TestBreaker_SuccessfulTrialCloses(t *testing.T) {
	b := NewBreaker("ref:R01", 1, 10*time.Millisecond, nil)
	b.RecordFailure()
	time.Sleep(15 * time.Millisecond)
	b.Allow()

	b.RecordSuccess()
	assert.Equal(t, BreakerClosed, b.state)

	allowed, trial := b.Allow()
	assert.True(t, allowed)
	assert.False(t, trial)
}

func TestBreaker_FailedTrialReopens(t *testing.T) {
	b := NewBreaker("ref:R01", 1, 10*time.Millisecond, nil)
	b.RecordFailure()
	time.Sleep(15 * time.Millisecond)
	b.Allow()

	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.state)
}
