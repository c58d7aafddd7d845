// internal/protocol/breaker.go
// Per-target circuit breaker (§5): after a consecutive-failure threshold
// the breaker opens and fails fast until a cooldown elapses, then allows a
// single trial call to decide whether to close again.

package protocol

import (
	"sync"
	"time"

	"github.com/evenodd-league/tournament/internal/events"
)

// BreakerState is one of the three states a breaker can be in.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// Breaker tracks consecutive failures for one outbound target (an agent
// endpoint) and decides whether a call should even be attempted.
type Breaker struct {
	mu          sync.Mutex
	target      string
	threshold   int
	cooldown    time.Duration
	state       BreakerState
	failures    int
	openedAt    time.Time
	trialInFlight bool
	bus         events.Publisher
}

// NewBreaker creates a breaker for target with the given failure threshold
// and cooldown window. bus may be nil if state-change events are not needed.
func NewBreaker(target string, threshold int, cooldown time.Duration, bus events.Publisher) *Breaker {
	return &Breaker{
		target:    target,
		threshold: threshold,
		cooldown:  cooldown,
		state:     BreakerClosed,
		bus:       bus,
	}
}

// Allow reports whether a call may proceed now, and if so, whether it is a
// half-open trial call (only one trial is let through at a time).
func (b *Breaker) Allow() (allowed bool, trial bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true, false
	case BreakerOpen:
		if time.Since(b.openedAt) < b.cooldown {
			return false, false
		}
		if b.trialInFlight {
			return false, false
		}
		b.transition(BreakerHalfOpen)
		b.trialInFlight = true
		return true, true
	case BreakerHalfOpen:
		return false, false
	default:
		return true, false
	}
}

// RecordSuccess closes the breaker and resets its failure counter.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.trialInFlight = false
	if b.state != BreakerClosed {
		b.transition(BreakerClosed)
	}
}

// RecordFailure increments the failure counter and opens the breaker once
// the threshold is reached, or immediately re-opens on a failed trial call.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		b.trialInFlight = false
		b.openedAt = time.Now()
		b.transition(BreakerOpen)
		return
	}

	b.failures++
	if b.failures >= b.threshold && b.state == BreakerClosed {
		b.openedAt = time.Now()
		b.transition(BreakerOpen)
	}
}

// transition must be called with mu held.
func (b *Breaker) transition(to BreakerState) {
	from := b.state
	b.state = to
	if from == to || b.bus == nil {
		return
	}
	b.bus.Publish(events.Event{
		Kind: events.KindBreakerStateChanged,
		Data: map[string]interface{}{
			"target": b.target,
			"from":   string(from),
			"to":     string(to),
		},
	})
}
