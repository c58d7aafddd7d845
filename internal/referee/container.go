// internal/referee/container.go
// Dependency injection container for one Referee process, adapted from the
// teacher's internal/services/container.go.
package referee

import (
	"sync"

	"github.com/evenodd-league/tournament/internal/events"
	"github.com/evenodd-league/tournament/internal/protocol"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Container holds one referee's live match set and its capacity-bounded
// worker pool, per §4.3 "Per-referee concurrency": up to capacity matches
// run concurrently, sharing no mutable state beyond the capacity counter.
type Container struct {
	RefereeID string
	Capacity  int

	client *protocol.Client
	bus    events.Publisher
	logger *zap.SugaredLogger
	pool   *ants.Pool

	mu      sync.Mutex
	matches map[string]*Run
}

// NewContainer builds a referee container with a worker pool sized to
// capacity concurrent matches.
func NewContainer(refereeID string, capacity int, client *protocol.Client, bus events.Publisher, logger *zap.SugaredLogger) (*Container, error) {
	pool, err := ants.NewPool(capacity)
	if err != nil {
		return nil, err
	}
	return &Container{
		RefereeID: refereeID,
		Capacity:  capacity,
		client:    client,
		bus:       bus,
		logger:    logger,
		pool:      pool,
		matches:   make(map[string]*Run),
	}, nil
}

// Release tears down the worker pool.
func (c *Container) Release() { c.pool.Release() }

// HasRoom reports whether another match can be accepted right now, without
// blocking (the pool's Submit would otherwise queue rather than reject).
func (c *Container) HasRoom() bool {
	return c.pool.Running() < c.pool.Cap()
}

// Accept registers and launches a match run if there is capacity; returns
// false if the referee is already at capacity.
func (c *Container) Accept(matchID string, run *Run) bool {
	if !c.HasRoom() {
		return false
	}
	c.mu.Lock()
	c.matches[matchID] = run
	c.mu.Unlock()

	err := c.pool.Submit(func() {
		run.Execute()
		c.mu.Lock()
		delete(c.matches, matchID)
		c.mu.Unlock()
	})
	if err != nil {
		c.mu.Lock()
		delete(c.matches, matchID)
		c.mu.Unlock()
		return false
	}
	return true
}

// Lookup finds a live match run by id, for cancel_match.
func (c *Container) Lookup(matchID string) (*Run, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.matches[matchID]
	return r, ok
}

// ActiveCount reports the number of matches currently running.
func (c *Container) ActiveCount() int {
	return c.pool.Running()
}
