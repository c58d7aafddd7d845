// internal/player/container.go
// Dependency injection container for one Player process, adapted from the
// teacher's internal/services/container.go.
package player

import "go.uber.org/zap"

// Container holds one player's session store and strategy selection, per
// the §9 design note replacing singleton registries with explicit DI.
type Container struct {
	PlayerID     string
	DisplayName  string
	StrategyName string

	Sessions   *SessionStore
	Strategies *Registry
	logger     *zap.SugaredLogger
}

// NewContainer builds a player's runtime. The configured strategy name is
// stored here and resolved by Strategy() each time a match is accepted.
func NewContainer(playerID, displayName, strategyName string, logger *zap.SugaredLogger) *Container {
	return &Container{
		PlayerID:     playerID,
		DisplayName:  displayName,
		StrategyName: strategyName,
		Sessions:     NewSessionStore(),
		Strategies:   NewRegistry(),
		logger:       logger,
	}
}

// Strategy returns this player's configured strategy, falling back to
// AlwaysLowest for an unrecognized name.
func (c *Container) Strategy() Strategy {
	return c.Strategies.Resolve(c.StrategyName)
}
