// internal/player/strategy.go
// The strategy plug-in interface and a closed registry, per §4.4 and the
// §9 design note replacing reflection-loaded plugins with an explicit
// capability plus deterministic fallback.
package player

import (
	"math/rand/v2"

	"github.com/evenodd-league/tournament/internal/models"
)

// SessionView is the read-only view of a game session passed to a
// strategy's choose_move, per §4.4.
type SessionView struct {
	GameID      string
	Role        models.Role
	OpponentID  string
	RoundNumber int
	MoveRange   models.MoveRange
	Scores      map[string]int
	History     []models.RoundRecord
}

// RoundOutcome is passed to observe() after each round resolves.
type RoundOutcome struct {
	Round models.RoundRecord
}

// GameOutcome is passed to observe() when the match concludes.
type GameOutcome struct {
	WinnerID string
	Scores   map[string]int
}

// Strategy is the pluggable decision-making capability a player delegates
// to, per §4.4: choose_move is consulted on every request_move; observe is
// notified of round and game outcomes for strategies that learn.
type Strategy interface {
	ChooseMove(view SessionView) int
	Observe(outcome interface{})
}

// AlwaysLowest always plays the minimum valid move. It is the closed
// registry's deterministic fallback for an unrecognized strategy name, per
// the §9 design note.
type AlwaysLowest struct{}

func (AlwaysLowest) ChooseMove(view SessionView) int { return view.MoveRange.Min }
func (AlwaysLowest) Observe(interface{})             {}

// FixedValue always plays a configured constant, clamped into range; useful
// for scripted scenario tests (§8 S1/S2).
type FixedValue struct {
	Value int
}

func (f FixedValue) ChooseMove(view SessionView) int {
	if f.Value < view.MoveRange.Min {
		return view.MoveRange.Min
	}
	if f.Value > view.MoveRange.Max {
		return view.MoveRange.Max
	}
	return f.Value
}

func (FixedValue) Observe(interface{}) {}

// RandomUniform plays a uniformly random move within the valid range on
// every round.
type RandomUniform struct{}

func (RandomUniform) ChooseMove(view SessionView) int {
	span := view.MoveRange.Max - view.MoveRange.Min + 1
	if span <= 0 {
		return view.MoveRange.Min
	}
	return view.MoveRange.Min + rand.IntN(span)
}

func (RandomUniform) Observe(interface{}) {}

// Registry resolves a strategy name to an implementation, falling back to
// AlwaysLowest for anything unrecognized, per the §9 design note.
type Registry struct {
	byName map[string]Strategy
}

// NewRegistry builds the closed set of known strategies.
func NewRegistry() *Registry {
	return &Registry{
		byName: map[string]Strategy{
			"always-lowest":  AlwaysLowest{},
			"random-uniform": RandomUniform{},
		},
	}
}

// Register adds or overrides a named strategy, e.g. a fixed-value strategy
// built at startup from configuration.
func (r *Registry) Register(name string, s Strategy) {
	r.byName[name] = s
}

// Resolve returns the strategy for name, or AlwaysLowest if unknown.
func (r *Registry) Resolve(name string) Strategy {
	if s, ok := r.byName[name]; ok {
		return s
	}
	return AlwaysLowest{}
}
