// internal/leaguemanager/standings.go
// Standings aggregation, per §3 "Standings entry" and §4.2 "Result ingestion".
// A single-writer mutex enforces the atomic round-to-round transition §5
// requires: no reader ever observes a half-applied round.

package leaguemanager

import (
	"sync"

	"github.com/evenodd-league/tournament/internal/models"
)

// StandingsBoard is the League Manager's mutable standings aggregate,
// mutated only by applying completed match results.
type StandingsBoard struct {
	mu         sync.RWMutex
	roundIndex int
	byPlayer   map[string]*models.StandingsEntry
	order      []string // registration order, for stable iteration before sort
}

// NewStandingsBoard seeds an empty board for the given players, in
// registration order.
func NewStandingsBoard(players []models.Player) *StandingsBoard {
	b := &StandingsBoard{
		byPlayer: make(map[string]*models.StandingsEntry, len(players)),
	}
	for _, p := range players {
		b.byPlayer[p.PlayerID] = &models.StandingsEntry{PlayerID: p.PlayerID}
		b.order = append(b.order, p.PlayerID)
	}
	return b
}

// Seed populates the board with one zeroed entry per player, called once
// registration closes and the final player set is known (§4.2 start_league).
func (b *StandingsBoard) Seed(players []models.Player) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byPlayer = make(map[string]*models.StandingsEntry, len(players))
	b.order = b.order[:0]
	for _, p := range players {
		b.byPlayer[p.PlayerID] = &models.StandingsEntry{PlayerID: p.PlayerID}
		b.order = append(b.order, p.PlayerID)
	}
}

// ApplyResult folds one completed match's outcome into standings: winnerID
// empty means a draw; both player ids always get games_played incremented.
// Forfeits use the same entry points as a normal win/loss.
func (b *StandingsBoard) ApplyResult(playerAID, playerBID, winnerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a := b.byPlayer[playerAID]
	bb := b.byPlayer[playerBID]
	if a == nil || bb == nil {
		return
	}

	a.GamesPlayed++
	bb.GamesPlayed++

	switch winnerID {
	case "":
		a.Draws++
		bb.Draws++
	case playerAID:
		a.Wins++
		bb.Losses++
	case playerBID:
		bb.Wins++
		a.Losses++
	}

	a.RecomputePoints()
	bb.RecomputePoints()
}

// ApplyDoubleForfeit folds in a match cancelled before either player could
// compete (e.g. no referee ever accepted the assignment): both players are
// charged a loss and zero score, per §4.2 step 4.
func (b *StandingsBoard) ApplyDoubleForfeit(playerAID, playerBID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a := b.byPlayer[playerAID]
	bb := b.byPlayer[playerBID]
	if a == nil || bb == nil {
		return
	}
	a.GamesPlayed++
	bb.GamesPlayed++
	a.Losses++
	bb.Losses++
	a.RecomputePoints()
	bb.RecomputePoints()
}

// SetRoundIndex records which round the current snapshot reflects, called
// by the controller once a round's results are fully ingested.
func (b *StandingsBoard) SetRoundIndex(round int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roundIndex = round
}

// Snapshot returns a sorted, ranked copy of the board, per the deterministic
// tiebreak of §3/§8 testable property 3.
func (b *StandingsBoard) Snapshot() models.Standings {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]models.StandingsEntry, 0, len(b.order))
	for _, id := range b.order {
		entries = append(entries, *b.byPlayer[id])
	}
	s := models.Standings{RoundIndex: b.roundIndex, Entries: entries}
	s.Sort()
	return s
}
