// internal/models/standings.go
// Standings entries and the deterministic total order over them, per §3
// "Standings entry" and §8 testable property 3.

package models

import "sort"

// StandingsEntry is one player's aggregate record, per §3.
type StandingsEntry struct {
	PlayerID    string `json:"player_id"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
	Points      int    `json:"points"`
	GamesPlayed int    `json:"games_played"`
	Rank        int    `json:"rank"`
}

// RecomputePoints applies the scoring formula points = 3*wins + draws.
func (e *StandingsEntry) RecomputePoints() {
	e.Points = 3*e.Wins + e.Draws
}

// Standings is the League Manager's ordered view of all players, for one
// round index.
type Standings struct {
	RoundIndex int              `json:"round_index"`
	Entries    []StandingsEntry `json:"standings"`
}

// Sort orders entries by points desc, then wins desc, then draws desc, then
// player_id asc, and assigns dense ranks — the deterministic tiebreak of
// §3/§8 testable property 3.
func (s *Standings) Sort() {
	sort.Slice(s.Entries, func(i, j int) bool {
		a, b := s.Entries[i], s.Entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Draws != b.Draws {
			return a.Draws > b.Draws
		}
		return a.PlayerID < b.PlayerID
	})
	for i := range s.Entries {
		s.Entries[i].Rank = i + 1
	}
}
