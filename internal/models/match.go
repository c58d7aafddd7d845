// internal/models/match.go
// Match, game session, and round-record models, per §3.

package models

import "time"

// MatchStatus is the lifecycle state of one referee-supervised pairing.
type MatchStatus string

const (
	MatchAssigned  MatchStatus = "ASSIGNED"
	MatchInviting  MatchStatus = "INVITING"
	MatchRunning   MatchStatus = "RUNNING"
	MatchComplete  MatchStatus = "COMPLETE"
	MatchForfeit   MatchStatus = "FORFEIT"
	MatchCancelled MatchStatus = "CANCELLED"
)

// MatchResult is the outcome a referee reports to the League Manager,
// per the `report_match_result` tool contract in §4.1.
type MatchResult struct {
	MatchID       string         `json:"match_id"`
	RefereeID     string         `json:"referee_id"`
	WinnerID      string         `json:"winner_id,omitempty"` // "" means draw
	Scores        map[string]int `json:"scores"`
	RoundsSummary []RoundRecord  `json:"rounds_summary"`
	Forfeit       bool           `json:"forfeit"`
	Reason        string         `json:"reason,omitempty"`
}

// Match is the League Manager's record of one assigned pairing, per §3
// "Match". Owned by the LM; the assigned Referee owns the live GameSession.
type Match struct {
	MatchID     string       `json:"match_id"`
	RoundIndex  int          `json:"round_index"`
	PlayerAID   string       `json:"player_a_id"`
	PlayerBID   string       `json:"player_b_id"`
	RefereeID   string       `json:"referee_id"`
	Status      MatchStatus  `json:"status"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Result      *MatchResult `json:"result,omitempty"`
}

// Role is a player's fixed position for the life of one match, per §4.3
// "Inviting": role assignment is deterministic and stable for the match.
type Role string

const (
	RoleOdd  Role = "ODD"
	RoleEven Role = "EVEN"
)

// GameState is the lifecycle state of one in-match game session, per §3
// "Game session".
type GameState string

const (
	GameInit               GameState = "INIT"
	GameWaitingForAccept    GameState = "WAITING_FOR_ACCEPT"
	GameCollectingMoves     GameState = "COLLECTING_MOVES"
	GameResolving           GameState = "RESOLVING"
	GameFinished            GameState = "FINISHED"
	GameAborted             GameState = "ABORTED"
)

// MoveRange is the configured valid move range for one game type, per the
// "Open question" in §9: the core treats it as a per-config parameter.
type MoveRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether move lies within [Min, Max] inclusive.
func (r MoveRange) Contains(move int) bool {
	return move >= r.Min && move <= r.Max
}

// GameConfig parameterizes one match's game session: the move range, the
// termination rule (fixed max_rounds, per the §9 open question resolved in
// DESIGN.md), and the default-move-on-timeout policy.
type GameConfig struct {
	MaxRounds        int       `json:"max_rounds"`
	ValidMoveRange   MoveRange `json:"valid_move_range"`
	DefaultMove      int       `json:"default_move"`
	ForfeitThreshold int       `json:"forfeit_threshold"` // consecutive defaults before forfeit
	MoveDeadline     time.Duration
	InviteDeadline   time.Duration
	ReportDeadline   time.Duration
}

// RoundRecord is one resolved in-match round, per §3 "Round record".
type RoundRecord struct {
	RoundNumber int            `json:"round_number"`
	Moves       map[string]int `json:"moves"`
	Sum         int            `json:"sum"`
	WinnerID    string         `json:"winner_id,omitempty"` // "" is a draw
	CompletedAt time.Time      `json:"completed_at"`
}

// GameSession is the Referee's live record of one match's game, per §3
// "Game session".
type GameSession struct {
	GameID       string
	MatchID      string
	OddPlayerID  string
	EvenPlayerID string
	Config       GameConfig
	CurrentRound int
	Scores       map[string]int // in-match round wins, keyed by player id
	History      []RoundRecord
	State        GameState
	Defaults     map[string]int // consecutive default-move count per player
	Removed      map[string]bool
}

// RoleOf returns the fixed role of playerID for this session.
func (g GameSession) RoleOf(playerID string) Role {
	if playerID == g.OddPlayerID {
		return RoleOdd
	}
	return RoleEven
}

// Opponent returns the other player id in this session.
func (g GameSession) Opponent(playerID string) string {
	if playerID == g.OddPlayerID {
		return g.EvenPlayerID
	}
	return g.OddPlayerID
}
