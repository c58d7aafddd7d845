// internal/player/session.go
// Per-game session mirror kept by a Player, per §3 "Game session" (player
// side) and §4.4's idempotency/duplicate-rejection requirements.
package player

import (
	"sync"

	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
)

// Session is one player's local mirror of a live match.
type Session struct {
	GameID      string
	MatchID     string
	Role        models.Role
	OpponentID  string
	MoveRange   models.MoveRange
	MaxRounds   int
	Strategy    Strategy

	mu              sync.Mutex
	scores          map[string]int
	history         []models.RoundRecord
	movedThisRound  map[int]bool
	terminal        bool
	lastRoundSeen   int
}

func newSession(gameID, matchID string, role models.Role, opponentID string, moveRange models.MoveRange, maxRounds int, strategy Strategy) *Session {
	return &Session{
		GameID: gameID, MatchID: matchID, Role: role, OpponentID: opponentID,
		MoveRange: moveRange, MaxRounds: maxRounds, Strategy: strategy,
		scores:         map[string]int{},
		movedThisRound: map[int]bool{},
	}
}

// ChooseMove asks the strategy for this round's move and records that the
// player has now moved for roundNumber, per §4.4 "MUST NOT submit more than
// one move per round per game".
func (s *Session) ChooseMove(roundNumber int, view SessionView) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.movedThisRound[roundNumber] {
		return 0, rpcerr.New(rpcerr.DuplicateMove, "already submitted a move for round %d of game %s", roundNumber, s.GameID)
	}
	s.movedThisRound[roundNumber] = true

	view.History = s.history
	view.Scores = s.scores
	return s.Strategy.ChooseMove(view), nil
}

// ApplyRoundResult folds a delivered round_result into the session
// idempotently: a round already recorded causes no further state change,
// per §4.4.
func (s *Session) ApplyRoundResult(record models.RoundRecord, scores map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.RoundNumber <= s.lastRoundSeen {
		return
	}
	s.lastRoundSeen = record.RoundNumber
	s.history = append(s.history, record)
	for k, v := range scores {
		s.scores[k] = v
	}
	s.Strategy.Observe(RoundOutcome{Round: record})
}

// Finish marks the session terminal and notifies the strategy, idempotently.
func (s *Session) Finish(winnerID string, scores map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal {
		return
	}
	s.terminal = true
	for k, v := range scores {
		s.scores[k] = v
	}
	s.Strategy.Observe(GameOutcome{WinnerID: winnerID, Scores: scores})
}

// IsTerminal reports whether game_over has already been applied.
func (s *Session) IsTerminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}

// SessionStore tracks one player's sessions across concurrently-running
// matches, keyed by game_id.
type SessionStore struct {
	mu       sync.Mutex
	byGameID map[string]*Session
	byMatch  map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		byGameID: make(map[string]*Session),
		byMatch:  make(map[string]*Session),
	}
}

// Create registers a new session for an accepted invite. Returns an error
// if matchID already has a session in a non-terminal state, per §4.4
// "MUST reject an invite whose match_id/game_id it already has in a
// non-terminal state".
func (st *SessionStore) Create(gameID, matchID string, role models.Role, opponentID string, moveRange models.MoveRange, maxRounds int, strategy Strategy) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if existing, ok := st.byMatch[matchID]; ok && !existing.IsTerminal() {
		return nil, rpcerr.New(rpcerr.GameAlreadyStarted, "match %s already has an active session", matchID)
	}

	s := newSession(gameID, matchID, role, opponentID, moveRange, maxRounds, strategy)
	st.byGameID[gameID] = s
	st.byMatch[matchID] = s
	return s, nil
}

// Get looks up a session by game_id, failing with UNKNOWN_GAME if absent,
// per §4.4 "MUST reject moves submitted for unknown game ids".
func (st *SessionStore) Get(gameID string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.byGameID[gameID]
	if !ok {
		return nil, rpcerr.New(rpcerr.UnknownGame, "unknown game_id %s", gameID)
	}
	return s, nil
}
