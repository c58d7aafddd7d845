package player

import (
	"testing"

	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return newSession("G01", "M01", models.RoleOdd, "P02", models.MoveRange{Min: 1, Max: 9}, 5, AlwaysLowest{})
}

func TestSession_ChooseMoveRejectsDuplicateForSameRound(t *testing.T) {
	s := newTestSession()
	view := SessionView{MoveRange: s.MoveRange, RoundNumber: 1}

	move, err := s.ChooseMove(1, view)
	require.NoError(t, err)
	assert.Equal(t, 1, move)

	_, err = s.ChooseMove(1, view)
	require.Error(t, err)
	assert.True(t, rpcerr.IsKind(err, rpcerr.DuplicateMove))
}

func TestSession_ChooseMoveAllowsNextRound(t *testing.T) {
	s := newTestSession()
	view := SessionView{MoveRange: s.MoveRange}

	_, err := s.ChooseMove(1, view)
	require.NoError(t, err)
	_, err = s.ChooseMove(2, view)
	require.NoError(t, err)
}

func TestSession_ApplyRoundResultIsIdempotent(t *testing.T) {
	s := newTestSession()
	record := models.RoundRecord{RoundNumber: 1, Sum: 4, WinnerID: "P02"}
	scores := map[string]int{"P01": 0, "P02": 1}

	s.ApplyRoundResult(record, scores)
	assert.Len(t, s.history, 1)

	s.ApplyRoundResult(record, scores)
	assert.Len(t, s.history, 1, "replaying the same round must not duplicate history")
}

func TestSession_FinishIsIdempotentAndTerminal(t *testing.T) {
	s := newTestSession()
	assert.False(t, s.IsTerminal())

	s.Finish("P02", map[string]int{"P01": 1, "P02": 3})
	assert.True(t, s.IsTerminal())

	assert.NotPanics(t, func() {
		s.Finish("P02", map[string]int{"P01": 1, "P02": 3})
	})
}

func TestSessionStore_CreateRejectsReuseOfActiveMatch(t *testing.T) {
	store := NewSessionStore()
	_, err := store.Create("G01", "M01", models.RoleOdd, "P02", models.MoveRange{Min: 1, Max: 9}, 5, AlwaysLowest{})
	require.NoError(t, err)

	_, err = store.Create("G02", "M01", models.RoleOdd, "P02", models.MoveRange{Min: 1, Max: 9}, 5, AlwaysLowest{})
	require.Error(t, err)
	assert.True(t, rpcerr.IsKind(err, rpcerr.GameAlreadyStarted))
}

func TestSessionStore_CreateAllowsReuseAfterTermination(t *testing.T) {
	store := NewSessionStore()
	s, err := store.Create("G01", "M01", models.RoleOdd, "P02", models.MoveRange{Min: 1, Max: 9}, 5, AlwaysLowest{})
	require.NoError(t, err)
	s.Finish("", nil)

	_, err = store.Create("G02", "M01", models.RoleOdd, "P02", models.MoveRange{Min: 1, Max: 9}, 5, AlwaysLowest{})
	assert.NoError(t, err)
}

func TestSessionStore_GetUnknownGameFails(t *testing.T) {
	store := NewSessionStore()
	_, err := store.Get("GHOST")
	require.Error(t, err)
	assert.True(t, rpcerr.IsKind(err, rpcerr.UnknownGame))
}
