package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandingsSort_OrdersByPointsThenWinsThenDrawsThenID(t *testing.T) {
	s := Standings{Entries: []StandingsEntry{
		{PlayerID: "P03", Wins: 1, Draws: 0, Points: 3},
		{PlayerID: "P01", Wins: 1, Draws: 0, Points: 3},
		{PlayerID: "P02", Wins: 0, Draws: 3, Points: 3},
		{PlayerID: "P04", Wins: 2, Draws: 0, Points: 6},
	}}
	s.Sort()

	ids := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		ids[i] = e.PlayerID
	}
	assert.Equal(t, []string{"P04", "P01", "P03", "P02"}, ids)
}

func TestStandingsSort_AssignsDenseRanks(t *testing.T) {
	s := Standings{Entries: []StandingsEntry{
		{PlayerID: "P01", Points: 0},
		{PlayerID: "P02", Points: 6},
		{PlayerID: "P03", Points: 3},
	}}
	s.Sort()
	for i, e := range s.Entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestMoveRangeContains(t *testing.T) {
	r := MoveRange{Min: 1, Max: 9}
	assert.True(t, r.Contains(1))
	assert.True(t, r.Contains(9))
	assert.True(t, r.Contains(5))
	assert.False(t, r.Contains(0))
	assert.False(t, r.Contains(10))
}

func TestPairingIsBye(t *testing.T) {
	assert.True(t, Pairing{PlayerAID: "P01", PlayerBID: ""}.IsBye())
	assert.True(t, Pairing{PlayerAID: "", PlayerBID: "P01"}.IsBye())
	assert.False(t, Pairing{PlayerAID: "P01", PlayerBID: "P02"}.IsBye())
}

func TestGameSessionRoleOfAndOpponent(t *testing.T) {
	g := GameSession{OddPlayerID: "P01", EvenPlayerID: "P02"}
	assert.Equal(t, RoleOdd, g.RoleOf("P01"))
	assert.Equal(t, RoleEven, g.RoleOf("P02"))
	assert.Equal(t, "P02", g.Opponent("P01"))
	assert.Equal(t, "P01", g.Opponent("P02"))
}

func TestRefereeLoadAndAtCapacity(t *testing.T) {
	r := Referee{Capacity: 4, ActiveMatches: 2}
	assert.Equal(t, 0.5, r.Load())
	assert.False(t, r.AtCapacity())

	full := Referee{Capacity: 2, ActiveMatches: 2}
	assert.True(t, full.AtCapacity())

	zeroCap := Referee{Capacity: 0}
	assert.Equal(t, float64(1), zeroCap.Load())
}

func TestPlayerSupportsGame(t *testing.T) {
	p := Player{SupportedGames: []string{"even-odd-sum"}}
	assert.True(t, p.SupportsGame("even-odd-sum"))
	assert.False(t, p.SupportsGame("rock-paper-scissors"))
}
