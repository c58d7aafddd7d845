package leaguemanager

import (
	"testing"

	"github.com/evenodd-league/tournament/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBoard(ids ...string) *StandingsBoard {
	players := make([]models.Player, len(ids))
	for i, id := range ids {
		players[i] = models.Player{PlayerID: id}
	}
	return NewStandingsBoard(players)
}

func TestStandingsBoard_ApplyResultWin(t *testing.T) {
	b := seedBoard("P01", "P02")
	b.ApplyResult("P01", "P02", "P01")

	snap := b.Snapshot()
	require.Len(t, snap.Entries, 2)

	byID := map[string]models.StandingsEntry{}
	for _, e := range snap.Entries {
		byID[e.PlayerID] = e
	}
	assert.Equal(t, 1, byID["P01"].Wins)
	assert.Equal(t, 3, byID["P01"].Points)
	assert.Equal(t, 1, byID["P02"].Losses)
	assert.Equal(t, 0, byID["P02"].Points)
	assert.Equal(t, 1, byID["P01"].GamesPlayed)
	assert.Equal(t, 1, byID["P02"].GamesPlayed)
}

func TestStandingsBoard_ApplyResultDraw(t *testing.T) {
	b := seedBoard("P01", "P02")
	b.ApplyResult("P01", "P02", "")

	snap := b.Snapshot()
	for _, e := range snap.Entries {
		assert.Equal(t, 1, e.Draws)
		assert.Equal(t, 1, e.Points)
	}
}

func TestStandingsBoard_ApplyDoubleForfeitChargesBothALoss(t *testing.T) {
	b := seedBoard("P01", "P02")
	b.ApplyDoubleForfeit("P01", "P02")

	snap := b.Snapshot()
	for _, e := range snap.Entries {
		assert.Equal(t, 1, e.Losses)
		assert.Equal(t, 0, e.Points)
		assert.Equal(t, 1, e.GamesPlayed)
	}
}

func TestStandingsBoard_SnapshotIsSortedAndRanked(t *testing.T) {
	b := seedBoard("P01", "P02", "P03")
	b.ApplyResult("P01", "P02", "P01")
	b.ApplyResult("P01", "P03", "P01")

	snap := b.Snapshot()
	require.Len(t, snap.Entries, 3)
	assert.Equal(t, "P01", snap.Entries[0].PlayerID)
	assert.Equal(t, 1, snap.Entries[0].Rank)
}

func TestStandingsBoard_SeedResetsPriorState(t *testing.T) {
	b := seedBoard("P01", "P02")
	b.ApplyResult("P01", "P02", "P01")

	b.Seed([]models.Player{{PlayerID: "P03"}, {PlayerID: "P04"}})
	snap := b.Snapshot()
	require.Len(t, snap.Entries, 2)
	for _, e := range snap.Entries {
		assert.Equal(t, 0, e.Wins)
		assert.Equal(t, 0, e.GamesPlayed)
	}
}

func TestStandingsBoard_ApplyResultUnknownPlayerIsNoop(t *testing.T) {
	b := seedBoard("P01", "P02")
	assert.NotPanics(t, func() {
		b.ApplyResult("P01", "GHOST", "P01")
	})
	snap := b.Snapshot()
	for _, e := range snap.Entries {
		assert.Equal(t, 0, e.GamesPlayed)
	}
}
