package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playerIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("P%02d", i+1)
	}
	return ids
}

func TestGenerateRoundRobin_RejectsFewerThanTwo(t *testing.T) {
	_, err := GenerateRoundRobin(nil)
	assert.Error(t, err)

	_, err = GenerateRoundRobin([]string{"P01"})
	assert.Error(t, err)
}

func TestGenerateRoundRobin_EvenCount(t *testing.T) {
	sched, err := GenerateRoundRobin(playerIDs(4))
	require.NoError(t, err)
	assert.Len(t, sched.Rounds, 3)

	seen := map[[2]string]int{}
	for _, round := range sched.Rounds {
		assert.Len(t, round.Pairings, 2)
		seenThisRound := map[string]bool{}
		for _, p := range round.Pairings {
			assert.NotEqual(t, p.PlayerAID, p.PlayerBID)
			assert.False(t, seenThisRound[p.PlayerAID])
			assert.False(t, seenThisRound[p.PlayerBID])
			seenThisRound[p.PlayerAID] = true
			seenThisRound[p.PlayerBID] = true

			key := pairKey(p.PlayerAID, p.PlayerBID)
			seen[key]++
		}
	}
	assert.Len(t, seen, 4*3/2)
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

func TestGenerateRoundRobin_OddCount(t *testing.T) {
	ids := playerIDs(3)
	sched, err := GenerateRoundRobin(ids)
	require.NoError(t, err)
	require.Len(t, sched.Rounds, 3)

	appearances := map[string]int{}
	for _, round := range sched.Rounds {
		assert.Len(t, round.Pairings, 1)
		for _, p := range round.Pairings {
			appearances[p.PlayerAID]++
			appearances[p.PlayerBID]++
		}
	}
	for _, id := range ids {
		assert.Equal(t, 2, appearances[id], "player %s should play exactly N-1 matches", id)
	}
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
