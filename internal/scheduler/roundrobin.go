// Package scheduler generates the round-robin schedule described in §3
// "Schedule" and §4.2 "Schedule generation", using the classic circle
// method: fix one slot, rotate the rest once per round.
package scheduler

import (
	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
)

// byeSlot marks the virtual BYE position added for an odd player count.
// It is never dispatched (§4.2).
const byeSlot = ""

// GenerateRoundRobin builds the full schedule for playerIDs, in registration
// order. It satisfies the invariants of §3(a)-(d) by construction:
//   - every unordered pair appears in exactly one pairing
//   - within a round no player appears twice
//   - N-1 rounds for even N, N rounds (one bye each) for odd N
//   - no pairing has identical ids
func GenerateRoundRobin(playerIDs []string) (models.Schedule, error) {
	n := len(playerIDs)
	if n < 2 {
		return models.Schedule{}, rpcerr.New(rpcerr.InvalidPhase, "need at least 2 players to build a schedule, got %d", n)
	}

	work := make([]string, n)
	copy(work, playerIDs)
	if n%2 == 1 {
		work = append(work, byeSlot)
	}
	m := len(work)
	rounds := m - 1

	schedule := models.Schedule{Rounds: make([]models.Round, 0, rounds)}

	for r := 0; r < rounds; r++ {
		var pairings []models.Pairing
		for i := 0; i < m/2; i++ {
			a, b := work[i], work[m-1-i]
			if a == byeSlot || b == byeSlot {
				continue
			}
			if a == b {
				return models.Schedule{}, rpcerr.New(rpcerr.StandingsInconsistency, "scheduler produced a self-pairing for %s", a)
			}
			pairings = append(pairings, models.Pairing{PlayerAID: a, PlayerBID: b})
		}
		schedule.Rounds = append(schedule.Rounds, models.Round{Index: r + 1, Pairings: pairings})

		// Rotate the sub-array work[1:] right by one, keeping work[0] fixed.
		last := work[m-1]
		for i := m - 1; i > 1; i-- {
			work[i] = work[i-1]
		}
		work[1] = last
	}

	return schedule, nil
}
