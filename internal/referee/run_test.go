package referee

import (
	"testing"

	"github.com/evenodd-league/tournament/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAssignRoles_LexicographicallySmallerIsOdd(t *testing.T) {
	odd, even := assignRoles("P02", "P01")
	assert.Equal(t, "P01", odd)
	assert.Equal(t, "P02", even)

	odd, even = assignRoles("P01", "P02")
	assert.Equal(t, "P01", odd)
	assert.Equal(t, "P02", even)
}

func newTestRun() *Run {
	return &Run{
		assignment: Assignment{
			MatchID: "M01",
			PlayerA: PlayerRef{PlayerID: "P01"},
			PlayerB: PlayerRef{PlayerID: "P02"},
		},
		session: &models.GameSession{
			OddPlayerID:  "P01",
			EvenPlayerID: "P02",
			Config: models.GameConfig{
				ValidMoveRange:   models.MoveRange{Min: 1, Max: 9},
				DefaultMove:      1,
				ForfeitThreshold: 3,
			},
			Scores:   map[string]int{"P01": 0, "P02": 0},
			Defaults: map[string]int{"P01": 0, "P02": 0},
			Removed:  map[string]bool{},
		},
	}
}

func TestResolveMove_AcceptsInRangeMove(t *testing.T) {
	r := newTestRun()
	move := r.resolveMove("P01", 5, nil)
	assert.Equal(t, 5, move)
	assert.Equal(t, 0, r.session.Defaults["P01"])
}

func TestResolveMove_DefaultsOnOutOfRangeMove(t *testing.T) {
	r := newTestRun()
	move := r.resolveMove("P01", 99, nil)
	assert.Equal(t, 1, move)
	assert.Equal(t, 1, r.session.Defaults["P01"])
}

func TestResolveMove_DefaultsOnTransportError(t *testing.T) {
	r := newTestRun()
	move := r.resolveMove("P01", 0, assert.AnError)
	assert.Equal(t, 1, move)
	assert.Equal(t, 1, r.session.Defaults["P01"])
}

func TestResolveMove_ResetsDefaultStreakOnGoodMove(t *testing.T) {
	r := newTestRun()
	r.resolveMove("P01", 0, assert.AnError)
	r.resolveMove("P01", 0, assert.AnError)
	assert.Equal(t, 2, r.session.Defaults["P01"])

	r.resolveMove("P01", 5, nil)
	assert.Equal(t, 0, r.session.Defaults["P01"])
}

func TestCheckForfeitThreshold_TripsAtConfiguredCount(t *testing.T) {
	r := newTestRun()
	r.resolveMove("P01", 0, assert.AnError)
	r.resolveMove("P01", 0, assert.AnError)
	assert.False(t, r.checkForfeitThreshold("P01"))

	r.resolveMove("P01", 0, assert.AnError)
	assert.True(t, r.checkForfeitThreshold("P01"))
	assert.True(t, r.session.Removed["P01"])
}

func TestCheckForfeitThreshold_AlreadyRemovedStaysRemoved(t *testing.T) {
	r := newTestRun()
	r.session.Removed["P01"] = true
	assert.True(t, r.checkForfeitThreshold("P01"))
}

func TestMatchWinner_HigherScoreWins(t *testing.T) {
	r := newTestRun()
	r.session.Scores["P01"] = 3
	r.session.Scores["P02"] = 1
	assert.Equal(t, "P01", r.matchWinner())
}

func TestMatchWinner_EqualScoresIsDraw(t *testing.T) {
	r := newTestRun()
	r.session.Scores["P01"] = 2
	r.session.Scores["P02"] = 2
	assert.Equal(t, "", r.matchWinner())
}

func TestCancel_MarksRunCancelledWithReason(t *testing.T) {
	r := newTestRun()
	cancelled, _ := r.isCancelled()
	assert.False(t, cancelled)

	r.Cancel("league manager withdrew the assignment")
	cancelled, reason := r.isCancelled()
	assert.True(t, cancelled)
	assert.Equal(t, "league manager withdrew the assignment", reason)
}
