// internal/models/tournament.go
// Tournament state and schedule, owned exclusively by the League Manager.

package models

// Phase is the tournament's lifecycle state, per §3 "Tournament state".
type Phase string

const (
	PhaseRegistrationOpen Phase = "REGISTRATION_OPEN"
	PhaseScheduled        Phase = "SCHEDULED"
	PhaseRunningRound     Phase = "RUNNING_ROUND"
	PhaseBetweenRounds    Phase = "BETWEEN_ROUNDS"
	PhaseComplete         Phase = "COMPLETE"
)

// Pairing is one matchup within a round, or a bye if either player id is empty.
type Pairing struct {
	PlayerAID string `json:"player_a_id"`
	PlayerBID string `json:"player_b_id"` // "" for a bye
}

// IsBye reports whether this pairing is a scheduling bye, not a real match.
func (p Pairing) IsBye() bool {
	return p.PlayerBID == "" || p.PlayerAID == ""
}

// Round is one set of pairings played in parallel, per the glossary's
// "Round (tournament)" entry.
type Round struct {
	Index    int       `json:"index"`
	Pairings []Pairing `json:"pairings"`
}

// Schedule is the full round-robin sequence generated by the circle method,
// per §3 "Schedule" and §4.2 "Schedule generation".
type Schedule struct {
	Rounds []Round `json:"rounds"`
}

// TotalRounds returns the number of rounds in the schedule.
func (s Schedule) TotalRounds() int {
	return len(s.Rounds)
}

// Tournament is the League Manager's single authoritative aggregate root,
// per §3 "Tournament state".
type Tournament struct {
	TournamentID string
	GameType     string
	Players      []Player
	Referees     []Referee
	Phase        Phase
	CurrentRound int
	Schedule     Schedule
}
