// internal/referee/run.go
// The match execution state machine, per §4.3: ASSIGNED -> INVITING ->
// RUNNING(rounds) -> FINISHED, with FORFEIT/CANCELLED side-exits.
package referee

import (
	"context"
	"sync"
	"time"

	"github.com/evenodd-league/tournament/internal/events"
	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol"
	"github.com/evenodd-league/tournament/internal/utils"
	"go.uber.org/zap"
)

// Fallback per-call deadlines, per §5, used when an assignment's
// GameConfig leaves the corresponding deadline unset (zero).
const (
	defaultInviteDeadline = 5 * time.Second
	defaultMoveDeadline   = 30 * time.Second
	defaultResultDeadline = 5 * time.Second
)

// PlayerRef is everything a referee needs to reach one assigned player.
type PlayerRef struct {
	PlayerID string
	Endpoint string
}

// Assignment is the payload a match Run is constructed from.
type Assignment struct {
	MatchID    string
	RoundIndex int
	PlayerA    PlayerRef
	PlayerB    PlayerRef
	Config     models.GameConfig
	LMEndpoint string
	RefereeID  string
}

// Run owns one match's live GameSession and drives it to a terminal state.
type Run struct {
	assignment Assignment
	client     *protocol.Client
	bus        events.Publisher
	logger     *zap.SugaredLogger

	mu        sync.Mutex
	cancelled bool
	reason    string
	session   *models.GameSession
}

// NewRun constructs a Run for assignment; call Execute to drive it.
func NewRun(assignment Assignment, client *protocol.Client, bus events.Publisher, logger *zap.SugaredLogger) *Run {
	oddID, evenID := assignRoles(assignment.PlayerA.PlayerID, assignment.PlayerB.PlayerID)
	gameID := utils.GameID(assignment.MatchID)
	return &Run{
		assignment: assignment,
		client:     client,
		bus:        bus,
		logger:     logger,
		session: &models.GameSession{
			GameID:       gameID,
			MatchID:      assignment.MatchID,
			OddPlayerID:  oddID,
			EvenPlayerID: evenID,
			Config:       assignment.Config,
			Scores:       map[string]int{oddID: 0, evenID: 0},
			Defaults:     map[string]int{oddID: 0, evenID: 0},
			Removed:      map[string]bool{},
			State:        models.GameInit,
		},
	}
}

// Cancel marks the run cancelled; the next suspension point observes it.
func (r *Run) Cancel(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
	r.reason = reason
}

func (r *Run) isCancelled() (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled, r.reason
}

// inviteDeadline, moveDeadline, and resultDeadline read the configured
// per-call deadlines off the match's GameConfig, falling back to the
// package defaults when a deployment leaves one unset.
func (r *Run) inviteDeadline() time.Duration {
	if d := r.session.Config.InviteDeadline; d > 0 {
		return d
	}
	return defaultInviteDeadline
}

func (r *Run) moveDeadline() time.Duration {
	if d := r.session.Config.MoveDeadline; d > 0 {
		return d
	}
	return defaultMoveDeadline
}

func (r *Run) resultDeadline() time.Duration {
	if d := r.session.Config.ReportDeadline; d > 0 {
		return d
	}
	return defaultResultDeadline
}

// assignRoles deterministically assigns ODD to the lexicographically
// smaller player id, per the §9 open question resolved this way and
// recorded in DESIGN.md.
func assignRoles(a, b string) (odd, even string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Execute runs the match to completion: invite, round loop, then finish and
// report. It never returns an error; finished and forfeited matches funnel
// into a terminal report_match_result call, while a cancelled match only
// sends game_over to both players and reports nothing to the LM.
func (r *Run) Execute() {
	ctx := context.Background()
	s := r.session

	accepted, forfeitWinner, reason := r.invite(ctx)
	if !accepted {
		r.finishForfeit(ctx, forfeitWinner, reason)
		return
	}

	s.State = models.GameCollectingMoves
	for round := 1; round <= s.Config.MaxRounds; round++ {
		if cancelled, reason := r.isCancelled(); cancelled {
			r.finishCancelled(ctx, reason)
			return
		}

		s.CurrentRound = round
		record, removedID, removedReason := r.playRound(ctx, round)
		if removedID != "" {
			winner := s.Opponent(removedID)
			r.finishForfeit(ctx, winner, removedReason)
			return
		}
		s.History = append(s.History, record)
		if record.WinnerID != "" {
			s.Scores[record.WinnerID]++
		}
		r.deliverRoundResult(ctx, record)
	}

	r.finishNormal(ctx)
}

// invite sends game_invite to both players concurrently and awaits both
// responses within the invite deadline, per §4.3 "Inviting".
func (r *Run) invite(ctx context.Context) (accepted bool, forfeitWinner, reason string) {
	s := r.session
	s.State = models.GameWaitingForAccept

	type inviteResp struct {
		Accepted bool   `json:"accepted"`
		Reason   string `json:"reason"`
	}
	var respA, respB inviteResp

	callA := protocol.PeerCall{
		Endpoint: r.assignment.PlayerA.Endpoint,
		Method:   "game_invite",
		Payload: map[string]interface{}{
			"match_id": r.assignment.MatchID, "game_id": s.GameID,
			"role": string(s.RoleOf(r.assignment.PlayerA.PlayerID)),
			"opponent_id": r.assignment.PlayerB.PlayerID,
			"max_rounds":  s.Config.MaxRounds, "valid_move_range": s.Config.ValidMoveRange,
		},
		Dst: &respA,
	}
	callB := protocol.PeerCall{
		Endpoint: r.assignment.PlayerB.Endpoint,
		Method:   "game_invite",
		Payload: map[string]interface{}{
			"match_id": r.assignment.MatchID, "game_id": s.GameID,
			"role": string(s.RoleOf(r.assignment.PlayerB.PlayerID)),
			"opponent_id": r.assignment.PlayerA.PlayerID,
			"max_rounds":  s.Config.MaxRounds, "valid_move_range": s.Config.ValidMoveRange,
		},
		Dst: &respB,
	}

	errA, errB := r.client.FanOut2(ctx, callA, callB, r.inviteDeadline())

	okA := errA == nil && respA.Accepted
	okB := errB == nil && respB.Accepted

	switch {
	case okA && okB:
		return true, "", ""
	case okA && !okB:
		return false, r.assignment.PlayerA.PlayerID, "opponent declined or timed out on invite"
	case okB && !okA:
		return false, r.assignment.PlayerB.PlayerID, "opponent declined or timed out on invite"
	default:
		return false, "", "both players declined or timed out on invite"
	}
}

// playRound collects both moves for round, defaulting on timeout/invalid
// move, and adjudicates the even/odd game, per §4.3 "Round loop".
func (r *Run) playRound(ctx context.Context, round int) (record models.RoundRecord, removedID, removedReason string) {
	s := r.session
	view := map[string]interface{}{
		"round_number": round,
		"scores":       s.Scores,
	}

	type moveResp struct {
		Move int `json:"move"`
	}
	var respOdd, respEven moveResp

	callOdd := protocol.PeerCall{
		Endpoint: r.endpointFor(s.OddPlayerID), Method: "request_move",
		Payload: map[string]interface{}{"game_id": s.GameID, "round_number": round, "game_state_view": view},
		Dst:     &respOdd,
	}
	callEven := protocol.PeerCall{
		Endpoint: r.endpointFor(s.EvenPlayerID), Method: "request_move",
		Payload: map[string]interface{}{"game_id": s.GameID, "round_number": round, "game_state_view": view},
		Dst:     &respEven,
	}

	errOdd, errEven := r.client.FanOut2(ctx, callOdd, callEven, r.moveDeadline())

	moveOdd := r.resolveMove(s.OddPlayerID, respOdd.Move, errOdd)
	moveEven := r.resolveMove(s.EvenPlayerID, respEven.Move, errEven)

	if removed := r.checkForfeitThreshold(s.OddPlayerID); removed {
		return models.RoundRecord{}, s.OddPlayerID, "exceeded default-move forfeit threshold"
	}
	if removed := r.checkForfeitThreshold(s.EvenPlayerID); removed {
		return models.RoundRecord{}, s.EvenPlayerID, "exceeded default-move forfeit threshold"
	}

	sum := moveOdd + moveEven
	var winnerID string
	if sum%2 == 0 {
		winnerID = s.EvenPlayerID
	} else {
		winnerID = s.OddPlayerID
	}

	return models.RoundRecord{
		RoundNumber: round,
		Moves:       map[string]int{s.OddPlayerID: moveOdd, s.EvenPlayerID: moveEven},
		Sum:         sum,
		WinnerID:    winnerID,
		CompletedAt: time.Now().UTC(),
	}, "", ""
}

// resolveMove validates a move response, substituting the configured
// default on timeout/transport failure or an out-of-range value, per §4.3
// step 2-3.
func (r *Run) resolveMove(playerID string, move int, err error) int {
	s := r.session
	inRange := s.Config.ValidMoveRange.Contains(move)
	if err == nil && inRange {
		s.Defaults[playerID] = 0
		return move
	}
	s.Defaults[playerID]++
	return s.Config.DefaultMove
}

func (r *Run) checkForfeitThreshold(playerID string) bool {
	s := r.session
	if s.Removed[playerID] {
		return true
	}
	if s.Config.ForfeitThreshold > 0 && s.Defaults[playerID] >= s.Config.ForfeitThreshold {
		s.Removed[playerID] = true
		return true
	}
	return false
}

func (r *Run) endpointFor(playerID string) string {
	if playerID == r.assignment.PlayerA.PlayerID {
		return r.assignment.PlayerA.Endpoint
	}
	return r.assignment.PlayerB.Endpoint
}

// deliverRoundResult fans round_result out to both players; delivery
// failure is logged but never blocks the match, per §4.3 step 5.
func (r *Run) deliverRoundResult(ctx context.Context, record models.RoundRecord) {
	s := r.session
	payload := map[string]interface{}{
		"game_id": s.GameID, "round_number": record.RoundNumber,
		"moves": record.Moves, "sum": record.Sum, "winner_id": record.WinnerID, "scores": s.Scores,
	}
	callOdd := protocol.PeerCall{Endpoint: r.endpointFor(s.OddPlayerID), Method: "round_result", Payload: payload}
	callEven := protocol.PeerCall{Endpoint: r.endpointFor(s.EvenPlayerID), Method: "round_result", Payload: payload}

	errOdd, errEven := r.client.FanOut2(ctx, callOdd, callEven, r.resultDeadline())
	if errOdd != nil {
		r.logger.Warnw("round_result delivery failed", "match_id", r.assignment.MatchID, "player_id", s.OddPlayerID, "err", errOdd)
	}
	if errEven != nil {
		r.logger.Warnw("round_result delivery failed", "match_id", r.assignment.MatchID, "player_id", s.EvenPlayerID, "err", errEven)
	}
}

// matchWinner determines the match winner from final in-match scores, per
// §4.3 "Finishing": higher score wins; equal is a draw.
func (r *Run) matchWinner() string {
	s := r.session
	if s.Scores[s.OddPlayerID] == s.Scores[s.EvenPlayerID] {
		return ""
	}
	if s.Scores[s.OddPlayerID] > s.Scores[s.EvenPlayerID] {
		return s.OddPlayerID
	}
	return s.EvenPlayerID
}

func (r *Run) finishNormal(ctx context.Context) {
	s := r.session
	s.State = models.GameFinished
	winner := r.matchWinner()

	r.deliverGameOver(ctx, winner, "")
	r.reportResult(ctx, winner, false, "")

	r.bus.Publish(events.Event{Kind: events.KindMatchCompleted, Data: map[string]interface{}{
		"match_id": r.assignment.MatchID, "winner_id": winner,
	}})
}

func (r *Run) finishForfeit(ctx context.Context, winnerID, reason string) {
	s := r.session
	s.State = models.GameFinished
	r.deliverGameOver(ctx, winnerID, reason)
	r.reportResult(ctx, winnerID, true, reason)

	r.bus.Publish(events.Event{Kind: events.KindMatchForfeited, Data: map[string]interface{}{
		"match_id": r.assignment.MatchID, "winner_id": winnerID, "reason": reason,
	}})
}

func (r *Run) finishCancelled(ctx context.Context, reason string) {
	r.session.State = models.GameAborted
	r.deliverGameOver(ctx, "", reason)
}

func (r *Run) deliverGameOver(ctx context.Context, winnerID, reason string) {
	s := r.session
	payload := map[string]interface{}{
		"game_id": s.GameID, "winner_id": winnerID, "scores": s.Scores, "reason": reason,
	}
	callOdd := protocol.PeerCall{Endpoint: r.endpointFor(s.OddPlayerID), Method: "game_over", Payload: payload}
	callEven := protocol.PeerCall{Endpoint: r.endpointFor(s.EvenPlayerID), Method: "game_over", Payload: payload}
	r.client.FanOut2(ctx, callOdd, callEven, r.resultDeadline())
}

// reportResult delivers report_match_result to the LM, retried under the
// outbound retry policy and then again indefinitely until acknowledged,
// sleeping 1s after the first failed round of attempts and doubling that
// sleep each time until it reaches 32s, per §4.3 "Finishing": standings
// correctness depends on delivery.
func (r *Run) reportResult(ctx context.Context, winnerID string, forfeit bool, reason string) {
	s := r.session
	payload := map[string]interface{}{
		"match_id": r.assignment.MatchID, "referee_id": r.assignment.RefereeID,
		"winner_id": winnerID, "scores": s.Scores, "rounds_summary": s.History,
		"forfeit": forfeit, "reason": reason,
	}

	backoff := time.Second
	for {
		var resp struct {
			Acknowledged bool `json:"acknowledged"`
		}
		err := r.client.Call(ctx, r.assignment.LMEndpoint, "report_match_result", payload, &resp, r.resultDeadline())
		if err == nil && resp.Acknowledged {
			return
		}
		r.logger.Warnw("report_match_result not yet acknowledged, retrying", "match_id", r.assignment.MatchID, "err", err)
		time.Sleep(backoff)
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
