// internal/leaguemanager/controller.go
// Tournament phase state machine: registration -> schedule -> per-round
// dispatch -> standings -> completion, per §3 "Tournament state" and §4.2
// "Phase transitions". The round barrier required by §5 ("report_match_result
// for round R MUST be fully ingested before the first dispatch of round
// R+1") is enforced here with one channel per in-flight match: dispatch
// blocks on that channel, and the result-ingestion handler closes it.
package leaguemanager

import (
	"context"
	"sync"
	"time"

	"github.com/evenodd-league/tournament/internal/events"
	"github.com/evenodd-league/tournament/internal/leaguemanager/snapshotstore"
	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
	"github.com/evenodd-league/tournament/internal/scheduler"
	"github.com/evenodd-league/tournament/internal/utils"
	"go.uber.org/zap"
)

// Controller owns tournament phase, schedule, and the round barrier.
type Controller struct {
	mu sync.Mutex

	tournamentID string
	gameType     string

	registry   *Registry
	standings  *StandingsBoard
	dispatcher *Dispatcher
	cache      *Cache
	snapshots  *snapshotstore.Store // nil unless snapshotting is enabled and MySQL is configured
	bus        events.Publisher
	logger     *zap.SugaredLogger

	phase        models.Phase
	currentRound int
	schedule     models.Schedule

	pendingMu sync.Mutex
	pending   map[string]chan struct{}
}

// NewController wires a controller over an already-populated registry.
// snapshots may be nil, in which case round-end standings are kept only
// in memory.
func NewController(tournamentID, gameType string, registry *Registry, standings *StandingsBoard, dispatcher *Dispatcher, cache *Cache, snapshots *snapshotstore.Store, bus events.Publisher, logger *zap.SugaredLogger) *Controller {
	return &Controller{
		tournamentID: tournamentID,
		gameType:     gameType,
		registry:     registry,
		standings:    standings,
		dispatcher:   dispatcher,
		cache:        cache,
		snapshots:    snapshots,
		bus:          bus,
		logger:       logger,
		phase:        models.PhaseRegistrationOpen,
		pending:      make(map[string]chan struct{}),
	}
}

// Phase returns the current tournament phase.
func (c *Controller) Phase() models.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// CurrentRound returns the number of rounds fully completed so far.
func (c *Controller) CurrentRound() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentRound
}

// StartLeague closes registration, generates the schedule, and transitions
// to SCHEDULED, per §4.2 "Schedule generation".
func (c *Controller) StartLeague() (models.Schedule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != models.PhaseRegistrationOpen {
		return models.Schedule{}, rpcerr.New(rpcerr.InvalidPhase, "start_league called in phase %s", c.phase)
	}

	players := c.registry.Players()
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.PlayerID
	}

	sched, err := scheduler.GenerateRoundRobin(ids)
	if err != nil {
		return models.Schedule{}, err
	}

	c.registry.CloseRegistration()
	c.standings.Seed(players)
	c.schedule = sched
	c.currentRound = 0
	c.phase = models.PhaseScheduled
	c.bus.Publish(events.Event{Kind: events.KindTournamentStarted, Tournament: c.tournamentID, Data: map[string]interface{}{
		"total_rounds": sched.TotalRounds(), "player_count": len(ids),
	}})
	return sched, nil
}

// RunNextRound dispatches and fully ingests exactly one round, blocking
// until the round barrier closes, then advances the phase.
func (c *Controller) RunNextRound(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != models.PhaseScheduled && c.phase != models.PhaseBetweenRounds {
		phase := c.phase
		c.mu.Unlock()
		return rpcerr.New(rpcerr.InvalidPhase, "run_next_round called in phase %s", phase)
	}
	if c.currentRound >= c.schedule.TotalRounds() {
		c.mu.Unlock()
		return rpcerr.New(rpcerr.InvalidPhase, "all rounds already complete")
	}
	round := c.schedule.Rounds[c.currentRound]
	c.phase = models.PhaseRunningRound
	c.mu.Unlock()

	c.bus.Publish(events.Event{Kind: events.KindRoundDispatched, Tournament: c.tournamentID, Data: map[string]interface{}{
		"round_index": round.Index,
	}})

	waiters := c.registerPendingMatches(round)
	matches, err := c.dispatcher.DispatchRound(ctx, round)
	if err != nil {
		return err
	}

	for _, m := range matches {
		if m.Status == models.MatchCancelled {
			c.standings.ApplyDoubleForfeit(m.PlayerAID, m.PlayerBID)
			c.closePending(m.MatchID)
		}
	}

	for matchID, ch := range waiters {
		select {
		case <-ch:
		case <-ctx.Done():
			c.logger.Warnw("round barrier wait aborted by context", "match_id", matchID)
		}
	}

	c.mu.Lock()
	c.currentRound++
	c.standings.SetRoundIndex(c.currentRound)
	if c.currentRound >= c.schedule.TotalRounds() {
		c.phase = models.PhaseComplete
	} else {
		c.phase = models.PhaseBetweenRounds
	}
	done := c.phase == models.PhaseComplete
	c.mu.Unlock()

	snapshot := c.standings.Snapshot()
	if c.snapshots != nil {
		c.snapshots.Save(ctx, c.tournamentID, snapshot)
	}
	c.bus.Publish(events.Event{Kind: events.KindStandingsUpdated, Tournament: c.tournamentID, Data: map[string]interface{}{
		"round_index": round.Index,
	}})

	if done {
		winner := ""
		if len(snapshot.Entries) > 0 {
			winner = snapshot.Entries[0].PlayerID
		}
		c.bus.Publish(events.Event{Kind: events.KindTournamentCompleted, Tournament: c.tournamentID, Data: map[string]interface{}{
			"winner_id": winner,
		}})
	}
	return nil
}

// RunAllRounds drives RunNextRound until the tournament completes.
func (c *Controller) RunAllRounds(ctx context.Context) error {
	for {
		if c.Phase() == models.PhaseComplete {
			return nil
		}
		if err := c.RunNextRound(ctx); err != nil {
			return err
		}
	}
}

// Standings returns the current standings snapshot, per §4.1 get_standings.
func (c *Controller) Standings() models.Standings {
	return c.standings.Snapshot()
}

// ReportMatchResult ingests a referee's match outcome idempotently, per
// §4.2 "Result ingestion" and §8 testable property 4. Returns true if this
// call newly applied the result.
func (c *Controller) ReportMatchResult(ctx context.Context, matchID, refereeID, winnerID string, scores map[string]int, roundsSummary []models.RoundRecord, forfeit bool, reason string) (bool, error) {
	claimed, err := c.cache.MarkResultApplied(ctx, matchID, 24*time.Hour)
	if err != nil {
		c.logger.Warnw("idempotency cache unavailable, applying without dedup guarantee", "match_id", matchID, "err", err)
		claimed = true
	}
	if !claimed {
		return false, nil
	}

	m, ok := c.dispatcher.Match(matchID)
	if !ok {
		return false, rpcerr.New(rpcerr.MatchNotFound, "unknown match_id %s", matchID)
	}

	status := models.MatchComplete
	if forfeit {
		status = models.MatchForfeit
	}
	result := &models.MatchResult{
		MatchID: matchID, RefereeID: refereeID, WinnerID: winnerID,
		Scores: scores, RoundsSummary: roundsSummary, Forfeit: forfeit, Reason: reason,
	}
	c.dispatcher.MarkTerminal(matchID, status, result)
	c.standings.ApplyResult(m.PlayerAID, m.PlayerBID, winnerID)
	c.registry.AdjustRefereeLoad(refereeID, -1)

	kind := events.KindMatchCompleted
	if forfeit {
		kind = events.KindMatchForfeited
	}
	c.bus.Publish(events.Event{Kind: kind, Tournament: c.tournamentID, Data: map[string]interface{}{
		"match_id": matchID, "winner_id": winnerID,
	}})

	c.closePending(matchID)
	return true, nil
}

func (c *Controller) registerPendingMatches(round models.Round) map[string]chan struct{} {
	waiters := make(map[string]chan struct{})
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	seq := 0
	for _, p := range round.Pairings {
		if p.IsBye() {
			continue
		}
		seq++
		matchID := utils.MatchID(round.Index, seq)
		ch := make(chan struct{})
		c.pending[matchID] = ch
		waiters[matchID] = ch
	}
	return waiters
}

func (c *Controller) closePending(matchID string) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if ch, ok := c.pending[matchID]; ok {
		close(ch)
		delete(c.pending, matchID)
	}
}
