// internal/leaguemanager/dispatcher.go
// Per-round match dispatch, per §4.2 "Per-round dispatch". Pairings within
// a round are submitted concurrently to a bounded worker pool (the
// "parallel rounds within a round-group" requirement of §1/§5), while
// referee-load bookkeeping stays serialized behind the registry's mutex.
package leaguemanager

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evenodd-league/tournament/internal/events"
	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol"
	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
	"github.com/evenodd-league/tournament/internal/utils"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// dispatchDeadline bounds a single assign_match call, per §5's 10s default
// for control-plane calls.
const dispatchDeadline = 10 * time.Second

// Dispatcher assigns one round's pairings to referees and tracks the
// resulting matches; the wait for their results is the Controller's.
type Dispatcher struct {
	registry *Registry
	client   *protocol.Client
	bus      events.Publisher
	logger   *zap.SugaredLogger

	pool *ants.Pool

	mu       sync.Mutex
	matches  map[string]*models.Match
	gameType string
	gameCfg  models.GameConfig
}

// NewDispatcher builds a dispatcher backed by an ants worker pool sized to
// poolSize concurrent dispatch submissions.
func NewDispatcher(registry *Registry, client *protocol.Client, bus events.Publisher, logger *zap.SugaredLogger, poolSize int, gameType string, gameCfg models.GameConfig) (*Dispatcher, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		registry: registry,
		client:   client,
		bus:      bus,
		logger:   logger,
		pool:     pool,
		matches:  make(map[string]*models.Match),
		gameType: gameType,
		gameCfg:  gameCfg,
	}, nil
}

// Release tears down the underlying worker pool.
func (d *Dispatcher) Release() { d.pool.Release() }

// DispatchRound assigns every real pairing in round to a referee and blocks
// until each pairing is either ASSIGNED to a referee or CANCELLED. It does
// not wait for match results; Controller.RunNextRound holds the round
// barrier on those.
func (d *Dispatcher) DispatchRound(ctx context.Context, round models.Round) ([]*models.Match, error) {
	real := make([]models.Pairing, 0, len(round.Pairings))
	for _, p := range round.Pairings {
		if !p.IsBye() {
			real = append(real, p)
		}
	}
	if len(real) == 0 {
		return nil, nil
	}

	results := make([]*models.Match, len(real))
	var wg sync.WaitGroup
	wg.Add(len(real))

	for i, pairing := range real {
		i, pairing := i, pairing
		seq := i + 1
		err := d.pool.Submit(func() {
			defer wg.Done()
			results[i] = d.dispatchOne(ctx, round.Index, seq, pairing)
		})
		if err != nil {
			wg.Done()
			results[i] = d.cancelledMatch(round.Index, seq, pairing, "dispatch pool rejected submission")
		}
	}
	wg.Wait()

	return results, nil
}

// dispatchOne selects a referee and assigns one pairing, handling
// CAPACITY_EXCEEDED reselection and transport-failure cancellation per
// §4.2 step 4.
func (d *Dispatcher) dispatchOne(ctx context.Context, roundIndex, seq int, pairing models.Pairing) *models.Match {
	matchID := utils.MatchID(roundIndex, seq)

	tried := map[string]bool{}
	for {
		ref, ok := d.selectReferee(tried)
		if !ok {
			if !d.registry.HasAnyReferee() {
				d.logger.Warnw("no referees available for dispatch", "match_id", matchID)
				return d.cancelledMatch(roundIndex, seq, pairing, "no referees available")
			}
			// Every referee is at capacity, not absent: wait for one to free
			// up (a report_match_result decrementing a load) and retry every
			// referee again, per §8 S5's "waits for any referee to free up".
			d.logger.Infow("all referees at capacity, waiting for one to free up", "match_id", matchID)
			select {
			case <-d.registry.CapacityFreed():
				tried = map[string]bool{}
				continue
			case <-ctx.Done():
				return d.cancelledMatch(roundIndex, seq, pairing, "dispatch cancelled while waiting for referee capacity")
			}
		}
		tried[ref.RefereeID] = true

		if !d.registry.AdjustRefereeLoad(ref.RefereeID, 1) {
			continue // raced to capacity; try the next least-loaded referee
		}

		accepted, err := d.assign(ctx, ref, matchID, roundIndex, pairing)
		if err != nil {
			if rpcerr.IsKind(err, rpcerr.CapacityExceeded) {
				d.registry.AdjustRefereeLoad(ref.RefereeID, -1)
				continue
			}
			d.registry.AdjustRefereeLoad(ref.RefereeID, -1)
			d.logger.Warnw("assign_match transport failure", "match_id", matchID, "referee_id", ref.RefereeID, "err", err)
			return d.cancelledMatch(roundIndex, seq, pairing, "referee unreachable: "+err.Error())
		}
		if !accepted {
			d.registry.AdjustRefereeLoad(ref.RefereeID, -1)
			continue
		}

		now := time.Now().UTC()
		m := &models.Match{
			MatchID:    matchID,
			RoundIndex: roundIndex,
			PlayerAID:  pairing.PlayerAID,
			PlayerBID:  pairing.PlayerBID,
			RefereeID:  ref.RefereeID,
			Status:     models.MatchAssigned,
			StartedAt:  &now,
		}
		d.track(m)
		d.bus.Publish(events.Event{Kind: events.KindMatchAssigned, Data: map[string]interface{}{
			"match_id": matchID, "referee_id": ref.RefereeID,
			"player_a_id": pairing.PlayerAID, "player_b_id": pairing.PlayerBID,
		}})
		return m
	}
}

// selectReferee picks the least-loaded referee not in excluded and not at
// capacity, breaking ties by referee_id ascending, per §4.2 step 3.
func (d *Dispatcher) selectReferee(excluded map[string]bool) (models.Referee, bool) {
	referees := d.registry.Referees()
	sort.Slice(referees, func(i, j int) bool { return referees[i].RefereeID < referees[j].RefereeID })

	best := -1
	for i, r := range referees {
		if excluded[r.RefereeID] || r.AtCapacity() {
			continue
		}
		if best == -1 || r.Load() < referees[best].Load() {
			best = i
		}
	}
	if best == -1 {
		return models.Referee{}, false
	}
	return referees[best], true
}

func (d *Dispatcher) assign(ctx context.Context, ref models.Referee, matchID string, roundIndex int, pairing models.Pairing) (bool, error) {
	type assignResult struct {
		Accepted bool   `json:"accepted"`
		Reason   string `json:"reason,omitempty"`
	}
	var resp assignResult
	payload := map[string]interface{}{
		"match_id":    matchID,
		"round_index": roundIndex,
		"player_a":    d.playerView(pairing.PlayerAID),
		"player_b":    d.playerView(pairing.PlayerBID),
		"game_config": d.gameCfg,
	}
	err := d.client.Call(ctx, ref.Endpoint, "assign_match", payload, &resp, dispatchDeadline)
	if err != nil {
		return false, err
	}
	return resp.Accepted, nil
}

func (d *Dispatcher) playerView(playerID string) map[string]interface{} {
	p, _ := d.registry.Player(playerID)
	return map[string]interface{}{
		"player_id": p.PlayerID,
		"endpoint":  p.Endpoint,
	}
}

func (d *Dispatcher) cancelledMatch(roundIndex, seq int, pairing models.Pairing, reason string) *models.Match {
	now := time.Now().UTC()
	m := &models.Match{
		MatchID:     utils.MatchID(roundIndex, seq),
		RoundIndex:  roundIndex,
		PlayerAID:   pairing.PlayerAID,
		PlayerBID:   pairing.PlayerBID,
		Status:      models.MatchCancelled,
		CompletedAt: &now,
		Result: &models.MatchResult{
			MatchID: utils.MatchID(roundIndex, seq),
			Forfeit: true,
			Reason:  reason,
			Scores:  map[string]int{pairing.PlayerAID: 0, pairing.PlayerBID: 0},
		},
	}
	d.track(m)
	d.bus.Publish(events.Event{Kind: events.KindMatchForfeited, Data: map[string]interface{}{
		"match_id": m.MatchID, "reason": reason,
	}})
	return m
}

func (d *Dispatcher) track(m *models.Match) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.matches[m.MatchID] = m
}

// Match looks up a tracked match by id.
func (d *Dispatcher) Match(matchID string) (*models.Match, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.matches[matchID]
	return m, ok
}

// MarkTerminal records matchID's terminal status and result, called when a
// referee's report_match_result arrives.
func (d *Dispatcher) MarkTerminal(matchID string, status models.MatchStatus, result *models.MatchResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.matches[matchID]
	if !ok {
		return
	}
	now := time.Now().UTC()
	m.Status = status
	m.CompletedAt = &now
	m.Result = result
}
