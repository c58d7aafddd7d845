// internal/leaguemanager/handlers.go
// JSON-RPC tool handlers exposed by the League Manager, per §4.1's
// "LM exposes" contract.
package leaguemanager

import (
	"context"

	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol"
)

// RegisterHandlers wires every LM tool call onto srv.
func RegisterHandlers(srv *protocol.Server, ctrl *Controller, registry *Registry) {
	srv.Register("register_player", handleRegisterPlayer(registry))
	srv.Register("register_referee", handleRegisterReferee(registry))
	srv.Register("report_match_result", handleReportMatchResult(ctrl))
	srv.Register("get_standings", handleGetStandings(ctrl))
	srv.Register("start_league", handleStartLeague(ctrl))
	srv.Register("run_next_round", handleRunNextRound(ctrl))
	srv.Register("run_all_rounds", handleRunAllRounds(ctrl))
}

type registerPlayerPayload struct {
	DisplayName    string   `json:"display_name"`
	Endpoint       string   `json:"endpoint"`
	SupportedGames []string `json:"supported_games"`
	Version        string   `json:"version"`
}

func handleRegisterPlayer(registry *Registry) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		var p registerPlayerPayload
		if err := req.DecodePayload(&p); err != nil {
			return nil, err
		}
		player, err := registry.RegisterPlayer(p.DisplayName, p.Endpoint, p.SupportedGames)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"player_id":            player.PlayerID,
			"auth_token":           player.AuthToken,
			"assigned_role_policy": "lexicographically-smaller-id-is-odd",
		}, nil
	}
}

type registerRefereePayload struct {
	RefereeID string `json:"referee_id"`
	Endpoint  string `json:"endpoint"`
	Capacity  int    `json:"capacity"`
}

func handleRegisterReferee(registry *Registry) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		var p registerRefereePayload
		if err := req.DecodePayload(&p); err != nil {
			return nil, err
		}
		ref, err := registry.RegisterReferee(p.RefereeID, p.Endpoint, p.Capacity)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"auth_token":        ref.AuthToken,
			"accepted_capacity": ref.Capacity,
		}, nil
	}
}

type reportMatchResultPayload struct {
	MatchID       string               `json:"match_id"`
	RefereeID     string               `json:"referee_id"`
	WinnerID      string               `json:"winner_id"`
	Scores        map[string]int       `json:"scores"`
	RoundsSummary []models.RoundRecord `json:"rounds_summary"`
	Forfeit       bool                 `json:"forfeit"`
	Reason        string               `json:"reason"`
}

func handleReportMatchResult(ctrl *Controller) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		var p reportMatchResultPayload
		if err := req.DecodePayload(&p); err != nil {
			return nil, err
		}
		ctx := context.Background()
		if _, err := ctrl.ReportMatchResult(ctx, p.MatchID, p.RefereeID, p.WinnerID, p.Scores, p.RoundsSummary, p.Forfeit, p.Reason); err != nil {
			return nil, err
		}
		return map[string]interface{}{"acknowledged": true}, nil
	}
}

func handleGetStandings(ctrl *Controller) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		s := ctrl.Standings()
		return map[string]interface{}{
			"round_index": s.RoundIndex,
			"standings":   s.Entries,
		}, nil
	}
}

func handleStartLeague(ctrl *Controller) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		sched, err := ctrl.StartLeague()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"status":       "scheduled",
			"total_rounds": sched.TotalRounds(),
		}, nil
	}
}

func handleRunNextRound(ctrl *Controller) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		if err := ctrl.RunNextRound(context.Background()); err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"status":        ctrl.Phase(),
			"current_round": ctrl.CurrentRound(),
		}, nil
	}
}

func handleRunAllRounds(ctrl *Controller) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		if err := ctrl.RunAllRounds(context.Background()); err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"status":        ctrl.Phase(),
			"current_round": ctrl.CurrentRound(),
		}, nil
	}
}
