// internal/player/handlers.go
// JSON-RPC tool handlers exposed by a Player, per §4.1's "PLY exposes"
// contract.
package player

import (
	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol"
)

// RegisterHandlers wires every PLY tool call onto srv.
func RegisterHandlers(srv *protocol.Server, c *Container) {
	srv.Register("game_invite", handleGameInvite(c))
	srv.Register("request_move", handleRequestMove(c))
	srv.Register("round_result", handleRoundResult(c))
	srv.Register("game_over", handleGameOver(c))
}

// normalizeRole accepts the legacy PLAYER_A/PLAYER_B aliases alongside
// ODD/EVEN, per §4.1 "Role is one of ODD or EVEN ... normalizes on receipt".
func normalizeRole(raw string) models.Role {
	switch raw {
	case "PLAYER_A":
		return models.RoleOdd
	case "PLAYER_B":
		return models.RoleEven
	default:
		return models.Role(raw)
	}
}

type gameInvitePayload struct {
	MatchID        string           `json:"match_id"`
	GameID         string           `json:"game_id"`
	Role           string           `json:"role"`
	OpponentID     string           `json:"opponent_id"`
	MaxRounds      int              `json:"max_rounds"`
	ValidMoveRange models.MoveRange `json:"valid_move_range"`
}

func handleGameInvite(c *Container) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		var p gameInvitePayload
		if err := req.DecodePayload(&p); err != nil {
			return nil, err
		}

		role := normalizeRole(p.Role)
		_, err := c.Sessions.Create(p.GameID, p.MatchID, role, p.OpponentID, p.ValidMoveRange, p.MaxRounds, c.Strategy())
		if err != nil {
			return map[string]interface{}{"accepted": false, "reason": err.Error()}, nil
		}
		return map[string]interface{}{"accepted": true}, nil
	}
}

type requestMovePayload struct {
	GameID        string                 `json:"game_id"`
	RoundNumber   int                    `json:"round_number"`
	GameStateView map[string]interface{} `json:"game_state_view"`
}

func handleRequestMove(c *Container) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		var p requestMovePayload
		if err := req.DecodePayload(&p); err != nil {
			return nil, err
		}

		session, err := c.Sessions.Get(p.GameID)
		if err != nil {
			return nil, err
		}

		view := SessionView{
			GameID: p.GameID, Role: session.Role, OpponentID: session.OpponentID,
			RoundNumber: p.RoundNumber, MoveRange: session.MoveRange,
		}
		move, err := session.ChooseMove(p.RoundNumber, view)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"move": move}, nil
	}
}

type roundResultPayload struct {
	GameID      string         `json:"game_id"`
	RoundNumber int            `json:"round_number"`
	Moves       map[string]int `json:"moves"`
	Sum         int            `json:"sum"`
	WinnerID    string         `json:"winner_id"`
	Scores      map[string]int `json:"scores"`
}

func handleRoundResult(c *Container) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		var p roundResultPayload
		if err := req.DecodePayload(&p); err != nil {
			return nil, err
		}

		session, err := c.Sessions.Get(p.GameID)
		if err != nil {
			return nil, err
		}

		session.ApplyRoundResult(models.RoundRecord{
			RoundNumber: p.RoundNumber, Moves: p.Moves, Sum: p.Sum, WinnerID: p.WinnerID,
		}, p.Scores)
		return map[string]interface{}{}, nil
	}
}

type gameOverPayload struct {
	GameID   string         `json:"game_id"`
	WinnerID string         `json:"winner_id"`
	Scores   map[string]int `json:"scores"`
	Reason   string         `json:"reason"`
}

func handleGameOver(c *Container) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		var p gameOverPayload
		if err := req.DecodePayload(&p); err != nil {
			return nil, err
		}

		session, err := c.Sessions.Get(p.GameID)
		if err != nil {
			return nil, err
		}

		session.Finish(p.WinnerID, p.Scores)
		return map[string]interface{}{}, nil
	}
}
