// internal/referee/handlers.go
// JSON-RPC tool handlers exposed by a Referee, per §4.1's "REF exposes"
// contract.
package referee

import (
	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol"
	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
)

// RegisterHandlers wires every REF tool call onto srv.
func RegisterHandlers(srv *protocol.Server, c *Container, client *protocol.Client, lmEndpoint string) {
	srv.Register("assign_match", handleAssignMatch(c, client, lmEndpoint))
	srv.Register("cancel_match", handleCancelMatch(c))
}

type playerPayload struct {
	PlayerID string `json:"player_id"`
	Endpoint string `json:"endpoint"`
}

type assignMatchPayload struct {
	MatchID    string            `json:"match_id"`
	RoundIndex int               `json:"round_index"`
	PlayerA    playerPayload     `json:"player_a"`
	PlayerB    playerPayload     `json:"player_b"`
	GameConfig models.GameConfig `json:"game_config"`
}

func handleAssignMatch(c *Container, client *protocol.Client, lmEndpoint string) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		var p assignMatchPayload
		if err := req.DecodePayload(&p); err != nil {
			return nil, err
		}

		if !c.HasRoom() {
			return nil, rpcerr.New(rpcerr.CapacityExceeded, "referee %s at capacity %d", c.RefereeID, c.Capacity)
		}

		assignment := Assignment{
			MatchID:    p.MatchID,
			RoundIndex: p.RoundIndex,
			PlayerA:    PlayerRef{PlayerID: p.PlayerA.PlayerID, Endpoint: p.PlayerA.Endpoint},
			PlayerB:    PlayerRef{PlayerID: p.PlayerB.PlayerID, Endpoint: p.PlayerB.Endpoint},
			Config:     p.GameConfig,
			LMEndpoint: lmEndpoint,
			RefereeID:  c.RefereeID,
		}
		run := NewRun(assignment, client, c.bus, c.logger)

		if !c.Accept(p.MatchID, run) {
			return nil, rpcerr.New(rpcerr.CapacityExceeded, "referee %s at capacity %d", c.RefereeID, c.Capacity)
		}

		return map[string]interface{}{"accepted": true}, nil
	}
}

type cancelMatchPayload struct {
	MatchID string `json:"match_id"`
	Reason  string `json:"reason"`
}

func handleCancelMatch(c *Container) protocol.Handler {
	return func(req *protocol.Request) (interface{}, error) {
		var p cancelMatchPayload
		if err := req.DecodePayload(&p); err != nil {
			return nil, err
		}

		run, ok := c.Lookup(p.MatchID)
		if !ok {
			return map[string]interface{}{"cancelled": false}, nil
		}
		run.Cancel(p.Reason)
		return map[string]interface{}{"cancelled": true}, nil
	}
}
