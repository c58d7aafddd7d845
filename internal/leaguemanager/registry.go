// internal/leaguemanager/registry.go
// Player and referee registration, per §4.2 "Registration phase".

package leaguemanager

import (
	"sync"
	"time"

	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
	"github.com/evenodd-league/tournament/internal/utils"
)

// Registry holds the canonical player/referee sets for one tournament. It
// is the only component that mutates Player/Referee records; everything
// else looks them up by id.
type Registry struct {
	mu sync.RWMutex

	gameType       string
	maxPlayers     int
	registrationOn bool

	players        []models.Player
	playersByID    map[string]*models.Player
	playersByEndp  map[string]string // endpoint -> player_id

	referees      []models.Referee
	refereesByID  map[string]*models.Referee

	tokenSecret     string
	bootstrapSecret string
	nextSeq         int

	freed chan struct{} // closed and replaced whenever referee capacity opens up
}

// NewRegistry creates an empty registry accepting registrations for
// gameType, capped at maxPlayers (0 means unbounded). bootstrapSecret is a
// shared bearer every agent is configured with out of band, accepted
// alongside per-agent issued tokens: it is what the League Manager
// presents to referees, and what referees present to players, since
// neither of those calls comes from an agent holding an LM-issued token
// for the callee.
func NewRegistry(gameType string, maxPlayers int, tokenSecret, bootstrapSecret string) *Registry {
	return &Registry{
		gameType:        gameType,
		maxPlayers:      maxPlayers,
		registrationOn:  true,
		playersByID:     make(map[string]*models.Player),
		playersByEndp:   make(map[string]string),
		refereesByID:    make(map[string]*models.Referee),
		tokenSecret:     tokenSecret,
		bootstrapSecret: bootstrapSecret,
		freed:           make(chan struct{}),
	}
}

// CloseRegistration stops accepting new players/referees, called on
// start_league per §4.2.
func (r *Registry) CloseRegistration() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrationOn = false
}

// RegisterPlayer admits a new player, or rejects per §4.1's register_player
// failure modes.
func (r *Registry) RegisterPlayer(displayName, endpoint string, supportedGames []string) (models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.registrationOn {
		return models.Player{}, rpcerr.New(rpcerr.RegistrationClosed, "registration is closed")
	}
	if r.maxPlayers > 0 && len(r.players) >= r.maxPlayers {
		return models.Player{}, rpcerr.New(rpcerr.LeagueFull, "league is full at %d players", r.maxPlayers)
	}
	if existing, ok := r.playersByEndp[endpoint]; ok {
		return models.Player{}, rpcerr.New(rpcerr.AlreadyRegistered, "endpoint %s already registered as %s", endpoint, existing)
	}
	supports := false
	for _, g := range supportedGames {
		if g == r.gameType {
			supports = true
			break
		}
	}
	if !supports {
		return models.Player{}, rpcerr.New(rpcerr.UnsupportedGame, "player does not support game type %q", r.gameType)
	}

	r.nextSeq++
	token, err := utils.IssueToken(utils.PlayerID(r.nextSeq), "player", r.tokenSecret)
	if err != nil {
		return models.Player{}, rpcerr.Wrap(rpcerr.AuthFailed, err, "issue auth token")
	}

	p := models.Player{
		PlayerID:       utils.PlayerID(r.nextSeq),
		DisplayName:    displayName,
		Endpoint:       endpoint,
		SupportedGames: supportedGames,
		AuthToken:      token,
		RegisteredAt:   time.Now().UTC(),
	}
	r.players = append(r.players, p)
	r.playersByID[p.PlayerID] = &r.players[len(r.players)-1]
	r.playersByEndp[endpoint] = p.PlayerID

	return p, nil
}

// RegisterReferee admits a new referee, rejecting a reused referee_id.
func (r *Registry) RegisterReferee(refereeID, endpoint string, capacity int) (models.Referee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.registrationOn {
		return models.Referee{}, rpcerr.New(rpcerr.RegistrationClosed, "registration is closed")
	}
	if _, ok := r.refereesByID[refereeID]; ok {
		return models.Referee{}, rpcerr.New(rpcerr.DuplicateRefereeID, "referee id %s already registered", refereeID)
	}
	if capacity < 1 {
		capacity = 1
	}

	token, err := utils.IssueToken(refereeID, "referee", r.tokenSecret)
	if err != nil {
		return models.Referee{}, rpcerr.Wrap(rpcerr.AuthFailed, err, "issue auth token")
	}

	ref := models.Referee{
		RefereeID: refereeID,
		Endpoint:  endpoint,
		Capacity:  capacity,
		AuthToken: token,
	}
	r.referees = append(r.referees, ref)
	// append may have moved the backing array; re-point every index entry so
	// load changes stay visible through Referees().
	for i := range r.referees {
		r.refereesByID[r.referees[i].RefereeID] = &r.referees[i]
	}

	return ref, nil
}

// Players returns a snapshot of all registered players, in registration order.
func (r *Registry) Players() []models.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Player, len(r.players))
	copy(out, r.players)
	return out
}

// Referees returns a snapshot of all registered referees.
func (r *Registry) Referees() []models.Referee {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Referee, len(r.referees))
	copy(out, r.referees)
	return out
}

// Player looks up a player by id.
func (r *Registry) Player(id string) (models.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.playersByID[id]
	if !ok {
		return models.Player{}, false
	}
	return *p, true
}

// Referee looks up a referee by id.
func (r *Registry) Referee(id string) (models.Referee, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.refereesByID[id]
	if !ok {
		return models.Referee{}, false
	}
	return *ref, true
}

// ValidateToken reports whether token is the bearer credential for sender
// ("player:P01" or "referee:R01"), per §6 "Authentication".
func (r *Registry) ValidateToken(sender, token string) bool {
	if token == "" {
		return false
	}
	if r.bootstrapSecret != "" && token == r.bootstrapSecret {
		return true
	}
	agentID, _, err := utils.ValidateToken(token, r.tokenSecret)
	if err != nil {
		return false
	}
	id := sender
	if idx := lastColon(sender); idx >= 0 {
		id = sender[idx+1:]
	}
	return agentID == id
}

// AdjustRefereeLoad mutates a referee's active_matches count by delta,
// honoring the capacity bound. Returns false (without mutating) if an
// increment would exceed capacity.
func (r *Registry) AdjustRefereeLoad(refereeID string, delta int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.refereesByID[refereeID]
	if !ok {
		return false
	}
	if delta > 0 && ref.ActiveMatches+delta > ref.Capacity {
		return false
	}
	ref.ActiveMatches += delta
	if ref.ActiveMatches < 0 {
		ref.ActiveMatches = 0
	}
	if delta < 0 {
		close(r.freed)
		r.freed = make(chan struct{})
	}
	return true
}

// CapacityFreed returns a channel that closes the next time any referee's
// load decreases, letting a dispatch blocked on a full league of referees
// (§8 S5 "all referees are at capacity") wake up and retry instead of
// cancelling the match.
func (r *Registry) CapacityFreed() <-chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.freed
}

// HasAnyReferee reports whether at least one referee has ever registered.
// A dispatch facing zero referees can never recover by waiting; a dispatch
// facing referees that are merely all at capacity can.
func (r *Registry) HasAnyReferee() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.referees) > 0
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}
