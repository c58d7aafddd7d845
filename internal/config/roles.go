// internal/config/roles.go
// Role-specific environment settings layered on top of the shared Config,
// one section per binary under cmd/.

package config

// LeagueManagerConfig configures the LM's tournament and dispatch policy.
type LeagueManagerConfig struct {
	TournamentID string
	GameType     string
	MaxPlayers   int
	PoolSize     int
	MaxRounds    int
	MoveMin      int
	MoveMax      int
	DefaultMove  int
	ForfeitAfter int
}

// LoadLeagueManager reads the LM's additional tournament-shape settings.
func LoadLeagueManager() LeagueManagerConfig {
	return LeagueManagerConfig{
		TournamentID: getEnvOrDefault("TOURNAMENT_ID", "default"),
		GameType:     getEnvOrDefault("GAME_TYPE", "even-odd-sum"),
		MaxPlayers:   getIntOrDefault("MAX_PLAYERS", 64),
		PoolSize:     getIntOrDefault("DISPATCH_POOL_SIZE", 8),
		MaxRounds:    getIntOrDefault("GAME_MAX_ROUNDS", 5),
		MoveMin:      getIntOrDefault("GAME_MOVE_MIN", 1),
		MoveMax:      getIntOrDefault("GAME_MOVE_MAX", 9),
		DefaultMove:  getIntOrDefault("GAME_DEFAULT_MOVE", 1),
		ForfeitAfter: getIntOrDefault("GAME_FORFEIT_THRESHOLD", 3),
	}
}

// RefereeConfig configures one referee process.
type RefereeConfig struct {
	RefereeID       string
	Capacity        int
	LeagueEndpoint  string
	SelfEndpoint    string
	BootstrapSecret string
}

// LoadReferee reads one referee's identity and registration settings.
func LoadReferee() RefereeConfig {
	return RefereeConfig{
		RefereeID:       getEnvOrDefault("REFEREE_ID", ""),
		Capacity:        getIntOrDefault("REFEREE_CAPACITY", 4),
		LeagueEndpoint:  getEnvOrDefault("LEAGUE_MANAGER_ENDPOINT", "http://localhost:8080/mcp"),
		SelfEndpoint:    getEnvOrDefault("SELF_ENDPOINT", ""),
		BootstrapSecret: getEnvOrDefault("LEAGUE_BOOTSTRAP_SECRET", ""),
	}
}

// PlayerConfig configures one player process.
type PlayerConfig struct {
	DisplayName     string
	StrategyName    string
	SupportedGames  []string
	LeagueEndpoint  string
	SelfEndpoint    string
	BootstrapSecret string
}

// LoadPlayer reads one player's identity, strategy, and registration settings.
func LoadPlayer() PlayerConfig {
	return PlayerConfig{
		DisplayName:     getEnvOrDefault("PLAYER_DISPLAY_NAME", "player"),
		StrategyName:    getEnvOrDefault("PLAYER_STRATEGY", "always-lowest"),
		SupportedGames:  []string{getEnvOrDefault("GAME_TYPE", "even-odd-sum")},
		LeagueEndpoint:  getEnvOrDefault("LEAGUE_MANAGER_ENDPOINT", "http://localhost:8080/mcp"),
		SelfEndpoint:    getEnvOrDefault("SELF_ENDPOINT", ""),
		BootstrapSecret: getEnvOrDefault("LEAGUE_BOOTSTRAP_SECRET", ""),
	}
}
