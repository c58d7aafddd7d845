package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FailsWithoutTokenSecret(t *testing.T) {
	t.Setenv("LEAGUE_TOKEN_SECRET", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_SucceedsWithTokenSecretAndAppliesDefaults(t *testing.T) {
	t.Setenv("LEAGUE_TOKEN_SECRET", "secret")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.True(t, cfg.Features.EnableEventStream)
	assert.False(t, cfg.Features.EnableSnapshots)
}

func TestLoad_RespectsOverrides(t *testing.T) {
	t.Setenv("LEAGUE_TOKEN_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("ENABLE_SNAPSHOTS", "true")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Features.EnableSnapshots)
}

func TestLoadLeagueManager_Defaults(t *testing.T) {
	lmCfg := LoadLeagueManager()
	assert.Equal(t, "even-odd-sum", lmCfg.GameType)
	assert.Equal(t, 1, lmCfg.MoveMin)
	assert.Equal(t, 9, lmCfg.MoveMax)
}

func TestLoadReferee_RequiresExplicitID(t *testing.T) {
	refCfg := LoadReferee()
	assert.Equal(t, "", refCfg.RefereeID)
	assert.Equal(t, 4, refCfg.Capacity)
}

func TestLoadPlayer_DefaultsStrategyToAlwaysLowest(t *testing.T) {
	plCfg := LoadPlayer()
	assert.Equal(t, "always-lowest", plCfg.StrategyName)
}
