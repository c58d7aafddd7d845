package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidateToken_RoundTrips(t *testing.T) {
	token, err := IssueToken("P01", "player", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	agentID, role, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "P01", agentID)
	assert.Equal(t, "player", role)
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	token, err := IssueToken("R01", "referee", "secret")
	require.NoError(t, err)

	_, _, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	_, _, err := ValidateToken("not-a-jwt", "secret")
	assert.Error(t, err)
}

func TestPlayerIDAndMatchIDFormat(t *testing.T) {
	assert.Equal(t, "P01", PlayerID(1))
	assert.Equal(t, "R1M1", MatchID(1, 1))
	assert.NotEqual(t, PlayerID(1), PlayerID(2))
	assert.NotEqual(t, MatchID(1, 1), MatchID(2, 1))
	assert.NotEqual(t, MatchID(1, 1), MatchID(1, 2))
}
