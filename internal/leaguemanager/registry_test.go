package leaguemanager

import (
	"testing"

	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-token-secret"
const testBootstrap = "test-bootstrap-secret"

func TestRegisterPlayer_AssignsSequentialIDsAndToken(t *testing.T) {
	r := NewRegistry("even-odd-sum", 0, testSecret, testBootstrap)

	p1, err := r.RegisterPlayer("Alice", "http://a:8081/mcp", []string{"even-odd-sum"})
	require.NoError(t, err)
	p2, err := r.RegisterPlayer("Bob", "http://b:8082/mcp", []string{"even-odd-sum"})
	require.NoError(t, err)

	assert.NotEqual(t, p1.PlayerID, p2.PlayerID)
	assert.Equal(t, "P01", p1.PlayerID)
	assert.Equal(t, "P02", p2.PlayerID)
	assert.NotEmpty(t, p1.AuthToken)
	assert.True(t, r.ValidateToken("player:"+p1.PlayerID, p1.AuthToken))
	assert.False(t, r.ValidateToken("player:"+p2.PlayerID, p1.AuthToken))
}

func TestRegisterPlayer_RejectsUnsupportedGame(t *testing.T) {
	r := NewRegistry("even-odd-sum", 0, testSecret, testBootstrap)
	_, err := r.RegisterPlayer("Alice", "http://a:8081/mcp", []string{"rock-paper-scissors"})
	require.Error(t, err)
	rerr, ok := rpcerr.AsError(err)
	require.True(t, ok)
	assert.Equal(t, rpcerr.UnsupportedGame, rerr.Kind)
}

func TestRegisterPlayer_RejectsDuplicateEndpoint(t *testing.T) {
	r := NewRegistry("even-odd-sum", 0, testSecret, testBootstrap)
	_, err := r.RegisterPlayer("Alice", "http://a:8081/mcp", []string{"even-odd-sum"})
	require.NoError(t, err)

	_, err = r.RegisterPlayer("Alice2", "http://a:8081/mcp", []string{"even-odd-sum"})
	require.Error(t, err)
	assert.True(t, rpcerr.IsKind(err, rpcerr.AlreadyRegistered))
}

func TestRegisterPlayer_RejectsOverCapacity(t *testing.T) {
	r := NewRegistry("even-odd-sum", 1, testSecret, testBootstrap)
	_, err := r.RegisterPlayer("Alice", "http://a:8081/mcp", []string{"even-odd-sum"})
	require.NoError(t, err)

	_, err = r.RegisterPlayer("Bob", "http://b:8082/mcp", []string{"even-odd-sum"})
	require.Error(t, err)
	assert.True(t, rpcerr.IsKind(err, rpcerr.LeagueFull))
}

func TestRegisterPlayer_RejectsAfterRegistrationClosed(t *testing.T) {
	r := NewRegistry("even-odd-sum", 0, testSecret, testBootstrap)
	r.CloseRegistration()
	_, err := r.RegisterPlayer("Alice", "http://a:8081/mcp", []string{"even-odd-sum"})
	require.Error(t, err)
	assert.True(t, rpcerr.IsKind(err, rpcerr.RegistrationClosed))
}

func TestRegisterReferee_RejectsDuplicateID(t *testing.T) {
	r := NewRegistry("even-odd-sum", 0, testSecret, testBootstrap)
	_, err := r.RegisterReferee("R01", "http://r1:9001/mcp", 4)
	require.NoError(t, err)

	_, err = r.RegisterReferee("R01", "http://r1-again:9001/mcp", 4)
	require.Error(t, err)
	assert.True(t, rpcerr.IsKind(err, rpcerr.DuplicateRefereeID))
}

func TestRegisterReferee_FloorsCapacityAtOne(t *testing.T) {
	r := NewRegistry("even-odd-sum", 0, testSecret, testBootstrap)
	ref, err := r.RegisterReferee("R01", "http://r1:9001/mcp", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, ref.Capacity)
}

func TestValidateToken_AcceptsBootstrapSecret(t *testing.T) {
	r := NewRegistry("even-odd-sum", 0, testSecret, testBootstrap)
	assert.True(t, r.ValidateToken("referee:R01", testBootstrap))
	assert.False(t, r.ValidateToken("referee:R01", "wrong-secret"))
	assert.False(t, r.ValidateToken("referee:R01", ""))
}

func TestAdjustRefereeLoad_RespectsCapacityBound(t *testing.T) {
	r := NewRegistry("even-odd-sum", 0, testSecret, testBootstrap)
	_, err := r.RegisterReferee("R01", "http://r1:9001/mcp", 2)
	require.NoError(t, err)

	assert.True(t, r.AdjustRefereeLoad("R01", 1))
	assert.True(t, r.AdjustRefereeLoad("R01", 1))
	assert.False(t, r.AdjustRefereeLoad("R01", 1), "third increment should exceed capacity 2")

	ref, ok := r.Referee("R01")
	require.True(t, ok)
	assert.Equal(t, 2, ref.ActiveMatches)

	assert.True(t, r.AdjustRefereeLoad("R01", -1))
	ref, _ = r.Referee("R01")
	assert.Equal(t, 1, ref.ActiveMatches)
}

func TestAdjustRefereeLoad_UnknownRefereeReturnsFalse(t *testing.T) {
	r := NewRegistry("even-odd-sum", 0, testSecret, testBootstrap)
	assert.False(t, r.AdjustRefereeLoad("GHOST", 1))
}
