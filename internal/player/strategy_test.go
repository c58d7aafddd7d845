package player

import (
	"testing"

	"github.com/evenodd-league/tournament/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlwaysLowest_PlaysMinimum(t *testing.T) {
	s := AlwaysLowest{}
	move := s.ChooseMove(SessionView{MoveRange: models.MoveRange{Min: 3, Max: 9}})
	assert.Equal(t, 3, move)
}

func TestFixedValue_ClampsIntoRange(t *testing.T) {
	tooLow := FixedValue{Value: 0}
	tooHigh := FixedValue{Value: 100}
	inRange := FixedValue{Value: 5}
	rng := models.MoveRange{Min: 1, Max: 9}

	assert.Equal(t, 1, tooLow.ChooseMove(SessionView{MoveRange: rng}))
	assert.Equal(t, 9, tooHigh.ChooseMove(SessionView{MoveRange: rng}))
	assert.Equal(t, 5, inRange.ChooseMove(SessionView{MoveRange: rng}))
}

func TestRandomUniform_StaysInRange(t *testing.T) {
	s := RandomUniform{}
	rng := models.MoveRange{Min: 1, Max: 9}
	for i := 0; i < 50; i++ {
		move := s.ChooseMove(SessionView{MoveRange: rng})
		assert.True(t, rng.Contains(move))
	}
}

func TestRegistry_ResolveFallsBackToAlwaysLowestForUnknownName(t *testing.T) {
	r := NewRegistry()
	s := r.Resolve("does-not-exist")
	assert.IsType(t, AlwaysLowest{}, s)
}

func TestRegistry_ResolveKnownStrategies(t *testing.T) {
	r := NewRegistry()
	assert.IsType(t, AlwaysLowest{}, r.Resolve("always-lowest"))
	assert.IsType(t, RandomUniform{}, r.Resolve("random-uniform"))
}

func TestRegistry_RegisterAddsResolvableStrategy(t *testing.T) {
	r := NewRegistry()
	r.Register("fixed-five", FixedValue{Value: 5})
	s := r.Resolve("fixed-five")
	require.IsType(t, FixedValue{}, s)
}
