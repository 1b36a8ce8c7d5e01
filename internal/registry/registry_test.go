package registry_test

import (
	"testing"

	"github.com/XavierBriggs/Janus/internal/registry"
	"github.com/XavierBriggs/Janus/sports/basketball_nba"
	"github.com/XavierBriggs/Janus/sports/soccer_epl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSportRegistry(t *testing.T) {
	reg := registry.NewSportRegistry()
	require.NoError(t, reg.Register(soccer_epl.NewModule()))
	require.NoError(t, reg.Register(basketball_nba.NewModule()))

	assert.Equal(t, 2, reg.Count())
	assert.Equal(t, []string{"basketball_nba", "soccer_epl"}, reg.Keys())

	sport, ok := reg.Get("soccer_epl")
	require.True(t, ok)
	assert.Equal(t, "EPL Soccer", sport.GetDisplayName())

	_, ok = reg.Get("icehockey_nhl")
	assert.False(t, ok)
}

func TestSportRegistry_DuplicateRejected(t *testing.T) {
	reg := registry.NewSportRegistry()
	require.NoError(t, reg.Register(basketball_nba.NewModule()))

	err := reg.Register(basketball_nba.NewModule())
	assert.Error(t, err)
	assert.Equal(t, 1, reg.Count())
}
