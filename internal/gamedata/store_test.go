package gamedata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadStore(t *testing.T) {
	s, err := LoadStore("testdata/pack", zap.NewNop())
	require.NoError(t, err)

	// one duplicate skipped, one broken file skipped
	assert.Equal(t, 3, s.Count())

	def, ok := s.GetByName("Pack_Single")
	require.True(t, ok)
	assert.Equal(t, float32(0.4), def.AbilitySpecials["RATIO"])

	// the in-file duplicate keeps the first definition
	first, ok := s.GetByName("Pack_First")
	require.True(t, ok)
	assert.Equal(t, 2, first.Modifiers.Len())
	assert.NotContains(t, first.AbilitySpecials, "DUPLICATE")

	_, ok = s.GetByName("Pack_Missing")
	assert.False(t, ok)
}

func TestLoadStoreMissingDir(t *testing.T) {
	_, err := LoadStore("testdata/does-not-exist", zap.NewNop())
	assert.Error(t, err)
}

func TestNameByHash(t *testing.T) {
	s, err := LoadStore("testdata/pack", zap.NewNop())
	require.NoError(t, err)

	name, ok := s.NameByHash(AbilityNameHash("Pack_Second"))
	require.True(t, ok)
	assert.Equal(t, "Pack_Second", name)

	_, ok = s.NameByHash(0xdeadbeef)
	assert.False(t, ok)
}
