package testbed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/scene"
)

func TestShowcaseOnEmptyScene(t *testing.T) {
	g := NewTestGame(engine.DefaultApplicationConfig())
	require.NoError(t, g.Initialize(headless.New()))

	c := scene.NewCollection()
	defer c.Clear()
	require.NoError(t, g.OnSceneLoaded(c))

	assert.Equal(t, 5, c.Len())
	assert.Empty(t, c.SelectedIDs())
	assert.Len(t, g.State.(*gameState).spinners, 1)
}

func TestSpinnersStayInPlace(t *testing.T) {
	g := NewTestGame(engine.DefaultApplicationConfig())
	require.NoError(t, g.Initialize(headless.New()))

	c := scene.NewCollection()
	defer c.Clear()
	require.NoError(t, g.OnSceneLoaded(c))

	id := g.State.(*gameState).spinners[0]
	inst, ok := c.Get(id)
	require.True(t, ok)
	before := math.NewVec3Zero().Transform(inst.Matrix())

	for i := 0; i < 10; i++ {
		require.NoError(t, g.Update(c, 0.1))
	}
	after := math.NewVec3Zero().Transform(inst.Matrix())
	assert.True(t, before.Compare(after, 1e-4), "before %v after %v", before, after)
	assert.False(t, inst.BoundingBoxValidity())
}

func TestOnPickTogglesSpinning(t *testing.T) {
	g := NewTestGame(engine.DefaultApplicationConfig())
	require.NoError(t, g.Initialize(headless.New()))

	c := scene.NewCollection()
	defer c.Clear()
	require.NoError(t, g.OnSceneLoaded(c))
	state := g.State.(*gameState)

	inst, ok := c.Get(state.spinners[0])
	require.True(t, ok)
	require.NoError(t, g.OnPick(inst))
	assert.Empty(t, state.spinners)

	require.NoError(t, g.OnPick(inst))
	assert.Equal(t, []uint32{inst.ID()}, state.spinners)
}
