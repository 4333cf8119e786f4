package arbor

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpriteRendererSubmitsThroughCamera(t *testing.T) {
	env := newTestEnv(t)
	reg := env.core.Registry()
	s, err := reg.CreateScene("s")
	require.NoError(t, err)
	e, err := reg.Create("sprite")
	require.NoError(t, err)

	img := ebiten.NewImage(4, 4)
	sr := NewSpriteRenderer("sprite", img)
	sr.Layer = 2
	require.NoError(t, reg.AttachComponent(e, sr))
	e.Transform().SetPosition(10, 20)
	s.AddChild(e)
	env.core.Scenes().Push(s)

	env.core.Run()
	require.Len(t, env.renderer.draws, 1)
	d := env.renderer.draws[0]
	assert.Same(t, img, d.img)
	assert.Equal(t, uint8(2), d.opts.Layer)
	assert.Equal(t, ColorWhite, d.opts.Color)
	// Default camera at the origin centers the world in the 800x600 viewport.
	assert.InDelta(t, 410, d.transform[4], epsilon)
	assert.InDelta(t, 320, d.transform[5], epsilon)
}

func TestSpriteRendererSkipsWithoutImage(t *testing.T) {
	env := newTestEnv(t)
	e, err := env.core.Registry().Create("e")
	require.NoError(t, err)
	e.AddComponent(NewSpriteRenderer("empty", nil))
	e.Render()
	assert.Empty(t, env.renderer.draws, "nil image should not be drawn")
}
