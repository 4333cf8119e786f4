package arbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneControllerPushPop(t *testing.T) {
	env := newTestEnv(t)
	reg := env.core.Registry()
	a, err := reg.CreateScene("a")
	require.NoError(t, err)
	b, err := reg.CreateScene("b")
	require.NoError(t, err)

	sc := NewSceneController()
	assert.Nil(t, sc.Active())
	assert.Nil(t, sc.ActiveScene())

	sc.Push(a)
	assert.True(t, a.IsRunning())
	assert.Same(t, a, sc.ActiveScene())

	sc.Push(b)
	assert.False(t, a.IsRunning(), "covered scene should be exited")
	assert.True(t, b.IsRunning())
	assert.Equal(t, 2, sc.Len())

	popped := sc.Pop()
	assert.Equal(t, SceneObject(b), popped)
	assert.False(t, b.IsRunning())
	assert.True(t, a.IsRunning(), "uncovered scene should be re-entered")

	sc.Pop()
	assert.Nil(t, sc.Pop(), "empty stack pops nil")
}

func TestSceneControllerReplace(t *testing.T) {
	env := newTestEnv(t)
	reg := env.core.Registry()
	a, err := reg.CreateScene("a")
	require.NoError(t, err)
	b, err := reg.CreateScene("b")
	require.NoError(t, err)

	sc := NewSceneController()
	sc.Replace(a)
	assert.Equal(t, 1, sc.Len())
	sc.Replace(b)
	assert.Equal(t, 1, sc.Len())
	assert.False(t, a.IsRunning())
	assert.Same(t, b, sc.ActiveScene())

	sc.Clear()
	assert.Zero(t, sc.Len())
	assert.False(t, b.IsRunning())
}

func TestSceneControllerPushNilPanics(t *testing.T) {
	assert.Panics(t, func() { NewSceneController().Push(nil) })
}
