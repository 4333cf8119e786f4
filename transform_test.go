package arbor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func assertMatrix(t *testing.T, want, got [6]float64) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], epsilon, "matrix = %v, want %v", got, want)
}

func TestLocalIdentity(t *testing.T) {
	assertMatrix(t, identityTransform, NewTransform().Local())
}

func TestLocalTranslation(t *testing.T) {
	tr := NewTransform()
	tr.SetPosition(10, -4)
	assertMatrix(t, [6]float64{1, 0, 0, 1, 10, -4}, tr.Local())
}

func TestLocalScaleAroundPivot(t *testing.T) {
	tr := NewTransform()
	tr.SetScale(2, 3)
	tr.SetPivot(5, 5)
	// The pivot maps to the origin before translation.
	x, y := transformPoint(tr.Local(), 5, 5)
	assert.InDelta(t, 0, x, epsilon)
	assert.InDelta(t, 0, y, epsilon)
}

func TestLocalRotation(t *testing.T) {
	tr := NewTransform()
	tr.SetRotation(math.Pi / 2)
	x, y := transformPoint(tr.Local(), 1, 0)
	assert.InDelta(t, 0, x, epsilon)
	assert.InDelta(t, 1, y, epsilon)
}

func TestMultiplyAffineComposes(t *testing.T) {
	parent := [6]float64{2, 0, 0, 2, 10, 10}
	child := [6]float64{1, 0, 0, 1, 3, 4}
	assertMatrix(t, [6]float64{2, 0, 0, 2, 16, 18}, multiplyAffine(parent, child))
}

func TestInvertAffineRoundTrip(t *testing.T) {
	m := [6]float64{0.5, 0.3, -0.2, 1.5, 7, -3}
	assertMatrix(t, identityTransform, multiplyAffine(m, invertAffine(m)))
}

func TestInvertAffineSingular(t *testing.T) {
	assertMatrix(t, identityTransform, invertAffine([6]float64{0, 0, 0, 0, 1, 1}))
}

func TestRefreshOnlyWhenDirty(t *testing.T) {
	tr := NewTransform()
	require.True(t, tr.refresh(identityTransform, false), "new transform should recompute")
	assert.False(t, tr.Dirty(), "refresh should clear dirty")
	assert.False(t, tr.refresh(identityTransform, false), "clean transform with clean parent should not recompute")
	assert.True(t, tr.refresh([6]float64{1, 0, 0, 1, 5, 5}, true), "recomputed parent should force a recompute")

	w := tr.World()
	assert.Equal(t, 5.0, w[4])
	assert.Equal(t, 5.0, w[5])
}

func TestWorldLocalRoundTrip(t *testing.T) {
	tr := NewTransform()
	tr.SetPosition(3, 4)
	tr.SetScale(2, 2)
	tr.refresh(identityTransform, false)

	wx, wy := tr.LocalToWorld(1, 1)
	assert.InDelta(t, 5, wx, epsilon)
	assert.InDelta(t, 6, wy, epsilon)

	lx, ly := tr.WorldToLocal(wx, wy)
	assert.InDelta(t, 1, lx, epsilon)
	assert.InDelta(t, 1, ly, epsilon)
}
