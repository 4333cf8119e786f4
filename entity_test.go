package arbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Constructor defaults ---

func TestNewEntityDefaults(t *testing.T) {
	e := NewEntity("hero")
	assert.NotZero(t, e.ID)
	assert.Equal(t, "hero", e.Name())
	assert.True(t, e.Visible)
	require.NotNil(t, e.Transform())
	assert.Equal(t, KindGeneric, e.Kind())
	assert.False(t, e.IsRunning(), "new entity should not be running")
}

func TestUniqueIDs(t *testing.T) {
	a := NewEntity("a")
	b := NewEntity("b")
	assert.NotEqual(t, a.ID, b.ID)
}

// --- AddChild ---

func TestAddChildSetsParent(t *testing.T) {
	parent := NewEntity("parent")
	child := NewEntity("child")
	parent.AddChild(child)

	assert.Same(t, parent, child.Parent())
	assert.True(t, parent.HasChild(child))
	require.Equal(t, 1, parent.NumChildren())
	assert.Equal(t, Object(child), parent.ChildAt(0))
	assert.True(t, parent.IsDirty(), "parent should be marked unsorted")
}

func TestAddChildReparents(t *testing.T) {
	p0 := NewEntity("p0")
	p1 := NewEntity("p1")
	child := NewEntity("child")
	p0.AddChild(child)
	p1.AddChild(child)

	assert.Same(t, p1, child.Parent())
	assert.Zero(t, p0.NumChildren())
	assert.False(t, p0.HasChild(child))
}

func TestAddChildAgainMovesToEnd(t *testing.T) {
	var log []string
	p := NewEntity("p")
	a, b := NewEntity("a"), NewEntity("b")
	a.AddComponent(newRecorder("ra", &log))
	p.AddChild(a)
	p.AddChild(b)
	log = nil

	require.NotPanics(t, func() { p.AddChild(a) })
	assert.Equal(t, []string{"b", "a"}, childNames(p))
	assert.Same(t, p, a.Parent())
	assert.True(t, a.IsRunning())
	assert.Equal(t, []string{"ra:exit", "ra:enter"}, log, "re-adding is remove then add")

	require.NotPanics(t, func() { p.AddChild(a) })
	assert.Equal(t, []string{"b", "a"}, childNames(p), "re-adding the last child keeps the order")
}

func TestAddChildAtSameParent(t *testing.T) {
	p := NewEntity("p")
	a, b, c := NewEntity("a"), NewEntity("b"), NewEntity("c")
	p.AddChild(a)
	p.AddChild(b)
	p.AddChild(c)

	p.AddChildAt(a, 2)
	assert.Equal(t, []string{"b", "c", "a"}, childNames(p))

	p.AddChildAt(a, 0)
	assert.Equal(t, []string{"a", "b", "c"}, childNames(p))
	assert.Same(t, p, a.Parent())
}

func TestAddChildAtOutOfRangeLeavesChildAttached(t *testing.T) {
	p := NewEntity("p")
	a, b := NewEntity("a"), NewEntity("b")
	p.AddChild(a)
	p.AddChild(b)

	assert.Panics(t, func() { p.AddChildAt(a, 2) })
	assert.Equal(t, []string{"a", "b"}, childNames(p))
	assert.Same(t, p, a.Parent())
	assert.True(t, a.IsRunning())

	other := NewEntity("other")
	assert.Panics(t, func() { other.AddChildAt(a, 1) })
	assert.Same(t, p, a.Parent(), "a failed move must not detach the child")
}

func TestAddChildAtInsertsAtIndex(t *testing.T) {
	p := NewEntity("p")
	a, b, c := NewEntity("a"), NewEntity("b"), NewEntity("c")
	p.AddChild(a)
	p.AddChild(c)
	p.AddChildAt(b, 1)
	assert.Equal(t, []string{"a", "b", "c"}, childNames(p))
}

func TestAddChildNilPanics(t *testing.T) {
	assert.Panics(t, func() { NewEntity("p").AddChild(nil) })
}

func TestAddChildCyclePanics(t *testing.T) {
	a := NewEntity("a")
	b := NewEntity("b")
	a.AddChild(b)
	assert.Panics(t, func() { b.AddChild(a) })
	assert.Same(t, a, b.Parent(), "failed add should leave the tree unchanged")
}

func TestAddChildSelfPanics(t *testing.T) {
	a := NewEntity("a")
	assert.Panics(t, func() { a.AddChild(a) })
}

func TestAddChildEntersChild(t *testing.T) {
	p := NewEntity("p")
	child := NewEntity("child")
	p.AddChild(child)
	assert.True(t, child.IsRunning(), "added child should be running")
}

// --- Remove ---

func TestRemoveChild(t *testing.T) {
	p := NewEntity("p")
	child := NewEntity("child")
	p.AddChild(child)
	p.RemoveChild(child)

	assert.Nil(t, child.Parent())
	assert.Zero(t, p.NumChildren())
	assert.False(t, child.IsRunning(), "removed child should be exited")
}

func TestRemoveChildNotOwnedIsNoop(t *testing.T) {
	p := NewEntity("p")
	other := NewEntity("other")
	stranger := NewEntity("stranger")
	other.AddChild(stranger)

	p.RemoveChild(stranger)
	assert.Same(t, other, stranger.Parent(), "RemoveChild on a non-child must not detach it")
}

func TestRemoveChildByName(t *testing.T) {
	p := NewEntity("p")
	p.AddChild(NewEntity("a"))
	p.AddChild(NewEntity("b"))
	p.RemoveChildByName("a")
	assert.Equal(t, []string{"b"}, childNames(p))

	p.RemoveChildByName("missing")
	assert.Equal(t, 1, p.NumChildren(), "unknown name should be a no-op")
}

func TestRemoveChildFromParent(t *testing.T) {
	p := NewEntity("p")
	child := NewEntity("child")
	p.AddChild(child)
	child.RemoveChildFromParent()
	assert.Nil(t, child.Parent())
	assert.Zero(t, p.NumChildren())
	assert.NotPanics(t, child.RemoveChildFromParent)
}

func TestRemoveAllChildren(t *testing.T) {
	p := NewEntity("p")
	kids := []*Entity{NewEntity("a"), NewEntity("b"), NewEntity("c")}
	for _, k := range kids {
		p.AddChild(k)
	}
	p.RemoveAllChildren()

	assert.Zero(t, p.NumChildren())
	for _, k := range kids {
		assert.Nil(t, k.Parent(), k.Name())
		assert.False(t, k.IsRunning(), k.Name())
	}
}

// --- Lookup ---

func TestGetChild(t *testing.T) {
	p := NewEntity("p")
	a := NewEntity("alpha")
	b := NewEntity("beta")
	p.AddChild(a)
	p.AddChild(b)

	assert.Equal(t, Object(b), p.GetChild("beta"))
	assert.Nil(t, p.GetChild("gamma"))
}

func TestGetChildAfterRename(t *testing.T) {
	p := NewEntity("p")
	a := NewEntity("old")
	p.AddChild(a)
	a.SetName("new")
	assert.Nil(t, p.GetChild("old"))
	assert.Equal(t, Object(a), p.GetChild("new"))
}

func TestGetChildComparesFullName(t *testing.T) {
	p := NewEntity("p")
	a := NewEntity("a")
	p.AddChild(a)
	// Force a hash collision: same hash, different name.
	a.nameHash = hashName("b")
	assert.Nil(t, p.GetChild("b"), "a hash match with a different name must not resolve")
}

func TestGetChildByTag(t *testing.T) {
	p := NewEntity("p")
	a, b := NewEntity("a"), NewEntity("b")
	b.Tag = 7
	p.AddChild(a)
	p.AddChild(b)
	assert.Equal(t, Object(b), p.GetChildByTag(7))
	assert.Nil(t, p.GetChildByTag(9))
}

// --- Sorting ---

func TestSortChildrenByDepth(t *testing.T) {
	z := NewEntity("z")
	x := NewEntity("x")
	y := NewEntity("y")
	x.SetDepth(5)
	y.SetDepth(2)
	z.AddChild(x)
	z.AddChild(y)
	z.SortChildren()

	assert.Equal(t, []string{"y", "x"}, childNames(z))
	assert.False(t, z.IsDirty(), "SortChildren should clear the dirty flag")
}

func TestSortChildrenStableAndIdempotent(t *testing.T) {
	p := NewEntity("p")
	depths := []int{3, 1, 3, 0, 1, 2}
	for i, d := range depths {
		e := NewEntity(string(rune('a' + i)))
		e.SetDepth(d)
		p.AddChild(e)
	}
	p.SortChildren()
	once := childNames(p)
	p.SortChildren()

	assert.Equal(t, once, childNames(p), "second sort changed order")
	assert.Equal(t, []string{"d", "b", "e", "f", "a", "c"}, once)
	for i := 1; i < p.NumChildren(); i++ {
		require.LessOrEqual(t, p.ChildAt(i-1).Base().Depth(), p.ChildAt(i).Base().Depth())
	}
}

func TestSetDepthMarksParentDirty(t *testing.T) {
	p := NewEntity("p")
	c := NewEntity("c")
	p.AddChild(c)
	p.SortChildren()
	c.SetDepth(4)
	assert.True(t, p.IsDirty(), "SetDepth should mark the parent unsorted")
}

// --- Phases ---

func TestUpdateOrder(t *testing.T) {
	var log []string
	root := NewEntity("root")
	child := NewEntity("child")
	root.AddComponent(newRecorder("rc", &log))
	child.AddComponent(newRecorder("cc", &log))
	root.OnUpdate = func(float64) { log = append(log, "root:hook") }
	child.OnUpdate = func(float64) { log = append(log, "child:hook") }
	root.AddChild(child)
	log = nil

	root.Update(1.0 / 60)
	assert.Equal(t, []string{"root:hook", "rc:update", "child:hook", "cc:update"}, log)
}

func TestEnterExitOrder(t *testing.T) {
	var log []string
	root := NewEntity("root")
	child := NewEntity("child")
	root.AddComponent(newRecorder("rc", &log))
	child.AddComponent(newRecorder("cc", &log))
	// Attach the child before the root enters so it is entered by the fan-out.
	root.children = append(root.children, child)
	child.parent = root

	root.OnEnter()
	root.OnExit()
	assert.Equal(t, []string{"rc:enter", "cc:enter", "cc:exit", "rc:exit"}, log)
}

func TestRenderPhasesSkipInvisible(t *testing.T) {
	var log []string
	root := NewEntity("root")
	hidden := NewEntity("hidden")
	hidden.AddComponent(newRecorder("h", &log))
	root.AddChild(hidden)
	hidden.Visible = false
	log = nil

	root.PreRender()
	root.Render()
	root.PostRender()
	root.RenderImage()
	assert.Empty(t, log, "invisible subtree received render phases")
}

func TestMutationDuringUpdateUsesSnapshot(t *testing.T) {
	root := NewEntity("root")
	a := NewEntity("a")
	b := NewEntity("b")
	root.AddChild(a)
	root.AddChild(b)

	var visited []string
	late := NewEntity("late")
	a.OnUpdate = func(float64) {
		visited = append(visited, "a")
		root.RemoveChild(b)
		root.AddChild(late)
	}
	b.OnUpdate = func(float64) { visited = append(visited, "b") }
	late.OnUpdate = func(float64) { visited = append(visited, "late") }

	root.Update(0)
	assert.Equal(t, []string{"a", "b"}, visited)
	assert.Equal(t, []string{"a", "late"}, childNames(root))
}

func TestUpdatePropagatesWorldTransform(t *testing.T) {
	root := NewEntity("root")
	child := NewEntity("child")
	root.AddChild(child)
	root.Transform().SetPosition(10, 20)
	child.Transform().SetPosition(1, 2)

	root.Update(0)
	w := child.Transform().World()
	assert.Equal(t, 11.0, w[4])
	assert.Equal(t, 22.0, w[5])

	root.Transform().SetPosition(0, 0)
	root.Update(0)
	w = child.Transform().World()
	assert.Equal(t, 1.0, w[4])
	assert.Equal(t, 2.0, w[5])
}

func TestCollaboratorsNilWithoutCore(t *testing.T) {
	e := NewEntity("e")
	assert.Nil(t, e.Core())
	assert.Nil(t, e.Registry())
	assert.Nil(t, e.Device())
	assert.Nil(t, e.Renderer())
	assert.NotNil(t, e.Logger(), "Logger should fall back to a no-op logger")
	assert.Equal(t, ErrCoreExpired, e.Init(nil))
}
