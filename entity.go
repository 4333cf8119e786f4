package arbor

import (
	"hash/fnv"
	"weak"

	"go.uber.org/zap"
)

// Object is the per-frame contract shared by every entity variant. *Entity
// implements it with the generic fan-out; Scene, Camera and user types embed
// an Entity and override only the phases they care about.
type Object interface {
	// Base returns the embedded generic entity.
	Base() *Entity

	Init(core *Core) error
	OnEnter()
	OnExit()
	Update(dt float64)
	LateUpdate()
	PreRender()
	Render()
	PostRender()
	RenderImage()
}

// entityIDCounter is a plain counter (no atomic, arbor is single-threaded).
var entityIDCounter uint32

func nextEntityID() uint32 {
	entityIDCounter++
	return entityIDCounter
}

// Entity is a named node of the scene tree. It exclusively owns its children,
// its components and its transform. Its parent and every collaborator are
// non-owning references.
type Entity struct {
	// ID is unique per process, assigned on construction.
	ID uint32

	// Tag is a free-form classification; not required to be unique.
	Tag int

	// Visible controls participation in the render phases. Invisible
	// entities skip their whole subtree.
	Visible bool

	// OnUpdate, when set, runs at the start of this entity's Update phase.
	OnUpdate func(dt float64)
	// OnRender, when set, runs at the start of this entity's Render phase.
	OnRender func()

	name     string
	nameHash uint64
	depth    int
	kind     EntityKind
	running  bool
	dirty    bool // children need SortChildren

	self       Object
	parent     *Entity
	children   []Object
	components []Component
	transform  *Transform
	iterating  int // >0 while a phase ranges over children or components

	core     weak.Pointer[Core]
	registry weak.Pointer[Registry]
	scenes   weak.Pointer[SceneController]
}

// NewEntity returns an unwired entity with defaults applied. Entities used
// in a running tree should come from Registry.Create, which also wires and
// initializes them.
func NewEntity(name string) *Entity {
	e := &Entity{}
	entityDefaults(e, e, name)
	return e
}

// entityDefaults sets the common default field values shared by all
// constructors.
func entityDefaults(e *Entity, self Object, name string) {
	e.ID = nextEntityID()
	e.self = self
	e.Visible = true
	e.transform = NewTransform()
	e.SetName(name)
}

// Base returns e.
func (e *Entity) Base() *Entity {
	return e
}

// object returns the outermost value embedding e, so overrides dispatch.
func (e *Entity) object() Object {
	if e.self != nil {
		return e.self
	}
	return e
}

// --- Identity & state ---

// Name returns the entity's name.
func (e *Entity) Name() string {
	return e.name
}

// SetName renames the entity and refreshes its name hash.
func (e *Entity) SetName(name string) {
	e.name = name
	e.nameHash = hashName(name)
}

// Depth returns the ordering key used by SortChildren and camera priority.
func (e *Entity) Depth() int {
	return e.depth
}

// SetDepth changes the ordering key. The parent's children are marked
// unsorted and, for cameras, the owning scene's camera list is marked dirty.
func (e *Entity) SetDepth(depth int) {
	if e.depth == depth {
		return
	}
	e.depth = depth
	if e.parent != nil {
		e.parent.dirty = true
	}
	if e.kind == KindCamera {
		if s := e.Scene(); s != nil {
			s.MarkCamerasDirty()
		}
	}
}

// Kind returns the entity variant.
func (e *Entity) Kind() EntityKind {
	return e.kind
}

// IsRunning reports whether OnEnter has completed and OnExit has not run since.
func (e *Entity) IsRunning() bool {
	return e.running
}

// IsDirty reports whether the children need SortChildren.
func (e *Entity) IsDirty() bool {
	return e.dirty
}

// Transform returns the entity's transform. Never nil after construction.
func (e *Entity) Transform() *Transform {
	return e.transform
}

// --- Collaborators ---

// bind stores non-owning references to the core and the services it owns.
func (e *Entity) bind(core *Core) {
	e.core = weak.Make(core)
	if reg := core.Registry(); reg != nil && e.registry.Value() == nil {
		e.registry = weak.Make(reg)
	}
	if sc := core.Scenes(); sc != nil {
		e.scenes = weak.Make(sc)
	}
}

// Core returns the composition root, or nil if it is gone.
func (e *Entity) Core() *Core {
	return e.core.Value()
}

// Registry returns the registry that created this entity, or nil.
func (e *Entity) Registry() *Registry {
	return e.registry.Value()
}

// Scenes returns the active-scene controller, or nil.
func (e *Entity) Scenes() *SceneController {
	return e.scenes.Value()
}

// Device returns the rendering device, or nil when the core is gone.
func (e *Entity) Device() Device {
	if c := e.Core(); c != nil {
		return c.Device()
	}
	return nil
}

// Renderer returns the renderer, or nil when the core is gone.
func (e *Entity) Renderer() Renderer {
	if c := e.Core(); c != nil {
		return c.Renderer()
	}
	return nil
}

// Audio returns the audio player, or nil.
func (e *Entity) Audio() AudioPlayer {
	if c := e.Core(); c != nil {
		return c.Audio()
	}
	return nil
}

// Input returns the input handler, or nil.
func (e *Entity) Input() InputHandler {
	if c := e.Core(); c != nil {
		return c.Input()
	}
	return nil
}

// Events returns the event dispatcher, or nil.
func (e *Entity) Events() *EventDispatcher {
	if c := e.Core(); c != nil {
		return c.Events()
	}
	return nil
}

// Logger returns the core's logger, or a no-op logger.
func (e *Entity) Logger() *zap.Logger {
	if c := e.Core(); c != nil {
		return c.Logger()
	}
	return zap.NewNop()
}

// Scene returns the nearest scene at or above this entity, or nil.
func (e *Entity) Scene() *Scene {
	for p := e; p != nil; p = p.parent {
		if s, ok := p.object().(interface{ scene() *Scene }); ok {
			return s.scene()
		}
	}
	return nil
}

// VisitingCamera returns the camera the owning scene is currently rendering
// through, or nil outside the render phases.
func (e *Entity) VisitingCamera() *Camera {
	if s := e.Scene(); s != nil {
		return s.VisitingCamera()
	}
	return nil
}

// DefaultCamera returns the owning scene's default camera, or nil.
func (e *Entity) DefaultCamera() *Camera {
	if s := e.Scene(); s != nil {
		return s.DefaultCamera()
	}
	return nil
}

// --- Phases ---

// Init wires the entity to core. It fails when core is nil or its rendering
// device is not ready; no other phase may run on an entity whose Init failed.
func (e *Entity) Init(core *Core) error {
	if core == nil {
		return ErrCoreExpired
	}
	if dev := core.Device(); dev == nil || !dev.Ready() {
		return ErrDeviceNotReady
	}
	if e.transform == nil {
		e.transform = NewTransform()
	}
	e.bind(core)
	return nil
}

// OnEnter marks the entity running, then enters its components and any
// children not already running.
func (e *Entity) OnEnter() {
	e.running = true
	e.iterating++
	defer func() { e.iterating-- }()
	for _, c := range e.components {
		c.OnEnter()
	}
	for _, child := range e.children {
		if !child.Base().running {
			child.OnEnter()
		}
	}
	e.publish(EventEntered)
}

// OnExit exits running children, then components, and clears running.
func (e *Entity) OnExit() {
	e.iterating++
	defer func() { e.iterating-- }()
	for _, child := range e.children {
		if child.Base().running {
			child.OnExit()
		}
	}
	for _, c := range e.components {
		c.OnExit()
	}
	e.running = false
	e.publish(EventExited)
}

// Update refreshes the world transform, runs OnUpdate, then updates
// components and children in order.
func (e *Entity) Update(dt float64) {
	parentWorld, parentRecomputed := identityTransform, false
	if e.parent != nil {
		parentWorld, parentRecomputed = e.parent.transform.world, e.parent.transform.recomputed
	}
	e.transform.refresh(parentWorld, parentRecomputed)

	if e.OnUpdate != nil {
		e.OnUpdate(dt)
	}
	e.iterating++
	defer func() { e.iterating-- }()
	for _, c := range e.components {
		c.Update(dt)
	}
	for _, child := range e.children {
		child.Update(dt)
	}
}

// LateUpdate runs after every entity has updated.
func (e *Entity) LateUpdate() {
	e.iterating++
	defer func() { e.iterating-- }()
	for _, c := range e.components {
		c.LateUpdate()
	}
	for _, child := range e.children {
		child.LateUpdate()
	}
}

// PreRender is the first render stage. Skipped for invisible subtrees.
func (e *Entity) PreRender() {
	if !e.Visible {
		return
	}
	e.iterating++
	defer func() { e.iterating-- }()
	for _, c := range e.components {
		c.PreRender()
	}
	for _, child := range e.children {
		child.PreRender()
	}
}

// Render submits draw work. Skipped for invisible subtrees.
func (e *Entity) Render() {
	if !e.Visible {
		return
	}
	if e.OnRender != nil {
		e.OnRender()
	}
	e.iterating++
	defer func() { e.iterating-- }()
	for _, c := range e.components {
		c.Render()
	}
	for _, child := range e.children {
		child.Render()
	}
}

// PostRender is the last per-camera render stage.
func (e *Entity) PostRender() {
	if !e.Visible {
		return
	}
	e.iterating++
	defer func() { e.iterating-- }()
	for _, c := range e.components {
		c.PostRender()
	}
	for _, child := range e.children {
		child.PostRender()
	}
}

// RenderImage runs once per frame after every camera has rendered.
func (e *Entity) RenderImage() {
	if !e.Visible {
		return
	}
	e.iterating++
	defer func() { e.iterating-- }()
	for _, c := range e.components {
		c.RenderImage()
	}
	for _, child := range e.children {
		child.RenderImage()
	}
}

func (e *Entity) publish(typ EventType) {
	if ev := e.Events(); ev != nil {
		ev.Publish(Event{Type: typ, EntityID: e.ID, Name: e.name, Tag: e.Tag})
	}
}

// --- Tree manipulation ---

// AddChild appends child to this entity's children.
// If child already has a parent, it is removed from that parent first, so
// re-adding an existing child moves it to the end.
// A child that is not running is entered. Cameras entering a scene subtree
// are registered with that scene.
// Panics if child is nil or child is an ancestor of this entity (cycle).
func (e *Entity) AddChild(child Object) {
	c := e.adoptable(child)
	if c.parent != nil {
		c.parent.RemoveChild(child)
	}
	e.insertChild(child, c, len(e.children))
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild. When child is
// already a child of this entity, index refers to the list without it.
// Panics if index is out of range; nothing is detached in that case.
func (e *Entity) AddChildAt(child Object, index int) {
	c := e.adoptable(child)
	n := len(e.children)
	if c.parent == e {
		n--
	}
	if index < 0 || index > n {
		panic("arbor: child index out of range")
	}
	if c.parent != nil {
		c.parent.RemoveChild(child)
	}
	e.insertChild(child, c, index)
}

func (e *Entity) adoptable(child Object) *Entity {
	if child == nil || child.Base() == nil {
		panic("arbor: cannot add nil child")
	}
	c := child.Base()
	if isAncestor(c, e) {
		panic("arbor: adding child would create a cycle")
	}
	return c
}

func (e *Entity) insertChild(child Object, c *Entity, index int) {
	e.detachIteration()
	c.parent = e
	e.children = append(e.children, nil)
	copy(e.children[index+1:], e.children[index:])
	e.children[index] = child
	e.dirty = true
	c.transform.MarkDirty()

	if s := e.Scene(); s != nil {
		registerCameras(s, child)
	}
	if !c.running {
		child.OnEnter()
	}
	if globalDebug {
		log := e.Logger()
		debugCheckTreeDepth(log, c)
		debugCheckChildCount(log, e)
	}
}

// RemoveChild detaches child from this entity. Running children are exited.
// No-op if child is not one of this entity's children.
func (e *Entity) RemoveChild(child Object) {
	if child == nil {
		return
	}
	c := child.Base()
	if c == nil || c.parent != e {
		return
	}
	if s := e.Scene(); s != nil {
		unregisterCameras(s, child)
	}
	e.removeChildByPtr(c)
	if c.running {
		child.OnExit()
	}
	c.parent = nil
	c.transform.MarkDirty()
}

// RemoveChildByName detaches the first child with the given name.
// No-op if none matches.
func (e *Entity) RemoveChildByName(name string) {
	if child := e.GetChild(name); child != nil {
		e.RemoveChild(child)
	}
}

// RemoveChildFromParent detaches this entity from its parent.
// No-op if this entity has no parent.
func (e *Entity) RemoveChildFromParent() {
	if e.parent == nil {
		return
	}
	e.parent.RemoveChild(e.object())
}

// RemoveAllChildren detaches all children from this entity.
func (e *Entity) RemoveAllChildren() {
	old := e.children
	e.children = nil
	e.dirty = false
	s := e.Scene()
	for _, child := range old {
		c := child.Base()
		if s != nil {
			unregisterCameras(s, child)
		}
		if c.running {
			child.OnExit()
		}
		c.parent = nil
		c.transform.MarkDirty()
	}
}

// HasChild reports whether child is a direct child of this entity.
func (e *Entity) HasChild(child Object) bool {
	return child != nil && child.Base() != nil && child.Base().parent == e
}

// Parent returns the parent, or nil for roots.
func (e *Entity) Parent() Object {
	if e.parent == nil {
		return nil
	}
	return e.parent.object()
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (e *Entity) Children() []Object {
	return e.children
}

// NumChildren returns the number of children.
func (e *Entity) NumChildren() int {
	return len(e.children)
}

// ChildAt returns the child at the given index.
func (e *Entity) ChildAt(index int) Object {
	return e.children[index]
}

// GetChild returns the first child named name, or nil. The name hash is
// compared first; equal hashes are confirmed with a full string compare.
func (e *Entity) GetChild(name string) Object {
	h := hashName(name)
	for _, child := range e.children {
		c := child.Base()
		if c.nameHash == h && c.name == name {
			return child
		}
	}
	return nil
}

// GetChildByTag returns the first child with the given tag, or nil.
func (e *Entity) GetChildByTag(tag int) Object {
	for _, child := range e.children {
		if child.Base().Tag == tag {
			return child
		}
	}
	return nil
}

// SortChildren stable-sorts the children by depth, ascending.
// Uses insertion sort: zero allocations, stable, and O(n) when the
// children are already sorted.
func (e *Entity) SortChildren() {
	e.detachIteration()
	nc := len(e.children)
	for i := 1; i < nc; i++ {
		key := e.children[i]
		j := i - 1
		for j >= 0 && e.children[j].Base().depth > key.Base().depth {
			e.children[j+1] = e.children[j]
			j--
		}
		e.children[j+1] = key
	}
	e.dirty = false
}

// --- Helpers ---

// detachIteration gives e fresh child and component slices when a phase is
// ranging over the current ones, so in-flight iterations keep the list they
// started with.
func (e *Entity) detachIteration() {
	if e.iterating == 0 {
		return
	}
	e.children = append([]Object(nil), e.children...)
	e.components = append([]Component(nil), e.components...)
}

// isAncestor reports whether candidate is an ancestor of (or equal to) e.
func isAncestor(candidate, e *Entity) bool {
	for p := e; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from e.children without clearing child.parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (e *Entity) removeChildByPtr(child *Entity) {
	e.detachIteration()
	for i, c := range e.children {
		if c.Base() == child {
			copy(e.children[i:], e.children[i+1:])
			e.children[len(e.children)-1] = nil
			e.children = e.children[:len(e.children)-1]
			return
		}
	}
}

// registerCameras adds every camera in obj's subtree to s.
func registerCameras(s *Scene, obj Object) {
	if cam, ok := obj.(interface{ camera() *Camera }); ok {
		s.addCamera(cam.camera())
	}
	for _, child := range obj.Base().children {
		registerCameras(s, child)
	}
}

// unregisterCameras removes every camera in obj's subtree from s.
func unregisterCameras(s *Scene, obj Object) {
	if cam, ok := obj.(interface{ camera() *Camera }); ok {
		s.removeCamera(cam.camera())
	}
	for _, child := range obj.Base().children {
		unregisterCameras(s, child)
	}
}

func hashName(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}
