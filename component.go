package arbor

// Component is a behavior unit attached to exactly one entity. It receives
// the same phases as entities; embed BaseComponent to get no-op defaults and
// override the phases you need.
type Component interface {
	Base() *BaseComponent

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

// BaseComponent carries a component's name and owner and implements every
// phase as a no-op.
type BaseComponent struct {
	name  string
	owner *Entity
}

// NewBaseComponent returns a BaseComponent with the given name, for
// embedding.
func NewBaseComponent(name string) BaseComponent {
	return BaseComponent{name: name}
}

// Base returns b.
func (b *BaseComponent) Base() *BaseComponent { return b }

// Name returns the component's name.
func (b *BaseComponent) Name() string { return b.name }

// SetName renames the component.
func (b *BaseComponent) SetName(name string) { b.name = name }

// Entity returns the owning entity, or nil when detached.
func (b *BaseComponent) Entity() *Entity { return b.owner }

func (b *BaseComponent) Init(*Core) error { return nil }
func (b *BaseComponent) OnEnter()         {}
func (b *BaseComponent) OnExit()          {}
func (b *BaseComponent) Update(float64)   {}
func (b *BaseComponent) LateUpdate()      {}
func (b *BaseComponent) PreRender()       {}
func (b *BaseComponent) Render()          {}
func (b *BaseComponent) PostRender()      {}
func (b *BaseComponent) RenderImage()     {}

// --- Entity component operations ---

// AddComponent appends c to the entity's components. It does not call Init;
// see Registry.AttachComponent. A component owned by another entity is moved.
// Adding an instance that is already attached here is a no-op.
// Panics if c is nil.
func (e *Entity) AddComponent(c Component) {
	if c == nil || c.Base() == nil {
		panic("arbor: cannot add nil component")
	}
	b := c.Base()
	if b.owner == e {
		return
	}
	if b.owner != nil {
		b.owner.detachComponentAt(b.owner.componentIndex(c))
	}
	e.detachIteration()
	b.owner = e
	e.components = append(e.components, c)
	if e.running {
		c.OnEnter()
	}
}

// RemoveComponent detaches c. Components of a running entity are exited,
// and components implementing Closer are closed.
// No-op if c is not attached to this entity.
func (e *Entity) RemoveComponent(c Component) {
	if c == nil || c.Base() == nil || c.Base().owner != e {
		return
	}
	e.removeComponentAt(e.componentIndex(c))
}

// RemoveComponentByName detaches the first component with the given name.
func (e *Entity) RemoveComponentByName(name string) {
	for i, c := range e.components {
		if c.Base().name == name {
			e.removeComponentAt(i)
			return
		}
	}
}

// RemoveAllComponents detaches every component.
func (e *Entity) RemoveAllComponents() {
	old := e.components
	e.components = nil
	for _, c := range old {
		if e.running {
			c.OnExit()
		}
		c.Base().owner = nil
		closeComponent(c)
	}
}

// Components returns the component list in attachment order. The returned
// slice MUST NOT be mutated by the caller.
func (e *Entity) Components() []Component {
	return e.components
}

func (e *Entity) componentIndex(c Component) int {
	for i, existing := range e.components {
		if existing == c {
			return i
		}
	}
	return -1
}

func (e *Entity) removeComponentAt(i int) {
	if c := e.detachComponentAt(i); c != nil {
		closeComponent(c)
	}
}

// detachComponentAt removes the component at i without closing it, so it can
// be moved to another entity.
func (e *Entity) detachComponentAt(i int) Component {
	if i < 0 {
		return nil
	}
	e.detachIteration()
	c := e.components[i]
	copy(e.components[i:], e.components[i+1:])
	e.components[len(e.components)-1] = nil
	e.components = e.components[:len(e.components)-1]
	if e.running {
		c.OnExit()
	}
	c.Base().owner = nil
	return c
}

// Closer is implemented by components that own resources, such as a script
// VM. Close is called when the component is removed from its entity;
// moving it to another entity does not close it.
type Closer interface {
	Close()
}

func closeComponent(c Component) {
	if cl, ok := c.(Closer); ok {
		cl.Close()
	}
}

// --- Capability lookup ---

// GetComponent returns the first component of e that implements T, in
// attachment order. T is usually an interface naming a capability or a
// concrete pointer type. A miss returns the zero T and false.
func GetComponent[T any](e *Entity) (T, bool) {
	for _, c := range e.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// GetComponentNamed is GetComponent restricted to components named name.
func GetComponentNamed[T any](e *Entity, name string) (T, bool) {
	for _, c := range e.components {
		if c.Base().name != name {
			continue
		}
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// GetComponents returns every component of e that implements T, preserving
// attachment order.
func GetComponents[T any](e *Entity) []T {
	var out []T
	for _, c := range e.components {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// RemoveComponentOf detaches the first component of e that implements T.
func RemoveComponentOf[T any](e *Entity) {
	for i, c := range e.components {
		if _, ok := c.(T); ok {
			e.removeComponentAt(i)
			return
		}
	}
}
