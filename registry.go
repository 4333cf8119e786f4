package arbor

import (
	"weak"

	"github.com/kamstrup/intmap"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Registry is the only factory for entities, scenes and cameras. Every
// creation allocates, wires collaborator references, calls Init and returns
// the object only if Init succeeded. Callers must check the error.
//
// The registry keeps a weak index from entity ID to entity; it does not own
// what it creates.
type Registry struct {
	core  weak.Pointer[Core]
	index *intmap.Map[uint32, weak.Pointer[Entity]]
	log   *zap.Logger
	ready bool
}

// NewRegistry allocates an uninitialized registry.
func NewRegistry() *Registry {
	return &Registry{
		index: intmap.New[uint32, weak.Pointer[Entity]](256),
		log:   zap.NewNop(),
	}
}

// Init binds the registry to core. Creation fails until Init succeeds.
func (r *Registry) Init(core *Core) error {
	if core == nil {
		return ErrCoreExpired
	}
	r.core = weak.Make(core)
	r.log = core.Logger().Named("registry")
	r.ready = true
	return nil
}

// Create builds a generic entity named name.
func (r *Registry) Create(name string) (*Entity, error) {
	e := &Entity{}
	if err := r.construct(e, name); err != nil {
		return nil, err
	}
	return e, nil
}

// CreateScene builds a scene, including its default camera.
func (r *Registry) CreateScene(name string) (*Scene, error) {
	s := &Scene{}
	if err := r.construct(s, name); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateCamera builds a camera entity. Used by Scene.Init for the default
// camera; extra cameras are added to a scene with AddChild.
func (r *Registry) CreateCamera() (*Camera, error) {
	c := &Camera{Zoom: 1}
	if err := r.construct(c, "Camera"); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateAs builds a value of a user type that embeds Entity, Scene or Camera
// and returns a pointer to it. The type's own Init override runs.
//
//	type Level struct{ arbor.Scene }
//	lvl, err := arbor.CreateAs[Level](reg, "level-1")
func CreateAs[T any, PT interface {
	*T
	Object
}](r *Registry, name string) (PT, error) {
	obj := PT(new(T))
	if err := r.construct(obj, name); err != nil {
		return nil, err
	}
	return obj, nil
}

// AttachComponent initializes c against the core and attaches it to e.
// Nothing is attached if Init fails.
func (r *Registry) AttachComponent(e *Entity, c Component) error {
	if c == nil || c.Base() == nil {
		return errors.New("arbor: nil component")
	}
	core, err := r.liveCore()
	if err != nil {
		return err
	}
	if err := c.Init(core); err != nil {
		return errors.Wrapf(err, "init component %q", c.Base().name)
	}
	e.AddComponent(c)
	return nil
}

// Lookup resolves an entity by ID. Entities that are no longer reachable
// resolve to nil and their index entry is dropped.
func (r *Registry) Lookup(id uint32) *Entity {
	wp, ok := r.index.Get(id)
	if !ok {
		return nil
	}
	if e := wp.Value(); e != nil {
		return e
	}
	r.index.Del(id)
	return nil
}

func (r *Registry) liveCore() (*Core, error) {
	if !r.ready {
		return nil, ErrNotInitialized
	}
	core := r.core.Value()
	if core == nil {
		return nil, ErrCoreExpired
	}
	return core, nil
}

// construct runs the two-phase construction for obj.
func (r *Registry) construct(obj Object, name string) error {
	core, err := r.liveCore()
	if err != nil {
		return errors.Wrapf(err, "create %q", name)
	}
	base := obj.Base()
	entityDefaults(base, obj, name)
	base.registry = weak.Make(r)
	if err := obj.Init(core); err != nil {
		r.log.Debug("create failed", zap.String("name", name), zap.Error(err))
		return errors.Wrapf(err, "create %q", name)
	}
	r.index.Put(base.ID, weak.Make(base))
	r.log.Debug("created",
		zap.Uint32("id", base.ID),
		zap.String("name", name),
		zap.Stringer("kind", base.kind))
	return nil
}
