package arbor

import (
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Lua hook names looked up on each phase. Missing hooks are skipped.
const (
	luaOnEnter    = "on_enter"
	luaOnExit     = "on_exit"
	luaUpdate     = "update"
	luaLateUpdate = "late_update"
	luaRender     = "render"
)

// Script runs Lua phase hooks for its entity. The script may define any of
// the global functions on_enter, on_exit, update(dt), late_update and render,
// and reaches its entity through the global `entity` table:
//
//	entity.name()            -> string
//	entity.tag()             -> number
//	entity.position()        -> x, y
//	entity.set_position(x, y)
//	entity.set_depth(d)
//	log(msg)
//
// Removing the script from its entity closes the VM; reattach it through
// Registry.AttachComponent to load it again. Single-goroutine access only
// (game loop).
type Script struct {
	BaseComponent

	source string
	vm     *lua.LState
}

// NewScript returns a script component for source. The source is compiled
// on Init.
func NewScript(name, source string) *Script {
	return &Script{BaseComponent: NewBaseComponent(name), source: source}
}

// Init creates the Lua VM, installs the entity API and runs the source. A
// previous VM is closed first.
func (s *Script) Init(*Core) error {
	s.Close()
	vm := lua.NewState()
	s.vm = vm
	s.installAPI()
	if err := vm.DoString(s.source); err != nil {
		vm.Close()
		s.vm = nil
		return errors.Wrapf(err, "load script %q", s.name)
	}
	return nil
}

// Close releases the VM. Hooks are no-ops afterwards.
func (s *Script) Close() {
	if s.vm != nil {
		s.vm.Close()
		s.vm = nil
	}
}

// Global returns a Lua global, or lua.LNil.
func (s *Script) Global(name string) lua.LValue {
	if s.vm == nil {
		return lua.LNil
	}
	return s.vm.GetGlobal(name)
}

func (s *Script) OnEnter()          { s.call(luaOnEnter) }
func (s *Script) OnExit()           { s.call(luaOnExit) }
func (s *Script) Update(dt float64) { s.call(luaUpdate, lua.LNumber(dt)) }
func (s *Script) LateUpdate()       { s.call(luaLateUpdate) }
func (s *Script) Render()           { s.call(luaRender) }

// call invokes a global hook if the script defines one. Errors are logged.
func (s *Script) call(hook string, args ...lua.LValue) {
	if s.vm == nil {
		return
	}
	fn := s.vm.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return
	}
	if err := s.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		s.logger().Warn("lua hook failed",
			zap.String("script", s.name),
			zap.String("hook", hook),
			zap.Error(err))
	}
}

func (s *Script) logger() *zap.Logger {
	if e := s.Entity(); e != nil {
		return e.Logger()
	}
	return zap.NewNop()
}

func (s *Script) installAPI() {
	vm := s.vm
	api := vm.NewTable()
	vm.SetField(api, "name", vm.NewFunction(func(L *lua.LState) int {
		if e := s.Entity(); e != nil {
			L.Push(lua.LString(e.name))
			return 1
		}
		L.Push(lua.LNil)
		return 1
	}))
	vm.SetField(api, "tag", vm.NewFunction(func(L *lua.LState) int {
		if e := s.Entity(); e != nil {
			L.Push(lua.LNumber(e.Tag))
			return 1
		}
		L.Push(lua.LNil)
		return 1
	}))
	vm.SetField(api, "position", vm.NewFunction(func(L *lua.LState) int {
		e := s.Entity()
		if e == nil {
			return 0
		}
		L.Push(lua.LNumber(e.transform.X))
		L.Push(lua.LNumber(e.transform.Y))
		return 2
	}))
	vm.SetField(api, "set_position", vm.NewFunction(func(L *lua.LState) int {
		x := float64(L.CheckNumber(1))
		y := float64(L.CheckNumber(2))
		if e := s.Entity(); e != nil {
			e.transform.SetPosition(x, y)
		}
		return 0
	}))
	vm.SetField(api, "set_depth", vm.NewFunction(func(L *lua.LState) int {
		d := L.CheckInt(1)
		if e := s.Entity(); e != nil {
			e.SetDepth(d)
		}
		return 0
	}))
	vm.SetGlobal("entity", api)
	vm.SetGlobal("log", vm.NewFunction(func(L *lua.LState) int {
		s.logger().Info(L.CheckString(1), zap.String("script", s.name))
		return 0
	}))
}
