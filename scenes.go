package arbor

// SceneObject is a Scene or a user type embedding one.
type SceneObject interface {
	Object
	scene() *Scene
}

// SceneController keeps the stack of scenes. Only the top scene is active:
// it is the one the Core updates and renders each tick.
type SceneController struct {
	stack []SceneObject
}

// NewSceneController returns an empty controller.
func NewSceneController() *SceneController {
	return &SceneController{}
}

// Active returns the top scene, or nil.
func (sc *SceneController) Active() SceneObject {
	if len(sc.stack) == 0 {
		return nil
	}
	return sc.stack[len(sc.stack)-1]
}

// ActiveScene returns the Scene embedded in the top scene, or nil.
func (sc *SceneController) ActiveScene() *Scene {
	if a := sc.Active(); a != nil {
		return a.scene()
	}
	return nil
}

// Len returns the number of stacked scenes.
func (sc *SceneController) Len() int {
	return len(sc.stack)
}

// Push exits the current scene and enters s on top of it.
// Panics if s is nil.
func (sc *SceneController) Push(s SceneObject) {
	if s == nil {
		panic("arbor: cannot push nil scene")
	}
	sc.exitTop()
	sc.stack = append(sc.stack, s)
	sc.enterTop()
}

// Pop exits and removes the top scene, then re-enters the one below.
// Returns the popped scene, or nil when the stack is empty.
func (sc *SceneController) Pop() SceneObject {
	top := sc.Active()
	if top == nil {
		return nil
	}
	sc.exitTop()
	sc.stack[len(sc.stack)-1] = nil
	sc.stack = sc.stack[:len(sc.stack)-1]
	sc.enterTop()
	return top
}

// Replace swaps the top scene for s. Equivalent to Push on an empty stack.
func (sc *SceneController) Replace(s SceneObject) {
	if s == nil {
		panic("arbor: cannot push nil scene")
	}
	if len(sc.stack) > 0 {
		sc.exitTop()
		sc.stack[len(sc.stack)-1] = s
		sc.enterTop()
		return
	}
	sc.Push(s)
}

// Clear exits the top scene and empties the stack.
func (sc *SceneController) Clear() {
	sc.exitTop()
	clear(sc.stack)
	sc.stack = sc.stack[:0]
}

func (sc *SceneController) exitTop() {
	if top := sc.Active(); top != nil && top.Base().running {
		top.OnExit()
	}
}

func (sc *SceneController) enterTop() {
	if top := sc.Active(); top != nil && !top.Base().running {
		top.OnEnter()
	}
}
