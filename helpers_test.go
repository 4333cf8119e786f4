package arbor

import (
	"runtime"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeWindow struct {
	w, h    int
	resizes int
}

func (w *fakeWindow) Size() (int, int) { return w.w, w.h }
func (w *fakeWindow) Resize(width, height int) {
	w.w, w.h = width, height
	w.resizes++
}

type fakeInstance struct{}

func (fakeInstance) Title() string { return "test" }

type fakeDevice struct {
	settings GraphicsSettings
	ready    bool
	err      error
}

func (d *fakeDevice) Init(win Window, windowed, vsynced bool) error {
	if d.err != nil {
		return d.err
	}
	w, h := win.Size()
	d.settings = GraphicsSettings{Width: w, Height: h, Windowed: windowed, VSynced: vsynced}
	d.ready = true
	return nil
}

func (d *fakeDevice) Ready() bool                { return d.ready }
func (d *fakeDevice) Settings() GraphicsSettings { return d.settings }

// targetDevice is a fakeDevice that exposes a frame target the way
// EbitenDevice does, recording every SetTarget call.
type targetDevice struct {
	fakeDevice
	target  *ebiten.Image
	targets []*ebiten.Image
}

func (d *targetDevice) SetTarget(img *ebiten.Image) {
	d.target = img
	d.targets = append(d.targets, img)
}

func (d *targetDevice) Target() *ebiten.Image { return d.target }

type drawCall struct {
	img       *ebiten.Image
	transform [6]float64
	opts      SpriteOptions
}

type fakeRenderer struct {
	err   error
	log   *[]string
	draws []drawCall
}

func (r *fakeRenderer) Init(Device) error { return r.err }

func (r *fakeRenderer) Clear(Color, ClearFlags) { r.record("clear") }

func (r *fakeRenderer) DrawSprite(img *ebiten.Image, transform [6]float64, opts SpriteOptions) {
	r.draws = append(r.draws, drawCall{img: img, transform: transform, opts: opts})
}

func (r *fakeRenderer) Render() { r.record("present") }

func (r *fakeRenderer) record(s string) {
	if r.log != nil {
		*r.log = append(*r.log, s)
	}
}

// recorder is a component that logs every phase it receives.
type recorder struct {
	BaseComponent
	log     *[]string
	initErr error
}

func newRecorder(name string, log *[]string) *recorder {
	return &recorder{BaseComponent: NewBaseComponent(name), log: log}
}

func (r *recorder) add(phase string)  { *r.log = append(*r.log, r.name+":"+phase) }
func (r *recorder) Init(*Core) error  { return r.initErr }
func (r *recorder) OnEnter()          { r.add("enter") }
func (r *recorder) OnExit()           { r.add("exit") }
func (r *recorder) Update(float64)    { r.add("update") }
func (r *recorder) LateUpdate()       { r.add("late") }
func (r *recorder) PreRender()        { r.add("pre") }
func (r *recorder) Render()           { r.add("render") }
func (r *recorder) PostRender()       { r.add("post") }
func (r *recorder) RenderImage()      { r.add("image") }

// --- Core setup ---

type testEnv struct {
	core     *Core
	window   *fakeWindow
	device   *fakeDevice
	renderer *fakeRenderer
	store    *FileStore
	log      []string
}

// newTestEnv returns an initialized core backed by fakes. The core is kept
// reachable until the test ends since entities only hold it weakly.
func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{
		window: &fakeWindow{},
		device: &fakeDevice{},
		store:  NewMemoryStore(),
	}
	env.renderer = &fakeRenderer{log: &env.log}
	base := []Option{
		WithDeviceFactory(func() Device { return env.device }),
		WithRendererFactory(func() Renderer { return env.renderer }),
		WithConfig(env.store),
		WithTimeStep(1.0 / 60),
	}
	env.core = NewCore(append(base, opts...)...)
	require.NoError(t, env.core.Init(env.window, fakeInstance{}), "Init")
	t.Cleanup(func() {
		globalDebug = false
		runtime.KeepAlive(env.core)
	})
	return env
}

func childNames(e *Entity) []string {
	out := make([]string, 0, len(e.children))
	for _, c := range e.children {
		out = append(out, c.Base().name)
	}
	return out
}
