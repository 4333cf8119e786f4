package arbor

import (
	"reflect"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Reporter surfaces fatal startup failures to the user.
type Reporter interface {
	Report(err *InitError)
}

// logReporter reports through the core's logger.
type logReporter struct {
	log *zap.Logger
}

func (r logReporter) Report(err *InitError) {
	r.log.Error(err.Message(), zap.String("subsystem", string(err.Subsystem)), zap.Error(err.Err))
}

// Option configures a Core before Init.
type Option func(*Core)

// WithDeviceFactory sets how Init constructs the rendering device.
func WithDeviceFactory(fn func() Device) Option {
	return func(c *Core) { c.newDevice = fn }
}

// WithRendererFactory sets how Init constructs the renderer.
func WithRendererFactory(fn func() Renderer) Option {
	return func(c *Core) { c.newRenderer = fn }
}

// WithConfig sets the store graphics settings are read from and written to.
func WithConfig(store ConfigStore) Option {
	return func(c *Core) { c.config = store }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Core) { c.log = log }
}

// WithReporter sets the startup failure reporter.
func WithReporter(r Reporter) Option {
	return func(c *Core) { c.reporter = r }
}

// WithAudio sets the audio player.
func WithAudio(a AudioPlayer) Option {
	return func(c *Core) { c.audio = a }
}

// WithInput sets the input handler.
func WithInput(in InputHandler) Option {
	return func(c *Core) { c.input = in }
}

// WithTimeStep fixes the delta time passed to Update. By default the
// Ebitengine tick rate is used.
func WithTimeStep(dt float64) Option {
	return func(c *Core) { c.timeStep = dt }
}

// Core is the composition root. It owns the rendering device, the renderer,
// the registry, the scene controller and the services. Update advances one
// tick and Draw renders one frame.
type Core struct {
	window   Window
	instance Instance

	device   Device
	renderer Renderer
	registry *Registry
	scenes   *SceneController
	audio    AudioPlayer
	input    InputHandler
	events   *EventDispatcher
	config   ConfigStore
	log      *zap.Logger
	reporter Reporter

	newDevice   func() Device
	newRenderer func() Renderer

	timeStep float64
	stats    debugStats
	debug    bool
	ready    bool
	closed   bool
}

// NewCore returns an uninitialized core. Defaults: Ebitengine device and
// renderer, in-memory config, no-op logger, Ebitengine input, no audio.
func NewCore(opts ...Option) *Core {
	c := &Core{
		scenes:      NewSceneController(),
		events:      NewEventDispatcher(),
		input:       EbitenInput{},
		config:      NewMemoryStore(),
		log:         zap.NewNop(),
		newDevice:   func() Device { return NewEbitenDevice() },
		newRenderer: func() Renderer { return NewEbitenRenderer() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reporter == nil {
		c.reporter = logReporter{log: c.log}
	}
	return c
}

// Init validates the host handles, then builds the device, the renderer and
// the registry in that order. The first failure is reported and returned as
// an *InitError; nothing after the failing stage is constructed.
func (c *Core) Init(window Window, instance Instance) error {
	if isNilHandle(window) || isNilHandle(instance) {
		return c.fail(SubsystemHandles, ErrInvalidHandle)
	}
	c.window = window
	c.instance = instance

	gs := LoadGraphics(c.config)
	window.Resize(gs.Width, gs.Height)

	dev := c.newDevice()
	if dev == nil {
		return c.fail(SubsystemDevice, errors.New("no device constructed"))
	}
	if err := dev.Init(window, gs.Windowed, gs.VSynced); err != nil {
		return c.fail(SubsystemDevice, err)
	}
	c.device = dev

	ren := c.newRenderer()
	if ren == nil {
		return c.fail(SubsystemRenderer, errors.New("no renderer constructed"))
	}
	if err := ren.Init(dev); err != nil {
		return c.fail(SubsystemRenderer, err)
	}
	c.renderer = ren

	reg := NewRegistry()
	if err := reg.Init(c); err != nil {
		return c.fail(SubsystemRegistry, err)
	}
	c.registry = reg

	c.ready = true
	c.log.Info("core initialized",
		zap.String("instance", instance.Title()),
		zap.Int("width", dev.Settings().Width),
		zap.Int("height", dev.Settings().Height),
		zap.Bool("windowed", dev.Settings().Windowed),
		zap.Bool("vsynced", dev.Settings().VSynced))
	return nil
}

// isNilHandle reports whether h is nil or an interface holding a nil pointer.
func isNilHandle(h any) bool {
	if h == nil {
		return true
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func (c *Core) fail(sub Subsystem, err error) error {
	ie := initError(sub, err)
	c.reporter.Report(ie)
	return ie
}

// Run drives one whole frame: Update followed by Draw. Hosts that tick and
// draw at different rates call Update and Draw separately instead.
// No-op before a successful Init or after Close.
func (c *Core) Run() {
	c.Update()
	c.Draw()
}

// Update runs the Update and LateUpdate phases over the active scene with a
// fixed time step, then flushes queued events. Call it once per tick.
func (c *Core) Update() {
	if !c.ready || c.closed {
		return
	}
	c.stats = debugStats{}
	if active := c.scenes.Active(); active != nil {
		var t0 time.Time
		if c.debug {
			t0 = time.Now()
		}
		active.Update(c.delta())
		if c.debug {
			c.stats.updateTime = time.Since(t0)
			t0 = time.Now()
		}
		active.LateUpdate()
		if c.debug {
			c.stats.lateTime = time.Since(t0)
		}
	}
	c.events.Flush()
}

// Draw clears the target, renders the active scene once per camera, runs
// RenderImage and presents. It does not advance the simulation.
func (c *Core) Draw() {
	if !c.ready || c.closed {
		return
	}
	var t0 time.Time

	c.renderer.Clear(ColorBlack, ClearTarget)

	if active := c.scenes.Active(); active != nil {
		if c.debug {
			t0 = time.Now()
		}
		active.scene().RenderCameras()
		active.RenderImage()
		if c.debug {
			c.stats.renderTime = time.Since(t0)
		}
	}

	if c.debug {
		t0 = time.Now()
	}
	c.renderer.Render()
	if c.debug {
		c.stats.submitTime = time.Since(t0)
		if r, ok := c.renderer.(interface{ Stats() FrameStats }); ok {
			c.stats.frame = r.Stats()
		}
		debugLog(c.log, c.stats)
	}
}

func (c *Core) delta() float64 {
	if c.timeStep > 0 {
		return c.timeStep
	}
	return 1.0 / float64(ebiten.TPS())
}

// Close exits the scene stack and persists the graphics settings, taking the
// resolution from the window's current size.
// Persisting is best-effort: a failure is logged and returned, not retried.
func (c *Core) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.scenes.Clear()
	if c.device == nil {
		return nil
	}
	gs := c.device.Settings()
	if w, h := c.window.Size(); w > 0 && h > 0 {
		gs.Width, gs.Height = w, h
	}
	if err := SaveGraphics(c.config, gs); err != nil {
		c.log.Warn("persist graphics settings", zap.Error(err))
		return errors.Wrap(err, "persist graphics settings")
	}
	return nil
}

// SetDebugMode enables or disables debug mode. When enabled, tree depth and
// child count warnings and per-frame timing stats are logged at debug level.
func (c *Core) SetDebugMode(enabled bool) {
	c.debug = enabled
	globalDebug = enabled
}

// Ready reports whether Init succeeded.
func (c *Core) Ready() bool { return c.ready }

// Device returns the rendering device, or nil before Init built it.
func (c *Core) Device() Device { return c.device }

// Renderer returns the renderer, or nil before Init built it.
func (c *Core) Renderer() Renderer { return c.renderer }

// Registry returns the entity registry, or nil before Init built it.
func (c *Core) Registry() *Registry { return c.registry }

// Scenes returns the scene controller.
func (c *Core) Scenes() *SceneController { return c.scenes }

// Audio returns the audio player, or nil when none was configured.
func (c *Core) Audio() AudioPlayer { return c.audio }

// Input returns the input handler.
func (c *Core) Input() InputHandler { return c.input }

// Events returns the event dispatcher.
func (c *Core) Events() *EventDispatcher { return c.events }

// Config returns the configuration store.
func (c *Core) Config() ConfigStore { return c.config }

// Logger returns the logger.
func (c *Core) Logger() *zap.Logger { return c.log }

// WindowSize returns the host window's client size, or zeros before Init.
func (c *Core) WindowSize() (width, height int) {
	if c.window == nil {
		return 0, 0
	}
	return c.window.Size()
}
