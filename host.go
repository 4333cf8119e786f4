package arbor

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Host adapts a Core to Ebitengine. It is both the Window and the Instance
// handed to Core.Init. Ebitengine's Update drives Core.Update once per tick
// and its Draw drives Core.Draw once per displayed frame.
type Host struct {
	// ScreenshotDir is where Screenshot writes PNGs. Empty means
	// DefaultScreenshotDir.
	ScreenshotDir string

	title  string
	width  int
	height int
	core   *Core

	screenshotQueue []string
}

// NewHost returns a host window with the given title, sized to
// DefaultGraphics until Core.Init resizes it.
func NewHost(title string) *Host {
	return &Host{
		title:  title,
		width:  DefaultGraphics.Width,
		height: DefaultGraphics.Height,
	}
}

// Title returns the window title.
func (h *Host) Title() string { return h.title }

// Size returns the client size.
func (h *Host) Size() (width, height int) { return h.width, h.height }

// Resize sets the client size.
func (h *Host) Resize(width, height int) {
	h.width = width
	h.height = height
	ebiten.SetWindowSize(width, height)
}

// Update implements ebiten.Game: advances the core by one tick.
func (h *Host) Update() error {
	if h.core != nil {
		h.core.Update()
	}
	return nil
}

// Draw implements ebiten.Game: binds the screen as the device target, draws
// the current state and captures any queued screenshots.
func (h *Host) Draw(screen *ebiten.Image) {
	if h.core == nil {
		return
	}
	t, ok := h.core.Device().(interface{ SetTarget(*ebiten.Image) })
	if ok {
		t.SetTarget(screen)
		defer t.SetTarget(nil)
	}
	h.core.Draw()
	h.flushScreenshots(screen)
}

// Layout implements ebiten.Game with a fixed logical size.
func (h *Host) Layout(_, _ int) (int, int) {
	return h.width, h.height
}

// Run drives core until the window closes, then closes core. core must
// already be initialized with h as its window and instance.
func (h *Host) Run(core *Core) error {
	h.core = core
	ebiten.SetWindowTitle(h.title)
	defer func() {
		_ = core.Close()
	}()
	return ebiten.RunGame(h)
}
