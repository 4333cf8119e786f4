package arbor

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
)

// GraphicsSettings is the device state persisted under the Graphics section
// of the configuration store.
type GraphicsSettings struct {
	Width    int
	Height   int
	Windowed bool
	VSynced  bool
}

// DefaultGraphics is used for keys missing from the configuration store.
var DefaultGraphics = GraphicsSettings{Width: 800, Height: 600, Windowed: true, VSynced: true}

// Window is the host surface a device presents into.
type Window interface {
	Size() (width, height int)
	Resize(width, height int)
}

// Instance identifies the host application.
type Instance interface {
	Title() string
}

// Device is the rendering device. The core only sequences its calls.
type Device interface {
	Init(win Window, windowed, vsynced bool) error
	Ready() bool
	Settings() GraphicsSettings
}

// SpriteOptions controls a single DrawSprite submission.
type SpriteOptions struct {
	Color Color
	Blend BlendMode
	// Layer orders submissions: lower layers are drawn first. Submissions
	// on the same layer keep their submission order.
	Layer uint8
}

// Renderer records draw submissions for a frame and presents them.
type Renderer interface {
	Init(dev Device) error
	Clear(c Color, flags ClearFlags)
	DrawSprite(img *ebiten.Image, transform [6]float64, opts SpriteOptions)
	Render()
}

// --- Ebitengine device ---

// EbitenDevice configures the Ebitengine window and exposes the screen image
// of the frame being drawn.
type EbitenDevice struct {
	settings GraphicsSettings
	target   *ebiten.Image
	ready    bool
}

// NewEbitenDevice returns an uninitialized device.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{settings: DefaultGraphics}
}

// Init sizes the device to win and applies the windowed and vsync flags.
func (d *EbitenDevice) Init(win Window, windowed, vsynced bool) error {
	if win == nil {
		return ErrInvalidHandle
	}
	w, h := win.Size()
	if w <= 0 || h <= 0 {
		return errors.Errorf("arbor: invalid window size %dx%d", w, h)
	}
	d.settings = GraphicsSettings{Width: w, Height: h, Windowed: windowed, VSynced: vsynced}
	ebiten.SetWindowSize(w, h)
	ebiten.SetFullscreen(!windowed)
	ebiten.SetVsyncEnabled(vsynced)
	d.ready = true
	return nil
}

// Ready reports whether Init succeeded.
func (d *EbitenDevice) Ready() bool { return d.ready }

// Settings returns the applied graphics settings.
func (d *EbitenDevice) Settings() GraphicsSettings { return d.settings }

// SetTarget sets the image the current frame is presented into. The host
// calls this with the screen image before Core.Run.
func (d *EbitenDevice) SetTarget(img *ebiten.Image) { d.target = img }

// Target returns the current frame's image, or nil outside a frame.
func (d *EbitenDevice) Target() *ebiten.Image { return d.target }

// --- Ebitengine renderer ---

// spriteCommand is a single draw instruction recorded by DrawSprite.
type spriteCommand struct {
	img       *ebiten.Image
	transform [6]float64
	color     Color
	blend     BlendMode
	layer     uint8
	order     int // submission order, for stable sort
}

// FrameStats describes the last presented frame.
type FrameStats struct {
	Commands  int
	DrawCalls int
	Cleared   bool
}

// EbitenRenderer queues sprite submissions and draws them onto the device
// target on Render, ordered by layer then submission order.
type EbitenRenderer struct {
	target interface{ Target() *ebiten.Image }

	commands     []spriteCommand
	sortBuf      []spriteCommand
	clearColor   Color
	clearPending bool
	stats        FrameStats
}

// NewEbitenRenderer returns an uninitialized renderer.
func NewEbitenRenderer() *EbitenRenderer {
	return &EbitenRenderer{
		commands: make([]spriteCommand, 0, 256),
	}
}

// Init binds the renderer to dev, which must expose an Ebitengine target.
func (r *EbitenRenderer) Init(dev Device) error {
	if dev == nil || !dev.Ready() {
		return ErrDeviceNotReady
	}
	t, ok := dev.(interface{ Target() *ebiten.Image })
	if !ok {
		return errors.Errorf("arbor: device %T has no ebiten target", dev)
	}
	r.target = t
	return nil
}

// Clear schedules a fill of the target before this frame's sprites.
// Only ClearTarget has an effect.
func (r *EbitenRenderer) Clear(c Color, flags ClearFlags) {
	if flags&ClearTarget == 0 {
		return
	}
	r.clearColor = c
	r.clearPending = true
}

// DrawSprite records img drawn with transform.
func (r *EbitenRenderer) DrawSprite(img *ebiten.Image, transform [6]float64, opts SpriteOptions) {
	if img == nil {
		return
	}
	r.commands = append(r.commands, spriteCommand{
		img:       img,
		transform: transform,
		color:     opts.Color,
		blend:     opts.Blend,
		layer:     opts.Layer,
		order:     len(r.commands),
	})
}

// Render presents the queued frame onto the device target and resets the
// queue. Without a target the frame is dropped.
func (r *EbitenRenderer) Render() {
	r.stats = FrameStats{Commands: len(r.commands), Cleared: r.clearPending}
	defer func() {
		r.commands = r.commands[:0]
		r.clearPending = false
	}()

	var target *ebiten.Image
	if r.target != nil {
		target = r.target.Target()
	}
	if target == nil {
		return
	}
	if r.clearPending {
		target.Fill(r.clearColor.RGBA())
	}
	r.mergeSort()

	var op ebiten.DrawImageOptions
	for i := range r.commands {
		cmd := &r.commands[i]
		op.GeoM = commandGeoM(cmd.transform)
		op.ColorScale.Reset()
		a := float32(cmd.color.A)
		op.ColorScale.Scale(float32(cmd.color.R)*a, float32(cmd.color.G)*a, float32(cmd.color.B)*a, a)
		op.Blend = cmd.blend.EbitenBlend()
		target.DrawImage(cmd.img, &op)
		r.stats.DrawCalls++
	}
}

// Stats returns counters for the last presented frame.
func (r *EbitenRenderer) Stats() FrameStats {
	return r.stats
}

// commandGeoM converts a [6]float64 affine transform into an ebiten.GeoM.
func commandGeoM(t [6]float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, t[0])
	m.SetElement(1, 0, t[1])
	m.SetElement(0, 1, t[2])
	m.SetElement(1, 1, t[3])
	m.SetElement(0, 2, t[4])
	m.SetElement(1, 2, t[5])
	return m
}

// commandLessOrEqual returns true if a should sort before or at the same position as b.
// Using <= for order ensures stability.
func commandLessOrEqual(a, b *spriteCommand) bool {
	if a.layer != b.layer {
		return a.layer < b.layer
	}
	return a.order <= b.order
}

// mergeSort sorts r.commands in-place using r.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (r *EbitenRenderer) mergeSort() {
	n := len(r.commands)
	if n <= 1 {
		return
	}
	if cap(r.sortBuf) < n {
		r.sortBuf = make([]spriteCommand, n)
	}
	r.sortBuf = r.sortBuf[:n]

	a := r.commands
	b := r.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(r.commands, r.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []spriteCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
