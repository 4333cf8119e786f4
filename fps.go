package arbor

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefreshInterval is how often, in seconds, FPSDisplay redraws its text.
const fpsRefreshInterval = 0.5

// FPSDisplay draws the current FPS and TPS in screen space, on top of every
// camera pass. The text is refreshed every half second.
type FPSDisplay struct {
	BaseComponent

	img     *ebiten.Image
	elapsed float64
	// rates returns the figures shown; defaults to Ebitengine's counters.
	rates func() (fps, tps float64)
}

// NewFPSDisplay returns an FPS overlay component.
func NewFPSDisplay() *FPSDisplay {
	return &FPSDisplay{
		BaseComponent: NewBaseComponent("fps"),
		img:           ebiten.NewImage(100, 32),
		elapsed:       fpsRefreshInterval,
		rates: func() (float64, float64) {
			return ebiten.ActualFPS(), ebiten.ActualTPS()
		},
	}
}

// Update redraws the text when the refresh interval has passed.
func (f *FPSDisplay) Update(dt float64) {
	f.elapsed += dt
	if f.elapsed < fpsRefreshInterval {
		return
	}
	f.elapsed = 0
	fps, tps := f.rates()
	f.img.Clear()
	f.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", fps, tps))
}

// RenderImage submits the overlay at the entity's world transform, without
// any camera.
func (f *FPSDisplay) RenderImage() {
	e := f.Entity()
	if e == nil {
		return
	}
	if r := e.Renderer(); r != nil {
		r.DrawSprite(f.img, e.transform.world, SpriteOptions{Color: ColorWhite, Layer: 255})
	}
}
