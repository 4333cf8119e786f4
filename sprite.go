package arbor

import "github.com/hajimehoshi/ebiten/v2"

// SpriteRenderer draws an image at its entity's world transform, seen through
// the scene's visiting camera.
type SpriteRenderer struct {
	BaseComponent

	Image *ebiten.Image
	Color Color
	Blend BlendMode
	Layer uint8
}

// NewSpriteRenderer returns a white-tinted sprite component for img.
func NewSpriteRenderer(name string, img *ebiten.Image) *SpriteRenderer {
	return &SpriteRenderer{
		BaseComponent: NewBaseComponent(name),
		Image:         img,
		Color:         ColorWhite,
	}
}

// Render submits the sprite to the renderer.
func (s *SpriteRenderer) Render() {
	e := s.Entity()
	if e == nil || s.Image == nil {
		return
	}
	r := e.Renderer()
	if r == nil {
		return
	}
	m := e.transform.world
	if cam := e.VisitingCamera(); cam != nil {
		m = multiplyAffine(cam.ViewMatrix(), m)
	}
	r.DrawSprite(s.Image, m, SpriteOptions{Color: s.Color, Blend: s.Blend, Layer: s.Layer})
}
