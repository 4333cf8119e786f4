package arbor

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenProperty selects the transform field a Tween drives.
type TweenProperty uint8

const (
	TweenX TweenProperty = iota
	TweenY
	TweenRotation
	TweenScaleX
	TweenScaleY
)

// Tween animates one transform property of its entity during Update.
type Tween struct {
	BaseComponent

	Property TweenProperty
	// OnComplete, when set, runs once when the tween finishes.
	OnComplete func()

	tween *gween.Tween
	done  bool
}

// NewTween returns a tween of prop from from to to over duration seconds.
func NewTween(name string, prop TweenProperty, from, to, duration float32, easeFn ease.TweenFunc) *Tween {
	return &Tween{
		BaseComponent: NewBaseComponent(name),
		Property:      prop,
		tween:         gween.New(from, to, duration, easeFn),
	}
}

// Update advances the tween and writes the value to the transform.
func (t *Tween) Update(dt float64) {
	if t.done {
		return
	}
	e := t.Entity()
	if e == nil {
		return
	}
	v, done := t.tween.Update(float32(dt))
	t.apply(e.transform, float64(v))
	if done {
		t.done = true
		if t.OnComplete != nil {
			t.OnComplete()
		}
	}
}

// Done reports whether the tween has finished.
func (t *Tween) Done() bool {
	return t.done
}

// Reset rewinds the tween to its start.
func (t *Tween) Reset() {
	t.tween.Reset()
	t.done = false
}

func (t *Tween) apply(tr *Transform, v float64) {
	switch t.Property {
	case TweenX:
		tr.X = v
	case TweenY:
		tr.Y = v
	case TweenRotation:
		tr.Rotation = v
	case TweenScaleX:
		tr.ScaleX = v
	case TweenScaleY:
		tr.ScaleY = v
	}
	tr.MarkDirty()
}
