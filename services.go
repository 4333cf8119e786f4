package arbor

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/pkg/errors"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// --- Input ---

// InputHandler polls keyboard and pointer state for the current tick.
type InputHandler interface {
	KeyPressed(key ebiten.Key) bool
	KeyJustPressed(key ebiten.Key) bool
	CursorPosition() (x, y int)
}

// EbitenInput reads input from Ebitengine.
type EbitenInput struct{}

func (EbitenInput) KeyPressed(key ebiten.Key) bool     { return ebiten.IsKeyPressed(key) }
func (EbitenInput) KeyJustPressed(key ebiten.Key) bool { return inpututil.IsKeyJustPressed(key) }
func (EbitenInput) CursorPosition() (x, y int)         { return ebiten.CursorPosition() }

// --- Audio ---

// AudioPlayer plays named sounds.
type AudioPlayer interface {
	Play(name string) error
	Stop(name string)
	IsPlaying(name string) bool
}

// DefaultSampleRate is the sample rate of the audio context created by
// NewEbitenAudio.
const DefaultSampleRate = 44100

// EbitenAudio plays PCM clips registered with Load through the process-wide
// Ebitengine audio context.
type EbitenAudio struct {
	ctx     *audio.Context
	players map[string]*audio.Player
	volume  float64
}

// NewEbitenAudio returns a player bound to the current audio context, creating
// one at DefaultSampleRate if none exists.
func NewEbitenAudio() *EbitenAudio {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(DefaultSampleRate)
	}
	return &EbitenAudio{
		ctx:     ctx,
		players: make(map[string]*audio.Player),
		volume:  1,
	}
}

// Load registers a 16-bit stereo PCM clip under name, replacing any clip
// with the same name.
func (a *EbitenAudio) Load(name string, pcm []byte) {
	if old, ok := a.players[name]; ok {
		_ = old.Close()
	}
	p := a.ctx.NewPlayerFromBytes(pcm)
	p.SetVolume(a.volume)
	a.players[name] = p
}

// SetVolume sets the volume of every loaded clip, in [0, 1].
func (a *EbitenAudio) SetVolume(v float64) {
	a.volume = clamp01(v)
	for _, p := range a.players {
		p.SetVolume(a.volume)
	}
}

// Play restarts the named clip from the beginning.
func (a *EbitenAudio) Play(name string) error {
	p, ok := a.players[name]
	if !ok {
		return errors.Errorf("arbor: no audio clip %q", name)
	}
	if err := p.SetPosition(0); err != nil {
		return errors.Wrapf(err, "rewind %q", name)
	}
	p.Play()
	return nil
}

// Stop pauses the named clip. Unknown names are ignored.
func (a *EbitenAudio) Stop(name string) {
	if p, ok := a.players[name]; ok {
		p.Pause()
	}
}

// IsPlaying reports whether the named clip is playing.
func (a *EbitenAudio) IsPlaying(name string) bool {
	p, ok := a.players[name]
	return ok && p.IsPlaying()
}

// --- Events ---

// EventType identifies a kind of dispatched event.
type EventType uint8

const (
	EventEntered EventType = iota // an entity completed OnEnter
	EventExited                   // an entity completed OnExit
	EventCustom                   // published by user code
)

// Event is the payload carried by the EventDispatcher.
type Event struct {
	Type     EventType
	EntityID uint32
	Name     string
	Tag      int
	Payload  any
}

// eventType is the Donburi event type all arbor events travel on.
var eventType = events.NewEventType[Event]()

// EventDispatcher queues events during a frame and delivers them to
// subscribers when flushed. Backed by a Donburi world's event feature.
type EventDispatcher struct {
	world donburi.World
}

// NewEventDispatcher returns a dispatcher with its own Donburi world.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{world: donburi.NewWorld()}
}

// Subscribe registers fn for every event delivered by Flush.
func (d *EventDispatcher) Subscribe(fn func(Event)) {
	eventType.Subscribe(d.world, func(_ donburi.World, ev Event) {
		fn(ev)
	})
}

// Publish queues ev until the next Flush.
func (d *EventDispatcher) Publish(ev Event) {
	eventType.Publish(d.world, ev)
}

// Flush delivers queued events in publish order. The core flushes once per
// frame after the render phases.
func (d *EventDispatcher) Flush() {
	eventType.ProcessEvents(d.world)
}
