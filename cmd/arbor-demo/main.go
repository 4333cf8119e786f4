// Command arbor-demo opens a window with a scene of orbiting sprites driven
// by tweens and a Lua script.
package main

import (
	"fmt"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/arbor"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

const orbitScript = `
t = 0
function update(dt)
  t = t + dt
  entity.set_position(120 * math.cos(t), 120 * math.sin(t))
end
function on_enter()
  log("orbiter entered: " .. entity.name())
end
`

type options struct {
	configPath string
	profile    string
	debug      bool
	logLevel   string
	logFormat  string
}

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:          "arbor-demo",
		Short:        "Run the arbor scene graph demo",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "arbor.toml", "settings file (.toml, .yaml or .yml)")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "write a profile: cpu or mem")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug checks and frame stats")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "console", "log format: console or json")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(opts options) error {
	switch opts.profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	case "":
	default:
		return errors.Errorf("unknown profile mode %q", opts.profile)
	}

	log, err := arbor.NewLogger(arbor.LoggingConfig{Level: opts.logLevel, Format: opts.logFormat})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := arbor.LoadFileStore(opts.configPath)
	if err != nil {
		return err
	}

	audio := arbor.NewEbitenAudio()
	audio.Load("blip", blip())
	core := arbor.NewCore(
		arbor.WithConfig(store),
		arbor.WithLogger(log),
		arbor.WithReporter(stderrReporter{}),
		arbor.WithAudio(audio),
	)
	core.SetDebugMode(opts.debug)

	host := arbor.NewHost("arbor demo")
	if err := core.Init(host, host); err != nil {
		return err
	}

	scene, err := buildScene(core, host)
	if err != nil {
		return err
	}
	core.Scenes().Push(scene)

	return host.Run(core)
}

// demoScene is the demo's root scene.
type demoScene struct {
	arbor.Scene
}

func buildScene(core *arbor.Core, host *arbor.Host) (*demoScene, error) {
	reg := core.Registry()
	scene, err := arbor.CreateAs[demoScene](reg, "demo")
	if err != nil {
		return nil, err
	}

	img := ebiten.NewImage(16, 16)
	img.Fill(color.White)

	center, err := reg.Create("center")
	if err != nil {
		return nil, err
	}
	if err := reg.AttachComponent(center, arbor.NewSpriteRenderer("sprite", img)); err != nil {
		return nil, err
	}
	spin := arbor.NewTween("spin", arbor.TweenRotation, 0, 6.283, 4, ease.InOutQuad)
	spin.OnComplete = spin.Reset
	if err := reg.AttachComponent(center, spin); err != nil {
		return nil, err
	}
	scene.AddChild(center)

	for i := range 3 {
		orbiter, err := reg.Create(fmt.Sprintf("orbiter-%d", i))
		if err != nil {
			return nil, err
		}
		orbiter.Tag = i
		sprite := arbor.NewSpriteRenderer("sprite", img)
		sprite.Color = arbor.Color{R: 0.4, G: 0.8, B: 1, A: 1}
		sprite.Layer = 1
		if err := reg.AttachComponent(orbiter, sprite); err != nil {
			return nil, err
		}
		script := arbor.NewScript("orbit", orbitScript)
		if err := reg.AttachComponent(orbiter, script); err != nil {
			return nil, err
		}
		orbiter.Transform().SetScale(0.5+float64(i)*0.25, 0.5+float64(i)*0.25)
		center.AddChild(orbiter)
	}

	hud, err := reg.Create("hud")
	if err != nil {
		return nil, err
	}
	if err := reg.AttachComponent(hud, arbor.NewFPSDisplay()); err != nil {
		return nil, err
	}
	if err := reg.AttachComponent(hud, &hotkeys{BaseComponent: arbor.NewBaseComponent("hotkeys"), host: host}); err != nil {
		return nil, err
	}
	hud.Transform().SetPosition(4, 4)
	scene.AddChild(hud)

	if cam := scene.DefaultCamera(); cam != nil {
		cam.ScrollTo(0, 0, 1, ease.OutCubic)
	}
	core.Events().Subscribe(func(ev arbor.Event) {
		if ev.Type == arbor.EventEntered {
			core.Logger().Debug("entered", zap.String("name", ev.Name), zap.Uint32("id", ev.EntityID))
		}
	})
	return scene, nil
}

// hotkeys handles demo key bindings: F12 saves a screenshot, Space plays
// the blip sound.
type hotkeys struct {
	arbor.BaseComponent
	host *arbor.Host
}

func (k *hotkeys) Update(float64) {
	e := k.Entity()
	in := e.Input()
	if in == nil {
		return
	}
	if in.KeyJustPressed(ebiten.KeyF12) {
		k.host.Screenshot("demo")
	}
	if in.KeyJustPressed(ebiten.KeySpace) {
		if a := e.Audio(); a != nil {
			if err := a.Play("blip"); err != nil {
				e.Logger().Warn("play", zap.Error(err))
			}
		}
	}
}

// blip returns a short 16-bit stereo square wave at DefaultSampleRate.
func blip() []byte {
	const samples = arbor.DefaultSampleRate / 10
	pcm := make([]byte, samples*4)
	for i := range samples {
		v := int16(3000)
		if (i/50)%2 == 0 {
			v = -v
		}
		for ch := range 2 {
			pcm[i*4+ch*2] = byte(v)
			pcm[i*4+ch*2+1] = byte(uint16(v) >> 8)
		}
	}
	return pcm
}

// stderrReporter prints startup failures where a desktop user will see them
// when launched from a terminal.
type stderrReporter struct{}

func (stderrReporter) Report(err *arbor.InitError) {
	fmt.Fprintln(os.Stderr, err.Message())
}
