package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/pixeldivider/dmgcore/internal/bus"
	"github.com/pixeldivider/dmgcore/internal/emu"
)

const sampleRate = 65536 // matches the APU's native output rate, spec §4.6

// App is a trimmed ebiten.Game implementation: framebuffer blit, keyboard
// polling into Machine.SetButtons, and audio player wiring. No menu,
// settings, ROM picker, or save-state UI (spec §1 Non-goals) — grounded on
// teacher internal/ui/ebitenapp.go's App struct and Update/Draw shape with
// all of that machinery removed.
type App struct {
	cfg Config
	m   *emu.Machine

	tex *ebiten.Image
	rgb []byte // scratch RGBA conversion buffer, reused across frames

	sink        *SampleSink
	audioCtx    *audio.Context
	audioPlayer *audio.Player
}

// NewApp wires a Machine into a window. sink must be the same SampleSink
// passed as the APU's Sink callback when the Machine was constructed.
func NewApp(cfg Config, m *emu.Machine, sink *SampleSink) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(160*cfg.Scale, 144*cfg.Scale)
	return &App{
		cfg:  cfg,
		m:    m,
		rgb:  make([]byte, 160*144*4),
		sink: sink,
	}
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	if a.audioPlayer == nil {
		a.audioCtx = audio.NewContext(sampleRate)
		if p, err := a.audioCtx.NewPlayer(a.sink); err == nil {
			a.audioPlayer = p
			a.audioPlayer.Play()
		}
	}

	var buttons byte
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		buttons |= bus.ButtonRight
	}
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		buttons |= bus.ButtonLeft
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		buttons |= bus.ButtonUp
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		buttons |= bus.ButtonDown
	}
	if ebiten.IsKeyPressed(ebiten.KeyZ) {
		buttons |= bus.ButtonA
	}
	if ebiten.IsKeyPressed(ebiten.KeyX) {
		buttons |= bus.ButtonB
	}
	if ebiten.IsKeyPressed(ebiten.KeyBackspace) {
		buttons |= bus.ButtonSelect
	}
	if ebiten.IsKeyPressed(ebiten.KeyEnter) {
		buttons |= bus.ButtonStart
	}
	a.m.SetButtons(buttons)

	a.m.StepFrame()
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(160, 144)
	}
	rgbToRGBA(a.m.Framebuffer(), a.rgb)
	a.tex.WritePixels(a.rgb)
	screen.DrawImage(a.tex, nil)
}

func (a *App) Layout(outW, outH int) (int, int) { return 160, 144 }

// rgbToRGBA expands a 160x144 RGB24 framebuffer into the RGBA bytes
// ebiten.Image.WritePixels requires, filling alpha opaque.
func rgbToRGBA(src, dst []byte) {
	for i, j := 0, 0; i < len(src); i, j = i+3, j+4 {
		dst[j+0] = src[i+0]
		dst[j+1] = src[i+1]
		dst[j+2] = src[i+2]
		dst[j+3] = 0xFF
	}
}
