// Package present hosts the out-of-scope "pixel presentation, audio
// output, input transport" collaborator spec.md §1 names but does not
// specify. It adapts the teacher's internal/graphics.EbitengineBackend
// (internal/graphics/ebitengine_backend.go) into an ebiten.Game that
// drives an internal/system.State instead of the teacher's
// internal/app.Emulator: Update ticks one frame and forwards key
// events into the controller ports; Draw blits the framebuffer it
// pulled out at Update time, converted through the NES hardware
// palette the same way the teacher's EbitengineGame.Draw did, scaled
// and centered identically.
package present

import (
	"image"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/rng999/gones-core/internal/input"
	"github.com/rng999/gones-core/internal/system"
)

const (
	nesWidth  = 256
	nesHeight = 240
)

// hardwarePalette is the Ricoh 2C02 64-color RGB table; duplicated from
// internal/debug's copy (both are leaves adapting
// andrewthecodertx-go-nes-emulator/pkg/ppu.HardwarePalette) so the
// presentation layer never needs to import the debugger.
var hardwarePalette = [64]color.RGBA{
	{84, 84, 84, 255}, {0, 30, 116, 255}, {8, 16, 144, 255}, {48, 0, 136, 255},
	{68, 0, 100, 255}, {92, 0, 48, 255}, {84, 4, 0, 255}, {60, 24, 0, 255},
	{32, 42, 0, 255}, {8, 58, 0, 255}, {0, 64, 0, 255}, {0, 60, 0, 255},
	{0, 50, 60, 255}, {0, 0, 0, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},

	{152, 150, 152, 255}, {8, 76, 196, 255}, {48, 50, 236, 255}, {92, 30, 228, 255},
	{136, 20, 176, 255}, {160, 20, 100, 255}, {152, 34, 32, 255}, {120, 60, 0, 255},
	{84, 90, 0, 255}, {40, 114, 0, 255}, {8, 124, 0, 255}, {0, 118, 40, 255},
	{0, 102, 120, 255}, {0, 0, 0, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},

	{236, 238, 236, 255}, {76, 154, 236, 255}, {120, 124, 236, 255}, {176, 98, 236, 255},
	{228, 84, 236, 255}, {236, 88, 180, 255}, {236, 106, 100, 255}, {212, 136, 32, 255},
	{160, 170, 0, 255}, {116, 196, 0, 255}, {76, 208, 32, 255}, {56, 204, 108, 255},
	{56, 180, 204, 255}, {60, 60, 60, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},

	{236, 238, 236, 255}, {168, 204, 236, 255}, {188, 188, 236, 255}, {212, 178, 236, 255},
	{236, 174, 236, 255}, {236, 174, 212, 255}, {236, 180, 176, 255}, {228, 196, 144, 255},
	{204, 210, 120, 255}, {180, 222, 120, 255}, {168, 226, 144, 255}, {152, 226, 180, 255},
	{160, 214, 228, 255}, {160, 162, 160, 255}, {0, 0, 0, 255}, {0, 0, 0, 255},
}

// buttonMappings mirrors the teacher's EbitengineGame.processInput
// Player 1 layout (internal/graphics/ebitengine_backend.go).
var buttonMappings = map[ebiten.Key]input.Button{
	ebiten.KeyArrowUp:    input.ButtonUp,
	ebiten.KeyArrowDown:  input.ButtonDown,
	ebiten.KeyArrowLeft:  input.ButtonLeft,
	ebiten.KeyArrowRight: input.ButtonRight,
	ebiten.KeyW:          input.ButtonUp,
	ebiten.KeyS:          input.ButtonDown,
	ebiten.KeyA:          input.ButtonLeft,
	ebiten.KeyD:          input.ButtonRight,
	ebiten.KeyJ:          input.ButtonA,
	ebiten.KeyK:          input.ButtonB,
	ebiten.KeyEnter:      input.ButtonStart,
	ebiten.KeySpace:      input.ButtonSelect,
}

// Game is an ebiten.Game driving a *system.State. windowWidth/Height
// are updated by Layout and used to scale-and-center the NES frame.
type Game struct {
	emu *system.State

	framebuffer  []uint8
	frameImage   *ebiten.Image
	rgba         *image.RGBA
	windowWidth  int
	windowHeight int

	drawCount int
}

// NewGame constructs a Game driving emu. It registers its own
// framebuffer with emu via SetFramebuffer so Update never allocates.
func NewGame(emu *system.State) *Game {
	g := &Game{
		emu:         emu,
		framebuffer: make([]uint8, nesWidth*nesHeight),
		frameImage:  ebiten.NewImage(nesWidth, nesHeight),
		rgba:        image.NewRGBA(image.Rect(0, 0, nesWidth, nesHeight)),
	}
	emu.SetFramebuffer(g.framebuffer)
	return g
}

// Update implements ebiten.Game: applies key events to controller 1
// and advances the emulator by exactly one frame.
func (g *Game) Update() error {
	var buttons [8]bool
	for key, button := range buttonMappings {
		if ebiten.IsKeyPressed(key) {
			buttons[indexOfButton(button)] = true
		}
	}
	g.emu.Input.Controller1.SetButtons(buttons)

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		log.Printf("[present] quit requested")
		return ebiten.Termination
	}

	g.emu.EmulateFrame()
	g.blitFramebuffer()
	return nil
}

// Draw implements ebiten.Game: scales and centers the NES frame inside
// the current window, matching the teacher's Draw layout math exactly.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{A: 255})

	op := &ebiten.DrawImageOptions{}
	scaleX := float64(g.windowWidth) / float64(nesWidth)
	scaleY := float64(g.windowHeight) / float64(nesHeight)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	offsetX := (float64(g.windowWidth) - float64(nesWidth)*scale) / 2
	offsetY := (float64(g.windowHeight) - float64(nesHeight)*scale) / 2
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)

	screen.DrawImage(g.frameImage, op)

	g.drawCount++
	if g.drawCount%1800 == 0 {
		log.Printf("[present] drew frame %d at %.2fx", g.drawCount, scale)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

func (g *Game) blitFramebuffer() {
	for y := 0; y < nesHeight; y++ {
		for x := 0; x < nesWidth; x++ {
			idx := g.framebuffer[y*nesWidth+x] & 0x3F
			c := hardwarePalette[idx]
			o := g.rgba.PixOffset(x, y)
			g.rgba.Pix[o] = c.R
			g.rgba.Pix[o+1] = c.G
			g.rgba.Pix[o+2] = c.B
			g.rgba.Pix[o+3] = 255
		}
	}
	g.frameImage.WritePixels(g.rgba.Pix)
}

func indexOfButton(b input.Button) int {
	for i := 0; i < 8; i++ {
		if uint8(b) == 1<<uint(i) {
			return i
		}
	}
	return 0
}
