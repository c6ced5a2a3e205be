package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// hardwarePalette is the Ricoh 2C02 64-color RGB table, grounded on
// andrewthecodertx-go-nes-emulator/pkg/ppu.HardwarePalette — the same
// table internal/ppu's consumers use to turn a 6-bit palette index into
// a displayable color. Duplicated here rather than imported so the
// debugger's offline dump path never depends on internal/ppu's
// unexported rendering internals.
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

// DumpFramebufferPNG converts a 256x240 6-bit-palette-index framebuffer
// (internal/ppu.PPU.Framebuffer's layout) into a PNG written to w,
// scaled to scale*256 x scale*240 with nearest-neighbor resampling.
// Grounded on andrewthecodertx-go-nes-emulator/cmd/dump-screen's
// framebuffer-to-RGB walk, generalized from its ASCII-art dump into a
// real image using golang.org/x/image/draw — this is an offline,
// read-only bug-report helper, never called from the tick path.
func DumpFramebufferPNG(w io.Writer, framebuffer []uint8, width, height, scale int) error {
	if len(framebuffer) != width*height {
		return fmt.Errorf("debug: framebuffer length %d does not match %dx%d", len(framebuffer), width, height)
	}
	if scale < 1 {
		scale = 1
	}

	src := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := framebuffer[y*width+x] & 0x3F
			c := hardwarePalette[idx]
			src.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}

	if scale == 1 {
		return png.Encode(w, src)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width*scale, height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return png.Encode(w, dst)
}
