// Package ppu implements the PPU Core of spec.md §4.4: the scanline/dot
// state machine, background and sprite pixel pipelines, the VBlank/NMI
// edge ledger (§4.5), and A12 edge detection for mapper scanline IRQs
// (§4.9). Generalized from the teacher's internal/ppu.PPU, which only
// ever ran the NTSC 262x341 grid one instruction-boundary at a time;
// this version ticks one dot per call so internal/system can drive it
// from the master-cycle scheduler the teacher never had, and threads a
// frame geometry through so the same code serves PAL's 312x341 grid.
package ppu

import "github.com/rng999/gones-core/internal/cartridge"

const (
	screenWidth  = 256
	screenHeight = 240
)

// Cartridge is the subset of the cartridge capability interface the PPU
// dispatches to: CHR-space access, the mirroring query, and the A12
// scanline-IRQ notification.
type Cartridge interface {
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, value uint8)
	Mirroring() cartridge.MirrorMode
	NotifyA12Rising()
}

// PPU is the Ricoh 2C02/2C07 graphics coprocessor.
type PPU struct {
	scanlinesPerFrame int
	dotsPerScanline   int
	preRenderLine     int
	vblankStartLine   int

	cart Cartridge

	nametable  [0x0800]uint8
	paletteRAM [32]uint8
	oam        [256]uint8
	oamAddr    uint8

	ctrl   ctrlReg
	mask   maskReg
	status statusReg

	v, t       vramAddr
	fineX      uint8
	writeLatch bool
	readBuffer uint8
	ppuOpenBus uint8

	scanline int32
	dot      int32
	frame    uint64
	oddFrame bool

	bgNextTileID, bgNextAttrib, bgNextLSB, bgNextMSB uint8
	bgShiftPatternLo, bgShiftPatternHi               uint16
	bgShiftAttribLo, bgShiftAttribHi                 uint16

	secondaryOAM                     [32]uint8
	spriteCount                      uint8
	sprite0OnLine                    bool
	spritePatternLo, spritePatternHi [8]uint8
	spriteAttrib, spriteX            [8]uint8

	a12Prev bool

	cycleCounter    uint64
	warmupThreshold uint64
	warmupCPUTicks  uint64
	warmupDone      bool

	ledger VBlankLedger

	frameBuffer   [screenWidth * screenHeight]uint8
	frameComplete bool

	// Output signals sampled by internal/system after each tick.
	NMILine          bool
	A12Rising        bool
	VBlankSetEvent   bool
	VBlankClearEvent bool
}

// New constructs a PPU for the given frame geometry. warmupCPUCycles is
// the CPU-cycle count after power-on before $2000/$2001/$2005/$2006
// writes and $2002/$2004/$2007 reads take effect (spec.md §4.4).
func New(scanlinesPerFrame, dotsPerScanline, preRenderLine, vblankStartLine int, warmupCPUCycles int) *PPU {
	p := &PPU{
		scanlinesPerFrame: scanlinesPerFrame,
		dotsPerScanline:   dotsPerScanline,
		preRenderLine:     preRenderLine,
		vblankStartLine:   vblankStartLine,
		warmupThreshold:   uint64(warmupCPUCycles),
	}
	return p
}

// SetCartridge attaches the inserted cartridge's CHR-space access.
func (p *PPU) SetCartridge(cart Cartridge) { p.cart = cart }

// PowerOn resets all PPU state and restarts the warmup gate.
func (p *PPU) PowerOn() {
	*p = PPU{
		scanlinesPerFrame: p.scanlinesPerFrame,
		dotsPerScanline:   p.dotsPerScanline,
		preRenderLine:     p.preRenderLine,
		vblankStartLine:   p.vblankStartLine,
		warmupThreshold:   p.warmupThreshold,
		cart:              p.cart,
	}
}

// Reset performs the soft-reset variant: warmup is already satisfied
// (spec.md §3 "reset... warmup is already complete").
func (p *PPU) Reset() {
	cart := p.cart
	warmup := p.warmupThreshold
	*p = PPU{
		scanlinesPerFrame: p.scanlinesPerFrame,
		dotsPerScanline:   p.dotsPerScanline,
		preRenderLine:     p.preRenderLine,
		vblankStartLine:   p.vblankStartLine,
		warmupThreshold:   warmup,
		cart:              cart,
		warmupDone:        true,
	}
}

// Framebuffer returns the current frame's 6-bit palette-index pixels,
// row-major, screenWidth x screenHeight.
func (p *PPU) Framebuffer() []uint8 { return p.frameBuffer[:] }

// ConsumeFrameComplete reports and clears the one-shot frame-complete
// signal (spec.md §4.4 "frame_complete").
func (p *PPU) ConsumeFrameComplete() bool {
	v := p.frameComplete
	p.frameComplete = false
	return v
}

// NotifyCPUActive advances the warmup counter; called once per CPU-
// active master cycle by internal/system.
func (p *PPU) NotifyCPUActive() {
	if p.warmupDone {
		return
	}
	p.warmupCPUTicks++
	if p.warmupCPUTicks >= p.warmupThreshold {
		p.warmupDone = true
	}
}

// ---------------------------------------------------------------------
// CPU-visible register file ($2000-$2007, already demultiplexed by
// internal/membus to this 8-address range).
// ---------------------------------------------------------------------

// ReadRegister implements membus.PPUPorts.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0x2002:
		if !p.warmupDone {
			return p.ppuOpenBus
		}
		value := uint8(p.status) | (p.ppuOpenBus & 0x1F)
		p.status.set(statusVBlank, false)
		p.writeLatch = false
		p.ledger.RecordStatusRead(p.cycleCounter, p.nextVBlankSetCycle())
		p.ppuOpenBus = value
		return value
	case 0x2004:
		if !p.warmupDone {
			return p.ppuOpenBus
		}
		p.ppuOpenBus = p.oam[p.oamAddr]
		return p.ppuOpenBus
	case 0x2007:
		if !p.warmupDone {
			return p.ppuOpenBus
		}
		value := p.readBuffer
		p.readBuffer = p.ppuRead(uint16(p.v))
		if uint16(p.v) >= 0x3F00 {
			value = p.readBuffer
		}
		p.v = vramAddr(uint16(p.v) + p.ctrl.vramIncrement())
		p.ppuOpenBus = value
		return value
	default:
		return p.ppuOpenBus
	}
}

// WriteRegister implements membus.PPUPorts.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	p.ppuOpenBus = value
	switch addr {
	case 0x2000:
		if !p.warmupDone {
			return
		}
		oldEnabled := p.ctrl.nmiEnabled()
		p.ctrl = ctrlReg(value)
		p.t.setNametableX(p.ctrl.nametableX())
		p.t.setNametableY(p.ctrl.nametableY())
		p.ledger.RecordCtrlToggle(p.cycleCounter, oldEnabled, p.ctrl.nmiEnabled())
	case 0x2001:
		if !p.warmupDone {
			return
		}
		p.mask = maskReg(value)
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005:
		if !p.warmupDone {
			return
		}
		if !p.writeLatch {
			p.t.setCoarseX(uint16(value >> 3))
			p.fineX = value & 0x07
			p.writeLatch = true
		} else {
			p.t.setFineY(uint16(value & 0x07))
			p.t.setCoarseY(uint16(value >> 3))
			p.writeLatch = false
		}
	case 0x2006:
		if !p.warmupDone {
			return
		}
		if !p.writeLatch {
			p.t = vramAddr((uint16(p.t) & 0x00FF) | ((uint16(value) & 0x3F) << 8))
			p.writeLatch = true
		} else {
			p.t = vramAddr((uint16(p.t) & 0xFF00) | uint16(value))
			p.v = p.t
			p.writeLatch = false
		}
	case 0x2007:
		p.ppuWrite(uint16(p.v), value)
		p.v = vramAddr(uint16(p.v) + p.ctrl.vramIncrement())
	}
}

// PeekRegister implements membus.PPUPorts with zero side effects: no
// flag clears, no write-latch toggle, no address increment, no ledger
// events (spec.md §4.2 "Debug peek").
func (p *PPU) PeekRegister(addr uint16) uint8 {
	switch addr {
	case 0x2002:
		return uint8(p.status) | (p.ppuOpenBus & 0x1F)
	case 0x2004:
		return p.oam[p.oamAddr]
	case 0x2007:
		if uint16(p.v) >= 0x3F00 {
			return p.paletteRAM[mirrorPalette(uint16(p.v))] & 0x3F
		}
		return p.readBuffer
	default:
		return p.ppuOpenBus
	}
}

// ---------------------------------------------------------------------
// Internal PPU address space ($0000-$3FFF): pattern tables (cartridge
// CHR), nametables (2KB internal VRAM, mirrored per cartridge), palette
// RAM (32B, mirrored every 32 and with the $3F10/14/18/1C aliases).
// ---------------------------------------------------------------------

func (p *PPU) ppuRead(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.cart == nil {
			return 0
		}
		return p.cart.PPURead(addr)
	case addr < 0x3F00:
		return p.nametable[p.mirrorNametable(addr)]
	default:
		return p.paletteRAM[mirrorPalette(addr)]
	}
}

func (p *PPU) ppuWrite(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.cart != nil {
			p.cart.PPUWrite(addr, value)
		}
	case addr < 0x3F00:
		p.nametable[p.mirrorNametable(addr)] = value
	default:
		p.paletteRAM[mirrorPalette(addr)] = value
	}
}

func (p *PPU) mirrorNametable(addr uint16) uint16 {
	addr = (addr - 0x2000) % 0x1000
	table := addr / 0x0400
	offset := addr % 0x0400
	mirror := cartridge.MirrorHorizontal
	if p.cart != nil {
		mirror = p.cart.Mirroring()
	}
	switch mirror {
	case cartridge.MirrorVertical:
		return addr % 0x0800
	case cartridge.MirrorHorizontal:
		return (table/2)*0x0400 + offset
	case cartridge.MirrorSingleLow:
		return offset
	case cartridge.MirrorSingleHigh:
		return 0x0400 + offset
	default: // four-screen: no mirroring within the 2KB internal bank
		return addr % 0x0800
	}
}

func mirrorPalette(addr uint16) uint16 {
	a := (addr - 0x3F00) % 32
	if a >= 16 && a%4 == 0 {
		a -= 16
	}
	return a
}

// nextVBlankSetCycle computes the master cycle at which this frame's
// VBlank-set event (scanline vblankStartLine, dot 1) will fire, used by
// the ledger's race-window arithmetic. p.scanline/p.dot reflect the
// position as of the *start* of the current tick, before TickDot's own
// advance — exactly the window a same-tick $2002 read needs compared
// against (spec.md §4.4 "VBlank / NMI race window").
func (p *PPU) nextVBlankSetCycle() uint64 {
	dotsPerFrame := uint64(p.scanlinesPerFrame) * uint64(p.dotsPerScanline)
	cur := uint64(p.scanline)*uint64(p.dotsPerScanline) + uint64(p.dot)
	target := uint64(p.vblankStartLine)*uint64(p.dotsPerScanline) + 1
	if target < cur {
		target += dotsPerFrame
	}
	return p.cycleCounter + (target - cur)
}

// TickDot advances the PPU by exactly one dot: background/sprite
// pipeline, scanline/dot bookkeeping with odd-frame skip, VBlank set/
// clear at the canonical dots, and A12 edge detection (spec.md §4.1
// step 5, §4.4).
func (p *PPU) TickDot() {
	p.VBlankSetEvent = false
	p.VBlankClearEvent = false
	p.A12Rising = false

	visibleLimit := int32(240)
	if int32(p.preRenderLine) < visibleLimit {
		visibleLimit = int32(p.preRenderLine)
	}
	if p.scanline >= 0 && p.scanline < visibleLimit && p.dot >= 1 && p.dot <= 256 {
		p.renderPixel()
	}

	if p.scanline == int32(p.preRenderLine) || p.scanline < 240 {
		p.runBackgroundAndSprites()
	}

	if p.scanline == int32(p.vblankStartLine) && p.dot == 1 {
		visible := p.ledger.RecordVBlankSet(p.cycleCounter, p.ctrl.nmiEnabled())
		if visible {
			p.status.set(statusVBlank, true)
		}
		p.VBlankSetEvent = true
	}

	p.advanceDot()
	p.cycleCounter++

	cur := p.v.a12()
	if cur && !p.a12Prev {
		p.A12Rising = true
		if p.cart != nil {
			p.cart.NotifyA12Rising()
		}
	}
	p.a12Prev = cur

	p.NMILine = p.ledger.ShouldAssertNMILine(p.ctrl.nmiEnabled())
}

func (p *PPU) runBackgroundAndSprites() {
	if p.scanline == int32(p.preRenderLine) && p.dot == 1 {
		p.status.set(statusVBlank, false)
		p.status.set(statusSprite0Hit, false)
		p.status &^= statusSpriteOverflow
		p.ledger.RecordVBlankSpanEnd(p.cycleCounter)
		p.VBlankClearEvent = true
	}

	bgWindow := (p.dot >= 2 && p.dot < 258) || (p.dot >= 321 && p.dot < 338)
	if bgWindow {
		p.updateShifters()
		switch (p.dot - 1) % 8 {
		case 0:
			p.loadBackgroundShifters()
			p.bgNextTileID = p.ppuRead(0x2000 | (uint16(p.v) & 0x0FFF))
		case 2:
			addr := uint16(0x23C0) |
				(p.v.nametableY() << 11) |
				(p.v.nametableX() << 10) |
				((p.v.coarseY() >> 2) << 3) |
				(p.v.coarseX() >> 2)
			attrib := p.ppuRead(addr)
			if p.v.coarseY()&0x02 != 0 {
				attrib >>= 4
			}
			if p.v.coarseX()&0x02 != 0 {
				attrib >>= 2
			}
			p.bgNextAttrib = attrib & 0x03
		case 4:
			table := p.ctrl.backgroundPatternTable()
			addr := table | (uint16(p.bgNextTileID) << 4) | p.v.fineY()
			p.bgNextLSB = p.ppuRead(addr)
		case 6:
			table := p.ctrl.backgroundPatternTable()
			addr := table | (uint16(p.bgNextTileID) << 4) | p.v.fineY()
			p.bgNextMSB = p.ppuRead(addr + 8)
		case 7:
			if p.mask.renderingEnabled() {
				p.v.incrementX()
			}
		}
	}

	if p.dot == 256 && p.mask.renderingEnabled() {
		p.v.incrementY()
	}
	if p.dot == 257 {
		p.loadBackgroundShifters()
		if p.mask.renderingEnabled() {
			p.v.transferX(p.t)
		}
		p.evaluateSprites()
	}
	if p.dot == 320 {
		p.fetchSpritePatterns()
	}
	if p.dot == 338 || p.dot == 340 {
		p.bgNextTileID = p.ppuRead(0x2000 | (uint16(p.v) & 0x0FFF))
	}
	if p.scanline == int32(p.preRenderLine) && p.dot >= 280 && p.dot < 305 {
		if p.mask.renderingEnabled() {
			p.v.transferY(p.t)
		}
	}
}

func (p *PPU) advanceDot() {
	p.dot++
	if p.scanline == int32(p.preRenderLine) && p.dot == int32(p.dotsPerScanline)-1 &&
		p.oddFrame && p.mask.renderingEnabled() {
		p.dot++ // odd-frame skip: collapse the pre-render line's last dot
	}
	if p.dot >= int32(p.dotsPerScanline) {
		p.dot = 0
		p.scanline++
		if p.scanline > int32(p.preRenderLine) {
			p.scanline = 0
			p.frame++
			p.frameComplete = true
			p.oddFrame = !p.oddFrame
		}
	}
}
