package ppu

// vramAddr is the PPU's internal scroll/address register — "v" (current
// VRAM address) or "t" (temporary address/scroll latch) in the usual
// Loopy-register terminology spec.md §3 calls out by name. Bit layout:
// yyy NN YYYYY XXXXX (fine Y, nametable select, coarse Y, coarse X).
type vramAddr uint16

func (a vramAddr) coarseX() uint16    { return uint16(a) & 0x001F }
func (a vramAddr) coarseY() uint16    { return (uint16(a) & 0x03E0) >> 5 }
func (a vramAddr) nametableX() uint16 { return (uint16(a) & 0x0400) >> 10 }
func (a vramAddr) nametableY() uint16 { return (uint16(a) & 0x0800) >> 11 }
func (a vramAddr) fineY() uint16      { return (uint16(a) & 0x7000) >> 12 }
func (a vramAddr) a12() bool          { return uint16(a)&0x1000 != 0 }

func (a *vramAddr) setCoarseX(v uint16)    { *a = vramAddr((uint16(*a) &^ 0x001F) | (v & 0x1F)) }
func (a *vramAddr) setCoarseY(v uint16)    { *a = vramAddr((uint16(*a) &^ 0x03E0) | ((v & 0x1F) << 5)) }
func (a *vramAddr) setNametableX(v uint16) { *a = vramAddr((uint16(*a) &^ 0x0400) | ((v & 1) << 10)) }
func (a *vramAddr) setNametableY(v uint16) { *a = vramAddr((uint16(*a) &^ 0x0800) | ((v & 1) << 11)) }
func (a *vramAddr) setFineY(v uint16)      { *a = vramAddr((uint16(*a) &^ 0x7000) | ((v & 0x7) << 12)) }

// incrementX moves one tile right, wrapping into the adjacent horizontal
// nametable at the 32-tile boundary.
func (a *vramAddr) incrementX() {
	if a.coarseX() == 31 {
		a.setCoarseX(0)
		a.setNametableX(a.nametableX() ^ 1)
		return
	}
	a.setCoarseX(a.coarseX() + 1)
}

// incrementY moves one pixel row down, carrying into coarse Y and then
// the vertical nametable select. Coarse Y 29 wraps to 0 and flips the
// vertical nametable; 30 steps to 31, and 31 wraps to 0 without flipping
// — rows 30/31 hold attribute data on real
// hardware, not a 31st/32nd tile row, and software that (mis)sets coarse
// Y past 29 relies on the wrap.
func (a *vramAddr) incrementY() {
	if a.fineY() < 7 {
		a.setFineY(a.fineY() + 1)
		return
	}
	a.setFineY(0)
	switch y := a.coarseY(); y {
	case 29:
		a.setCoarseY(0)
		a.setNametableY(a.nametableY() ^ 1)
	case 31:
		a.setCoarseY(0)
	default:
		a.setCoarseY(y + 1)
	}
}

// transferX copies the horizontal scroll bits from t into v, done at
// dot 257 of every visible/pre-render scanline.
func (a *vramAddr) transferX(src vramAddr) {
	*a = vramAddr((uint16(*a) &^ 0x041F) | (uint16(src) & 0x041F))
}

// transferY copies the vertical scroll bits from t into v, done at dots
// 280-304 of the pre-render scanline only.
func (a *vramAddr) transferY(src vramAddr) {
	*a = vramAddr((uint16(*a) &^ 0x7BE0) | (uint16(src) & 0x7BE0))
}
