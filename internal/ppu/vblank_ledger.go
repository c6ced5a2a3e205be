package ppu

// VBlankLedger implements spec.md §4.5: it decouples the readable
// VBlank status bit from the latched NMI edge so that the classic
// "$2002 read races the VBlank flag set" condition can be modelled
// precisely instead of folding NMI straight off the status bit. This is
// the *latched-edge* design; a level-triggered `cpu.nmi_line = ppu
// VBlank-bit AND nmi-enable` alternative was rejected (spec.md §9) —
// it cannot express "the edge already happened, so raise NMI even if
// the bit has since been cleared by a status read".
type VBlankLedger struct {
	spanActive    bool
	nmiEdgePending bool

	lastSet        uint64
	lastClear      uint64
	lastStatusRead uint64
	lastCtrlToggle uint64
	lastCPUAck     uint64

	preventVBLSetCycle    uint64
	preventVBLSetArmed    bool
}

// RecordVBlankSet is called at the canonical VBlank-set dot (scanline
// 241, dot 1). It reports whether the status bit should actually become
// visible this frame: false means a same-cycle $2002 read armed the
// race-window suppression via RecordStatusRead.
func (l *VBlankLedger) RecordVBlankSet(cycle uint64, nmiEnabled bool) bool {
	wasActive := l.spanActive
	l.spanActive = true
	l.lastSet = cycle

	suppressed := l.preventVBLSetArmed && l.preventVBLSetCycle == cycle
	l.preventVBLSetArmed = false
	if suppressed {
		return false
	}
	if !wasActive && nmiEnabled {
		l.nmiEdgePending = true
	}
	return true
}

// RecordVBlankClear stamps the readable flag's clear time. It never
// clears the latched NMI edge — only AcknowledgeCPU does that.
func (l *VBlankLedger) RecordVBlankClear(cycle uint64) {
	l.lastClear = cycle
}

// RecordVBlankSpanEnd marks the pre-render-line clearing of the VBlank
// span itself (distinct from the readable bit, which a $2002 read may
// already have cleared earlier in the span).
func (l *VBlankLedger) RecordVBlankSpanEnd(cycle uint64) {
	_ = cycle
	l.spanActive = false
}

// RecordStatusRead stamps a $2002 read. When the read lands in the one-
// to-three-cycle race window before the frame's upcoming VBlank-set
// event, it arms the one-shot suppression that RecordVBlankSet consults.
// upcomingSetCycle is the master cycle at which this frame's VBlank-set
// event will fire; the PPU computes it from its own (scanline, dot)
// position since the grid is deterministic.
func (l *VBlankLedger) RecordStatusRead(cycle, upcomingSetCycle uint64) {
	l.lastStatusRead = cycle
	l.lastClear = cycle

	diff := int64(upcomingSetCycle) - int64(cycle)
	if diff >= -1 && diff <= 2 {
		l.preventVBLSetCycle = upcomingSetCycle
		l.preventVBLSetArmed = true
	}
}

// RecordCtrlToggle latches a new NMI edge when PPUCTRL's NMI-enable bit
// rises from 0 to 1 while a VBlank span is still active — enabling NMI
// mid-VBlank must still fire it once, even though the set event already
// passed.
func (l *VBlankLedger) RecordCtrlToggle(cycle uint64, oldEnabled, newEnabled bool) {
	l.lastCtrlToggle = cycle
	if l.spanActive && !oldEnabled && newEnabled {
		l.nmiEdgePending = true
	}
}

// AcknowledgeCPU clears the latched edge once the CPU has begun
// servicing the NMI sequence.
func (l *VBlankLedger) AcknowledgeCPU(cycle uint64) {
	l.lastCPUAck = cycle
	l.nmiEdgePending = false
}

// ShouldAssertNMILine is the derived signal the CPU's nmi_line input is
// wired from every tick: the edge is pending and NMI is currently
// enabled. A same-cycle status read never reaches here in the first
// place — RecordVBlankSet already declines to latch nmiEdgePending when
// the race window suppresses it.
func (l *VBlankLedger) ShouldAssertNMILine(nmiEnabled bool) bool {
	return nmiEnabled && l.nmiEdgePending
}

// NMIEdgePending reports the raw latch, independent of nmi_enabled —
// used by the debugger's read-only state view.
func (l *VBlankLedger) NMIEdgePending() bool { return l.nmiEdgePending }

// SpanActive reports whether a VBlank span is currently open.
func (l *VBlankLedger) SpanActive() bool { return l.spanActive }
