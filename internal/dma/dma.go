// Package dma implements the DMA Engine of spec.md §4.7: the OAM-DMA
// and DMC-DMA sub-machines that share one rdy_line output. Neither the
// teacher (RNG999-gones) nor the rest of the retrieved pack models OAM
// DMA as a cycle-stepped state machine — the teacher's PPU just copies
// all 256 bytes in one call from its Step() loop — so this package is
// new, built directly from spec.md §4.7's cycle schedule and grounded
// on the same bus-dispatch style as internal/membus.Bus (reads/writes
// go through the real bus so mapper and PPU side effects still fire).
package dma

import "github.com/rng999/gones-core/internal/membus"

// Engine runs the OAM-DMA and DMC-DMA sub-machines. DMC-DMA always
// preempts an in-progress OAM-DMA; Tick simply services whichever is
// active, which by construction pauses OAM mid-transfer without losing
// its offset (spec.md §4.7 "OAM/DMC interaction").
type Engine struct {
	bus *membus.Bus

	oamPending bool
	oamPage    uint8
	oamOffset  uint16
	oamCycle   int
	oamWait    int
	oamByte    uint8

	dmcActive bool
	dmcCycle  int
	dmcAddr   uint16
	dmcByte   uint8
	dmcDone   bool

	dpcmQuirk bool

	rdyLine bool
}

// New constructs a DMA engine driving bus reads/writes over bus.
func New(bus *membus.Bus) *Engine { return &Engine{bus: bus} }

// SetDPCMQuirk enables the NTSC idle-cycle read-repeat corruption
// (rp2a03); PAL (rp2a07) never sets this (spec.md §4.7).
func (e *Engine) SetDPCMQuirk(enabled bool) { e.dpcmQuirk = enabled }

// StartOAM begins a 256-byte transfer from $PP00 into PPU OAM via
// $2004. cpuCycleOdd is the CPU cycle parity at the time of the $4014
// write: an odd start costs one extra alignment cycle (513 vs 514
// total cycles, spec.md §8 Scenario E).
func (e *Engine) StartOAM(page uint8, cpuCycleOdd bool) {
	e.oamPage = page
	e.oamOffset = 0
	e.oamCycle = 0
	e.oamWait = 1
	if cpuCycleOdd {
		e.oamWait = 2
	}
	e.oamPending = true
}

// RequestDMCFetch arms a 4-cycle DMC-DMA fetch at addr (spec.md §4.7
// "DMC DMA"). A no-op if a fetch is already in flight.
func (e *Engine) RequestDMCFetch(addr uint16) {
	if e.dmcActive {
		return
	}
	e.dmcActive = true
	e.dmcCycle = 0
	e.dmcAddr = addr
	e.dmcDone = false
}

// RDYLine reports whether either sub-machine is currently holding the
// CPU; internal/system wires its inverse to the CPU's active-high
// RDYLine every CPU-active cycle.
func (e *Engine) RDYLine() bool { return e.rdyLine }

// Active reports whether any transfer is in progress (OAM pending or a
// DMC fetch in flight), for debugger inspection.
func (e *Engine) Active() bool { return e.oamPending || e.dmcActive }

// DMCByteReady reports whether the Tick just completed delivers a
// fetched DMC sample byte; DMCByte returns it.
func (e *Engine) DMCByteReady() bool { return e.dmcDone }
func (e *Engine) DMCByte() uint8     { return e.dmcByte }

// Tick runs one CPU-active cycle of whichever sub-machine is active.
// lastCPURead is the address the CPU's most recent bus read targeted;
// it feeds the NTSC DPCM idle-cycle corruption, which simply replays
// that read through the normal bus path so its side effects (shift-
// register advance on $4016/$4017, PPU register side effects on
// $2002/$2007) happen exactly as they would on real hardware.
func (e *Engine) Tick(lastCPURead uint16) {
	e.dmcDone = false

	switch {
	case e.dmcActive:
		e.tickDMC(lastCPURead)
		e.rdyLine = true
	case e.oamPending:
		e.tickOAM()
		e.rdyLine = e.oamPending
	default:
		e.rdyLine = false
	}
}

func (e *Engine) tickDMC(lastCPURead uint16) {
	if e.dmcCycle < 3 {
		if e.dpcmQuirk {
			e.bus.Read(lastCPURead)
		}
		e.dmcCycle++
		return
	}
	e.dmcByte = e.bus.Read(e.dmcAddr)
	e.dmcDone = true
	e.dmcActive = false
}

func (e *Engine) tickOAM() {
	if e.oamWait > 0 {
		e.oamWait--
		return
	}
	if e.oamCycle%2 == 0 {
		addr := uint16(e.oamPage)<<8 | e.oamOffset
		e.oamByte = e.bus.Read(addr)
	} else {
		e.bus.Write(0x2004, e.oamByte)
		e.oamOffset++
	}
	e.oamCycle++
	if e.oamCycle >= 512 {
		e.oamPending = false
	}
}
