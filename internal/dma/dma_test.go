package dma

import (
	"testing"

	"github.com/rng999/gones-core/internal/membus"
)

type fakePPU struct {
	oam [256]uint8
	addr uint8
}

func (f *fakePPU) ReadRegister(addr uint16) uint8 { return 0 }
func (f *fakePPU) WriteRegister(addr uint16, value uint8) {
	if addr == 0x2004 {
		f.oam[f.addr] = value
		f.addr++
	}
}
func (f *fakePPU) PeekRegister(addr uint16) uint8 { return 0 }

func newTestEngine() (*Engine, *membus.Bus, *fakePPU) {
	ppu := &fakePPU{}
	bus := membus.New(ppu, nil, nil, nil)
	return New(bus), bus, ppu
}

func TestOAMDMAEvenStartTakes513Cycles(t *testing.T) {
	e, bus, ppu := newTestEngine()
	for i := 0; i < 256; i++ {
		bus.Write(0x0200+uint16(i), uint8(i))
	}
	e.StartOAM(0x02, false)

	cycles := 0
	for e.Active() {
		e.Tick(0)
		cycles++
		if cycles > 1000 {
			t.Fatal("OAM DMA never completed")
		}
	}
	if cycles != 513 {
		t.Errorf("expected 513 cycles for an even-start transfer, got %d", cycles)
	}
	for i := 0; i < 256; i++ {
		if ppu.oam[i] != uint8(i) {
			t.Fatalf("OAM[%d] = %#x, want %#x", i, ppu.oam[i], uint8(i))
		}
	}
}

func TestOAMDMAOddStartTakes514Cycles(t *testing.T) {
	e, _, _ := newTestEngine()
	e.StartOAM(0x02, true)

	cycles := 0
	for e.Active() {
		e.Tick(0)
		cycles++
	}
	if cycles != 514 {
		t.Errorf("expected 514 cycles for an odd-start transfer, got %d", cycles)
	}
}

func TestDMCFetchHolds4Cycles(t *testing.T) {
	e, bus, _ := newTestEngine()
	bus.Write(0x0300, 0x7F)
	e.RequestDMCFetch(0x0300)

	for i := 0; i < 4; i++ {
		if e.DMCByteReady() {
			t.Fatalf("fetch completed early at cycle %d", i)
		}
		e.Tick(0)
	}
	if !e.DMCByteReady() {
		t.Fatal("expected the fetch to complete on the 4th cycle")
	}
	if e.DMCByte() != 0x7F {
		t.Errorf("expected fetched byte 0x7F, got %#x", e.DMCByte())
	}
}

func TestDMCPreemptsOAMAndOAMResumesAtSameOffset(t *testing.T) {
	e, bus, ppu := newTestEngine()
	for i := 0; i < 256; i++ {
		bus.Write(0x0200+uint16(i), uint8(i))
	}
	e.StartOAM(0x02, false)

	// Run the alignment wait + a few transfer cycles, then preempt.
	for i := 0; i < 5; i++ {
		e.Tick(0)
	}
	offsetBefore := ppu.addr

	e.RequestDMCFetch(0x0400)
	for e.dmcActive {
		e.Tick(0)
	}
	if ppu.addr != offsetBefore {
		t.Fatalf("OAM progress must be untouched during the DMC preemption: before=%d after=%d", offsetBefore, ppu.addr)
	}

	for e.Active() {
		e.Tick(0)
	}
	for i := 0; i < 256; i++ {
		if ppu.oam[i] != uint8(i) {
			t.Fatalf("OAM[%d] = %#x after resuming from preemption, want %#x", i, ppu.oam[i], uint8(i))
		}
	}
}

func TestDPCMQuirkReplaysLastCPURead(t *testing.T) {
	e, bus, _ := newTestEngine()
	bus.Write(0x0500, 0xAB) // RAM byte the "last CPU read" will target
	bus.Write(0x0501, 0xFF) // perturb open bus so the replay is the only way back to 0xAB
	e.SetDPCMQuirk(true)
	e.RequestDMCFetch(0x0600)

	e.Tick(0x0500)
	if bus.OpenBus() != 0xAB {
		t.Error("expected the idle-cycle replay read to update open bus from the replayed address")
	}
}
