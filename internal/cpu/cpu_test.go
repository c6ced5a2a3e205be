package cpu

import "testing"

// fakeBus is a flat 64KB RAM image, enough to drive the CPU through
// hand-assembled programs without wiring in the real memory bus.
type fakeBus struct {
	mem [0x10000]uint8
}

func (b *fakeBus) Read(addr uint16) uint8  { return b.mem[addr] }
func (b *fakeBus) Write(addr uint16, v uint8) { b.mem[addr] = v }
func (b *fakeBus) Read16Bugged(addr uint16) uint16 {
	lo := uint16(b.mem[addr])
	hiAddr := (addr & 0xFF00) | uint16(uint8(addr)+1)
	hi := uint16(b.mem[hiAddr])
	return hi<<8 | lo
}

func newTestCPU(resetVectorTarget uint16) (*CPU, *fakeBus) {
	bus := &fakeBus{}
	bus.mem[resetVector] = uint8(resetVectorTarget)
	bus.mem[resetVector+1] = uint8(resetVectorTarget >> 8)
	c := New(bus)
	c.PowerOn()
	c.RDYLine = true
	return c, bus
}

func runCycles(c *CPU, n int) {
	for i := 0; i < n; i++ {
		c.TickCPUCycle()
	}
}

func TestLDAImmediateTakesTwoCycles(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.mem[0x8000] = 0xA9 // LDA #$42
	bus.mem[0x8001] = 0x42

	runCycles(c, 2)

	if c.A != 0x42 {
		t.Fatalf("A = %#x, want 0x42", c.A)
	}
	if c.PC != 0x8002 {
		t.Fatalf("PC = %#x, want 0x8002", c.PC)
	}
	if c.Z || c.N {
		t.Fatalf("unexpected flags after loading 0x42: Z=%v N=%v", c.Z, c.N)
	}
}

func TestLDAZeroSetsZeroFlag(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.mem[0x8000] = 0xA9
	bus.mem[0x8001] = 0x00
	runCycles(c, 2)
	if !c.Z {
		t.Fatal("expected Z set after loading 0")
	}
}

// TestJSRThenRTSRoundTrip exercises spec.md §8 Scenario B: JSR $8010
// from $8000 takes 6 cycles (SP $FD -> $FB, PC=$8010), then RTS back
// at $8010 takes 6 more cycles, restoring PC to $8003 and SP to $FD.
func TestJSRThenRTSRoundTrip(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.mem[0x8000] = 0x20 // JSR $8010
	bus.mem[0x8001] = 0x10
	bus.mem[0x8002] = 0x80
	bus.mem[0x8010] = 0x60 // RTS

	runCycles(c, 6)
	if c.PC != 0x8010 {
		t.Fatalf("after JSR: PC = %#x, want 0x8010", c.PC)
	}
	if c.SP != 0xFB {
		t.Fatalf("after JSR: SP = %#x, want 0xFB", c.SP)
	}

	runCycles(c, 6)
	if c.PC != 0x8003 {
		t.Fatalf("after RTS: PC = %#x, want 0x8003", c.PC)
	}
	if c.SP != 0xFD {
		t.Fatalf("after RTS: SP = %#x, want 0xFD", c.SP)
	}
}

func TestBranchNotTakenIsTwoCycles(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.mem[0x8000] = 0xF0 // BEQ +5
	bus.mem[0x8001] = 0x05
	// Z is clear after PowerOn, so BEQ is not taken.
	runCycles(c, 2)
	if c.PC != 0x8002 {
		t.Fatalf("PC = %#x, want 0x8002 (not taken)", c.PC)
	}
}

func TestBranchTakenNoPageCrossIsThreeCycles(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.Z = true
	bus.mem[0x8000] = 0xF0 // BEQ +5
	bus.mem[0x8001] = 0x05

	runCycles(c, 2)
	if c.PC == 0x8007 {
		t.Fatal("branch resolved in 2 cycles; expected the taken branch to need a 3rd")
	}
	runCycles(c, 1)
	if c.PC != 0x8007 {
		t.Fatalf("PC = %#x, want 0x8007 after 3 cycles", c.PC)
	}
}

func TestBranchTakenWithPageCrossIsFourCycles(t *testing.T) {
	c, bus := newTestCPU(0x80F0)
	c.Z = true
	bus.mem[0x80F0] = 0xF0 // BEQ +$20 -> crosses from page $80 to $81
	bus.mem[0x80F1] = 0x20

	runCycles(c, 3)
	if c.PC == 0x8112 {
		t.Fatal("page-crossing branch resolved in 3 cycles; expected a 4th")
	}
	runCycles(c, 1)
	if c.PC != 0x8112 {
		t.Fatalf("PC = %#x, want 0x8112 after 4 cycles", c.PC)
	}
}

// TestJMPIndirectPageWrapBug reproduces the famous 6502 bug: JMP
// ($30FF) reads its high byte from $3000, not $3100.
func TestJMPIndirectPageWrapBug(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.mem[0x8000] = 0x6C // JMP ($30FF)
	bus.mem[0x8001] = 0xFF
	bus.mem[0x8002] = 0x30
	bus.mem[0x30FF] = 0x80
	bus.mem[0x3000] = 0x12 // wrongly-read high byte
	bus.mem[0x3100] = 0x99 // correct high byte, never read

	runCycles(c, 5)
	if c.PC != 0x1280 {
		t.Fatalf("PC = %#x, want 0x1280 (page-wrap bug)", c.PC)
	}
}

// TestBRKThenRTIRoundTrip checks that BRK pushes PC+2 and a status
// byte with B set, and that RTI restores PC and status without the
// +1 RTS performs.
func TestBRKThenRTIRoundTrip(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.mem[irqVector] = 0x00
	bus.mem[irqVector+1] = 0x90
	bus.mem[0x8000] = 0x00 // BRK
	bus.mem[0x8001] = 0x00 // padding byte, skipped
	bus.mem[0x9000] = 0x40 // RTI

	runCycles(c, 7)
	if c.PC != 0x9000 {
		t.Fatalf("after BRK: PC = %#x, want 0x9000", c.PC)
	}
	if !c.I {
		t.Fatal("BRK must set I")
	}

	runCycles(c, 6)
	if c.PC != 0x8002 {
		t.Fatalf("after RTI: PC = %#x, want 0x8002", c.PC)
	}
}

func TestJAMHaltsTheCPU(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.mem[0x8000] = 0x02 // JAM

	runCycles(c, 1)
	if !c.Halted() {
		t.Fatal("expected JAM to halt the CPU")
	}
	pc := c.PC
	runCycles(c, 10)
	if c.PC != pc {
		t.Fatal("halted CPU must not advance PC")
	}
}

func TestRDYLineGatesAdvancement(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.mem[0x8000] = 0xA9
	bus.mem[0x8001] = 0x42
	c.RDYLine = false
	runCycles(c, 5)
	if c.PC != 0x8000 {
		t.Fatalf("PC advanced while RDY was low: PC = %#x", c.PC)
	}
	c.RDYLine = true
	runCycles(c, 2)
	if c.A != 0x42 {
		t.Fatalf("A = %#x after RDY released, want 0x42", c.A)
	}
}

func TestNMIRisingEdgeIsLatched(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.mem[nmiVector] = 0x00
	bus.mem[nmiVector+1] = 0xA0
	bus.mem[0x8000] = 0xEA // NOP
	bus.mem[0x8001] = 0xEA

	runCycles(c, 2) // finish the NOP so the interrupt is sampled at a fetch boundary
	c.NMILine = true
	runCycles(c, 7)
	if c.PC != 0xA000 {
		t.Fatalf("PC = %#x, want 0xA000 after NMI", c.PC)
	}
}

func TestIRQIgnoredWhenIFlagSet(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.I = true
	bus.mem[0x8000] = 0xEA
	bus.mem[0x8001] = 0xEA
	c.IRQLine = true

	runCycles(c, 4)
	if c.PC != 0x8002 {
		t.Fatalf("masked IRQ must not divert control flow: PC = %#x", c.PC)
	}
}
