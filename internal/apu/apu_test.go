package apu

import "testing"

func TestPulseSilentUntilLengthCounterLoaded(t *testing.T) {
	a := New()
	a.WriteRegister(0x4015, 0x01) // enable pulse1
	a.WriteRegister(0x4000, 0x30) // constant volume 0
	if a.pulse1.output() != 0 {
		t.Fatal("expected silence with a zero length counter")
	}
	a.WriteRegister(0x4002, 0xFF) // timer low
	a.WriteRegister(0x4003, 0x04) // timer high + length-table index
	if a.pulse1.lengthCounter == 0 {
		t.Fatal("expected $4003 write to load the length counter")
	}
}

func TestFrameCounterFourStepRaisesIRQ(t *testing.T) {
	a := New()
	a.frame.irqEnable = true
	for i := 0; i < 29830; i++ {
		a.frame.tick(a)
	}
	if !a.FrameIRQ() {
		t.Fatal("expected frame IRQ to raise at the last 4-step sub-step")
	}
	if a.frame.cycle != 0 {
		t.Errorf("expected frame counter to wrap to 0, got %d", a.frame.cycle)
	}
}

func TestFrameCounterFiveStepNeverRaisesIRQ(t *testing.T) {
	a := New()
	a.WriteRegister(0x4017, 0x80) // 5-step mode
	for i := 0; i < 37281; i++ {
		a.frame.tick(a)
	}
	if a.FrameIRQ() {
		t.Fatal("5-step mode must never raise the frame IRQ")
	}
}

func TestStatusReadClearsOnlyFrameIRQ(t *testing.T) {
	a := New()
	a.frame.irqFlag = true
	a.dmc.irqFlag = true

	status := a.ReadStatus()
	if status&0x40 == 0 {
		t.Fatal("expected frame-IRQ bit set in the read value")
	}
	if status&0x80 == 0 {
		t.Fatal("expected DMC-IRQ bit set in the read value")
	}
	if a.FrameIRQ() {
		t.Error("reading $4015 should clear the frame-IRQ flag")
	}
	if !a.DMCIRQ() {
		t.Error("reading $4015 must not clear the DMC-IRQ flag")
	}
}

func TestWriteChannelEnableClearsLengthCountersAndDMCIRQ(t *testing.T) {
	a := New()
	a.pulse1.lengthCounter = 5
	a.dmc.irqFlag = true

	a.WriteRegister(0x4015, 0x00)
	if a.pulse1.lengthCounter != 0 {
		t.Error("disabling a channel should zero its length counter")
	}
	if a.DMCIRQ() {
		t.Error("any $4015 write should clear the DMC-IRQ flag")
	}
}

func TestDMCFetchHandshake(t *testing.T) {
	a := New()
	a.WriteRegister(0x4012, 0x00) // sample address $C000
	a.WriteRegister(0x4013, 0x00) // sample length 1 byte
	a.WriteRegister(0x4015, 0x10) // enable DMC, starts playback

	if !a.DMCNeedsFetch() {
		t.Fatal("expected a pending fetch once the DMC channel is enabled with an empty buffer")
	}
	if a.DMCFetchAddress() != 0xC000 {
		t.Errorf("expected fetch address $C000, got %#x", a.DMCFetchAddress())
	}

	a.DMCDeliverByte(0xAA)
	if a.DMCNeedsFetch() {
		t.Error("expected no pending fetch once the byte has been delivered")
	}
	if a.dmc.bytesRemaining != 0 {
		t.Errorf("expected bytesRemaining to reach 0, got %d", a.dmc.bytesRemaining)
	}
}

func TestDMCNonLoopingSampleRaisesIRQAtEnd(t *testing.T) {
	a := New()
	a.WriteRegister(0x4010, 0x80) // IRQ enable, no loop
	a.WriteRegister(0x4013, 0x00) // length 1 byte
	a.WriteRegister(0x4015, 0x10)

	a.DMCDeliverByte(0x00)
	if !a.DMCIRQ() {
		t.Error("expected DMC IRQ once a non-looping sample finishes")
	}
}

func TestNoiseLFSRSeededNonZero(t *testing.T) {
	a := New()
	if a.noise.shiftRegister == 0 {
		t.Fatal("noise LFSR must never start at 0 or it would never produce nonzero feedback")
	}
}
