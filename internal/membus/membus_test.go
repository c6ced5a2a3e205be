package membus

import "testing"

type fakePPU struct {
	readValue uint8
	lastWrite uint16
	writeVal  uint8
}

func (p *fakePPU) ReadRegister(addr uint16) uint8 { return p.readValue }
func (p *fakePPU) WriteRegister(addr uint16, v uint8) {
	p.lastWrite = addr
	p.writeVal = v
}
func (p *fakePPU) PeekRegister(addr uint16) uint8 { return p.readValue }

type fakeAPU struct {
	status   uint8
	lastAddr uint16
	lastVal  uint8
}

func (a *fakeAPU) ReadStatus() uint8  { return a.status }
func (a *fakeAPU) PeekStatus() uint8  { return a.status }
func (a *fakeAPU) WriteRegister(addr uint16, v uint8) {
	a.lastAddr = addr
	a.lastVal = v
}

type fakeInput struct {
	bit     uint8
	strobed uint8
}

func (i *fakeInput) Read(port int, openBus uint8) uint8 { return i.bit }
func (i *fakeInput) Peek(port int, openBus uint8) uint8 { return i.bit }
func (i *fakeInput) WriteStrobe(v uint8)                { i.strobed = v }

type fakeCart struct {
	readValue uint8
	lastWrite uint16
	writeVal  uint8
}

func (c *fakeCart) CPURead(addr uint16) uint8 { return c.readValue }
func (c *fakeCart) CPUWrite(addr uint16, v uint8) {
	c.lastWrite = addr
	c.writeVal = v
}

func TestRAMMirroring(t *testing.T) {
	b := New(nil, nil, nil, nil)
	b.Write(0x0000, 0x42)
	for _, addr := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		if got := b.Read(addr); got != 0x42 {
			t.Fatalf("Read(%#x) = %#x, want 0x42 (RAM mirror)", addr, got)
		}
	}
}

func TestPPURegisterDispatch(t *testing.T) {
	ppu := &fakePPU{readValue: 0x55}
	b := New(ppu, nil, nil, nil)

	if got := b.Read(0x2002); got != 0x55 {
		t.Fatalf("Read($2002) = %#x, want 0x55", got)
	}
	b.Write(0x2000, 0x80)
	if ppu.lastWrite != 0x2000 || ppu.writeVal != 0x80 {
		t.Fatalf("PPU write not dispatched: addr=%#x val=%#x", ppu.lastWrite, ppu.writeVal)
	}
	// $2008 mirrors $2000 within the 8-byte register block.
	b.Write(0x2008, 0x01)
	if ppu.lastWrite != 0x2000 {
		t.Fatalf("PPU mirrored write addr = %#x, want $2000", ppu.lastWrite)
	}
}

func TestAPUStatusReadNeverPollutesOpenBus(t *testing.T) {
	apu := &fakeAPU{status: 0x3C}
	b := New(nil, apu, nil, nil)

	b.Write(0x0000, 0xAA) // establish a known open-bus value
	if got := b.Read(0x4015); got != 0x3C {
		t.Fatalf("Read($4015) = %#x, want 0x3C", got)
	}
	if b.OpenBus() != 0xAA {
		t.Fatalf("OpenBus() after $4015 read = %#x, want unchanged 0xAA", b.OpenBus())
	}
}

func TestEveryWriteUpdatesOpenBus(t *testing.T) {
	b := New(nil, nil, nil, nil)
	b.Write(0x4000, 0x77)
	if b.OpenBus() != 0x77 {
		t.Fatalf("OpenBus() after write = %#x, want 0x77", b.OpenBus())
	}
}

func TestOAMDMATriggerFiresOnlyOn4014(t *testing.T) {
	var gotPage uint8
	fired := false
	b := New(nil, nil, nil, nil)
	b.SetOAMDMATrigger(func(page uint8) {
		fired = true
		gotPage = page
	})

	b.Write(0x4000, 0x01)
	if fired {
		t.Fatal("trigger fired on a non-$4014 write")
	}
	b.Write(0x4014, 0x02)
	if !fired || gotPage != 0x02 {
		t.Fatalf("trigger fired=%v page=%#x, want true/0x02", fired, gotPage)
	}
}

func TestCartridgeDispatchAboveMapperBoundary(t *testing.T) {
	cart := &fakeCart{readValue: 0x99}
	b := New(nil, nil, nil, cart)

	if got := b.Read(0x8000); got != 0x99 {
		t.Fatalf("Read($8000) = %#x, want 0x99", got)
	}
	b.Write(0x8000, 0x11)
	if cart.lastWrite != 0x8000 || cart.writeVal != 0x11 {
		t.Fatalf("cartridge write not dispatched: addr=%#x val=%#x", cart.lastWrite, cart.writeVal)
	}
}

func TestPeekIsSideEffectFree(t *testing.T) {
	ppu := &fakePPU{readValue: 0x10}
	b := New(ppu, nil, nil, nil)

	b.Write(0x0000, 0x5A)
	before := b.OpenBus()
	if got := b.Peek(0x2002); got != 0x10 {
		t.Fatalf("Peek($2002) = %#x, want 0x10", got)
	}
	if b.OpenBus() != before {
		t.Fatalf("Peek changed open bus: before=%#x after=%#x", before, b.OpenBus())
	}
}

func TestRead16BuggedPageWrap(t *testing.T) {
	b := New(nil, nil, nil, nil)
	b.Write(0x02FF, 0x80)
	b.Write(0x0200, 0x12) // wrongly-read high byte
	b.Write(0x0300, 0x99) // correct high byte, never read

	if got := b.Read16Bugged(0x02FF); got != 0x1280 {
		t.Fatalf("Read16Bugged(0x02FF) = %#x, want 0x1280", got)
	}
}

func TestAccessHookFiresOnReadAndWrite(t *testing.T) {
	b := New(nil, nil, nil, nil)
	var seen []struct {
		addr  uint16
		write bool
	}
	b.SetAccessHook(func(addr uint16, isWrite bool) {
		seen = append(seen, struct {
			addr  uint16
			write bool
		}{addr, isWrite})
	})

	b.Write(0x0010, 0x01)
	b.Read(0x0010)

	if len(seen) != 2 || !seen[0].write || seen[1].write {
		t.Fatalf("access hook calls = %+v, want [write, read]", seen)
	}
}
