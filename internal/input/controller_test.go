package input

import "testing"

func TestStrobeHighKeepsReadingButtonA(t *testing.T) {
	p := New()
	p.Controller1.SetButton(ButtonA, true)
	p.WriteStrobe(1)

	for i := 0; i < 3; i++ {
		if got := p.Read(0, 0); got&1 != 1 {
			t.Fatalf("read %d with strobe high = %d, want bit0=1", i, got)
		}
	}
}

func TestStrobeLowShiftsAllEightButtonsInOrder(t *testing.T) {
	p := New()
	// A, B, Select, Start, Up, Down, Left, Right order (spec.md §6).
	p.Controller1.SetButtons([8]bool{true, false, true, false, true, false, true, false})
	p.WriteStrobe(1)
	p.WriteStrobe(0)

	want := []uint8{1, 0, 1, 0, 1, 0, 1, 0}
	for i, w := range want {
		got := p.Read(0, 0) & 1
		if got != w {
			t.Fatalf("shift %d = %d, want %d", i, got, w)
		}
	}

	// Past the 8th shift, hardware reads back 1 forever until next strobe.
	for i := 0; i < 3; i++ {
		if got := p.Read(0, 0) & 1; got != 1 {
			t.Fatalf("post-shift read %d = %d, want 1", i, got)
		}
	}
}

func TestPeekDoesNotConsumeShiftRegister(t *testing.T) {
	p := New()
	p.Controller1.SetButtons([8]bool{true, false, false, false, false, false, false, false})
	p.WriteStrobe(1)
	p.WriteStrobe(0)

	first := p.Peek(0, 0) & 1
	second := p.Peek(0, 0) & 1
	if first != second {
		t.Fatalf("Peek mutated shift state: first=%d second=%d", first, second)
	}
	if got := p.Read(0, 0) & 1; got != first {
		t.Fatalf("Read after Peek = %d, want %d (Peek must not disturb Read)", got, first)
	}
}

func TestReadORsOpenBusHighBits(t *testing.T) {
	p := New()
	got := p.Read(0, 0xFF)
	if got&0xE0 != 0xE0 {
		t.Fatalf("Read with openBus=0xFF = %#x, want high 3 bits set", got)
	}
}

func TestControllerTwoIsIndependent(t *testing.T) {
	p := New()
	p.Controller1.SetButton(ButtonA, true)
	p.Controller2.SetButton(ButtonA, false)
	p.WriteStrobe(1)

	if got := p.Read(0, 0) & 1; got != 1 {
		t.Fatalf("controller1 bit = %d, want 1", got)
	}
	if got := p.Read(1, 0) & 1; got != 0 {
		t.Fatalf("controller2 bit = %d, want 0", got)
	}
}
