package apu

// frameCounter sequences quarter/half-frame clocks and, in 4-step mode,
// the frame IRQ. Cycle counts are in CPU-active cycles and match the
// public NESDEV timing table; adapted from the teacher's frame-counter
// fields on apu.APU, split into its own type.
type frameCounter struct {
	cycle      uint16
	fiveStep   bool
	irqEnable  bool
	irqFlag    bool
}

func (f *frameCounter) tick(a *APU) {
	f.cycle++
	if f.fiveStep {
		switch f.cycle {
		case 7457:
			a.clockQuarterFrame()
		case 14913:
			a.clockQuarterFrame()
			a.clockHalfFrame()
		case 22371:
			a.clockQuarterFrame()
		case 37281:
			a.clockQuarterFrame()
			a.clockHalfFrame()
			f.cycle = 0
		}
		return
	}

	switch f.cycle {
	case 7457:
		a.clockQuarterFrame()
	case 14913:
		a.clockQuarterFrame()
		a.clockHalfFrame()
	case 22371:
		a.clockQuarterFrame()
	case 29829:
		a.clockQuarterFrame()
		a.clockHalfFrame()
	case 29830:
		if f.irqEnable {
			f.irqFlag = true
		}
		f.cycle = 0
	}
}

// write implements the $4017 frame-counter register: mode select in
// bit 7, IRQ inhibit in bit 6. Entering 5-step mode immediately clocks
// every unit once (spec.md §4.6).
func (f *frameCounter) write(a *APU, value uint8) {
	f.fiveStep = value&0x80 != 0
	f.irqEnable = value&0x40 == 0
	if !f.irqEnable {
		f.irqFlag = false
	}
	f.cycle = 0
	if f.fiveStep {
		a.clockQuarterFrame()
		a.clockHalfFrame()
	}
}
