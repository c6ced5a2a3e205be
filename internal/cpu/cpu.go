// Package cpu implements the CPU Core of spec.md §4.3: a Ricoh 2A03/
// 2A07 (6502 minus decimal mode) that advances exactly one microstep
// per CPU-active master cycle instead of executing a whole instruction
// per call. Generalized from the teacher's internal/cpu.CPU, whose
// Step() read every operand byte and applied every side effect inside
// one Go call; this version keeps the teacher's register/flag naming
// and push/pop/flag-byte conventions but decomposes execution into the
// addressing-mode microstep tables spec.md §4.3 requires, so RDY
// stalls and interrupt-sampling timing are observable mid-instruction.
package cpu

// Bus is the CPU's sole data path, matching internal/membus.Bus.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	Read16Bugged(addr uint16) uint16
}

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	nmiVector   = 0xFFFA
	irqVector   = 0xFFFE
	resetVector = 0xFFFC
)

// execState is the CPU's coarse phase within the current instruction.
type execState int

const (
	stateFetch execState = iota
	stateAddressing
	stateExecute
	stateInterruptSequence
	stateHalted
)

// pendingKind tags which interrupt sequence is in flight.
type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingNMI
	pendingIRQ
	pendingReset
)

// CPU is the Ricoh 2A03/2A07 integer core.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16

	C, Z, I, D, B, V, N bool

	bus Bus

	// Input lines, sampled once per CPU-active cycle (spec.md §4.1 step
	// 3, §4.3 "Interrupts").
	NMILine bool
	IRQLine bool
	RDYLine bool

	nmiLinePrev   bool
	pendingIRQSrc pendingKind // latched after the last cycle of an instruction

	state execState

	opcode      uint8
	mode        addrMode
	isRMW       bool
	microCycle  int
	effAddr     uint16
	ptrAddr     uint16
	operand     uint8
	fetchedLo   uint8
	pageCrossed bool
	rmwOldValue uint8

	steps     []microstep
	stepIndex int

	halted bool

	lastReadAddr uint16
}

// microstep is one bus-visible action of an instruction's execution;
// it returns true once the instruction (or interrupt sequence) has
// fully completed.
type microstep func(c *CPU) (done bool)

// New constructs a CPU driving bus for all memory access.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// PowerOn sets the documented 2A03 power-up register state and loads
// PC from the reset vector. Real hardware takes 7 cycles to do this
// from cold boot; spec.md §6 models power_on/reset as embedder-level
// calls distinct from tick(), so — like internal/ppu's warmup gate sets
// up state before the first TickDot — this sets the destination state
// directly rather than ticking through the bus.
func (c *CPU) PowerOn() {
	*c = CPU{bus: c.bus}
	c.SP = 0xFD
	c.I = true
	c.B = true
	c.PC = c.bus.Read16Bugged(resetVector)
	c.state = stateFetch
}

// Reset performs the soft-reset sequence: SP -= 3, I=1, PC reloaded
// from the reset vector; A/X/Y and the other flags are preserved.
func (c *CPU) Reset() {
	c.SP -= 3
	c.I = true
	c.halted = false
	c.state = stateFetch
	c.steps = nil
	c.PC = c.bus.Read16Bugged(resetVector)
}

// LastReadAddr is the address of the CPU's most recently completed bus
// read, used by internal/dma to replay the NTSC DPCM idle-cycle
// corruption (spec.md §4.7).
func (c *CPU) LastReadAddr() uint16 { return c.lastReadAddr }

// Halted reports whether a JAM/KIL opcode has locked the CPU.
func (c *CPU) Halted() bool { return c.halted }

// StatusByte packs the flags into the 6502 P register layout, with the
// B flag reflecting its last-pushed value; used by internal/debug's
// history snapshots and internal/system's debugger wiring.
func (c *CPU) StatusByte() uint8 { return c.statusByte(c.B) }

func (c *CPU) read(addr uint16) uint8 {
	v := c.bus.Read(addr)
	c.lastReadAddr = addr
	return v
}

func (c *CPU) write(addr uint16, v uint8) { c.bus.Write(addr, v) }

func (c *CPU) push(v uint8) {
	c.write(stackBase+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pull() uint8 {
	c.SP++
	return c.read(stackBase + uint16(c.SP))
}

// statusByte packs the flags into the 6502 P register layout.
func (c *CPU) statusByte(breakBit bool) uint8 {
	var p uint8
	if c.C {
		p |= cFlagMask
	}
	if c.Z {
		p |= zFlagMask
	}
	if c.I {
		p |= iFlagMask
	}
	if c.D {
		p |= dFlagMask
	}
	if breakBit {
		p |= bFlagMask
	}
	p |= unusedMask
	if c.V {
		p |= vFlagMask
	}
	if c.N {
		p |= nFlagMask
	}
	return p
}

func (c *CPU) setStatusByte(p uint8) {
	c.C = p&cFlagMask != 0
	c.Z = p&zFlagMask != 0
	c.I = p&iFlagMask != 0
	c.D = p&dFlagMask != 0
	c.V = p&vFlagMask != 0
	c.N = p&nFlagMask != 0
}

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&nFlagMask != 0
}

// TickCPUCycle advances the CPU by exactly one microstep: at most one
// bus access, matching "the CPU advances exactly one microstep per
// CPU-active master cycle" (spec.md §4.3). internal/system calls this
// once per CPU-active cycle after wiring rdy_line and irq_line. NMILine
// holds the PPU's nmi_line as system wired it at the end of the previous
// master cycle, after that cycle's PPU tick, so the edge check below
// sees the freshest value available.
func (c *CPU) TickCPUCycle() {
	if c.halted {
		return
	}

	nmiEdge := c.NMILine && !c.nmiLinePrev
	c.nmiLinePrev = c.NMILine
	if nmiEdge {
		c.pendingIRQSrc = pendingNMI
	}

	if !c.RDYLine {
		// RDY low: reads may still occur during DMA idle cycles, but
		// nothing advances the instruction state machine (spec.md
		// §4.3 "RDY line"). The DMA engine itself issues any bus
		// reads that happen on these cycles.
		return
	}

	if c.state == stateFetch {
		if c.pendingIRQSrc == pendingNMI || (c.pendingIRQSrc == pendingIRQ && !c.I) {
			c.beginInterrupt(c.pendingIRQSrc)
			c.pendingIRQSrc = pendingNone
		} else {
			c.pendingIRQSrc = pendingNone
			c.beginFetch()
		}
		// The opcode read (or the interrupt sequence's first throwaway
		// read) is itself this cycle's sole bus access; the first
		// compiled microstep runs on the next CPU-active cycle.
		return
	}

	done := c.runStep()
	if done {
		c.state = stateFetch
		c.steps = nil
		c.stepIndex = 0
		if c.IRQLine && !c.I && c.pendingIRQSrc == pendingNone {
			c.pendingIRQSrc = pendingIRQ
		}
	}
}

// insertNext splices step immediately after the one currently
// executing. The indexed addressing modes use this to charge the
// page-cross dummy read only on the cycle they discover they need it,
// since whether a page was crossed isn't known until the high byte (or
// indirect pointer) has been read.
func (c *CPU) insertNext(step microstep) {
	idx := c.stepIndex + 1
	c.steps = append(c.steps[:idx:idx], append([]microstep{step}, c.steps[idx:]...)...)
}

func (c *CPU) runStep() bool {
	if c.stepIndex >= len(c.steps) {
		return true
	}
	done := c.steps[c.stepIndex](c)
	c.stepIndex++
	return done || c.stepIndex >= len(c.steps)
}

func (c *CPU) beginFetch() {
	c.opcode = c.read(c.PC)
	info := opcodeTable[c.opcode]
	if info.kind == kindJAM {
		// Real silicon leaves PC pointing at the JAM opcode forever and
		// keeps re-reading it; only a hardware reset clears this.
		c.halted = true
		c.state = stateHalted
		c.steps = nil
		return
	}
	c.PC++
	c.mode = info.mode
	c.isRMW = info.rmw
	c.microCycle = 0
	c.pageCrossed = false
	c.steps = buildSteps(c.opcode, info)
	c.stepIndex = 0
	c.state = stateAddressing
}
