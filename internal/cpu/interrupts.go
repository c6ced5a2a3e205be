package cpu

// beginInterrupt starts the 7-cycle NMI/IRQ sequence: two throwaway
// reads where an opcode fetch would be, push PC/status (B cleared),
// then load PC from the interrupt's vector with I set. Entered from
// TickCPUCycle's stateFetch dispatch once an edge-triggered NMI or a
// level-triggered, unmasked IRQ has latched (spec.md §4.3
// "Interrupts"); power-on and soft reset go through PowerOn/Reset
// directly instead, since spec.md §6 models those as embedder calls
// distinct from tick().
func (c *CPU) beginInterrupt(kind pendingKind) {
	vector := uint16(irqVector)
	if kind == pendingNMI {
		vector = nmiVector
	}

	// The first throwaway read happens right here, consuming this
	// cycle exactly like beginFetch's opcode read does; the remaining
	// six steps run one per subsequent cycle.
	c.read(c.PC)

	c.steps = []microstep{
		func(c *CPU) bool {
			c.read(c.PC)
			return false
		},
		func(c *CPU) bool {
			c.push(uint8(c.PC >> 8))
			return false
		},
		func(c *CPU) bool {
			c.push(uint8(c.PC))
			return false
		},
		func(c *CPU) bool {
			c.push(c.statusByte(false))
			return false
		},
		func(c *CPU) bool {
			c.fetchedLo = c.read(vector)
			return false
		},
		func(c *CPU) bool {
			hi := c.read(vector + 1)
			c.PC = uint16(hi)<<8 | uint16(c.fetchedLo)
			c.I = true
			return true
		},
	}
	c.stepIndex = 0
	c.state = stateInterruptSequence
}
