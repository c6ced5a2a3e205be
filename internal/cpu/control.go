package cpu

// Custom, hand-timed microstep sequences for the opcodes whose control
// flow doesn't fit the addressing-mode table: branches, the stack/
// subroutine instructions, and both JMP forms (spec.md §4.3 "these
// follow custom microstep sequences").

func buildBranchSteps(info opcodeInfo) []microstep {
	return []microstep{
		func(c *CPU) bool {
			offset := int8(c.read(c.PC))
			c.PC++
			if !info.branchCond(c) {
				return true
			}
			c.insertNext(branchTakenStep(offset))
			return false
		},
	}
}

// branchTakenStep is spliced in only when the branch is taken; it
// issues the mandatory dummy read at the unmodified PC and computes
// the target, deferring the page-cross penalty cycle to a second
// splice exactly like the indexed addressing modes do.
func branchTakenStep(offset int8) microstep {
	return func(c *CPU) bool {
		c.read(c.PC)
		oldPC := c.PC
		newPC := uint16(int32(oldPC) + int32(offset))
		crossed := (oldPC & 0xFF00) != (newPC & 0xFF00)
		if crossed {
			c.insertNext(branchPageFixupStep(newPC))
			return false
		}
		c.PC = newPC
		return true
	}
}

func branchPageFixupStep(newPC uint16) microstep {
	return func(c *CPU) bool {
		fixupAddr := (c.PC & 0xFF00) | (newPC & 0x00FF)
		c.read(fixupAddr)
		c.PC = newPC
		return true
	}
}

// buildJSRSteps: fetch low, internal stack peek, push PCH, push PCL,
// fetch high and jump. spec.md §8 Scenario B: 6 cycles total.
func buildJSRSteps() []microstep {
	return []microstep{
		func(c *CPU) bool {
			c.fetchedLo = c.read(c.PC)
			c.PC++
			return false
		},
		func(c *CPU) bool {
			c.read(stackBase + uint16(c.SP))
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
			hi := c.read(c.PC)
			c.PC = uint16(hi)<<8 | uint16(c.fetchedLo)
			return true
		},
	}
}

// buildRTSSteps: dummy read, internal stack increment, pull PCL, pull
// PCH, increment PC. 6 cycles total.
func buildRTSSteps() []microstep {
	return []microstep{
		func(c *CPU) bool {
			c.read(c.PC)
			return false
		},
		func(c *CPU) bool {
			c.read(stackBase + uint16(c.SP))
			return false
		},
		func(c *CPU) bool {
			c.fetchedLo = c.pull()
			return false
		},
		func(c *CPU) bool {
			hi := c.pull()
			c.PC = uint16(hi)<<8 | uint16(c.fetchedLo)
			return false
		},
		func(c *CPU) bool {
			c.read(c.PC)
			c.PC++
			return true
		},
	}
}

// buildRTISteps: dummy read, internal stack increment, pull status,
// pull PCL, pull PCH. 6 cycles total; unlike RTS, PC is used as-is.
func buildRTISteps() []microstep {
	return []microstep{
		func(c *CPU) bool {
			c.read(c.PC)
			return false
		},
		func(c *CPU) bool {
			c.read(stackBase + uint16(c.SP))
			return false
		},
		func(c *CPU) bool {
			c.setStatusByte(c.pull())
			return false
		},
		func(c *CPU) bool {
			c.fetchedLo = c.pull()
			return false
		},
		func(c *CPU) bool {
			hi := c.pull()
			c.PC = uint16(hi)<<8 | uint16(c.fetchedLo)
			return true
		},
	}
}

// buildBRKSteps: software break pushes PC+2 (the padding byte after
// the opcode is skipped, never executed) and status with the B flag
// set, then loads PC from the IRQ/BRK vector with I set. 7 cycles.
func buildBRKSteps() []microstep {
	return []microstep{
		func(c *CPU) bool {
			c.read(c.PC) // padding byte, discarded
			c.PC++
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
			c.push(c.statusByte(true))
			return false
		},
		func(c *CPU) bool {
			c.fetchedLo = c.read(irqVector)
			return false
		},
		func(c *CPU) bool {
			hi := c.read(irqVector + 1)
			c.PC = uint16(hi)<<8 | uint16(c.fetchedLo)
			c.I = true
			return true
		},
	}
}

// buildPushSteps covers PHA/PHP: dummy read then push value(c). 3
// cycles.
func buildPushSteps(value func(c *CPU) uint8) []microstep {
	return []microstep{
		func(c *CPU) bool {
			c.read(c.PC)
			return false
		},
		func(c *CPU) bool {
			c.push(value(c))
			return true
		},
	}
}

// buildPullSteps covers PLA/PLP: dummy read, internal stack increment,
// pull and apply(c, value). 4 cycles.
func buildPullSteps(apply func(c *CPU, v uint8)) []microstep {
	return []microstep{
		func(c *CPU) bool {
			c.read(c.PC)
			return false
		},
		func(c *CPU) bool {
			c.read(stackBase + uint16(c.SP))
			return false
		},
		func(c *CPU) bool {
			apply(c, c.pull())
			return true
		},
	}
}

// buildJMPAbsSteps: fetch low, fetch high and jump. 3 cycles.
func buildJMPAbsSteps() []microstep {
	return []microstep{
		func(c *CPU) bool {
			c.fetchedLo = c.read(c.PC)
			c.PC++
			return false
		},
		func(c *CPU) bool {
			hi := c.read(c.PC)
			c.effAddr = uint16(hi)<<8 | uint16(c.fetchedLo)
			c.PC = c.effAddr
			return true
		},
	}
}

// buildJMPIndSteps: fetch pointer low/high, then read the target
// low/high byte from the pointer — reproducing the page-wrap bug where
// a pointer ending in $xxFF reads its high byte from $xx00 instead of
// crossing into the next page. 5 cycles.
func buildJMPIndSteps() []microstep {
	return []microstep{
		func(c *CPU) bool {
			c.fetchedLo = c.read(c.PC)
			c.PC++
			return false
		},
		func(c *CPU) bool {
			hi := c.read(c.PC)
			c.PC++
			c.ptrAddr = uint16(hi)<<8 | uint16(c.fetchedLo)
			return false
		},
		func(c *CPU) bool {
			c.fetchedLo = c.read(c.ptrAddr)
			return false
		},
		func(c *CPU) bool {
			hiAddr := (c.ptrAddr & 0xFF00) | uint16(uint8(c.ptrAddr)+1)
			hi := c.read(hiAddr)
			c.PC = uint16(hi)<<8 | uint16(c.fetchedLo)
			return true
		},
	}
}
