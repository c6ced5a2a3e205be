package cpu

// addrMode enumerates the CPU's addressing modes (spec.md §4.3).
type addrMode int

const (
	modeImplied addrMode = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirectX
	modeIndirectY
	modeRelative
	modeIndirect
)

// opKind tags which microstep shape an opcode needs.
type opKind int

const (
	kindRead opKind = iota
	kindStore
	kindRMW
	kindAccumulatorRMW
	kindImpliedReg
	kindBranch
	kindJSR
	kindRTS
	kindRTI
	kindBRK
	kindPHA
	kindPHP
	kindPLA
	kindPLP
	kindJMPAbs
	kindJMPInd
	kindJAM
)

// execFunc is the thin register-binding shim over alu.go's pure
// helpers: it reads only the registers/flags it needs and writes back
// only registers/flags/return value, never touching the bus. For
// kindRMW it returns the new memory value; for the other kinds the
// return value is unused.
type execFunc func(c *CPU, operand uint8) uint8

// storeFunc returns the register value a kindStore opcode writes.
type storeFunc func(c *CPU) uint8

type opcodeInfo struct {
	mode       addrMode
	kind       opKind
	rmw        bool
	exec       execFunc
	store      storeFunc
	branchCond func(c *CPU) bool
}

// buildSteps returns the full microstep sequence for opcode (the
// opcode byte itself is already consumed by beginFetch).
func buildSteps(opcode uint8, info opcodeInfo) []microstep {
	switch info.kind {
	case kindRead:
		return buildReadSteps(info)
	case kindStore:
		return buildStoreSteps(info)
	case kindRMW:
		return buildRMWSteps(info)
	case kindAccumulatorRMW:
		return []microstep{func(c *CPU) bool {
			c.read(c.PC) // dummy read, PC not advanced
			c.A = info.exec(c, c.A)
			return true
		}}
	case kindImpliedReg:
		return []microstep{func(c *CPU) bool {
			c.read(c.PC)
			info.exec(c, 0)
			return true
		}}
	case kindBranch:
		return buildBranchSteps(info)
	case kindJSR:
		return buildJSRSteps()
	case kindRTS:
		return buildRTSSteps()
	case kindRTI:
		return buildRTISteps()
	case kindBRK:
		return buildBRKSteps()
	case kindPHA:
		return buildPushSteps(func(c *CPU) uint8 { return c.A })
	case kindPHP:
		return buildPushSteps(func(c *CPU) uint8 { return c.statusByte(true) })
	case kindPLA:
		return buildPullSteps(func(c *CPU, v uint8) { c.A = v; c.setZN(v) })
	case kindPLP:
		return buildPullSteps(func(c *CPU, v uint8) { c.setStatusByte(v) })
	case kindJMPAbs:
		return buildJMPAbsSteps()
	case kindJMPInd:
		return buildJMPIndSteps()
	case kindJAM:
		return nil
	}
	return nil
}

// uncorrectedAddr is the address the indexed addressing modes compute
// before the high-byte carry resolves: same low byte as effAddr, high
// byte one less when the add crossed a page. Real hardware probes this
// address a cycle early and throws the result away unless it happens
// to already be the right one.
func uncorrectedAddr(effAddr uint16, pageCrossed bool) uint16 {
	hi := effAddr >> 8
	if pageCrossed {
		hi--
	}
	return hi<<8 | (effAddr & 0x00FF)
}

// addressResolutionSteps computes c.effAddr (and, for the indexed
// modes, c.pageCrossed) without touching the operand itself. worstCase
// forces the indexed modes' page-cross fixup read to always happen,
// which is what stores and read-modify-write opcodes need regardless
// of whether the add actually carried.
func addressResolutionSteps(mode addrMode, worstCase bool) []microstep {
	switch mode {
	case modeZeroPage:
		return []microstep{
			func(c *CPU) bool {
				c.effAddr = uint16(c.read(c.PC))
				c.PC++
				return false
			},
		}
	case modeZeroPageX:
		return []microstep{
			func(c *CPU) bool {
				c.fetchedLo = c.read(c.PC)
				c.PC++
				return false
			},
			func(c *CPU) bool {
				c.read(uint16(c.fetchedLo))
				c.effAddr = uint16(c.fetchedLo + c.X)
				return false
			},
		}
	case modeZeroPageY:
		return []microstep{
			func(c *CPU) bool {
				c.fetchedLo = c.read(c.PC)
				c.PC++
				return false
			},
			func(c *CPU) bool {
				c.read(uint16(c.fetchedLo))
				c.effAddr = uint16(c.fetchedLo + c.Y)
				return false
			},
		}
	case modeAbsolute:
		return []microstep{
			func(c *CPU) bool {
				c.fetchedLo = c.read(c.PC)
				c.PC++
				return false
			},
			func(c *CPU) bool {
				hi := c.read(c.PC)
				c.PC++
				c.effAddr = uint16(hi)<<8 | uint16(c.fetchedLo)
				return false
			},
		}
	case modeAbsoluteX:
		return indexedAbsoluteSteps(func(c *CPU) uint8 { return c.X }, worstCase)
	case modeAbsoluteY:
		return indexedAbsoluteSteps(func(c *CPU) uint8 { return c.Y }, worstCase)
	case modeIndirectX:
		return []microstep{
			func(c *CPU) bool {
				c.ptrAddr = uint16(c.read(c.PC))
				c.PC++
				return false
			},
			func(c *CPU) bool {
				c.read(c.ptrAddr)
				c.ptrAddr = uint16(uint8(c.ptrAddr) + c.X)
				return false
			},
			func(c *CPU) bool {
				c.fetchedLo = c.read(c.ptrAddr)
				return false
			},
			func(c *CPU) bool {
				hi := c.read(uint16(uint8(c.ptrAddr + 1)))
				c.effAddr = uint16(hi)<<8 | uint16(c.fetchedLo)
				return false
			},
		}
	case modeIndirectY:
		return []microstep{
			func(c *CPU) bool {
				c.ptrAddr = uint16(c.read(c.PC))
				c.PC++
				return false
			},
			func(c *CPU) bool {
				c.fetchedLo = c.read(c.ptrAddr)
				return false
			},
			func(c *CPU) bool {
				hi := c.read(uint16(uint8(c.ptrAddr + 1)))
				base := uint16(hi)<<8 | uint16(c.fetchedLo)
				c.effAddr = base + uint16(c.Y)
				c.pageCrossed = (base & 0xFF00) != (c.effAddr & 0xFF00)
				if worstCase || c.pageCrossed {
					c.insertNext(pageCrossFixupRead)
				}
				return false
			},
		}
	}
	return nil
}

// pageCrossFixupRead is the dummy read real hardware issues at the
// not-yet-carried address; spliced in only on the cycle that discovers
// it's needed (see CPU.insertNext).
func pageCrossFixupRead(c *CPU) bool {
	c.read(uncorrectedAddr(c.effAddr, c.pageCrossed))
	return false
}

// indexedAbsoluteSteps builds the lo/hi fetch shared by absolute,X and
// absolute,Y, splicing in the page-cross dummy read once the add's
// carry is known.
func indexedAbsoluteSteps(index func(c *CPU) uint8, worstCase bool) []microstep {
	return []microstep{
		func(c *CPU) bool {
			c.fetchedLo = c.read(c.PC)
			c.PC++
			return false
		},
		func(c *CPU) bool {
			hi := c.read(c.PC)
			c.PC++
			base := uint16(hi)<<8 | uint16(c.fetchedLo)
			c.effAddr = base + uint16(index(c))
			c.pageCrossed = (base & 0xFF00) != (c.effAddr & 0xFF00)
			if worstCase || c.pageCrossed {
				c.insertNext(pageCrossFixupRead)
			}
			return false
		},
	}
}

func needsPageCrossFixup(mode addrMode) bool {
	return mode == modeAbsoluteX || mode == modeAbsoluteY || mode == modeIndirectY
}

func buildReadSteps(info opcodeInfo) []microstep {
	if info.mode == modeImmediate {
		return []microstep{func(c *CPU) bool {
			v := c.read(c.PC)
			c.PC++
			info.exec(c, v)
			return true
		}}
	}

	// For the indexed/indirect-Y modes the fixup step inside
	// addressResolutionSteps is the dummy read on the uncorrected
	// address; it already charges the extra cycle only when a page was
	// actually crossed, so a read instruction's final operand fetch
	// below is unconditional and always the real, corrected address.
	steps := addressResolutionSteps(info.mode, false)
	steps = append(steps, func(c *CPU) bool {
		v := c.read(c.effAddr)
		info.exec(c, v)
		return true
	})
	return steps
}

func buildStoreSteps(info opcodeInfo) []microstep {
	worstCase := needsPageCrossFixup(info.mode)
	steps := addressResolutionSteps(info.mode, worstCase)
	steps = append(steps, func(c *CPU) bool {
		c.write(c.effAddr, info.store(c))
		return true
	})
	return steps
}

func buildRMWSteps(info opcodeInfo) []microstep {
	steps := addressResolutionSteps(info.mode, true)
	steps = append(steps,
		func(c *CPU) bool {
			c.rmwOldValue = c.read(c.effAddr)
			return false
		},
		func(c *CPU) bool {
			c.write(c.effAddr, c.rmwOldValue)
			return false
		},
		func(c *CPU) bool {
			c.write(c.effAddr, info.exec(c, c.rmwOldValue))
			return true
		},
	)
	return steps
}
