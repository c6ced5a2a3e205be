package cartridge

// mmc3 implements iNES Mapper 4 (MMC3), adapted from
// andrewthecodertx-go-nes-emulator's Mapper4. This is the cartridge the
// Cartridge Capability Interface's PollIRQ/NotifyA12Rising exist for
// (spec.md §4.4/§4.9): the PPU calls notifyA12Rising on every detected
// 0→1 transition of VRAM address bit 12, which clocks the scanline IRQ
// counter here exactly as spec.md's "A12 edge" section describes.
type mmc3 struct {
	prgROM   []uint8
	chrMem   []uint8
	chrIsRAM bool
	prgRAM   [0x2000]uint8

	prgBanks uint8
	chrBanks uint8

	bankSelect uint8
	prgMode    uint8
	chrMode    uint8
	registers  [8]uint8

	mirror             uint8 // 0=vertical 1=horizontal
	prgRAMEnabled      bool
	prgRAMWriteProtect bool

	irqLatch      uint8
	irqCounter    uint8
	irqEnabled    bool
	irqPending    bool
	irqReloadFlag bool
}

func newMMC3(prgROM, chrROM []uint8, chrIsRAM bool, mirror MirrorMode) *mmc3 {
	m := &mmc3{
		prgROM:        prgROM,
		chrMem:        chrROM,
		chrIsRAM:      chrIsRAM,
		prgBanks:      uint8(len(prgROM) / 0x2000),
		chrBanks:      uint8(len(chrROM) / 0x400),
		prgRAMEnabled: true,
	}
	if mirror == MirrorHorizontal {
		m.mirror = 1
	}
	return m
}

func (m *mmc3) cpuRead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled {
			return m.prgRAM[addr-0x6000]
		}
	case addr >= 0x8000 && addr < 0xA000:
		return m.prgBankRead(m.swappableLowBank(), addr-0x8000)
	case addr >= 0xA000 && addr < 0xC000:
		return m.prgBankRead(m.registers[7], addr-0xA000)
	case addr >= 0xC000 && addr < 0xE000:
		return m.prgBankRead(m.swappableHighBank(), addr-0xC000)
	case addr >= 0xE000:
		return m.prgBankRead(m.prgBanks-1, addr-0xE000)
	}
	return 0
}

// swappableLowBank returns the bank mapped at $8000-$9FFF: R6 in mode 0,
// fixed to the second-last bank in mode 1.
func (m *mmc3) swappableLowBank() uint8 {
	if m.prgMode == 0 {
		return m.registers[6]
	}
	return m.prgBanks - 2
}

// swappableHighBank returns the bank mapped at $C000-$DFFF: the mirror
// image of swappableLowBank's mode selection.
func (m *mmc3) swappableHighBank() uint8 {
	if m.prgMode == 0 {
		return m.prgBanks - 2
	}
	return m.registers[6]
}

func (m *mmc3) prgBankRead(bank uint8, offsetInBank uint16) uint8 {
	offset := uint32(bank)*0x2000 + uint32(offsetInBank)
	if int(offset) < len(m.prgROM) {
		return m.prgROM[offset]
	}
	return 0
}

func (m *mmc3) cpuWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled && !m.prgRAMWriteProtect {
			m.prgRAM[addr-0x6000] = value
		}
	case addr >= 0x8000 && addr < 0xA000:
		if addr&1 == 0 {
			m.bankSelect = value & 0x07
			m.prgMode = (value >> 6) & 0x01
			m.chrMode = (value >> 7) & 0x01
		} else {
			m.registers[m.bankSelect] = value
		}
	case addr >= 0xA000 && addr < 0xC000:
		if addr&1 == 0 {
			if value&1 == 0 {
				m.mirror = 0
			} else {
				m.mirror = 1
			}
		} else {
			m.prgRAMWriteProtect = value&0x40 != 0
			m.prgRAMEnabled = value&0x80 != 0
		}
	case addr >= 0xC000 && addr < 0xE000:
		if addr&1 == 0 {
			m.irqLatch = value
		} else {
			m.irqCounter = 0
			m.irqReloadFlag = true
		}
	case addr >= 0xE000:
		if addr&1 == 0 {
			m.irqEnabled = false
			m.irqPending = false
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mmc3) ppuRead(addr uint16) uint8 {
	offset := m.chrOffset(addr)
	if int(offset) < len(m.chrMem) {
		return m.chrMem[offset]
	}
	return 0
}

func (m *mmc3) ppuWrite(addr uint16, value uint8) {
	if !m.chrIsRAM {
		return
	}
	offset := m.chrOffset(addr)
	if int(offset) < len(m.chrMem) {
		m.chrMem[offset] = value
	}
}

func (m *mmc3) chrOffset(addr uint16) uint32 {
	if m.chrMode == 0 {
		switch {
		case addr < 0x0800:
			return uint32(m.registers[0]&0xFE)*0x400 + uint32(addr)
		case addr < 0x1000:
			return uint32(m.registers[1]&0xFE)*0x400 + uint32(addr-0x0800)
		case addr < 0x1400:
			return uint32(m.registers[2])*0x400 + uint32(addr-0x1000)
		case addr < 0x1800:
			return uint32(m.registers[3])*0x400 + uint32(addr-0x1400)
		case addr < 0x1C00:
			return uint32(m.registers[4])*0x400 + uint32(addr-0x1800)
		default:
			return uint32(m.registers[5])*0x400 + uint32(addr-0x1C00)
		}
	}
	switch {
	case addr < 0x0400:
		return uint32(m.registers[2])*0x400 + uint32(addr)
	case addr < 0x0800:
		return uint32(m.registers[3])*0x400 + uint32(addr-0x0400)
	case addr < 0x0C00:
		return uint32(m.registers[4])*0x400 + uint32(addr-0x0800)
	case addr < 0x1000:
		return uint32(m.registers[5])*0x400 + uint32(addr-0x0C00)
	case addr < 0x1800:
		return uint32(m.registers[0]&0xFE)*0x400 + uint32(addr-0x1000)
	default:
		return uint32(m.registers[1]&0xFE)*0x400 + uint32(addr-0x1800)
	}
}

func (m *mmc3) mirroring() MirrorMode {
	if m.mirror == 0 {
		return MirrorVertical
	}
	return MirrorHorizontal
}

// pollIRQ reports irqPending without clearing it. The line stays
// asserted until an even-address write in $E000-$FFFF (IRQ disable)
// clears irqPending; the CPU taking the IRQ does not clear it.
func (m *mmc3) pollIRQ() bool {
	return m.irqPending
}

// notifyA12Rising clocks the scanline counter. Real MMC3 hardware
// filters spurious A12 toggles from sprite-fetch glitches with an
// internal low-pass filter. No such filter exists here or in
// internal/ppu, which calls this on every 0→1 transition of bit 12 of
// its v register; the mapper counts every call.
func (m *mmc3) notifyA12Rising() {
	if m.irqCounter == 0 || m.irqReloadFlag {
		m.irqCounter = m.irqLatch
		m.irqReloadFlag = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}
