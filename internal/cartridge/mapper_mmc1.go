package cartridge

// mmc1 implements iNES Mapper 1 (MMC1), adapted from
// andrewthecodertx-go-nes-emulator's Mapper1: a 5-bit serial shift
// register gates every control write; a write with bit 7 set resets the
// register instead of shifting. No IRQ counter.
type mmc1 struct {
	prgROM   []uint8
	chrMem   []uint8
	chrIsRAM bool
	prgRAM   [0x2000]uint8

	prgBanks uint8
	chrBanks uint8

	shift      uint8
	shiftCount uint8

	mirror        uint8 // 0=one-screen-lo 1=one-screen-hi 2=vertical 3=horizontal
	prgMode       uint8
	chrMode       uint8
	chrBank0      uint8
	chrBank1      uint8
	prgBank       uint8
	prgRAMEnabled bool
}

func newMMC1(prgROM, chrROM []uint8, chrIsRAM bool, mirror MirrorMode) *mmc1 {
	m := &mmc1{
		prgROM:        prgROM,
		chrMem:        chrROM,
		chrIsRAM:      chrIsRAM,
		prgBanks:      uint8(len(prgROM) / 0x4000),
		chrBanks:      uint8(len(chrROM) / 0x1000),
		shift:         0x10,
		prgMode:       3,
		prgRAMEnabled: true,
	}
	switch mirror {
	case MirrorVertical:
		m.mirror = 2
	default:
		m.mirror = 3
	}
	return m
}

func (m *mmc1) cpuRead(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr < 0xC000:
		var bank uint8
		switch m.prgMode {
		case 0, 1:
			bank = m.prgBank & 0xFE
		case 2:
			bank = 0
		default:
			bank = m.prgBank
		}
		offset := uint32(bank)*0x4000 + uint32(addr-0x8000)
		if int(offset) < len(m.prgROM) {
			return m.prgROM[offset]
		}
	case addr >= 0xC000:
		var bank uint8
		switch m.prgMode {
		case 0, 1:
			bank = (m.prgBank & 0xFE) | 1
		case 2:
			bank = m.prgBank
		default:
			bank = m.prgBanks - 1
		}
		offset := uint32(bank)*0x4000 + uint32(addr-0xC000)
		if int(offset) < len(m.prgROM) {
			return m.prgROM[offset]
		}
	case addr >= 0x6000:
		if m.prgRAMEnabled {
			return m.prgRAM[addr-0x6000]
		}
	}
	return 0
}

func (m *mmc1) cpuWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled {
			m.prgRAM[addr-0x6000] = value
		}
	case addr >= 0x8000:
		if value&0x80 != 0 {
			m.shift = 0x10
			m.shiftCount = 0
			m.prgMode = 3
			return
		}
		m.shift = (m.shift >> 1) | ((value & 1) << 4)
		m.shiftCount++
		if m.shiftCount == 5 {
			m.writeRegister(addr, m.shift)
			m.shift = 0x10
			m.shiftCount = 0
		}
	}
}

func (m *mmc1) writeRegister(addr uint16, value uint8) {
	switch {
	case addr < 0xA000:
		m.mirror = value & 0x03
		m.prgMode = (value >> 2) & 0x03
		m.chrMode = (value >> 4) & 0x01
	case addr < 0xC000:
		m.chrBank0 = value & 0x1F
	case addr < 0xE000:
		m.chrBank1 = value & 0x1F
	default:
		m.prgBank = value & 0x0F
		m.prgRAMEnabled = value&0x10 == 0
	}
}

func (m *mmc1) ppuRead(addr uint16) uint8 {
	offset := m.chrOffset(addr)
	if int(offset) < len(m.chrMem) {
		return m.chrMem[offset]
	}
	return 0
}

func (m *mmc1) ppuWrite(addr uint16, value uint8) {
	if !m.chrIsRAM {
		return
	}
	offset := m.chrOffset(addr)
	if int(offset) < len(m.chrMem) {
		m.chrMem[offset] = value
	}
}

func (m *mmc1) chrOffset(addr uint16) uint32 {
	if m.chrMode == 0 {
		bank := m.chrBank0 & 0xFE
		if addr >= 0x1000 {
			bank |= 1
		}
		return uint32(bank)*0x1000 + uint32(addr&0x0FFF)
	}
	if addr < 0x1000 {
		return uint32(m.chrBank0)*0x1000 + uint32(addr)
	}
	return uint32(m.chrBank1)*0x1000 + uint32(addr-0x1000)
}

func (m *mmc1) mirroring() MirrorMode {
	switch m.mirror {
	case 0:
		return MirrorSingleLow
	case 1:
		return MirrorSingleHigh
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}
