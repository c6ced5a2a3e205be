// Package membus implements the CPU-side memory bus router of spec.md
// §4.2: address-range dispatch, open-bus tracking, and the debug-safe
// peek path. It is the sole data path between the CPU and every other
// component; generalized from the teacher's internal/memory.Memory,
// which mixed this routing with a hard-coded PPU nametable mirror — that
// half moved to internal/ppu (spec.md treats bus routing and PPU
// nametable mirroring as separate components: §4.2 vs §4.4/§4.9).
package membus

// PPUPorts is the subset of the PPU the bus router dispatches to.
type PPUPorts interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
	PeekRegister(addr uint16) uint8
}

// APUPorts is the subset of the APU the bus router dispatches to.
type APUPorts interface {
	ReadStatus() uint8
	PeekStatus() uint8
	WriteRegister(addr uint16, value uint8)
}

// InputPorts is the subset of the controller ports the bus router
// dispatches to. port is 0 for $4016, 1 for $4017. openBus is passed in
// so the controller can OR its shifted bit with the port's open-bus
// high 3 bits (spec.md §6) without needing its own open-bus copy.
type InputPorts interface {
	Read(port int, openBus uint8) uint8
	Peek(port int, openBus uint8) uint8
	WriteStrobe(value uint8)
}

// Cartridge is the subset of the cartridge capability interface the bus
// router dispatches $4020-$FFFF to.
type Cartridge interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, value uint8)
}

// Bus is the CPU-visible memory map.
type Bus struct {
	ram [0x0800]uint8

	ppu   PPUPorts
	apu   APUPorts
	input InputPorts
	cart  Cartridge

	// onOAMDMATrigger fires when $4014 is written; internal/system wires
	// it to the DMA engine's StartOAM method. The bus itself never runs the
	// 513/514-cycle transfer — that is internal/dma's job, driven by the
	// tick scheduler, not by this write.
	onOAMDMATrigger func(page uint8)

	// onAccess fires after every CPU-visible Read/Write when a debugger
	// gate is attached (internal/system wires it to
	// debug.Gate.CheckMemoryAccess); nil otherwise, so the hot tick path
	// costs one nil check when no debugger is attached.
	onAccess func(addr uint16, isWrite bool)

	openBus uint8
}

// SetAccessHook wires fn to fire after every Read/Write this bus
// dispatches. Passing nil detaches it.
func (b *Bus) SetAccessHook(fn func(addr uint16, isWrite bool)) { b.onAccess = fn }

// New constructs a Bus. ppu/apu/input/cart may be nil for the test-RAM
// mode described in spec.md §3 ("optional test-RAM slice for unit tests
// without a cartridge"); unset ports simply read/write as open bus.
func New(ppu PPUPorts, apu APUPorts, input InputPorts, cart Cartridge) *Bus {
	return &Bus{ppu: ppu, apu: apu, input: input, cart: cart}
}

// SetCartridge swaps the cartridge (used when the embedder loads a ROM
// after construction).
func (b *Bus) SetCartridge(cart Cartridge) { b.cart = cart }

// SetOAMDMATrigger wires the callback invoked on a $4014 write.
func (b *Bus) SetOAMDMATrigger(fn func(page uint8)) { b.onOAMDMATrigger = fn }

// OpenBus returns the current open-bus byte.
func (b *Bus) OpenBus() uint8 { return b.openBus }

// Read performs a CPU bus read with full side effects, updating open
// bus to the returned value for every address except $4015 (spec.md
// §4.2/§8 invariant 5 — APU status synthesises its value and must not
// pollute open bus).
func (b *Bus) Read(addr uint16) uint8 {
	value := b.dispatchRead(addr)
	if addr != 0x4015 {
		b.openBus = value
	}
	if b.onAccess != nil {
		b.onAccess(addr, false)
	}
	return value
}

func (b *Bus) dispatchRead(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr&0x07FF]
	case addr < 0x4000:
		if b.ppu == nil {
			return b.openBus
		}
		return b.ppu.ReadRegister(0x2000 + (addr & 7))
	case addr == 0x4015:
		if b.apu == nil {
			return b.openBus
		}
		return b.apu.ReadStatus()
	case addr == 0x4016:
		if b.input == nil {
			return b.openBus
		}
		return b.input.Read(0, b.openBus)
	case addr == 0x4017:
		if b.input == nil {
			return b.openBus
		}
		return b.input.Read(1, b.openBus)
	case addr < 0x4020:
		return b.openBus
	default:
		if b.cart == nil {
			return b.openBus
		}
		return b.cart.CPURead(addr)
	}
}

// Write performs a CPU bus write. Every write updates open bus to the
// written value (spec.md §8 invariant 6), with no exception.
func (b *Bus) Write(addr uint16, value uint8) {
	b.openBus = value
	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = value
	case addr < 0x4000:
		if b.ppu != nil {
			b.ppu.WriteRegister(0x2000+(addr&7), value)
		}
	case addr == 0x4014:
		if b.onOAMDMATrigger != nil {
			b.onOAMDMATrigger(value)
		}
	case addr == 0x4016:
		if b.input != nil {
			b.input.WriteStrobe(value)
		}
	case addr < 0x4018:
		if b.apu != nil {
			b.apu.WriteRegister(addr, value)
		}
	case addr < 0x4020:
		// Unmapped test-mode registers: open bus only.
	default:
		if b.cart != nil {
			b.cart.CPUWrite(addr, value)
		}
	}
	if b.onAccess != nil {
		b.onAccess(addr, true)
	}
}

// Peek reads addr with no side effects whatsoever: no open-bus update,
// no PPU register clears, no mapper state changes (spec.md §4.2 "Debug
// peek"). It is the only read path the debugger gate is allowed to use.
func (b *Bus) Peek(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr&0x07FF]
	case addr < 0x4000:
		if b.ppu == nil {
			return 0
		}
		return b.ppu.PeekRegister(0x2000 + (addr & 7))
	case addr == 0x4015:
		if b.apu == nil {
			return 0
		}
		return b.apu.PeekStatus()
	case addr == 0x4016:
		if b.input == nil {
			return 0
		}
		return b.input.Peek(0, b.openBus)
	case addr == 0x4017:
		if b.input == nil {
			return 0
		}
		return b.input.Peek(1, b.openBus)
	case addr < 0x4020:
		return 0
	default:
		if b.cart == nil {
			return 0
		}
		return b.cart.CPURead(addr)
	}
}

// Read16 performs a correctly-ordered little-endian 16-bit read.
func (b *Bus) Read16(addr uint16) uint16 {
	lo := uint16(b.Read(addr))
	hi := uint16(b.Read(addr + 1))
	return (hi << 8) | lo
}

// Read16Bugged implements the 6502 JMP-indirect page-wrap bug: when the
// pointer's low byte is $FF, the high byte is fetched from the start of
// the same page, not the next one (spec.md §4.2, §8 boundary behaviour).
func (b *Bus) Read16Bugged(addr uint16) uint16 {
	lo := uint16(b.Read(addr))
	hiAddr := (addr & 0xFF00) | uint16(uint8(addr)+1)
	hi := uint16(b.Read(hiAddr))
	return (hi << 8) | lo
}
