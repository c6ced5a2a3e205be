// Package cartridge implements iNES ROM loading and the cartridge
// capability interface consumed by the core (spec.md §4.9). The mapper
// variant set is closed and known at compile time: newMapper switches on
// the header's mapper number and returns one of the built-in mappers
// behind the package-private mapperCore interface, rather than consulting
// an open plugin registry — spec.md §9 calls out exactly this shape.
package cartridge

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// MirrorMode is the nametable mirroring the cartridge exposes to the PPU.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleLow
	MirrorSingleHigh
	MirrorFourScreen
)

// Cartridge is the capability set of spec.md §3/§4.9: the core never
// inspects which concrete mapper it holds, only this interface.
type Cartridge interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, value uint8)
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, value uint8)
	Mirroring() MirrorMode
	PollIRQ() bool
	NotifyA12Rising()
}

// mapperCore is implemented by every bank-switching variant. Mirroring
// can change at runtime (mapper-controlled), so it is queried, not
// fixed at construction.
type mapperCore interface {
	cpuRead(addr uint16) uint8
	cpuWrite(addr uint16, value uint8)
	ppuRead(addr uint16) uint8
	ppuWrite(addr uint16, value uint8)
	mirroring() MirrorMode
}

// irqMapper is implemented only by mappers with a scanline IRQ counter
// (MMC3-class). Mappers that don't implement it never receive A12 edges
// or get polled for IRQ; ROM.PollIRQ/NotifyA12Rising degrade to no-ops.
type irqMapper interface {
	pollIRQ() bool
	notifyA12Rising()
}

// ROM is the concrete Cartridge: parsed iNES data plus whichever mapper
// the header selected.
type ROM struct {
	mapper mapperCore
	irq    irqMapper // nil if mapper has no IRQ counter
}

// LoadError reports a malformed or unsupported cartridge image
// (spec.md §7, "CartridgeLoadError: surfaced by the embedder's loader").
type LoadError struct {
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cartridge: %s", e.Reason)
}

type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8
	CHRROMSize uint8
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// LoadFile loads a cartridge from an iNES (.nes) file on disk.
func LoadFile(path string) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load parses an iNES image from r and constructs the mapper its header
// selects. Trainer blocks are skipped; unsupported mapper IDs fall back
// to NROM the way the teacher's createMapper did, rather than failing,
// since a missing mapper should degrade, not crash the loader.
func Load(r io.Reader) (*ROM, error) {
	var header iNESHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.Magic[:]) != "NES\x1A" {
		return nil, &LoadError{Reason: "missing iNES magic number"}
	}
	if header.PRGROMSize == 0 {
		return nil, &LoadError{Reason: "PRG ROM size cannot be zero"}
	}

	mapperID := (header.Flags6 >> 4) | (header.Flags7 & 0xF0)
	fourScreen := header.Flags6&0x08 != 0
	var mirror MirrorMode
	switch {
	case fourScreen:
		mirror = MirrorFourScreen
	case header.Flags6&0x01 != 0:
		mirror = MirrorVertical
	default:
		mirror = MirrorHorizontal
	}

	if header.Flags6&0x04 != 0 {
		trainer := make([]uint8, 512)
		if _, err := io.ReadFull(r, trainer); err != nil {
			return nil, err
		}
	}

	prgROM := make([]uint8, int(header.PRGROMSize)*16384)
	if _, err := io.ReadFull(r, prgROM); err != nil {
		return nil, err
	}

	var chrROM []uint8
	chrIsRAM := header.CHRROMSize == 0
	if !chrIsRAM {
		chrROM = make([]uint8, int(header.CHRROMSize)*8192)
		if _, err := io.ReadFull(r, chrROM); err != nil {
			return nil, err
		}
	} else {
		chrROM = make([]uint8, 8192)
	}

	core, err := newMapper(mapperID, prgROM, chrROM, chrIsRAM, mirror)
	if err != nil {
		return nil, err
	}
	rom := &ROM{mapper: core}
	if m, ok := core.(irqMapper); ok {
		rom.irq = m
	}
	return rom, nil
}

func newMapper(id uint8, prgROM, chrROM []uint8, chrIsRAM bool, mirror MirrorMode) (mapperCore, error) {
	switch id {
	case 0:
		return newNROM(prgROM, chrROM, chrIsRAM, mirror), nil
	case 1:
		return newMMC1(prgROM, chrROM, chrIsRAM, mirror), nil
	case 2:
		return newUxROM(prgROM, mirror), nil
	case 3:
		return newCNROM(prgROM, chrROM, mirror), nil
	case 4:
		return newMMC3(prgROM, chrROM, chrIsRAM, mirror), nil
	case 7:
		return newAxROM(prgROM), nil
	default:
		// Unknown mapper: degrade to NROM rather than refuse the load.
		return newNROM(prgROM, chrROM, chrIsRAM, mirror), nil
	}
}

func (r *ROM) CPURead(addr uint16) uint8          { return r.mapper.cpuRead(addr) }
func (r *ROM) CPUWrite(addr uint16, value uint8)  { r.mapper.cpuWrite(addr, value) }
func (r *ROM) PPURead(addr uint16) uint8          { return r.mapper.ppuRead(addr) }
func (r *ROM) PPUWrite(addr uint16, value uint8)  { r.mapper.ppuWrite(addr, value) }
func (r *ROM) Mirroring() MirrorMode              { return r.mapper.mirroring() }

// PollIRQ reports whether the cartridge currently asserts its IRQ line.
// Only MMC3-class mappers implement this; everything else is always low.
func (r *ROM) PollIRQ() bool {
	if r.irq == nil {
		return false
	}
	return r.irq.pollIRQ()
}

// NotifyA12Rising is invoked by the PPU on every 0→1 transition of VRAM
// address bit 12 (spec.md §4.4). Mappers without a counter ignore it.
func (r *ROM) NotifyA12Rising() {
	if r.irq == nil {
		return
	}
	r.irq.notifyA12Rising()
}
