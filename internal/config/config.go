// Package config holds the immutable construction-time parameters for an
// emulation instance: the NTSC/PAL timing variant and the debugger's
// default capacities.
package config

// Variant selects the console timing family. The core only supports the
// two real NTSC/PAL Ricoh parts named in spec.md; other consoles are an
// explicit non-goal.
type Variant uint8

const (
	// VariantNTSC is the RP2A03, 262 scanlines/frame, DMC corrupts
	// controller reads during its DMA stall.
	VariantNTSC Variant = iota
	// VariantPAL is the RP2A07, 312 scanlines/frame, clean DMC stalls.
	VariantPAL
)

func (v Variant) String() string {
	switch v {
	case VariantNTSC:
		return "NTSC"
	case VariantPAL:
		return "PAL"
	default:
		return "unknown"
	}
}

// Geometry is the per-variant PPU frame shape.
type Geometry struct {
	ScanlinesPerFrame int
	DotsPerScanline   int
	PreRenderLine     int
	VBlankStartLine   int
	VBlankEndLine     int
	// DPCMCorruption is true when a DMC-DMA idle cycle repeats the CPU's
	// last bus read (NTSC only — spec.md §4.7).
	DPCMCorruption bool
}

// GeometryFor returns the frame geometry for the given variant.
func GeometryFor(v Variant) Geometry {
	switch v {
	case VariantPAL:
		return Geometry{
			ScanlinesPerFrame: 312,
			DotsPerScanline:   341,
			PreRenderLine:     311,
			VBlankStartLine:   241,
			VBlankEndLine:     310,
			DPCMCorruption:    false,
		}
	default:
		return Geometry{
			ScanlinesPerFrame: 262,
			DotsPerScanline:   341,
			PreRenderLine:     261,
			VBlankStartLine:   241,
			VBlankEndLine:     260,
			DPCMCorruption:    true,
		}
	}
}

// Defaults for the debugger gate's fixed-capacity tables (spec.md §4.8).
const (
	DefaultMaxBreakpoints = 256
	DefaultMaxWatchpoints = 256
	DefaultHistoryCap     = 256
)

// Config is constructed once per emulation instance and referenced
// read-only by every component thereafter (spec.md §3, EmulationState).
type Config struct {
	Variant Variant

	// DebuggerEnabled attaches the inspection gate at construction time.
	// When false, no gate is attached until AttachDebugger is called.
	DebuggerEnabled bool

	// HistoryCap bounds the debugger's circular modification/snapshot
	// history buffers (0 means DefaultHistoryCap).
	HistoryCap int

	// WarmupCycles is the number of CPU cycles PPU register writes are
	// ignored for after power-on (spec.md §4.4). 0 means the canonical
	// ~29,658 cycle value.
	WarmupCycles int
}

// New returns a Config with NTSC defaults.
func New() *Config {
	return &Config{
		Variant:      VariantNTSC,
		HistoryCap:   DefaultHistoryCap,
		WarmupCycles: 29658,
	}
}

// Geometry returns the frame geometry for this config's variant.
func (c *Config) Geometry() Geometry {
	return GeometryFor(c.Variant)
}

// historyCap returns the effective history capacity.
func (c *Config) historyCap() int {
	if c.HistoryCap <= 0 {
		return DefaultHistoryCap
	}
	return c.HistoryCap
}

// HistoryCapacity is the exported accessor used by internal/debug.
func (c *Config) HistoryCapacity() int { return c.historyCap() }

// warmupCycles returns the effective warmup length.
func (c *Config) warmupCycles() int {
	if c.WarmupCycles <= 0 {
		return 29658
	}
	return c.WarmupCycles
}

// WarmupCPUCycles is the exported accessor used by internal/ppu.
func (c *Config) WarmupCPUCycles() int { return c.warmupCycles() }
