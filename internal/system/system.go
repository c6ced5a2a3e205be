// Package system implements the root EmulationState of spec.md §3 and
// its Tick() scheduler of §4.1: the single owner that composes the
// master clock, CPU, PPU, APU, DMA engine, memory bus, input ports and
// cartridge, and the embedder interface of §6
// (New/LoadCartridge/PowerOn/Reset/SetFramebuffer/AttachDebugger/Tick/
// EmulateFrame/EmulateCPUCycles). It plays the role the teacher's
// internal/bus.Bus played (owning every component and driving the run
// loop from internal/app.Emulator), but where the teacher's Bus.Step
// executed one whole CPU instruction and then stepped the PPU 3x in a
// tight loop, State.Tick advances the entire system by exactly one
// master cycle, in the fixed six-step order spec.md §4.1 mandates.
package system

import (
	"github.com/rng999/gones-core/internal/apu"
	"github.com/rng999/gones-core/internal/cartridge"
	"github.com/rng999/gones-core/internal/clock"
	"github.com/rng999/gones-core/internal/config"
	"github.com/rng999/gones-core/internal/cpu"
	"github.com/rng999/gones-core/internal/debug"
	"github.com/rng999/gones-core/internal/dma"
	"github.com/rng999/gones-core/internal/input"
	"github.com/rng999/gones-core/internal/membus"
	"github.com/rng999/gones-core/internal/ppu"
)

// State is the EmulationState of spec.md §3: every sub-component is
// reachable through it, and it is the sole thing an embedder holds.
type State struct {
	Config *config.Config

	Clock clock.Master
	Bus   *membus.Bus
	CPU   *cpu.CPU
	PPU   *ppu.PPU
	APU   *apu.APU
	DMA   *dma.Engine
	Input *input.Ports
	Cart  cartridge.Cartridge

	debugger *debug.Gate

	frameOut       []uint8
	frameJustEnded bool
}

// New constructs a State from cfg. The cartridge slot starts empty;
// the bus, CPU and PPU all run against open bus until LoadCartridge is
// called, matching the teacher's two-phase app.NewEmulator/LoadROM
// split in internal/app/emulator.go.
func New(cfg *config.Config) *State {
	s := &State{Config: cfg}

	geo := cfg.Geometry()
	s.APU = apu.New()
	s.Input = input.New()
	s.PPU = ppu.New(geo.ScanlinesPerFrame, geo.DotsPerScanline, geo.PreRenderLine, geo.VBlankStartLine, cfg.WarmupCPUCycles())
	s.Bus = membus.New(s.PPU, s.APU, s.Input, nil)
	s.DMA = dma.New(s.Bus)
	s.DMA.SetDPCMQuirk(geo.DPCMCorruption)
	s.CPU = cpu.New(s.Bus)

	s.Bus.SetOAMDMATrigger(func(page uint8) {
		s.DMA.StartOAM(page, s.Clock.CPUCycles()%2 == 1)
	})

	if cfg.DebuggerEnabled {
		s.AttachDebugger(debug.NewGate(cfg))
	}

	return s
}

// LoadCartridge inserts cart, wiring it into the bus and PPU. It
// transfers ownership the way spec.md §6 describes: the cartridge's
// save-RAM and mapper state now live entirely behind this State.
func (s *State) LoadCartridge(cart cartridge.Cartridge) {
	s.Cart = cart
	s.Bus.SetCartridge(cart)
	s.PPU.SetCartridge(cart)
}

// PowerOn brings every component to its power-up state (spec.md §3).
// The master clock starts at 0 and Tick advances it before checking the
// phase, so the first CPU-active cycle after PowerOn is master cycle 3
// (the third Tick) — the Open Question resolution recorded in DESIGN.md.
func (s *State) PowerOn() {
	s.Clock.Reset()
	s.APU.Reset()
	s.Input.Reset()
	s.PPU.PowerOn()
	s.CPU.PowerOn()
	s.frameJustEnded = false
}

// Reset performs the soft-reset sequence on every component that has
// one; the cartridge's mapper state and the PPU's warmup gate (already
// satisfied) are untouched, matching spec.md §3 "reset... warmup is
// already complete".
func (s *State) Reset() {
	s.Clock.Reset()
	s.APU.Reset()
	s.Input.Reset()
	s.PPU.Reset()
	s.CPU.Reset()
	s.frameJustEnded = false
}

// SetFramebuffer registers an embedder-owned buffer that Tick copies
// the PPU's completed frame into, so the embedder's presentation layer
// (internal/present) never has to poll PPU.Framebuffer() mid-render or
// allocate a buffer of its own every frame.
func (s *State) SetFramebuffer(buf []uint8) { s.frameOut = buf }

// AttachDebugger wires a debug.Gate into the bus's access hook and this
// State's tick loop (spec.md §4.8). Passing nil detaches it.
func (s *State) AttachDebugger(g *debug.Gate) {
	s.debugger = g
	if g == nil {
		s.Bus.SetAccessHook(nil)
		return
	}
	s.Bus.SetAccessHook(func(addr uint16, isWrite bool) {
		if g.CheckMemoryAccess(addr, isWrite) {
			g.Break(addr)
		}
	})
}

// Debugger returns the currently attached gate, or nil.
func (s *State) Debugger() *debug.Gate { return s.debugger }

// Tick advances the system by exactly one master cycle, in the fixed
// order of spec.md §4.1. If the debugger gate is held, Tick is a no-op.
func (s *State) Tick() {
	if s.debugger != nil && s.debugger.Held() {
		return
	}

	// Step 1: advance the master clock.
	s.Clock.Tick()

	// Step 2: derive this cycle's CPU/APU activity flag.
	cpuActive := s.Clock.CPUActive()

	// Step 3: on a CPU-active cycle, tick APU/DMA, wire rdy_line and
	// irq_line, then run one CPU sub-cycle. The CPU itself samples
	// interrupts into its pending latch after its own bus access
	// completes (the "second-to-last cycle" rule lives in cpu.TickCPUCycle).
	if cpuActive {
		s.PPU.NotifyCPUActive()
		s.APU.TickCPUCycle()

		if s.APU.DMCNeedsFetch() {
			s.DMA.RequestDMCFetch(s.APU.DMCFetchAddress())
		}
		s.DMA.Tick(s.CPU.LastReadAddr())
		if s.DMA.DMCByteReady() {
			s.APU.DMCDeliverByte(s.DMA.DMCByte())
		}

		// dma.RDYLine reports whether a sub-machine is holding the bus;
		// cpu.RDYLine is active-high "the CPU may advance", so the two
		// are inverses of each other.
		s.CPU.RDYLine = !s.DMA.RDYLine()

		irqLine := s.APU.PollIRQ()
		if s.Cart != nil {
			irqLine = irqLine || s.Cart.PollIRQ()
		}
		s.CPU.IRQLine = irqLine

		s.CPU.TickCPUCycle()

		if s.debugger != nil && !s.CPU.Halted() {
			s.debugger.RecordHistory(debug.Snapshot{
				PC:       s.CPU.PC,
				A:        s.CPU.A,
				X:        s.CPU.X,
				Y:        s.CPU.Y,
				SP:       s.CPU.SP,
				P:        s.CPU.StatusByte(),
				PPUCycle: s.Clock.Cycles(),
			})
			if s.debugger.ShouldBreak(s.CPU.PC) {
				s.debugger.Break(s.CPU.PC)
			}
		}
	}

	// Step 4 & 5: advance PPU timing and run its rendering sub-cycle.
	s.PPU.TickDot()

	// Step 6: wire the freshest NMI state for the CPU's next active cycle.
	s.CPU.NMILine = s.PPU.NMILine

	if s.PPU.ConsumeFrameComplete() {
		s.frameJustEnded = true
		if s.frameOut != nil {
			copy(s.frameOut, s.PPU.Framebuffer())
		}
	}
}

// EmulateFrame ticks until a frame completes (spec.md §6
// "emulate_frame()"). Returns immediately if the gate is held, without
// completing a frame.
func (s *State) EmulateFrame() {
	s.frameJustEnded = false
	for !s.frameJustEnded {
		if s.debugger != nil && s.debugger.Held() {
			return
		}
		s.Tick()
	}
}

// EmulateCPUCycles ticks until 3*n master cycles have elapsed (spec.md
// §6 "emulate_cpu_cycles(n)").
func (s *State) EmulateCPUCycles(n int) {
	target := s.Clock.Cycles() + uint64(n)*3
	for s.Clock.Cycles() < target {
		if s.debugger != nil && s.debugger.Held() {
			return
		}
		s.Tick()
	}
}
