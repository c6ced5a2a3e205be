// Package debug implements the Debugger Inspection Gate of spec.md
// §4.8: fixed-capacity breakpoint/watchpoint tables, a bounded circular
// history of CPU snapshots, and a read-only inspection surface built
// strictly on internal/membus.Bus.Peek. It replaces the teacher's
// internal/debug, which was a Super Mario Bros-specific color-pipeline
// tracer (color_pipeline_debugger.go, color_hooks.go) with no notion of
// breakpoints at all; the fixed-capacity-table shape and the
// should_break/check_memory_access naming come directly from spec.md
// §4.8, since nothing in the retrieved pack implements this component.
package debug

import (
	"fmt"

	"github.com/rng999/gones-core/internal/config"
)

// DebuggerLimitError reports that a breakpoint or watchpoint table is
// already at its fixed capacity (spec.md §7).
type DebuggerLimitError struct {
	Kind string // "breakpoint" or "watchpoint"
}

func (e *DebuggerLimitError) Error() string {
	return fmt.Sprintf("debug: %s table is full", e.Kind)
}

// HistoryIndexError reports an out-of-range history lookup (spec.md §7).
type HistoryIndexError struct {
	Index int
}

func (e *HistoryIndexError) Error() string {
	return fmt.Sprintf("debug: history index %d out of range", e.Index)
}

// WatchKind selects which bus accesses a watchpoint fires on.
type WatchKind uint8

const (
	WatchRead WatchKind = iota
	WatchWrite
	WatchAccess
)

type breakpoint struct {
	addr    uint16
	enabled bool
}

type watchpoint struct {
	addr    uint16
	kind    WatchKind
	enabled bool
}

// Snapshot is one entry of the history ring: the full CPU-visible
// register set plus the PPU's cycle counter. internal/system records one
// after every CPU-active cycle while the CPU is not halted, so states in
// the middle of an instruction are recorded too (spec.md §4.8
// "(pc,a,x,y,sp,p,ppu_cycle)").
type Snapshot struct {
	PC       uint16
	A, X, Y  uint8
	SP       uint8
	P        uint8
	PPUCycle uint64
}

// Gate is the inspection/breakpoint surface attached to a running
// EmulationState. Tables are fixed-size arrays, not slices, so
// AddBreakpoint/AddWatchpoint never allocate (spec.md §8 invariant 9,
// "RT-safety... allocate zero bytes").
type Gate struct {
	breakpoints [config.DefaultMaxBreakpoints]breakpoint
	bpCount     int

	watchpoints [config.DefaultMaxWatchpoints]watchpoint
	wpCount     int

	history    []Snapshot
	historyCap int
	head       int
	count      int

	held     bool
	breakHit uint16
}

// NewGate constructs a Gate sized from cfg's history capacity. The
// history backing slice is allocated once here, never on the tick path.
func NewGate(cfg *config.Config) *Gate {
	cap := cfg.HistoryCapacity()
	return &Gate{
		history:    make([]Snapshot, cap),
		historyCap: cap,
	}
}

// AddBreakpoint arms a PC breakpoint.
func (g *Gate) AddBreakpoint(addr uint16) error {
	if g.bpCount >= len(g.breakpoints) {
		return &DebuggerLimitError{Kind: "breakpoint"}
	}
	g.breakpoints[g.bpCount] = breakpoint{addr: addr, enabled: true}
	g.bpCount++
	return nil
}

// RemoveBreakpoint disarms (and compacts out) addr if present.
func (g *Gate) RemoveBreakpoint(addr uint16) {
	for i := 0; i < g.bpCount; i++ {
		if g.breakpoints[i].addr == addr {
			g.bpCount--
			g.breakpoints[i] = g.breakpoints[g.bpCount]
			return
		}
	}
}

// AddWatchpoint arms a memory watchpoint on addr for the given kind.
func (g *Gate) AddWatchpoint(addr uint16, kind WatchKind) error {
	if g.wpCount >= len(g.watchpoints) {
		return &DebuggerLimitError{Kind: "watchpoint"}
	}
	g.watchpoints[g.wpCount] = watchpoint{addr: addr, kind: kind, enabled: true}
	g.wpCount++
	return nil
}

// RemoveWatchpoint disarms (and compacts out) the addr/kind pair.
func (g *Gate) RemoveWatchpoint(addr uint16, kind WatchKind) {
	for i := 0; i < g.wpCount; i++ {
		if g.watchpoints[i].addr == addr && g.watchpoints[i].kind == kind {
			g.wpCount--
			g.watchpoints[i] = g.watchpoints[g.wpCount]
			return
		}
	}
}

// ShouldBreak reports whether pc matches an armed breakpoint. Called by
// internal/system after every CPU-active cycle while the CPU is not
// halted; allocates nothing.
func (g *Gate) ShouldBreak(pc uint16) bool {
	for i := 0; i < g.bpCount; i++ {
		if g.breakpoints[i].enabled && g.breakpoints[i].addr == pc {
			return true
		}
	}
	return false
}

// CheckMemoryAccess reports whether addr/isWrite matches an armed
// watchpoint. internal/membus.Bus calls this from its access hook on
// every CPU-visible read/write when a Gate is attached.
func (g *Gate) CheckMemoryAccess(addr uint16, isWrite bool) bool {
	for i := 0; i < g.wpCount; i++ {
		w := g.watchpoints[i]
		if !w.enabled || w.addr != addr {
			continue
		}
		switch w.kind {
		case WatchAccess:
			return true
		case WatchWrite:
			if isWrite {
				return true
			}
		case WatchRead:
			if !isWrite {
				return true
			}
		}
	}
	return false
}

// Break arms the cooperative halt; internal/system.State.Tick becomes a
// no-op until Continue is called (spec.md §4.1 "if the debugger gate is
// held, tick() returns immediately").
func (g *Gate) Break(at uint16) {
	g.held = true
	g.breakHit = at
}

// Held reports whether the gate is currently halting tick().
func (g *Gate) Held() bool { return g.held }

// BreakAddress is the PC or memory address that triggered the current
// hold, for embedder diagnostics.
func (g *Gate) BreakAddress() uint16 { return g.breakHit }

// Continue releases a held gate, letting Tick resume advancing.
func (g *Gate) Continue() { g.held = false }

// RecordHistory appends a snapshot to the circular buffer, overwriting
// the oldest entry once historyCap is reached.
func (g *Gate) RecordHistory(s Snapshot) {
	g.history[g.head] = s
	g.head = (g.head + 1) % g.historyCap
	if g.count < g.historyCap {
		g.count++
	}
}

// HistoryLen is the number of snapshots currently retained.
func (g *Gate) HistoryLen() int { return g.count }

// HistoryAt returns the snapshot i steps back from the most recent
// (0 is the latest). Returns HistoryIndexError if i is out of range.
func (g *Gate) HistoryAt(i int) (Snapshot, error) {
	if i < 0 || i >= g.count {
		return Snapshot{}, &HistoryIndexError{Index: i}
	}
	idx := (g.head - 1 - i + g.historyCap) % g.historyCap
	return g.history[idx], nil
}

// Peeker is the read-only memory surface the gate's inspection helpers
// use — internal/membus.Bus satisfies it via Peek, never Read, so
// inspection can never perturb open bus, PPU register latches, or
// mapper state (spec.md §4.8 "read-only state view").
type Peeker interface {
	Peek(addr uint16) uint8
}

// PeekMemory reads addr through bus's side-effect-free path.
func (g *Gate) PeekMemory(bus Peeker, addr uint16) uint8 {
	return bus.Peek(addr)
}

// PeekRange reads count bytes starting at addr through bus's
// side-effect-free path, for the embedder's memory-viewer UIs.
func (g *Gate) PeekRange(bus Peeker, addr uint16, count int) []uint8 {
	out := make([]uint8, count)
	for i := 0; i < count; i++ {
		out[i] = bus.Peek(addr + uint16(i))
	}
	return out
}
