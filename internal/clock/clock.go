// Package clock implements the master cycle counter and CPU/APU phase
// derivation described in spec.md §4.1. It owns no other component state;
// it is a pure counter consulted by internal/system's tick scheduler.
package clock

// Master is the monotonically increasing PPU-cycle counter. It never
// decreases and advances by exactly 1 per Tick (spec.md §3, MasterClock
// invariant).
type Master struct {
	cycles uint64
}

// Tick advances the master clock by exactly one cycle.
func (m *Master) Tick() {
	m.cycles++
}

// Cycles returns the current master-cycle count.
func (m *Master) Cycles() uint64 {
	return m.cycles
}

// Reset zeroes the counter. Used by both PowerOn and Reset; the CPU/APU
// phase offset is therefore identical after either (spec.md §9 open
// question, resolved: phase 0 in both cases).
func (m *Master) Reset() {
	m.cycles = 0
}

// CPUActive reports whether the CPU and APU are active on the current
// master cycle. They share a tick phase, active every 3rd master cycle
// (spec.md §4.1 "Scheduling").
func (m *Master) CPUActive() bool {
	return m.cycles%3 == 0
}

// CPUCycles returns the number of CPU-active cycles that have elapsed,
// derived from the master count rather than tracked separately so the
// two can never drift.
func (m *Master) CPUCycles() uint64 {
	return m.cycles / 3
}
