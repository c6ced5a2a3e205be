// Package apu implements the Audio Processing Unit of spec.md §4.6: two
// pulse channels, triangle, noise, and DMC, driven by a shared frame
// counter. Generalized from the teacher's internal/apu.APU, which drove
// every unit from one Step() called once per CPU cycle and synthesized
// float32 samples inline; this version exposes TickCPUCycle() for the
// master-cycle scheduler in internal/system, adds the DMC DMA-fetch
// handshake spec.md §4.7 requires (the teacher's DMC left the sample
// read as a TODO placeholder), and keeps the teacher's mixer so
// internal/present can still feed ebiten's audio player real samples.
package apu

// APU is the Ricoh 2A03/2A07 audio processing unit.
type APU struct {
	pulse1   pulseChannel
	pulse2   pulseChannel
	triangle triangleChannel
	noise    noiseChannel
	dmc      dmcChannel

	frame frameCounter

	channelEnable [5]bool

	cpuCycleOdd bool

	sampleBuffer     []float32
	sampleRate       int
	cpuFrequency     float64
	cycleAccumulator float64
}

// New constructs an APU with its default post-power-on state (frame
// counter in 4-step mode, IRQ enabled, noise LFSR seeded to 1).
func New() *APU {
	a := &APU{
		sampleBuffer: make([]float32, 0, 4096),
		sampleRate:   44100,
		cpuFrequency: 1789773.0,
	}
	a.frame.irqEnable = true
	a.noise.shiftRegister = 1
	a.dmc.sampleBufferEmpty = true
	return a
}

// Reset restores power-on state without reallocating the sample buffer.
func (a *APU) Reset() {
	buf := a.sampleBuffer[:0]
	rate, freq := a.sampleRate, a.cpuFrequency
	*a = APU{sampleBuffer: buf, sampleRate: rate, cpuFrequency: freq}
	a.frame.irqEnable = true
	a.noise.shiftRegister = 1
	a.dmc.sampleBufferEmpty = true
}

// TickCPUCycle advances every unit by one CPU-active master cycle
// (internal/system calls this once per cycle where master_cycles mod 3
// == 0, never once per master cycle). Pulse channels' timers clock at
// half the CPU rate (spec.md §4.6 "every 2nd for pulses"); triangle,
// noise, and DMC clock every CPU-active cycle.
func (a *APU) TickCPUCycle() {
	a.frame.tick(a)

	a.cpuCycleOdd = !a.cpuCycleOdd
	if a.channelEnable[0] && a.cpuCycleOdd {
		a.pulse1.stepTimer()
	}
	if a.channelEnable[1] && a.cpuCycleOdd {
		a.pulse2.stepTimer()
	}
	if a.channelEnable[2] {
		a.triangle.stepTimer()
	}
	if a.channelEnable[3] {
		a.noise.stepTimer()
	}
	if a.channelEnable[4] {
		a.dmc.stepTimer()
	}

	a.generateSample()
}

func (a *APU) clockQuarterFrame() {
	a.pulse1.clockEnvelope()
	a.pulse2.clockEnvelope()
	a.noise.clockEnvelope()
	a.triangle.clockLinear()
}

func (a *APU) clockHalfFrame() {
	a.pulse1.clockLengthAndSweep(true)
	a.pulse2.clockLengthAndSweep(false)
	a.triangle.clockLength()
	a.noise.clockLength()
}

func (a *APU) generateSample() {
	a.cycleAccumulator += float64(a.sampleRate) / a.cpuFrequency
	if a.cycleAccumulator < 1.0 {
		return
	}
	a.cycleAccumulator -= 1.0

	p1 := a.pulse1.output()
	p2 := a.pulse2.output()
	tr := a.triangle.output()
	no := a.noise.output()
	dm := a.dmc.outputLevel
	a.sampleBuffer = append(a.sampleBuffer, mix(p1, p2, tr, no, dm))
}

// GetSamples drains and returns the accumulated sample buffer.
func (a *APU) GetSamples() []float32 {
	out := make([]float32, len(a.sampleBuffer))
	copy(out, a.sampleBuffer)
	a.sampleBuffer = a.sampleBuffer[:0]
	return out
}

// SetSampleRate changes the target audio sample rate.
func (a *APU) SetSampleRate(rate int) {
	a.sampleRate = rate
	a.cycleAccumulator = 0
}

// ---------------------------------------------------------------------
// Register file ($4000-$4017, minus the OAM-DMA trigger at $4014 which
// membus routes to internal/dma instead).
// ---------------------------------------------------------------------

// WriteRegister implements membus.APUPorts.
func (a *APU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0x4000:
		a.pulse1.writeControl(value)
	case 0x4001:
		a.pulse1.writeSweep(value)
	case 0x4002:
		a.pulse1.writeTimerLow(value)
	case 0x4003:
		a.pulse1.writeTimerHigh(value)
	case 0x4004:
		a.pulse2.writeControl(value)
	case 0x4005:
		a.pulse2.writeSweep(value)
	case 0x4006:
		a.pulse2.writeTimerLow(value)
	case 0x4007:
		a.pulse2.writeTimerHigh(value)
	case 0x4008:
		a.triangle.writeControl(value)
	case 0x400A:
		a.triangle.writeTimerLow(value)
	case 0x400B:
		a.triangle.writeTimerHigh(value)
	case 0x400C:
		a.noise.writeControl(value)
	case 0x400E:
		a.noise.writePeriod(value)
	case 0x400F:
		a.noise.writeLength(value)
	case 0x4010:
		a.dmc.writeControl(value)
	case 0x4011:
		a.dmc.writeDirectLoad(value)
	case 0x4012:
		a.dmc.writeSampleAddress(value)
	case 0x4013:
		a.dmc.writeSampleLength(value)
	case 0x4015:
		a.writeChannelEnable(value)
	case 0x4017:
		a.frame.write(a, value)
	}
}

// ReadStatus implements membus.APUPorts' $4015 read: per-channel length-
// counter-active flags plus both IRQ flags. The read clears the frame-
// IRQ flag only (spec.md §4.6).
func (a *APU) ReadStatus() uint8 {
	status := a.PeekStatus()
	a.frame.irqFlag = false
	return status
}

// PeekStatus is the side-effect-free read used by the debugger gate.
func (a *APU) PeekStatus() uint8 {
	var status uint8
	if a.pulse1.lengthCounter > 0 {
		status |= 0x01
	}
	if a.pulse2.lengthCounter > 0 {
		status |= 0x02
	}
	if a.triangle.lengthCounter > 0 {
		status |= 0x04
	}
	if a.noise.lengthCounter > 0 {
		status |= 0x08
	}
	if a.dmc.bytesRemaining > 0 {
		status |= 0x10
	}
	if a.frame.irqFlag {
		status |= 0x40
	}
	if a.dmc.irqFlag {
		status |= 0x80
	}
	return status
}

func (a *APU) writeChannelEnable(value uint8) {
	a.channelEnable[0] = value&0x01 != 0
	a.channelEnable[1] = value&0x02 != 0
	a.channelEnable[2] = value&0x04 != 0
	a.channelEnable[3] = value&0x08 != 0
	a.channelEnable[4] = value&0x10 != 0

	if !a.channelEnable[0] {
		a.pulse1.lengthCounter = 0
	}
	if !a.channelEnable[1] {
		a.pulse2.lengthCounter = 0
	}
	if !a.channelEnable[2] {
		a.triangle.lengthCounter = 0
	}
	if !a.channelEnable[3] {
		a.noise.lengthCounter = 0
	}
	if !a.channelEnable[4] {
		a.dmc.bytesRemaining = 0
	} else if a.dmc.bytesRemaining == 0 {
		a.dmc.restart()
	}
	a.dmc.irqFlag = false
}

// FrameIRQ reports the frame counter's IRQ line.
func (a *APU) FrameIRQ() bool { return a.frame.irqFlag }

// DMCIRQ reports the DMC channel's IRQ line.
func (a *APU) DMCIRQ() bool { return a.dmc.irqFlag }

// PollIRQ is the combined APU interrupt source wired into cpu.irq_line
// (spec.md §4.1 step 3: "apu.frame_irq | apu.dmc_irq | cart.poll_irq()").
func (a *APU) PollIRQ() bool { return a.frame.irqFlag || a.dmc.irqFlag }

// ---------------------------------------------------------------------
// DMC DMA-fetch handshake (spec.md §4.7), consumed by internal/dma.
// ---------------------------------------------------------------------

// DMCNeedsFetch reports whether the DMC's sample buffer is empty and the
// channel is enabled with bytes remaining — the trigger for a DMC-DMA
// fetch request.
func (a *APU) DMCNeedsFetch() bool {
	return a.channelEnable[4] && a.dmc.sampleBufferEmpty && a.dmc.bytesRemaining > 0
}

// DMCFetchAddress is the CPU address the pending fetch should read.
func (a *APU) DMCFetchAddress() uint16 { return a.dmc.currentAddress }

// DMCDeliverByte completes a DMC-DMA fetch: loads the byte into the
// sample buffer, advances the read address (wrapping $FFFF -> $8000),
// and restarts or raises the IRQ at sample end per $4010's loop/IRQ-
// enable bits.
func (a *APU) DMCDeliverByte(b uint8) {
	a.dmc.sampleBuffer = b
	a.dmc.sampleBufferBits = 8
	a.dmc.sampleBufferEmpty = false
	a.dmc.bytesRemaining--
	if a.dmc.currentAddress == 0xFFFF {
		a.dmc.currentAddress = 0x8000
	} else {
		a.dmc.currentAddress++
	}
	if a.dmc.bytesRemaining == 0 {
		if a.dmc.loop {
			a.dmc.restart()
		} else if a.dmc.irqEnable {
			a.dmc.irqFlag = true
		}
	}
}
