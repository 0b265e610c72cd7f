// Package apu implements the frame sequencer, four channel generators, and
// mixing/downsampling pipeline described in spec §4.6. Grounded on
// original_source/src/audio.rs for the frame-sequencer/decimation-timer
// shape and on the teacher's internal/apu/apu.go for the per-channel struct
// layout (chSquare/chWave/chNoise) and register bit-packing conventions.
//
// The noise channel implements a real 15/7-stage LFSR, replacing
// original_source's random-bit placeholder, per the explicit redesign note in
// spec §9.
package apu

const (
	frameTimerReload = 2047 // 2048 machine cycles per frame-sequencer step (512 Hz)
	decimationReload = 15   // 16 machine cycles per output sample (65,536 Hz)
	sampleBufferLen  = 1024
)

var dutyTable = [4]byte{
	0b00000001,
	0b10000001,
	0b10000111,
	0b01111110,
}

// noiseDivisor maps NR43's 3-bit divisor code to its base period in machine
// cycles (spec §9 leaves the exact LFSR clock derivation unspecified beyond
// "a rate determined by NR43"; this follows the widely documented divisor
// table, applied directly in machine-cycle units).
var noiseDivisor = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

// Registers gives the APU read access to its NR10-NR52/wave-RAM bytes and
// lets it consume the bus's per-address write-watch flags (spec §3) to
// detect NRx4 triggers and NRx1 length reloads.
type Registers interface {
	ReadReg(addr uint16) byte
	ConsumeWrite(addr uint16) bool
}

// Sink receives a filled sample buffer. Samples are signed, roughly in
// [-0.05, 0.05] after the §4.6 mix gain.
type Sink func(samples []float32)

type square struct {
	enabled  bool
	duty     byte
	length   int
	lenEn    bool
	volInit  byte
	envDir   bool
	envPer   byte
	curVol   byte
	envTimer byte
	freqTimer int
	phase    byte

	hasSweep    bool
	sweepPer    byte
	sweepNeg    bool
	sweepShift  byte
	sweepTimer  byte
	sweepEn     bool
	sweepShadow int
}

type wave struct {
	enabled   bool
	dacEn     bool
	length    int
	lenEn     bool
	volCode   byte
	freqTimer int
	pos       int
}

type noise struct {
	enabled   bool
	length    int
	lenEn     bool
	volInit   byte
	envDir    bool
	envPer    byte
	curVol    byte
	envTimer  byte
	freqTimer int
	lfsr      uint16
}

// APU owns the frame sequencer, the four channel generators, and the
// decimation/mix pipeline. Duty, frequency, wave volume and the NR43 noise
// settings are read live from the bus rather than cached, matching
// original_source/src/audio.rs's style of reading shared memory directly.
// Envelope (NRx2) and sweep (NR10) settings are latched into the channel
// state on trigger; later writes to those registers take effect on the
// next trigger.
type APU struct {
	regs Registers
	sink Sink

	frameTimer int
	frameStep  int

	decimationTimer int
	buf             [sampleBufferLen]float32
	bufLen          int

	ch1 square
	ch2 square
	ch4 noise
	ch3 wave
}

// New constructs an APU that reads registers through regs and hands filled
// sample buffers to sink.
func New(regs Registers, sink Sink) *APU {
	a := &APU{
		regs:       regs,
		sink:       sink,
		frameTimer: frameTimerReload,
	}
	a.ch1.hasSweep = true
	a.ch4.lfsr = 0x7FFF
	return a
}

// Register addresses (spec §3).
const (
	nr10 = 0xFF10
	nr11 = 0xFF11
	nr12 = 0xFF12
	nr13 = 0xFF13
	nr14 = 0xFF14

	nr21 = 0xFF16
	nr22 = 0xFF17
	nr23 = 0xFF18
	nr24 = 0xFF19

	nr30 = 0xFF1A
	nr31 = 0xFF1B
	nr32 = 0xFF1C
	nr33 = 0xFF1D
	nr34 = 0xFF1E

	nr41 = 0xFF20
	nr42 = 0xFF21
	nr43 = 0xFF22
	nr44 = 0xFF23

	waveRAMBase = 0xFF30
)

// Tick advances every channel and the frame sequencer by one machine cycle,
// and appends a downsampled output sample every 16 cycles (spec §4.6).
func (a *APU) Tick() {
	a.consumeTriggersAndReloads()

	a.tickFrameSequencer()

	a.tickSquare(&a.ch1, nr11, nr13, nr14)
	a.tickSquare(&a.ch2, nr21, nr23, nr24)
	a.tickWave()
	a.tickNoise()

	if a.decimationTimer == 0 {
		a.pushSample()
		a.decimationTimer = decimationReload
	} else {
		a.decimationTimer--
	}
}

func (a *APU) consumeTriggersAndReloads() {
	if a.regs.ConsumeWrite(nr11) {
		a.ch1.length = 64 - int(a.regs.ReadReg(nr11)&0x3F)
	}
	if a.regs.ConsumeWrite(nr21) {
		a.ch2.length = 64 - int(a.regs.ReadReg(nr21)&0x3F)
	}
	if a.regs.ConsumeWrite(nr31) {
		a.ch3.length = 256 - int(a.regs.ReadReg(nr31))
	}
	if a.regs.ConsumeWrite(nr41) {
		a.ch4.length = 64 - int(a.regs.ReadReg(nr41)&0x3F)
	}

	if a.regs.ConsumeWrite(nr14) && a.regs.ReadReg(nr14)&0x80 != 0 {
		a.triggerSquare(&a.ch1, nr12, nr13, nr14)
	}
	if a.regs.ConsumeWrite(nr24) && a.regs.ReadReg(nr24)&0x80 != 0 {
		a.triggerSquare(&a.ch2, nr22, nr23, nr24)
	}
	if a.regs.ConsumeWrite(nr34) && a.regs.ReadReg(nr34)&0x80 != 0 {
		a.triggerWave()
	}
	if a.regs.ConsumeWrite(nr44) && a.regs.ReadReg(nr44)&0x80 != 0 {
		a.triggerNoise()
	}
}

func freq11(lo, hi byte) int {
	return int(hi&0x07)<<8 | int(lo)
}

func (a *APU) triggerSquare(ch *square, nrEnv, nrFreqLo, nrFreqHi uint16) {
	ch.enabled = true
	if ch.length == 0 {
		ch.length = 64
	}
	f := freq11(a.regs.ReadReg(nrFreqLo), a.regs.ReadReg(nrFreqHi))
	ch.freqTimer = (2048 - f) * 4
	env := a.regs.ReadReg(nrEnv)
	ch.volInit = env >> 4
	ch.curVol = ch.volInit
	ch.envDir = env&0x08 != 0
	ch.envPer = env & 0x07
	ch.envTimer = ch.envPer

	if ch.hasSweep {
		sweep := a.regs.ReadReg(nr10)
		ch.sweepPer = (sweep >> 4) & 0x07
		ch.sweepNeg = sweep&0x08 != 0
		ch.sweepShift = sweep & 0x07
		ch.sweepShadow = f
		ch.sweepTimer = ch.sweepPer
		if ch.sweepTimer == 0 {
			ch.sweepTimer = 8
		}
		ch.sweepEn = ch.sweepPer != 0 || ch.sweepShift != 0
		if ch.sweepShift != 0 {
			a.computeSweepFrequency(ch)
		}
	}
}

func (a *APU) triggerWave() {
	a.ch3.enabled = true
	if a.ch3.length == 0 {
		a.ch3.length = 256
	}
	f := freq11(a.regs.ReadReg(nr33), a.regs.ReadReg(nr34))
	a.ch3.freqTimer = (2048 - f) * 2
	a.ch3.pos = 0
	a.ch3.dacEn = a.regs.ReadReg(nr30)&0x80 != 0
	a.ch3.volCode = (a.regs.ReadReg(nr32) >> 5) & 0x03
}

func (a *APU) triggerNoise() {
	a.ch4.enabled = true
	if a.ch4.length == 0 {
		a.ch4.length = 64
	}
	env := a.regs.ReadReg(nr42)
	a.ch4.volInit = env >> 4
	a.ch4.curVol = a.ch4.volInit
	a.ch4.envDir = env&0x08 != 0
	a.ch4.envPer = env & 0x07
	a.ch4.envTimer = a.ch4.envPer
	a.ch4.lfsr = 0x7FFF
	a.ch4.freqTimer = a.noisePeriod()
}

func (a *APU) noisePeriod() int {
	v := a.regs.ReadReg(nr43)
	shift := v >> 4
	r := v & 0x07
	return noiseDivisor[r] << shift
}

// tickFrameSequencer runs the 512 Hz, 8-step sequence (spec §4.6).
func (a *APU) tickFrameSequencer() {
	if a.frameTimer == 0 {
		a.frameTimer = frameTimerReload
		a.runFrameStep(a.frameStep)
		a.frameStep = (a.frameStep + 1) % 8
	} else {
		a.frameTimer--
	}
}

func (a *APU) runFrameStep(step int) {
	if step%2 == 0 {
		a.tickLength(&a.ch1.length, a.ch1.lenEn, &a.ch1.enabled)
		a.tickLength(&a.ch2.length, a.ch2.lenEn, &a.ch2.enabled)
		a.tickLength(&a.ch3.length, a.ch3.lenEn, &a.ch3.enabled)
		a.tickLength(&a.ch4.length, a.ch4.lenEn, &a.ch4.enabled)
	}
	if step == 2 || step == 6 {
		a.tickSweep(&a.ch1)
	}
	if step == 7 {
		a.tickEnvelope(&a.ch1.curVol, a.ch1.envDir, a.ch1.envPer, &a.ch1.envTimer)
		a.tickEnvelope(&a.ch2.curVol, a.ch2.envDir, a.ch2.envPer, &a.ch2.envTimer)
		a.tickEnvelope(&a.ch4.curVol, a.ch4.envDir, a.ch4.envPer, &a.ch4.envTimer)
	}

	a.ch1.lenEn = a.regs.ReadReg(nr14)&0x40 != 0
	a.ch2.lenEn = a.regs.ReadReg(nr24)&0x40 != 0
	a.ch3.lenEn = a.regs.ReadReg(nr34)&0x40 != 0
	a.ch4.lenEn = a.regs.ReadReg(nr44)&0x40 != 0
}

func (a *APU) tickLength(length *int, lenEn bool, enabled *bool) {
	if !lenEn || *length == 0 {
		return
	}
	*length--
	if *length == 0 {
		*enabled = false
	}
}

func (a *APU) tickEnvelope(curVol *byte, dir bool, per byte, timer *byte) {
	if per == 0 {
		return
	}
	if *timer == 0 {
		*timer = per
		return
	}
	*timer--
	if *timer == 0 {
		if dir && *curVol < 15 {
			*curVol++
		} else if !dir && *curVol > 0 {
			*curVol--
		}
		*timer = per
	}
}

func (a *APU) computeSweepFrequency(ch *square) int {
	delta := ch.sweepShadow >> ch.sweepShift
	if ch.sweepNeg {
		next := ch.sweepShadow - delta
		if next < 0 {
			next = 0
		}
		return next
	}
	next := ch.sweepShadow + delta
	if next > 2047 {
		ch.enabled = false
	}
	return next
}

func (a *APU) tickSweep(ch *square) {
	if !ch.sweepEn || ch.sweepPer == 0 {
		return
	}
	if ch.sweepTimer == 0 {
		ch.sweepTimer = 8
		return
	}
	ch.sweepTimer--
	if ch.sweepTimer != 0 {
		return
	}
	ch.sweepTimer = ch.sweepPer

	next := a.computeSweepFrequency(ch)
	if next > 2047 || ch.sweepShift == 0 {
		return
	}
	ch.sweepShadow = next
	ch.freqTimer = (2048 - next) * 4
	if a.computeSweepFrequency(ch) > 2047 {
		ch.enabled = false
	}
}

func (a *APU) tickSquare(ch *square, nrDuty, nrFreqLo, nrFreqHi uint16) {
	if ch.freqTimer > 0 {
		ch.freqTimer--
	}
	if ch.freqTimer == 0 {
		f := freq11(a.regs.ReadReg(nrFreqLo), a.regs.ReadReg(nrFreqHi))
		ch.freqTimer = (2048 - f) * 4
		ch.phase = (ch.phase + 1) % 8
	}
	ch.duty = (a.regs.ReadReg(nrDuty) >> 6) & 0x03
}

func (a *APU) squareSample(ch *square) float32 {
	if !ch.enabled {
		return -0.25
	}
	pattern := dutyTable[ch.duty]
	bitOut := (pattern >> ch.phase) & 1
	return 0.25 - float32(bitOut)*float32(ch.curVol)/30
}

func (a *APU) tickWave() {
	if a.ch3.freqTimer > 0 {
		a.ch3.freqTimer--
	}
	if a.ch3.freqTimer == 0 {
		f := freq11(a.regs.ReadReg(nr33), a.regs.ReadReg(nr34))
		a.ch3.freqTimer = (2048 - f) * 2
		a.ch3.pos = (a.ch3.pos + 1) % 32
	}
	a.ch3.volCode = (a.regs.ReadReg(nr32) >> 5) & 0x03
}

func (a *APU) waveSample() float32 {
	if !a.ch3.enabled || !a.ch3.dacEn {
		return -0.25
	}
	b := a.regs.ReadReg(waveRAMBase + uint16(a.ch3.pos/2))
	var nibble byte
	if a.ch3.pos%2 == 0 {
		nibble = b >> 4
	} else {
		nibble = b & 0x0F
	}
	switch a.ch3.volCode {
	case 0:
		nibble = 0
	case 2:
		nibble >>= 1
	case 3:
		nibble >>= 2
	}
	return 0.25 - float32(nibble)/30
}

func (a *APU) tickNoise() {
	if a.ch4.freqTimer > 0 {
		a.ch4.freqTimer--
	}
	if a.ch4.freqTimer == 0 {
		a.ch4.freqTimer = a.noisePeriod()
		bit := (a.ch4.lfsr ^ (a.ch4.lfsr >> 1)) & 1
		a.ch4.lfsr >>= 1
		a.ch4.lfsr |= bit << 14
		if a.regs.ReadReg(nr43)&0x08 != 0 {
			a.ch4.lfsr &^= 1 << 6
			a.ch4.lfsr |= bit << 6
		}
	}
}

func (a *APU) noiseSample() float32 {
	if !a.ch4.enabled {
		return -0.25
	}
	bitOut := byte(^a.ch4.lfsr) & 1
	return 0.25 - float32(bitOut)*float32(a.ch4.curVol)/30
}

// pushSample sums the four channel samples, scales by the §4.6 mix gain,
// and appends to the buffer, flushing to the sink when full.
func (a *APU) pushSample() {
	s := a.squareSample(&a.ch1) + a.squareSample(&a.ch2) + a.waveSample() + a.noiseSample()
	s *= 0.05

	a.buf[a.bufLen] = s
	a.bufLen++
	if a.bufLen == sampleBufferLen {
		if a.sink != nil {
			a.sink(a.buf[:])
		}
		a.bufLen = 0
	}
}
