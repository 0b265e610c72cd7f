// Package emu wires the bus, CPU, and APU into the fixed-order scheduler
// spec §4.7 describes, and exposes the framebuffer/button/sample surfaces
// spec §1 names as the core's external collaborator boundary.
//
// Grounded on the teacher's internal/emu/emu.go Machine shape, generalized
// from its test-pattern stub to a real cycle scheduler.
package emu

import (
	"github.com/pixeldivider/dmgcore/internal/apu"
	"github.com/pixeldivider/dmgcore/internal/bus"
	"github.com/pixeldivider/dmgcore/internal/cart"
	"github.com/pixeldivider/dmgcore/internal/cpu"
)

// CyclesPerFrame is the fixed tick count per video frame (spec §2/§4.7).
const CyclesPerFrame = 17556

// Machine owns the bus, CPU, and APU, and drives them in the single-
// threaded cooperative order spec §4.7 specifies: timer, then PPU, then
// APU, then CPU, once per machine cycle.
type Machine struct {
	Bus *bus.Bus
	CPU *cpu.CPU
	APU *apu.APU
}

// New constructs a Machine from an unmodified ROM-only cartridge image
// (spec §1: no bank-switching support). sink receives filled PCM sample
// buffers from the APU (spec §4.6).
func New(rom []byte, sink apu.Sink) (*Machine, error) {
	header, err := cart.ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	if err := header.Validate(); err != nil {
		return nil, err
	}

	b := bus.New(rom)
	m := &Machine{
		Bus: b,
		CPU: cpu.New(b),
		APU: b.NewAPU(sink),
	}
	return m, nil
}

// NewFromCartridge lets callers supply a pre-constructed cartridge (e.g. a
// test double), bypassing header validation.
func NewFromCartridge(c cart.Cartridge, sink apu.Sink) *Machine {
	b := bus.NewWithCartridge(c)
	return &Machine{
		Bus: b,
		CPU: cpu.New(b),
		APU: b.NewAPU(sink),
	}
}

// StepFrame advances the machine by exactly one frame's worth of machine
// cycles (spec §4.7: timer.tick → ppu.tick → apu.tick → cpu.tick, in that
// fixed order, 17,556 times), then returns the rendered framebuffer.
func (m *Machine) StepFrame() []byte {
	for i := 0; i < CyclesPerFrame; i++ {
		m.Bus.Tick()
		m.Bus.PPU().Tick()
		m.APU.Tick()
		m.CPU.Tick()
	}
	return m.Framebuffer()
}

// Framebuffer returns the 160x144 RGB24 framebuffer produced by the PPU.
func (m *Machine) Framebuffer() []byte {
	return m.Bus.PPU().Framebuffer()
}

// SetButtons ingests the host's current button state (spec §1's
// button-state ingestion point).
func (m *Machine) SetButtons(mask byte) {
	m.Bus.SetButtons(mask)
}
