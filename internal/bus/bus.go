// Package bus implements the flat 64 KiB address space and region policy
// described in spec §3/§4.1, grounded on the teacher's internal/bus/bus.go
// region-switch dispatch style and on original_source/src/memory.rs's
// write_byte echo-mirror and random-fill-on-construction behaviour.
package bus

import (
	"math/rand/v2"

	"github.com/pixeldivider/dmgcore/internal/apu"
	"github.com/pixeldivider/dmgcore/internal/cart"
	"github.com/pixeldivider/dmgcore/internal/interrupt"
	"github.com/pixeldivider/dmgcore/internal/ppu"
	"github.com/pixeldivider/dmgcore/internal/timer"
)

// Bus wires CPU-visible address space to the cartridge, WRAM, HRAM, the PPU,
// the APU's register file, and the timer/interrupt/joypad/serial I/O.
type Bus struct {
	cart cart.Cartridge
	ppu  *ppu.PPU
	tmr  *timer.Timer

	wram [0x2000]byte // C000-DFFF
	hram [0x7F]byte   // FF80-FFFE

	// io holds every FF00-FF7F byte not delegated to the PPU (P1, SB, SC,
	// DIV, TIMA, TMA, TAC, IF, NR10-NR52, wave RAM). written tracks the
	// spec §3 write-watch set: a write to FF00+n sets written[n], and the
	// APU's ConsumeWrite reads-and-clears the bits it cares about.
	io      [0x80]byte
	written [0x80]bool

	ie byte // FFFF

	joypad     byte // button mask set via SetButtons (see Button* constants)
	joypSelect byte // P1 bits 5-4 as last written: 0 selects that nibble's group
	joypLower4 byte // last computed active-low lower nibble, for edge detection
}

// Button bit positions for SetButtons's mask (1 = pressed). Matches the
// active-low P1 nibble layout spec §6 describes: bits 0-3 are either the
// D-pad or the face/select/start buttons depending on which nibble P1
// selects.
const (
	ButtonRight  = 1 << 0
	ButtonLeft   = 1 << 1
	ButtonUp     = 1 << 2
	ButtonDown   = 1 << 3
	ButtonA      = 1 << 4
	ButtonB      = 1 << 5
	ButtonSelect = 1 << 6
	ButtonStart  = 1 << 7
)

// Requester bit constants used by New's IF-raising closures live in the
// interrupt package; Bus wires each subsystem's requester to the same IF
// byte within io[].

// New constructs a Bus around a ROM-only cartridge image, with work RAM,
// high RAM and the I/O register bytes filled from a PRNG (VRAM and OAM,
// owned by the PPU, start zeroed; real hardware powers on with
// indeterminate RAM contents; original_source/src/memory.rs does the same
// with the Rust `rand` crate — math/rand/v2 is the closest stdlib
// equivalent, kept since no third-party PRNG appears anywhere in the
// example pack to ground a non-stdlib choice on).
func New(rom []byte) *Bus {
	return NewWithCartridge(cart.NewCartridge(rom))
}

// NewWithCartridge wires a provided cartridge implementation.
func NewWithCartridge(c cart.Cartridge) *Bus {
	b := &Bus{cart: c}
	b.ppu = ppu.New(func(bit int) { b.requestInterrupt(bit) })
	b.tmr = timer.New(func(bit int) { b.requestInterrupt(bit) })

	for i := range b.wram {
		b.wram[i] = byte(rand.IntN(256))
	}
	for i := range b.hram {
		b.hram[i] = byte(rand.IntN(256))
	}
	for i := range b.io {
		b.io[i] = byte(rand.IntN(256))
	}

	// Post-boot I/O defaults (spec §3).
	b.io[0x26] = 0xF1 // NR52

	b.joypSelect = 0x30 // both nibbles deselected
	b.joypLower4 = 0x0F // no buttons pressed

	return b
}

func (b *Bus) requestInterrupt(bit int) {
	b.io[0x0F] |= 1 << uint(bit)
}

// PPU returns the bus's PPU for host rendering access.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// ReadReg implements apu.Registers: raw register byte access for the APU.
func (b *Bus) ReadReg(addr uint16) byte {
	if addr < 0xFF00 || addr > 0xFF7F {
		return 0xFF
	}
	return b.io[addr-0xFF00]
}

// ConsumeWrite implements apu.Registers: reads and clears the write-watch
// flag for addr (spec §3).
func (b *Bus) ConsumeWrite(addr uint16) bool {
	if addr < 0xFF00 || addr > 0xFF7F {
		return false
	}
	n := addr - 0xFF00
	v := b.written[n]
	b.written[n] = false
	return v
}

// NewAPU constructs an APU wired to this bus's register file and write-watch
// set, handing filled sample buffers to sink.
func (b *Bus) NewAPU(sink apu.Sink) *apu.APU {
	return apu.New(b, sink)
}

// SetButtons records the current button mask (the "button-state ingestion
// point" spec §1 names as an external collaborator boundary) and re-derives
// the P1 nibble, raising the joypad interrupt on any 1->0 transition of the
// currently selected group (spec §6).
func (b *Bus) SetButtons(mask byte) {
	b.joypad = mask
	b.updateJoypadIRQ()
}

// joypadNibble computes the active-low lower nibble of P1 for whichever
// button group(s) b.joypSelect currently selects (bit 4 low selects the
// D-pad, bit 5 low selects the face/select/start buttons; both can be
// selected at once, as real hardware allows).
func (b *Bus) joypadNibble() byte {
	nibble := byte(0x0F)
	if b.joypSelect&0x10 == 0 {
		if b.joypad&ButtonRight != 0 {
			nibble &^= 0x01
		}
		if b.joypad&ButtonLeft != 0 {
			nibble &^= 0x02
		}
		if b.joypad&ButtonUp != 0 {
			nibble &^= 0x04
		}
		if b.joypad&ButtonDown != 0 {
			nibble &^= 0x08
		}
	}
	if b.joypSelect&0x20 == 0 {
		if b.joypad&ButtonA != 0 {
			nibble &^= 0x01
		}
		if b.joypad&ButtonB != 0 {
			nibble &^= 0x02
		}
		if b.joypad&ButtonSelect != 0 {
			nibble &^= 0x04
		}
		if b.joypad&ButtonStart != 0 {
			nibble &^= 0x08
		}
	}
	return nibble
}

// updateJoypadIRQ recomputes the P1 nibble and requests the joypad interrupt
// on any bit's 1->0 transition (spec §6), matching the teacher's
// SetJoypadState/updateJoypadIRQ edge-detection design.
func (b *Bus) updateJoypadIRQ() {
	newLower := b.joypadNibble()
	if falling := b.joypLower4 &^ newLower; falling != 0 {
		b.requestInterrupt(interrupt.Joypad)
	}
	b.joypLower4 = newLower
}

// Read returns the byte at addr, per the region policy of spec §4.1.
func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.ppu.CPURead(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr >= 0xE000 && addr <= 0xFDFF:
		return b.wram[(addr-0x2000)-0xC000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return b.ppu.CPURead(addr)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie
	case addr == 0xFF00:
		return 0xC0 | (b.joypSelect & 0x30) | b.joypadNibble()
	case addr == 0xFF02:
		return 0x7E | (b.io[0x02] & 0x81)
	case isPPURegister(addr):
		return b.ppu.CPURead(addr)
	case addr >= 0xFF00 && addr <= 0xFF7F:
		return b.io[addr-0xFF00]
	default:
		return 0xFF
	}
}

// ReadWord reads a little-endian 16-bit value at addr.
func (b *Bus) ReadWord(addr uint16) uint16 {
	lo := b.Read(addr)
	hi := b.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Write stores value at addr, per the region policy of spec §4.1.
func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		return // ROM: silently discard
	case addr >= 0x8000 && addr <= 0x9FFF:
		b.ppu.CPUWrite(addr, value)
		return
	case addr >= 0xA000 && addr <= 0xBFFF:
		b.cart.Write(addr, value)
		return
	case addr >= 0xC000 && addr <= 0xDFFF:
		// E000-FDFF reads and writes map onto this same wram slot, so the
		// echo mirror of spec §3 holds without a second store.
		b.wram[addr-0xC000] = value
		return
	case addr >= 0xE000 && addr <= 0xFDFF:
		mirror := addr - 0x2000
		b.wram[mirror-0xC000] = value
		return
	case addr >= 0xFE00 && addr <= 0xFE9F:
		b.ppu.CPUWrite(addr, value)
		return
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
		return
	case addr == 0xFFFF:
		b.ie = value
		return
	}

	if isPPURegister(addr) {
		b.ppu.CPUWrite(addr, value)
		return
	}

	if addr < 0xFF00 || addr > 0xFF7F {
		return
	}

	b.writeIO(addr, value)
	b.written[addr-0xFF00] = true
}

func isPPURegister(addr uint16) bool {
	switch addr {
	case 0xFF40, 0xFF41, 0xFF42, 0xFF43, 0xFF44, 0xFF45,
		0xFF47, 0xFF48, 0xFF49, 0xFF4A, 0xFF4B:
		return true
	}
	return false
}

// writeIO applies the special-case handlers of spec §4.1 before storing the
// raw byte into io[].
func (b *Bus) writeIO(addr uint16, value byte) {
	switch addr {
	case 0xFF00:
		// Only bits 5-4 are writable; the lower nibble is always derived
		// from the live button state (spec §6).
		b.joypSelect = value & 0x30
		b.updateJoypadIRQ()
		return
	case 0xFF04:
		// Writing DIV resets it to 0 regardless of the written value.
		b.io[0x04] = 0
		b.tmr.ResetDiv()
		return
	case 0xFF02:
		b.io[0x02] = value
		if value&0x80 != 0 {
			// Serial transfer completes instantaneously (spec §1 Non-goal:
			// no real link-cable transfer); only its completion interrupt
			// is wired, per spec §9.
			b.io[0x02] &^= 0x80
			b.requestInterrupt(interrupt.Serial)
		}
		return
	case 0xFF46:
		b.io[0x46] = value
		b.runDMA(value)
		return
	case 0xFF0F:
		b.io[0x0F] = value & 0x1F
		return
	}
	b.io[addr-0xFF00] = value
}

// runDMA copies the 160 bytes at N*0x100..N*0x100+0x9F to OAM, completing
// instantaneously from the guest's perspective (spec §4.1) — unlike the
// teacher's byte-per-cycle DMA state machine.
func (b *Bus) runDMA(n byte) {
	src := uint16(n) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.ppu.CPUWrite(0xFE00+i, b.Read(src+i))
	}
}

// Tick advances the timer, requesting the timer interrupt through IF as
// needed. Called once per machine cycle by the scheduler, ahead of the PPU
// and APU per spec §4.7's fixed tick order.
func (b *Bus) Tick() {
	div := b.io[0x04]
	tima := b.io[0x05]
	tma := b.io[0x06]
	tac := b.io[0x07]
	b.tmr.Tick(&div, &tima, tma, tac)
	b.io[0x04] = div
	b.io[0x05] = tima
}

// IF returns the current interrupt-flag byte for the CPU/interrupt
// controller.
func (b *Bus) IF() byte { return b.io[0x0F] }

// SetIF overwrites the interrupt-flag byte (used by the interrupt
// controller when it clears a dispatched bit).
func (b *Bus) SetIF(v byte) { b.io[0x0F] = v & 0x1F }

// IE returns the interrupt-enable byte.
func (b *Bus) IE() byte { return b.ie }
