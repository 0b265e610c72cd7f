// Package cpu implements the Sharp LR35902 instruction interpreter: the
// register file, the operand model, the main and CB-prefixed opcode tables,
// and the tick-driven fetch/decode/execute loop (spec §4.2).
//
// Grounded on original_source/src/cpu/registers.rs for the register field
// layout and original_source/src/cpu.rs for the operand trait shapes,
// re-expressed as Go interfaces per spec §9's discussion of alternatives to
// the source's polymorphic-trait design.
package cpu

const (
	flagZ = 1 << 7
	flagN = 1 << 6
	flagH = 1 << 5
	flagC = 1 << 4
)

// Registers holds the eight 8-bit registers, paired as AF/BC/DE/HL, plus the
// 16-bit SP and PC (spec §3).
type Registers struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte
	SP   uint16
	PC   uint16
}

// NewRegisters returns the post-boot register state spec §3 specifies:
// A=01, F=B0, BC=0013, DE=00D8, HL=014D, SP=FFFE, PC=0100.
func NewRegisters() Registers {
	return Registers{
		A: 0x01, F: 0xB0,
		B: 0x00, C: 0x13,
		D: 0x00, E: 0xD8,
		H: 0x01, L: 0x4D,
		SP: 0xFFFE,
		PC: 0x0100,
	}
}

func (r *Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F&0xF0) }
func (r *Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

func (r *Registers) SetAF(v uint16) {
	r.A = byte(v >> 8)
	r.F = byte(v) & 0xF0
}
func (r *Registers) SetBC(v uint16) {
	r.B = byte(v >> 8)
	r.C = byte(v)
}
func (r *Registers) SetDE(v uint16) {
	r.D = byte(v >> 8)
	r.E = byte(v)
}
func (r *Registers) SetHL(v uint16) {
	r.H = byte(v >> 8)
	r.L = byte(v)
}

// Flag helpers (spec §4.2's flag semantics paragraph).
func (r *Registers) FlagZ() bool { return r.F&flagZ != 0 }
func (r *Registers) FlagN() bool { return r.F&flagN != 0 }
func (r *Registers) FlagH() bool { return r.F&flagH != 0 }
func (r *Registers) FlagC() bool { return r.F&flagC != 0 }

func (r *Registers) setFlag(mask byte, v bool) {
	if v {
		r.F |= mask
	} else {
		r.F &^= mask
	}
}

func (r *Registers) SetFlagZ(v bool) { r.setFlag(flagZ, v) }
func (r *Registers) SetFlagN(v bool) { r.setFlag(flagN, v) }
func (r *Registers) SetFlagH(v bool) { r.setFlag(flagH, v) }
func (r *Registers) SetFlagC(v bool) { r.setFlag(flagC, v) }
