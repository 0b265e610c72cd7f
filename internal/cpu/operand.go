package cpu

// operand8 and operand16 give instruction handlers a uniform read/write
// contract over registers, immediates, and indirect memory addressing
// modes (spec §4.2's operand model) — a direct re-expression of
// original_source/src/cpu.rs's Read<T>/Write<T> trait objects as small Go
// types implementing a shared interface, per spec §9's "tagged small types"
// alternative.
type operand8 interface {
	Read(c *CPU) byte
	Write(c *CPU, v byte)
	Cycles() int
}

type operand16 interface {
	Read(c *CPU) uint16
	Write(c *CPU, v uint16)
	Cycles() int
}

// Byte registers: no cycle cost.
type regA struct{}
type regB struct{}
type regC struct{}
type regD struct{}
type regE struct{}
type regH struct{}
type regL struct{}

func (regA) Read(c *CPU) byte     { return c.Reg.A }
func (regA) Write(c *CPU, v byte) { c.Reg.A = v }
func (regA) Cycles() int          { return 0 }

func (regB) Read(c *CPU) byte     { return c.Reg.B }
func (regB) Write(c *CPU, v byte) { c.Reg.B = v }
func (regB) Cycles() int          { return 0 }

func (regC) Read(c *CPU) byte     { return c.Reg.C }
func (regC) Write(c *CPU, v byte) { c.Reg.C = v }
func (regC) Cycles() int          { return 0 }

func (regD) Read(c *CPU) byte     { return c.Reg.D }
func (regD) Write(c *CPU, v byte) { c.Reg.D = v }
func (regD) Cycles() int          { return 0 }

func (regE) Read(c *CPU) byte     { return c.Reg.E }
func (regE) Write(c *CPU, v byte) { c.Reg.E = v }
func (regE) Cycles() int          { return 0 }

func (regH) Read(c *CPU) byte     { return c.Reg.H }
func (regH) Write(c *CPU, v byte) { c.Reg.H = v }
func (regH) Cycles() int          { return 0 }

func (regL) Read(c *CPU) byte     { return c.Reg.L }
func (regL) Write(c *CPU, v byte) { c.Reg.L = v }
func (regL) Cycles() int          { return 0 }

// Word registers: no cycle cost.
type regBC struct{}
type regDE struct{}
type regHL struct{}
type regSP struct{}
type regAF struct{}

func (regBC) Read(c *CPU) uint16     { return c.Reg.BC() }
func (regBC) Write(c *CPU, v uint16) { c.Reg.SetBC(v) }
func (regBC) Cycles() int            { return 0 }

func (regDE) Read(c *CPU) uint16     { return c.Reg.DE() }
func (regDE) Write(c *CPU, v uint16) { c.Reg.SetDE(v) }
func (regDE) Cycles() int            { return 0 }

func (regHL) Read(c *CPU) uint16     { return c.Reg.HL() }
func (regHL) Write(c *CPU, v uint16) { c.Reg.SetHL(v) }
func (regHL) Cycles() int            { return 0 }

func (regSP) Read(c *CPU) uint16     { return c.Reg.SP }
func (regSP) Write(c *CPU, v uint16) { c.Reg.SP = v }
func (regSP) Cycles() int            { return 0 }

func (regAF) Read(c *CPU) uint16     { return c.Reg.AF() }
func (regAF) Write(c *CPU, v uint16) { c.Reg.SetAF(v) }
func (regAF) Cycles() int            { return 0 }

// immediate8 reads the byte following the opcode; 1 machine cycle.
type immediate8 struct{}

func (immediate8) Read(c *CPU) byte {
	v := c.bus.Read(c.Reg.PC)
	c.Reg.PC++
	return v
}
func (immediate8) Write(c *CPU, v byte) {} // immediates are never write targets
func (immediate8) Cycles() int          { return 1 }

// immediate16 reads the 16-bit little-endian literal following the opcode;
// 2 machine cycles.
type immediate16 struct{}

func (immediate16) Read(c *CPU) uint16 {
	lo := c.bus.Read(c.Reg.PC)
	hi := c.bus.Read(c.Reg.PC + 1)
	c.Reg.PC += 2
	return uint16(hi)<<8 | uint16(lo)
}
func (immediate16) Write(c *CPU, v uint16) {}
func (immediate16) Cycles() int            { return 2 }

// indirectBC, indirectDE and indirectHL address memory through a 16-bit
// pointer register; 1 cycle.
type indirectBC struct{}
type indirectDE struct{}
type indirectHL struct{}
type indirectHighC struct{}

func (indirectBC) Read(c *CPU) byte     { return c.bus.Read(c.Reg.BC()) }
func (indirectBC) Write(c *CPU, v byte) { c.bus.Write(c.Reg.BC(), v) }
func (indirectBC) Cycles() int          { return 1 }

func (indirectDE) Read(c *CPU) byte     { return c.bus.Read(c.Reg.DE()) }
func (indirectDE) Write(c *CPU, v byte) { c.bus.Write(c.Reg.DE(), v) }
func (indirectDE) Cycles() int          { return 1 }

func (indirectHL) Read(c *CPU) byte     { return c.bus.Read(c.Reg.HL()) }
func (indirectHL) Write(c *CPU, v byte) { c.bus.Write(c.Reg.HL(), v) }
func (indirectHL) Cycles() int          { return 1 }

// indirectHighC addresses 0xFF00+C; 1 cycle.
func (indirectHighC) Read(c *CPU) byte     { return c.bus.Read(0xFF00 + uint16(c.Reg.C)) }
func (indirectHighC) Write(c *CPU, v byte) { c.bus.Write(0xFF00+uint16(c.Reg.C), v) }
func (indirectHighC) Cycles() int          { return 1 }

// indirectImmediate16 addresses a 16-bit literal address; 1 access cycle
// plus the 2-cycle immediate fetch.
type indirectImmediate16 struct{}

func (indirectImmediate16) Read(c *CPU) byte {
	addr := immediate16{}.Read(c)
	return c.bus.Read(addr)
}
func (indirectImmediate16) Write(c *CPU, v byte) {
	addr := immediate16{}.Read(c)
	c.bus.Write(addr, v)
}
func (indirectImmediate16) Cycles() int { return 3 }

// indirectHighImmediate8 addresses 0xFF00+n for an 8-bit literal n; 1 access
// cycle plus the 1-cycle immediate fetch.
type indirectHighImmediate8 struct{}

func (indirectHighImmediate8) Read(c *CPU) byte {
	n := immediate8{}.Read(c)
	return c.bus.Read(0xFF00 + uint16(n))
}
func (indirectHighImmediate8) Write(c *CPU, v byte) {
	n := immediate8{}.Read(c)
	c.bus.Write(0xFF00+uint16(n), v)
}
func (indirectHighImmediate8) Cycles() int { return 2 }
