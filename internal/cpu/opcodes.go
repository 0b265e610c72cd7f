package cpu

// opcodeTable is the unprefixed 256-entry decode table (spec §4.2). Each
// handler performs the instruction and returns its total machine-cycle
// cost, accumulated from the 1-cycle opcode fetch plus any operand or
// branch costs. Built as a `[256]func(*CPU) int` dispatch array per spec
// §9's REDESIGN FLAGS discussion, rather than the teacher's giant switch,
// since the operand types make a table assignable at init time.
var opcodeTable [256]func(*CPU) int

// r8 is the canonical GB register-index order used by the LD r,r' and ALU
// blocks: B, C, D, E, H, L, (HL), A.
var r8 = [8]operand8{regB{}, regC{}, regD{}, regE{}, regH{}, regL{}, indirectHL{}, regA{}}

func init() {
	opcodeTable[0x00] = opNOP
	opcodeTable[0x01] = opLD16(regBC{})
	opcodeTable[0x02] = opStoreIndirectA(indirectBC{})
	opcodeTable[0x03] = opInc16(regBC{})
	opcodeTable[0x04] = opInc8(regB{})
	opcodeTable[0x05] = opDec8(regB{})
	opcodeTable[0x06] = opLD8(regB{})
	opcodeTable[0x07] = opRLCA
	opcodeTable[0x08] = opLDa16SP
	opcodeTable[0x09] = opAddHL(regBC{})
	opcodeTable[0x0A] = opLoadIndirectA(indirectBC{})
	opcodeTable[0x0B] = opDec16(regBC{})
	opcodeTable[0x0C] = opInc8(regC{})
	opcodeTable[0x0D] = opDec8(regC{})
	opcodeTable[0x0E] = opLD8(regC{})
	opcodeTable[0x0F] = opRRCA

	opcodeTable[0x10] = opSTOP
	opcodeTable[0x11] = opLD16(regDE{})
	opcodeTable[0x12] = opStoreIndirectA(indirectDE{})
	opcodeTable[0x13] = opInc16(regDE{})
	opcodeTable[0x14] = opInc8(regD{})
	opcodeTable[0x15] = opDec8(regD{})
	opcodeTable[0x16] = opLD8(regD{})
	opcodeTable[0x17] = opRLA
	opcodeTable[0x18] = opJR
	opcodeTable[0x19] = opAddHL(regDE{})
	opcodeTable[0x1A] = opLoadIndirectA(indirectDE{})
	opcodeTable[0x1B] = opDec16(regDE{})
	opcodeTable[0x1C] = opInc8(regE{})
	opcodeTable[0x1D] = opDec8(regE{})
	opcodeTable[0x1E] = opLD8(regE{})
	opcodeTable[0x1F] = opRRA

	opcodeTable[0x20] = opJRcc(condNZ)
	opcodeTable[0x21] = opLD16(regHL{})
	opcodeTable[0x22] = opLDHLIncA
	opcodeTable[0x23] = opInc16(regHL{})
	opcodeTable[0x24] = opInc8(regH{})
	opcodeTable[0x25] = opDec8(regH{})
	opcodeTable[0x26] = opLD8(regH{})
	opcodeTable[0x27] = opDAA
	opcodeTable[0x28] = opJRcc(condZ)
	opcodeTable[0x29] = opAddHL(regHL{})
	opcodeTable[0x2A] = opLDAHLInc
	opcodeTable[0x2B] = opDec16(regHL{})
	opcodeTable[0x2C] = opInc8(regL{})
	opcodeTable[0x2D] = opDec8(regL{})
	opcodeTable[0x2E] = opLD8(regL{})
	opcodeTable[0x2F] = opCPL

	opcodeTable[0x30] = opJRcc(condNC)
	opcodeTable[0x31] = opLD16(regSP{})
	opcodeTable[0x32] = opLDHLDecA
	opcodeTable[0x33] = opInc16(regSP{})
	opcodeTable[0x34] = opInc8(indirectHL{})
	opcodeTable[0x35] = opDec8(indirectHL{})
	opcodeTable[0x36] = opLD8(indirectHL{})
	opcodeTable[0x37] = opSCF
	opcodeTable[0x38] = opJRcc(condC)
	opcodeTable[0x39] = opAddHL(regSP{})
	opcodeTable[0x3A] = opLDAHLDec
	opcodeTable[0x3B] = opDec16(regSP{})
	opcodeTable[0x3C] = opInc8(regA{})
	opcodeTable[0x3D] = opDec8(regA{})
	opcodeTable[0x3E] = opLD8(regA{})
	opcodeTable[0x3F] = opCCF

	for op := 0x40; op <= 0x7F; op++ {
		if op == 0x76 {
			opcodeTable[op] = opHALT
			continue
		}
		dst := r8[(op>>3)&7]
		src := r8[op&7]
		opcodeTable[op] = opLDrr(dst, src)
	}

	aluOps := [8]func(*CPU, byte){
		func(c *CPU, v byte) { c.add8(v) },
		func(c *CPU, v byte) { c.adc8(v) },
		func(c *CPU, v byte) { c.Reg.A = c.sub8(v) },
		func(c *CPU, v byte) { c.Reg.A = c.sbc8(v) },
		func(c *CPU, v byte) { c.and8(v) },
		func(c *CPU, v byte) { c.xor8(v) },
		func(c *CPU, v byte) { c.or8(v) },
		func(c *CPU, v byte) { c.cp8(v) },
	}
	for op := 0x80; op <= 0xBF; op++ {
		src := r8[op&7]
		alu := aluOps[(op>>3)&7]
		opcodeTable[op] = opALU(src, alu)
	}

	opcodeTable[0xC0] = opRETcc(condNZ)
	opcodeTable[0xC1] = opPOP(regBC{})
	opcodeTable[0xC2] = opJPcc(condNZ)
	opcodeTable[0xC3] = opJP
	opcodeTable[0xC4] = opCALLcc(condNZ)
	opcodeTable[0xC5] = opPUSH(regBC{})
	opcodeTable[0xC6] = opALUImm(func(c *CPU, v byte) { c.add8(v) })
	opcodeTable[0xC7] = opRST(0x00)
	opcodeTable[0xC8] = opRETcc(condZ)
	opcodeTable[0xC9] = opRET
	opcodeTable[0xCA] = opJPcc(condZ)
	opcodeTable[0xCB] = opCBPrefix
	opcodeTable[0xCC] = opCALLcc(condZ)
	opcodeTable[0xCD] = opCALL
	opcodeTable[0xCE] = opALUImm(func(c *CPU, v byte) { c.adc8(v) })
	opcodeTable[0xCF] = opRST(0x08)

	opcodeTable[0xD0] = opRETcc(condNC)
	opcodeTable[0xD1] = opPOP(regDE{})
	opcodeTable[0xD2] = opJPcc(condNC)
	opcodeTable[0xD4] = opCALLcc(condNC)
	opcodeTable[0xD5] = opPUSH(regDE{})
	opcodeTable[0xD6] = opALUImm(func(c *CPU, v byte) { c.Reg.A = c.sub8(v) })
	opcodeTable[0xD7] = opRST(0x10)
	opcodeTable[0xD8] = opRETcc(condC)
	opcodeTable[0xD9] = opRETI
	opcodeTable[0xDA] = opJPcc(condC)
	opcodeTable[0xDC] = opCALLcc(condC)
	opcodeTable[0xDE] = opALUImm(func(c *CPU, v byte) { c.Reg.A = c.sbc8(v) })
	opcodeTable[0xDF] = opRST(0x18)

	opcodeTable[0xE0] = opLDHaA
	opcodeTable[0xE1] = opPOP(regHL{})
	opcodeTable[0xE2] = opLDHighCA
	opcodeTable[0xE5] = opPUSH(regHL{})
	opcodeTable[0xE6] = opALUImm(func(c *CPU, v byte) { c.and8(v) })
	opcodeTable[0xE7] = opRST(0x20)
	opcodeTable[0xE8] = opAddSPImm
	opcodeTable[0xE9] = opJPHL
	opcodeTable[0xEA] = opLDa16A
	opcodeTable[0xEE] = opALUImm(func(c *CPU, v byte) { c.xor8(v) })
	opcodeTable[0xEF] = opRST(0x28)

	opcodeTable[0xF0] = opLDHAa
	opcodeTable[0xF1] = opPOP(regAF{})
	opcodeTable[0xF2] = opLDAHighC
	opcodeTable[0xF3] = opDI
	opcodeTable[0xF5] = opPUSH(regAF{})
	opcodeTable[0xF6] = opALUImm(func(c *CPU, v byte) { c.or8(v) })
	opcodeTable[0xF7] = opRST(0x30)
	opcodeTable[0xF8] = opLDHLSPImm
	opcodeTable[0xF9] = opLDSPHL
	opcodeTable[0xFA] = opLDAa16
	opcodeTable[0xFB] = opEI
	opcodeTable[0xFE] = opALUImm(func(c *CPU, v byte) { c.cp8(v) })
	opcodeTable[0xFF] = opRST(0x38)
}

func opNOP(c *CPU) int { return 1 }

func opSTOP(c *CPU) int {
	c.fetch8() // STOP is a 2-byte opcode; the second byte is discarded
	return 1
}

func opLD16(dst operand16) func(*CPU) int {
	return func(c *CPU) int {
		v := immediate16{}.Read(c)
		dst.Write(c, v)
		return 1 + immediate16{}.Cycles()
	}
}

func opLD8(dst operand8) func(*CPU) int {
	return func(c *CPU) int {
		v := immediate8{}.Read(c)
		dst.Write(c, v)
		return 1 + dst.Cycles() + immediate8{}.Cycles()
	}
}

func opLDrr(dst, src operand8) func(*CPU) int {
	return func(c *CPU) int {
		dst.Write(c, src.Read(c))
		return 1 + dst.Cycles() + src.Cycles()
	}
}

func opALU(src operand8, op func(*CPU, byte)) func(*CPU) int {
	return func(c *CPU) int {
		op(c, src.Read(c))
		return 1 + src.Cycles()
	}
}

func opALUImm(op func(*CPU, byte)) func(*CPU) int {
	return func(c *CPU) int {
		v := immediate8{}.Read(c)
		op(c, v)
		return 1 + immediate8{}.Cycles()
	}
}

func opStoreIndirectA(dst operand8) func(*CPU) int {
	return func(c *CPU) int {
		dst.Write(c, c.Reg.A)
		return 1 + dst.Cycles()
	}
}

func opLoadIndirectA(src operand8) func(*CPU) int {
	return func(c *CPU) int {
		c.Reg.A = src.Read(c)
		return 1 + src.Cycles()
	}
}

func opInc8(rw operand8) func(*CPU) int {
	return func(c *CPU) int {
		rw.Write(c, c.inc8(rw.Read(c)))
		return 1 + 2*rw.Cycles()
	}
}

func opDec8(rw operand8) func(*CPU) int {
	return func(c *CPU) int {
		rw.Write(c, c.dec8(rw.Read(c)))
		return 1 + 2*rw.Cycles()
	}
}

func opInc16(rw operand16) func(*CPU) int {
	return func(c *CPU) int {
		rw.Write(c, rw.Read(c)+1)
		return 2
	}
}

func opDec16(rw operand16) func(*CPU) int {
	return func(c *CPU) int {
		rw.Write(c, rw.Read(c)-1)
		return 2
	}
}

func opAddHL(src operand16) func(*CPU) int {
	return func(c *CPU) int {
		c.addHL(src.Read(c))
		return 2
	}
}

func opRLCA(c *CPU) int {
	c.Reg.A = c.rlc(c.Reg.A)
	c.Reg.SetFlagZ(false)
	return 1
}

func opRRCA(c *CPU) int {
	c.Reg.A = c.rrc(c.Reg.A)
	c.Reg.SetFlagZ(false)
	return 1
}

func opRLA(c *CPU) int {
	c.Reg.A = c.rl(c.Reg.A)
	c.Reg.SetFlagZ(false)
	return 1
}

func opRRA(c *CPU) int {
	c.Reg.A = c.rr(c.Reg.A)
	c.Reg.SetFlagZ(false)
	return 1
}

func opLDa16SP(c *CPU) int {
	addr := immediate16{}.Read(c)
	c.bus.Write(addr, byte(c.Reg.SP))
	c.bus.Write(addr+1, byte(c.Reg.SP>>8))
	return 5
}

func opLDHLIncA(c *CPU) int {
	hl := c.Reg.HL()
	c.bus.Write(hl, c.Reg.A)
	c.Reg.SetHL(hl + 1)
	return 2
}

func opLDHLDecA(c *CPU) int {
	hl := c.Reg.HL()
	c.bus.Write(hl, c.Reg.A)
	c.Reg.SetHL(hl - 1)
	return 2
}

func opLDAHLInc(c *CPU) int {
	hl := c.Reg.HL()
	c.Reg.A = c.bus.Read(hl)
	c.Reg.SetHL(hl + 1)
	return 2
}

func opLDAHLDec(c *CPU) int {
	hl := c.Reg.HL()
	c.Reg.A = c.bus.Read(hl)
	c.Reg.SetHL(hl - 1)
	return 2
}

func opCPL(c *CPU) int {
	c.Reg.A = ^c.Reg.A
	c.Reg.SetFlagN(true)
	c.Reg.SetFlagH(true)
	return 1
}

func opSCF(c *CPU) int {
	c.Reg.SetFlagC(true)
	c.Reg.SetFlagN(false)
	c.Reg.SetFlagH(false)
	return 1
}

func opCCF(c *CPU) int {
	c.Reg.SetFlagC(!c.Reg.FlagC())
	c.Reg.SetFlagN(false)
	c.Reg.SetFlagH(false)
	return 1
}

// opDAA adjusts A into packed BCD after an ADD/SUB, per the LR35902
// reference algorithm driven by N/H/C.
func opDAA(c *CPU) int {
	a := c.Reg.A
	adjust := byte(0)
	carry := c.Reg.FlagC()
	if c.Reg.FlagN() {
		if c.Reg.FlagH() {
			adjust |= 0x06
		}
		if c.Reg.FlagC() {
			adjust |= 0x60
		}
		a -= adjust
	} else {
		if c.Reg.FlagH() || a&0x0F > 0x09 {
			adjust |= 0x06
		}
		if c.Reg.FlagC() || a > 0x99 {
			adjust |= 0x60
			carry = true
		}
		a += adjust
	}
	c.Reg.A = a
	c.Reg.SetFlagZ(a == 0)
	c.Reg.SetFlagH(false)
	c.Reg.SetFlagC(carry)
	return 1
}

func opHALT(c *CPU) int {
	c.halted = true
	return 1
}

// --- branches ---

func condNZ(c *CPU) bool { return !c.Reg.FlagZ() }
func condZ(c *CPU) bool  { return c.Reg.FlagZ() }
func condNC(c *CPU) bool { return !c.Reg.FlagC() }
func condC(c *CPU) bool  { return c.Reg.FlagC() }

func opJR(c *CPU) int {
	e := int8(c.fetch8())
	c.Reg.PC = uint16(int32(c.Reg.PC) + int32(e))
	return 3
}

func opJRcc(cond func(*CPU) bool) func(*CPU) int {
	return func(c *CPU) int {
		e := int8(c.fetch8())
		if !cond(c) {
			return 2
		}
		c.Reg.PC = uint16(int32(c.Reg.PC) + int32(e))
		return 3
	}
}

func opJP(c *CPU) int {
	addr := immediate16{}.Read(c)
	c.Reg.PC = addr
	return 4
}

func opJPcc(cond func(*CPU) bool) func(*CPU) int {
	return func(c *CPU) int {
		addr := immediate16{}.Read(c)
		if !cond(c) {
			return 3
		}
		c.Reg.PC = addr
		return 4
	}
}

func opJPHL(c *CPU) int {
	c.Reg.PC = c.Reg.HL()
	return 1
}

func opCALL(c *CPU) int {
	addr := immediate16{}.Read(c)
	c.push16(c.Reg.PC)
	c.Reg.PC = addr
	return 6
}

func opCALLcc(cond func(*CPU) bool) func(*CPU) int {
	return func(c *CPU) int {
		addr := immediate16{}.Read(c)
		if !cond(c) {
			return 3
		}
		c.push16(c.Reg.PC)
		c.Reg.PC = addr
		return 6
	}
}

func opRET(c *CPU) int {
	c.Reg.PC = c.pop16()
	return 4
}

func opRETcc(cond func(*CPU) bool) func(*CPU) int {
	return func(c *CPU) int {
		if !cond(c) {
			return 2
		}
		c.Reg.PC = c.pop16()
		return 5
	}
}

func opRETI(c *CPU) int {
	c.Reg.PC = c.pop16()
	c.ime = true
	return 4
}

func opRST(vector uint16) func(*CPU) int {
	return func(c *CPU) int {
		c.push16(c.Reg.PC)
		c.Reg.PC = vector
		return 4
	}
}

func opPUSH(src operand16) func(*CPU) int {
	return func(c *CPU) int {
		c.push16(src.Read(c))
		return 4
	}
}

func opPOP(dst operand16) func(*CPU) int {
	return func(c *CPU) int {
		dst.Write(c, c.pop16())
		return 3
	}
}

func opLDHaA(c *CPU) int {
	n := c.fetch8()
	c.bus.Write(0xFF00+uint16(n), c.Reg.A)
	return 3
}

func opLDHAa(c *CPU) int {
	n := c.fetch8()
	c.Reg.A = c.bus.Read(0xFF00 + uint16(n))
	return 3
}

func opLDHighCA(c *CPU) int {
	c.bus.Write(0xFF00+uint16(c.Reg.C), c.Reg.A)
	return 2
}

func opLDAHighC(c *CPU) int {
	c.Reg.A = c.bus.Read(0xFF00 + uint16(c.Reg.C))
	return 2
}

func opLDa16A(c *CPU) int {
	addr := immediate16{}.Read(c)
	c.bus.Write(addr, c.Reg.A)
	return 4
}

func opLDAa16(c *CPU) int {
	addr := immediate16{}.Read(c)
	c.Reg.A = c.bus.Read(addr)
	return 4
}

func opAddSPImm(c *CPU) int {
	e := int8(c.fetch8())
	c.Reg.SP = c.addSPSigned(e)
	return 4
}

func opLDHLSPImm(c *CPU) int {
	e := int8(c.fetch8())
	c.Reg.SetHL(c.addSPSigned(e))
	return 3
}

func opLDSPHL(c *CPU) int {
	c.Reg.SP = c.Reg.HL()
	return 2
}

func opDI(c *CPU) int {
	c.ime = false
	c.eiDelay = 0
	return 1
}

func opEI(c *CPU) int {
	c.eiDelay = 1
	return 1
}
