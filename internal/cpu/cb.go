package cpu

// cbTable is the CB-prefixed 256-entry table (spec §4.2): rotates, shifts,
// SWAP, and BIT/RES/SET across all registers and (HL), selected by the low
// 3 bits (operand) and the middle 3 bits (operation/bit index) of the
// opcode. Built programmatically at init time rather than 256 hand-written
// entries, since the structure is fully regular.
var cbTable [256]func(*CPU) int

func init() {
	for op := 0; op < 256; op++ {
		operand := r8[op&7]
		mid := (op >> 3) & 7
		switch op >> 6 {
		case 0b00:
			cbTable[op] = cbRotateShift(operand, mid)
		case 0b01:
			cbTable[op] = cbBit(operand, uint(mid))
		case 0b10:
			cbTable[op] = cbRes(operand, uint(mid))
		case 0b11:
			cbTable[op] = cbSet(operand, uint(mid))
		}
	}
}

// opCBPrefix is opcodeTable[0xCB]'s handler: it fetches the second opcode
// byte and dispatches into cbTable. Total cost is the 2-byte prefix fetch
// plus whatever extra memory-access cost the operation itself reports.
func opCBPrefix(c *CPU) int {
	op := c.fetch8()
	return 1 + cbTable[op](c)
}

var rotateShiftOps = [8]func(*CPU, byte) byte{
	(*CPU).rlc,
	(*CPU).rrc,
	(*CPU).rl,
	(*CPU).rr,
	(*CPU).sla,
	(*CPU).sra,
	(*CPU).swap,
	(*CPU).srl,
}

func cbRotateShift(operand operand8, mid int) func(*CPU) int {
	op := rotateShiftOps[mid]
	return func(c *CPU) int {
		r := op(c, operand.Read(c))
		operand.Write(c, r)
		c.Reg.SetFlagZ(r == 0)
		return 1 + 2*operand.Cycles()
	}
}

func cbBit(operand operand8, n uint) func(*CPU) int {
	return func(c *CPU) int {
		c.bit(operand.Read(c), n)
		return 1 + operand.Cycles()
	}
}

func cbRes(operand operand8, n uint) func(*CPU) int {
	return func(c *CPU) int {
		v := operand.Read(c) &^ (1 << n)
		operand.Write(c, v)
		return 1 + 2*operand.Cycles()
	}
}

func cbSet(operand operand8, n uint) func(*CPU) int {
	return func(c *CPU) int {
		v := operand.Read(c) | (1 << n)
		operand.Write(c, v)
		return 1 + 2*operand.Cycles()
	}
}
