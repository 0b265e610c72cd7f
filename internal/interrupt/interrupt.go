// Package interrupt implements the IE/IF priority encoder shared by the CPU
// driver and the subsystems that request interrupts (timer, PPU, joypad,
// serial). It holds no state of its own — IE and IF live on the bus, which
// is the only component with reason to touch them directly; this package is
// the pure decision logic described in spec §4.3.
package interrupt

// Bit positions within IF/IE, highest priority first.
const (
	VBlank = iota
	LCDStat
	Timer
	Serial
	Joypad
)

// Vectors maps each interrupt bit to its dispatch address.
var vectors = [5]uint16{
	VBlank:  0x40,
	LCDStat: 0x48,
	Timer:   0x50,
	Serial:  0x58,
	Joypad:  0x60,
}

// Vector returns the dispatch address for an interrupt bit.
func Vector(bit int) uint16 { return vectors[bit] }

// Pending returns the highest-priority requested-and-enabled interrupt bit
// (VBlank first), and whether any bit of ie&iflag&0x1F is set at all.
func Pending(ie, iflag byte) (bit int, ok bool) {
	active := ie & iflag & 0x1F
	if active == 0 {
		return 0, false
	}
	for b := 0; b < 5; b++ {
		if active&(1<<uint(b)) != 0 {
			return b, true
		}
	}
	return 0, false
}
