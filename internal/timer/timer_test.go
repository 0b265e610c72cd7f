package timer

import "testing"

// TestOverflow reproduces spec §8 property 8: TIMA=0xFF, TAC=0x05 (enabled,
// 4-cycle period), 5 machine cycles later IF.bit2=1 and TIMA==TMA.
func TestOverflow(t *testing.T) {
	var ifReg byte
	tm := New(func(bit int) { ifReg |= 1 << uint(bit) })

	var div, tima byte = 0, 0xFF
	tma, tac := byte(0x12), byte(0x05)

	for i := 0; i < 5; i++ {
		tm.Tick(&div, &tima, tma, tac)
	}

	if ifReg&0x04 == 0 {
		t.Fatalf("expected timer interrupt bit set, IF=%#02x", ifReg)
	}
	if tima != tma {
		t.Fatalf("TIMA got %#02x want TMA %#02x", tima, tma)
	}
}

func TestDisabledTimerDoesNotIncrement(t *testing.T) {
	var div, tima byte
	tm := New(nil)
	for i := 0; i < 300; i++ {
		tm.Tick(&div, &tima, 0x00, 0x00) // TAC enable bit clear
	}
	if tima != 0 {
		t.Fatalf("TIMA got %#02x want 0 (timer disabled)", tima)
	}
}

func TestDivIncrementsEvery64Cycles(t *testing.T) {
	var div, tima byte
	tm := New(nil)
	for i := 0; i < 64; i++ {
		tm.Tick(&div, &tima, 0, 0)
	}
	if div != 1 {
		t.Fatalf("DIV got %d want 1 after 64 cycles", div)
	}
}
