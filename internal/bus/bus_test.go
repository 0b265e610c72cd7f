package bus

import "testing"

func makeROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x0147] = 0x00
	rom[0x0148] = 0x00
	return rom
}

func TestEchoMirror_WriteThroughWRAM(t *testing.T) {
	b := New(makeROM())
	b.Write(0xC010, 0x42)
	if got := b.Read(0xE010); got != 0x42 {
		t.Fatalf("echo read got %#02x want 0x42", got)
	}
}

func TestEchoMirror_WriteThroughEcho(t *testing.T) {
	b := New(makeROM())
	b.Write(0xE020, 0x7A)
	if got := b.Read(0xC020); got != 0x7A {
		t.Fatalf("wram read got %#02x want 0x7A", got)
	}
}

func TestROMWrite_Discarded(t *testing.T) {
	rom := makeROM()
	rom[0x0100] = 0x11
	b := New(rom)
	b.Write(0x0100, 0xFF)
	if got := b.Read(0x0100); got != 0x11 {
		t.Fatalf("ROM byte got %#02x want unchanged 0x11", got)
	}
}

func TestDIVWrite_ResetsToZero(t *testing.T) {
	b := New(makeROM())
	for i := 0; i < 1000; i++ {
		b.Tick()
	}
	if b.Read(0xFF04) == 0 {
		t.Fatal("expected DIV to have advanced before the reset write")
	}
	b.Write(0xFF04, 0x99)
	if got := b.Read(0xFF04); got != 0 {
		t.Fatalf("DIV after write got %#02x want 0", got)
	}
}

func TestDMA_CopiesToOAM(t *testing.T) {
	b := New(makeROM())
	for i := 0; i < 0xA0; i++ {
		b.wram[i] = byte(i)
	}
	b.Write(0xFF46, 0xC0) // source 0xC000
	for i := 0; i < 0xA0; i++ {
		if got := b.Read(0xFE00 + uint16(i)); got != byte(i) {
			t.Fatalf("OAM[%d] got %#02x want %#02x", i, got, byte(i))
		}
	}
}

func TestWriteWatch_ConsumedAndCleared(t *testing.T) {
	b := New(makeROM())
	b.Write(0xFF14, 0x80)
	if !b.ConsumeWrite(0xFF14) {
		t.Fatal("expected write-watch flag set after write to NR14")
	}
	if b.ConsumeWrite(0xFF14) {
		t.Fatal("expected write-watch flag cleared after consuming")
	}
}

func TestP1_NoGroupSelected_ReadsAllReleased(t *testing.T) {
	b := New(makeROM())
	b.SetButtons(ButtonRight | ButtonA)
	if got := b.Read(0xFF00); got != 0xFF {
		t.Fatalf("P1 got %#02x want 0xFF (no group selected)", got)
	}
}

func TestP1_DPadSelected_ReflectsPressedButtons(t *testing.T) {
	b := New(makeROM())
	b.Write(0xFF00, 0x20) // select D-pad (bit 4 low), deselect buttons
	b.SetButtons(ButtonRight | ButtonDown)
	got := b.Read(0xFF00)
	want := byte(0xC0 | 0x20 | 0x06) // bits 0 (right) and 3 (down) clear
	if got != want {
		t.Fatalf("P1 got %#08b want %#08b", got, want)
	}
}

func TestP1_ButtonsSelected_ReflectsPressedButtons(t *testing.T) {
	b := New(makeROM())
	b.Write(0xFF00, 0x10) // select face buttons (bit 5 low), deselect D-pad
	b.SetButtons(ButtonA | ButtonStart)
	got := b.Read(0xFF00)
	want := byte(0xC0 | 0x10 | 0x06) // bits 0 (A) and 3 (start) clear
	if got != want {
		t.Fatalf("P1 got %#08b want %#08b", got, want)
	}
}

func TestP1_PressWhileSelected_RequestsJoypadInterrupt(t *testing.T) {
	b := New(makeROM())
	b.Write(0xFF00, 0x20) // select D-pad
	b.SetIF(0)
	if b.IF()&(1<<4) != 0 {
		t.Fatal("joypad interrupt flag set before any button transition")
	}
	b.SetButtons(ButtonUp)
	if b.IF()&(1<<4) == 0 {
		t.Fatal("expected joypad interrupt requested on 1->0 transition")
	}
}

func TestP1_PressWhileGroupNotSelected_NoInterrupt(t *testing.T) {
	b := New(makeROM())
	b.Write(0xFF00, 0x20) // select D-pad, buttons group deselected
	b.SetIF(0)
	b.SetButtons(ButtonA) // A belongs to the deselected buttons group
	if b.IF()&(1<<4) != 0 {
		t.Fatal("expected no joypad interrupt for a button in the unselected group")
	}
}
