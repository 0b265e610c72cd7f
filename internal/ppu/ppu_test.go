package ppu

import "testing"

func TestNew_PostBootState(t *testing.T) {
	p := New(nil)
	if p.CPURead(0xFF40) != 0x91 {
		t.Fatalf("LCDC got %#02x want 0x91", p.CPURead(0xFF40))
	}
	if p.CPURead(0xFF47) != 0xFC {
		t.Fatalf("BGP got %#02x want 0xFC", p.CPURead(0xFF47))
	}
}

func TestLY_StaysInRange(t *testing.T) {
	p := New(nil)
	for i := 0; i < 17556*3; i++ {
		p.Tick()
		if p.LY() >= 154 {
			t.Fatalf("LY out of range: %d", p.LY())
		}
		if p.Mode() > ModeTransfer {
			t.Fatalf("mode out of range: %d", p.Mode())
		}
	}
}

func TestFrameTickCount(t *testing.T) {
	p := New(nil)
	lyHistory := map[byte]bool{}
	for i := 0; i < 17556; i++ {
		p.Tick()
		lyHistory[p.LY()] = true
	}
	// A full frame should have visited every scanline 0..153 exactly once
	// in sequence (114 cycles/line * 144 + 1140 vblank == 17556).
	if len(lyHistory) != lyMax {
		t.Fatalf("expected every scanline 0..153 visited in a frame, got %d distinct LY values", len(lyHistory))
	}
}

func TestVRAMReadWrite(t *testing.T) {
	p := New(nil)
	p.CPUWrite(0x8000, 0x42)
	if got := p.CPURead(0x8000); got != 0x42 {
		t.Fatalf("VRAM readback got %#02x want 0x42", got)
	}
}

func TestOAMReadWrite(t *testing.T) {
	p := New(nil)
	p.CPUWrite(0xFE10, 0x99)
	if got := p.CPURead(0xFE10); got != 0x99 {
		t.Fatalf("OAM readback got %#02x want 0x99", got)
	}
}

func TestSTATModeBitsReadOnly(t *testing.T) {
	p := New(nil)
	before := p.Mode()
	p.CPUWrite(0xFF41, 0xFF)
	if p.Mode() != before {
		t.Fatalf("STAT mode bits should not be writable: got %v want %v", p.Mode(), before)
	}
}
