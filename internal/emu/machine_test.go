package emu

import "testing"

func makeROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x0147] = 0x00 // ROM-only
	rom[0x0148] = 0x00 // 32 KiB
	return rom
}

func TestNew_RejectsUndersizedROM(t *testing.T) {
	if _, err := New([]byte{0x00}, nil); err == nil {
		t.Fatal("expected error for undersized ROM")
	}
}

func TestNew_RejectsUnsupportedCartType(t *testing.T) {
	rom := makeROM()
	rom[0x0147] = 0x01 // MBC1, unsupported per spec §1
	if _, err := New(rom, nil); err == nil {
		t.Fatal("expected error for unsupported cartridge type")
	}
}

func TestStepFrame_ReturnsFullFramebuffer(t *testing.T) {
	m, err := New(makeROM(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fb := m.StepFrame()
	if len(fb) != 160*144*3 {
		t.Fatalf("framebuffer len got %d want %d", len(fb), 160*144*3)
	}
}

func TestSetButtons_DoesNotPanic(t *testing.T) {
	m, err := New(makeROM(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.SetButtons(0xFF)
}

func TestStepFrame_FlushesAudioSamples(t *testing.T) {
	var flushCount int
	m, err := New(makeROM(), func(samples []float32) { flushCount++ })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.StepFrame()
	// 17,556 cycles / 16 cycles-per-sample / 1024 samples-per-buffer ~= 1 flush per frame.
	if flushCount == 0 {
		t.Fatal("expected at least one sample buffer flush per frame")
	}
}
