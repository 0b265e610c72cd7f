package ui

import "testing"

func TestRGBToRGBA_ExpandsAndFillsOpaqueAlpha(t *testing.T) {
	src := []byte{10, 20, 30, 40, 50, 60}
	dst := make([]byte, 8)
	rgbToRGBA(src, dst)

	want := []byte{10, 20, 30, 0xFF, 40, 50, 60, 0xFF}
	for i, v := range want {
		if dst[i] != v {
			t.Fatalf("dst[%d] = %d, want %d", i, dst[i], v)
		}
	}
}

func TestConfig_DefaultsFillsZeroValues(t *testing.T) {
	var c Config
	c.Defaults()
	if c.Title == "" {
		t.Fatal("expected non-empty default title")
	}
	if c.Scale <= 0 {
		t.Fatal("expected positive default scale")
	}
}
