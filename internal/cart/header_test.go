package cart

import "testing"

func makeROM(title string, cartType, romSize byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0134:0x0144], title)
	rom[0x0147] = cartType
	rom[0x0148] = romSize
	return rom
}

func TestParseHeader_TitleTrimmed(t *testing.T) {
	rom := makeROM("TETRIS", 0x00, 0x00)
	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Title != "TETRIS" {
		t.Fatalf("Title got %q want %q", h.Title, "TETRIS")
	}
}

func TestHeader_Validate_OK(t *testing.T) {
	h, _ := ParseHeader(makeROM("OK", 0x00, 0x00))
	if err := h.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestHeader_Validate_RejectsCartType(t *testing.T) {
	h, _ := ParseHeader(makeROM("MBC", 0x01, 0x00))
	if err := h.Validate(); err == nil {
		t.Fatal("expected error for non-zero cartridge type")
	}
}

func TestHeader_Validate_RejectsROMSize(t *testing.T) {
	h, _ := ParseHeader(makeROM("BIG", 0x00, 0x01))
	if err := h.Validate(); err == nil {
		t.Fatal("expected error for non-zero ROM size code")
	}
}

func TestParseHeader_TooSmall(t *testing.T) {
	if _, err := ParseHeader(make([]byte, 0x10)); err == nil {
		t.Fatal("expected error for undersized rom")
	}
}
