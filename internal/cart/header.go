package cart

import (
	"errors"
	"strings"
)

const headerEnd = 0x014F

// Header holds the cartridge metadata the core validates at load time.
// Only ROM-only (type 0x00), 32 KiB (size code 0x00) images are supported —
// see spec §1/§6.
type Header struct {
	Title    string // trimmed ASCII, 0x0134-0x0143
	CartType byte   // 0x0147
	ROMSize  byte   // 0x0148
	RAMSize  byte   // 0x0149
}

// ParseHeader extracts the cartridge header from a raw ROM image.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, errors.New("rom too small to contain a header")
	}

	rawTitle := rom[0x0134:0x0144]
	title := strings.TrimRight(string(rawTitle), "\x00")

	return &Header{
		Title:    strings.TrimSpace(title),
		CartType: rom[0x0147],
		ROMSize:  rom[0x0148],
		RAMSize:  rom[0x0149],
	}, nil
}

// Validate reports the non-zero-status errors spec §6 requires: any
// cartridge type or ROM size byte other than 0x00 is rejected, since only
// plain 32 KiB ROM-only images are supported (no bank switching).
func (h *Header) Validate() error {
	if h.CartType != 0x00 {
		return errors.New("unsupported cartridge type: only ROM-only (0x00) cartridges are supported")
	}
	if h.ROMSize != 0x00 {
		return errors.New("unsupported ROM size: only 32 KiB (size code 0x00) images are supported")
	}
	return nil
}
