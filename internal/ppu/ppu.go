// Package ppu implements the LCD mode state machine and background
// scanline renderer described in spec §4.5, grounded directly on
// original_source/src/video.rs's line_counter/mode_counter split and
// re-expressed with the CPURead/CPUWrite/Tick method shapes the teacher
// codebase uses for its PPU.
//
// Window and sprite rendering are not implemented — spec §4.5/§9 name them
// as TODOs, and neither is exercised by any named test.
package ppu

import "github.com/pixeldivider/dmgcore/internal/interrupt"

const (
	screenWidth  = 160
	screenHeight = 144
	lyMax        = 154

	ticksHBlank   = 51
	ticksOAM      = 20
	ticksTransfer = 43
	ticksPerLine  = ticksHBlank + ticksOAM + ticksTransfer // 114
	ticksVBlank   = 1140

	bytesPerPixel = 3
	bytesPerLine  = screenWidth * bytesPerPixel
	bytesPerTile  = 16
	tilesPerRow   = 32
)

// Mode is the LCD mode encoded in STAT bits 1:0.
type Mode byte

const (
	ModeHBlank   Mode = 0
	ModeVBlank   Mode = 1
	ModeOAM      Mode = 2
	ModeTransfer Mode = 3
)

// Requester raises an interrupt bit.
type Requester func(bit int)

// PPU owns VRAM, OAM, and the LCD-facing I/O registers (LCDC/STAT/SCY/SCX/
// LY/LYC/BGP/OBP0/OBP1/WY/WX), plus the 160x144 RGB24 framebuffer spec §6
// describes.
type PPU struct {
	vram [0x2000]byte // 0x8000-0x9FFF
	oam  [0xA0]byte   // 0xFE00-0xFE9F

	lcdc byte
	stat byte
	scy  byte
	scx  byte
	ly   byte
	lyc  byte
	bgp  byte
	obp0 byte
	obp1 byte
	wy   byte
	wx   byte

	modeCounter int // machine cycles left in current LCD mode
	lineCounter int // machine cycles left in current scanline

	fb [screenHeight * bytesPerLine]byte

	req Requester
}

// New constructs a PPU in its post-boot state (spec §3: LCDC=0x91, BGP=0xFC).
func New(req Requester) *PPU {
	return &PPU{
		lcdc:        0x91,
		bgp:         0xFC,
		obp0:        0xFF,
		obp1:        0xFF,
		modeCounter: ticksOAM,
		lineCounter: ticksPerLine,
		req:         req,
	}
}

// Mode returns the current LCD mode (STAT bits 1:0).
func (p *PPU) Mode() Mode { return Mode(p.stat & 0x03) }

// LY returns the current scanline.
func (p *PPU) LY() byte { return p.ly }

// Framebuffer returns the 160x144 RGB24 framebuffer, row-major, no padding.
func (p *PPU) Framebuffer() []byte { return p.fb[:] }

// CPURead returns a byte from VRAM, OAM, or a PPU IO register. Any other
// address returns 0xFF, matching the "unhandled reads return 0xFF" rule of
// spec §4.1.
func (p *PPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		return p.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return p.oam[addr-0xFE00]
	case addr == 0xFF40:
		return p.lcdc
	case addr == 0xFF41:
		return p.stat
	case addr == 0xFF42:
		return p.scy
	case addr == 0xFF43:
		return p.scx
	case addr == 0xFF44:
		return p.ly
	case addr == 0xFF45:
		return p.lyc
	case addr == 0xFF47:
		return p.bgp
	case addr == 0xFF48:
		return p.obp0
	case addr == 0xFF49:
		return p.obp1
	case addr == 0xFF4A:
		return p.wy
	case addr == 0xFF4B:
		return p.wx
	default:
		return 0xFF
	}
}

// CPUWrite writes to VRAM, OAM, or a PPU IO register. The bus routes OAM
// DMA bytes through this same path — spec §4.1 treats DMA as instantaneous
// from the guest's perspective, so there is no separate mode-gated path.
func (p *PPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		p.vram[addr-0x8000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		p.oam[addr-0xFE00] = value
	case addr == 0xFF40:
		p.lcdc = value
	case addr == 0xFF41:
		// Bits 1:0 (mode) are driven by the state machine, not writable.
		p.stat = (p.stat & 0x07) | (value & 0xF8)
	case addr == 0xFF42:
		p.scy = value
	case addr == 0xFF43:
		p.scx = value
	case addr == 0xFF44:
		// LY is read-only on real hardware; ignore writes.
	case addr == 0xFF45:
		p.lyc = value
	case addr == 0xFF47:
		p.bgp = value
	case addr == 0xFF48:
		p.obp0 = value
	case addr == 0xFF49:
		p.obp1 = value
	case addr == 0xFF4A:
		p.wy = value
	case addr == 0xFF4B:
		p.wx = value
	}
}

// Tick advances the PPU by one machine cycle: spec §4.5's line_counter
// always runs (driving LY and the LYC coincidence flag); mode_counter
// drives the OAM->Transfer->HBlank->(VBlank) state machine independently.
func (p *PPU) Tick() {
	if p.lineCounter == 0 {
		ly := p.ly
		p.ly = (ly + 1) % lyMax
		p.updateCoincidence(ly)
		p.lineCounter = ticksPerLine
	}

	if p.modeCounter == 0 {
		switch p.Mode() {
		case ModeHBlank:
			if p.ly == 144 {
				p.enterMode(ModeVBlank)
			} else {
				p.enterMode(ModeOAM)
			}
		case ModeVBlank:
			p.enterMode(ModeOAM)
		case ModeOAM:
			p.enterMode(ModeTransfer)
		case ModeTransfer:
			p.enterMode(ModeHBlank)
		}
	}

	p.modeCounter--
	p.lineCounter--
}

// updateCoincidence checks LY==LYC using the line that just finished (the
// pre-increment value), per original_source/src/video.rs.
func (p *PPU) updateCoincidence(finishedLY byte) {
	if finishedLY == p.lyc {
		p.stat |= 1 << 2
		if p.stat&(1<<6) != 0 {
			p.requestStat()
		}
	} else {
		p.stat &^= 1 << 2
	}
}

func (p *PPU) requestStat() {
	if p.req != nil {
		p.req(interrupt.LCDStat)
	}
}

func (p *PPU) enterMode(mode Mode) {
	switch mode {
	case ModeHBlank:
		if p.stat&(1<<3) != 0 {
			p.requestStat()
		}
		p.modeCounter = ticksHBlank
	case ModeVBlank:
		if p.req != nil {
			p.req(interrupt.VBlank)
		}
		if p.stat&(1<<4) != 0 {
			p.requestStat()
		}
		p.modeCounter = ticksVBlank
	case ModeOAM:
		if p.stat&(1<<5) != 0 {
			p.requestStat()
		}
		p.modeCounter = ticksOAM
	case ModeTransfer:
		p.renderLine()
		p.modeCounter = ticksTransfer
	}
	p.stat = (p.stat &^ 0x03) | byte(mode)
}

// renderLine draws the background for the current scanline (spec §4.5).
// Window and sprites are not drawn — see package doc.
func (p *PPU) renderLine() {
	if p.ly >= screenHeight {
		return
	}

	tileDataBase := uint16(0x9000)
	signedIndex := true
	if p.lcdc&(1<<4) != 0 {
		tileDataBase = 0x8000
		signedIndex = false
	}

	mapBase := uint16(0x9800)
	if p.lcdc&(1<<3) != 0 {
		mapBase = 0x9C00
	}

	y := (uint16(p.ly) + uint16(p.scy)) % 256

	for sx := 0; sx < screenWidth; sx++ {
		x := (uint16(sx) + uint16(p.scx)) % 256

		tileCol := x / 8
		tileRow := y / 8
		tileIndex := p.vram[mapBase-0x8000+tileRow*tilesPerRow+tileCol]

		var tileAddr uint16
		if signedIndex {
			tileAddr = uint16(int32(tileDataBase) + int32(int8(tileIndex))*bytesPerTile)
		} else {
			tileAddr = tileDataBase + uint16(tileIndex)*bytesPerTile
		}

		rowInTile := y % 8
		lo := p.vram[tileAddr-0x8000+rowInTile*2]
		hi := p.vram[tileAddr-0x8000+rowInTile*2+1]

		bit := 7 - uint(x%8)
		shade := ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
		paletted := (p.bgp >> (shade * 2)) & 0x03

		var grey byte
		switch paletted {
		case 0:
			grey = 255
		case 1:
			grey = 170
		case 2:
			grey = 85
		case 3:
			grey = 0
		}

		idx := (int(p.ly)*screenWidth + sx) * bytesPerPixel
		p.fb[idx] = grey
		p.fb[idx+1] = grey
		p.fb[idx+2] = grey
	}
}
