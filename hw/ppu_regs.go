package hw

import (
	"dotmatrix/emu/log"
)

const (
	// LCDC bits

	// Background and window enable. When clear both are blank.
	lcdcBGEnable = 1 << 0

	// Sprites enable.
	lcdcOBJEnable = 1 << 1

	// Sprite size (0: 8x8; 1: 8x16).
	lcdcOBJSize = 1 << 2

	// Background tile map (0: $9800; 1: $9C00).
	lcdcBGMap = 1 << 3

	// Background and window tile data
	// (0: $8800-$97FF signed ids; 1: $8000-$8FFF unsigned ids).
	lcdcTileData = 1 << 4

	// Window enable.
	lcdcWinEnable = 1 << 5

	// Window tile map (0: $9800; 1: $9C00).
	lcdcWinMap = 1 << 6

	// LCD and PPU enable.
	lcdcEnable = 1 << 7
)

const (
	// STAT bits, 0 and 1 hold the mode.
	statCoincidence = 2 // LY == LYC
	statHBlankInt   = 3
	statVBlankInt   = 4
	statOAMInt      = 5
	statLYCInt      = 6
)

func (p *PPU) WriteLCDC(old, val uint8) {
	log.ModPPU.DebugZ("write LCDC").Hex8("val", val).End()

	switch {
	case old&lcdcEnable != 0 && val&lcdcEnable == 0:
		p.turnOff()
	case old&lcdcEnable == 0 && val&lcdcEnable != 0:
		p.turnOn()
	}
}

// ReadSTAT returns STAT, bit 7 is unused and reads 1.
func (p *PPU) ReadSTAT(val uint8) uint8 { return val | 0x80 }

func (p *PPU) WriteSTAT(_, val uint8) {
	log.ModPPU.DebugZ("write STAT").Hex8("val", val).End()
	p.updateStat()
}

func (p *PPU) WriteLYC(_, val uint8) {
	p.updateStat()
}

// WriteDMA starts an OAM DMA transfer from page val. The transfer is
// performed at once.
func (p *PPU) WriteDMA(_, val uint8) {
	src := uint16(val) << 8
	log.ModPPU.DebugZ("OAM DMA").Hex16("src", src).End()
	p.bus.Copy(OAMBase, src, len(p.bus.OAM.Data))
}
