package hw

import (
	"image/color"

	"dotmatrix/emu/log"
	"dotmatrix/hw/hwio"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	LineCycles  = 456                   // PPU cycles per scanline
	NumLines    = 154                   // visible lines plus VBlank lines
	FrameCycles = LineCycles * NumLines // 70224

	oamScanCycles  = 80
	transferCycles = 172
	hblankCycles   = 204

	maxLineSprites = 10
	numTiles       = 384
)

//go:generate go tool stringer -type=Mode

// Mode is the PPU state, its value is the STAT mode bit encoding.
type Mode uint8

const (
	HBlank Mode = iota
	VBlank
	OAMScan
	PixelTransfer
)

// DefaultPalette is the original green LCD, from lightest to darkest.
var DefaultPalette = [4]uint32{0x9BBC0F, 0x8BAC0F, 0x306230, 0x0F380F}

// PPU is the pixel processing unit. It's driven by the cycles the CPU
// reports and draws one line at a time into an RGBA framebuffer.
type PPU struct {
	bus *Bus
	irq *Interrupts

	LCDC hwio.Reg8 `hwio:"offset=0x00,wcb"`
	STAT hwio.Reg8 `hwio:"offset=0x01,rwmask=0x78,rcb,wcb"`
	SCY  hwio.Reg8 `hwio:"offset=0x02"`
	SCX  hwio.Reg8 `hwio:"offset=0x03"`
	LY   hwio.Reg8 `hwio:"offset=0x04,readonly"`
	LYC  hwio.Reg8 `hwio:"offset=0x05,wcb"`
	DMA  hwio.Reg8 `hwio:"offset=0x06,wcb"`
	BGP  hwio.Reg8 `hwio:"offset=0x07"`
	OBP0 hwio.Reg8 `hwio:"offset=0x08"`
	OBP1 hwio.Reg8 `hwio:"offset=0x09"`
	WY   hwio.Reg8 `hwio:"offset=0x0A"`
	WX   hwio.Reg8 `hwio:"offset=0x0B"`

	mode     Mode
	cycles   int  // cycles spent in the current mode
	winLine  int  // window internal line counter
	statLine bool // combined STAT interrupt line

	sprites  [maxLineSprites]Sprite
	nsprites int

	tiles    [numTiles]Tile
	dirty    [numTiles]bool
	anyDirty bool

	frame   []byte
	palette [4]color.RGBA
}

// NewPPU creates a PPU and maps its registers on the bus.
func NewPPU(bus *Bus, irq *Interrupts) *PPU {
	p := &PPU{
		bus:   bus,
		irq:   irq,
		frame: make([]byte, ScreenWidth*ScreenHeight*4),
	}
	hwio.MustInitRegs(p)
	p.SetPalette(DefaultPalette)
	bus.MapBank(0xFF40, p, 0)
	bus.WatchVRAM(p.markTile)
	p.Reset(false)
	return p
}

// Reset sets the PPU registers to their power-on values. Without boot image,
// they're the values the boot program leaves behind, the LCD being on.
func (p *PPU) Reset(withBoot bool) {
	for _, r := range []*hwio.Reg8{&p.LCDC, &p.STAT, &p.SCY, &p.SCX, &p.LY, &p.LYC, &p.BGP, &p.OBP0, &p.OBP1, &p.WY, &p.WX} {
		r.Value = 0
	}
	for i := range p.dirty {
		p.dirty[i] = true
	}
	p.anyDirty = true
	p.cycles = 0
	p.winLine = 0
	p.statLine = false
	p.mode = HBlank

	if withBoot {
		return
	}
	p.BGP.Value = 0xFC
	p.OBP0.Value = 0xFF
	p.OBP1.Value = 0xFF
	p.LCDC.Write8(0xFF40, 0x91)
}

// SetPalette sets the 4 colours shades map to, as 0xRRGGBB values.
func (p *PPU) SetPalette(pal [4]uint32) {
	for i, rgb := range pal {
		p.palette[i] = color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xFF}
	}
}

// SetFrame sets the buffer the next lines are drawn into. It must hold
// ScreenWidth*ScreenHeight RGBA pixels.
func (p *PPU) SetFrame(buf []byte) { p.frame = buf }

// Frame returns the framebuffer being drawn.
func (p *PPU) Frame() []byte { return p.frame }

func (p *PPU) Mode() Mode { return p.mode }

func (p *PPU) enabled() bool { return p.LCDC.Value&lcdcEnable != 0 }

// Tick advances the PPU by the given number of cycles and reports whether
// a frame has been completed, that is whether VBlank has been entered.
func (p *PPU) Tick(cycles int) (frameReady bool) {
	if !p.enabled() {
		return false
	}

	p.cycles += cycles
	for {
		switch p.mode {
		case OAMScan:
			if p.cycles < oamScanCycles {
				return frameReady
			}
			p.cycles -= oamScanCycles
			p.setMode(PixelTransfer)

		case PixelTransfer:
			if p.cycles < transferCycles {
				return frameReady
			}
			p.cycles -= transferCycles
			p.decodeTiles()
			p.setMode(HBlank)
			p.drawLine()

		case HBlank:
			if p.cycles < hblankCycles {
				return frameReady
			}
			p.cycles -= hblankCycles
			p.setLY(p.LY.Value + 1)
			if p.LY.Value == ScreenHeight {
				p.setMode(VBlank)
				p.irq.Request(IntVBlank)
				frameReady = true
				continue
			}
			p.startLine()

		case VBlank:
			if p.cycles < LineCycles {
				return frameReady
			}
			p.cycles -= LineCycles
			if p.LY.Value+1 == NumLines {
				p.setLY(0)
				p.winLine = 0
				p.startLine()
				continue
			}
			p.setLY(p.LY.Value + 1)
		}
	}
}

func (p *PPU) startLine() {
	p.setMode(OAMScan)
	p.scanOAM()
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	p.STAT.Value = p.STAT.Value&^0b11 | uint8(m)
	p.updateStat()
}

func (p *PPU) setLY(ly uint8) {
	p.LY.Value = ly
	p.updateStat()
}

// updateStat refreshes the coincidence flag and requests the STAT interrupt
// on the rising edge of the combined interrupt line.
func (p *PPU) updateStat() {
	hwio.SetBitTo(&p.STAT.Value, statCoincidence, p.LY.Value == p.LYC.Value)

	s := p.STAT.Value
	line := hwio.Bit(s, statLYCInt) && hwio.Bit(s, statCoincidence)
	switch p.mode {
	case HBlank:
		line = line || hwio.Bit(s, statHBlankInt)
	case VBlank:
		line = line || hwio.Bit(s, statVBlankInt)
	case OAMScan:
		line = line || hwio.Bit(s, statOAMInt)
	}
	if !p.enabled() {
		line = false
	}

	if line && !p.statLine {
		p.irq.Request(IntLCDStat)
	}
	p.statLine = line
}

// turnOff and turnOn reset the line and cycle counters. The mode reported
// by STAT while the LCD is off is HBlank.
func (p *PPU) turnOff() {
	p.cycles = 0
	p.LY.Value = 0
	p.winLine = 0
	p.mode = HBlank
	p.STAT.Value &^= 0b11
	p.statLine = false
	log.ModPPU.DebugZ("LCD off").End()
}

func (p *PPU) turnOn() {
	p.cycles = 0
	p.LY.Value = 0
	p.winLine = 0
	p.startLine()
	log.ModPPU.DebugZ("LCD on").End()
}
