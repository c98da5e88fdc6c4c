package hw

// markTile marks the tile containing VRAM address addr as needing to be
// decoded again.
func (p *PPU) markTile(addr uint16) {
	i := int(addr-VRAMBase) / 16
	if i >= numTiles {
		return // tile maps
	}
	p.dirty[i] = true
	p.anyDirty = true
}

func (p *PPU) decodeTiles() {
	if !p.anyDirty {
		return
	}
	vram := p.bus.VRAM.Data
	for i := range p.tiles {
		if p.dirty[i] {
			decodeTile(&p.tiles[i], vram[i*16:i*16+16])
			p.dirty[i] = false
		}
	}
	p.anyDirty = false
}

func (p *PPU) spriteHeight() int {
	if p.LCDC.Value&lcdcOBJSize != 0 {
		return 16
	}
	return 8
}

// scanOAM selects up to 10 sprites intersecting the current line, in OAM
// order.
func (p *PPU) scanOAM() {
	ly := int(p.LY.Value)
	h := p.spriteHeight()
	oam := p.bus.OAM.Data

	p.nsprites = 0
	for i := 0; i < len(oam) && p.nsprites < maxLineSprites; i += 4 {
		s := decodeSprite(oam[i : i+4])
		if top := s.top(); ly >= top && ly < top+h {
			p.sprites[p.nsprites] = s
			p.nsprites++
		}
	}
}

// bgTile returns the tile referenced by id in the background and window
// tile maps, according to LCDC addressing mode.
func (p *PPU) bgTile(id uint8) *Tile {
	if p.LCDC.Value&lcdcTileData != 0 {
		return &p.tiles[id]
	}
	return &p.tiles[256+int(int8(id))]
}

func (p *PPU) tileMapAt(mapBit uint8, tx, ty int) uint8 {
	base := 0x1800
	if p.LCDC.Value&mapBit != 0 {
		base = 0x1C00
	}
	return p.bus.VRAM.Data[base+ty*32+tx]
}

// drawLine draws the current line. bg holds the background/window colour
// indexes, used for sprite priority.
func (p *PPU) drawLine() {
	ly := int(p.LY.Value)
	row := p.frame[ly*ScreenWidth*4 : (ly+1)*ScreenWidth*4]

	var bg [ScreenWidth]uint8
	if p.LCDC.Value&lcdcBGEnable != 0 {
		p.drawBackground(ly, &bg)
		p.drawWindow(ly, &bg)
		for x, c := range bg {
			p.setPixel(row, x, shade(p.BGP.Value, c))
		}
	} else {
		for x := range bg {
			p.setPixel(row, x, 0)
		}
	}

	if p.LCDC.Value&lcdcOBJEnable != 0 {
		p.drawSprites(ly, row, &bg)
	}
}

func (p *PPU) drawBackground(ly int, bg *[ScreenWidth]uint8) {
	y := (ly + int(p.SCY.Value)) & 0xFF
	for x := range bg {
		sx := (x + int(p.SCX.Value)) & 0xFF
		t := p.bgTile(p.tileMapAt(lcdcBGMap, sx/8, y/8))
		bg[x] = t[y%8][sx%8]
	}
}

func (p *PPU) drawWindow(ly int, bg *[ScreenWidth]uint8) {
	if p.LCDC.Value&lcdcWinEnable == 0 {
		return
	}
	wx := int(p.WX.Value) - 7
	if ly < int(p.WY.Value) || wx >= ScreenWidth {
		return
	}

	y := p.winLine
	for x := max(wx, 0); x < ScreenWidth; x++ {
		wpx := x - wx
		t := p.bgTile(p.tileMapAt(lcdcWinMap, wpx/8, y/8))
		bg[x] = t[y%8][wpx%8]
	}
	p.winLine++
}

// drawSprites paints the selected sprites in OAM scan order, so on overlap
// the later sprite covers the earlier one.
func (p *PPU) drawSprites(ly int, row []byte, bg *[ScreenWidth]uint8) {
	h := p.spriteHeight()

	for _, s := range p.sprites[:p.nsprites] {
		line := ly - s.top()
		if s.Attrs&attrYFlip != 0 {
			line = h - 1 - line
		}
		id := int(s.Tile)
		if h == 16 {
			id &^= 1
		}
		t := &p.tiles[id+line/8]

		pal := p.OBP0.Value
		if s.Attrs&attrPalette != 0 {
			pal = p.OBP1.Value
		}

		for px := range 8 {
			x := s.left() + px
			if x < 0 || x >= ScreenWidth {
				continue
			}
			col := px
			if s.Attrs&attrXFlip != 0 {
				col = 7 - px
			}
			c := t[line%8][col]
			if c == 0 {
				continue
			}
			if s.Attrs&attrBehindBG != 0 && bg[x] != 0 {
				continue
			}
			p.setPixel(row, x, shade(pal, c))
		}
	}
}

// shade maps colour index c through palette register pal.
func shade(pal, c uint8) uint8 {
	return (pal >> (2 * c)) & 0b11
}

func (p *PPU) setPixel(row []byte, x int, shade uint8) {
	c := p.palette[shade]
	off := x * 4
	row[off+0] = c.R
	row[off+1] = c.G
	row[off+2] = c.B
	row[off+3] = c.A
}
