package hw

// Tile is a decoded 8x8 tile, one colour index (0-3) per pixel.
type Tile [8][8]uint8

// decodeTile decodes 16 bytes of tile data. Each row is 2 bytes, the
// first one holding the low bits of the 8 pixels, the second one the high
// bits, leftmost pixel in bit 7.
func decodeTile(t *Tile, b []byte) {
	for y := range 8 {
		lo, hi := b[2*y], b[2*y+1]
		for x := range 8 {
			shift := 7 - x
			t[y][x] = (lo>>shift)&1 | ((hi>>shift)&1)<<1
		}
	}
}

const (
	// Sprite attribute bits
	attrPalette  = 1 << 4 // OBP1 instead of OBP0
	attrXFlip    = 1 << 5
	attrYFlip    = 1 << 6
	attrBehindBG = 1 << 7 // hidden behind background colors 1-3
)

// Sprite is a decoded OAM entry. X and Y are the raw OAM values, the
// sprite's top-left corner being at (X-8, Y-16) on screen.
type Sprite struct {
	Y, X  uint8
	Tile  uint8
	Attrs uint8
}

func (s Sprite) top() int  { return int(s.Y) - 16 }
func (s Sprite) left() int { return int(s.X) - 8 }

func decodeSprite(b []byte) Sprite {
	return Sprite{Y: b[0], X: b[1], Tile: b[2], Attrs: b[3]}
}
