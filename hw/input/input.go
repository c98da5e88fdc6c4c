package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

//go:generate go tool stringer -type=Button

// A Button identifies one of the 8 joypad buttons. The values are the bit
// positions in Buttons: the direction group first, then the action group.
type Button byte

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start

	NumButtons
)

// Buttons is a bitmask of pressed buttons.
type Buttons uint8

func (b Buttons) Pressed(btn Button) bool { return b&(1<<btn) != 0 }

// Directions returns the direction group as a nibble.
func (b Buttons) Directions() uint8 { return uint8(b) & 0x0F }

// Actions returns the action group as a nibble.
func (b Buttons) Actions() uint8 { return uint8(b) >> 4 }

func (b *Buttons) Set(btn Button, pressed bool) {
	if pressed {
		*b |= 1 << btn
	} else {
		*b &^= 1 << btn
	}
}

// Config holds the key bindings of the joypad.
type Config struct {
	Keys [NumButtons]Code `toml:"keys"`
}

// DefaultConfig binds the arrows to the d-pad, X and Z to A and B,
// backspace and return to select and start.
func DefaultConfig() Config {
	return Config{
		Keys: [NumButtons]Code{
			Right:  {Scancode: sdl.SCANCODE_RIGHT},
			Left:   {Scancode: sdl.SCANCODE_LEFT},
			Up:     {Scancode: sdl.SCANCODE_UP},
			Down:   {Scancode: sdl.SCANCODE_DOWN},
			A:      {Scancode: sdl.SCANCODE_X},
			B:      {Scancode: sdl.SCANCODE_Z},
			Select: {Scancode: sdl.SCANCODE_BACKSPACE},
			Start:  {Scancode: sdl.SCANCODE_RETURN},
		},
	}
}

// Provider reads the joypad state from the SDL keyboard state.
type Provider struct {
	keys     [NumButtons]sdl.Scancode
	keystate []uint8
}

// NewProvider creates a keyboard provider. It must be created after SDL
// video initialization.
func NewProvider(cfg Config) *Provider {
	p := &Provider{}
	for i, code := range cfg.Keys {
		p.keys[i] = code.Scancode
	}
	sdl.Do(func() { p.keystate = sdl.GetKeyboardState() })
	return p
}

// Buttons returns the currently pressed buttons. The keyboard state is
// updated by SDL event polling.
func (p *Provider) Buttons() Buttons {
	var state Buttons
	for i, sc := range p.keys {
		if sc != sdl.SCANCODE_UNKNOWN && int(sc) < len(p.keystate) {
			state.Set(Button(i), p.keystate[sc] != 0)
		}
	}
	return state
}
