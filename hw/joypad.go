package hw

import (
	"sync/atomic"

	"dotmatrix/emu/log"
	"dotmatrix/hw/hwio"
	"dotmatrix/hw/input"
)

const (
	// P1 bits, a group is selected when its bit is 0.
	p1Directions = 4
	p1Actions    = 5
)

// Joypad is the P1 register. The button state is set from another
// goroutine and sampled by the emulation loop once per frame.
type Joypad struct {
	irq *Interrupts

	P1 hwio.Reg8 `hwio:"offset=0x00,reset=0x30,rwmask=0x30,rcb"`

	state   atomic.Uint32 // input.Buttons, as set by the presentation layer
	current input.Buttons // last sampled state
}

func NewJoypad(bus *Bus, irq *Interrupts) *Joypad {
	j := &Joypad{irq: irq}
	hwio.MustInitRegs(j)
	bus.MapBank(IOBase, j, 0)
	return j
}

// SetButtons sets the currently pressed buttons. Safe for concurrent use.
func (j *Joypad) SetButtons(b input.Buttons) {
	j.state.Store(uint32(b))
}

// Sample latches the pressed buttons and requests the joypad interrupt if
// a button of a selected group has just been pressed.
func (j *Joypad) Sample() {
	prev := j.current
	j.current = input.Buttons(j.state.Load())

	before := j.lines(prev)
	after := j.lines(j.current)
	// P1 lines are active low, a press is a high to low transition.
	if before&^after != 0 {
		log.ModInput.DebugZ("button pressed").Hex8("buttons", uint8(j.current)).End()
		j.irq.Request(IntJoypad)
	}
}

// lines returns the P1 low nibble for the given buttons.
func (j *Joypad) lines(b input.Buttons) uint8 {
	var pressed uint8
	if !hwio.Bit(j.P1.Value, p1Directions) {
		pressed |= b.Directions()
	}
	if !hwio.Bit(j.P1.Value, p1Actions) {
		pressed |= b.Actions()
	}
	return ^pressed & 0x0F
}

// ReadP1 returns the selected groups, pressed buttons read 0. Unused bits
// read 1.
func (j *Joypad) ReadP1(val uint8) uint8 {
	return 0xC0 | val&0x30 | j.lines(j.current)
}
