package hw

import (
	"dotmatrix/emu/log"
	"dotmatrix/hw/hwio"
)

const tacEnable = 1 << 2

// TIMA period, in cycles, as log2, indexed by TAC clock select.
var tacShift = [4]uint{10, 4, 6, 8}

// Timer implements DIV, TIMA, TMA and TAC. DIV is the upper byte of a
// 16-bit counter incremented every cycle. TIMA is incremented at the rate
// selected by TAC and requests the timer interrupt on overflow.
type Timer struct {
	irq *Interrupts

	DIV  hwio.Reg8 `hwio:"offset=0x04,rcb,pcb,wcb"`
	TIMA hwio.Reg8 `hwio:"offset=0x05"`
	TMA  hwio.Reg8 `hwio:"offset=0x06"`
	TAC  hwio.Reg8 `hwio:"offset=0x07,rwmask=0x07,rcb"`

	counter uint16
}

func NewTimer(bus *Bus, irq *Interrupts) *Timer {
	t := &Timer{irq: irq}
	hwio.MustInitRegs(t)
	bus.MapBank(IOBase, t, 0)
	return t
}

// Reset sets the internal counter. Without boot image, it's the value the
// boot program leaves behind.
func (t *Timer) Reset(withBoot bool) {
	t.TIMA.Value, t.TMA.Value, t.TAC.Value = 0, 0, 0
	t.counter = 0
	if !withBoot {
		t.counter = 0xABCC
	}
}

func (t *Timer) ReadDIV(uint8) uint8 { return uint8(t.counter >> 8) }
func (t *Timer) PeekDIV(uint8) uint8 { return uint8(t.counter >> 8) }

// WriteDIV resets the whole counter, whatever the value.
func (t *Timer) WriteDIV(_, _ uint8) {
	t.counter = 0
}

func (t *Timer) ReadTAC(val uint8) uint8 { return val | 0xF8 }

// Tick advances the timer by the given number of cycles.
func (t *Timer) Tick(cycles int) {
	old := uint32(t.counter)
	t.counter += uint16(cycles)

	if t.TAC.Value&tacEnable == 0 {
		return
	}
	shift := tacShift[t.TAC.Value&0b11]
	n := (old+uint32(cycles))>>shift - old>>shift
	for range n {
		t.TIMA.Value++
		if t.TIMA.Value == 0 {
			t.TIMA.Value = t.TMA.Value
			t.irq.Request(IntTimer)
			log.ModTimer.DebugZ("TIMA overflow").Hex8("tma", t.TMA.Value).End()
		}
	}
}
