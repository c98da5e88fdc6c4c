package hw

import (
	"math/bits"

	"dotmatrix/hw/hwio"
)

//go:generate go tool stringer -type=Interrupt -trimprefix=Int

// Interrupt identifies an interrupt source. Lower values have higher
// priority.
type Interrupt uint8

const (
	IntVBlank Interrupt = iota
	IntLCDStat
	IntTimer
	IntSerial
	IntJoypad
)

const numInterrupts = 5

// Vector returns the address the CPU jumps to when servicing i.
func (i Interrupt) Vector() uint16 { return 0x40 + 8*uint16(i) }

func (i Interrupt) Mask() uint8 { return 1 << i }

// Interrupts holds the interrupt enable and request registers plus the
// master enable flag.
type Interrupts struct {
	IF hwio.Reg8 `hwio:"offset=0x0F,rwmask=0x1F,rcb"`
	IE hwio.Reg8 `hwio:"bank=1,offset=0x00"`

	IME bool
}

func NewInterrupts() *Interrupts {
	it := &Interrupts{}
	hwio.MustInitRegs(it)
	return it
}

// MapTo maps IF in the I/O window and IE at 0xFFFF.
func (it *Interrupts) MapTo(bus *Bus) {
	bus.MapBank(0xFF00, it, 0)
	bus.MapBank(0xFFFF, it, 1)
}

// ReadIF returns IF, unused bits read as 1.
func (it *Interrupts) ReadIF(val uint8) uint8 { return val | 0xE0 }

// Request sets the request bit of i.
func (it *Interrupts) Request(i Interrupt) {
	it.IF.Value |= i.Mask()
}

// Pending returns the requested and enabled interrupts bitmask.
func (it *Interrupts) Pending() uint8 {
	return it.IE.Value & it.IF.Value & (1<<numInterrupts - 1)
}

// Next returns the highest priority pending interrupt.
func (it *Interrupts) Next() (Interrupt, bool) {
	p := it.Pending()
	if p == 0 {
		return 0, false
	}
	return Interrupt(bits.TrailingZeros8(p)), true
}

// ack clears the request bit of i. Only interrupt servicing calls this.
func (it *Interrupts) ack(i Interrupt) {
	it.IF.Value &^= i.Mask()
}
