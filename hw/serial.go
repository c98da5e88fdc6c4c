package hw

import (
	"bytes"
	"io"

	"dotmatrix/emu/log"
	"dotmatrix/hw/hwio"
)

const (
	scTransfer = 7 // transfer in progress
	scInternal = 0 // internal clock

	// Cycles to shift a byte out at 8192Hz.
	serialByteCycles = 4096
)

// Serial is the link port. There's never anything on the other end: each
// byte sent reads back 0xFF. Sent bytes are buffered and written to the
// output at frame boundaries, see Flush.
type Serial struct {
	irq *Interrupts

	SB hwio.Reg8 `hwio:"offset=0x01"`
	SC hwio.Reg8 `hwio:"offset=0x02,rwmask=0x81,rcb,wcb"`

	out     io.Writer
	buf     bytes.Buffer
	pending int // remaining cycles of the current transfer
}

func NewSerial(bus *Bus, irq *Interrupts) *Serial {
	s := &Serial{irq: irq}
	hwio.MustInitRegs(s)
	bus.MapBank(IOBase, s, 0)
	return s
}

// SetOutput sets where transferred bytes are written. nil discards them.
func (s *Serial) SetOutput(w io.Writer) { s.out = w }

func (s *Serial) ReadSC(val uint8) uint8 { return val | 0x7E }

func (s *Serial) WriteSC(_, val uint8) {
	if !hwio.Bit(val, scTransfer) || !hwio.Bit(val, scInternal) {
		return
	}
	s.buf.WriteByte(s.SB.Value)
	s.pending = serialByteCycles
}

// Tick advances the transfer in progress, if any.
func (s *Serial) Tick(cycles int) {
	if s.pending == 0 {
		return
	}
	s.pending -= cycles
	if s.pending > 0 {
		return
	}
	s.pending = 0
	s.SB.Value = 0xFF
	hwio.ClearBit(&s.SC.Value, scTransfer)
	s.irq.Request(IntSerial)
}

// Flush writes the buffered bytes to the output.
func (s *Serial) Flush() error {
	if s.buf.Len() == 0 {
		return nil
	}
	if s.out == nil {
		s.buf.Reset()
		return nil
	}
	_, err := s.buf.WriteTo(s.out)
	if err != nil {
		log.ModSerial.WarnZ("serial output").Error("err", err).End()
	}
	return err
}
