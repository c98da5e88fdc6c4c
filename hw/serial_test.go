package hw

import (
	"bytes"
	"testing"
)

func TestSerialTransfer(t *testing.T) {
	bus, irq := newTestBus(t)
	s := NewSerial(bus, irq)

	var out bytes.Buffer
	s.SetOutput(&out)

	for _, c := range []byte("ok") {
		bus.Write8(0xFF01, c)
		bus.Write8(0xFF02, 0x81)
		wantMem8(t, bus, 0xFF02, 0xFF)

		s.Tick(serialByteCycles - 1)
		if irq.IF.Value != 0 {
			t.Fatalf("IF = %05b during transfer", irq.IF.Value)
		}
		s.Tick(1)
		if irq.IF.Value != IntSerial.Mask() {
			t.Errorf("IF = %05b want %05b", irq.IF.Value, IntSerial.Mask())
		}
		wantMem8(t, bus, 0xFF01, 0xFF)
		wantMem8(t, bus, 0xFF02, 0x7F)
		irq.IF.Value = 0
	}

	if out.Len() != 0 {
		t.Errorf("output written before Flush: %q", out.String())
	}
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "ok" {
		t.Errorf("output = %q want %q", got, "ok")
	}
}

func TestSerialExternalClock(t *testing.T) {
	bus, irq := newTestBus(t)
	s := NewSerial(bus, irq)

	var out bytes.Buffer
	s.SetOutput(&out)

	// Nothing on the other end to provide the clock.
	bus.Write8(0xFF01, 'x')
	bus.Write8(0xFF02, 0x80)
	s.Tick(2 * serialByteCycles)

	if irq.IF.Value != 0 {
		t.Errorf("IF = %05b want 0", irq.IF.Value)
	}
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q want nothing", out.String())
	}
}

func TestSerialNoOutput(t *testing.T) {
	bus, irq := newTestBus(t)
	s := NewSerial(bus, irq)

	bus.Write8(0xFF01, 'x')
	bus.Write8(0xFF02, 0x81)
	if err := s.Flush(); err != nil {
		t.Errorf("Flush() = %v", err)
	}
}
