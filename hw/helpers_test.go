package hw

import (
	"testing"
)

// newTestBus returns a bus backed by a 32KiB cartridge image holding prog at
// the entry point, and the interrupt registers mapped on it.
func newTestBus(tb testing.TB, prog ...byte) (*Bus, *Interrupts) {
	tb.Helper()

	rom := make([]byte, 0x8000)
	copy(rom[0x100:], prog)

	bus := NewBus(rom, nil, false)
	irq := NewInterrupts()
	irq.MapTo(bus)
	return bus, irq
}

// newTestCPU returns a CPU in its post-boot state, about to execute prog.
func newTestCPU(tb testing.TB, prog ...byte) *CPU {
	tb.Helper()

	bus, irq := newTestBus(tb, prog...)
	cpu := NewCPU(bus, irq)
	cpu.Reset(false)
	return cpu
}

// tick executes n instructions and returns the total cycle count.
func tick(cpu *CPU, n int) int {
	total := 0
	for range n {
		total += cpu.Tick()
	}
	return total
}

func wantMem8(t *testing.T, bus *Bus, addr uint16, want uint8) {
	t.Helper()

	if got := bus.Read8(addr); got != want {
		t.Errorf("$%04X = $%02X want $%02X", addr, got, want)
	}
}

func wantPC(t *testing.T, cpu *CPU, want uint16) {
	t.Helper()

	if cpu.PC != want {
		t.Errorf("PC = $%04X want $%04X", cpu.PC, want)
	}
}

func wantFlags(t *testing.T, cpu *CPU, want Flags) {
	t.Helper()

	if got := cpu.flags(); got != want {
		t.Errorf("F = %s ($%02X) want %s ($%02X)", got, uint8(got), want, uint8(want))
	}
}
