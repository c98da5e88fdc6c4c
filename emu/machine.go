package emu

import (
	"fmt"

	"dotmatrix/cart"
	"dotmatrix/hw"
)

// Machine holds the hardware components, wired together once at power up.
type Machine struct {
	Bus    *hw.Bus
	IRQ    *hw.Interrupts
	CPU    *hw.CPU
	PPU    *hw.PPU
	Timer  *hw.Timer
	Serial *hw.Serial
	Joypad *hw.Joypad

	withBoot bool
}

// PowerUp builds the machine for the given cartridge. boot is an optional
// 256-byte boot image.
func PowerUp(rom *cart.Rom, boot []byte, cfg EmulationConfig) (*Machine, error) {
	if boot != nil && len(boot) != cart.BootSize {
		return nil, fmt.Errorf("boot image must be %d bytes, got %d", cart.BootSize, len(boot))
	}

	bus := hw.NewBus(rom.Data, boot, cfg.ProtectROM)
	irq := hw.NewInterrupts()
	irq.MapTo(bus)

	m := &Machine{
		Bus:      bus,
		IRQ:      irq,
		CPU:      hw.NewCPU(bus, irq),
		PPU:      hw.NewPPU(bus, irq),
		Timer:    hw.NewTimer(bus, irq),
		Serial:   hw.NewSerial(bus, irq),
		Joypad:   hw.NewJoypad(bus, irq),
		withBoot: boot != nil,
	}

	if err := bus.CheckCoverage(); err != nil {
		return nil, fmt.Errorf("power up: %w", err)
	}

	m.CPU.Reset(m.withBoot)
	m.PPU.Reset(m.withBoot)
	m.Timer.Reset(m.withBoot)
	return m, nil
}

// Step runs one CPU tick and advances the other components by the same
// number of cycles. frame reports whether the PPU has completed a frame.
func (m *Machine) Step() (cycles int, frame bool) {
	cycles = m.CPU.Tick()
	frame = m.PPU.Tick(cycles)
	m.Timer.Tick(cycles)
	m.Serial.Tick(cycles)
	return cycles, frame
}
