package hw

import (
	"fmt"
	"io"

	"dotmatrix/emu/log"
)

// Cost, in T-cycles, of dispatching an interrupt.
const irqCycles = 20

// OpcodeError is returned when the CPU fetches an opcode with no defined
// behavior.
type OpcodeError struct {
	PC     uint16
	Opcode uint8
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode $%02X at $%04X", e.Opcode, e.PC)
}

type CPU struct {
	Regs

	Bus *Bus
	IRQ *Interrupts

	Clock int64 // elapsed T-cycles

	halted   bool
	eiDelay  bool // IME gets set after the next instruction
	branched bool // set by conditional ops when taken
	fault    error

	// Non-nil when execution tracing is enabled.
	tracer *tracer
}

// NewCPU creates a CPU wired to bus and irq. Call Reset before running it.
func NewCPU(bus *Bus, irq *Interrupts) *CPU {
	return &CPU{Bus: bus, IRQ: irq}
}

// Reset puts the CPU in its power-on state. Without boot image, registers
// take the values the boot program leaves behind.
func (c *CPU) Reset(withBoot bool) {
	c.Regs = Regs{}
	c.Clock = 0
	c.halted, c.eiDelay, c.fault = false, false, nil
	c.IRQ.IME = false

	if withBoot {
		return
	}
	c.SetAF(0x01B0)
	c.BC.Set(0x0013)
	c.DE.Set(0x00D8)
	c.HL.Set(0x014D)
	c.SP = 0xFFFE
	c.PC = 0x0100
}

// SetTraceOutput enables the execution trace, one line per instruction.
func (c *CPU) SetTraceOutput(w io.Writer) {
	c.tracer = &tracer{w: w, d: c}
}

// Fault returns the fatal error that stopped the CPU, if any.
func (c *CPU) Fault() error { return c.fault }

// Halted reports whether the CPU is waiting for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// Tick executes one instruction, or services one interrupt, and returns the
// number of elapsed T-cycles. Once the CPU has faulted, Tick does nothing and
// returns 0.
func (c *CPU) Tick() int {
	if c.fault != nil {
		return 0
	}

	if c.halted {
		if c.IRQ.Pending() == 0 {
			c.Clock += 4
			return 4
		}
		c.halted = false
	}

	if c.IRQ.IME {
		if irq, ok := c.IRQ.Next(); ok {
			return c.service(irq)
		}
	}

	if c.tracer != nil {
		c.tracer.write(c.state())
	}

	ei := c.eiDelay
	pc := c.PC
	op := c.fetch8()

	var cycles int
	switch fn := ops[op]; {
	case op == 0xCB:
		cb := c.fetch8()
		cbops[cb](c)
		cycles = cbCycles(cb)
	case fn == nil:
		c.PC = pc
		c.fault = &OpcodeError{PC: pc, Opcode: op}
		return 0
	default:
		c.branched = false
		fn(c)
		info := &opinfo[op]
		cycles = int(info.Cycles)
		if c.branched {
			cycles = int(info.Taken)
		}
	}

	if ei && c.eiDelay {
		c.eiDelay = false
		c.IRQ.IME = true
	}
	if c.Bus.Fault != nil {
		c.fault = c.Bus.Fault
	}

	c.Clock += int64(cycles)
	return cycles
}

func (c *CPU) service(irq Interrupt) int {
	log.ModCPU.DebugZ("servicing interrupt").
		Stringer("irq", irq).
		Hex16("pc", c.PC).
		End()

	c.IRQ.ack(irq)
	c.IRQ.IME = false
	c.eiDelay = false
	c.push16(c.PC)
	c.PC = irq.Vector()
	c.Clock += irqCycles
	return irqCycles
}

func (c *CPU) state() cpuState {
	return cpuState{
		Regs:  c.Regs,
		Clock: c.Clock,
		LY:    c.Bus.Peek8(0xFF44),
	}
}
