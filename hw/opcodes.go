package hw

type opfunc func(c *CPU)

// Dispatch tables, filled once at package initialization. A nil entry in
// ops is an illegal opcode.
var (
	ops   [256]opfunc
	cbops [256]opfunc
)

func init() {
	initOps()
	initCBOps()
}

// 8-bit operand encoding: B C D E H L (HL) A.
func (c *CPU) r8(i int) uint8 {
	switch i {
	case 0:
		return c.BC.Hi
	case 1:
		return c.BC.Lo
	case 2:
		return c.DE.Hi
	case 3:
		return c.DE.Lo
	case 4:
		return c.HL.Hi
	case 5:
		return c.HL.Lo
	case 6:
		return c.Bus.Read8(c.HL.Get())
	}
	return c.AF.Hi
}

func (c *CPU) setR8(i int, v uint8) {
	switch i {
	case 0:
		c.BC.Hi = v
	case 1:
		c.BC.Lo = v
	case 2:
		c.DE.Hi = v
	case 3:
		c.DE.Lo = v
	case 4:
		c.HL.Hi = v
	case 5:
		c.HL.Lo = v
	case 6:
		c.Bus.Write8(c.HL.Get(), v)
	default:
		c.AF.Hi = v
	}
}

// 16-bit operand encoding: BC DE HL SP.
func (c *CPU) r16(i int) uint16 {
	switch i {
	case 0:
		return c.BC.Get()
	case 1:
		return c.DE.Get()
	case 2:
		return c.HL.Get()
	}
	return c.SP
}

func (c *CPU) setR16(i int, v uint16) {
	switch i {
	case 0:
		c.BC.Set(v)
	case 1:
		c.DE.Set(v)
	case 2:
		c.HL.Set(v)
	default:
		c.SP = v
	}
}

// PUSH/POP operand encoding: BC DE HL AF.
func (c *CPU) stack16(i int) uint16 {
	if i == 3 {
		return c.AF.Get()
	}
	return c.r16(i)
}

func (c *CPU) setStack16(i int, v uint16) {
	if i == 3 {
		c.SetAF(v)
		return
	}
	c.setR16(i, v)
}

// Condition encoding: NZ Z NC C.
func (c *CPU) cond(i int) bool {
	f := c.flags()
	switch i {
	case 0:
		return !f.Has(FlagZ)
	case 1:
		return f.Has(FlagZ)
	case 2:
		return !f.Has(FlagC)
	}
	return f.Has(FlagC)
}

func (c *CPU) flags() Flags     { return Flags(c.AF.Lo) }
func (c *CPU) setFlags(f Flags) { c.AF.Lo = uint8(f) & 0xF0 }

func (c *CPU) fetch8() uint8 {
	v := c.Bus.Read8(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push16(v uint16) {
	c.SP--
	c.Bus.Write8(c.SP, uint8(v>>8))
	c.SP--
	c.Bus.Write8(c.SP, uint8(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.Bus.Read8(c.SP)
	c.SP++
	hi := c.Bus.Read8(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) jr(taken bool) {
	e := int8(c.fetch8())
	if taken {
		c.PC += uint16(e)
		c.branched = true
	}
}

// ALU operations on A, in opcode order: ADD ADC SUB SBC AND XOR OR CP.
var aluops = [8]func(c *CPU, v uint8){
	func(c *CPU, v uint8) { c.setA(add8(c.AF.Hi, v, false)) },
	func(c *CPU, v uint8) { c.setA(add8(c.AF.Hi, v, c.flags().Has(FlagC))) },
	func(c *CPU, v uint8) { c.setA(sub8(c.AF.Hi, v, false)) },
	func(c *CPU, v uint8) { c.setA(sub8(c.AF.Hi, v, c.flags().Has(FlagC))) },
	func(c *CPU, v uint8) { c.setA(and8(c.AF.Hi, v)) },
	func(c *CPU, v uint8) { c.setA(xor8(c.AF.Hi, v)) },
	func(c *CPU, v uint8) { c.setA(or8(c.AF.Hi, v)) },
	func(c *CPU, v uint8) {
		_, f := sub8(c.AF.Hi, v, false)
		c.setFlags(f)
	},
}

func (c *CPU) setA(v uint8, f Flags) {
	c.AF.Hi = v
	c.setFlags(f)
}

// accumulator rotates always clear Z.
func rotA(fn shiftFunc) opfunc {
	return func(c *CPU) {
		v, f := fn(c.AF.Hi, c.flags().Has(FlagC))
		c.setA(v, f&^FlagZ)
	}
}

func initOps() {
	ops[0x00] = func(c *CPU) {}

	for i := range 4 {
		hi := i << 4
		ops[hi|0x01] = func(c *CPU) { c.setR16(i, c.fetch16()) }
		ops[hi|0x03] = func(c *CPU) { c.setR16(i, c.r16(i)+1) }
		ops[hi|0x0B] = func(c *CPU) { c.setR16(i, c.r16(i)-1) }
		ops[hi|0x09] = func(c *CPU) {
			hl, f := addHL(c.HL.Get(), c.r16(i), c.flags())
			c.HL.Set(hl)
			c.setFlags(f)
		}
		ops[0xC1|hi] = func(c *CPU) { c.setStack16(i, c.pop16()) }
		ops[0xC5|hi] = func(c *CPU) { c.push16(c.stack16(i)) }

		// conditional JR, RET, JP and CALL
		ops[0x20|i<<3] = func(c *CPU) { c.jr(c.cond(i)) }
		ops[0xC0|i<<3] = func(c *CPU) {
			if c.cond(i) {
				c.PC = c.pop16()
				c.branched = true
			}
		}
		ops[0xC2|i<<3] = func(c *CPU) {
			addr := c.fetch16()
			if c.cond(i) {
				c.PC = addr
				c.branched = true
			}
		}
		ops[0xC4|i<<3] = func(c *CPU) {
			addr := c.fetch16()
			if c.cond(i) {
				c.push16(c.PC)
				c.PC = addr
				c.branched = true
			}
		}
	}

	for r := range 8 {
		ops[0x04|r<<3] = func(c *CPU) {
			v, f := inc8(c.r8(r), c.flags())
			c.setR8(r, v)
			c.setFlags(f)
		}
		ops[0x05|r<<3] = func(c *CPU) {
			v, f := dec8(c.r8(r), c.flags())
			c.setR8(r, v)
			c.setFlags(f)
		}
		ops[0x06|r<<3] = func(c *CPU) { c.setR8(r, c.fetch8()) }

		alu := aluops[r]
		ops[0xC6|r<<3] = func(c *CPU) { alu(c, c.fetch8()) }
		for src := range 8 {
			ops[0x80|r<<3|src] = func(c *CPU) { alu(c, c.r8(src)) }
		}

		vec := uint16(r) << 3
		ops[0xC7|r<<3] = func(c *CPU) {
			c.push16(c.PC)
			c.PC = vec
		}
	}

	// LD r,r'. 0x76, which would be LD (HL),(HL), is HALT.
	for dst := range 8 {
		for src := range 8 {
			ops[0x40|dst<<3|src] = func(c *CPU) { c.setR8(dst, c.r8(src)) }
		}
	}
	ops[0x76] = func(c *CPU) { c.halted = true }

	// Indirect loads.
	ops[0x02] = func(c *CPU) { c.Bus.Write8(c.BC.Get(), c.AF.Hi) }
	ops[0x12] = func(c *CPU) { c.Bus.Write8(c.DE.Get(), c.AF.Hi) }
	ops[0x22] = func(c *CPU) {
		hl := c.HL.Get()
		c.Bus.Write8(hl, c.AF.Hi)
		c.HL.Set(hl + 1)
	}
	ops[0x32] = func(c *CPU) {
		hl := c.HL.Get()
		c.Bus.Write8(hl, c.AF.Hi)
		c.HL.Set(hl - 1)
	}
	ops[0x0A] = func(c *CPU) { c.AF.Hi = c.Bus.Read8(c.BC.Get()) }
	ops[0x1A] = func(c *CPU) { c.AF.Hi = c.Bus.Read8(c.DE.Get()) }
	ops[0x2A] = func(c *CPU) {
		hl := c.HL.Get()
		c.AF.Hi = c.Bus.Read8(hl)
		c.HL.Set(hl + 1)
	}
	ops[0x3A] = func(c *CPU) {
		hl := c.HL.Get()
		c.AF.Hi = c.Bus.Read8(hl)
		c.HL.Set(hl - 1)
	}
	ops[0x08] = func(c *CPU) { c.Bus.Write16(c.fetch16(), c.SP) }
	ops[0xE0] = func(c *CPU) { c.Bus.Write8(0xFF00|uint16(c.fetch8()), c.AF.Hi) }
	ops[0xF0] = func(c *CPU) { c.AF.Hi = c.Bus.Read8(0xFF00 | uint16(c.fetch8())) }
	ops[0xE2] = func(c *CPU) { c.Bus.Write8(0xFF00|uint16(c.BC.Lo), c.AF.Hi) }
	ops[0xF2] = func(c *CPU) { c.AF.Hi = c.Bus.Read8(0xFF00 | uint16(c.BC.Lo)) }
	ops[0xEA] = func(c *CPU) { c.Bus.Write8(c.fetch16(), c.AF.Hi) }
	ops[0xFA] = func(c *CPU) { c.AF.Hi = c.Bus.Read8(c.fetch16()) }

	// Accumulator and flags.
	ops[0x07] = rotA(rlc)
	ops[0x0F] = rotA(rrc)
	ops[0x17] = rotA(rl)
	ops[0x1F] = rotA(rr)
	ops[0x27] = func(c *CPU) { c.setA(daa(c.AF.Hi, c.flags())) }
	ops[0x2F] = func(c *CPU) {
		c.AF.Hi = ^c.AF.Hi
		c.setFlags(c.flags() | FlagN | FlagH)
	}
	ops[0x37] = func(c *CPU) { c.setFlags(c.flags()&FlagZ | FlagC) }
	ops[0x3F] = func(c *CPU) { c.setFlags(c.flags()&FlagZ | ^c.flags()&FlagC) }

	// Jumps, calls and returns.
	ops[0x18] = func(c *CPU) { c.PC += uint16(int8(c.fetch8())) }
	ops[0xC3] = func(c *CPU) { c.PC = c.fetch16() }
	ops[0xE9] = func(c *CPU) { c.PC = c.HL.Get() }
	ops[0xCD] = func(c *CPU) {
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
	}
	ops[0xC9] = func(c *CPU) { c.PC = c.pop16() }
	ops[0xD9] = func(c *CPU) {
		c.PC = c.pop16()
		c.IRQ.IME = true
	}

	// Stack pointer arithmetic.
	ops[0xE8] = func(c *CPU) {
		sp, f := addSPe(c.SP, c.fetch8())
		c.SP = sp
		c.setFlags(f)
	}
	ops[0xF8] = func(c *CPU) {
		hl, f := addSPe(c.SP, c.fetch8())
		c.HL.Set(hl)
		c.setFlags(f)
	}
	ops[0xF9] = func(c *CPU) { c.SP = c.HL.Get() }

	// Control.
	ops[0x10] = func(c *CPU) {
		c.fetch8()
		c.halted = true
	}
	ops[0xF3] = func(c *CPU) {
		c.IRQ.IME = false
		c.eiDelay = false
	}
	ops[0xFB] = func(c *CPU) { c.eiDelay = true }

	// 0xCB is dispatched by Tick.
	ops[0xCB] = func(c *CPU) {}
}

func initCBOps() {
	shifts := [8]shiftFunc{rlc, rrc, rl, rr, sla, sra, swap, srl}

	for r := range 8 {
		for i, fn := range shifts {
			cbops[i<<3|r] = func(c *CPU) {
				v, f := fn(c.r8(r), c.flags().Has(FlagC))
				c.setR8(r, v)
				c.setFlags(f)
			}
		}
		for n := range 8 {
			mask := uint8(1) << n
			cbops[0x40|n<<3|r] = func(c *CPU) { c.setFlags(bit(uint(n), c.r8(r), c.flags())) }
			cbops[0x80|n<<3|r] = func(c *CPU) { c.setR8(r, c.r8(r)&^mask) }
			cbops[0xC0|n<<3|r] = func(c *CPU) { c.setR8(r, c.r8(r)|mask) }
		}
	}
}
