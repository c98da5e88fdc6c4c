package hw

// Pure ALU primitives. Each returns the result and the complete new flags
// value, so that they can be tested without a CPU.

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func add8(a, b uint8, carry bool) (uint8, Flags) {
	cin := b2u(carry)
	sum := uint16(a) + uint16(b) + uint16(cin)
	res := uint8(sum)
	f := zf(res).
		with(FlagH, a&0xF+b&0xF+cin > 0xF).
		with(FlagC, sum > 0xFF)
	return res, f
}

func sub8(a, b uint8, carry bool) (uint8, Flags) {
	cin := int(b2u(carry))
	diff := int(a) - int(b) - cin
	res := uint8(diff)
	f := (zf(res) | FlagN).
		with(FlagH, int(a&0xF)-int(b&0xF)-cin < 0).
		with(FlagC, diff < 0)
	return res, f
}

func and8(a, b uint8) (uint8, Flags) {
	res := a & b
	return res, zf(res) | FlagH
}

func xor8(a, b uint8) (uint8, Flags) {
	res := a ^ b
	return res, zf(res)
}

func or8(a, b uint8) (uint8, Flags) {
	res := a | b
	return res, zf(res)
}

// inc8 and dec8 preserve the carry flag.
func inc8(v uint8, f Flags) (uint8, Flags) {
	res := v + 1
	return res, (f & FlagC) | zf(res) | Flags(0).with(FlagH, v&0xF == 0xF)
}

func dec8(v uint8, f Flags) (uint8, Flags) {
	res := v - 1
	return res, (f & FlagC) | FlagN | zf(res) | Flags(0).with(FlagH, v&0xF == 0)
}

// addHL preserves the zero flag, carries are computed from bits 11 and 15.
func addHL(hl, v uint16, f Flags) (uint16, Flags) {
	sum := uint32(hl) + uint32(v)
	nf := (f & FlagZ).
		with(FlagH, hl&0xFFF+v&0xFFF > 0xFFF).
		with(FlagC, sum > 0xFFFF)
	return uint16(sum), nf
}

// addSPe adds a signed offset to sp. Flags are computed on the low byte,
// as an unsigned 8-bit addition, and Z and N are always cleared.
func addSPe(sp uint16, e uint8) (uint16, Flags) {
	res := sp + uint16(int8(e))
	f := Flags(0).
		with(FlagH, sp&0xF+uint16(e&0xF) > 0xF).
		with(FlagC, sp&0xFF+uint16(e) > 0xFF)
	return res, f
}

func daa(a uint8, f Flags) (uint8, Flags) {
	carry := f.Has(FlagC)
	if !f.Has(FlagN) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if f.Has(FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if f.Has(FlagH) {
			a -= 0x06
		}
	}
	return a, zf(a) | (f & FlagN) | Flags(0).with(FlagC, carry)
}

// Rotates and shifts. cin is the incoming carry, only used by rl and rr.
type shiftFunc func(v uint8, cin bool) (uint8, Flags)

func shiftFlags(res uint8, cout uint8) Flags {
	return zf(res).with(FlagC, cout != 0)
}

func rlc(v uint8, _ bool) (uint8, Flags) {
	res := v<<1 | v>>7
	return res, shiftFlags(res, v>>7)
}

func rrc(v uint8, _ bool) (uint8, Flags) {
	res := v>>1 | v<<7
	return res, shiftFlags(res, v&1)
}

func rl(v uint8, cin bool) (uint8, Flags) {
	res := v<<1 | b2u(cin)
	return res, shiftFlags(res, v>>7)
}

func rr(v uint8, cin bool) (uint8, Flags) {
	res := v>>1 | b2u(cin)<<7
	return res, shiftFlags(res, v&1)
}

func sla(v uint8, _ bool) (uint8, Flags) {
	res := v << 1
	return res, shiftFlags(res, v>>7)
}

func sra(v uint8, _ bool) (uint8, Flags) {
	res := v>>1 | v&0x80
	return res, shiftFlags(res, v&1)
}

func srl(v uint8, _ bool) (uint8, Flags) {
	res := v >> 1
	return res, shiftFlags(res, v&1)
}

func swap(v uint8, _ bool) (uint8, Flags) {
	res := v<<4 | v>>4
	return res, zf(res)
}

// bit tests bit n of v, carry is preserved.
func bit(n uint, v uint8, f Flags) Flags {
	return (f & FlagC) | FlagH | zf(v&(1<<n))
}
