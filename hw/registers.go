package hw

// RegPair is a 16-bit register whose halves are individually addressable.
type RegPair struct {
	Hi, Lo uint8
}

func (r RegPair) Get() uint16 { return uint16(r.Hi)<<8 | uint16(r.Lo) }

func (r *RegPair) Set(v uint16) {
	r.Hi = uint8(v >> 8)
	r.Lo = uint8(v)
}

// Regs is the processor register file. A lives in AF.Hi, the flags in AF.Lo.
type Regs struct {
	AF, BC, DE, HL RegPair
	SP, PC         uint16
}

// SetAF sets AF. The low nibble of F doesn't exist in hardware and always
// reads back as zero.
func (r *Regs) SetAF(v uint16) { r.AF.Set(v & 0xFFF0) }

// Flags is the content of the F register. Flags occupy the high nibble.
type Flags uint8

const (
	FlagC Flags = 1 << (iota + 4) // carry
	FlagH                         // half-carry
	FlagN                         // subtract
	FlagZ                         // zero
)

func (f Flags) String() string {
	const bits = "znhcZNHC"

	s := make([]byte, 4)
	for i := range 4 {
		ibit := (uint8(f) >> (7 - i)) & 1
		s[i] = bits[i+int(4*ibit)]
	}
	return string(s)
}

func (f Flags) Has(flag Flags) bool { return f&flag == flag }

// with returns f with flag set or cleared depending on on.
func (f Flags) with(flag Flags, on bool) Flags {
	if on {
		return f | flag
	}
	return f &^ flag
}

func zf(v uint8) Flags {
	if v == 0 {
		return FlagZ
	}
	return 0
}
