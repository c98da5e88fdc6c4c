package hwio

type word interface {
	~uint8 | ~uint16
}

// Bit reports whether bit n of v is set.
func Bit[T word](v T, n uint) bool {
	return v>>n&1 != 0
}

// Biti returns bit n of v, as 0 or 1.
func Biti[T word](v T, n uint) T {
	return v >> n & 1
}

func SetBit[T word](v *T, n uint) {
	*v |= 1 << n
}

func ClearBit[T word](v *T, n uint) {
	*v &^= 1 << n
}

// SetBitTo sets or clears bit n of v depending on on.
func SetBitTo[T word](v *T, n uint, on bool) {
	if on {
		SetBit(v, n)
	} else {
		ClearBit(v, n)
	}
}
