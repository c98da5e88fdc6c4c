package hwio

import "fmt"

const (
	NumBits  = 0x10000            // the whole 16-bit address space
	wordSize = 64                 // using 64-bit words
	numWords = NumBits / wordSize // 1024 words exactly
)

// Bitset is a 64Kbit set, one bit per address. Zero value is an empty set.
type Bitset struct {
	words [numWords]uint64
}

func (b *Bitset) Set(i uint) {
	b.words[i/wordSize] |= 1 << (i % wordSize)
}

func (b *Bitset) Clear(i uint) {
	b.words[i/wordSize] &^= 1 << (i % wordSize)
}

func (b *Bitset) Test(i uint) bool {
	return b.words[i/wordSize]&(1<<(i%wordSize)) != 0
}

// SetRange sets all bits in the half-open interval [start, end).
func (b *Bitset) SetRange(start, end uint) {
	b.applyRange(start, end, true)
}

// ClearRange clears all bits in the half-open interval [start, end).
func (b *Bitset) ClearRange(start, end uint) {
	b.applyRange(start, end, false)
}

func (b *Bitset) applyRange(start, end uint, set bool) {
	if start >= end || end > NumBits {
		panic(fmt.Sprintf("invalid range [%d, %d)", start, end))
	}

	for i := start; i < end; {
		w, bit := i/wordSize, i%wordSize
		n := min(wordSize-bit, end-i)
		mask := ^uint64(0)
		if n < wordSize {
			mask = (uint64(1)<<n - 1) << bit
		}
		if set {
			b.words[w] |= mask
		} else {
			b.words[w] &^= mask
		}
		i += n
	}
}

// FirstClear returns the index of the lowest cleared bit. ok is false if all
// bits are set.
func (b *Bitset) FirstClear() (idx uint, ok bool) {
	for w, word := range b.words {
		if word == ^uint64(0) {
			continue
		}
		for bit := uint(0); bit < wordSize; bit++ {
			if word&(1<<bit) == 0 {
				return uint(w)*wordSize + bit, true
			}
		}
	}
	return 0, false
}

func (b *Bitset) Reset() {
	clear(b.words[:])
}
