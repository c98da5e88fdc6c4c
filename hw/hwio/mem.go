package hwio

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlagReadOnly  MemFlags = (1 << iota) // writes are rejected and logged
	MemFlagNoROLog                          // writes are silently dropped
)

// Mem is a linear memory area that can be mapped into a Table. Accesses are
// served directly by the table from Data.
type Mem struct {
	Name    string              // name of the memory area (for debugging)
	Data    []byte              // actual memory buffer
	Flags   MemFlags            // flags determining how the memory can be accessed
	WriteCb func(uint16, uint8) // optional callback, called after each successful write
}

// Sentinel is a range of addresses without storage. Writes are ignored and
// reads always return Value.
type Sentinel struct {
	Name  string
	Value uint8
}
