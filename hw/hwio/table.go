package hwio

import (
	"fmt"

	"dotmatrix/emu/log"
)

// BankIO8 is implemented by memory-mapped devices and registers.
type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

// Kind tags the behavior of a mapped span.
type Kind uint8

const (
	KindUnmapped Kind = iota
	KindNormal        // plain storage
	KindSentinel      // no storage, fixed read value
	KindMMIO          // delegated to a register or device
)

type span struct {
	name       string
	kind       Kind
	begin, end uint16 // inclusive

	data  []byte
	flags MemFlags
	wcb   func(uint16, uint8)

	fill uint8
	io   BankIO8
}

// Table resolves any 16-bit address to the span mapped there. Lookups go
// through a flat per-address index so that dispatch costs a single array
// access. Later mappings take precedence over earlier ones on the addresses
// they cover.
type Table struct {
	Name string

	// OnFault, if set, is called on any access to an unmapped address.
	OnFault func(*AddressFault)

	spans  []span
	index  [0x10000]uint8
	mapped Bitset
}

func NewTable(name string) *Table {
	t := new(Table)
	t.Name = name
	t.Reset()
	return t
}

// Reset unmaps everything.
func (t *Table) Reset() {
	t.spans = append(t.spans[:0], span{name: "unmapped", kind: KindUnmapped})
	clear(t.index[:])
	t.mapped.Reset()
}

func (t *Table) insert(s span) {
	if len(t.spans) > 0xFF {
		panic(fmt.Errorf("%s: too many spans", t.Name))
	}
	if s.end < s.begin {
		panic(fmt.Errorf("%s: invalid span %s [%04X-%04X]", t.Name, s.name, s.begin, s.end))
	}
	idx := uint8(len(t.spans))
	t.spans = append(t.spans, s)
	for addr := uint(s.begin); addr <= uint(s.end); addr++ {
		t.index[addr] = idx
	}
	t.mapped.SetRange(uint(s.begin), uint(s.end)+1)
}

// MapMem maps a linear memory area at addr.
func (t *Table) MapMem(addr uint16, mem *Mem) {
	log.ModHwIo.DebugZ("mapping mem").
		Hex16("addr", addr).
		Int("size", len(mem.Data)).
		String("area", mem.Name).
		String("bus", t.Name).
		End()

	if len(mem.Data) == 0 || int(addr)+len(mem.Data) > 0x10000 {
		panic(fmt.Errorf("%s: invalid mem %s size %d at %04X", t.Name, mem.Name, len(mem.Data), addr))
	}
	t.insert(span{
		name:  mem.Name,
		kind:  KindNormal,
		begin: addr,
		end:   addr + uint16(len(mem.Data)-1),
		data:  mem.Data,
		flags: mem.Flags,
		wcb:   mem.WriteCb,
	})
}

// MapSentinel maps the inclusive range [begin, end] to a sentinel.
func (t *Table) MapSentinel(begin, end uint16, s Sentinel) {
	log.ModHwIo.DebugZ("mapping sentinel").
		Hex16("begin", begin).
		Hex16("end", end).
		String("area", s.Name).
		String("bus", t.Name).
		End()

	t.insert(span{name: s.Name, kind: KindSentinel, begin: begin, end: end, fill: s.Value})
}

func (t *Table) MapReg8(addr uint16, reg *Reg8) {
	t.insert(span{name: reg.Name, kind: KindMMIO, begin: addr, end: addr, io: reg})
}

func (t *Table) MapDevice(addr uint16, dev *Device) {
	t.insert(span{name: dev.Name, kind: KindMMIO, begin: addr, end: addr + uint16(dev.Size-1), io: dev})
}

// MapBank maps a register bank, that is a structure containing hwio fields
// tagged with a "hwio" struct tag (see InitRegs), at addr. Only the fields
// belonging to bank bankNum are mapped, each one at addr plus its offset.
func (t *Table) MapBank(addr uint16, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}

	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Mem:
			t.MapMem(addr+reg.offset, r)
		case *Reg8:
			t.MapReg8(addr+reg.offset, r)
		case *Device:
			t.MapDevice(addr+reg.offset, r)
		default:
			panic(fmt.Errorf("invalid reg type: %T", r))
		}
	}
}

// Unmap removes any mapping over the inclusive range [begin, end].
func (t *Table) Unmap(begin, end uint16) {
	for addr := uint(begin); addr <= uint(end); addr++ {
		t.index[addr] = 0
	}
	t.mapped.ClearRange(uint(begin), uint(end)+1)
}

// CheckCoverage returns an error if any address is left unmapped.
func (t *Table) CheckCoverage() error {
	if addr, ok := t.mapped.FirstClear(); ok {
		return fmt.Errorf("%s: address $%04X is not mapped", t.Name, addr)
	}
	return nil
}

// KindOf returns the kind of the span mapped at addr.
func (t *Table) KindOf(addr uint16) Kind {
	return t.spans[t.index[addr]].kind
}

func (t *Table) fault(addr uint16, write bool) {
	f := &AddressFault{Bus: t.Name, Addr: addr, Write: write}
	log.ModHwIo.ErrorZ("unmapped access").
		String("bus", t.Name).
		Hex16("addr", addr).
		Bool("write", write).
		End()
	if t.OnFault != nil {
		t.OnFault(f)
	}
}

func (t *Table) read8(addr uint16, peek bool) uint8 {
	s := &t.spans[t.index[addr]]
	switch s.kind {
	case KindNormal:
		return s.data[addr-s.begin]
	case KindSentinel:
		return s.fill
	case KindMMIO:
		return s.io.Read8(addr, peek)
	}
	if !peek {
		t.fault(addr, false)
	}
	return 0xFF
}

func (t *Table) Read8(addr uint16) uint8 {
	return t.read8(addr, false)
}

// Peek8 reads without triggering side effects.
func (t *Table) Peek8(addr uint16) uint8 {
	return t.read8(addr, true)
}

func (t *Table) Write8(addr uint16, val uint8) {
	s := &t.spans[t.index[addr]]
	switch s.kind {
	case KindNormal:
		if s.flags != MemFlagReadWrite {
			if s.flags&MemFlagReadOnly != 0 {
				log.ModHwIo.ErrorZ("Write8 to read-only address").
					String("name", s.name).
					Hex16("addr", addr).
					Hex8("val", val).
					End()
			}
			return
		}
		s.data[addr-s.begin] = val
		if s.wcb != nil {
			s.wcb(addr, val)
		}
	case KindSentinel:
	case KindMMIO:
		s.io.Write8(addr, val)
	default:
		t.fault(addr, true)
	}
}

// Read16 reads a little-endian 16-bit word.
func (t *Table) Read16(addr uint16) uint16 {
	lo := t.Read8(addr)
	hi := t.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Write16 writes a little-endian 16-bit word.
func (t *Table) Write16(addr uint16, val uint16) {
	t.Write8(addr, uint8(val))
	t.Write8(addr+1, uint8(val>>8))
}

// FetchPointer returns the storage slice backing addr, starting at addr, or
// nil if addr isn't backed by plain storage.
func (t *Table) FetchPointer(addr uint16) []uint8 {
	s := &t.spans[t.index[addr]]
	if s.kind != KindNormal {
		return nil
	}
	return s.data[addr-s.begin:]
}
