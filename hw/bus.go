package hw

import (
	"dotmatrix/emu/log"
	"dotmatrix/hw/hwio"
)

// Memory map boundaries.
const (
	ROMBase      = 0x0000
	VRAMBase     = 0x8000
	SRAMBase     = 0xA000
	WRAMBase     = 0xC000
	EchoBase     = 0xE000
	OAMBase      = 0xFE00
	UnusableBase = 0xFEA0
	IOBase       = 0xFF00
	HRAMBase     = 0xFF80
	IEAddr       = 0xFFFF

	BootSize = 0x100
)

// Bus is the CPU address space. It owns all memory regions; I/O registers
// are owned by their respective devices and mapped here.
type Bus struct {
	*hwio.Table

	ROM  hwio.Mem
	VRAM hwio.Mem `hwio:"wcb"`
	SRAM hwio.Mem
	WRAM hwio.Mem
	OAM  hwio.Mem
	HRAM hwio.Mem

	BOOT hwio.Reg8 `hwio:"offset=0x50,rcb,wcb"`

	// Fault holds the first access to an unmapped address, if any.
	Fault *hwio.AddressFault

	cart      []byte
	bootOn    bool
	vramWatch func(addr uint16)
}

// NewBus creates the address space for the given cartridge image. When boot
// is non-nil it's overlaid at address 0 until the program writes to the
// BOOT register. With protectROM, writes to the ROM window are dropped.
func NewBus(cart, boot []byte, protectROM bool) *Bus {
	b := &Bus{
		Table: hwio.NewTable("bus"),
		cart:  cart,
		ROM:   hwio.Mem{Name: "ROM", Data: make([]byte, 0x8000)},
		VRAM:  hwio.Mem{Name: "VRAM", Data: make([]byte, 0x2000)},
		SRAM:  hwio.Mem{Name: "SRAM", Data: make([]byte, 0x2000)},
		WRAM:  hwio.Mem{Name: "WRAM", Data: make([]byte, 0x2000)},
		OAM:   hwio.Mem{Name: "OAM", Data: make([]byte, 0xA0)},
		HRAM:  hwio.Mem{Name: "HRAM", Data: make([]byte, 0x7F)},
	}
	hwio.MustInitRegs(b)

	copy(b.ROM.Data, cart)
	if len(cart) > len(b.ROM.Data) {
		log.ModMem.WarnZ("cartridge larger than the ROM window, only the first 32KiB are mapped").
			Int("size", len(cart)).
			End()
	}
	if boot != nil {
		copy(b.ROM.Data[:BootSize], boot)
		b.bootOn = true
	}
	if protectROM {
		b.ROM.Flags = hwio.MemFlagNoROLog
	}

	b.Table.OnFault = func(f *hwio.AddressFault) {
		if b.Fault == nil {
			b.Fault = f
		}
	}

	b.MapMem(ROMBase, &b.ROM)
	b.MapMem(VRAMBase, &b.VRAM)
	b.MapMem(SRAMBase, &b.SRAM)
	b.MapMem(WRAMBase, &b.WRAM)
	b.MapSentinel(EchoBase, OAMBase-1, hwio.Sentinel{Name: "echo", Value: 0xFF})
	b.MapMem(OAMBase, &b.OAM)
	b.MapSentinel(UnusableBase, IOBase-1, hwio.Sentinel{Name: "unusable", Value: 0xFF})
	b.MapSentinel(IOBase, HRAMBase-1, hwio.Sentinel{Name: "io", Value: 0xFF})
	b.MapMem(HRAMBase, &b.HRAM)
	b.MapBank(IOBase, b, 0)
	return b
}

// BootActive reports whether the boot image is still overlaid at address 0.
func (b *Bus) BootActive() bool { return b.bootOn }

// ReadBOOT always returns 0xFF, the register is write-only in practice.
func (b *Bus) ReadBOOT(_ uint8) uint8 { return 0xFF }

// WriteBOOT removes the boot overlay on the first non-zero write. This
// can't be undone.
func (b *Bus) WriteBOOT(_, val uint8) {
	if !b.bootOn || val == 0 {
		return
	}
	b.bootOn = false

	n := min(BootSize, len(b.cart))
	b.Load(ROMBase, b.cart[:n])
	log.ModMem.InfoZ("boot overlay removed").End()
}

// WriteVRAM forwards VRAM writes to the registered watcher.
func (b *Bus) WriteVRAM(addr uint16, _ uint8) {
	if b.vramWatch != nil {
		b.vramWatch(addr)
	}
}

// WatchVRAM registers fn to be called on every VRAM write.
func (b *Bus) WatchVRAM(fn func(addr uint16)) { b.vramWatch = fn }

// Copy copies n bytes from src to dst through the bus, as a DMA would.
func (b *Bus) Copy(dst, src uint16, n int) {
	for i := range n {
		b.Write8(dst+uint16(i), b.Read8(src+uint16(i)))
	}
}

// Load copies p directly into the storage backing dst, bypassing write
// protection and callbacks. Addresses not backed by storage go through the
// bus.
func (b *Bus) Load(dst uint16, p []byte) {
	for len(p) > 0 {
		mem := b.FetchPointer(dst)
		if len(mem) == 0 {
			b.Write8(dst, p[0])
			dst++
			p = p[1:]
			continue
		}
		n := copy(mem, p)
		dst += uint16(n)
		p = p[n:]
	}
}
