package cart

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/go-faster/jx"
)

// Header offsets
const (
	offTitle          = 0x134
	offCGB            = 0x143
	offType           = 0x147
	offROMSize        = 0x148
	offRAMSize        = 0x149
	offHeaderChecksum = 0x14D
	offGlobalChecksum = 0x14E
)

type Type uint8

const (
	RomOnly Type = 0x00
	MBC1    Type = 0x01
)

var typeNames = map[Type]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x08: "ROM+RAM",
	0x09: "ROM+RAM+BATTERY",
	0x0B: "MMM01",
	0x0C: "MMM01+RAM",
	0x0D: "MMM01+RAM+BATTERY",
	0x0F: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x19: "MBC5",
	0x1A: "MBC5+RAM",
	0x1B: "MBC5+RAM+BATTERY",
	0x1C: "MBC5+RUMBLE",
	0x1D: "MBC5+RUMBLE+RAM",
	0x1E: "MBC5+RUMBLE+RAM+BATTERY",
	0x20: "MBC6",
	0x22: "MBC7+SENSOR+RUMBLE+RAM+BATTERY",
	0xFC: "POCKET CAMERA",
	0xFD: "BANDAI TAMA5",
	0xFE: "HuC3",
	0xFF: "HuC1+RAM+BATTERY",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("unknown(0x%02X)", uint8(t))
}

// RAM sizes in bytes, indexed by RAM size code.
var ramSizes = [...]int{0, 2 << 10, 8 << 10, 32 << 10, 128 << 10, 64 << 10}

type Header struct {
	Title          string
	CGB            uint8
	Type           Type
	ROMSizeCode    uint8
	RAMSizeCode    uint8
	HeaderChecksum uint8
	GlobalChecksum uint16
}

// HeaderChecksum computes the checksum of header bytes 0x134-0x14C, as
// verified by the boot program.
func HeaderChecksum(p []byte) uint8 {
	var x uint8
	for _, b := range p[offTitle:offHeaderChecksum] {
		x = x - b - 1
	}
	return x
}

func (hdr *Header) decode(p []byte) error {
	if len(p) < 0x150 {
		return fmt.Errorf("too small, needs 0x150 bytes")
	}

	hdr.CGB = p[offCGB]
	title := p[offTitle : offCGB+1]
	if hdr.CGB&0x80 != 0 {
		title = p[offTitle:offCGB]
	}
	hdr.Title = strings.TrimRight(string(title), "\x00")
	hdr.Type = Type(p[offType])
	hdr.ROMSizeCode = p[offROMSize]
	hdr.RAMSizeCode = p[offRAMSize]
	hdr.HeaderChecksum = p[offHeaderChecksum]
	hdr.GlobalChecksum = uint16(p[offGlobalChecksum])<<8 | uint16(p[offGlobalChecksum+1])

	if sum := HeaderChecksum(p); sum != hdr.HeaderChecksum {
		return fmt.Errorf("%w: computed 0x%02X, header says 0x%02X", ErrHeaderChecksum, sum, hdr.HeaderChecksum)
	}
	return nil
}

// ROMSize returns the ROM size, in bytes, declared in the header.
func (hdr *Header) ROMSize() int {
	return MinSize << hdr.ROMSizeCode
}

// RAMSize returns the external RAM size, in bytes, declared in the header.
func (hdr *Header) RAMSize() int {
	if int(hdr.RAMSizeCode) >= len(ramSizes) {
		return 0
	}
	return ramSizes[hdr.RAMSizeCode]
}

// PrintInfos prints the header in a human readable form.
func (hdr *Header) PrintInfos(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Title:\t%s\n", hdr.Title)
	fmt.Fprintf(tw, "Type:\t%s (0x%02X)\n", hdr.Type, uint8(hdr.Type))
	fmt.Fprintf(tw, "CGB flag:\t0x%02X\n", hdr.CGB)
	fmt.Fprintf(tw, "ROM size:\t%dKiB\n", hdr.ROMSize()>>10)
	fmt.Fprintf(tw, "RAM size:\t%dKiB\n", hdr.RAMSize()>>10)
	fmt.Fprintf(tw, "Header checksum:\t0x%02X\n", hdr.HeaderChecksum)
	fmt.Fprintf(tw, "Global checksum:\t0x%04X\n", hdr.GlobalChecksum)
	tw.Flush()
}

// EncodeJSON writes the header as a JSON object.
func (hdr *Header) EncodeJSON(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("title", func(e *jx.Encoder) { e.Str(hdr.Title) })
		e.Field("type", func(e *jx.Encoder) { e.Str(hdr.Type.String()) })
		e.Field("type_code", func(e *jx.Encoder) { e.UInt8(uint8(hdr.Type)) })
		e.Field("cgb", func(e *jx.Encoder) { e.UInt8(hdr.CGB) })
		e.Field("rom_size", func(e *jx.Encoder) { e.Int(hdr.ROMSize()) })
		e.Field("ram_size", func(e *jx.Encoder) { e.Int(hdr.RAMSize()) })
		e.Field("header_checksum", func(e *jx.Encoder) { e.UInt8(hdr.HeaderChecksum) })
		e.Field("global_checksum", func(e *jx.Encoder) { e.UInt16(hdr.GlobalChecksum) })
	})
}
