package hw

import (
	"fmt"
	"strings"
)

type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

func (d DisasmOp) String() string {
	if d.Oper == "" {
		return d.Opcode
	}
	return d.Opcode + " " + d.Oper
}

// Bytes returns the representation of a DisasmOp used by the execution
// tracer: address, raw bytes and instruction, padded to a fixed width.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 40
	buf := make([]byte, totalLen)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}

	for ; off < 16; off++ {
		buf[off] = ' '
	}

	buf = append(buf[:off], d.String()...)
	for len(buf) < totalLen {
		buf = append(buf, ' ')
	}
	if len(buf) > totalLen {
		buf = append(buf, ' ')
	}
	return buf
}

// Disasm disassembles the instruction at pc, without side effects.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	return Disasm(c.Bus.Peek8, pc)
}

// Disasm disassembles the instruction at pc, reading memory with peek.
func Disasm(peek func(uint16) uint8, pc uint16) DisasmOp {
	op := peek(pc)
	d := DisasmOp{PC: pc}

	if op == 0xCB {
		cb := peek(pc + 1)
		d.Buf = []byte{op, cb}
		d.Opcode, d.Oper, _ = strings.Cut(cbName(cb), " ")
		return d
	}

	info := &opinfo[op]
	if info.Name == "" {
		d.Buf = []byte{op}
		d.Opcode = "???"
		d.Oper = fmt.Sprintf("$%02X", op)
		return d
	}

	d.Buf = make([]byte, info.Len)
	for i := range d.Buf {
		d.Buf[i] = peek(pc + uint16(i))
	}
	d.Opcode, d.Oper, _ = strings.Cut(info.Name, " ")

	switch {
	case strings.Contains(d.Oper, "d16"), strings.Contains(d.Oper, "a16"):
		v := fmt.Sprintf("$%02X%02X", d.Buf[2], d.Buf[1])
		d.Oper = strings.NewReplacer("d16", v, "a16", v).Replace(d.Oper)
	case strings.Contains(d.Oper, "SP+r8"):
		e := int8(d.Buf[1])
		sign := '+'
		if e < 0 {
			sign, e = '-', -e
		}
		d.Oper = strings.Replace(d.Oper, "SP+r8", fmt.Sprintf("SP%c$%02X", sign, uint8(e)), 1)
	case strings.Contains(d.Oper, "r8"):
		if d.Opcode == "JR" {
			target := pc + 2 + uint16(int8(d.Buf[1]))
			d.Oper = strings.Replace(d.Oper, "r8", fmt.Sprintf("$%04X", target), 1)
		} else {
			d.Oper = strings.Replace(d.Oper, "r8", fmt.Sprintf("$%02X", d.Buf[1]), 1)
		}
	case strings.Contains(d.Oper, "a8"):
		d.Oper = strings.Replace(d.Oper, "(a8)", formatAddr(0xFF00|uint16(d.Buf[1])), 1)
	case strings.Contains(d.Oper, "d8"):
		d.Oper = strings.Replace(d.Oper, "d8", fmt.Sprintf("$%02X", d.Buf[1]), 1)
	}
	return d
}

var addressLabels = map[uint16]string{
	0xFF00: "P1",
	0xFF01: "SB",
	0xFF02: "SC",
	0xFF04: "DIV",
	0xFF05: "TIMA",
	0xFF06: "TMA",
	0xFF07: "TAC",
	0xFF0F: "IF",
	0xFF40: "LCDC",
	0xFF41: "STAT",
	0xFF42: "SCY",
	0xFF43: "SCX",
	0xFF44: "LY",
	0xFF45: "LYC",
	0xFF46: "DMA",
	0xFF47: "BGP",
	0xFF48: "OBP0",
	0xFF49: "OBP1",
	0xFF4A: "WY",
	0xFF4B: "WX",
	0xFF50: "BOOT",
	0xFFFF: "IE",
}

// formatAddr formats a high page address, using register names when known.
func formatAddr(addr uint16) string {
	if label, ok := addressLabels[addr]; ok {
		return fmt.Sprintf("($%04X=%s)", addr, label)
	}
	return fmt.Sprintf("($%04X)", addr)
}
