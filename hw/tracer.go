package hw

import (
	"fmt"
	"io"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	Regs
	Clock int64
	LY    uint8
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

type tracer struct {
	d disasmer
	w io.Writer
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

// appendReg8 appends "name:XX ".
func appendReg8(buf []byte, name byte, v uint8) []byte {
	var hex [2]byte
	hexEncode(hex[:], v)
	return append(buf, name, ':', hex[0], hex[1], ' ')
}

// write the execution trace line for the instruction about to be executed.
func (t *tracer) write(state cpuState) {
	buf := make([]byte, 0, 112)
	buf = append(buf, t.d.Disasm(state.PC).Bytes()...)
	for len(buf) < 44 {
		buf = append(buf, ' ')
	}

	buf = appendReg8(buf, 'A', state.AF.Hi)
	buf = appendReg8(buf, 'F', state.AF.Lo)
	buf = appendReg8(buf, 'B', state.BC.Hi)
	buf = appendReg8(buf, 'C', state.BC.Lo)
	buf = appendReg8(buf, 'D', state.DE.Hi)
	buf = appendReg8(buf, 'E', state.DE.Lo)
	buf = appendReg8(buf, 'H', state.HL.Hi)
	buf = appendReg8(buf, 'L', state.HL.Lo)

	buf = fmt.Appendf(buf, "SP:%04X LY:%-3d %d\n", state.SP, state.LY, state.Clock)
	t.w.Write(buf)
}
