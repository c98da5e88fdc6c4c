package hw

import (
	"errors"
	"testing"
)

func TestCPUReset(t *testing.T) {
	cpu := newTestCPU(t)

	checks := []struct {
		name      string
		got, want uint16
	}{
		{"AF", cpu.AF.Get(), 0x01B0},
		{"BC", cpu.BC.Get(), 0x0013},
		{"DE", cpu.DE.Get(), 0x00D8},
		{"HL", cpu.HL.Get(), 0x014D},
		{"SP", cpu.SP, 0xFFFE},
		{"PC", cpu.PC, 0x0100},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = $%04X want $%04X", c.name, c.got, c.want)
		}
	}

	cpu.Reset(true)
	if cpu.PC != 0 || cpu.AF.Get() != 0 {
		t.Errorf("with boot image, got PC=$%04X AF=$%04X, want zeroes", cpu.PC, cpu.AF.Get())
	}
}

func TestRegPair(t *testing.T) {
	var r Regs

	r.BC.Set(0x1234)
	if r.BC.Hi != 0x12 || r.BC.Lo != 0x34 {
		t.Errorf("BC halves = $%02X $%02X want $12 $34", r.BC.Hi, r.BC.Lo)
	}

	r.SetAF(0xABCD)
	if got := r.AF.Get(); got != 0xABC0 {
		t.Errorf("AF = $%04X want $ABC0, low nibble of F must read 0", got)
	}
}

func TestFlagsString(t *testing.T) {
	tests := []struct {
		f    Flags
		want string
	}{
		{0, "znhc"},
		{FlagZ | FlagC, "ZnhC"},
		{FlagN | FlagH, "zNHc"},
		{0xF0, "ZNHC"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("Flags(%02X).String() = %q want %q", uint8(tt.f), got, tt.want)
		}
	}
}

func TestNOP(t *testing.T) {
	cpu := newTestCPU(t)

	for i := range 100 {
		if cycles := cpu.Tick(); cycles != 4 {
			t.Fatalf("tick %d: cycles = %d want 4", i, cycles)
		}
	}
	wantPC(t, cpu, 0x0100+100)
	if cpu.Clock != 400 {
		t.Errorf("Clock = %d want 400", cpu.Clock)
	}
}

func TestDEC(t *testing.T) {
	cpu := newTestCPU(t,
		0x06, 0x01, // LD B,$01
		0x05, // DEC B
		0x05, // DEC B
	)

	tick(cpu, 2)
	if cpu.BC.Hi != 0 {
		t.Errorf("B = $%02X want $00", cpu.BC.Hi)
	}
	// Carry is set after boot and must be preserved.
	wantFlags(t, cpu, FlagZ|FlagN|FlagC)

	tick(cpu, 1)
	if cpu.BC.Hi != 0xFF {
		t.Errorf("B = $%02X want $FF", cpu.BC.Hi)
	}
	wantFlags(t, cpu, FlagN|FlagH|FlagC)
}

func TestXORA(t *testing.T) {
	cpu := newTestCPU(t, 0xAF) // XOR A

	if cycles := cpu.Tick(); cycles != 4 {
		t.Errorf("cycles = %d want 4", cycles)
	}
	if cpu.AF.Hi != 0 {
		t.Errorf("A = $%02X want $00", cpu.AF.Hi)
	}
	wantFlags(t, cpu, FlagZ)
}

func TestCallRet(t *testing.T) {
	cpu := newTestCPU(t, 0xCD, 0x00, 0x02) // CALL $0200
	cpu.Bus.Write8(0x0200, 0xC9)            // RET

	if cycles := cpu.Tick(); cycles != 24 {
		t.Errorf("CALL cycles = %d want 24", cycles)
	}
	wantPC(t, cpu, 0x0200)
	if cpu.SP != 0xFFFC {
		t.Errorf("SP = $%04X want $FFFC", cpu.SP)
	}
	if got := cpu.Bus.Read16(0xFFFC); got != 0x0103 {
		t.Errorf("return address = $%04X want $0103", got)
	}

	if cycles := cpu.Tick(); cycles != 16 {
		t.Errorf("RET cycles = %d want 16", cycles)
	}
	wantPC(t, cpu, 0x0103)
	if cpu.SP != 0xFFFE {
		t.Errorf("SP = $%04X want $FFFE", cpu.SP)
	}
}

func TestConditionalCycles(t *testing.T) {
	// Z is set after boot.
	cpu := newTestCPU(t,
		0x20, 0x05, // JR NZ,+5 (not taken)
		0x28, 0x05, // JR Z,+5 (taken)
	)

	if cycles := cpu.Tick(); cycles != 8 {
		t.Errorf("JR NZ not taken: cycles = %d want 8", cycles)
	}
	wantPC(t, cpu, 0x0102)

	if cycles := cpu.Tick(); cycles != 12 {
		t.Errorf("JR Z taken: cycles = %d want 12", cycles)
	}
	wantPC(t, cpu, 0x0109)
}

func TestBranchCycles(t *testing.T) {
	// After boot Z and C are set: NZ and NC fail, Z and C hold.
	tests := []struct {
		name   string
		prog   []byte
		cycles int
		pc     uint16
	}{
		{"JR r8", []byte{0x18, 0xFE}, 12, 0x0100},
		{"JR NC,r8", []byte{0x30, 0x10}, 8, 0x0102},
		{"JR C,r8", []byte{0x38, 0x10}, 12, 0x0112},
		{"JP a16", []byte{0xC3, 0x50, 0x01}, 16, 0x0150},
		{"JP NZ,a16", []byte{0xC2, 0x50, 0x01}, 12, 0x0103},
		{"JP Z,a16", []byte{0xCA, 0x50, 0x01}, 16, 0x0150},
		{"JP HL", []byte{0xE9}, 4, 0x014D},
		{"CALL a16", []byte{0xCD, 0x50, 0x01}, 24, 0x0150},
		{"CALL NC,a16", []byte{0xD4, 0x50, 0x01}, 12, 0x0103},
		{"CALL C,a16", []byte{0xDC, 0x50, 0x01}, 24, 0x0150},
		{"RST $28", []byte{0xEF}, 16, 0x0028},
		{"RET", []byte{0xC9}, 16, 0x0000},
		{"RETI", []byte{0xD9}, 16, 0x0000},
		{"RET NZ", []byte{0xC0}, 8, 0x0101},
		{"RET Z", []byte{0xC8}, 20, 0x0000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := newTestCPU(t, tt.prog...)
			cpu.SP = 0xC100 // cleared WRAM: returns land on $0000

			if cycles := cpu.Tick(); cycles != tt.cycles {
				t.Errorf("cycles = %d want %d", cycles, tt.cycles)
			}
			wantPC(t, cpu, tt.pc)
		})
	}
}

// Every legal opcode charges either its base cost or, for conditional
// instructions, its taken cost. None is free.
func TestOpcodeCycles(t *testing.T) {
	for op := range 256 {
		if op == 0xCB || IsIllegal(uint8(op)) {
			continue
		}

		cpu := newTestCPU(t, uint8(op))
		info := opinfo[op]
		cycles := cpu.Tick()
		if cycles == 0 {
			t.Errorf("%02X %s: charged 0 cycles", op, info.Name)
			continue
		}
		if cycles != int(info.Cycles) && (info.Taken == 0 || cycles != int(info.Taken)) {
			t.Errorf("%02X %s: cycles = %d want %d (taken %d)", op, info.Name, cycles, info.Cycles, info.Taken)
		}
	}
}

func TestCBOps(t *testing.T) {
	cpu := newTestCPU(t,
		0x3E, 0x01, // LD A,$01
		0xCB, 0x37, // SWAP A
		0x21, 0x00, 0xC0, // LD HL,$C000
		0xCB, 0xC6, // SET 0,(HL)
		0xCB, 0x46, // BIT 0,(HL)
	)

	tick(cpu, 1)
	if cycles := cpu.Tick(); cycles != 8 {
		t.Errorf("SWAP A cycles = %d want 8", cycles)
	}
	if cpu.AF.Hi != 0x10 {
		t.Errorf("A = $%02X want $10", cpu.AF.Hi)
	}
	wantFlags(t, cpu, 0)

	tick(cpu, 1)
	if cycles := cpu.Tick(); cycles != 16 {
		t.Errorf("SET 0,(HL) cycles = %d want 16", cycles)
	}
	wantMem8(t, cpu.Bus, 0xC000, 0x01)

	if cycles := cpu.Tick(); cycles != 12 {
		t.Errorf("BIT 0,(HL) cycles = %d want 12", cycles)
	}
	wantFlags(t, cpu, FlagH)
}

func TestInterruptPriority(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.IRQ.IME = true
	cpu.IRQ.IE.Value = 0x1F
	cpu.IRQ.Request(IntJoypad)
	cpu.IRQ.Request(IntVBlank)

	if cycles := cpu.Tick(); cycles != 20 {
		t.Errorf("cycles = %d want 20", cycles)
	}
	wantPC(t, cpu, IntVBlank.Vector())
	if cpu.SP != 0xFFFC {
		t.Errorf("SP = $%04X want $FFFC", cpu.SP)
	}
	if got := cpu.Bus.Read16(cpu.SP); got != 0x0100 {
		t.Errorf("pushed PC = $%04X want $0100", got)
	}
	if cpu.IRQ.IME {
		t.Errorf("IME still set after servicing an interrupt")
	}
	if got := cpu.IRQ.IF.Value; got != IntJoypad.Mask() {
		t.Errorf("IF = %05b want %05b", got, IntJoypad.Mask())
	}
}

func TestInterruptVectors(t *testing.T) {
	want := map[Interrupt]uint16{
		IntVBlank:  0x40,
		IntLCDStat: 0x48,
		IntTimer:   0x50,
		IntSerial:  0x58,
		IntJoypad:  0x60,
	}
	for irq, vec := range want {
		if got := irq.Vector(); got != vec {
			t.Errorf("%s vector = $%04X want $%04X", irq, got, vec)
		}
	}
}

func TestIFReadsUnusedBits(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.IRQ.Request(IntTimer)

	wantMem8(t, cpu.Bus, 0xFF0F, 0xE4)

	cpu.Bus.Write8(0xFF0F, 0xFF)
	if got := cpu.IRQ.IF.Value; got != 0x1F {
		t.Errorf("IF = $%02X want $1F", got)
	}
}

func TestEIDelay(t *testing.T) {
	cpu := newTestCPU(t,
		0xFB, // EI
		0x00, // NOP
		0x00, // NOP
	)
	cpu.IRQ.IE.Value = IntVBlank.Mask()
	cpu.IRQ.Request(IntVBlank)

	tick(cpu, 1)
	if cpu.IRQ.IME {
		t.Fatalf("IME set right after EI")
	}
	wantPC(t, cpu, 0x0101)

	tick(cpu, 1)
	if !cpu.IRQ.IME {
		t.Fatalf("IME not set after the instruction following EI")
	}
	wantPC(t, cpu, 0x0102)

	if cycles := cpu.Tick(); cycles != 20 {
		t.Errorf("cycles = %d want 20", cycles)
	}
	wantPC(t, cpu, 0x0040)
}

func TestHalt(t *testing.T) {
	cpu := newTestCPU(t, 0x76) // HALT

	tick(cpu, 1)
	if !cpu.Halted() {
		t.Fatalf("CPU not halted")
	}
	for range 10 {
		if cycles := cpu.Tick(); cycles != 4 {
			t.Fatalf("halted cycles = %d want 4", cycles)
		}
	}
	wantPC(t, cpu, 0x0101)

	// IME is clear, so the CPU wakes up without servicing the interrupt.
	cpu.IRQ.IE.Value = IntTimer.Mask()
	cpu.IRQ.Request(IntTimer)

	tick(cpu, 1)
	if cpu.Halted() {
		t.Errorf("CPU still halted with a pending interrupt")
	}
	wantPC(t, cpu, 0x0102)
}

func TestIllegalOpcode(t *testing.T) {
	cpu := newTestCPU(t, 0xD3)

	if cycles := cpu.Tick(); cycles != 0 {
		t.Errorf("cycles = %d want 0", cycles)
	}

	var operr *OpcodeError
	if !errors.As(cpu.Fault(), &operr) {
		t.Fatalf("Fault() = %v, want an *OpcodeError", cpu.Fault())
	}
	if operr.PC != 0x0100 || operr.Opcode != 0xD3 {
		t.Errorf("got opcode $%02X at $%04X, want $D3 at $0100", operr.Opcode, operr.PC)
	}

	// The CPU stays stopped.
	clock := cpu.Clock
	if cycles := cpu.Tick(); cycles != 0 {
		t.Errorf("cycles after fault = %d want 0", cycles)
	}
	wantPC(t, cpu, 0x0100)
	if cpu.Clock != clock {
		t.Errorf("Clock moved after fault: %d -> %d", clock, cpu.Clock)
	}
}

func TestPushPopAF(t *testing.T) {
	cpu := newTestCPU(t,
		0x01, 0xFF, 0x12, // LD BC,$12FF
		0xC5, // PUSH BC
		0xF1, // POP AF
	)

	tick(cpu, 3)
	if got := cpu.AF.Get(); got != 0x12F0 {
		t.Errorf("AF = $%04X want $12F0", got)
	}
}

func BenchmarkCPUTick(b *testing.B) {
	cpu := newTestCPU(b,
		0x3C,       // INC A
		0x18, 0xFD, // JR -3
	)

	for b.Loop() {
		cpu.Tick()
	}
}
