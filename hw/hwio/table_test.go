package hwio_test

import (
	"testing"

	"dotmatrix/hw/hwio"
)

type testTable struct {
	t testing.TB
	*hwio.Table
	RAM  hwio.Mem  `hwio:"bank=0,offset=0x0,size=0x800"`
	Reg1 hwio.Reg8 `hwio:"bank=1,offset=0x1,rwmask=0x0F,rcb,reset=0x99"`
}

func (tbl *testTable) ReadREG1(val uint8) uint8 {
	tbl.Reg1.Value++
	return tbl.Reg1.Value
}

func newTestTable(tb testing.TB) *testTable {
	tbl := &testTable{t: tb, Table: hwio.NewTable("bus")}
	hwio.MustInitRegs(tbl)
	tbl.Table.MapBank(0x0000, tbl, 0)
	tbl.Table.MapSentinel(0x2000, 0x20FF, hwio.Sentinel{Name: "io", Value: 0xFF})
	tbl.Table.MapBank(0x2000, tbl, 1)
	return tbl
}

func (tbl *testTable) wantRead8(addr uint16, want uint8) {
	tbl.t.Helper()
	if got := tbl.Read8(addr); got != want {
		tbl.t.Errorf("Read8(%04X) = %02X, want %02X", addr, got, want)
	}
}

func TestTableMapMem(t *testing.T) {
	tbl := newTestTable(t)

	tbl.wantRead8(0x00, 0)
	tbl.Write8(0x00, 0x12)
	tbl.wantRead8(0x00, 0x12)
	tbl.Write16(0x7FE, 0xBEEF)
	tbl.wantRead8(0x7FE, 0xEF)
	tbl.wantRead8(0x7FF, 0xBE)
	if got := tbl.Read16(0x7FE); got != 0xBEEF {
		t.Errorf("Read16(07FE) = %04X, want BEEF", got)
	}

	// Reg1 overrides the sentinel at 0x2001.
	tbl.wantRead8(0x2001, 0x9A)
	tbl.wantRead8(0x2001, 0x9B)
	tbl.Write8(0x2001, 0xFF)
	tbl.wantRead8(0x2001, 0x9F+1)
	if got := tbl.Peek8(0x2001); got != 0xA0 {
		t.Errorf("Peek8(2001) = %02X, want A0", got)
	}

	// Sentinel.
	tbl.Write8(0x2000, 0x12)
	tbl.wantRead8(0x2000, 0xFF)
	tbl.wantRead8(0x20FF, 0xFF)
	if k := tbl.KindOf(0x2002); k != hwio.KindSentinel {
		t.Errorf("KindOf(2002) = %d, want Sentinel", k)
	}
}

func TestTableFault(t *testing.T) {
	tbl := newTestTable(t)

	var faults []*hwio.AddressFault
	tbl.OnFault = func(f *hwio.AddressFault) { faults = append(faults, f) }

	tbl.wantRead8(0x4000, 0xFF)
	tbl.Write8(0x4001, 0x00)
	_ = tbl.Peek8(0x4002) // peeks never fault

	if len(faults) != 2 {
		t.Fatalf("got %d faults, want 2", len(faults))
	}
	if faults[0].Addr != 0x4000 || faults[0].Write {
		t.Errorf("fault[0] = %+v", faults[0])
	}
	if faults[1].Addr != 0x4001 || !faults[1].Write {
		t.Errorf("fault[1] = %+v", faults[1])
	}
	if err := tbl.CheckCoverage(); err == nil {
		t.Errorf("CheckCoverage should report a gap")
	}
}

func TestTableCoverage(t *testing.T) {
	tbl := hwio.NewTable("full")
	tbl.MapMem(0x0000, &hwio.Mem{Name: "lo", Data: make([]byte, 0x8000)})
	tbl.MapSentinel(0x8000, 0xFFFF, hwio.Sentinel{Name: "hi", Value: 0xFF})
	if err := tbl.CheckCoverage(); err != nil {
		t.Fatal(err)
	}

	tbl.Unmap(0xFEA0, 0xFEFF)
	if err := tbl.CheckCoverage(); err == nil {
		t.Fatal("CheckCoverage should fail after Unmap")
	}
}

func TestTableReadOnlyMem(t *testing.T) {
	tbl := hwio.NewTable("ro")
	rom := make([]byte, 0x100)
	rom[0x10] = 0xAA
	tbl.MapMem(0x0000, &hwio.Mem{Name: "rom", Data: rom, Flags: hwio.MemFlagNoROLog})

	tbl.Write8(0x10, 0x55)
	if got := tbl.Read8(0x10); got != 0xAA {
		t.Errorf("Read8(0010) = %02X, want AA", got)
	}
}

func BenchmarkTableRead8(b *testing.B) {
	tbl := newTestTable(b)
	var sum uint8
	for b.Loop() {
		for addr := uint16(0); addr < 0x800; addr++ {
			sum += tbl.Read8(addr)
		}
	}
	_ = sum
}
