package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestModuleByName(t *testing.T) {
	for _, name := range ModuleNames() {
		mod, ok := ModuleByName(name)
		if !ok {
			t.Fatalf("ModuleByName(%q) not found", name)
		}
		if mod.String() != name {
			t.Errorf("ModuleByName(%q).String() = %q", name, mod.String())
		}
	}

	if _, ok := ModuleByName("<error>"); ok {
		t.Errorf("ModuleByName(<error>) should not be found")
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(nopWriter{})
		DisableDebugModules(ModuleMaskAll)
		Enable()
	})
	return &buf
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestEntryZ(t *testing.T) {
	buf := captureLogs(t)

	ModCPU.WarnZ("unknown opcode").
		Hex16("pc", 0x0150).
		Hex8("opcode", 0xD3).
		Error("err", errors.New("boom")).
		End()

	out := buf.String()
	for _, want := range []string{"unknown opcode", "_mod=cpu", "pc=0150", "opcode=d3", "err=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q doesn't contain %q", out, want)
		}
	}
}

func TestDebugFiltering(t *testing.T) {
	buf := captureLogs(t)

	if e := ModPPU.DebugZ("hidden"); e != nil {
		t.Fatalf("DebugZ on a non-enabled module should return nil")
	}
	// nil entries are safe to use.
	ModPPU.DebugZ("hidden").Int("ly", 12).End()
	if buf.Len() != 0 {
		t.Fatalf("got output for a disabled module: %q", buf.String())
	}

	EnableDebugModules(ModPPU.Mask())
	ModPPU.DebugZ("shown").Int("ly", 12).End()
	if !strings.Contains(buf.String(), "ly=12") {
		t.Errorf("missing debug output, got %q", buf.String())
	}
}

func TestDisable(t *testing.T) {
	buf := captureLogs(t)

	Disable()
	ModEmu.ErrorZ("silenced").End()
	if buf.Len() != 0 {
		t.Errorf("got output while disabled: %q", buf.String())
	}
}

func TestFieldValues(t *testing.T) {
	tests := []struct {
		f    zfield
		want string
	}{
		{zfield{kind: kindString, str: "vram"}, "vram"},
		{zfield{kind: kindBool, num: 1}, "true"},
		{zfield{kind: kindBool}, "false"},
		{zfield{kind: kindHex8, num: 0x0A}, "0a"},
		{zfield{kind: kindHex16, num: 0xFF40}, "ff40"},
		{zfield{kind: kindInt, num: 144}, "144"},
		{zfield{kind: kindError}, "<nil>"},
		{zfield{kind: kindStringer, sv: ModTimer}, "timer"},
	}
	for _, tt := range tests {
		if got := tt.f.value(); got != tt.want {
			t.Errorf("value() = %q want %q", got, tt.want)
		}
	}
}
