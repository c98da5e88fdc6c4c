package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dotmatrix/cart"
	"dotmatrix/emu"
	"dotmatrix/emu/log"
	"dotmatrix/hw"
)

func TestParseLogModules(t *testing.T) {
	tests := []struct {
		in      string
		mask    log.ModuleMask
		nolog   bool
		wantErr bool
	}{
		{in: "cpu", mask: log.ModCPU.Mask()},
		{in: "cpu,ppu", mask: log.ModCPU.Mask() | log.ModPPU.Mask()},
		{in: "all", mask: log.ModuleMaskAll},
		{in: "all,cpu", mask: log.ModuleMaskAll},
		{in: "no", nolog: true},
		{in: "no,all", wantErr: true},
		{in: "no,cpu", wantErr: true},
		{in: "apu", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		mask, nolog, err := parseLogModules(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLogModules(%q) error = %v, wantErr %t", tt.in, err, tt.wantErr)
			continue
		}
		if mask != tt.mask || nolog != tt.nolog {
			t.Errorf("parseLogModules(%q) = %x, %t want %x, %t", tt.in, mask, nolog, tt.mask, tt.nolog)
		}
	}
}

func TestOutfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serial.txt")

	f := outfile{name: path}
	if err := f.open(); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte("ok")); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if f.String() != path {
		t.Errorf("String() = %q want %q", f.String(), path)
	}

	std := outfile{name: "stdout"}
	if err := std.open(); err != nil {
		t.Fatal(err)
	}
	if err := std.Close(); err != nil {
		t.Errorf("closing stdout outfile: %v", err)
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := emu.DefaultConfig()
	applyFlags(&cfg, Run{Boot: "boot.bin", Monitor: 2, Video: "none"})

	if cfg.Emulation.BootROM != "boot.bin" {
		t.Errorf("BootROM = %q", cfg.Emulation.BootROM)
	}
	if cfg.Video.Monitor != 2 {
		t.Errorf("Monitor = %d want 2", cfg.Video.Monitor)
	}
	if !cfg.Emulation.Unthrottled {
		t.Errorf("headless runs must be unthrottled")
	}

	cfg = emu.DefaultConfig()
	applyFlags(&cfg, Run{Monitor: -1, Video: "window"})
	if cfg.Video.Monitor != 0 || cfg.Emulation.Unthrottled {
		t.Errorf("flags at their default must not override the configuration")
	}
}

func TestParseArgs(t *testing.T) {
	rom := filepath.Join(t.TempDir(), "game.gb")
	if err := os.WriteFile(rom, make([]byte, 0x8000), 0644); err != nil {
		t.Fatal(err)
	}

	cli := parseArgs([]string{"run", "--video=none", "--frames=10", "--digest", rom})
	if cli.mode != runMode {
		t.Errorf("mode = %d want runMode", cli.mode)
	}
	if cli.Run.Video != "none" || cli.Run.Frames != 10 || !cli.Run.Digest || cli.Run.RomPath != rom {
		t.Errorf("Run = %+v", cli.Run)
	}

	cli = parseArgs([]string{"rom-infos", "--json", rom})
	if cli.mode != romInfosMode || !cli.RomInfos.JSON {
		t.Errorf("mode = %d JSON = %t", cli.mode, cli.RomInfos.JSON)
	}

	cli = parseArgs([]string{"version"})
	if cli.mode != versionMode {
		t.Errorf("mode = %d want versionMode", cli.mode)
	}
}

func TestReportRunError(t *testing.T) {
	var sb strings.Builder
	reportRunError(&sb, errors.New("not a terminal"))
	if got, want := sb.String(), "fatal error:\n\tnot a terminal\n"; got != want {
		t.Errorf("reportRunError() wrote %q want %q", got, want)
	}

	// Emulation faults are logged by the emulator itself.
	sb.Reset()
	reportRunError(&sb, &emu.FaultError{Err: errors.New("unknown opcode")})
	if sb.Len() != 0 {
		t.Errorf("reportRunError() wrote %q for an emulation fault", sb.String())
	}
}

// writeTestRom writes a 32KiB cartridge running prog from the entry point.
func writeTestRom(t *testing.T, prog ...byte) string {
	t.Helper()

	data := make([]byte, cart.MinSize)
	copy(data[0x100:], prog)
	data[0x14D] = cart.HeaderChecksum(data)

	path := filepath.Join(t.TempDir(), "test.gb")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunMainErrors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	t.Run("missing frames", func(t *testing.T) {
		err := runMain(Run{RomPath: writeTestRom(t, 0x18, 0xFE), Video: "none", Monitor: -1})
		if err == nil || !strings.Contains(err.Error(), "--frames") {
			t.Errorf("runMain() = %v, want an error about --frames", err)
		}
	})

	t.Run("fault", func(t *testing.T) {
		serial := filepath.Join(t.TempDir(), "serial.txt")
		out := &outfile{name: serial}
		if err := out.open(); err != nil {
			t.Fatal(err)
		}

		args := Run{
			RomPath: writeTestRom(t, 0x00, 0xD3),
			Video:   "none",
			Frames:  1,
			Monitor: -1,
			Serial:  out,
		}
		err := runMain(args)

		var operr *hw.OpcodeError
		if !errors.As(err, &operr) {
			t.Fatalf("runMain() = %v, want an *hw.OpcodeError", err)
		}
		var fault *emu.FaultError
		if !errors.As(err, &fault) {
			t.Errorf("runMain() = %v, want an *emu.FaultError", err)
		}
		// The serial output has been closed on return.
		if err := out.Close(); err == nil {
			t.Errorf("serial output still open after runMain")
		}
	})
}
