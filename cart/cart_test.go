package cart

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"
)

// makeRom returns a valid 32KiB ROM-only image with the given title.
func makeRom(title string) []byte {
	buf := make([]byte, MinSize)
	copy(buf[offTitle:], title)
	buf[offGlobalChecksum] = 0x12
	buf[offGlobalChecksum+1] = 0x34
	buf[offHeaderChecksum] = HeaderChecksum(buf)
	return buf
}

func TestRomReadFrom(t *testing.T) {
	var rom Rom
	n, err := rom.ReadFrom(bytes.NewReader(makeRom("TETRIS")))
	if err != nil {
		t.Fatal(err)
	}
	if n != MinSize {
		t.Errorf("ReadFrom() = %d, want %d", n, MinSize)
	}

	want := Header{
		Title:          "TETRIS",
		Type:           RomOnly,
		HeaderChecksum: rom.HeaderChecksum,
		GlobalChecksum: 0x1234,
	}
	if diff := cmp.Diff(want, rom.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if rom.ROMSize() != MinSize || rom.RAMSize() != 0 {
		t.Errorf("sizes = %d/%d", rom.ROMSize(), rom.RAMSize())
	}
}

func TestRomCGBTitle(t *testing.T) {
	buf := makeRom("ABCDEFGHIJKLMNO")
	buf[offCGB] = 0x80
	buf[offHeaderChecksum] = HeaderChecksum(buf)

	var rom Rom
	if _, err := rom.ReadFrom(bytes.NewReader(buf)); err != nil {
		t.Fatal(err)
	}
	if rom.Title != "ABCDEFGHIJKLMNO" {
		t.Errorf("Title = %q", rom.Title)
	}
}

func TestRomInvalid(t *testing.T) {
	badsum := makeRom("BAD")
	badsum[offHeaderChecksum]++

	tests := []struct {
		name string
		buf  []byte
	}{
		{"too-small", make([]byte, 0x4000)},
		{"not-bank-multiple", make([]byte, MinSize+1)},
		{"checksum", badsum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rom Rom
			_, err := rom.ReadFrom(bytes.NewReader(tt.buf))
			if err == nil {
				t.Fatal("ReadFrom should have failed")
			}
			t.Log(err)
		})
	}

	var rom Rom
	_, err := rom.ReadFrom(bytes.NewReader(badsum))
	if !errors.Is(err, ErrHeaderChecksum) {
		t.Errorf("got %v, want ErrHeaderChecksum", err)
	}
}

func TestPrintInfos(t *testing.T) {
	var rom Rom
	if _, err := rom.ReadFrom(bytes.NewReader(makeRom("DMG TEST"))); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	rom.PrintInfos(&sb)
	for _, want := range []string{"DMG TEST", "ROM ONLY", "32KiB", "0x1234"} {
		if !strings.Contains(sb.String(), want) {
			t.Errorf("PrintInfos output doesn't contain %q:\n%s", want, sb.String())
		}
	}
}

func TestEncodeJSON(t *testing.T) {
	var rom Rom
	if _, err := rom.ReadFrom(bytes.NewReader(makeRom("JSON"))); err != nil {
		t.Fatal(err)
	}

	var e jx.Encoder
	rom.EncodeJSON(&e)

	got := map[string]string{}
	d := jx.DecodeBytes(e.Bytes())
	err := d.Obj(func(d *jx.Decoder, key string) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		got[key] = raw.String()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"title":           `"JSON"`,
		"type":            `"ROM ONLY"`,
		"type_code":       "0",
		"cgb":             "0",
		"rom_size":        "32768",
		"ram_size":        "0",
		"header_checksum": itoa(int(rom.HeaderChecksum)),
		"global_checksum": "4660",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func itoa(v int) string {
	var e jx.Encoder
	e.Int(v)
	return e.String()
}

func TestReadBoot(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.bin")
	if err := os.WriteFile(good, make([]byte, BootSize), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBoot(good); err != nil {
		t.Errorf("ReadBoot(good) error: %v", err)
	}

	bad := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(bad, make([]byte, BootSize+1), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBoot(bad); err == nil {
		t.Error("ReadBoot(bad) should have failed")
	}
}

func TestTypeString(t *testing.T) {
	if got := MBC1.String(); got != "MBC1" {
		t.Errorf("MBC1.String() = %q", got)
	}
	if got := Type(0x42).String(); got != "unknown(0x42)" {
		t.Errorf("Type(0x42).String() = %q", got)
	}
}
