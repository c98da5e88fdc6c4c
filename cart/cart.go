// Package cart decodes and validates Game Boy cartridge images and boot
// images.
package cart

import (
	"errors"
	"fmt"
	"io"
	"os"

	"dotmatrix/emu/log"
)

const (
	MinSize  = 0x8000 // smallest cartridge, 2 banks
	BankSize = 0x4000
	BootSize = 0x100
)

var ErrHeaderChecksum = errors.New("header checksum mismatch")

type Rom struct {
	Header
	Data []byte // whole cartridge image
}

// Open loads a cartridge image from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := new(Rom)
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if err := rom.decode(buf); err != nil {
		return int64(len(buf)), err
	}
	return int64(len(buf)), nil
}

func (rom *Rom) decode(buf []byte) error {
	if len(buf) < MinSize {
		return fmt.Errorf("image too small: %d bytes, needs at least %d", len(buf), MinSize)
	}
	if len(buf)%BankSize != 0 {
		return fmt.Errorf("image size %d isn't a multiple of %d", len(buf), BankSize)
	}
	if err := rom.Header.decode(buf); err != nil {
		return fmt.Errorf("failed to decode header: %w", err)
	}

	if want := rom.ROMSize(); want != len(buf) {
		log.ModCart.WarnZ("image size doesn't match header").
			Int("size", len(buf)).
			Int("header", want).
			End()
	}
	if rom.Type != RomOnly {
		log.ModCart.WarnZ("bank switching not supported, only the first 32KiB are mapped").
			String("type", rom.Type.String()).
			End()
	}
	rom.Data = buf
	return nil
}

// ReadBoot loads a boot image, which must be exactly 256 bytes.
func ReadBoot(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(buf) != BootSize {
		return nil, fmt.Errorf("boot image %s: wrong size %d, want %d", path, len(buf), BootSize)
	}
	return buf, nil
}
