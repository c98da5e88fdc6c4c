package emu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"dotmatrix/emu/log"
	"dotmatrix/hw"
	"dotmatrix/hw/input"
)

type Config struct {
	Input     input.Config    `toml:"input"`
	Video     VideoConfig     `toml:"video"`
	Emulation EmulationConfig `toml:"emulation"`
}

type VideoConfig struct {
	Scale        int    `toml:"scale"`
	DisableVSync bool   `toml:"disable_vsync"`
	Palette      [4]RGB `toml:"palette"`
	Monitor      int32  `toml:"monitor"`
}

type EmulationConfig struct {
	Unthrottled bool   `toml:"unthrottled"`
	ProtectROM  bool   `toml:"protect_rom"`
	BootROM     string `toml:"boot_rom"`
}

// RGB is a colour, written "#RRGGBB" in the configuration file.
type RGB uint32

func (c RGB) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "#%06X", uint32(c)&0xFFFFFF), nil
}

func (c *RGB) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "#")
	if len(s) != 6 {
		return fmt.Errorf("invalid colour %q, want #RRGGBB", text)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid colour %q: %w", text, err)
	}
	*c = RGB(v)
	return nil
}

// Colors returns the palette as 0xRRGGBB values.
func (vcfg VideoConfig) Colors() [4]uint32 {
	var pal [4]uint32
	for i, c := range vcfg.Palette {
		pal[i] = uint32(c)
	}
	return pal
}

func DefaultConfig() Config {
	cfg := Config{
		Input: input.DefaultConfig(),
		Video: VideoConfig{
			Scale: 3,
		},
	}
	for i, c := range hw.DefaultPalette {
		cfg.Video.Palette[i] = RGB(c)
	}
	return cfg
}

const DefaultFileMode = os.FileMode(0755)

// ConfigDir returns the dotmatrix configuration directory, creating it if
// needed.
var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "dotmatrix")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadConfigOrDefault loads the configuration from the dotmatrix config
// directory, or provide a default one.
func LoadConfigOrDefault() Config {
	cfg, err := LoadConfig(filepath.Join(ConfigDir(), cfgFilename))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("invalid config file, using defaults").Error("err", err).End()
		}
		return DefaultConfig()
	}
	return cfg
}

// LoadConfig loads the configuration file at path. Missing values take
// their default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Video.Scale < 1 {
		cfg.Video.Scale = 1
	}
	return cfg, nil
}

// SaveConfig into dotmatrix config directory.
func SaveConfig(cfg Config) error {
	return saveConfig(filepath.Join(ConfigDir(), cfgFilename), cfg)
}

func saveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, buf, 0644)
}
