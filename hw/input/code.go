package input

import (
	"fmt"
	"strings"

	"github.com/veandco/go-sdl2/sdl"
)

// A Code describes a keyboard key bound to a button, as written in the
// configuration file: "key <scancode name>".
type Code struct {
	Scancode sdl.Scancode
}

// Name returns an user-friendly name for the input code.
func (mc Code) Name() string {
	if mc.Scancode == sdl.SCANCODE_UNKNOWN {
		return ""
	}
	return sdl.GetScancodeName(mc.Scancode)
}

func (mc Code) MarshalText() ([]byte, error) {
	name := mc.Name()
	if name == "" {
		return []byte{}, nil
	}
	return fmt.Appendf(nil, "key %s", name), nil
}

func (mc *Code) UnmarshalText(text []byte) error {
	s := string(text)

	switch {
	case s == "":
		mc.Scancode = sdl.SCANCODE_UNKNOWN

	case strings.HasPrefix(s, "key"):
		str := strings.TrimSpace(strings.TrimPrefix(s, "key"))
		if str == "" {
			return fmt.Errorf("malformed key code: %s", s)
		}

		mc.Scancode = sdl.GetScancodeFromName(str)
		if mc.Scancode == sdl.SCANCODE_UNKNOWN {
			return fmt.Errorf("unrecognized scancode %q", str)
		}

	default:
		return fmt.Errorf("unrecognized input code: %s", s)
	}

	return nil
}
