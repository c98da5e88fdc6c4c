package input

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/veandco/go-sdl2/sdl"
)

func TestCodeMarshalRoundTrip(t *testing.T) {
	tests := []struct {
		text string
		code *Code // nil for unmarshal errors
	}{
		{"", &Code{}},
		{"key W", &Code{Scancode: sdl.SCANCODE_W}},
		{"key Up", &Code{Scancode: sdl.SCANCODE_UP}},
		{"key Return", &Code{Scancode: sdl.SCANCODE_RETURN}},

		// unmarshal errors
		{"key   ", nil},
		{"key NotAKey", nil},
		{"joybtn a 030000004c050000cc0900", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var code Code
			if err := code.UnmarshalText([]byte(tt.text)); err != nil {
				if tt.code != nil {
					t.Fatalf("UnmarshalText(%q) error: %v", tt.text, err)
				}
				t.Log("UnmarshalText error:", err)
				return
			}
			if tt.code == nil {
				t.Fatalf("UnmarshalText(%q) should have failed", tt.text)
			}

			if diff := cmp.Diff(*tt.code, code); diff != "" {
				t.Fatalf("UnmarshalText(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}

			buf, err := code.MarshalText()
			if err != nil {
				t.Fatalf("MarshalText() error: %v", err)
			}
			if string(buf) != tt.text {
				t.Errorf("MarshalText() = %q, want %q", buf, tt.text)
			}
		})
	}
}

func TestButtons(t *testing.T) {
	var b Buttons
	b.Set(Up, true)
	b.Set(Start, true)
	b.Set(A, true)
	b.Set(A, false)

	if !b.Pressed(Up) || !b.Pressed(Start) || b.Pressed(A) {
		t.Fatalf("wrong pressed state: %08b", b)
	}
	if got := b.Directions(); got != 0b0100 {
		t.Errorf("Directions() = %04b, want 0100", got)
	}
	if got := b.Actions(); got != 0b1000 {
		t.Errorf("Actions() = %04b, want 1000", got)
	}
}

func TestButtonString(t *testing.T) {
	if got := Select.String(); got != "Select" {
		t.Errorf("Select.String() = %q", got)
	}
}
