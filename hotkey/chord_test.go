package hotkey

import (
	"strings"
	"testing"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		in, name string
		mods     int
	}{
		{"alt+space", "alt+space", 1},
		{" Ctrl + Shift + Space ", "ctrl+shift+space", 2},
		{"cmd+option+d", "alt+super+d", 2},
		{"shift+ctrl+f9", "ctrl+shift+f9", 2},
	}
	for _, tt := range tests {
		c, err := ParseChord(tt.in)
		if err != nil {
			t.Errorf("ParseChord(%q): %v", tt.in, err)
			continue
		}
		if c.String() != tt.name || len(c.mods) != tt.mods {
			t.Errorf("ParseChord(%q) = %s with %d modifiers, want %s with %d", tt.in, c, len(c.mods), tt.name, tt.mods)
		}
	}
}

func TestParseChordRejects(t *testing.T) {
	for in, want := range map[string]string{
		"space":         "at least one modifier",
		"hyper+space":   "unknown modifier",
		"alt+alt+space": "twice",
		"alt+pagedown":  "unsupported key",
		"ctrl+shift+":   "unsupported key",
	} {
		_, err := ParseChord(in)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("ParseChord(%q) = %v, want error mentioning %q", in, err, want)
		}
	}
}

func TestDefaultChordParses(t *testing.T) {
	if _, err := ParseChord(DefaultChord); err != nil {
		t.Fatal(err)
	}
}
