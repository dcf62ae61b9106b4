package hotkey

import (
	"fmt"
	"strings"

	"golang.design/x/hotkey"
)

// DefaultChord is the shortcut used when none is configured.
const DefaultChord = "alt+space"

// Chord is a parsed shortcut such as "alt+space" or "ctrl+shift+d".
type Chord struct {
	mods []hotkey.Modifier
	key  hotkey.Key
	name string
}

func (c Chord) String() string { return c.name }

var keys = map[string]hotkey.Key{
	"space": hotkey.KeySpace, "return": hotkey.KeyReturn, "enter": hotkey.KeyReturn,
	"tab": hotkey.KeyTab, "escape": hotkey.KeyEscape, "esc": hotkey.KeyEscape,
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD, "e": hotkey.KeyE,
	"f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH, "i": hotkey.KeyI, "j": hotkey.KeyJ,
	"k": hotkey.KeyK, "l": hotkey.KeyL, "m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO,
	"p": hotkey.KeyP, "q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX, "y": hotkey.KeyY,
	"z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}

// ParseChord reads modifiers and one key joined by "+", case-insensitively.
// Modifiers are ctrl, shift, alt (option on macOS) and super (cmd/win).
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) < 2 {
		return Chord{}, fmt.Errorf("hotkey %q needs at least one modifier and a key", s)
	}

	var c Chord
	seen := map[string]bool{}
	for _, p := range parts[:len(parts)-1] {
		p = strings.TrimSpace(p)
		name, ok := modifierAliases[p]
		if !ok {
			return Chord{}, fmt.Errorf("hotkey %q: unknown modifier %q", s, p)
		}
		if seen[name] {
			return Chord{}, fmt.Errorf("hotkey %q: %s given twice", s, name)
		}
		seen[name] = true
		c.mods = append(c.mods, modifiers[name])
	}

	last := strings.TrimSpace(parts[len(parts)-1])
	key, ok := keys[last]
	if !ok {
		return Chord{}, fmt.Errorf("hotkey %q: unsupported key %q", s, last)
	}
	c.key = key
	c.name = strings.Join(append(orderedNames(seen), last), "+")
	return c, nil
}

var modifierAliases = map[string]string{
	"ctrl": "ctrl", "control": "ctrl",
	"shift": "shift",
	"alt": "alt", "option": "alt", "opt": "alt",
	"super": "super", "cmd": "super", "command": "super", "win": "super", "meta": "super",
}

func orderedNames(seen map[string]bool) []string {
	var out []string
	for _, m := range []string{"ctrl", "shift", "alt", "super"} {
		if seen[m] {
			out = append(out, m)
		}
	}
	return out
}
