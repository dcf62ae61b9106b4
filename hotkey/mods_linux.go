package hotkey

import "golang.design/x/hotkey"

// X11 maps Alt to Mod1 and Super to Mod4 on every common layout.
var modifiers = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1,
	"super": hotkey.Mod4,
}
