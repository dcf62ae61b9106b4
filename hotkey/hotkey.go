// Package hotkey turns presses of the configured global shortcut into
// start/stop requests for the dictation core.
package hotkey

import (
	"fmt"
	"time"
)

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

type Mode string

const (
	ModeToggle Mode = "toggle" // every press flips recording on or off
	ModeHold   Mode = "hold"   // record while the keys are held
	ModeHybrid Mode = "hybrid" // tap toggles, a long press behaves like hold
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeToggle, ModeHold, ModeHybrid:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown hotkey mode %q", s)
}

type Action int

const (
	ActionToggle Action = iota
	ActionStart
	ActionStop
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	}
	return "toggle"
}

const DefaultLongPress = 400 * time.Millisecond
