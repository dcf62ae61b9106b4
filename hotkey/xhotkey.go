package hotkey

import (
	"golang.design/x/hotkey"
)

type xHotkey struct {
	hk      *hotkey.Hotkey
	keydown chan struct{}
	keyup   chan struct{}
	done    chan struct{}
}

// New creates a global hotkey for chord (X11/Cocoa/Win32).
func New(chord Chord) Hotkey {
	return &xHotkey{
		hk:      hotkey.New(chord.mods, chord.key),
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (h *xHotkey) Register() error {
	if err := h.hk.Register(); err != nil {
		return err
	}
	go h.forward(h.hk.Keydown(), h.keydown)
	go h.forward(h.hk.Keyup(), h.keyup)
	return nil
}

func (h *xHotkey) forward(in <-chan hotkey.Event, out chan<- struct{}) {
	for {
		select {
		case <-in:
		case <-h.done:
			return
		}
		select {
		case out <- struct{}{}:
		case <-h.done:
			return
		}
	}
}

func (h *xHotkey) Unregister() {
	close(h.done)
	h.hk.Unregister()
}

func (h *xHotkey) Keydown() <-chan struct{} { return h.keydown }

func (h *xHotkey) Keyup() <-chan struct{} { return h.keyup }
