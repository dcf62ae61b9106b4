package audio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// SelectDevice asks the user to pick a capture device with the arrow keys.
// A single available device is returned without prompting.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	switch len(devices) {
	case 0:
		return nil, ErrNoInputDevice
	case 1:
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	render := func() {
		fmt.Print("\r\x1b[J")
		fmt.Print("Microphone for dictation (up/down, Enter):\r\n\r\n")
		for i, d := range devices {
			marker := "  "
			if i == cursor {
				marker = "> "
			}
			warn := ""
			if IsBluetooth(d.Name) {
				warn = " (bluetooth, reduced quality)"
			}
			fmt.Printf("  %s%s%s\r\n", marker, d.Name, warn)
		}
	}
	render()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		switch {
		case n == 1 && buf[0] == '\r':
			fmt.Print("\r\n")
			return &devices[cursor], nil
		case n == 1 && buf[0] == 3: // ctrl+c
			fmt.Print("\r\n")
			return nil, fmt.Errorf("device selection cancelled")
		case n == 1 && buf[0] == 'j', n == 3 && buf[0] == 0x1b && buf[2] == 'B':
			cursor = min(cursor+1, len(devices)-1)
		case n == 1 && buf[0] == 'k', n == 3 && buf[0] == 0x1b && buf[2] == 'A':
			cursor = max(cursor-1, 0)
		}
		fmt.Printf("\x1b[%dA", len(devices)+2)
		render()
	}
}
