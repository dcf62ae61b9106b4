//go:build !windows

package doctor

import "os/exec"

// resetTerminal undoes raw mode left behind by hotkey or device pickers.
func resetTerminal() {
	exec.Command("stty", "sane").Run()
}
