//go:build !windows

package log

import (
	"os"
	"path/filepath"
	"runtime"
)

// defaultDir is ~/Library/Logs/limbo on macOS and $XDG_STATE_HOME/limbo
// elsewhere.
func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "limbo"), nil
	}
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" || !filepath.IsAbs(state) {
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, "limbo"), nil
}
