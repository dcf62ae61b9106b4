//go:build windows

package log

import (
	"os"
	"path/filepath"
)

func defaultDir() (string, error) {
	local, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(local, "limbo", "logs"), nil
}
