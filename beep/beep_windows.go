//go:build windows

package beep

// No cue playback on Windows.
func play([]int16) {}
