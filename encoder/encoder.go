// Package encoder writes captured samples into the transient staging files
// that are handed to transcription backends.
package encoder

import (
	"fmt"
	"io"
	"math"
	"os"
)

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

type Format string

const (
	FormatWAV16 Format = "wav16" // 16-bit integer PCM
	FormatWAV32 Format = "wav32" // 32-bit IEEE float
	FormatFLAC  Format = "flac"  // 16-bit lossless
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatWAV16, FormatWAV32, FormatFLAC:
		return Format(s), nil
	case "wav":
		return FormatWAV16, nil
	}
	return "", fmt.Errorf("unknown audio format %q (use wav16, wav32 or flac)", s)
}

func (f Format) Ext() string {
	if f == FormatFLAC {
		return ".flac"
	}
	return ".wav"
}

func (f Format) MIMEType() string {
	if f == FormatFLAC {
		return "audio/flac"
	}
	return "audio/wav"
}

// Encode writes samples (mono, SampleRate) in the given format.
func Encode(w io.WriteSeeker, samples []float32, f Format) error {
	switch f {
	case FormatWAV16:
		return encodeWAV16(w, samples)
	case FormatWAV32:
		return encodeWAV32(w, samples)
	case FormatFLAC:
		return encodeFLAC(w, samples)
	}
	return fmt.Errorf("unknown audio format %q", f)
}

// WriteFile creates path and encodes samples into it. A partially written
// file is removed on failure.
func WriteFile(path string, samples []float32, f Format) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if err := Encode(file, samples, f); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func toInt16(s float32) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int16(math.Round(float64(s) * 32767))
}
