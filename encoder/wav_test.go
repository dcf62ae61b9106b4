package encoder

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sine(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.8 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}
	return out
}

func roundTrip(t *testing.T, samples []float32, f Format) []float32 {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk"+f.Ext())
	if err := WriteFile(path, samples, f); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	got, rate, err := DecodeWAV(file)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if rate != SampleRate {
		t.Errorf("sample rate = %d, want %d", rate, SampleRate)
	}
	if len(got) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(samples))
	}
	return got
}

func TestWAV32RoundTrip(t *testing.T) {
	samples := sine(SampleRate / 4)
	samples = append(samples, 1, -1, 0, 1e-7)
	got := roundTrip(t, samples, FormatWAV32)
	for i := range samples {
		if math.Abs(float64(got[i]-samples[i])) > 1e-7 {
			t.Fatalf("sample %d: got %f, want %f", i, got[i], samples[i])
		}
	}
}

func TestWAV16RoundTrip(t *testing.T) {
	samples := sine(SampleRate / 4)
	samples = append(samples, 1, -1, 0)
	got := roundTrip(t, samples, FormatWAV16)
	for i := range samples {
		if math.Abs(float64(got[i]-samples[i])) > 1.0/32767 {
			t.Fatalf("sample %d: got %f, want %f", i, got[i], samples[i])
		}
	}
}

func TestWAV16Clamps(t *testing.T) {
	got := roundTrip(t, []float32{2, -3}, FormatWAV16)
	if got[0] != 1 || got[1] != -1 {
		t.Errorf("got %v, want [1 -1]", got)
	}
}

func TestWriteFileRefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taken.wav")
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, sine(10), FormatWAV16); err == nil {
		t.Error("expected error for existing file")
	}
}

func TestParseFormat(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Format
	}{
		{"wav", FormatWAV16},
		{"wav16", FormatWAV16},
		{"wav32", FormatWAV32},
		{"flac", FormatFLAC},
	} {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseFormat("mp3"); err == nil {
		t.Error("expected error for mp3")
	}
}
