package encoder

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mewkiz/flac"
)

func TestFLACRoundTrip(t *testing.T) {
	samples := sine(BlockSize + BlockSize/2)
	path := filepath.Join(t.TempDir(), "chunk.flac")
	if err := WriteFile(path, samples, FormatFLAC); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	stream, err := flac.New(f)
	if err != nil {
		t.Fatalf("flac.New: %v", err)
	}
	if stream.Info.SampleRate != SampleRate {
		t.Errorf("SampleRate = %d, want %d", stream.Info.SampleRate, SampleRate)
	}

	var got []int32
	for {
		fr, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ParseNext: %v", err)
		}
		got = append(got, fr.Subframes[0].Samples...)
	}
	if len(got) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(samples))
	}
	for i, s := range samples {
		if diff := math.Abs(float64(got[i])/32767 - float64(s)); diff > 1.0/32767 {
			t.Fatalf("sample %d: got %d, want ~%f", i, got[i], s)
		}
	}
}

func TestFLACEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.flac")
	if err := WriteFile(path, nil, FormatFLAC); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}
