package encoder

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// writeSeeker hides Close so the flac encoder does not close the caller's file.
type writeSeeker struct{ io.WriteSeeker }

func encodeFLAC(w io.WriteSeeker, samples []float32) error {
	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    SampleRate,
		NChannels:     Channels,
		BitsPerSample: BitsPerSample,
		NSamples:      uint64(len(samples)),
	}
	enc, err := flac.NewEncoder(writeSeeker{w}, info)
	if err != nil {
		return fmt.Errorf("creating flac encoder: %w", err)
	}
	enc.EnablePredictionAnalysis(true)

	for start := 0; start < len(samples); start += BlockSize {
		end := min(start+BlockSize, len(samples))
		block := make([]int32, end-start)
		for i, s := range samples[start:end] {
			block[i] = int32(toInt16(s))
		}
		f := &frame.Frame{
			Header: frame.Header{
				BlockSize:     uint16(len(block)),
				SampleRate:    SampleRate,
				Channels:      frame.ChannelsMono,
				BitsPerSample: BitsPerSample,
			},
			Subframes: []*frame.Subframe{{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   block,
				NSamples:  len(block),
			}},
		}
		if err := enc.WriteFrame(f); err != nil {
			enc.Close()
			return fmt.Errorf("writing flac frame: %w", err)
		}
	}
	return enc.Close()
}
