package encoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
	wavHeaderSize  = 44
)

func encodeWAV16(w io.WriteSeeker, samples []float32) error {
	enc := wav.NewEncoder(w, SampleRate, BitsPerSample, Channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: Channels,
			SampleRate:  SampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: BitsPerSample,
	}
	for i, s := range samples {
		buf.Data[i] = int(toInt16(s))
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("writing wav samples: %w", err)
	}
	return enc.Close()
}

// go-audio/wav only writes integer PCM, so the float variant lays out the
// canonical 44-byte header itself.
func encodeWAV32(w io.Writer, samples []float32) error {
	dataSize := len(samples) * 4
	hdr := make([]byte, wavHeaderSize)
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(wavHeaderSize-8+dataSize))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], wavFormatFloat)
	binary.LittleEndian.PutUint16(hdr[22:24], Channels)
	binary.LittleEndian.PutUint32(hdr[24:28], SampleRate)
	binary.LittleEndian.PutUint32(hdr[28:32], SampleRate*Channels*4)
	binary.LittleEndian.PutUint16(hdr[32:34], Channels*4)
	binary.LittleEndian.PutUint16(hdr[34:36], 32)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataSize))

	data := make([]byte, dataSize)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// DecodeWAV reads a mono WAV file written by Encode and returns its samples
// normalized to [-1, 1] together with the sample rate.
func DecodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, 0, errors.New("not a valid wav file")
	}
	if d.NumChans != Channels {
		return nil, 0, fmt.Errorf("expected mono wav, got %d channels", d.NumChans)
	}

	if d.WavAudioFormat == wavFormatFloat {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, 0, err
		}
		samples, err := decodeFloat32(r)
		return samples, int(d.SampleRate), err
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("reading wav samples: %w", err)
	}
	scale := float32(int(1)<<(buf.SourceBitDepth-1) - 1)
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	return samples, int(d.SampleRate), nil
}

func decodeFloat32(r io.Reader) ([]float32, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, err
	}
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("wav data chunk not found: %w", err)
		}
		size := binary.LittleEndian.Uint32(hdr[4:8])
		if string(hdr[0:4]) != "data" {
			if _, err := io.CopyN(io.Discard, r, int64(size+size%2)); err != nil {
				return nil, err
			}
			continue
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		samples := make([]float32, size/4)
		for i := range samples {
			samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return samples, nil
	}
}
