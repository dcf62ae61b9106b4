package audio

import (
	"sync"
	"time"
)

const fakeFrameSize = 1024

// FakeContext plays a fixed sample slice into whoever captures from it.
// Without realtime every sample is delivered synchronously inside Start;
// with realtime samples are paced at the capture sample rate.
type FakeContext struct {
	samples  []float32
	realtime bool
	noDevice bool
	played   chan struct{}
}

func NewFakeContext(samples []float32, realtime bool) *FakeContext {
	return &FakeContext{samples: samples, realtime: realtime, played: make(chan struct{}, 1)}
}

// Played receives once for every capture that fed its whole sample slice.
func (f *FakeContext) Played() <-chan struct{} { return f.played }

// NewEmptyFakeContext reports no capture devices at all.
func NewEmptyFakeContext() *FakeContext {
	return &FakeContext{noDevice: true}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	if f.noDevice {
		return nil, nil
	}
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{samples: f.samples, realtime: f.realtime, played: f.played}, nil
}

type FakeCapture struct {
	samples  []float32
	realtime bool
	played   chan struct{}

	mu       sync.Mutex
	cb       DataCallback
	stopCh   chan struct{}
	feedDone chan struct{}
}

func (f *FakeCapture) signalPlayed() {
	if f.played == nil {
		return
	}
	select {
	case f.played <- struct{}{}:
	default:
	}
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) callback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) feedChunk(cb DataCallback, pos int) int {
	end := min(pos+fakeFrameSize, len(f.samples))
	chunk := make([]float32, end-pos)
	copy(chunk, f.samples[pos:end])
	cb(chunk)
	return end
}

func (f *FakeCapture) Start() error {
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})

	if !f.realtime {
		if cb := f.callback(); cb != nil {
			for pos := 0; pos < len(f.samples); {
				pos = f.feedChunk(cb, pos)
			}
		}
		f.signalPlayed()
		close(f.feedDone)
		return nil
	}

	interval := time.Duration(fakeFrameSize) * time.Second / time.Duration(SampleRate)
	go func() {
		defer close(f.feedDone)
		for pos := 0; pos < len(f.samples); {
			if cb := f.callback(); cb != nil {
				pos = f.feedChunk(cb, pos)
			}
			select {
			case <-f.stopCh:
				return
			case <-time.After(interval):
			}
		}
		f.signalPlayed()
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	if f.stopCh == nil {
		return
	}
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	<-f.feedDone
}

func (f *FakeCapture) Close() {}
