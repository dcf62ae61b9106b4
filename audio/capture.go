package audio

import (
	"fmt"
	"sync"
	"time"
)

const gatePollInterval = 100 * time.Millisecond

// Gate reports whether captured samples should still be kept.
type Gate interface {
	Listening() bool
}

// Capture is one running capture session. The device is stopped and closed
// exactly once, after the gate stops reporting Listening or on Close.
type Capture struct {
	dev       CaptureDevice
	buf       *Buffer
	gate      Gate
	closeCh   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
	frames    uint64
	mu        sync.Mutex
}

// Begin opens the capture device and starts appending samples to buf for as
// long as gate is Listening. The device is watched from its own goroutine so
// the audio callback never waits on transcription work.
func Begin(ctx Context, device *DeviceInfo, cfg CaptureConfig, buf *Buffer, gate Gate) (*Capture, error) {
	devices, err := ctx.Devices()
	if err == nil && len(devices) == 0 {
		return nil, ErrNoInputDevice
	}

	if cfg.SampleRate != SampleRate || cfg.Channels != Channels {
		return nil, fmt.Errorf("%w: requested %d Hz x%d", ErrUnsupportedFormat, cfg.SampleRate, cfg.Channels)
	}

	dev, err := ctx.NewCapture(device, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	c := &Capture{
		dev:     dev,
		buf:     buf,
		gate:    gate,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}

	dev.SetCallback(c.onData)
	if err := dev.Start(); err != nil {
		dev.ClearCallback()
		dev.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	go c.watch()
	return c, nil
}

func (c *Capture) onData(samples []float32) {
	if !c.gate.Listening() {
		return
	}
	c.buf.Append(samples)
	c.mu.Lock()
	c.frames += uint64(len(samples))
	c.mu.Unlock()
}

func (c *Capture) watch() {
	defer close(c.done)
	ticker := time.NewTicker(gatePollInterval)
	defer ticker.Stop()
	for c.gate.Listening() {
		select {
		case <-c.closeCh:
			c.shutdown()
			return
		case <-ticker.C:
		}
	}
	c.shutdown()
}

func (c *Capture) shutdown() {
	c.dev.Stop()
	c.dev.ClearCallback()
	c.dev.Close()
}

// Close requests an early stop and waits for the device to be released.
func (c *Capture) Close() {
	c.closeOnce.Do(func() { close(c.closeCh) })
	<-c.done
}

// Wait blocks until the capture goroutine has observed the gate closing and
// released the device.
func (c *Capture) Wait() {
	<-c.done
}

func (c *Capture) Done() <-chan struct{} { return c.done }

func (c *Capture) DeviceName() string { return c.dev.DeviceName() }

// Frames returns the number of samples kept so far.
func (c *Capture) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}
