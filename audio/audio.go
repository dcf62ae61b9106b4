package audio

import (
	"errors"
	"strings"
)

const (
	SampleRate = 16000
	Channels   = 1
)

var (
	ErrNoInputDevice     = errors.New("no input device available")
	ErrUnsupportedFormat = errors.New("input device cannot capture 16 kHz mono float32")
)

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "plantronics", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

// IsBluetooth guesses from the device name whether the microphone is a
// headset running over a narrowband Bluetooth profile.
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DataCallback receives mono float32 samples in [-1, 1]. The slice is only
// valid for the duration of the call.
type DataCallback func(samples []float32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{SampleRate: SampleRate, Channels: Channels}
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}

// FindDevice returns the device with the given name, or nil when name is
// empty (system default).
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i], nil
		}
	}
	return nil, errors.New("device not found: " + name)
}
