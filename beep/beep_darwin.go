//go:build darwin

package beep

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	deviceOnce sync.Once
	playMu     sync.Mutex

	// read from the audio callback
	current atomic.Pointer[[]byte]
	pos     atomic.Uint32
)

func initDevice() error {
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	var err error
	device, err = malgo.InitDevice(malgoCtx.Context, config, malgo.DeviceCallbacks{Data: fill})
	return err
}

func setup() {
	var err error
	malgoCtx, err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}
	if err := initDevice(); err != nil {
		malgoCtx.Uninit()
		malgoCtx = nil
	}
}

func fill(out, _ []byte, frameCount uint32) {
	clear(out)
	samples := current.Load()
	if samples == nil {
		return
	}
	p := pos.Load()
	remaining := uint32(len(*samples)) - p
	if remaining == 0 {
		current.Store(nil)
		return
	}
	n := min(frameCount*2, remaining)
	copy(out[:n], (*samples)[p:p+n])
	pos.Store(p + n)
}

func play(samples []int16) {
	deviceOnce.Do(setup)
	if malgoCtx == nil {
		return
	}

	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}

	playMu.Lock()
	defer playMu.Unlock()

	device.Stop()
	pos.Store(0)
	current.Store(&data)
	if err := device.Start(); err != nil {
		// the device goes stale across sleep/wake
		device.Uninit()
		if err := initDevice(); err != nil {
			current.Store(nil)
			return
		}
		if err := device.Start(); err != nil {
			current.Store(nil)
		}
	}
}
