// Package beep plays short audible cues when dictation starts, finishes or
// fails.
package beep

import (
	"math"
	"sync"
	"sync/atomic"
)

type Cue int

const (
	CueStart Cue = iota
	CueEnd
	CueError
)

type tone struct {
	freq     float64
	duration float64 // seconds
	volume   float64
	decay    float64
	repeat   bool // play twice with a short gap
}

const (
	sampleRate = 44100
	repeatGap  = 0.05
)

var tones = map[Cue]tone{
	CueStart: {freq: 1200, duration: 0.2, volume: 0.5, decay: 60},
	CueEnd:   {freq: 900, duration: 0.2, volume: 0.5, decay: 40},
	CueError: {freq: 350, duration: 0.08, volume: 0.6, decay: 30, repeat: true},
}

var (
	disabled atomic.Bool
	cache    = map[Cue][]int16{}
	cacheMu  sync.Mutex
)

func Disable() { disabled.Store(true) }

// Play starts the cue without waiting for it to finish.
func Play(c Cue) {
	if disabled.Load() {
		return
	}
	samples := samplesFor(c)
	if len(samples) == 0 {
		return
	}
	go play(samples)
}

func samplesFor(c Cue) []int16 {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if s, ok := cache[c]; ok {
		return s
	}
	t, ok := tones[c]
	if !ok {
		return nil
	}
	s := synth(t)
	cache[c] = s
	return s
}

// synth renders a decaying sine, mono, at sampleRate.
func synth(t tone) []int16 {
	n := int(sampleRate * t.duration)
	out := make([]int16, n)
	for i := range out {
		x := float64(i) / sampleRate
		env := math.Exp(-x * t.decay)
		out[i] = int16(math.Sin(2*math.Pi*t.freq*x) * 32767 * t.volume * env)
	}
	if !t.repeat {
		return out
	}
	gap := make([]int16, int(sampleRate*repeatGap))
	twice := make([]int16, 0, 2*n+len(gap))
	twice = append(twice, out...)
	twice = append(twice, gap...)
	return append(twice, out...)
}
