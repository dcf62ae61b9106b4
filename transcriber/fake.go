package transcriber

import (
	"context"
	"strings"
	"sync"
)

// Fake answers every request from a script. It records every clip it was
// given so tests can inspect them.
type Fake struct {
	script func(ctx context.Context, clip Clip) (string, error)

	mu     sync.Mutex
	clips  []Clip
	closed bool
}

func NewFake(text string, err error) *Fake {
	return NewScriptedFake(func(context.Context, Clip) (string, error) {
		return text, err
	})
}

func NewScriptedFake(script func(ctx context.Context, clip Clip) (string, error)) *Fake {
	return &Fake{script: script}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Transcribe(ctx context.Context, clip Clip) (string, error) {
	f.mu.Lock()
	f.clips = append(f.clips, clip)
	f.mu.Unlock()

	text, err := f.script(ctx, clip)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (f *Fake) Clips() []Clip {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Clip(nil), f.clips...)
}

func (f *Fake) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
