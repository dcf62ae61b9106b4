package inject

import (
	"context"
	"strings"
	"sync"
)

// Fake records injected text instead of touching the OS.
type Fake struct {
	Err error

	mu    sync.Mutex
	texts []string
}

func (f *Fake) Inject(_ context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.texts = append(f.texts, text)
	return nil
}

func (f *Fake) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}
