// Package inject delivers transcribed text into whichever application has
// keyboard focus by pasting it through the clipboard.
package inject

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	cb "github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"

	"limbo/log"
)

var (
	ErrInjectionUnavailable = errors.New("text injection unavailable")
	ErrEmptyText            = errors.New("refusing to inject empty text")
)

const (
	DefaultSettleDelay = 100 * time.Millisecond
	restoreDelay       = 600 * time.Millisecond
)

type Injector interface {
	Inject(ctx context.Context, text string) error
}

// Keyboard copies text to the clipboard, sends the platform paste chord and
// then puts the previous clipboard content back.
type Keyboard struct {
	settle       time.Duration
	restoreAfter time.Duration

	readClip  func() (string, error)
	writeClip func(string) error
	paste     func() error

	mu sync.Mutex
}

func NewKeyboard(settle time.Duration) *Keyboard {
	return &Keyboard{
		settle:       settle,
		restoreAfter: restoreDelay,
		readClip:     cb.ReadAll,
		writeClip:    cb.WriteAll,
		paste:        sendPaste,
	}
}

// Check verifies that the clipboard and the virtual keyboard can be used.
func (k *Keyboard) Check() error {
	if cb.Unsupported {
		return fmt.Errorf("%w: no clipboard utility found", ErrInjectionUnavailable)
	}
	if _, err := keyBonding(); err != nil {
		return fmt.Errorf("%w: %v", ErrInjectionUnavailable, err)
	}
	return nil
}

func (k *Keyboard) Inject(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	// give the target window a moment to regain focus
	select {
	case <-time.After(k.settle):
	case <-ctx.Done():
		return ctx.Err()
	}

	saved, readErr := k.readClip()
	if err := k.writeClip(text); err != nil {
		return fmt.Errorf("%w: copying to clipboard: %v", ErrInjectionUnavailable, err)
	}
	if err := k.paste(); err != nil {
		return fmt.Errorf("sending paste keystroke: %w", err)
	}

	if readErr != nil {
		return nil
	}
	time.Sleep(k.restoreAfter)
	if err := k.writeClip(saved); err != nil {
		log.Warnf("clipboard restore failed: %v", err)
	}
	return nil
}

var (
	kb     keybd_event.KeyBonding
	kbOnce sync.Once
	kbErr  error
)

func keyBonding() (*keybd_event.KeyBonding, error) {
	kbOnce.Do(func() {
		kb, kbErr = keybd_event.NewKeyBonding()
		if kbErr == nil {
			time.Sleep(keyboardInitDelay)
		}
	})
	return &kb, kbErr
}

func sendPaste() error {
	k, err := keyBonding()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInjectionUnavailable, err)
	}
	k.Clear()
	k.SetKeys(keybd_event.VK_V)
	setPasteModifier(k)
	return k.Launching()
}
