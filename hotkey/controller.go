package hotkey

import (
	"context"
	"time"
)

// Controller reads raw key events and emits the actions they mean in the
// configured mode.
type Controller struct {
	actions chan Action
}

func NewController(ctx context.Context, hk Hotkey, mode Mode, longPress time.Duration) *Controller {
	c := &Controller{actions: make(chan Action, 1)}
	go c.run(ctx, hk, mode, longPress)
	return c
}

func (c *Controller) Actions() <-chan Action { return c.actions }

func (c *Controller) run(ctx context.Context, hk Hotkey, mode Mode, longPress time.Duration) {
	defer close(c.actions)
	wait := func(ch <-chan struct{}) bool {
		select {
		case <-ch:
			return true
		case <-ctx.Done():
			return false
		}
	}
	emit := func(a Action) bool {
		select {
		case c.actions <- a:
			return true
		case <-ctx.Done():
			return false
		}
	}

	switch mode {
	case ModeHold:
		for wait(hk.Keydown()) && emit(ActionStart) && wait(hk.Keyup()) && emit(ActionStop) {
		}
	case ModeHybrid:
		c.runHybrid(ctx, hk, longPress, wait, emit)
	default:
		// keyups are drained so the forwarding goroutine never blocks
		go func() {
			for wait(hk.Keyup()) {
			}
		}()
		for wait(hk.Keydown()) && emit(ActionToggle) {
		}
	}
}

func (c *Controller) runHybrid(ctx context.Context, hk Hotkey, longPress time.Duration, wait func(<-chan struct{}) bool, emit func(Action) bool) {
	for {
		if !wait(hk.Keydown()) || !emit(ActionStart) {
			return
		}
		timer := time.NewTimer(longPress)
		select {
		case <-timer.C:
			// held: stop on release
			if !wait(hk.Keyup()) || !emit(ActionStop) {
				return
			}
			continue
		case <-hk.Keyup():
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
			return
		}
		// tapped: the next press stops on its release
		if !wait(hk.Keydown()) || !wait(hk.Keyup()) || !emit(ActionStop) {
			return
		}
	}
}
