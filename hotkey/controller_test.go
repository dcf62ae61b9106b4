package hotkey

import (
	"context"
	"testing"
	"time"
)

func expect(t *testing.T, c *Controller, want Action) {
	t.Helper()
	select {
	case got := <-c.Actions():
		if got != want {
			t.Fatalf("action = %v, want %v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %v", want)
	}
}

func expectNone(t *testing.T, c *Controller) {
	t.Helper()
	select {
	case got := <-c.Actions():
		t.Fatalf("unexpected action %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestToggleMode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fk := NewFake()
	c := NewController(ctx, fk, ModeToggle, 0)

	for range 2 {
		fk.SimKeydown()
		fk.SimKeyup()
		expect(t, c, ActionToggle)
	}
}

func TestHoldMode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fk := NewFake()
	c := NewController(ctx, fk, ModeHold, 0)

	fk.SimKeydown()
	expect(t, c, ActionStart)
	expectNone(t, c)
	fk.SimKeyup()
	expect(t, c, ActionStop)
}

func TestHybridLongPress(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fk := NewFake()
	threshold := 50 * time.Millisecond
	c := NewController(ctx, fk, ModeHybrid, threshold)

	fk.SimKeydown()
	expect(t, c, ActionStart)
	time.Sleep(threshold + 20*time.Millisecond)
	fk.SimKeyup()
	expect(t, c, ActionStop)
}

func TestHybridShortTap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fk := NewFake()
	c := NewController(ctx, fk, ModeHybrid, 200*time.Millisecond)

	fk.SimKeydown()
	expect(t, c, ActionStart)
	fk.SimKeyup()
	expectNone(t, c)

	fk.SimKeydown()
	fk.SimKeyup()
	expect(t, c, ActionStop)
}

func TestControllerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewController(ctx, NewFake(), ModeHold, 0)
	cancel()
	select {
	case _, ok := <-c.Actions():
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("controller did not exit")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("hold"); err != nil || m != ModeHold {
		t.Errorf("ParseMode(hold) = %v, %v", m, err)
	}
	if _, err := ParseMode("double-tap"); err == nil {
		t.Error("expected error")
	}
}
