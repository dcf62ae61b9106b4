package main

import (
	"sync"
	"testing"
	"time"

	"limbo/hotkey"
)

func TestServeActionsKeepsOrder(t *testing.T) {
	in := make(chan hotkey.Action)
	var mu sync.Mutex
	var got []hotkey.Action
	running := 0

	done := serveActions(in, func(a hotkey.Action) {
		mu.Lock()
		running++
		if running > 1 {
			t.Error("actions overlapped")
		}
		mu.Unlock()

		// a start that takes longer than the stop queued behind it
		if a == hotkey.ActionStart {
			time.Sleep(5 * time.Millisecond)
		}

		mu.Lock()
		got = append(got, a)
		running--
		mu.Unlock()
	})

	var want []hotkey.Action
	for range 20 {
		in <- hotkey.ActionStart
		in <- hotkey.ActionStop
		want = append(want, hotkey.ActionStart, hotkey.ActionStop)
	}
	close(in)
	<-done

	if len(got) != len(want) {
		t.Fatalf("handled %d actions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("action %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestServeActionsDoesNotBlockReader(t *testing.T) {
	in := make(chan hotkey.Action)
	release := make(chan struct{})
	done := serveActions(in, func(hotkey.Action) { <-release })

	sent := make(chan struct{})
	go func() {
		for range 5 {
			in <- hotkey.ActionToggle
		}
		close(sent)
	}()
	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("reader blocked behind a slow action")
	}
	close(release)
	close(in)
	<-done
}
