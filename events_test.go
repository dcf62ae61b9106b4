package main

import (
	"errors"
	"testing"

	"limbo/dictation"
)

type countingSink struct {
	states, chunks, failures int
}

func (c *countingSink) RecordingState(dictation.StateEvent)   { c.states++ }
func (c *countingSink) ChunkTranscribed(dictation.ChunkEvent) { c.chunks++ }
func (c *countingSink) InjectionFailed(error)                 { c.failures++ }

func TestMultiEventsFansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := multiEvents{a, b}
	m.RecordingState(dictation.StateEvent{IsRecording: true, Status: dictation.StatusListening})
	m.ChunkTranscribed(dictation.ChunkEvent{Text: "hi"})
	m.InjectionFailed(errors.New("x"))

	for _, s := range []*countingSink{a, b} {
		if s.states != 1 || s.chunks != 1 || s.failures != 1 {
			t.Errorf("sink = %+v", *s)
		}
	}
}

func TestDeviceLineText(t *testing.T) {
	if got := deviceLineText(nil); got != "mic: system default" {
		t.Errorf("got %q", got)
	}
}
