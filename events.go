package main

import (
	"fmt"
	"strings"

	"limbo/beep"
	"limbo/dictation"
)

// multiEvents fans every event out to each sink in order.
type multiEvents []dictation.Events

func (m multiEvents) RecordingState(ev dictation.StateEvent) {
	for _, s := range m {
		s.RecordingState(ev)
	}
}

func (m multiEvents) ChunkTranscribed(ev dictation.ChunkEvent) {
	for _, s := range m {
		s.ChunkTranscribed(ev)
	}
}

func (m multiEvents) InjectionFailed(err error) {
	for _, s := range m {
		s.InjectionFailed(err)
	}
}

// cueEvents plays a sound on the transitions a user cannot see while
// focused on another window.
type cueEvents struct{}

func (cueEvents) RecordingState(ev dictation.StateEvent) {
	switch {
	case ev.IsRecording:
		beep.Play(beep.CueStart)
	case ev.Status == dictation.StatusComplete:
		beep.Play(beep.CueEnd)
	case strings.HasPrefix(ev.Status, "Error"):
		beep.Play(beep.CueError)
	}
}

func (cueEvents) ChunkTranscribed(dictation.ChunkEvent) {}

func (cueEvents) InjectionFailed(error) { beep.Play(beep.CueError) }

// consoleEvents prints events as lines, for -tui=false and test mode.
type consoleEvents struct{}

func (consoleEvents) RecordingState(ev dictation.StateEvent) {
	fmt.Printf("STATE recording=%t status=%q\n", ev.IsRecording, ev.Status)
}

func (consoleEvents) ChunkTranscribed(ev dictation.ChunkEvent) {
	fmt.Printf("CHUNK %d %s\n", ev.Seq, ev.Text)
}

func (consoleEvents) InjectionFailed(err error) {
	fmt.Printf("INJECT_FAILED %v\n", err)
}
