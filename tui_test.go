package main

import (
	"strings"
	"testing"

	"limbo/dictation"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 10, []string{""}},
		{"short", 10, []string{"short"}},
		{"hello there world", 11, []string{"hello", "there world"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
	}
	for _, tt := range tests {
		got := wrapText(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func update(m tuiModel, msgs ...any) tuiModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(tuiModel)
	}
	return m
}

func TestTUIStreamingSession(t *testing.T) {
	m := update(tuiModel{status: dictation.StatusIdle},
		StateMsg{IsRecording: true, Status: dictation.StatusListening},
		ChunkMsg{Seq: 0, Text: "hello"},
		ChunkMsg{Seq: 1, Text: "world"},
		StateMsg{IsRecording: false, Status: dictation.StatusProcessing},
		StateMsg{IsRecording: false, Status: dictation.StatusComplete},
	)
	if m.lastText != "hello world" {
		t.Errorf("lastText = %q", m.lastText)
	}
	if m.sessions != 1 || m.recording {
		t.Errorf("sessions = %d recording = %t", m.sessions, m.recording)
	}

	// a new session clears the previous chunks and error
	m = update(m, StateMsg{IsRecording: true, Status: dictation.StatusListening})
	if len(m.chunks) != 0 || m.lastError != "" {
		t.Errorf("chunks = %q lastError = %q", m.chunks, m.lastError)
	}
}

func TestTUIErrorStatus(t *testing.T) {
	m := update(tuiModel{},
		StateMsg{IsRecording: true, Status: dictation.StatusListening},
		StateMsg{IsRecording: false, Status: "Error: no audio captured"},
	)
	if m.lastError != "no audio captured" {
		t.Errorf("lastError = %q", m.lastError)
	}
	if m.sessions != 0 {
		t.Errorf("failed session counted")
	}
}

func TestTUIBatchTranscript(t *testing.T) {
	m := update(tuiModel{width: 40, height: 20},
		StateMsg{IsRecording: false, Status: dictation.StatusComplete},
		TranscriptMsg{Text: "batch text"},
	)
	if !strings.Contains(m.View(), "batch text") {
		t.Errorf("view missing transcript:\n%s", m.View())
	}
}
