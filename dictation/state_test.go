package dictation

import (
	"errors"
	"testing"
)

type recorder struct{ events []StateEvent }

func (r *recorder) notify(ev StateEvent) { r.events = append(r.events, ev) }

func TestMachineTransitions(t *testing.T) {
	r := &recorder{}
	m := NewMachine(r.notify)

	steps := []struct {
		name   string
		do     func() error
		phase  Phase
		status string
	}{
		{"start", m.Start, Listening, StatusListening},
		{"stop", m.Stop, Processing, StatusProcessing},
		{"complete", func() error { return m.Complete("") }, Complete, StatusComplete},
		{"restart", m.Start, Listening, StatusListening},
		{"fail", func() error { return m.Fail("mic unplugged") }, Failed, "Error: mic unplugged"},
		{"recover", m.Start, Listening, StatusListening},
	}
	for i, s := range steps {
		if err := s.do(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		st := m.State()
		if st.Phase != s.phase || st.Status != s.status {
			t.Fatalf("%s: state = %v %q, want %v %q", s.name, st.Phase, st.Status, s.phase, s.status)
		}
		if len(r.events) != i+1 {
			t.Fatalf("%s: %d events, want %d", s.name, len(r.events), i+1)
		}
		ev := r.events[i]
		if ev.IsRecording != (s.phase == Listening) || ev.Status != s.status {
			t.Errorf("%s: event = %+v", s.name, ev)
		}
	}
}

func TestMachineAlreadyRecording(t *testing.T) {
	r := &recorder{}
	m := NewMachine(r.notify)
	m.Start()

	if err := m.Start(); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("second Start = %v, want ErrAlreadyRecording", err)
	}
	if m.State().Phase != Listening || len(r.events) != 1 {
		t.Errorf("rejected Start changed state: %v, %d events", m.State().Phase, len(r.events))
	}

	m.Stop()
	if err := m.Start(); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("Start while processing = %v, want ErrAlreadyRecording", err)
	}
}

func TestMachineRejectsInvalid(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop from idle = %v", err)
	}
	if err := m.Complete(""); err == nil {
		t.Error("Complete from idle should fail")
	}
	if err := m.Fail("x"); err == nil {
		t.Error("Fail from idle should fail")
	}
	if m.State().Phase != Idle {
		t.Errorf("phase = %v, want idle", m.State().Phase)
	}
}

func TestListeningGate(t *testing.T) {
	m := NewMachine(nil)
	if m.Listening() {
		t.Fatal("idle machine should not be listening")
	}
	m.Start()
	if !m.Listening() || !m.State().IsRecording() {
		t.Fatal("started machine should be listening")
	}
	m.Stop()
	if m.Listening() {
		t.Fatal("processing machine should not be listening")
	}
}

func TestMachineAbortOnlyWhileListening(t *testing.T) {
	r := &recorder{}
	m := NewMachine(r.notify)

	if m.Abort("disk full") {
		t.Fatal("Abort from idle succeeded")
	}
	m.Start()
	if !m.Abort("disk full") {
		t.Fatal("Abort while listening failed")
	}
	if st := m.State(); st.Phase != Failed || st.Status != "Error: disk full" {
		t.Errorf("state = %+v", st)
	}
	if err := m.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop after Abort = %v, want ErrNotRecording", err)
	}

	m.Start()
	m.Stop()
	if m.Abort("late") {
		t.Error("Abort during processing succeeded")
	}
	if m.State().Phase != Processing || len(r.events) != 4 {
		t.Errorf("phase = %v, %d events", m.State().Phase, len(r.events))
	}
}
