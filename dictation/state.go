package dictation

import (
	"fmt"
	"sync"
)

type Phase int

const (
	Idle Phase = iota
	Listening
	Processing
	Complete
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Processing:
		return "processing"
	case Complete:
		return "complete"
	case Failed:
		return "error"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

const (
	StatusIdle       = "Ready"
	StatusListening  = "Listening..."
	StatusProcessing = "Processing..."
	StatusComplete   = "Complete!"
)

// StateEvent is emitted on every transition.
type StateEvent struct {
	IsRecording bool   `json:"is_recording"`
	Status      string `json:"status"`
}

type State struct {
	Phase  Phase
	Status string
	// Message holds the failure text while in the Failed phase.
	Message string
}

func (s State) IsRecording() bool { return s.Phase == Listening }

// Machine is the recording state machine. Transitions emit their event
// synchronously, before the call returns, while still holding the lock so
// observers see events in transition order.
type Machine struct {
	mu     sync.Mutex
	state  State
	notify func(StateEvent)
}

func NewMachine(notify func(StateEvent)) *Machine {
	if notify == nil {
		notify = func(StateEvent) {}
	}
	return &Machine{
		state:  State{Phase: Idle, Status: StatusIdle},
		notify: notify,
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Listening is read by the capture goroutine and the streaming loop to
// decide whether to keep going.
func (m *Machine) Listening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Phase == Listening
}

func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state.Phase {
	case Idle, Complete, Failed:
	default:
		return ErrAlreadyRecording
	}
	m.set(State{Phase: Listening, Status: StatusListening})
	return nil
}

func (m *Machine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != Listening {
		return ErrNotRecording
	}
	m.set(State{Phase: Processing, Status: StatusProcessing})
	return nil
}

func (m *Machine) Complete(status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != Processing {
		return fmt.Errorf("complete from %s: %w", m.state.Phase, ErrNotRecording)
	}
	if status == "" {
		status = StatusComplete
	}
	m.set(State{Phase: Complete, Status: status})
	return nil
}

func (m *Machine) Fail(msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state.Phase {
	case Listening, Processing:
	default:
		return fmt.Errorf("fail from %s: %w", m.state.Phase, ErrNotRecording)
	}
	m.set(State{Phase: Failed, Status: "Error: " + msg, Message: msg})
	return nil
}

// Abort fails a session that is still Listening. It reports false, and
// changes nothing, once a stop has already moved the session on.
func (m *Machine) Abort(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != Listening {
		return false
	}
	m.set(State{Phase: Failed, Status: "Error: " + msg, Message: msg})
	return true
}

func (m *Machine) set(s State) {
	m.state = s
	m.notify(StateEvent{IsRecording: s.IsRecording(), Status: s.Status})
}
