package dictation

// ChunkEvent is emitted once per successfully transcribed streaming chunk,
// in chunk order.
type ChunkEvent struct {
	Seq  int    `json:"seq"`
	Text string `json:"text"`
}

// Events receives everything the UI shell is told about. Calls happen on
// orchestrator goroutines; RecordingState is called with the state machine
// locked and must not call back into the orchestrator.
type Events interface {
	RecordingState(StateEvent)
	ChunkTranscribed(ChunkEvent)
	InjectionFailed(error)
}

type NopEvents struct{}

func (NopEvents) RecordingState(StateEvent)   {}
func (NopEvents) ChunkTranscribed(ChunkEvent) {}
func (NopEvents) InjectionFailed(error)       {}
