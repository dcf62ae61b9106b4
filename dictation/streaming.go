package dictation

import (
	"sync"
	"time"

	"limbo/audio"
	"limbo/log"
)

type chunkResult struct {
	chunk Chunk
	text  string
	err   error
}

// startStreaming launches the polling loop and the in-order deliverer for s.
// The loop never waits on a transcription; results arrive in any order and
// are re-sequenced before anything reaches the injector or the UI.
func (o *Orchestrator) startStreaming(s *session) {
	s.win = NewWindower(o.buf, o.opts.ChunkSamples)
	s.stopCh = make(chan struct{})
	s.loopDone = make(chan struct{})
	s.deliverDone = make(chan struct{})
	s.aborted = make(chan struct{})
	s.cleaned = make(chan struct{})

	results := make(chan chunkResult)
	go o.pollLoop(s, results)
	go o.deliverInOrder(s, results)
}

func (o *Orchestrator) pollLoop(s *session, results chan<- chunkResult) {
	defer close(s.loopDone)

	var wg sync.WaitGroup
	sem := make(chan struct{}, o.opts.MaxInFlight)
	ticker := time.NewTicker(o.opts.PollInterval)
	defer ticker.Stop()

	for o.machine.Listening() {
		select {
		case <-ticker.C:
		case <-s.stopCh:
		}
		for o.machine.Listening() {
			c, ok := s.win.Next()
			if !ok {
				break
			}
			wg.Add(1)
			go func(c Chunk) {
				defer wg.Done()
				sem <- struct{}{}
				text, err := o.transcribe(o.base, s, c, o.opts.ChunkRetries)
				<-sem
				results <- chunkResult{chunk: c, text: text, err: err}
			}(c)
		}
	}

	wg.Wait()
	close(results)
}

func (o *Orchestrator) deliverInOrder(s *session, results <-chan chunkResult) {
	defer close(s.deliverDone)

	pending := make(map[int]chunkResult)
	next := 0
	for r := range results {
		pending[r.chunk.Seq] = r
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			o.deliverChunk(s, r)
		}
	}
}

func (o *Orchestrator) deliverChunk(s *session, r chunkResult) {
	if s.fatal != nil {
		return
	}
	if r.err != nil {
		// backend errors cost one chunk; storage errors end the session
		if KindOf(r.err) == StorageError {
			s.fatal = r.err
			if o.machine.Abort(r.err.Error()) {
				close(s.aborted)
				go o.abortStreaming(s)
			}
		}
		return
	}
	if r.text == "" {
		return
	}
	s.texts = append(s.texts, r.text)
	o.events.ChunkTranscribed(ChunkEvent{Seq: r.chunk.Seq, Text: r.text})
	o.deliver(o.base, r.text)
	log.Infof("chunk %d delivered (%d chars)", r.chunk.Seq, len(r.text))
}

// abortStreaming joins a session the pipeline failed on its own. The gate is
// already closed, so capture and the poll loop are winding down.
func (o *Orchestrator) abortStreaming(s *session) {
	close(s.stopCh)
	s.capture.Wait()
	<-s.loopDone
	<-s.deliverDone
	log.SessionEnd(s.id, audio.Duration(o.buf.Len()), 0, s.fatal)
	close(s.cleaned)
}
