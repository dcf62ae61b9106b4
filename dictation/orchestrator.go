// Package dictation ties capture, transcription and injection together
// behind the recording state machine.
package dictation

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"limbo/audio"
	"limbo/config"
	"limbo/encoder"
	"limbo/inject"
	"limbo/log"
	"limbo/transcriber"
)

const statusStarted = "Recording started"

const maxRetryBackoff = 4 * time.Second

type Options struct {
	Streaming         bool
	ChunkSamples      int
	PollInterval      time.Duration
	TranscribeTimeout time.Duration
	ChunkRetries      int
	RetryBackoff      time.Duration // first retry delay, doubled per attempt
	MaxInFlight       int
	StagingFormat     encoder.Format
	TempDir           string
	AutoInject        bool
	Device            *audio.DeviceInfo
}

func OptionsFromConfig(cfg config.Config) (Options, error) {
	format, err := encoder.ParseFormat(cfg.StagingFormat)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Streaming:         cfg.Mode == config.ModeStreaming,
		ChunkSamples:      int(cfg.ChunkSeconds * audio.SampleRate),
		PollInterval:      cfg.PollInterval(),
		TranscribeTimeout: cfg.TranscribeTimeout(),
		ChunkRetries:      cfg.ChunkRetries,
		RetryBackoff:      cfg.RetryBackoff(),
		MaxInFlight:       cfg.MaxInFlight,
		StagingFormat:     format,
		TempDir:           cfg.TempDir,
		AutoInject:        cfg.AutoInject,
	}, nil
}

func (o Options) mode() string {
	if o.Streaming {
		return config.ModeStreaming
	}
	return config.ModeBatch
}

type Orchestrator struct {
	opts     Options
	audioCtx audio.Context
	backend  transcriber.Backend
	injector inject.Injector
	events   Events

	machine *Machine
	buf     *audio.Buffer

	// base outlives individual sessions so a stop never cancels chunks
	// that are already in flight.
	base   context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	sess *session
}

type session struct {
	id      string
	started time.Time
	capture *audio.Capture
	stage   stager

	// streaming only
	win         *Windower
	stopCh      chan struct{}
	loopDone    chan struct{}
	deliverDone chan struct{}
	texts       []string
	fatal       error
	aborted     chan struct{} // closed when a storage error failed the session
	cleaned     chan struct{} // closed once an aborted session is joined
}

// abortedSession reports whether s was failed from inside the pipeline.
func (s *session) abortedSession() bool {
	if s == nil || s.aborted == nil {
		return false
	}
	select {
	case <-s.aborted:
		return true
	default:
		return false
	}
}

func New(opts Options, audioCtx audio.Context, backend transcriber.Backend, injector inject.Injector, events Events) *Orchestrator {
	if opts.ChunkSamples <= 0 {
		opts.ChunkSamples = 2 * audio.SampleRate
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 250 * time.Millisecond
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 1
	}
	if opts.StagingFormat == "" {
		opts.StagingFormat = encoder.FormatWAV32
	}
	if s, ok := backend.(transcriber.Stager); ok {
		opts.StagingFormat = s.StagingFormat()
	}
	if events == nil {
		events = NopEvents{}
	}

	o := &Orchestrator{
		opts:     opts,
		audioCtx: audioCtx,
		backend:  backend,
		injector: injector,
		events:   events,
		buf:      audio.NewBuffer(),
	}
	o.base, o.cancel = context.WithCancel(context.Background())
	o.machine = NewMachine(o.onState)
	return o
}

func (o *Orchestrator) onState(ev StateEvent) {
	log.StateChange(ev.IsRecording, ev.Status)
	o.events.RecordingState(ev)
}

func (o *Orchestrator) State() State { return o.machine.State() }

// StartRecording clears the buffer and begins capturing. The Listening
// event is emitted before the device is opened.
func (o *Orchestrator) StartRecording() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if prev := o.sess; prev != nil {
		// an aborted session must release the buffer before it is reused
		if !prev.abortedSession() {
			return "", ErrAlreadyRecording
		}
		<-prev.cleaned
		o.sess = nil
	}
	if err := o.machine.Start(); err != nil {
		return "", err
	}
	o.buf.Reset()

	s := &session{
		id:      uuid.NewString(),
		started: time.Now(),
	}
	s.stage = stager{dir: o.opts.TempDir, session: s.id, format: o.opts.StagingFormat}
	log.SessionStart(s.id, o.backend.Name(), o.opts.mode())

	capture, err := audio.Begin(o.audioCtx, o.opts.Device, audio.DefaultCaptureConfig(), o.buf, o.machine)
	if err != nil {
		o.machine.Fail(err.Error())
		log.SessionEnd(s.id, 0, 0, err)
		return "", err
	}
	s.capture = capture
	log.Infof("capture started on %s", capture.DeviceName())

	if w, ok := o.backend.(transcriber.Warmer); ok {
		go w.Warm()
	}
	if o.opts.Streaming {
		o.startStreaming(s)
	}
	o.sess = s
	return statusStarted, nil
}

// StopRecording ends capture and resolves the session to Complete or Error.
// It returns the transcribed text.
func (o *Orchestrator) StopRecording(ctx context.Context) (string, error) {
	o.mu.Lock()
	if err := o.machine.Stop(); err != nil {
		s := o.sess
		if !s.abortedSession() {
			o.mu.Unlock()
			return "", err
		}
		// already failed: report why, without another transition
		o.sess = nil
		o.mu.Unlock()
		<-s.cleaned
		return "", s.fatal
	}
	s := o.sess
	o.sess = nil
	o.mu.Unlock()

	var text string
	var err error
	if o.opts.Streaming {
		text, err = o.finishStreaming(s)
	} else {
		text, err = o.finishBatch(ctx, s)
	}

	audioS := audio.Duration(o.buf.Len())
	log.SessionEnd(s.id, audioS, len(text), err)
	if err != nil {
		o.machine.Fail(err.Error())
		return "", err
	}
	o.machine.Complete(StatusComplete)
	return text, nil
}

// Toggle starts a session when idle and stops the running one otherwise.
func (o *Orchestrator) Toggle(ctx context.Context) (string, error) {
	if o.machine.Listening() {
		return o.StopRecording(ctx)
	}
	return o.StartRecording()
}

// Close abandons any running session and releases the backend.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	s := o.sess
	o.mu.Unlock()
	if s != nil && s.capture != nil {
		s.capture.Close()
	}
	o.cancel()
	return o.backend.Close()
}

func (o *Orchestrator) finishBatch(ctx context.Context, s *session) (string, error) {
	s.capture.Wait()

	w := NewWindower(o.buf, o.opts.ChunkSamples)
	c := w.Whole()
	if len(c.Samples) == 0 {
		return "", ErrNoAudioCaptured
	}

	text, err := o.transcribe(ctx, s, c, 0)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrNoSpeechDetected
	}
	log.TranscriptionText(text)
	o.deliver(ctx, text)
	return text, nil
}

// transcribe stages one chunk, runs it through the backend with a per-call
// timeout and bounded retries, and removes the staged file again.
func (o *Orchestrator) transcribe(ctx context.Context, s *session, c Chunk, retries int) (string, error) {
	began := time.Now()
	path, err := s.stage.write(c.Seq, c.Samples)
	if err != nil {
		log.Chunk(log.ChunkData{Session: s.id, Seq: c.Seq, Start: c.Start, End: c.End, Err: err})
		return "", err
	}
	defer os.Remove(path)

	clip := transcriber.Clip{
		Samples:    c.Samples,
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
		Path:       path,
	}

	var text string
	attempts := 0
	for {
		attempts++
		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if o.opts.TranscribeTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, o.opts.TranscribeTimeout)
		}
		text, err = o.backend.Transcribe(callCtx, clip)
		cancel()
		if err == nil || attempts > retries || !retryable(err) || ctx.Err() != nil {
			break
		}
		if !backoff(ctx, o.opts.RetryBackoff, attempts) {
			break
		}
	}
	text = strings.TrimSpace(text)

	log.Chunk(log.ChunkData{
		Session:  s.id,
		Seq:      c.Seq,
		Start:    c.Start,
		End:      c.End,
		Attempts: attempts,
		Took:     time.Since(began),
		Chars:    len(text),
		Err:      err,
	})
	return text, err
}

// backoff sleeps before retry n+1, doubling from base up to maxRetryBackoff.
// It returns false if ctx ends first.
func backoff(ctx context.Context, base time.Duration, n int) bool {
	d := base << (n - 1)
	if d <= 0 || d > maxRetryBackoff {
		d = maxRetryBackoff
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// deliver injects text when enabled. Injection failures are reported but do
// not fail the session.
func (o *Orchestrator) deliver(ctx context.Context, text string) {
	if !o.opts.AutoInject || o.injector == nil || text == "" {
		return
	}
	if err := o.injector.Inject(ctx, text); err != nil {
		err = fmt.Errorf("%w: %w", ErrInjectionFailed, err)
		log.Warnf("%v", err)
		o.events.InjectionFailed(err)
	}
}

func (o *Orchestrator) finishStreaming(s *session) (string, error) {
	close(s.stopCh)
	s.capture.Wait()
	<-s.loopDone
	<-s.deliverDone

	if tail := o.buf.Len() - s.win.Offset(); tail > 0 {
		log.Warnf("tail_discarded session=%s samples=%d", shortID(s.id), tail)
	}
	if s.fatal != nil {
		return "", s.fatal
	}
	if o.buf.Len() == 0 {
		return "", ErrNoAudioCaptured
	}
	if len(s.texts) == 0 {
		return "", ErrNoSpeechDetected
	}
	text := strings.Join(s.texts, " ")
	log.TranscriptionText(text)
	return text, nil
}
