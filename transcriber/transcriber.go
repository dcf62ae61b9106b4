// Package transcriber turns captured audio into text, either with a local
// whisper.cpp model or through a remote transcription API.
package transcriber

import (
	"context"
	"errors"
	"fmt"
	"time"

	"limbo/config"
	"limbo/encoder"
)

var (
	ErrModelNotFound     = errors.New("local model file not found")
	ErrCredentialMissing = errors.New("transcription API key is not set")
	ErrTranscriptionIO   = errors.New("transcription request failed")
)

// HTTPError is a non-2xx answer from the remote API. Body is kept verbatim
// so the user sees what the service said.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("transcription API error %d: %s", e.StatusCode, e.Body)
}

// Clip is one unit of audio handed to a backend: the samples themselves and
// the staged file holding the same audio.
type Clip struct {
	Samples    []float32
	SampleRate int
	Channels   int
	Path       string
}

func (c Clip) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

type Backend interface {
	Name() string
	Transcribe(ctx context.Context, clip Clip) (string, error)
	Close() error
}

// Checker is implemented by backends that can report whether they are usable
// without transcribing anything.
type Checker interface {
	Check() error
}

// Stager is implemented by backends that want the staged file in a specific
// format.
type Stager interface {
	StagingFormat() encoder.Format
}

// Warmer is implemented by backends that can prepare a connection while the
// user is still speaking.
type Warmer interface {
	Warm()
}

func New(cfg config.Config) (Backend, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		path := cfg.Local.ModelPath
		if path == "" {
			var err error
			if path, err = DefaultModelPath(); err != nil {
				return nil, err
			}
		}
		return NewLocal(LocalOptions{
			ModelPath: path,
			Language:  cfg.Language,
			Threads:   cfg.Local.Threads,
		}), nil
	case config.BackendRemote:
		format, err := encoder.ParseFormat(cfg.Remote.UploadFormat)
		if err != nil {
			return nil, err
		}
		return NewRemote(RemoteOptions{
			URL:      cfg.Remote.URL,
			Model:    cfg.Remote.Model,
			Language: cfg.Language,
			APIKey:   cfg.APIKey(),
			Format:   format,
			TempDir:  cfg.TempDir,
		}), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
