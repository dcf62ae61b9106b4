package dictation

import (
	"context"
	"errors"

	"limbo/audio"
	"limbo/inject"
	"limbo/transcriber"
)

var (
	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not recording")
	ErrNoAudioCaptured  = errors.New("no audio captured, check that the microphone is not muted")
	ErrNoSpeechDetected = errors.New("no speech detected")
	ErrStaging          = errors.New("staging audio failed")
	ErrInjectionFailed  = errors.New("text injection failed")
)

type Kind int

const (
	UnknownError Kind = iota
	DeviceError
	StateError
	StorageError
	BackendError
	EmptyResultError
	InjectionError
)

func (k Kind) String() string {
	switch k {
	case DeviceError:
		return "device"
	case StateError:
		return "state"
	case StorageError:
		return "storage"
	case BackendError:
		return "backend"
	case EmptyResultError:
		return "empty_result"
	case InjectionError:
		return "injection"
	}
	return "unknown"
}

// KindOf classifies err into one of the error families the UI reacts to.
func KindOf(err error) Kind {
	var httpErr *transcriber.HTTPError
	switch {
	case err == nil:
		return UnknownError
	case errors.Is(err, audio.ErrNoInputDevice), errors.Is(err, audio.ErrUnsupportedFormat):
		return DeviceError
	case errors.Is(err, ErrAlreadyRecording), errors.Is(err, ErrNotRecording):
		return StateError
	case errors.Is(err, ErrStaging):
		return StorageError
	case errors.Is(err, ErrNoAudioCaptured), errors.Is(err, ErrNoSpeechDetected):
		return EmptyResultError
	case errors.Is(err, ErrInjectionFailed), errors.Is(err, inject.ErrInjectionUnavailable):
		return InjectionError
	case errors.As(err, &httpErr),
		errors.Is(err, transcriber.ErrModelNotFound),
		errors.Is(err, transcriber.ErrCredentialMissing),
		errors.Is(err, transcriber.ErrTranscriptionIO),
		errors.Is(err, context.DeadlineExceeded):
		return BackendError
	}
	return UnknownError
}

// retryable reports whether another attempt at the same chunk could succeed.
func retryable(err error) bool {
	var httpErr *transcriber.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}
	return errors.Is(err, transcriber.ErrTranscriptionIO) || errors.Is(err, context.DeadlineExceeded)
}
