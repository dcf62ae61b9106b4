package transcriber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"limbo/encoder"
	"limbo/log"
)

const defaultModelFile = "ggml-small.en.bin"

// DefaultModelPath is where a bundled build keeps its model: a resources
// directory next to the executable.
func DefaultModelPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "resources", defaultModelFile), nil
}

type LocalOptions struct {
	ModelPath string
	Language  string
	Threads   int
}

// Local runs whisper.cpp in process. The model is loaded on first use and
// shared by every later call; each call gets its own decoding context.
// whisper_full is not safe for concurrent use on one model, so calls are
// serialized.
type Local struct {
	opts LocalOptions

	mu    sync.Mutex
	model whisper.Model
}

func NewLocal(opts LocalOptions) *Local {
	if opts.Language == "" {
		opts.Language = "en"
	}
	return &Local{opts: opts}
}

func (l *Local) Name() string { return "local" }

func (l *Local) Check() error {
	if _, err := os.Stat(l.opts.ModelPath); err != nil {
		return l.notFound()
	}
	return nil
}

func (l *Local) notFound() error {
	return fmt.Errorf("%w at %s: download a build that bundles the model or set local.model_path",
		ErrModelNotFound, l.opts.ModelPath)
}

func (l *Local) load() (whisper.Model, error) {
	if l.model != nil {
		return l.model, nil
	}
	if err := l.Check(); err != nil {
		return nil, err
	}
	model, err := whisper.New(l.opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", l.opts.ModelPath, err)
	}
	log.Infof("whisper model loaded: %s", l.opts.ModelPath)
	l.model = model
	return model, nil
}

func (l *Local) Transcribe(ctx context.Context, clip Clip) (string, error) {
	samples := clip.Samples
	if len(samples) == 0 && clip.Path != "" {
		var err error
		if samples, err = readStaged(clip.Path); err != nil {
			return "", err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	model, err := l.load()
	if err != nil {
		return "", err
	}

	wctx, err := model.NewContext()
	if err != nil {
		return "", fmt.Errorf("creating whisper context: %w", err)
	}
	// English-only models reject SetLanguage outright.
	if model.IsMultilingual() {
		if err := wctx.SetLanguage(l.opts.Language); err != nil {
			return "", fmt.Errorf("setting language %q: %w", l.opts.Language, err)
		}
	}
	wctx.SetTranslate(false)
	if l.opts.Threads > 0 {
		wctx.SetThreads(uint(l.opts.Threads))
	}

	// returning false from the encoder callback aborts the run
	keepGoing := func() bool { return ctx.Err() == nil }
	if err := wctx.Process(samples, keepGoing, nil, nil); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("whisper process: %w", err)
	}

	var parts []string
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper segment: %w", err)
		}
		parts = append(parts, seg.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.model == nil {
		return nil
	}
	err := l.model.Close()
	l.model = nil
	return err
}

func readStaged(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening staged audio: %w", err)
	}
	defer f.Close()
	samples, _, err := encoder.DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("decoding staged audio: %w", err)
	}
	return samples, nil
}
