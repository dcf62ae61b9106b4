package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcribeFile *os.File
	logMu          sync.Mutex
	logReady       bool
	pid            int
	dir            string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absolute(flagPath)
	}

	// Priority 2: LIMBO_LOG_PATH environment variable
	if envPath := os.Getenv("LIMBO_LOG_PATH"); envPath != "" {
		return absolute(envPath)
	}

	// Priority 3: Default OS-specific location
	return defaultDir()
}

func absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcribePath := filepath.Join(dir, "transcribe_log.txt")
	transcribeFile, err = os.OpenFile(transcribePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05.000",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcribeFile != nil {
		transcribeFile.Close()
		transcribeFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(id, backend, mode string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", id).
		Str("backend", backend).
		Str("mode", mode).
		Msg("session_start")
}

func StateChange(recording bool, status string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Bool("is_recording", recording).
		Str("status", status).
		Msg("recording_state")
}

type ChunkData struct {
	Session  string
	Seq      int
	Start    int
	End      int
	Attempts int
	Took     time.Duration
	Chars    int
	Err      error
}

func Chunk(c ChunkData) {
	if !logReady {
		return
	}
	ev := diagLog.Info()
	if c.Err != nil {
		ev = diagLog.Warn().Err(c.Err)
	}
	ev.Str("session", c.Session).
		Int("seq", c.Seq).
		Int("start", c.Start).
		Int("end", c.End).
		Int("attempts", c.Attempts).
		Float64("took_ms", float64(c.Took.Milliseconds())).
		Int("chars", c.Chars).
		Msg("chunk")
}

type RequestMetricsData struct {
	Backend    string
	Status     int
	PayloadKB  float64
	SetupMs    float64
	UploadMs   float64
	WaitMs     float64
	TotalMs    float64
	ConnReused bool
}

func RequestMetrics(m RequestMetricsData) {
	if !logReady {
		return
	}
	connStatus := "new"
	if m.ConnReused {
		connStatus = "reused"
	}
	diagLog.Info().
		Str("backend", m.Backend).
		Int("status", m.Status).
		Str("conn", connStatus).
		Float64("payload_kb", m.PayloadKB).
		Float64("setup_ms", m.SetupMs).
		Float64("upload_ms", m.UploadMs).
		Float64("wait_ms", m.WaitMs).
		Float64("total_ms", m.TotalMs).
		Msg("transcription_request")
}

func TranscriptionText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	transcribeFile.WriteString(line)
}

func SessionEnd(id string, audioS float64, chars int, err error) {
	if !logReady {
		return
	}
	ev := diagLog.Info()
	if err != nil {
		ev = diagLog.Error().Err(err)
	}
	ev.Str("session", id).
		Float64("audio_s", audioS).
		Int("chars", chars).
		Msg("session_end")
}
