//go:build integration

package test_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"limbo/encoder"
)

var testBinary string

func TestMain(m *testing.M) {
	testBinary = os.Getenv("LIMBO_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "LIMBO_TEST_BIN not set; build the binary and point LIMBO_TEST_BIN at it")
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// fakeAPI answers every transcription request with "chunk N".
func fakeAPI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "bad key", http.StatusUnauthorized)
			return
		}
		n := calls.Add(1)
		fmt.Fprintf(w, "chunk %d\n", n)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func writeWAV(t *testing.T, seconds float64) string {
	t.Helper()
	samples := make([]float32, int(seconds*16000))
	for i := range samples {
		samples[i] = 0.1
	}
	path := filepath.Join(t.TempDir(), "input.wav")
	if err := encoder.WriteFile(path, samples, encoder.FormatWAV16); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeConfig(t *testing.T, url, extra string) string {
	t.Helper()
	body := fmt.Sprintf(`backend: remote
auto_inject: true
chunk_seconds: 1.0
poll_interval_ms: 100
remote:
  url: %s
  api_key_env: LIMBO_TEST_KEY
%s`, url, extra)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func runLimbo(t *testing.T, stdin string, args ...string) (out, logDir string) {
	t.Helper()
	logDir = t.TempDir()
	cmdArgs := append([]string{"-logpath", logDir, "-tui=false", "-nobeep", "-test"}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = append(os.Environ(), "LIMBO_TEST_KEY=test-key")

	b, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("limbo exited with error: %v\noutput: %s", err, b)
	}
	return string(b), logDir
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

func TestBatchToggle(t *testing.T) {
	srv, calls := fakeAPI(t)
	cfg := writeConfig(t, srv.URL, "")
	wav := writeWAV(t, 1.5)

	out, logDir := runLimbo(t, cmds("KEYDOWN", "KEYUP", "SLEEP 200", "KEYDOWN", "KEYUP", "WAIT", "QUIT"),
		"-config", cfg, wav)

	if !strings.Contains(out, `status="Listening..."`) || !strings.Contains(out, `status="Complete!"`) {
		t.Errorf("missing state lines:\n%s", out)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
	if !strings.Contains(readLog(t, logDir, "transcribe_log.txt"), "chunk 1") {
		t.Error("transcribe_log.txt does not contain the transcription")
	}
}

func TestBatchHold(t *testing.T) {
	srv, _ := fakeAPI(t)
	cfg := writeConfig(t, srv.URL, "hotkey_mode: hold\n")
	wav := writeWAV(t, 1.0)

	out, _ := runLimbo(t, cmds("KEYDOWN", "SLEEP 200", "KEYUP", "WAIT", "QUIT"), "-config", cfg, wav)
	if !strings.Contains(out, `RESULT stop "chunk 1"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestBatchBadKey(t *testing.T) {
	srv, _ := fakeAPI(t)
	cfg := writeConfig(t, srv.URL, "")
	wav := writeWAV(t, 1.0)

	// the key is read from a variable that points at the wrong value
	t.Setenv("LIMBO_REMOTE_API_KEY_ENV", "LIMBO_TEST_WRONG_KEY")
	t.Setenv("LIMBO_TEST_WRONG_KEY", "nope")

	out, _ := runLimbo(t, cmds("START", "STOP", "QUIT"), "-config", cfg, wav)
	if !strings.Contains(out, `status="Error: transcription API error 401`) {
		t.Errorf("expected a 401 error status:\n%s", out)
	}
}

func TestStreamingChunksInOrder(t *testing.T) {
	srv, calls := fakeAPI(t)
	cfg := writeConfig(t, srv.URL, "max_in_flight: 2\n")
	wav := writeWAV(t, 3.5)

	out, logDir := runLimbo(t, cmds("START", "WAIT_AUDIO_DONE", "SLEEP 300", "STOP", "QUIT"),
		"-config", cfg, "-mode", "streaming", wav)

	if got := calls.Load(); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
	last := -1
	for _, line := range strings.Split(out, "\n") {
		var seq int
		if _, err := fmt.Sscanf(line, "CHUNK %d", &seq); err != nil {
			continue
		}
		if seq != last+1 {
			t.Errorf("chunk %d delivered after %d", seq, last)
		}
		last = seq
	}
	if last != 2 {
		t.Errorf("last chunk = %d, want 2\n%s", last, out)
	}
	if !strings.Contains(readLog(t, logDir, "diagnostics_log.txt"), "tail_discarded") {
		t.Error("expected the half-second tail to be reported as discarded")
	}
}
