package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.TranscribeTimeout() != 60*time.Second {
		t.Errorf("TranscribeTimeout = %v, want 60s", cfg.TranscribeTimeout())
	}
	if cfg.PollInterval() != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", cfg.PollInterval())
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
mode: streaming
backend: remote
chunk_seconds: 3
remote:
  model: whisper-large
  upload_format: flac
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != ModeStreaming || cfg.Backend != BackendRemote {
		t.Errorf("mode/backend = %s/%s", cfg.Mode, cfg.Backend)
	}
	if cfg.ChunkSeconds != 3 {
		t.Errorf("ChunkSeconds = %v, want 3", cfg.ChunkSeconds)
	}
	if cfg.Remote.Model != "whisper-large" || cfg.Remote.UploadFormat != "flac" {
		t.Errorf("remote = %+v", cfg.Remote)
	}
	// untouched keys keep their defaults
	if cfg.Remote.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnv = %q, want default", cfg.Remote.APIKeyEnv)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := Load(path, false); err != nil {
		t.Errorf("implicit missing file should be ignored, got %v", err)
	}
	if _, err := Load(path, true); err == nil {
		t.Error("explicit missing file should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIMBO_MODE", "streaming")
	t.Setenv("LIMBO_MAX_IN_FLIGHT", "2")
	t.Setenv("LIMBO_AUTO_INJECT", "false")
	t.Setenv("LIMBO_CHUNK_SECONDS", "1.5")
	t.Setenv("LIMBO_THREADS", "not-a-number")

	cfg, err := Load("", false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModeStreaming {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.MaxInFlight != 2 {
		t.Errorf("MaxInFlight = %d", cfg.MaxInFlight)
	}
	if cfg.AutoInject {
		t.Error("AutoInject should be false")
	}
	if cfg.ChunkSeconds != 1.5 {
		t.Errorf("ChunkSeconds = %v", cfg.ChunkSeconds)
	}
	if cfg.Local.Threads != 4 {
		t.Errorf("bad int override should be ignored, Threads = %d", cfg.Local.Threads)
	}
}

func TestValidate(t *testing.T) {
	for _, tt := range []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"mode", func(c *Config) { c.Mode = "live" }, "mode"},
		{"backend", func(c *Config) { c.Backend = "cloud" }, "backend"},
		{"auto language", func(c *Config) { c.Language = "auto" }, "language"},
		{"chunk", func(c *Config) { c.ChunkSeconds = 0 }, "chunk_seconds"},
		{"in flight", func(c *Config) { c.MaxInFlight = 0 }, "max_in_flight"},
		{"retries", func(c *Config) { c.ChunkRetries = -1 }, "chunk_retries"},
		{"backoff", func(c *Config) { c.RetryBackoffMS = -1 }, "retry_backoff_ms"},
		{"hotkey", func(c *Config) { c.Hotkey = " " }, "hotkey"},
		{"staging", func(c *Config) { c.StagingFormat = "flac" }, "staging_format"},
		{"upload", func(c *Config) {
			c.Backend = BackendRemote
			c.Remote.UploadFormat = "mp3"
		}, "upload_format"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestAPIKey(t *testing.T) {
	cfg := Default()
	cfg.Remote.APIKeyEnv = "LIMBO_TEST_KEY"
	t.Setenv("LIMBO_TEST_KEY", "  sk-123 \n")
	if got := cfg.APIKey(); got != "sk-123" {
		t.Errorf("APIKey = %q", got)
	}
}
