package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ModeBatch     = "batch"
	ModeStreaming = "streaming"

	BackendLocal  = "local"
	BackendRemote = "remote"

	HotkeyToggle = "toggle"
	HotkeyHold   = "hold"
	HotkeyHybrid = "hybrid"
)

type LocalConfig struct {
	ModelPath string `yaml:"model_path"`
	Threads   int    `yaml:"threads"`
}

type RemoteConfig struct {
	URL          string `yaml:"url"`
	Model        string `yaml:"model"`
	APIKeyEnv    string `yaml:"api_key_env"`
	UploadFormat string `yaml:"upload_format"`
}

type Config struct {
	Mode                string       `yaml:"mode"`
	Backend             string       `yaml:"backend"`
	Language            string       `yaml:"language"`
	Device              string       `yaml:"device"`
	AutoInject          bool         `yaml:"auto_inject"`
	HotkeyMode          string       `yaml:"hotkey_mode"`
	Hotkey              string       `yaml:"hotkey"`
	ChunkSeconds        float64      `yaml:"chunk_seconds"`
	PollIntervalMS      int          `yaml:"poll_interval_ms"`
	SettleDelayMS       int          `yaml:"settle_delay_ms"`
	TranscribeTimeoutMS int          `yaml:"transcribe_timeout_ms"`
	ChunkRetries        int          `yaml:"chunk_retries"`
	RetryBackoffMS      int          `yaml:"retry_backoff_ms"`
	MaxInFlight         int          `yaml:"max_in_flight"`
	StagingFormat       string       `yaml:"staging_format"`
	TempDir             string       `yaml:"temp_dir"`
	Local               LocalConfig  `yaml:"local"`
	Remote              RemoteConfig `yaml:"remote"`
}

func Default() Config {
	return Config{
		Mode:                ModeBatch,
		Backend:             BackendLocal,
		Language:            "en",
		AutoInject:          true,
		HotkeyMode:          HotkeyToggle,
		Hotkey:              "alt+space",
		ChunkSeconds:        2.0,
		PollIntervalMS:      500,
		SettleDelayMS:       100,
		TranscribeTimeoutMS: 60000,
		ChunkRetries:        1,
		RetryBackoffMS:      250,
		MaxInFlight:         4,
		StagingFormat:       "wav32",
		Local: LocalConfig{
			Threads: 4,
		},
		Remote: RemoteConfig{
			URL:          "https://api.openai.com/v1/audio/transcriptions",
			Model:        "whisper-1",
			APIKeyEnv:    "OPENAI_API_KEY",
			UploadFormat: "wav16",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	d, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(d, "limbo", "config.yaml")
}

// Load applies, in order: defaults, the YAML file at path (if any), and
// LIMBO_* environment overrides. A missing file is only an error when the
// path was given explicitly.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file: %w", err)
			}
		case os.IsNotExist(err) && !explicit:
		case os.IsNotExist(err):
			return cfg, fmt.Errorf("config file not found: %w", err)
		default:
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Mode, "LIMBO_MODE")
	overrideString(&cfg.Backend, "LIMBO_BACKEND")
	overrideString(&cfg.Language, "LIMBO_LANGUAGE")
	overrideString(&cfg.Device, "LIMBO_DEVICE")
	overrideBool(&cfg.AutoInject, "LIMBO_AUTO_INJECT")
	overrideString(&cfg.HotkeyMode, "LIMBO_HOTKEY_MODE")
	overrideString(&cfg.Hotkey, "LIMBO_HOTKEY")
	overrideFloat(&cfg.ChunkSeconds, "LIMBO_CHUNK_SECONDS")
	overrideInt(&cfg.PollIntervalMS, "LIMBO_POLL_INTERVAL_MS")
	overrideInt(&cfg.SettleDelayMS, "LIMBO_SETTLE_DELAY_MS")
	overrideInt(&cfg.TranscribeTimeoutMS, "LIMBO_TRANSCRIBE_TIMEOUT_MS")
	overrideInt(&cfg.ChunkRetries, "LIMBO_CHUNK_RETRIES")
	overrideInt(&cfg.RetryBackoffMS, "LIMBO_RETRY_BACKOFF_MS")
	overrideInt(&cfg.MaxInFlight, "LIMBO_MAX_IN_FLIGHT")
	overrideString(&cfg.StagingFormat, "LIMBO_STAGING_FORMAT")
	overrideString(&cfg.TempDir, "LIMBO_TEMP_DIR")
	overrideString(&cfg.Local.ModelPath, "LIMBO_MODEL_PATH")
	overrideInt(&cfg.Local.Threads, "LIMBO_THREADS")
	overrideString(&cfg.Remote.URL, "LIMBO_REMOTE_URL")
	overrideString(&cfg.Remote.Model, "LIMBO_REMOTE_MODEL")
	overrideString(&cfg.Remote.APIKeyEnv, "LIMBO_REMOTE_API_KEY_ENV")
	overrideString(&cfg.Remote.UploadFormat, "LIMBO_REMOTE_UPLOAD_FORMAT")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeBatch, ModeStreaming:
	default:
		return errors.New("mode must be one of batch|streaming")
	}
	switch c.Backend {
	case BackendLocal, BackendRemote:
	default:
		return errors.New("backend must be one of local|remote")
	}
	switch c.HotkeyMode {
	case HotkeyToggle, HotkeyHold, HotkeyHybrid:
	default:
		return errors.New("hotkey_mode must be one of toggle|hold|hybrid")
	}
	if c.Language == "" || c.Language == "auto" {
		return errors.New("language must name a fixed language (e.g. en)")
	}
	if c.ChunkSeconds <= 0 {
		return errors.New("chunk_seconds must be positive")
	}
	if c.PollIntervalMS <= 0 {
		return errors.New("poll_interval_ms must be positive")
	}
	if c.SettleDelayMS < 0 {
		return errors.New("settle_delay_ms must be >= 0")
	}
	if c.TranscribeTimeoutMS < 0 {
		return errors.New("transcribe_timeout_ms must be >= 0 (0 disables the timeout)")
	}
	if c.ChunkRetries < 0 {
		return errors.New("chunk_retries must be >= 0")
	}
	if c.RetryBackoffMS < 0 {
		return errors.New("retry_backoff_ms must be >= 0")
	}
	if strings.TrimSpace(c.Hotkey) == "" {
		return errors.New("hotkey must name a key chord (e.g. alt+space)")
	}
	if c.MaxInFlight <= 0 {
		return errors.New("max_in_flight must be >= 1")
	}
	switch c.StagingFormat {
	case "wav", "wav16", "wav32":
	default:
		return errors.New("staging_format must be one of wav16|wav32")
	}
	if c.Backend == BackendRemote {
		if c.Remote.URL == "" {
			return errors.New("remote.url must be set when backend=remote")
		}
		if c.Remote.APIKeyEnv == "" {
			return errors.New("remote.api_key_env must name an environment variable")
		}
		switch c.Remote.UploadFormat {
		case "wav", "wav16", "wav32", "flac":
		default:
			return errors.New("remote.upload_format must be one of wav16|wav32|flac")
		}
	}
	return nil
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

func (c Config) TranscribeTimeout() time.Duration {
	return time.Duration(c.TranscribeTimeoutMS) * time.Millisecond
}

// APIKey reads the remote credential from the configured environment variable.
func (c Config) APIKey() string {
	return strings.TrimSpace(os.Getenv(c.Remote.APIKeyEnv))
}
