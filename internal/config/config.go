package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/CovenantEyes/winsparkle/internal/errs"
)

// Settings is the read-only process configuration. Mutable per-user state
// (last check time, skipped version) lives in the preferences store instead.
type Settings struct {
	FeedURL       string            `koanf:"feed_url" validate:"omitempty,url"`
	AppName       string            `koanf:"app_name"`
	AppVersion    string            `koanf:"app_version"`
	PublicKey     string            `koanf:"public_key"`
	PublicKeyFile string            `koanf:"public_key_file"`
	AllowUnsigned bool              `koanf:"allow_unsigned_updates"`
	StateBackend  string            `koanf:"state_backend" validate:"oneof=file sqlite memory"`
	StatePath     string            `koanf:"state_path"`
	TempRoot      string            `koanf:"temp_root"`
	CheckInterval int               `koanf:"check_interval" validate:"min=3600"`
	PollQuantum   int               `koanf:"poll_quantum" validate:"min=1,max=86400"`
	HTTPTimeout   int               `koanf:"http_timeout" validate:"min=1,max=600"`
	MaxFeedBytes  int64             `koanf:"max_feed_bytes" validate:"min=1024"`
	UserAgent     string            `koanf:"user_agent"`
	Headers       map[string]string `koanf:"headers"`
	Hooks         map[string]string `koanf:"hooks" validate:"dive,keys,oneof=did_find_update did_not_find_update error cancelled,endkeys,required"`
}

// Load layers defaults, the global config file, the file at path (when
// non-empty) and WINSPARKLE_* environment variables, in increasing priority.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		if err := k.Set(key, value); err != nil {
			return nil, errs.New(errs.ConfigurationError, "config.defaults", err)
		}
	}

	globalPath := filepath.Join(DefaultConfigDir(), "config.json")
	if _, err := os.Stat(globalPath); err == nil {
		if err := k.Load(file.Provider(globalPath), json.Parser()); err != nil {
			return nil, errs.New(errs.ConfigurationError, "config.load", fmt.Errorf("failed to load global config: %w", err))
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errs.New(errs.ConfigurationError, "config.load", err)
		}
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, errs.New(errs.ConfigurationError, "config.load", fmt.Errorf("failed to load %s: %w", path, err))
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, errs.New(errs.ConfigurationError, "config.env", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, errs.New(errs.ConfigurationError, "config.unmarshal", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	s.StatePath = expandHomePath(s.StatePath)
	s.TempRoot = expandHomePath(s.TempRoot)
	s.PublicKeyFile = expandHomePath(s.PublicKeyFile)
	if s.StatePath == "" && s.StateBackend != BackendMemory {
		s.StatePath = DefaultStatePath(s.StateBackend)
	}
	return &s, nil
}

// Validate checks struct tags.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return errs.New(errs.ConfigurationError, "config.validate", err)
	}
	return nil
}

// Interval is the periodic check interval.
func (s *Settings) Interval() time.Duration {
	return time.Duration(s.CheckInterval) * time.Second
}

// Quantum is the periodic loop's wake-up period.
func (s *Settings) Quantum() time.Duration {
	return time.Duration(s.PollQuantum) * time.Second
}

func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.HTTPTimeout) * time.Second
}

// HostVersion is the version of the application being updated, falling back
// to this binary's own build version.
func (s *Settings) HostVersion() string {
	if v := strings.TrimSpace(s.AppVersion); v != "" {
		return v
	}
	return Version
}

// envTransform maps WINSPARKLE_FEED_URL to feed_url.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
