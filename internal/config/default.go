package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	EnvPrefix = "WINSPARKLE_"

	// MinCheckInterval is the smallest accepted periodic interval.
	MinCheckInterval = time.Hour
	// DefaultCheckInterval applies when nothing else is configured.
	DefaultCheckInterval = 24 * time.Hour
	// DefaultPollQuantum is how often the periodic loop wakes up to
	// re-read preferences.
	DefaultPollQuantum = 5 * time.Minute

	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// GetDefaults returns the baseline values loaded before any file or env.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"feed_url":               "",
		"app_name":               "",
		"app_version":            "",
		"public_key":             "",
		"public_key_file":        "",
		"allow_unsigned_updates": false,
		"state_backend":          BackendFile,
		"state_path":             "",
		"temp_root":              "",
		"check_interval":         int(DefaultCheckInterval / time.Second),
		"poll_quantum":           int(DefaultPollQuantum / time.Second),
		"http_timeout":           30,
		"max_feed_bytes":         4 << 20,
		"user_agent":             "winsparkle/" + Version,
	}
}

// DefaultConfigDir is ~/.config/winsparkle (or the platform equivalent).
func DefaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "winsparkle")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "winsparkle")
	}
	return filepath.Join(os.TempDir(), "winsparkle")
}

// DefaultStatePath picks the preferences location for a backend.
func DefaultStatePath(backend string) string {
	switch backend {
	case BackendSQLite:
		return filepath.Join(DefaultConfigDir(), "prefs.db")
	default:
		return filepath.Join(DefaultConfigDir(), "prefs.yaml")
	}
}
