package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/CovenantEyes/winsparkle/internal/logger"
)

// Preference keys.
const (
	KeyCheckForUpdates      = "CheckForUpdates"
	KeyLastCheckTime        = "LastCheckTime"
	KeySkipThisVersion      = "SkipThisVersion"
	KeyUpdateTempDir        = "UpdateTempDir"
	KeyCheckInterval        = "CheckInterval"
	KeyAutomaticallyInstall = "AutomaticallyInstall"
)

// Prefs is a typed view over a KV. Malformed stored values read back as the
// key's default rather than failing the caller.
type Prefs struct {
	kv              KV
	defaultInterval time.Duration
	minInterval     time.Duration
}

// NewPrefs wraps kv. defaultInterval applies when CheckInterval is unset, and
// minInterval floors any stored value.
func NewPrefs(kv KV, defaultInterval, minInterval time.Duration) *Prefs {
	return &Prefs{kv: kv, defaultInterval: defaultInterval, minInterval: minInterval}
}

// KV exposes the underlying store.
func (p *Prefs) KV() KV { return p.kv }

func (p *Prefs) CheckForUpdates(ctx context.Context) (bool, error) {
	return p.getBool(ctx, KeyCheckForUpdates, false)
}

func (p *Prefs) SetCheckForUpdates(ctx context.Context, on bool) error {
	return p.kv.Set(ctx, KeyCheckForUpdates, formatBool(on))
}

func (p *Prefs) AutomaticallyInstall(ctx context.Context) (bool, error) {
	return p.getBool(ctx, KeyAutomaticallyInstall, false)
}

func (p *Prefs) SetAutomaticallyInstall(ctx context.Context, on bool) error {
	return p.kv.Set(ctx, KeyAutomaticallyInstall, formatBool(on))
}

// LastCheckTime returns the zero time when no check has been recorded.
func (p *Prefs) LastCheckTime(ctx context.Context) (time.Time, error) {
	v, ok, err := p.kv.Get(ctx, KeyLastCheckTime)
	if err != nil || !ok {
		return time.Time{}, err
	}
	secs, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if perr != nil || secs <= 0 {
		logger.Debug("Ignoring malformed %s=%q", KeyLastCheckTime, v)
		return time.Time{}, nil
	}
	return time.Unix(secs, 0), nil
}

func (p *Prefs) SetLastCheckTime(ctx context.Context, t time.Time) error {
	return p.kv.Set(ctx, KeyLastCheckTime, strconv.FormatInt(t.Unix(), 10))
}

func (p *Prefs) SkipThisVersion(ctx context.Context) (string, error) {
	v, _, err := p.kv.Get(ctx, KeySkipThisVersion)
	return v, err
}

// SetSkipThisVersion records a version the user declined. An empty version
// clears the record.
func (p *Prefs) SetSkipThisVersion(ctx context.Context, version string) error {
	if version == "" {
		return p.kv.Delete(ctx, KeySkipThisVersion)
	}
	return p.kv.Set(ctx, KeySkipThisVersion, version)
}

func (p *Prefs) UpdateTempDir(ctx context.Context) (string, error) {
	v, _, err := p.kv.Get(ctx, KeyUpdateTempDir)
	return v, err
}

func (p *Prefs) SetUpdateTempDir(ctx context.Context, dir string) error {
	return p.kv.Set(ctx, KeyUpdateTempDir, dir)
}

func (p *Prefs) ClearUpdateTempDir(ctx context.Context) error {
	return p.kv.Delete(ctx, KeyUpdateTempDir)
}

// CheckInterval is stored in seconds and never drops below the floor.
func (p *Prefs) CheckInterval(ctx context.Context) (time.Duration, error) {
	v, ok, err := p.kv.Get(ctx, KeyCheckInterval)
	if err != nil {
		return p.defaultInterval, err
	}
	d := p.defaultInterval
	if ok {
		secs, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if perr != nil || secs <= 0 {
			logger.Debug("Ignoring malformed %s=%q", KeyCheckInterval, v)
		} else {
			d = time.Duration(secs) * time.Second
		}
	}
	if d < p.minInterval {
		d = p.minInterval
	}
	return d, nil
}

func (p *Prefs) SetCheckInterval(ctx context.Context, d time.Duration) error {
	if d < p.minInterval {
		d = p.minInterval
	}
	return p.kv.Set(ctx, KeyCheckInterval, strconv.FormatInt(int64(d/time.Second), 10))
}

// Snapshot returns every stored preference, for display.
func (p *Prefs) Snapshot(ctx context.Context) (map[string]string, error) {
	return p.kv.All(ctx)
}

func (p *Prefs) getBool(ctx context.Context, key string, def bool) (bool, error) {
	v, ok, err := p.kv.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	b, perr := strconv.ParseBool(strings.TrimSpace(v))
	if perr != nil {
		logger.Debug("Ignoring malformed %s=%q", key, v)
		return def, nil
	}
	return b, nil
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
