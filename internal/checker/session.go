// Package checker runs a single update check: fetch the feed, decide, and
// either notify or download, verify and launch the installer.
package checker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/CovenantEyes/winsparkle/internal/appcast"
	"github.com/CovenantEyes/winsparkle/internal/config"
	"github.com/CovenantEyes/winsparkle/internal/download"
	"github.com/CovenantEyes/winsparkle/internal/errs"
	"github.com/CovenantEyes/winsparkle/internal/installer"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/notifier"
	"github.com/CovenantEyes/winsparkle/internal/runner"
	"github.com/CovenantEyes/winsparkle/internal/service"
	"github.com/CovenantEyes/winsparkle/internal/utils"
	"github.com/CovenantEyes/winsparkle/internal/verify"
	"github.com/CovenantEyes/winsparkle/internal/version"
)

// Transport fetches feeds and streams artifacts.
type Transport interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Download(ctx context.Context, url string, dst service.Destination) error
}

// ParseFunc turns a feed document into an Appcast.
type ParseFunc func(data []byte) (appcast.Appcast, error)

// Prefs is the slice of the preferences store a session touches.
type Prefs interface {
	download.TempDirRecord
	SetUpdateTempDir(ctx context.Context, dir string) error
	SetLastCheckTime(ctx context.Context, t time.Time) error
	SkipThisVersion(ctx context.Context) (string, error)
	AutomaticallyInstall(ctx context.Context) (bool, error)
}

// HostInfo reports the version of the application being updated.
type HostInfo interface {
	CurrentVersion() string
}

// StaticHost is a fixed version string.
type StaticHost string

func (h StaticHost) CurrentVersion() string { return string(h) }

// Session is one update check. It is cheap to build and may be reused for
// consecutive checks, but Run must not be called concurrently.
type Session struct {
	settings  *config.Settings
	prefs     Prefs
	transport Transport
	parse     ParseFunc
	verifier  verify.Verifier
	launcher  runner.Launcher
	notifier  notifier.Notifier
	alternate AlternateFeed
	host      HostInfo
	now       func() time.Time
	tempRoot  string
	sinkOpts  []download.SinkOption

	verifierSet bool
}

type Option func(*Session)

func WithTransport(t Transport) Option {
	return func(s *Session) { s.transport = t }
}

func WithParser(p ParseFunc) Option {
	return func(s *Session) { s.parse = p }
}

func WithLauncher(l runner.Launcher) Option {
	return func(s *Session) { s.launcher = l }
}

func WithNotifier(n notifier.Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithAlternate installs a provider that gets first refusal on every check.
func WithAlternate(a AlternateFeed) Option {
	return func(s *Session) { s.alternate = a }
}

func WithHost(h HostInfo) Option {
	return func(s *Session) { s.host = h }
}

// WithTempRoot sets where per-session download directories are created.
func WithTempRoot(dir string) Option {
	return func(s *Session) { s.tempRoot = dir }
}

// WithVerifier overrides the verifier built from the configured public key.
// A nil verifier means no key is configured.
func WithVerifier(v verify.Verifier) Option {
	return func(s *Session) {
		s.verifier = v
		s.verifierSet = true
	}
}

// WithClock replaces the time source for LastCheckTime and download progress.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
		s.sinkOpts = append(s.sinkOpts, download.WithClock(now))
	}
}

// New builds a session from settings. Collaborators not supplied as options
// get production defaults.
func New(settings *config.Settings, prefs Prefs, opts ...Option) (*Session, error) {
	if settings == nil {
		return nil, errs.New(errs.ConfigurationError, "checker.new", errors.New("settings are nil"))
	}
	if prefs == nil {
		return nil, errs.New(errs.ConfigurationError, "checker.new", errors.New("preferences store is nil"))
	}

	s := &Session{
		settings: settings,
		prefs:    prefs,
		parse:    appcast.Parse,
		launcher: runner.ExecLauncher{},
		notifier: notifier.Discard{},
		host:     StaticHost(settings.HostVersion()),
		now:      time.Now,
		tempRoot: settings.TempRoot,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.transport == nil {
		t := service.NewHTTPTransport(service.NewHTTPClient(settings.Timeout()))
		if settings.MaxFeedBytes > 0 {
			t.MaxFeedBytes = settings.MaxFeedBytes
		}
		if settings.UserAgent != "" {
			t.UserAgent = settings.UserAgent
		}
		t.Headers = settings.Headers
		s.transport = t
	}

	if !s.verifierSet {
		v, err := verify.FromSources(settings.PublicKey, settings.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		s.verifier = v
	}
	return s, nil
}

// Run performs one check. Expected results, including cancellation, come
// back as an Outcome with a nil error. Any failure is reported to the
// notifier exactly once and then returned.
func (s *Session) Run(ctx context.Context, mode Mode) (Outcome, error) {
	logger.Debug("Starting %s update check", mode)

	out, err := s.run(ctx, mode)
	if err == nil {
		logger.Event("update check finished", "mode", mode.String(), "outcome", out.Kind.String(), "version", out.Appcast.Version)
		return out, nil
	}

	if isCancellation(err) {
		logger.Debug("Update check cancelled: %v", err)
		notifier.Cancelled(s.notifier)
		return Outcome{Kind: Cancelled, Appcast: out.Appcast}, nil
	}

	logger.Debug("Update check failed: %v", err)
	s.notifier.NotifyUpdateError(err)
	return Outcome{Kind: Failed, Appcast: out.Appcast}, err
}

func (s *Session) run(ctx context.Context, mode Mode) (Outcome, error) {
	a, err := s.resolve(ctx, mode)
	if err != nil {
		return Outcome{}, err
	}

	if err := s.prefs.SetLastCheckTime(ctx, s.now()); err != nil {
		return Outcome{Appcast: a}, fmt.Errorf("failed to record last check time: %w", err)
	}

	if a.ReleaseNotesURL != "" {
		if _, err := utils.ParseSecureURL(a.ReleaseNotesURL, "release notes"); err != nil {
			return Outcome{Appcast: a}, err
		}
	}
	if a.DownloadURL != "" {
		if _, err := utils.ParseSecureURL(a.DownloadURL, "update file"); err != nil {
			return Outcome{Appcast: a}, err
		}
	}

	current := s.host.CurrentVersion()
	available := a.IsValid() && version.Compare(current, a.Version) < 0
	logger.Debug("Installed %q, feed offers %q (newer: %t)", current, a.Version, available)

	autoInstall, err := s.prefs.AutomaticallyInstall(ctx)
	if err != nil {
		return Outcome{Appcast: a}, fmt.Errorf("failed to read AutomaticallyInstall: %w", err)
	}

	if a.SilentInstall {
		return s.silent(ctx, a, available, autoInstall)
	}
	return s.interactive(ctx, mode, a, available, autoInstall)
}

// resolve asks the alternate provider first, then falls back to the feed URL.
func (s *Session) resolve(ctx context.Context, mode Mode) (appcast.Appcast, error) {
	if s.alternate != nil {
		a, res, err := s.alternate.Resolve(ctx, mode == Manual)
		if err != nil {
			return appcast.Appcast{}, errs.New(errs.AlternateFeed, "alternate", err)
		}
		switch res {
		case ResolvedUpdate:
			logger.Debug("Alternate provider supplied version %q", a.Version)
			return a, nil
		case ResolvedNoUpdate:
			logger.Debug("Alternate provider found no update")
			return appcast.Appcast{}, nil
		}
	}

	feedURL := strings.TrimSpace(s.settings.FeedURL)
	if feedURL == "" {
		return appcast.Appcast{}, errs.New(errs.ConfigurationError, "check", errors.New("feed_url is not set"))
	}
	if _, err := utils.ParseSecureURL(feedURL, "appcast feed"); err != nil {
		return appcast.Appcast{}, err
	}

	body, err := s.transport.Fetch(ctx, feedURL)
	if err != nil {
		return appcast.Appcast{}, asDownloadFailure("fetch", err)
	}

	a, err := s.parse(body)
	if err != nil {
		if errs.CodeOf(err) == errs.ParseError {
			return appcast.Appcast{}, err
		}
		return appcast.Appcast{}, errs.New(errs.ParseError, "parse", err)
	}
	return a, nil
}

func (s *Session) interactive(ctx context.Context, mode Mode, a appcast.Appcast, available, autoInstall bool) (Outcome, error) {
	if !available {
		s.notifier.NotifyNoUpdates(autoInstall)
		return Outcome{Kind: NoUpdate, Appcast: a}, nil
	}

	if mode == Periodic {
		skip, err := s.prefs.SkipThisVersion(ctx)
		if err != nil {
			return Outcome{Appcast: a}, fmt.Errorf("failed to read SkipThisVersion: %w", err)
		}
		if skip != "" && skip == a.Version {
			logger.Debug("Version %s is skipped by the user", a.Version)
			s.notifier.NotifyNoUpdates(autoInstall)
			return Outcome{Kind: NoUpdate, Appcast: a, Skipped: true}, nil
		}
	}

	s.notifier.NotifyUpdateAvailable(a, autoInstall)
	return Outcome{Kind: UpdateAvailable, Appcast: a}, nil
}

func (s *Session) silent(ctx context.Context, a appcast.Appcast, available, autoInstall bool) (Outcome, error) {
	if err := download.CleanLeftovers(ctx, s.prefs); err != nil {
		return Outcome{Appcast: a}, err
	}

	if !available {
		s.notifier.NotifyNoUpdates(autoInstall)
		return Outcome{Kind: NoUpdate, Appcast: a}, nil
	}
	if a.DownloadURL == "" {
		logger.Debug("Silent release %s has no download URL", a.Version)
		s.notifier.NotifyUpdateAvailable(a, autoInstall)
		return Outcome{Kind: UpdateAvailable, Appcast: a}, nil
	}

	dir, err := download.CreateUniqueTempDir(s.tempRoot)
	if err != nil {
		return Outcome{Appcast: a}, errs.New(errs.CannotWrite, "download", err)
	}
	if err := s.prefs.SetUpdateTempDir(ctx, dir); err != nil {
		return Outcome{Appcast: a}, fmt.Errorf("failed to record UpdateTempDir: %w", err)
	}

	sink := download.NewSink(ctx, dir, s.notifier, s.sinkOpts...)
	dlErr := s.transport.Download(ctx, a.DownloadURL, sink)
	closeErr := sink.Close()
	if dlErr != nil {
		return Outcome{Appcast: a}, asDownloadFailure("download", dlErr)
	}
	if closeErr != nil {
		return Outcome{Appcast: a}, asDownloadFailure("download", closeErr)
	}

	path := sink.FilePath()
	if err := s.verifyArtifact(path, a.Signature); err != nil {
		return Outcome{Appcast: a}, err
	}

	if err := ctx.Err(); err != nil {
		return Outcome{Appcast: a}, errs.New(errs.Cancelled, "launch", err)
	}
	if err := installer.Launch(ctx, s.launcher, path, a.InstallerArguments); err != nil {
		return Outcome{Appcast: a}, err
	}
	return Outcome{Kind: UpdateInstalling, Appcast: a, ArtifactPath: path}, nil
}

func (s *Session) verifyArtifact(path, signature string) error {
	if s.verifier == nil {
		if !s.settings.AllowUnsigned {
			return errs.New(errs.VerificationFailure, "verify",
				fmt.Errorf("no public key configured to verify %s", filepath.Base(path)))
		}
		logger.Warn("Using unsigned update %s: allow_unsigned_updates is enabled", filepath.Base(path))
		return nil
	}

	if err := s.verifier.Verify(path, signature); err != nil {
		if errs.Has(err, errs.VerificationFailure) {
			return err
		}
		return errs.New(errs.VerificationFailure, "verify", err)
	}
	logger.Debug("Signature of %s verified", filepath.Base(path))
	return nil
}

// asDownloadFailure keeps the inner code reachable through errors.Is.
func asDownloadFailure(op string, err error) error {
	if errs.CodeOf(err) == errs.DownloadFailure {
		return err
	}
	return errs.New(errs.DownloadFailure, op, err)
}

func isCancellation(err error) bool {
	return errs.Has(err, errs.Cancelled) || errors.Is(err, context.Canceled)
}
