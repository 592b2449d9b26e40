package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CovenantEyes/winsparkle/internal/appcast"
	"github.com/CovenantEyes/winsparkle/internal/config"
	"github.com/CovenantEyes/winsparkle/internal/errs"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/runner"
	"github.com/CovenantEyes/winsparkle/internal/service"
	"github.com/CovenantEyes/winsparkle/internal/store"
	"github.com/CovenantEyes/winsparkle/internal/verify"
)

func TestMain(m *testing.M) {
	logger.UseTestMode()
	os.Exit(m.Run())
}

const feedURL = "https://updates.example.com/appcast.xml"

// --- fakes ---

type fakeTransport struct {
	feed     []byte
	fetchErr error
	artifact []byte
	name     string
	dlErr    error
	onFetch  func()

	fetched    []string
	downloaded []string
}

func (f *fakeTransport) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.fetched = append(f.fetched, url)
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.feed, f.fetchErr
}

func (f *fakeTransport) Download(ctx context.Context, url string, dst service.Destination) error {
	f.downloaded = append(f.downloaded, url)
	if f.dlErr != nil {
		return f.dlErr
	}
	dst.SetLength(uint64(len(f.artifact)))
	name := f.name
	if name == "" {
		name = "setup.exe"
	}
	if err := dst.SetFilename(name); err != nil {
		return err
	}
	_, err := dst.Write(f.artifact)
	return err
}

type recordingNotifier struct {
	mu          sync.Mutex
	available   []appcast.Appcast
	noUpdates   int
	errors      []error
	progress    int
	cancelled   int
	autoInstall []bool
}

func (r *recordingNotifier) NotifyDownloadProgress(uint64, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress++
}

func (r *recordingNotifier) NotifyUpdateAvailable(a appcast.Appcast, autoInstall bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available = append(r.available, a)
	r.autoInstall = append(r.autoInstall, autoInstall)
}

func (r *recordingNotifier) NotifyNoUpdates(autoInstall bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noUpdates++
	r.autoInstall = append(r.autoInstall, autoInstall)
}

func (r *recordingNotifier) NotifyUpdateError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func (r *recordingNotifier) NotifyUpdateCancelled() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled++
}

type fixture struct {
	settings  *config.Settings
	prefs     *store.Prefs
	kv        *store.Memory
	transport *fakeTransport
	notifier  *recordingNotifier
	launcher  *runner.MockLauncher
	tempRoot  string
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := store.NewMemory()
	return &fixture{
		settings:  &config.Settings{FeedURL: feedURL, AppVersion: "1.0"},
		prefs:     store.NewPrefs(kv, 24*time.Hour, time.Hour),
		kv:        kv,
		transport: &fakeTransport{feed: []byte("<rss/>"), artifact: []byte("installer bytes")},
		notifier:  &recordingNotifier{},
		launcher:  runner.NewMockLauncher(),
		tempRoot:  t.TempDir(),
		now:       time.Unix(1700000000, 0),
	}
}

func (f *fixture) session(t *testing.T, a appcast.Appcast, opts ...Option) *Session {
	t.Helper()
	base := []Option{
		WithTransport(f.transport),
		WithParser(func([]byte) (appcast.Appcast, error) { return a, nil }),
		WithNotifier(f.notifier),
		WithLauncher(f.launcher),
		WithTempRoot(f.tempRoot),
		WithClock(func() time.Time { return f.now }),
		WithVerifier(nil),
	}
	s, err := New(f.settings, f.prefs, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

func (f *fixture) lastCheck(t *testing.T) string {
	t.Helper()
	v, _, err := f.kv.Get(context.Background(), store.KeyLastCheckTime)
	require.NoError(t, err)
	return v
}

// --- interactive path ---

func TestRun_InvalidAppcastIsNoUpdate(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, appcast.Appcast{})

	out, err := s.Run(context.Background(), Periodic)
	require.NoError(t, err)
	assert.Equal(t, NoUpdate, out.Kind)
	assert.Equal(t, 1, f.notifier.noUpdates)
	assert.Empty(t, f.notifier.available)
	assert.Equal(t, "1700000000", f.lastCheck(t))
}

func TestRun_SameOrOlderVersionIsNoUpdate(t *testing.T) {
	for _, v := range []string{"1.0", "0.9", "1.0beta"} {
		t.Run(v, func(t *testing.T) {
			f := newFixture(t)
			out, err := f.session(t, appcast.Appcast{Version: v}).Run(context.Background(), Manual)
			require.NoError(t, err)
			assert.Equal(t, NoUpdate, out.Kind)
			assert.Equal(t, 1, f.notifier.noUpdates)
		})
	}
}

func TestRun_UpdateAvailable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.prefs.SetAutomaticallyInstall(context.Background(), true))
	a := appcast.Appcast{Version: "1.1", DownloadURL: "https://example.com/setup.exe"}

	out, err := f.session(t, a).Run(context.Background(), Periodic)
	require.NoError(t, err)
	assert.Equal(t, UpdateAvailable, out.Kind)
	assert.Equal(t, "1.1", out.Appcast.Version)
	require.Len(t, f.notifier.available, 1)
	assert.Equal(t, []bool{true}, f.notifier.autoInstall)
	assert.Equal(t, []string{feedURL}, f.transport.fetched)
	assert.Empty(t, f.transport.downloaded, "interactive path never downloads")
}

func TestRun_SkippedVersion(t *testing.T) {
	ctx := context.Background()
	a := appcast.Appcast{Version: "1.1"}

	t.Run("periodic honors skip", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.prefs.SetSkipThisVersion(ctx, "1.1"))

		out, err := f.session(t, a).Run(ctx, Periodic)
		require.NoError(t, err)
		assert.Equal(t, NoUpdate, out.Kind)
		assert.True(t, out.Skipped)
		assert.Equal(t, 1, f.notifier.noUpdates)
		assert.Empty(t, f.notifier.available)
	})

	t.Run("manual ignores skip", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.prefs.SetSkipThisVersion(ctx, "1.1"))

		out, err := f.session(t, a).Run(ctx, Manual)
		require.NoError(t, err)
		assert.Equal(t, UpdateAvailable, out.Kind)
		assert.False(t, out.Skipped)
	})

	t.Run("skip matches exact version only", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.prefs.SetSkipThisVersion(ctx, "1.1.0"))

		out, err := f.session(t, a).Run(ctx, Periodic)
		require.NoError(t, err)
		assert.Equal(t, UpdateAvailable, out.Kind)
	})

	t.Run("session never writes skip", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.session(t, a).Run(ctx, Periodic)
		require.NoError(t, err)
		skip, err := f.prefs.SkipThisVersion(ctx)
		require.NoError(t, err)
		assert.Empty(t, skip)
	})
}

// --- failures ---

func TestRun_MissingFeedURL(t *testing.T) {
	f := newFixture(t)
	f.settings.FeedURL = ""

	out, err := f.session(t, appcast.Appcast{Version: "2.0"}).Run(context.Background(), Manual)
	require.Error(t, err)
	assert.True(t, errs.Has(err, errs.ConfigurationError))
	assert.Equal(t, Failed, out.Kind)
	assert.Len(t, f.notifier.errors, 1)
	assert.Empty(t, f.transport.fetched)
	assert.Empty(t, f.lastCheck(t), "no feed obtained, no last check")
}

func TestRun_InsecureFeedURL(t *testing.T) {
	f := newFixture(t)
	f.settings.FeedURL = "http://updates.example.com/appcast.xml"

	_, err := f.session(t, appcast.Appcast{Version: "2.0"}).Run(context.Background(), Periodic)
	assert.True(t, errs.Has(err, errs.InsecureTransport))
	assert.Empty(t, f.transport.fetched)
	assert.Len(t, f.notifier.errors, 1)
}

func TestRun_InsecureDownloadURLWritesNothing(t *testing.T) {
	f := newFixture(t)
	a := appcast.Appcast{Version: "2.0", DownloadURL: "http://example.com/setup.exe", SilentInstall: true}

	_, err := f.session(t, a).Run(context.Background(), Periodic)
	require.Error(t, err)
	assert.True(t, errs.Has(err, errs.InsecureTransport))
	assert.Empty(t, f.transport.downloaded)
	assert.Zero(t, f.launcher.Count())

	entries, err := os.ReadDir(f.tempRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_InsecureReleaseNotes(t *testing.T) {
	f := newFixture(t)
	a := appcast.Appcast{Version: "2.0", ReleaseNotesURL: "ftp://example.com/notes"}

	_, err := f.session(t, a).Run(context.Background(), Manual)
	assert.True(t, errs.Has(err, errs.InsecureTransport))
	assert.Empty(t, f.notifier.available)
}

func TestRun_FetchFailure(t *testing.T) {
	f := newFixture(t)
	f.transport.fetchErr = errors.New("connection refused")

	out, err := f.session(t, appcast.Appcast{}).Run(context.Background(), Periodic)
	require.Error(t, err)
	assert.Equal(t, errs.DownloadFailure, errs.CodeOf(err))
	assert.Equal(t, Failed, out.Kind)
	assert.Len(t, f.notifier.errors, 1)
	assert.Empty(t, f.lastCheck(t))
}

func TestRun_ParseFailure(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, appcast.Appcast{}, WithParser(func([]byte) (appcast.Appcast, error) {
		return appcast.Appcast{}, errors.New("unexpected EOF")
	}))

	_, err := s.Run(context.Background(), Periodic)
	assert.Equal(t, errs.ParseError, errs.CodeOf(err))
	assert.Len(t, f.notifier.errors, 1)
}

func TestRun_RealParserRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	f.transport.feed = []byte("<rss><channel><item>")
	s, err := New(f.settings, f.prefs, WithTransport(f.transport), WithNotifier(f.notifier), WithVerifier(nil))
	require.NoError(t, err)

	_, err = s.Run(context.Background(), Periodic)
	assert.True(t, errs.Has(err, errs.ParseError))
}

func TestRun_ErrorNotifiedExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.transport.dlErr = errs.New(errs.WriteFailure, "sink.add", errors.New("disk full"))
	a := appcast.Appcast{Version: "2.0", DownloadURL: "https://example.com/setup.exe", SilentInstall: true}

	_, err := f.session(t, a).Run(context.Background(), Periodic)
	require.Error(t, err)
	assert.Equal(t, errs.DownloadFailure, errs.CodeOf(err))
	assert.True(t, errs.Has(err, errs.WriteFailure), "inner code stays reachable")
	assert.Len(t, f.notifier.errors, 1)
	assert.Zero(t, f.notifier.noUpdates)
	assert.Empty(t, f.notifier.available)
}

// --- cancellation ---

func TestRun_CancelledDuringFetch(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.transport.onFetch = cancel
	f.transport.fetchErr = errs.New(errs.Cancelled, "fetch", context.Canceled)

	out, err := f.session(t, appcast.Appcast{}).Run(ctx, Periodic)
	require.NoError(t, err)
	assert.Equal(t, Cancelled, out.Kind)
	assert.Empty(t, f.notifier.errors)
	assert.Equal(t, 1, f.notifier.cancelled)
}

func TestRun_CancelledBeforeDownloadLaunchesNothing(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := appcast.Appcast{Version: "2.0", DownloadURL: "https://example.com/setup.exe", SilentInstall: true}

	out, err := f.session(t, a).Run(ctx, Periodic)
	require.NoError(t, err)
	assert.Equal(t, Cancelled, out.Kind)
	assert.Zero(t, f.launcher.Count())
	assert.Empty(t, f.notifier.errors)
}

// --- alternate provider ---

func TestRun_AlternateProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("update", func(t *testing.T) {
		f := newFixture(t)
		var sawManual bool
		alt := AlternateFunc(func(_ context.Context, manual bool) (appcast.Appcast, Resolution, error) {
			sawManual = manual
			return appcast.Appcast{Version: "3.0"}, ResolvedUpdate, nil
		})

		out, err := f.session(t, appcast.Appcast{}, WithAlternate(alt)).Run(ctx, Manual)
		require.NoError(t, err)
		assert.True(t, sawManual)
		assert.Equal(t, UpdateAvailable, out.Kind)
		assert.Equal(t, "3.0", out.Appcast.Version)
		assert.Empty(t, f.transport.fetched)
		assert.Equal(t, "1700000000", f.lastCheck(t))
	})

	t.Run("no update", func(t *testing.T) {
		f := newFixture(t)
		alt := AlternateFunc(func(context.Context, bool) (appcast.Appcast, Resolution, error) {
			return appcast.Appcast{}, ResolvedNoUpdate, nil
		})

		out, err := f.session(t, appcast.Appcast{Version: "9.9"}, WithAlternate(alt)).Run(ctx, Periodic)
		require.NoError(t, err)
		assert.Equal(t, NoUpdate, out.Kind)
		assert.Empty(t, f.transport.fetched)
	})

	t.Run("defer", func(t *testing.T) {
		f := newFixture(t)
		alt := AlternateFunc(func(context.Context, bool) (appcast.Appcast, Resolution, error) {
			return appcast.Appcast{}, Defer, nil
		})

		out, err := f.session(t, appcast.Appcast{Version: "1.2"}, WithAlternate(alt)).Run(ctx, Periodic)
		require.NoError(t, err)
		assert.Equal(t, UpdateAvailable, out.Kind)
		assert.Equal(t, []string{feedURL}, f.transport.fetched)
	})

	t.Run("error", func(t *testing.T) {
		f := newFixture(t)
		alt := AlternateFunc(func(context.Context, bool) (appcast.Appcast, Resolution, error) {
			return appcast.Appcast{}, Defer, errors.New("provider crashed")
		})

		_, err := f.session(t, appcast.Appcast{Version: "1.2"}, WithAlternate(alt)).Run(ctx, Periodic)
		assert.Equal(t, errs.AlternateFeed, errs.CodeOf(err))
		assert.Empty(t, f.transport.fetched)
		assert.Len(t, f.notifier.errors, 1)
	})
}

func TestFileFeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "appcast.xml")
	doc := `<rss version="2.0" xmlns:sparkle="http://www.andymatuschak.org/xml-namespaces/sparkle"><channel>
<item><title>2.0</title><enclosure url="https://example.com/setup.exe" sparkle:version="2.0"/></item>
</channel></rss>`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	a, res, err := FileFeed{Path: path}.Resolve(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, ResolvedUpdate, res)
	assert.Equal(t, "2.0", a.Version)

	empty := filepath.Join(dir, "empty.xml")
	require.NoError(t, os.WriteFile(empty, []byte(`<rss><channel></channel></rss>`), 0o600))
	_, res, err = FileFeed{Path: empty}.Resolve(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, ResolvedNoUpdate, res)

	_, _, err = FileFeed{Path: filepath.Join(dir, "missing.xml")}.Resolve(context.Background(), false)
	assert.Error(t, err)

	_, res, err = FileFeed{}.Resolve(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, Defer, res)
}

// --- silent path ---

var (
	keyOnce sync.Once
	keyErr  error
	signer  *verify.Signer
	pubKey  string
)

func testSigner(t *testing.T) (*verify.Signer, verify.Verifier) {
	t.Helper()
	keyOnce.Do(func() {
		var e *openpgp.Entity
		e, keyErr = openpgp.NewEntity("Release", "", "release@example.com", nil)
		if keyErr != nil {
			return
		}
		var buf bytes.Buffer
		w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
		if err != nil {
			keyErr = err
			return
		}
		if keyErr = e.SerializePrivate(w, nil); keyErr != nil {
			return
		}
		if keyErr = w.Close(); keyErr != nil {
			return
		}
		if signer, keyErr = verify.NewSigner(buf.String()); keyErr != nil {
			return
		}
		pubKey = string(signer.PublicKey())
	})
	require.NoError(t, keyErr)
	v, err := verify.NewOpenPGP(pubKey)
	require.NoError(t, err)
	return signer, v
}

func sign(t *testing.T, s *verify.Signer, content []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "artifact")
	require.NoError(t, os.WriteFile(p, content, 0o600))
	sig, err := s.Sign(p)
	require.NoError(t, err)
	return sig
}

func silentAppcast(sig string) appcast.Appcast {
	return appcast.Appcast{
		Version:            "2.0",
		DownloadURL:        "https://example.com/setup.exe",
		Signature:          sig,
		SilentInstall:      true,
		InstallerArguments: "/norestart",
	}
}

func TestRun_SilentInstall(t *testing.T) {
	f := newFixture(t)
	sgn, v := testSigner(t)
	a := silentAppcast(sign(t, sgn, f.transport.artifact))

	out, err := f.session(t, a, WithVerifier(v)).Run(context.Background(), Periodic)
	require.NoError(t, err)
	assert.Equal(t, UpdateInstalling, out.Kind)
	require.NotEmpty(t, out.ArtifactPath)
	assert.Equal(t, f.tempRoot, filepath.Dir(filepath.Dir(out.ArtifactPath)))
	assert.True(t, strings.HasPrefix(filepath.Base(filepath.Dir(out.ArtifactPath)), "Update-"))

	data, err := os.ReadFile(out.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, f.transport.artifact, data)

	assert.True(t, f.launcher.VerifyLaunch(out.ArtifactPath,
		"/s", "REBOOT=ReallySuppress", "REBOOTPROMPT=Suppress", "/norestart"))

	dir, err := f.prefs.UpdateTempDir(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(out.ArtifactPath), dir)
	assert.Positive(t, f.notifier.progress)
	assert.Empty(t, f.notifier.errors)
}

func TestRun_SilentTamperedArtifactNeverLaunches(t *testing.T) {
	f := newFixture(t)
	sgn, v := testSigner(t)
	a := silentAppcast(sign(t, sgn, []byte("the real installer")))
	f.transport.artifact = []byte("a tampered installer")

	out, err := f.session(t, a, WithVerifier(v)).Run(context.Background(), Periodic)
	require.Error(t, err)
	assert.Equal(t, errs.VerificationFailure, errs.CodeOf(err))
	assert.Equal(t, Failed, out.Kind)
	assert.Zero(t, f.launcher.Count())
	assert.Len(t, f.notifier.errors, 1)
}

func TestRun_SilentUnsigned(t *testing.T) {
	t.Run("rejected by default", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.session(t, silentAppcast("")).Run(context.Background(), Periodic)
		assert.Equal(t, errs.VerificationFailure, errs.CodeOf(err))
		assert.Zero(t, f.launcher.Count())
	})

	t.Run("accepted when allowed", func(t *testing.T) {
		f := newFixture(t)
		f.settings.AllowUnsigned = true
		out, err := f.session(t, silentAppcast("")).Run(context.Background(), Periodic)
		require.NoError(t, err)
		assert.Equal(t, UpdateInstalling, out.Kind)
		assert.Equal(t, 1, f.launcher.Count())
	})
}

func TestRun_SilentCleansLeftovers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stale := filepath.Join(f.tempRoot, "Update-stale")
	require.NoError(t, os.MkdirAll(stale, 0o700))
	require.NoError(t, f.prefs.SetUpdateTempDir(ctx, stale))

	out, err := f.session(t, appcast.Appcast{Version: "1.0", SilentInstall: true}).Run(ctx, Periodic)
	require.NoError(t, err)
	assert.Equal(t, NoUpdate, out.Kind)
	assert.NoDirExists(t, stale)

	dir, err := f.prefs.UpdateTempDir(ctx)
	require.NoError(t, err)
	assert.Empty(t, dir)
	assert.Empty(t, f.transport.downloaded)
}

func TestRun_SilentWithoutDownloadURL(t *testing.T) {
	f := newFixture(t)
	a := appcast.Appcast{Version: "2.0", SilentInstall: true, WebBrowserURL: "https://example.com/get"}

	out, err := f.session(t, a).Run(context.Background(), Periodic)
	require.NoError(t, err)
	assert.Equal(t, UpdateAvailable, out.Kind)
	assert.Len(t, f.notifier.available, 1)
	assert.Zero(t, f.launcher.Count())
}

func TestRun_SilentLaunchFailure(t *testing.T) {
	f := newFixture(t)
	f.settings.AllowUnsigned = true
	f.launcher.Err = errors.New("not a valid application")

	_, err := f.session(t, silentAppcast("")).Run(context.Background(), Periodic)
	assert.Equal(t, errs.InstallerLaunch, errs.CodeOf(err))
	assert.Len(t, f.notifier.errors, 1)
}

func TestRun_OverTLS(t *testing.T) {
	sgn, v := testSigner(t)
	artifact := []byte("MZ installer payload")
	sig := sign(t, sgn, artifact)

	var srv *httptest.Server
	srv = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/appcast.xml":
			_, _ = fmt.Fprintf(w, `<rss version="2.0" xmlns:sparkle="http://www.andymatuschak.org/xml-namespaces/sparkle"><channel>
<item><title>Version 2.0</title>
<enclosure url="%s/download/setup-2.0.exe" sparkle:version="2.0" sparkle:dsaSignature="%s" sparkle:silent="true"/>
</item></channel></rss>`, srv.URL, sig)
		case "/download/setup-2.0.exe":
			_, _ = w.Write(artifact)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := newFixture(t)
	f.settings.FeedURL = srv.URL + "/appcast.xml"
	transport := service.NewHTTPTransport(service.WrapClient(srv.Client()))

	s, err := New(f.settings, f.prefs,
		WithTransport(transport),
		WithVerifier(v),
		WithLauncher(f.launcher),
		WithNotifier(f.notifier),
		WithTempRoot(f.tempRoot),
	)
	require.NoError(t, err)

	out, err := s.Run(context.Background(), Periodic)
	require.NoError(t, err)
	assert.Equal(t, UpdateInstalling, out.Kind)
	assert.Equal(t, "setup-2.0.exe", filepath.Base(out.ArtifactPath))
	assert.Equal(t, 1, f.launcher.Count())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, store.NewPrefs(store.NewMemory(), time.Hour, time.Hour))
	assert.True(t, errs.Has(err, errs.ConfigurationError))

	_, err = New(&config.Settings{}, nil)
	assert.True(t, errs.Has(err, errs.ConfigurationError))

	_, err = New(&config.Settings{PublicKey: "not a key"}, store.NewPrefs(store.NewMemory(), time.Hour, time.Hour))
	assert.True(t, errs.Has(err, errs.ConfigurationError))
}

func TestModeAndKindStrings(t *testing.T) {
	assert.Equal(t, "manual", Manual.String())
	assert.Equal(t, "periodic", Periodic.String())
	assert.Equal(t, "update-installing", UpdateInstalling.String())
	assert.Equal(t, "error", Failed.String())
}
