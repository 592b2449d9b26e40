package internal

import (
	"context"
	"strings"

	"github.com/CovenantEyes/winsparkle/internal/appcast"
	"github.com/CovenantEyes/winsparkle/internal/errs"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/notifier"
	"github.com/CovenantEyes/winsparkle/internal/runner"
)

// Event names accepted as keys of the hooks setting.
const (
	HookDidFindUpdate    = "did_find_update"
	HookDidNotFindUpdate = "did_not_find_update"
	HookError            = "error"
	HookCancelled        = "cancelled"
)

// hookLauncher starts configured hook commands; tests swap it.
var hookLauncher runner.Launcher = runner.ExecLauncher{}

// eventHooks reports session results as structured log records.
func eventHooks() notifier.Hooks {
	return notifier.Hooks{
		DidFindUpdate: func(a appcast.Appcast, autoInstall bool) {
			logger.Event("update available",
				"version", a.Version,
				"display_version", a.DisplayVersion(),
				"url", a.DownloadURL,
				"release_notes", a.ReleaseNotesURL,
				"auto_install", autoInstall)
		},
		DidNotFindUpdate: func() { logger.Event("no update available") },
		UpdateCancelled:  func() { logger.Event("update check cancelled") },
		Error: func(err error) {
			logger.Event("update check failed", "code", string(errs.CodeOf(err)), "error", err.Error())
		},
	}
}

// commandHooks runs the command configured for each event, detached.
// did_find_update receives the version and download URL as arguments,
// error receives the error code.
func commandHooks(ctx context.Context, commands map[string]string, l runner.Launcher) notifier.Hooks {
	// hooks still fire after ctx is cancelled
	ctx = context.WithoutCancel(ctx)

	fire := func(event string, extra ...string) {
		fields := strings.Fields(commands[event])
		if len(fields) == 0 {
			return
		}
		args := append(fields[1:len(fields):len(fields)], extra...)
		if _, err := l.Start(ctx, fields[0], args...); err != nil {
			logger.Warn("Hook %s failed: %v", event, err)
			return
		}
		logger.Debug("Hook %s started: %s", event, fields[0])
	}

	var h notifier.Hooks
	if _, ok := commands[HookDidFindUpdate]; ok {
		h.DidFindUpdate = func(a appcast.Appcast, _ bool) {
			extra := []string{a.Version}
			if a.DownloadURL != "" {
				extra = append(extra, a.DownloadURL)
			}
			fire(HookDidFindUpdate, extra...)
		}
	}
	if _, ok := commands[HookDidNotFindUpdate]; ok {
		h.DidNotFindUpdate = func() { fire(HookDidNotFindUpdate) }
	}
	if _, ok := commands[HookCancelled]; ok {
		h.UpdateCancelled = func() { fire(HookCancelled) }
	}
	if _, ok := commands[HookError]; ok {
		h.Error = func(err error) {
			code := string(errs.CodeOf(err))
			if code == "" {
				code = "UNKNOWN"
			}
			fire(HookError, code)
		}
	}
	return h
}
