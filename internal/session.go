package internal

import (
	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/checker"
	"github.com/CovenantEyes/winsparkle/internal/config"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/middleware"
	"github.com/CovenantEyes/winsparkle/internal/notifier"
	"github.com/CovenantEyes/winsparkle/internal/store"
)

// sessionOptions lets tests swap collaborators of every command session.
var sessionOptions []checker.Option

func fromContext(cmd *cobra.Command) (*config.Settings, *store.Prefs, error) {
	settings, err := middleware.Get[*config.Settings](cmd, middleware.CtxKeySettings)
	if err != nil {
		return nil, nil, err
	}
	prefs, err := middleware.Get[*store.Prefs](cmd, middleware.CtxKeyPrefs)
	if err != nil {
		return nil, nil, err
	}
	return settings, prefs, nil
}

// newSession builds a session printing to the console, or logging result
// events when JSON output is on. Configured hook commands run in both cases.
func newSession(cmd *cobra.Command, settings *config.Settings, prefs *store.Prefs, feedFile string) (*checker.Session, error) {
	var n notifier.Multi
	switch {
	case logger.JSON():
		n = append(n, eventHooks())
	case !logger.FlagSilent:
		n = append(n, notifier.NewConsole(cmd.OutOrStdout(), settings.HostVersion()))
	}
	if len(settings.Hooks) > 0 {
		n = append(n, commandHooks(cmd.Context(), settings.Hooks, hookLauncher))
	}

	opts := []checker.Option{checker.WithNotifier(n)}
	if feedFile != "" {
		opts = append(opts, checker.WithAlternate(checker.FileFeed{Path: feedFile}))
	}
	opts = append(opts, sessionOptions...)

	return checker.New(settings, prefs, opts...)
}
