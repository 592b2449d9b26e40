package middleware

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/config"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/store"
)

// OpenPrefs opens the preferences store named by the settings and puts a
// *store.Prefs into the command context. It must run after LoadSettings.
// The store is closed once the command's RunE has returned successfully.
func OpenPrefs(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error {
	settings, err := Get[*config.Settings](cmd, CtxKeySettings)
	if err != nil {
		return fmt.Errorf("settings not loaded: %w", err)
	}

	kv, err := store.Open(settings.StateBackend, settings.StatePath)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	prefs := store.NewPrefs(kv, settings.Interval(), config.MinCheckInterval)

	post := cmd.PostRunE
	cmd.PostRunE = func(c *cobra.Command, a []string) error {
		if cerr := kv.Close(); cerr != nil {
			logger.Debug("Failed to close preferences: %v", cerr)
		}
		if post != nil {
			return post(c, a)
		}
		return nil
	}

	ctx := context.WithValue(cmd.Context(), CtxKeyPrefs, prefs)
	cmd.SetContext(ctx)

	return next(cmd, args)
}
