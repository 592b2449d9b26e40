package middleware

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/config"
	"github.com/CovenantEyes/winsparkle/internal/logger"
)

// FlagConfig is the persistent flag naming an explicit settings file.
const FlagConfig = "config"

// LoadSettings loads *config.Settings into the command context.
func LoadSettings(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error {
	path, _ := cmd.Flags().GetString(FlagConfig)

	settings, err := config.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("Settings loaded (backend=%s, state=%s)", settings.StateBackend, settings.StatePath)

	ctx := context.WithValue(cmd.Context(), CtxKeySettings, settings)
	cmd.SetContext(ctx)

	return next(cmd, args)
}
