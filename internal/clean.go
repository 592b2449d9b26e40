package internal

import (
	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/download"
	"github.com/CovenantEyes/winsparkle/internal/logger"
)

func NewCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove files left over by a previous silent install",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, prefs, err := fromContext(cmd)
			if err != nil {
				return err
			}

			before, err := prefs.UpdateTempDir(cmd.Context())
			if err != nil {
				return err
			}
			if err := download.CleanLeftovers(cmd.Context(), prefs); err != nil {
				return err
			}
			after, err := prefs.UpdateTempDir(cmd.Context())
			if err != nil {
				return err
			}

			switch {
			case before == "":
				logger.Info("Nothing to clean")
			case after != "":
				logger.Warn("%s is still in use, it will be removed later", after)
			default:
				logger.Success("Removed %s", before)
			}
			return nil
		},
	}
}
