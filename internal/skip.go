package internal

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/errs"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/middleware"
)

func NewSkipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skip [version]",
		Short: "Stop offering a release in periodic checks",
		Long: `Record a release the user does not want. Periodic checks treat that exact
version as "no update"; manual checks still report it.

Examples:
  winsparkle skip 2.1.0      # skip 2.1.0
  winsparkle skip --clear    # offer every release again`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, prefs, err := fromContext(cmd)
			if err != nil {
				return err
			}

			clearFlag, _ := cmd.Flags().GetBool("clear")
			if clearFlag == (len(args) == 1) {
				return middleware.FlagComboError(errs.SkipVersionOrClear)
			}

			if clearFlag {
				if err := prefs.SetSkipThisVersion(cmd.Context(), ""); err != nil {
					return err
				}
				logger.Success("Skipped version cleared")
				return nil
			}

			v := strings.TrimSpace(args[0])
			if v == "" {
				return middleware.FlagComboError(errs.SkipVersionOrClear)
			}
			if err := prefs.SetSkipThisVersion(cmd.Context(), v); err != nil {
				return err
			}
			logger.Success("Version %s will be skipped", v)
			return nil
		},
	}

	cmd.Flags().Bool("clear", false, "Forget the skipped version")
	return cmd
}
