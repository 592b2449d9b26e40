package internal

import (
	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/errs"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/middleware"
	"github.com/CovenantEyes/winsparkle/internal/prompter"
)

func NewAutocheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autocheck [on|off]",
		Short: "Enable or disable periodic update checks",
		Long: `Turn the periodic loop's checks on or off. A running "winsparkle watch"
picks the change up within one poll quantum. Without an argument the
user is asked whether checks may run.

Examples:
  winsparkle autocheck on --interval 12h
  winsparkle autocheck on --auto-install
  winsparkle autocheck off`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, prefs, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var on bool
			if len(args) == 0 {
				p := prompter.New(cmd.InOrStdin(), cmd.OutOrStdout())
				if on, err = prompter.AskPermission(p, settings.AppName); err != nil {
					return err
				}
			} else {
				switch args[0] {
				case "on":
					on = true
				case "off":
				default:
					return middleware.FlagComboError(errs.AutocheckOnOff, args[0])
				}
			}

			if err := prefs.SetCheckForUpdates(ctx, on); err != nil {
				return err
			}

			if cmd.Flags().Changed("interval") {
				d, _ := cmd.Flags().GetDuration("interval")
				if err := prefs.SetCheckInterval(ctx, d); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("auto-install") {
				auto, _ := cmd.Flags().GetBool("auto-install")
				if err := prefs.SetAutomaticallyInstall(ctx, auto); err != nil {
					return err
				}
			}

			if !on {
				logger.Success("Automatic update checks disabled")
				return nil
			}
			interval, err := prefs.CheckInterval(ctx)
			if err != nil {
				return err
			}
			logger.Success("Automatic update checks enabled (every %s)", interval)
			return nil
		},
	}

	cmd.Flags().Duration("interval", 0, "Check interval (minimum 1h)")
	cmd.Flags().Bool("auto-install", false, "Install updates without asking")
	return cmd
}
