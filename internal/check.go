package internal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/checker"
	"github.com/CovenantEyes/winsparkle/internal/download"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/scheduler"
)

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check for a new release now",
		Long: `Check the appcast feed once and report the result.

A manual check always reports the newest release, even one the user chose
to skip. Use --mode periodic to apply the same rules as the background loop.

Examples:
  winsparkle check
  winsparkle check --feed-file ./appcast.xml
  winsparkle check --mode periodic`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, prefs, err := fromContext(cmd)
			if err != nil {
				return err
			}

			feedFile, _ := cmd.Flags().GetString("feed-file")
			modeFlag, _ := cmd.Flags().GetString("mode")

			var mode checker.Mode
			switch modeFlag {
			case "manual":
				mode = checker.Manual
			case "periodic":
				mode = checker.Periodic
			default:
				return fmt.Errorf("invalid --mode %q: expected manual or periodic", modeFlag)
			}

			// Ctrl-C cancels the session instead of killing a download midway
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := download.CleanLeftovers(ctx, prefs); err != nil {
				logger.Warn("Failed to clean previous update files: %v", err)
			}

			session, err := newSession(cmd, settings, prefs, feedFile)
			if err != nil {
				return err
			}

			var outcome checker.Outcome
			run := func(ctx context.Context, m checker.Mode) (checker.Outcome, error) {
				out, err := session.Run(ctx, m)
				outcome = out
				return out, err
			}

			if mode == checker.Manual {
				err = scheduler.NewOneShot(run).Run(ctx)
			} else {
				_, err = run(ctx, mode)
			}
			if err != nil {
				return err
			}

			logger.Debug("check finished: %s", outcome.Kind)
			switch outcome.Kind {
			case checker.UpdateInstalling:
				logger.Success("Installer started: %s", outcome.ArtifactPath)
			case checker.Cancelled:
				logger.Warn("Update check interrupted")
			}
			return nil
		},
	}

	cmd.Flags().String("feed-file", "", "Read the appcast from a local file instead of feed_url")
	cmd.Flags().String("mode", "manual", "Check mode: manual or periodic")
	return cmd
}
