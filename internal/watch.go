package internal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/config"
	"github.com/CovenantEyes/winsparkle/internal/download"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/scheduler"
)

func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Check for releases periodically until interrupted",
		Long: `Run the periodic update loop in the foreground.

Checks run when automatic checking is enabled ("winsparkle autocheck on")
and the check interval has elapsed since the last check. Stop with Ctrl-C
or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, prefs, err := fromContext(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := download.CleanLeftovers(ctx, prefs); err != nil {
				logger.Warn("Failed to clean previous update files: %v", err)
			}

			feedFile, _ := cmd.Flags().GetString("feed-file")
			session, err := newSession(cmd, settings, prefs, feedFile)
			if err != nil {
				return err
			}

			quantum := settings.Quantum()
			if q, _ := cmd.Flags().GetDuration("quantum"); q > 0 {
				quantum = q
			}
			if quantum <= 0 {
				quantum = config.DefaultPollQuantum
			}

			return runWatch(ctx, scheduler.NewPeriodic(session.Run, prefs, scheduler.WithQuantum(quantum)))
		},
	}

	cmd.Flags().String("feed-file", "", "Read the appcast from a local file instead of feed_url")
	cmd.Flags().Duration("quantum", 0, "Override poll_quantum (e.g. 30s)")
	return cmd
}

func runWatch(ctx context.Context, s *scheduler.Scheduler) error {
	logger.Info("Watching for updates (Ctrl-C to stop)")
	if err := <-s.Start(ctx); err != nil {
		return err
	}
	logger.Info("Stopped")
	return nil
}
