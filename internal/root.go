package internal

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/config"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/middleware"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "winsparkle",
		Short: "Application update checker",
		Long: `winsparkle checks an appcast feed for new releases of an application,
notifies the user, and can download, verify and launch installers unattended.`,
		Example: `winsparkle check
winsparkle watch --config ./config.json
winsparkle skip 2.1.0`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.ConfigureLoggerFromFlags()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			versionFlag, _ := cmd.Flags().GetBool("version")
			if versionFlag {
				config.PrintVersion(cmd.OutOrStdout())
				return
			}
			_ = cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().BoolP("version", "v", false, "Print version information")
	cmd.PersistentFlags().String(middleware.FlagConfig, "", "Settings file (JSON)")
	cmd.PersistentFlags().CountVarP(&logger.FlagVerboseCount, "verbose", "V", "Verbose output (-V, -VV)")
	cmd.PersistentFlags().BoolVarP(&logger.FlagQuiet, "quiet", "q", false, "Only print errors")
	cmd.PersistentFlags().BoolVarP(&logger.FlagSilent, "silent", "s", false, "Print nothing")
	cmd.PersistentFlags().BoolVar(&logger.FlagJSON, "json", false, "Structured JSON logs")

	RegisterSubCommands(cmd)

	return cmd
}

func Execute() error {
	root := NewRootCmd()

	if os.Getenv("COMP_LINE") != "" ||
		(len(os.Args) > 1 && strings.HasPrefix(os.Args[1], "__complete")) {
		return root.Execute()
	}

	if err := root.Execute(); err != nil {
		if errors.Is(err, middleware.ErrLogged) {
			return err
		}
		logger.Debug("Failed to execute root command: %v", err)
		return err
	}
	return nil
}
