package internal

import (
	"github.com/spf13/cobra"

	"github.com/CovenantEyes/winsparkle/internal/middleware"
)

var (
	withSettings = middleware.UseMiddlewareChain(middleware.LoadSettings)
	withPrefs    = middleware.UseMiddlewareChain(middleware.LoadSettings, middleware.OpenPrefs)
)

var defaultCommands = []middleware.CommandFactory{
	withPrefs(NewCheckCmd),
	withPrefs(NewWatchCmd),
	withPrefs(NewCleanCmd),
	withPrefs(NewSkipCmd),
	withPrefs(NewAutocheckCmd),
	withPrefs(NewStatusCmd),
	withSettings(NewVerifyCmd),
	NewSignCmd,
	NewVersionCmd,
}

func RegisterSubCommands(cmd *cobra.Command) {
	for _, factory := range defaultCommands {
		cmd.AddCommand(factory())
	}
}
