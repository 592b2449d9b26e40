// Package installer launches a downloaded update in unattended mode.
package installer

import (
	"context"
	"regexp"
	"strings"

	"github.com/CovenantEyes/winsparkle/internal/errs"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/runner"
)

// SilentArgs are always passed first, in this order.
var SilentArgs = []string{"/s", "REBOOT=ReallySuppress", "REBOOTPROMPT=Suppress"}

// Feed arguments are unsigned, so only bare switches ("/norestart",
// "-quiet") and simple property assignments ("ALLUSERS=1") are passed on.
// Anything carrying a path, URL or quoting is dropped.
var (
	switchRE   = regexp.MustCompile(`^[/-]{1,2}[A-Za-z][A-Za-z0-9_-]*$`)
	propertyRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*=[A-Za-z0-9_.-]*$`)
)

// Args returns the unattended command line followed by the accepted feed
// arguments, and the feed arguments that were dropped.
func Args(extra string) (args, rejected []string) {
	args = append([]string(nil), SilentArgs...)
	for _, a := range strings.Fields(extra) {
		if switchRE.MatchString(a) || propertyRE.MatchString(a) {
			args = append(args, a)
		} else {
			rejected = append(rejected, a)
		}
	}
	return args, rejected
}

// Launch starts artifact detached and returns as soon as the process exists.
func Launch(ctx context.Context, l runner.Launcher, artifact, extra string) error {
	if artifact == "" {
		return errs.New(errs.InstallerLaunch, "launch", nil)
	}
	args, rejected := Args(extra)
	if len(rejected) > 0 {
		logger.Warn("Ignoring installer arguments from the feed: %s", strings.Join(rejected, " "))
	}
	logger.Debug("Launching %s %s", artifact, strings.Join(args, " "))

	pid, err := l.Start(ctx, artifact, args...)
	if err != nil {
		if ctx.Err() != nil {
			return errs.New(errs.Cancelled, "launch", ctx.Err())
		}
		return errs.New(errs.InstallerLaunch, "launch", err)
	}
	logger.Event("installer started", "path", artifact, "pid", pid)
	return nil
}
