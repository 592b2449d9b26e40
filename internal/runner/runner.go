package runner

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/CovenantEyes/winsparkle/internal/logger"
)

// Launcher starts a process and does not wait for it.
type Launcher interface {
	Start(ctx context.Context, name string, args ...string) (pid int, err error)
}

// ExecLauncher starts detached OS processes. The child is not tied to ctx: it
// keeps running after the caller returns or is cancelled, which installers
// require since they usually replace the calling binary.
type ExecLauncher struct {
	Dir string
}

func (l ExecLauncher) Start(ctx context.Context, name string, args ...string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = l.Dir
	cmd.SysProcAttr = detachedAttr()

	if err := cmd.Start(); err != nil {
		logger.Debug("Failed to start %s: %v", name, err)
		return 0, fmt.Errorf("failed to start %s: %w", name, err)
	}
	pid := cmd.Process.Pid

	if err := cmd.Process.Release(); err != nil {
		logger.Debug("Failed to release pid %d: %v", pid, err)
	}
	logger.Debug("Started %s (pid %d)", name, pid)
	return pid, nil
}
