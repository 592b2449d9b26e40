package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CovenantEyes/winsparkle/internal/logger"
)

// TempDirPrefix names every per-session download directory.
const TempDirPrefix = "Update-"

// TempDirRecord persists the directory of the last silent download so it can
// be removed on a later launch.
type TempDirRecord interface {
	UpdateTempDir(ctx context.Context) (string, error)
	ClearUpdateTempDir(ctx context.Context) error
}

// CreateUniqueTempDir makes a fresh directory under root (os.TempDir when
// root is empty).
func CreateUniqueTempDir(root string) (string, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return "", fmt.Errorf("failed to create temp root %s: %w", root, err)
	}
	dir, err := os.MkdirTemp(root, TempDirPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	return dir, nil
}

// CleanLeftovers removes the directory recorded by a previous silent install
// and forgets it. A directory that is still in use (the installer may be
// running from it) is kept, and so is the record, so the next launch retries.
// Running it twice is harmless.
func CleanLeftovers(ctx context.Context, rec TempDirRecord) error {
	dir, err := rec.UpdateTempDir(ctx)
	if err != nil {
		return fmt.Errorf("failed to read UpdateTempDir: %w", err)
	}
	if dir == "" {
		return nil
	}

	if !strings.HasPrefix(filepath.Base(dir), TempDirPrefix) {
		logger.Warn("Ignoring unexpected UpdateTempDir %q", dir)
		return rec.ClearUpdateTempDir(ctx)
	}

	if err := os.RemoveAll(dir); err != nil {
		logger.Debug("Leftover %s not removed yet: %v", dir, err)
		return nil
	}

	logger.Debug("Removed leftover update directory %s", dir)
	return rec.ClearUpdateTempDir(ctx)
}
