//go:build !unix && !windows

package runner

import "syscall"

func detachedAttr() *syscall.SysProcAttr { return nil }
