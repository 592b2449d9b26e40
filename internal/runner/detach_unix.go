//go:build unix

package runner

import "syscall"

// a new session keeps the child alive when our terminal goes away
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
