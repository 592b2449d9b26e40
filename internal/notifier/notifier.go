// Package notifier delivers update-check results to the user or the host
// application.
package notifier

import (
	"github.com/CovenantEyes/winsparkle/internal/appcast"
)

// Notifier receives the results of an update check. Implementations must be
// safe to call from the scheduler goroutine.
type Notifier interface {
	NotifyDownloadProgress(downloaded, total uint64)
	NotifyUpdateAvailable(a appcast.Appcast, autoInstall bool)
	NotifyNoUpdates(autoInstall bool)
	NotifyUpdateError(err error)
}

// CancelNotifier is implemented by notifiers that want to hear about checks
// cut short by shutdown. Cancellation is not an error and never reaches
// NotifyUpdateError.
type CancelNotifier interface {
	NotifyUpdateCancelled()
}

// Cancelled forwards to n when it implements CancelNotifier.
func Cancelled(n Notifier) {
	if c, ok := n.(CancelNotifier); ok {
		c.NotifyUpdateCancelled()
	}
}

// Discard drops every notification.
type Discard struct{}

func (Discard) NotifyDownloadProgress(uint64, uint64)       {}
func (Discard) NotifyUpdateAvailable(appcast.Appcast, bool) {}
func (Discard) NotifyNoUpdates(bool)                        {}
func (Discard) NotifyUpdateError(error)                     {}

// Multi fans every notification out to each member in order.
type Multi []Notifier

func (m Multi) NotifyDownloadProgress(downloaded, total uint64) {
	for _, n := range m {
		n.NotifyDownloadProgress(downloaded, total)
	}
}

func (m Multi) NotifyUpdateAvailable(a appcast.Appcast, autoInstall bool) {
	for _, n := range m {
		n.NotifyUpdateAvailable(a, autoInstall)
	}
}

func (m Multi) NotifyNoUpdates(autoInstall bool) {
	for _, n := range m {
		n.NotifyNoUpdates(autoInstall)
	}
}

func (m Multi) NotifyUpdateError(err error) {
	for _, n := range m {
		n.NotifyUpdateError(err)
	}
}

func (m Multi) NotifyUpdateCancelled() {
	for _, n := range m {
		Cancelled(n)
	}
}
